// Package oplog emits operational events (batch run summaries, new report
// notifications) to an external sink. The sink is an injected collaborator
// so batch code can run against a no-op or recording implementation.
package oplog

import (
	"context"
	"encoding/json"
	"log/slog"
)

type EventType string

const (
	EventReportGenerated EventType = "REPORT_GENERATED"
	EventBatchCompleted  EventType = "BATCH_COMPLETED"
	EventError           EventType = "ERROR"
)

type Sink interface {
	Log(ctx context.Context, eventType EventType, message string, metadata map[string]any) error
}

// SlogSink writes events to the structured application log. Default sink
// when no Notion workspace is configured.
type SlogSink struct {
	Logger *slog.Logger
}

func (s *SlogSink) Log(ctx context.Context, eventType EventType, message string, metadata map[string]any) error {
	meta, _ := json.Marshal(metadata)
	s.Logger.Info("Operational event", "type", string(eventType), "message", message, "metadata", string(meta))
	return nil
}
