package oplog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jomei/notionapi"
)

// notionMetadataLimit is Notion's rich text content cap per block.
const notionMetadataLimit = 2000

// NotionSink appends operational events as pages of a Notion database:
// Type (select), Message (title), Metadata (rich text), Timestamp (date).
type NotionSink struct {
	client     *notionapi.Client
	databaseID string
}

func NewNotionSink(apiKey, databaseID string) *NotionSink {
	return &NotionSink{
		client:     notionapi.NewClient(notionapi.Token(apiKey)),
		databaseID: databaseID,
	}
}

func (s *NotionSink) Log(ctx context.Context, eventType EventType, message string, metadata map[string]any) error {
	metaJSON, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		metaJSON = []byte(fmt.Sprintf("%v", metadata))
	}
	metaStr := string(metaJSON)
	if len(metaStr) > notionMetadataLimit {
		metaStr = metaStr[:notionMetadataLimit]
	}

	now := notionapi.Date(time.Now())
	req := &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(s.databaseID),
		},
		Properties: notionapi.Properties{
			"Type": notionapi.SelectProperty{
				Select: notionapi.Option{Name: string(eventType)},
			},
			"Message": notionapi.TitleProperty{
				Title: []notionapi.RichText{
					{Text: &notionapi.Text{Content: message}},
				},
			},
			"Metadata": notionapi.RichTextProperty{
				RichText: []notionapi.RichText{
					{Text: &notionapi.Text{Content: metaStr}},
				},
			},
			"Timestamp": notionapi.DateProperty{
				Date: &notionapi.DateObject{Start: &now},
			},
		},
	}

	if _, err := s.client.Page.Create(ctx, req); err != nil {
		return fmt.Errorf("notion log page create: %w", err)
	}
	return nil
}
