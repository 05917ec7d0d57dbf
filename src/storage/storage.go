package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ObjectStore holds generated report PDFs at deterministic paths. Uploading
// the same path again overwrites the previous object, which is what makes
// report regeneration idempotent at the storage layer.
type ObjectStore interface {
	// Upload writes the object and returns its publicly readable URL.
	Upload(ctx context.Context, objectPath string, data []byte, contentType string) (string, error)
}

// ReportObjectPath is the canonical location for one statement PDF. Keyed
// by customer/property/period so regeneration lands on the same object.
func ReportObjectPath(customerID, propertyID string, month, year int) string {
	return fmt.Sprintf("%s/%s/%d-%d.pdf", customerID, propertyID, year, month)
}

// LocalStore writes objects under a base directory and serves them from a
// configured public base URL. Used for development and tests.
type LocalStore struct {
	BaseDir       string
	PublicBaseURL string
}

func NewLocalStore(baseDir, publicBaseURL string) *LocalStore {
	return &LocalStore{BaseDir: baseDir, PublicBaseURL: publicBaseURL}
}

func (s *LocalStore) Upload(ctx context.Context, objectPath string, data []byte, contentType string) (string, error) {
	fullPath := filepath.Join(s.BaseDir, filepath.FromSlash(objectPath))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("writing report object %q: %w", objectPath, err)
	}
	return strings.TrimSuffix(s.PublicBaseURL, "/") + "/" + objectPath, nil
}
