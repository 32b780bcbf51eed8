// Package store persists PDF records and fetches PDF bytes by URL.
package store

import (
	"context"
	"errors"

	"github.com/Lllllllleong/studymate/internal/models"
)

var (
	ErrNotFound   = errors.New("document not found")
	ErrPageExists = errors.New("page already parsed")
)

// DocumentStore keeps one record per uploaded PDF.
type DocumentStore interface {
	// Create inserts doc with empty pages and chat history and returns its id.
	Create(ctx context.Context, doc models.PDFDocument) (string, error)
	// Get returns ErrNotFound for unknown ids.
	Get(ctx context.Context, id string) (*models.PDFDocument, error)
	// AppendPage adds page to the record, or returns ErrPageExists when a
	// page with the same number is already stored.
	AppendPage(ctx context.Context, id string, page models.ParsedPage) error
	SetPageCount(ctx context.Context, id string, pageCount int) error
}
