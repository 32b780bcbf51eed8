package store

import (
	"errors"
	"testing"

	"github.com/Lllllllleong/studymate/internal/models"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestMapNotFound(t *testing.T) {
	err := mapNotFound("abc", status.Error(codes.NotFound, "no such document"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorContains(t, err, "abc")

	other := status.Error(codes.PermissionDenied, "denied")
	assert.Equal(t, other, mapNotFound("abc", other))

	plain := errors.New("boom")
	assert.Equal(t, plain, mapNotFound("abc", plain))
}

func TestNewRecord(t *testing.T) {
	doc := newRecord(models.PDFDocument{ID: "ignored", FileName: "a.pdf"})
	assert.Empty(t, doc.ID)
	assert.NotNil(t, doc.Pages)
	assert.NotNil(t, doc.ChatHistory)
	assert.False(t, doc.CreatedAt.IsZero())
}
