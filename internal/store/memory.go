package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/Lllllllleong/studymate/internal/models"
	"github.com/google/uuid"
)

// Memory is a process-local DocumentStore for local runs and tests.
type Memory struct {
	mu   sync.Mutex
	docs map[string]models.PDFDocument
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string]models.PDFDocument)}
}

func (m *Memory) Create(_ context.Context, doc models.PDFDocument) (string, error) {
	doc = newRecord(doc)
	id := uuid.NewString()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[id] = doc
	return id, nil
}

func (m *Memory) Get(_ context.Context, id string) (*models.PDFDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	doc.ID = id
	doc.Pages = slices.Clone(doc.Pages)
	doc.ChatHistory = slices.Clone(doc.ChatHistory)
	return &doc, nil
}

func (m *Memory) AppendPage(_ context.Context, id string, page models.ParsedPage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if _, exists := doc.Page(page.PageNumber); exists {
		return ErrPageExists
	}
	doc.Pages = append(slices.Clone(doc.Pages), page)
	m.docs[id] = doc
	return nil
}

func (m *Memory) SetPageCount(_ context.Context, id string, pageCount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	doc.PageCount = pageCount
	m.docs[id] = doc
	return nil
}
