package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/Lllllllleong/studymate/internal/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreDocuments stores records in one Firestore collection.
type FirestoreDocuments struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreDocuments(client *firestore.Client, collection string) *FirestoreDocuments {
	return &FirestoreDocuments{client: client, collection: collection}
}

func (s *FirestoreDocuments) Create(ctx context.Context, doc models.PDFDocument) (string, error) {
	doc = newRecord(doc)
	ref, _, err := s.client.Collection(s.collection).Add(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to create document record: %w", err)
	}
	return ref.ID, nil
}

func (s *FirestoreDocuments) Get(ctx context.Context, id string) (*models.PDFDocument, error) {
	snap, err := s.client.Collection(s.collection).Doc(id).Get(ctx)
	if err != nil {
		return nil, mapNotFound(id, err)
	}
	var doc models.PDFDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode document %s: %w", id, err)
	}
	doc.ID = snap.Ref.ID
	return &doc, nil
}

// AppendPage checks and appends inside one transaction so concurrent parses
// of the same page store it once.
func (s *FirestoreDocuments) AppendPage(ctx context.Context, id string, page models.ParsedPage) error {
	ref := s.client.Collection(s.collection).Doc(id)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return mapNotFound(id, err)
		}
		var doc models.PDFDocument
		if err := snap.DataTo(&doc); err != nil {
			return fmt.Errorf("failed to decode document %s: %w", id, err)
		}
		if _, ok := doc.Page(page.PageNumber); ok {
			return ErrPageExists
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "pages", Value: firestore.ArrayUnion(page)},
		})
	})
	if err != nil {
		return fmt.Errorf("failed to append page %d to %s: %w", page.PageNumber, id, err)
	}
	return nil
}

func (s *FirestoreDocuments) SetPageCount(ctx context.Context, id string, pageCount int) error {
	_, err := s.client.Collection(s.collection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "pageCount", Value: pageCount},
	})
	if err != nil {
		return fmt.Errorf("failed to update page count of %s: %w", id, mapNotFound(id, err))
	}
	return nil
}

func mapNotFound(id string, err error) error {
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return err
}

// newRecord normalizes a record before insertion.
func newRecord(doc models.PDFDocument) models.PDFDocument {
	doc.ID = ""
	if doc.Pages == nil {
		doc.Pages = []models.ParsedPage{}
	}
	if doc.ChatHistory == nil {
		doc.ChatHistory = []models.ChatMessage{}
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	return doc
}
