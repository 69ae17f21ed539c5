package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"melhado-backend/internal/models"
)

const documentColumns = `id, property_id, inspection_id, filename, original_name, url, storage_key, uploaded_by,
	uploaded_at, document_type, expiry_date, epc_rating, epc_score, access_roles, tags, file_size,
	mime_type, is_archived, version, description`

func insertDocument(ctx context.Context, q queryer, doc *models.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.Version == 0 {
		doc.Version = 1
	}
	_, err := q.NamedExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES (:id, :property_id, :inspection_id, :filename, :original_name, :url, :storage_key, :uploaded_by,
			:uploaded_at, :document_type, :expiry_date, :epc_rating, :epc_score, :access_roles, :tags, :file_size,
			:mime_type, :is_archived, :version, :description)
	`, doc)
	if err != nil {
		return fmt.Errorf("inserting document %s: %w", doc.OriginalName, err)
	}
	return nil
}

func (s *Store) CreateDocument(ctx context.Context, doc *models.Document) error {
	return insertDocument(ctx, s.db, doc)
}

func (s *Store) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	if err := get(ctx, s.db, &doc, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("getting document %s: %w", id, err)
	}
	return &doc, nil
}

// ListDocuments returns every document of a property, newest upload first.
// Role filtering happens in the caller.
func (s *Store) ListDocuments(ctx context.Context, propertyID string) ([]models.Document, error) {
	docs := []models.Document{}
	err := selectAll(ctx, s.db, &docs, `
		SELECT `+documentColumns+` FROM documents WHERE property_id = ? ORDER BY uploaded_at DESC
	`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	return docs, nil
}

// DocumentsByProperty loads the documents of several properties in one query.
func (s *Store) DocumentsByProperty(ctx context.Context, propertyIDs []string) (map[string][]models.Document, error) {
	byProperty := make(map[string][]models.Document, len(propertyIDs))
	if len(propertyIDs) == 0 {
		return byProperty, nil
	}
	var docs []models.Document
	err := selectIn(ctx, s.db, &docs, `
		SELECT `+documentColumns+` FROM documents WHERE property_id IN (?) ORDER BY uploaded_at DESC
	`, propertyIDs)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	for _, d := range docs {
		byProperty[d.PropertyID] = append(byProperty[d.PropertyID], d)
	}
	return byProperty, nil
}

// ListExpiringDocuments returns live documents expiring at or before the
// unix time until, including ones already expired.
func (s *Store) ListExpiringDocuments(ctx context.Context, until int64) ([]models.Document, error) {
	docs := []models.Document{}
	err := selectAll(ctx, s.db, &docs, `
		SELECT `+documentColumns+` FROM documents
		WHERE expiry_date IS NOT NULL AND expiry_date <= ? AND is_archived = ?
		ORDER BY expiry_date
	`, until, false)
	if err != nil {
		return nil, fmt.Errorf("listing expiring documents: %w", err)
	}
	return docs, nil
}

func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	n, err := exec(ctx, s.db, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting document %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("deleting document %s: %w", id, ErrNotFound)
	}
	return nil
}
