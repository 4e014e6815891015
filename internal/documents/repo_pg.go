package documents

import (
	"context"
	"database/sql"
	"fmt"

	"lendnova-backend/internal/doctype"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, user_id, doc_type, file_name, mime_type, size_bytes, storage_provider, storage_key, is_valid, extracted_text, matched_keyword, extraction_error, created_at`

const insertDocument = `
INSERT INTO documents (` + documentColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

// CreateBatch inserts docs inside one transaction.
func (r *PGRepo) CreateBatch(ctx context.Context, docs []Document) (err error) {
	if len(docs) == 0 {
		return nil
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin document batch: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, doc := range docs {
		_, err = tx.ExecContext(
			ctx,
			insertDocument,
			doc.ID,
			doc.UserID,
			string(doc.Type),
			doc.FileName,
			doc.MimeType,
			doc.SizeBytes,
			doc.StorageProvider,
			doc.StorageKey,
			doc.IsValid,
			doc.ExtractedText,
			doc.MatchedKeyword,
			doc.ExtractionError,
			doc.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert document %s: %w", doc.ID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit document batch: %w", err)
	}
	return nil
}

func (r *PGRepo) ListValidByUser(ctx context.Context, userID string) ([]Document, error) {
	const query = `
SELECT ` + documentColumns + `
FROM documents
WHERE user_id = $1 AND is_valid
ORDER BY created_at ASC, id ASC`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list valid documents: %w", err)
	}
	defer rows.Close()
	return scanDocuments(rows)
}

func (r *PGRepo) CountByValidity(ctx context.Context, userID string) (int, int, error) {
	const query = `
SELECT
    COUNT(*) FILTER (WHERE is_valid),
    COUNT(*) FILTER (WHERE NOT is_valid)
FROM documents
WHERE user_id = $1`

	var valid, invalid int
	if err := r.DB.QueryRowContext(ctx, query, userID).Scan(&valid, &invalid); err != nil {
		return 0, 0, fmt.Errorf("count documents: %w", err)
	}
	return valid, invalid, nil
}

// ListByUser lists documents ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Document, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT ` + documentColumns + `
FROM documents
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()
	return scanDocuments(rows)
}

func scanDocuments(rows *sql.Rows) ([]Document, error) {
	out := []Document{}
	for rows.Next() {
		var doc Document
		var docType string
		if err := rows.Scan(
			&doc.ID,
			&doc.UserID,
			&docType,
			&doc.FileName,
			&doc.MimeType,
			&doc.SizeBytes,
			&doc.StorageProvider,
			&doc.StorageKey,
			&doc.IsValid,
			&doc.ExtractedText,
			&doc.MatchedKeyword,
			&doc.ExtractionError,
			&doc.CreatedAt,
		); err != nil {
			return nil, err
		}
		t, err := doctype.Parse(docType)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", doc.ID, err)
		}
		doc.Type = t
		out = append(out, doc)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
