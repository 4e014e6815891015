package documents

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"lendnova-backend/internal/doctype"
	"lendnova-backend/internal/extract"
	"lendnova-backend/internal/shared/metrics"
	"lendnova-backend/internal/shared/storage/object"
	"lendnova-backend/internal/shared/telemetry"
	"lendnova-backend/internal/validation"
)

// Upload is one submitted file. Label is the declared document type as sent
// by the client.
type Upload struct {
	Label    string
	FileName string
	Content  []byte
}

type Rejection struct {
	Label    string `json:"field"`
	FileName string `json:"fileName"`
	Reason   string `json:"reason"`
}

// IngestReport lists recorded documents in submission order plus any uploads
// that were turned away before extraction.
type IngestReport struct {
	Documents []Document
	Rejected  []Rejection
}

// Service contains business logic for documents.
type Service struct {
	Store           object.ObjectStore
	Repo            Repo
	Extractor       *extract.Extractor
	Validator       *validation.Validator
	StorageProvider string
	Concurrency     int
	Now             func() time.Time
}

type accepted struct {
	upload Upload
	typ    doctype.Type
	kind   doctype.FileKind
}

// Ingest stores, extracts and validates each upload. Extraction and
// validation run in parallel; a failure to extract one file only makes that
// document invalid. Storage and database errors abort the batch.
func (s *Service) Ingest(ctx context.Context, ownerID string, uploads []Upload) (IngestReport, error) {
	if strings.TrimSpace(ownerID) == "" {
		return IngestReport{}, fmt.Errorf("%w: owner id required", ErrInvalidInput)
	}

	report := IngestReport{Documents: []Document{}, Rejected: []Rejection{}}
	var work []accepted
	for _, up := range uploads {
		typ, err := doctype.Parse(up.Label)
		if err != nil {
			report.Rejected = append(report.Rejected, Rejection{Label: up.Label, FileName: up.FileName, Reason: ReasonUnknownType})
			continue
		}
		kind, err := doctype.KindFromFileName(up.FileName)
		if err != nil {
			report.Rejected = append(report.Rejected, Rejection{Label: up.Label, FileName: up.FileName, Reason: ReasonUnsupportedExtension})
			continue
		}
		if len(up.Content) == 0 {
			report.Rejected = append(report.Rejected, Rejection{Label: up.Label, FileName: up.FileName, Reason: ReasonEmptyFile})
			continue
		}
		work = append(work, accepted{upload: up, typ: typ, kind: kind})
	}

	docs := make([]Document, len(work))
	saved := make([]string, len(work))
	g, gctx := errgroup.WithContext(ctx)
	limit := s.Concurrency
	if limit <= 0 {
		limit = 4
	}
	g.SetLimit(limit)
	for i, item := range work {
		i, item := i, item
		g.Go(func() error {
			doc, err := s.process(gctx, ownerID, item, &saved[i])
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.discard(ctx, ownerID, saved)
		return IngestReport{}, err
	}

	if err := s.Repo.CreateBatch(ctx, docs); err != nil {
		s.discard(ctx, ownerID, saved)
		return IngestReport{}, err
	}
	for _, doc := range docs {
		metrics.IncDocumentIngested(string(doc.Type), doc.IsValid)
		telemetry.Info("document.ingested", map[string]any{
			"owner_id":        ownerID,
			"document_id":     doc.ID,
			"doc_type":        string(doc.Type),
			"valid":           doc.IsValid,
			"matched_keyword": doc.MatchedKeyword,
		})
		report.Documents = append(report.Documents, doc)
	}
	return report, nil
}

// discard removes objects stored by a batch that was not recorded. It runs
// even when ctx is already cancelled.
func (s *Service) discard(ctx context.Context, ownerID string, keys []string) {
	ctx = context.WithoutCancel(ctx)
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.Store.Delete(ctx, key); err != nil {
			telemetry.Warn("document.discard_failed", map[string]any{
				"owner_id":    ownerID,
				"storage_key": key,
				"error":       err.Error(),
			})
		}
	}
}

// process stores and checks one upload. saved holds the storage key for as
// long as the object exists.
func (s *Service) process(ctx context.Context, ownerID string, item accepted, saved *string) (Document, error) {
	key, size, mimeType, err := s.Store.Save(ctx, ownerID, item.upload.FileName, bytes.NewReader(item.upload.Content))
	if err != nil {
		return Document{}, fmt.Errorf("store %s: %w", item.upload.FileName, err)
	}
	*saved = key

	res := s.Extractor.ExtractStored(ctx, s.Store, key, item.kind)
	if res.Failed() {
		metrics.IncExtractionFailure(item.kind.String())
		telemetry.Warn("document.extraction_failed", map[string]any{
			"owner_id":  ownerID,
			"doc_type":  string(item.typ),
			"file_name": item.upload.FileName,
			"reason":    res.Reason(),
		})
	}
	verdict := s.Validator.Validate(item.typ, res)

	doc := Document{
		ID:              uuid.NewString(),
		UserID:          ownerID,
		Type:            item.typ,
		FileName:        item.upload.FileName,
		MimeType:        mimeType,
		SizeBytes:       size,
		StorageProvider: s.StorageProvider,
		StorageKey:      key,
		IsValid:         verdict.Valid,
		MatchedKeyword:  verdict.MatchedKeyword,
		ExtractionError: res.Reason(),
		CreatedAt:       s.now(),
	}
	if verdict.Valid {
		doc.ExtractedText = res.Text()
		return doc, nil
	}

	if err := s.Store.Delete(ctx, key); err != nil {
		return Document{}, fmt.Errorf("remove invalid %s: %w", item.upload.FileName, err)
	}
	*saved = ""
	doc.StorageKey = ""
	return doc, nil
}

// ValidSnapshot returns the owner's valid documents oldest first.
func (s *Service) ValidSnapshot(ctx context.Context, ownerID string) ([]Document, error) {
	return s.Repo.ListValidByUser(ctx, ownerID)
}

func (s *Service) Counts(ctx context.Context, ownerID string) (valid, invalid int, err error) {
	return s.Repo.CountByValidity(ctx, ownerID)
}

func (s *Service) List(ctx context.Context, ownerID string, limit, offset int) ([]Document, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id required", ErrInvalidInput)
	}
	return s.Repo.ListByUser(ctx, ownerID, limit, offset)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
