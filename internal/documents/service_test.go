package documents

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"lendnova-backend/internal/doctype"
	"lendnova-backend/internal/extract"
	"lendnova-backend/internal/shared/storage/object/local"
	"lendnova-backend/internal/validation"
)

// echoOCR treats the image bytes as the recognized text, so tests control
// extraction output directly.
type echoOCR struct{}

func (echoOCR) Recognize(_ context.Context, image []byte) (string, error) {
	if strings.HasPrefix(string(image), "CORRUPT") {
		return "", errors.New("tesseract failed")
	}
	return string(image), nil
}

func newTestService(t *testing.T) (*Service, *MemoryRepo, string) {
	t.Helper()
	dir := t.TempDir()
	repo := NewMemoryRepo()
	svc := &Service{
		Store:           local.New(dir),
		Repo:            repo,
		Extractor:       extract.New(echoOCR{}),
		Validator:       validation.NewValidator(validation.DefaultKeywordTable()),
		StorageProvider: "local",
		Concurrency:     3,
		Now:             func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) },
	}
	return svc, repo, dir
}

func TestIngestValidatesEachDocument(t *testing.T) {
	svc, repo, dir := newTestService(t)
	ctx := context.Background()

	report, err := svc.Ingest(ctx, "borrower-1", []Upload{
		{Label: "bank_statement", FileName: "statement.png", Content: []byte("HDFC Bank account statement")},
		{Label: "income_proof", FileName: "slip.jpg", Content: []byte("holiday photo")},
		{Label: "gas_bill", FileName: "gas.jpeg", Content: []byte("CORRUPT image")},
		{Label: "passport", FileName: "passport.png", Content: []byte("passport")},
		{Label: "water_bill", FileName: "water.docx", Content: []byte("water supply")},
		{Label: "rent_receipt", FileName: "rent.png", Content: nil},
	})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if len(report.Documents) != 3 {
		t.Fatalf("expected 3 recorded documents, got %d", len(report.Documents))
	}
	wantTypes := []doctype.Type{doctype.BankStatement, doctype.IncomeProof, doctype.GasBill}
	for i, doc := range report.Documents {
		if doc.Type != wantTypes[i] {
			t.Fatalf("document %d: expected %s, got %s", i, wantTypes[i], doc.Type)
		}
	}

	valid := report.Documents[0]
	if !valid.IsValid || valid.MatchedKeyword != "account statement" {
		t.Fatalf("expected valid bank statement, got %+v", valid)
	}
	if valid.ExtractedText != "hdfc bank account statement" {
		t.Fatalf("expected lowercased text, got %q", valid.ExtractedText)
	}
	if valid.StorageKey == "" {
		t.Fatalf("valid document must keep its stored object")
	}
	if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(valid.StorageKey))); err != nil {
		t.Fatalf("stored object missing: %v", err)
	}

	for _, doc := range report.Documents[1:] {
		if doc.IsValid || doc.ExtractedText != "" || doc.StorageKey != "" {
			t.Fatalf("invalid document must have no text or stored object: %+v", doc)
		}
	}
	if report.Documents[2].ExtractionError == "" {
		t.Fatalf("expected extraction error to be recorded")
	}

	reasons := map[string]string{}
	for _, r := range report.Rejected {
		reasons[r.FileName] = r.Reason
	}
	if reasons["passport.png"] != ReasonUnknownType || reasons["water.docx"] != ReasonUnsupportedExtension || reasons["rent.png"] != ReasonEmptyFile {
		t.Fatalf("unexpected rejections %+v", report.Rejected)
	}

	validCount, invalidCount, err := repo.CountByValidity(ctx, "borrower-1")
	if err != nil || validCount != 1 || invalidCount != 2 {
		t.Fatalf("unexpected counts %d/%d err=%v", validCount, invalidCount, err)
	}

	entries, err := os.ReadDir(filepath.Join(dir, filepath.Dir(filepath.FromSlash(valid.StorageKey))))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the valid file to remain on disk, found %d", len(entries))
	}
}

func TestIngestRequiresOwner(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Ingest(context.Background(), " ", nil)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

// failingStore saves through a local store but fails for failOn, or for
// every file when failOn is empty.
type failingStore struct {
	local  *local.Store
	failOn string
	mu     sync.Mutex
	saves  int
}

func (f *failingStore) Save(ctx context.Context, ownerID, fileName string, r io.Reader) (string, int64, string, error) {
	f.mu.Lock()
	f.saves++
	f.mu.Unlock()
	if f.failOn == "" || f.failOn == fileName {
		return "", 0, "", errors.New("disk full")
	}
	return f.local.Save(ctx, ownerID, fileName, r)
}

func (f *failingStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return f.local.Open(ctx, key)
}

func (f *failingStore) Delete(ctx context.Context, key string) error {
	return f.local.Delete(ctx, key)
}

func TestIngestSurfacesStorageErrors(t *testing.T) {
	svc, repo, dir := newTestService(t)
	svc.Store = &failingStore{local: local.New(dir)}

	_, err := svc.Ingest(context.Background(), "borrower-1", []Upload{
		{Label: "bank_statement", FileName: "s.png", Content: []byte("bank")},
	})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected storage error, got %v", err)
	}
	docs, _ := repo.ListByUser(context.Background(), "borrower-1", 10, 0)
	if len(docs) != 0 {
		t.Fatalf("no documents should be recorded on storage failure")
	}
}

type failingRepo struct {
	*MemoryRepo
}

func (failingRepo) CreateBatch(context.Context, []Document) error {
	return errors.New("connection reset")
}

// storedFiles counts regular files left under dir.
func storedFiles(t *testing.T, dir string) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(dir, func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	return n
}

func TestIngestRemovesSavedObjectsWhenSiblingFails(t *testing.T) {
	svc, repo, dir := newTestService(t)
	svc.Concurrency = 1
	svc.Store = &failingStore{local: local.New(dir), failOn: "broken.png"}

	_, err := svc.Ingest(context.Background(), "borrower-1", []Upload{
		{Label: "bank_statement", FileName: "statement.png", Content: []byte("hdfc bank account statement")},
		{Label: "income_proof", FileName: "broken.png", Content: []byte("salary slip")},
	})
	if err == nil {
		t.Fatalf("expected storage error")
	}
	if n := storedFiles(t, dir); n != 0 {
		t.Fatalf("expected saved objects to be removed, %d left", n)
	}
	docs, _ := repo.ListByUser(context.Background(), "borrower-1", 10, 0)
	if len(docs) != 0 {
		t.Fatalf("no documents should be recorded, got %d", len(docs))
	}
}

func TestIngestRemovesSavedObjectsWhenRecordingFails(t *testing.T) {
	svc, _, dir := newTestService(t)
	svc.Repo = failingRepo{NewMemoryRepo()}

	_, err := svc.Ingest(context.Background(), "borrower-1", []Upload{
		{Label: "bank_statement", FileName: "statement.png", Content: []byte("hdfc bank account statement")},
		{Label: "income_proof", FileName: "slip.png", Content: []byte("salary slip for march")},
	})
	if err == nil || !strings.Contains(err.Error(), "connection reset") {
		t.Fatalf("expected repo error, got %v", err)
	}
	if n := storedFiles(t, dir); n != 0 {
		t.Fatalf("expected saved objects to be removed, %d left", n)
	}
}

func TestMemoryRepoOrdering(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, valid := range []bool{true, false, true} {
		doc := Document{ID: string(rune('a' + i)), UserID: "u", IsValid: valid, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := repo.CreateBatch(ctx, []Document{doc}); err != nil {
			t.Fatalf("CreateBatch: %v", err)
		}
	}

	validDocs, _ := repo.ListValidByUser(ctx, "u")
	if len(validDocs) != 2 || validDocs[0].ID != "a" || validDocs[1].ID != "c" {
		t.Fatalf("unexpected valid snapshot %+v", validDocs)
	}

	page, _ := repo.ListByUser(ctx, "u", 2, 0)
	if len(page) != 2 || page[0].ID != "c" || page[1].ID != "b" {
		t.Fatalf("expected newest first, got %+v", page)
	}
	page, _ = repo.ListByUser(ctx, "u", 2, 2)
	if len(page) != 1 || page[0].ID != "a" {
		t.Fatalf("unexpected second page %+v", page)
	}
}
