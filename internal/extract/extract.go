package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"lendnova-backend/internal/doctype"
	"lendnova-backend/internal/shared/storage/object"
)

// Result is the outcome of pulling text out of one document. A failed result
// carries a reason and no text.
type Result struct {
	text   string
	reason string
	failed bool
}

// Extracted wraps successfully extracted text.
func Extracted(text string) Result { return Result{text: text} }

// Failed records why no text could be obtained.
func Failed(reason string) Result { return Result{reason: reason, failed: true} }

// Text is the lowercased document text, or "" when extraction failed.
func (r Result) Text() string {
	if r.failed {
		return ""
	}
	return r.text
}

func (r Result) Failed() bool   { return r.failed }
func (r Result) Reason() string { return r.reason }

// Extractor turns stored document bytes into lowercase text. It never returns
// an error; problems degrade to a failed Result.
type Extractor struct {
	OCR OCREngine
}

func New(ocr OCREngine) *Extractor {
	return &Extractor{OCR: ocr}
}

// Extract dispatches on kind. PDFs are read page by page; images go through OCR.
func (e *Extractor) Extract(ctx context.Context, content []byte, kind doctype.FileKind) Result {
	if err := ctx.Err(); err != nil {
		return Failed(err.Error())
	}
	if len(content) == 0 {
		return Failed("empty content")
	}
	switch kind {
	case doctype.KindPDF:
		return extractPDF(content)
	case doctype.KindImage:
		return e.extractImage(ctx, content)
	default:
		return Failed(fmt.Sprintf("unsupported file kind: %s", kind))
	}
}

// ExtractStored reads key from store and extracts it.
func (e *Extractor) ExtractStored(ctx context.Context, store object.ObjectStore, key string, kind doctype.FileKind) Result {
	body, err := store.Open(ctx, key)
	if err != nil {
		return Failed(fmt.Sprintf("open %s: %v", key, err))
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return Failed(fmt.Sprintf("read %s: %v", key, err))
	}
	return e.Extract(ctx, raw, kind)
}

func extractPDF(data []byte) (res Result) {
	// The pdf reader panics on some malformed inputs.
	defer func() {
		if rec := recover(); rec != nil {
			res = Failed(fmt.Sprintf("pdf parser panic: %v", rec))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Failed(fmt.Sprintf("open pdf: %v", err))
	}

	var buf strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return Failed(fmt.Sprintf("page %d: %v", i, err))
		}
		if text == "" {
			continue
		}
		buf.WriteString(text)
		buf.WriteString(" ")
	}
	return Extracted(strings.ToLower(buf.String()))
}

func (e *Extractor) extractImage(ctx context.Context, data []byte) Result {
	if e.OCR == nil {
		return Failed("no ocr engine configured")
	}
	text, err := e.OCR.Recognize(ctx, data)
	if err != nil {
		return Failed(fmt.Sprintf("ocr: %v", err))
	}
	return Extracted(strings.ToLower(text))
}
