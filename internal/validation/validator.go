package validation

import (
	"strings"

	"lendnova-backend/internal/doctype"
	"lendnova-backend/internal/extract"
)

// Verdict is the outcome of checking one document against its declared type.
type Verdict struct {
	Valid          bool
	MatchedKeyword string
}

type Validator struct {
	table KeywordTable
}

func NewValidator(table KeywordTable) *Validator {
	return &Validator{table: table}
}

// Validate reports whether the extracted text carries any keyword for t.
// Matching is plain case-insensitive substring containment; a failed
// extraction has no text and is never valid.
func (v *Validator) Validate(t doctype.Type, res extract.Result) Verdict {
	return v.ValidateText(t, res.Text())
}

// ValidateText is Validate over already extracted text.
func (v *Validator) ValidateText(t doctype.Type, text string) Verdict {
	if text == "" {
		return Verdict{}
	}
	lowered := strings.ToLower(text)
	for _, kw := range v.table.byType[t] {
		if strings.Contains(lowered, kw) {
			return Verdict{Valid: true, MatchedKeyword: kw}
		}
	}
	return Verdict{}
}
