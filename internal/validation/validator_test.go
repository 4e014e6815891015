package validation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"lendnova-backend/internal/doctype"
	"lendnova-backend/internal/extract"
)

func TestValidateMatchesAnyKeyword(t *testing.T) {
	v := NewValidator(DefaultKeywordTable())

	tests := []struct {
		name  string
		typ   doctype.Type
		text  string
		valid bool
		match string
	}{
		{name: "bank statement", typ: doctype.BankStatement, text: "hdfc bank ltd account statement", valid: true, match: "account statement"},
		{name: "upper case text", typ: doctype.IncomeProof, text: "MONTHLY SALARY SLIP", valid: true, match: "salary"},
		{name: "substring inside word", typ: doctype.GasBill, text: "photo.png attached", valid: true, match: "png"},
		{name: "punctuated keyword", typ: doctype.WaterBill, text: "tot.rebate 12.00", valid: true, match: "tot.rebate"},
		{name: "no keyword", typ: doctype.InternetBill, text: "grocery list milk eggs", valid: false},
		{name: "wrong type evidence", typ: doctype.RentReceipt, text: "electricity kwh", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.Validate(tt.typ, extract.Extracted(tt.text))
			if got.Valid != tt.valid {
				t.Fatalf("Validate(%s, %q).Valid = %v, want %v", tt.typ, tt.text, got.Valid, tt.valid)
			}
			if tt.valid && got.MatchedKeyword != tt.match {
				t.Fatalf("matched %q, want %q", got.MatchedKeyword, tt.match)
			}
		})
	}
}

func TestValidateEmptyOrFailedIsInvalid(t *testing.T) {
	v := NewValidator(DefaultKeywordTable())
	for _, typ := range doctype.All() {
		if v.Validate(typ, extract.Extracted("")).Valid {
			t.Fatalf("empty text must be invalid for %s", typ)
		}
		if v.Validate(typ, extract.Failed("corrupt pdf")).Valid {
			t.Fatalf("failed extraction must be invalid for %s", typ)
		}
	}
}

func TestValidateIsDeterministic(t *testing.T) {
	v := NewValidator(DefaultKeywordTable())
	res := extract.Extracted("broadband invoice for march")
	first := v.Validate(doctype.InternetBill, res)
	second := v.Validate(doctype.InternetBill, res)
	if first != second {
		t.Fatalf("expected identical verdicts, got %+v and %+v", first, second)
	}
}

func TestKeywordsAreLowercasedAndCopied(t *testing.T) {
	table, err := NewKeywordTable(completeEntries(map[doctype.Type][]string{
		doctype.BankStatement: {"  IFSC ", ""},
	}))
	if err != nil {
		t.Fatalf("NewKeywordTable: %v", err)
	}
	words := table.Keywords(doctype.BankStatement)
	if len(words) != 1 || words[0] != "ifsc" {
		t.Fatalf("unexpected keywords %v", words)
	}
	words[0] = "mutated"
	if table.Keywords(doctype.BankStatement)[0] != "ifsc" {
		t.Fatalf("table must not be mutable through Keywords")
	}
}

func TestNewKeywordTableRequiresEveryType(t *testing.T) {
	_, err := NewKeywordTable(map[doctype.Type][]string{doctype.BankStatement: {"bank"}})
	if err == nil {
		t.Fatalf("expected error for incomplete table")
	}
}

func TestLoadKeywordTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keywords.yaml")
	body := "keywords:\n"
	for _, typ := range doctype.All() {
		body += "  " + string(typ) + ": [\"Evidence-" + string(typ) + "\"]\n"
	}
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	table, err := LoadKeywordTable(path)
	if err != nil {
		t.Fatalf("LoadKeywordTable: %v", err)
	}
	v := NewValidator(table)
	if !v.ValidateText(doctype.GasBill, "EVIDENCE-GAS_BILL").Valid {
		t.Fatalf("expected loaded keyword to match")
	}
}

func TestParseKeywordTableRejectsUnknownType(t *testing.T) {
	_, err := ParseKeywordTable([]byte("keywords:\n  passport: [id]\n"))
	if !errors.Is(err, doctype.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func completeEntries(override map[doctype.Type][]string) map[doctype.Type][]string {
	out := make(map[doctype.Type][]string)
	for _, typ := range doctype.All() {
		out[typ] = []string{string(typ)}
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}
