package validation

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"lendnova-backend/internal/doctype"
)

// KeywordTable maps each document type to the phrases that count as evidence
// for it. A table is immutable once built.
type KeywordTable struct {
	byType map[doctype.Type][]string
}

// NewKeywordTable lowercases and copies the given keywords. Every known
// document type must be present with at least one keyword.
func NewKeywordTable(entries map[doctype.Type][]string) (KeywordTable, error) {
	byType := make(map[doctype.Type][]string, len(entries))
	for t, words := range entries {
		if !t.Valid() {
			return KeywordTable{}, fmt.Errorf("%w: %q", doctype.ErrUnknownType, string(t))
		}
		normalized := make([]string, 0, len(words))
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w == "" {
				continue
			}
			normalized = append(normalized, w)
		}
		if len(normalized) == 0 {
			return KeywordTable{}, fmt.Errorf("keyword table: %s has no keywords", t)
		}
		byType[t] = normalized
	}
	for _, t := range doctype.All() {
		if _, ok := byType[t]; !ok {
			return KeywordTable{}, fmt.Errorf("keyword table: missing %s", t)
		}
	}
	return KeywordTable{byType: byType}, nil
}

// Keywords returns a copy of the keywords configured for t.
func (k KeywordTable) Keywords(t doctype.Type) []string {
	words := k.byType[t]
	out := make([]string, len(words))
	copy(out, words)
	return out
}

// DefaultKeywordTable returns the built-in evidence table.
func DefaultKeywordTable() KeywordTable {
	table, err := NewKeywordTable(map[doctype.Type][]string{
		doctype.RentReceipt: {
			"rent", "tenant", "landlord", "lease", "rent paid", "agreement", "property address",
		},
		doctype.ElectricityBill: {
			"electricity", "kwh", "power", "consumer", "total due", "billing period",
			"units consumed", "meter reading",
		},
		doctype.WaterBill: {
			"water supply", "meter", "municipal", "usage", "billing cycle", "consumer id",
			"total demand", "tot.rebate",
		},
		doctype.GasBill: {
			"gas bill", "lpg", "png", "gas connection", "consumer number", "invoice number",
			"bill number", "billing period", "due date", "amount payable", "gst",
			"delivery date", "refill", "cylinder", "indane", "bharat gas", "hp gas", "bpcl", "ioc",
		},
		doctype.MobileBill: {
			"mobile services", "telecom", "postpaid", "bill number", "plan", "total amount",
		},
		doctype.BankStatement: {
			"account statement", "bank", "account number", "debit", "credit", "balance",
			"closing balance", "ifsc",
		},
		doctype.IncomeProof: {
			"salary", "income", "ctc", "gross pay", "net pay", "payslip",
		},
		doctype.UPITransactions: {
			"upi", "transaction id", "txn id", "reference number", "payment",
		},
		doctype.MobileRecharge: {
			"recharge", "validity", "plan", "top up",
		},
		doctype.InternetBill: {
			"internet", "broadband", "wifi", "invoice", "service provider",
		},
	})
	if err != nil {
		panic(err)
	}
	return table
}

type keywordFile struct {
	Keywords map[string][]string `yaml:"keywords"`
}

// LoadKeywordTable reads a YAML file of the form
//
//	keywords:
//	  bank_statement: [bank, ifsc]
//
// and builds a table from it.
func LoadKeywordTable(path string) (KeywordTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return KeywordTable{}, fmt.Errorf("read keyword file: %w", err)
	}
	return ParseKeywordTable(raw)
}

// ParseKeywordTable builds a table from YAML bytes.
func ParseKeywordTable(raw []byte) (KeywordTable, error) {
	var file keywordFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return KeywordTable{}, fmt.Errorf("parse keyword file: %w", err)
	}
	entries := make(map[doctype.Type][]string, len(file.Keywords))
	for label, words := range file.Keywords {
		t, err := doctype.Parse(label)
		if err != nil {
			return KeywordTable{}, err
		}
		entries[t] = words
	}
	return NewKeywordTable(entries)
}
