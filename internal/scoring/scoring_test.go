package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lendnova-backend/internal/doctype"
)

func longText(prefix string) string {
	return prefix + strings.Repeat(" balance ledger entry", 15)
}

func TestFraudLowContentRule(t *testing.T) {
	rules := DefaultFraudRules()

	res := rules.Score([]Evidence{{Type: doctype.BankStatement, Text: "bank statement"}})
	assert.Equal(t, 20, res.Score)
	assert.Equal(t, []string{"bank_statement has insufficient data"}, res.Flags)

	res = rules.Score([]Evidence{{Type: doctype.BankStatement, Text: strings.Repeat("a", 199)}})
	assert.Equal(t, 20, res.Score)

	res = rules.Score([]Evidence{{Type: doctype.BankStatement, Text: strings.Repeat("a", 200)}})
	assert.Equal(t, 0, res.Score)
	assert.Empty(t, res.Flags)
}

func TestFraudLengthCountsCharacters(t *testing.T) {
	// 150 two-byte runes is 300 bytes but only 150 characters.
	res := DefaultFraudRules().Score([]Evidence{{Type: doctype.IncomeProof, Text: strings.Repeat("é", 150)}})
	assert.Equal(t, 20, res.Score)
}

func TestFraudTemplatedRule(t *testing.T) {
	rules := DefaultFraudRules()

	tests := []struct {
		name  string
		text  string
		score int
	}{
		{name: "two samples", text: longText("sample sample"), score: 0},
		{name: "three samples", text: longText("sample sample sample"), score: 25},
		{name: "three placeholders", text: longText("xxxx xxxx xxxx"), score: 0},
		{name: "four placeholders", text: longText("xxxx xxxx xxxx xxxx"), score: 25},
		{name: "non overlapping count", text: longText("xxxxxxxxxxxxxx"), score: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := rules.Score([]Evidence{{Type: doctype.UPITransactions, Text: tt.text}})
			assert.Equal(t, tt.score, res.Score)
			if tt.score > 0 {
				assert.Equal(t, []string{"upi_transactions appears templated"}, res.Flags)
			}
		})
	}
}

func TestFraudBothRulesOnOneDocument(t *testing.T) {
	res := DefaultFraudRules().Score([]Evidence{{Type: doctype.GasBill, Text: "sample sample sample"}})
	assert.Equal(t, 45, res.Score)
	assert.Equal(t, []string{"gas_bill has insufficient data", "gas_bill appears templated"}, res.Flags)
}

func TestFraudScoreIsCappedAndMonotonic(t *testing.T) {
	rules := DefaultFraudRules()
	var docs []Evidence
	prev := 0
	for i := 0; i < 6; i++ {
		docs = append(docs, Evidence{Type: doctype.WaterBill, Text: "sample sample sample"})
		res := rules.Score(docs)
		assert.GreaterOrEqual(t, res.Score, prev)
		assert.LessOrEqual(t, res.Score, 100)
		prev = res.Score
	}
	assert.Equal(t, 100, prev)
	assert.Len(t, rules.Score(docs).Flags, 12)
}

func TestFraudFlagOrderFollowsDocuments(t *testing.T) {
	res := DefaultFraudRules().Score([]Evidence{
		{Type: doctype.RentReceipt, Text: "rent"},
		{Type: doctype.InternetBill, Text: longText("internet")},
		{Type: doctype.MobileBill, Text: "plan"},
	})
	assert.Equal(t, 40, res.Score)
	assert.Equal(t, []string{"rent_receipt has insufficient data", "mobile_bill has insufficient data"}, res.Flags)
}

func TestCreditScore(t *testing.T) {
	rules := DefaultCreditRules()

	tests := []struct {
		name  string
		valid int
		fraud int
		score int
		risk  RiskLevel
	}{
		{name: "five clean documents", valid: 5, fraud: 0, score: 750, risk: RiskLow},
		{name: "five documents max fraud", valid: 5, fraud: 100, score: 600, risk: RiskMedium},
		{name: "floor of fractional penalty", valid: 5, fraud: 45, score: 683, risk: RiskMedium},
		{name: "clamped at minimum", valid: 0, fraud: 100, score: 300, risk: RiskHigh},
		{name: "clamped at maximum", valid: 10, fraud: 0, score: 900, risk: RiskLow},
		{name: "four documents light fraud", valid: 4, fraud: 8, score: 648, risk: RiskMedium},
		{name: "exactly on medium", valid: 4, fraud: 40, score: 600, risk: RiskMedium},
		{name: "just below medium", valid: 4, fraud: 42, score: 597, risk: RiskHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, risk := rules.Score(tt.valid, tt.fraud)
			assert.Equal(t, tt.score, score)
			assert.Equal(t, tt.risk, risk)
		})
	}
}

func TestRiskBoundaries(t *testing.T) {
	rules := DefaultCreditRules()
	assert.Equal(t, RiskLow, rules.Risk(750))
	assert.Equal(t, RiskMedium, rules.Risk(749))
	assert.Equal(t, RiskMedium, rules.Risk(600))
	assert.Equal(t, RiskHigh, rules.Risk(599))
}

func TestEligibilityBoundaries(t *testing.T) {
	table := DefaultEligibilityTable()
	cases := map[int]int{
		900: 500000,
		750: 500000,
		749: 250000,
		650: 250000,
		649: 100000,
		550: 100000,
		549: 0,
		300: 0,
	}
	for score, want := range cases {
		assert.Equal(t, want, table.Amount(score), "score %d", score)
	}
}

func TestPolicyDecide(t *testing.T) {
	docs := make([]Evidence, 0, 5)
	for _, typ := range doctype.All()[:5] {
		docs = append(docs, Evidence{Type: typ, Text: longText(string(typ))})
	}
	d := DefaultPolicy().Decide(docs)
	require.Empty(t, d.Flags)
	assert.Equal(t, 0, d.FraudScore)
	assert.Equal(t, 750, d.CreditScore)
	assert.Equal(t, RiskLow, d.RiskLevel)
	assert.Equal(t, 500000, d.EligibleAmount)
	assert.Equal(t, 5, DefaultPolicy().MinRequiredDocs)
}
