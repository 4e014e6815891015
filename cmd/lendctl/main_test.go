package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lendnova-backend/internal/extract"
)

// textOCR treats image bytes as already-recognised text.
type textOCR struct{}

func (textOCR) Recognize(ctx context.Context, image []byte) (string, error) {
	return string(image), nil
}

func useTextOCR(t *testing.T) {
	t.Helper()
	prev := newOCR
	newOCR = func(string, string) extract.OCREngine { return textOCR{} }
	t.Cleanup(func() { newOCR = prev })
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCheckReportsMatchedKeyword(t *testing.T) {
	useTextOCR(t)
	path := writeFile(t, t.TempDir(), "bill.png", "Electricity Bill, units consumed 120")

	out, err := run(t, "check", "--type", "electricity_bill", "--json", path)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	var got checkResult
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if !got.Valid || got.MatchedKeyword != "electricity" {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestCheckRejectsUnknownType(t *testing.T) {
	useTextOCR(t)
	path := writeFile(t, t.TempDir(), "x.png", "anything")
	if _, err := run(t, "check", "--type", "passport", path); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestScoreProducesDecision(t *testing.T) {
	useTextOCR(t)
	dir := t.TempDir()
	filler := strings.Repeat(" regular monthly activity recorded for this account", 6)
	args := []string{"score"}
	for _, spec := range []struct{ typ, text string }{
		{"rent_receipt", "rent paid to landlord" + filler},
		{"electricity_bill", "electricity units" + filler},
		{"water_bill", "water supply" + filler},
		{"bank_statement", "account statement balance" + filler},
		{"income_proof", "salary slip" + filler},
	} {
		path := writeFile(t, dir, spec.typ+".png", spec.text)
		args = append(args, "--doc", spec.typ+"="+path)
	}

	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	var report scoreReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if !report.Produced || report.Decision == nil {
		t.Fatalf("expected a decision, got %+v", report)
	}
	if report.Decision.CreditScore != 750 || report.Decision.RiskLevel != "LOW" || report.Decision.EligibleAmount != 500000 {
		t.Fatalf("unexpected decision %+v", report.Decision)
	}
	if report.Decision.Insights != "Healthy financial behaviour detected." {
		t.Fatalf("unexpected insights %q", report.Decision.Insights)
	}
}

func TestScoreBelowMinimum(t *testing.T) {
	useTextOCR(t)
	path := writeFile(t, t.TempDir(), "rent.png", "rent paid")

	out, err := run(t, "score", "--doc", "rent_receipt="+path)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	var report scoreReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Produced || report.Decision != nil || report.ValidDocuments != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
}
