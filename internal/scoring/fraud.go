package scoring

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"lendnova-backend/internal/doctype"
)

// Evidence is one valid document as seen by the fraud heuristic.
type Evidence struct {
	Type doctype.Type
	Text string
}

type FraudResult struct {
	Score int
	Flags []string
}

// FraudRules holds the low-content and templated-content thresholds.
type FraudRules struct {
	MinLength       int
	LowContentScore int
	SampleMax       int
	PlaceholderMax  int
	TemplatedScore  int
	Ceiling         int
}

func DefaultFraudRules() FraudRules {
	return FraudRules{
		MinLength:       200,
		LowContentScore: 20,
		SampleMax:       2,
		PlaceholderMax:  3,
		TemplatedScore:  25,
		Ceiling:         100,
	}
}

// Score applies both rules to every document in order. Flags follow document
// order; the score is capped at Ceiling.
func (r FraudRules) Score(docs []Evidence) FraudResult {
	res := FraudResult{Flags: []string{}}
	for _, doc := range docs {
		if utf8.RuneCountInString(doc.Text) < r.MinLength {
			res.Score += r.LowContentScore
			res.Flags = append(res.Flags, fmt.Sprintf("%s has insufficient data", doc.Type))
		}
		if strings.Count(doc.Text, "sample") > r.SampleMax || strings.Count(doc.Text, "xxxx") > r.PlaceholderMax {
			res.Score += r.TemplatedScore
			res.Flags = append(res.Flags, fmt.Sprintf("%s appears templated", doc.Type))
		}
	}
	if res.Score > r.Ceiling {
		res.Score = r.Ceiling
	}
	return res
}
