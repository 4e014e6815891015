package scoring

import "math"

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

type CreditRules struct {
	Base            int
	PerDocument     int
	FraudWeight     float64
	Min             int
	Max             int
	LowThreshold    int
	MediumThreshold int
}

func DefaultCreditRules() CreditRules {
	return CreditRules{
		Base:            300,
		PerDocument:     90,
		FraudWeight:     1.5,
		Min:             300,
		Max:             900,
		LowThreshold:    750,
		MediumThreshold: 600,
	}
}

// Score returns the clamped credit score and its risk tier.
func (r CreditRules) Score(validCount, fraudScore int) (int, RiskLevel) {
	penalty := int(math.Floor(r.FraudWeight * float64(fraudScore)))
	score := r.Base + r.PerDocument*validCount - penalty
	if score < r.Min {
		score = r.Min
	}
	if score > r.Max {
		score = r.Max
	}
	return score, r.Risk(score)
}

func (r CreditRules) Risk(score int) RiskLevel {
	switch {
	case score >= r.LowThreshold:
		return RiskLow
	case score >= r.MediumThreshold:
		return RiskMedium
	default:
		return RiskHigh
	}
}
