package assessments

import (
	"strings"
	"time"

	"lendnova-backend/internal/scoring"
)

// HealthyInsight is reported when the fraud scorer raised no flags.
const HealthyInsight = "Healthy financial behaviour detected."

// Assessment is an immutable scoring result. New runs append; nothing is
// ever updated in place.
type Assessment struct {
	ID             string
	UserID         string
	FraudScore     int
	CreditScore    int
	RiskLevel      scoring.RiskLevel
	EligibleAmount int
	Insights       string
	Flags          []string
	ValidDocuments int
	CreatedAt      time.Time
}

// ComposeInsights joins fraud flags into the human readable summary.
func ComposeInsights(flags []string) string {
	if len(flags) == 0 {
		return HealthyInsight
	}
	return strings.Join(flags, "; ")
}
