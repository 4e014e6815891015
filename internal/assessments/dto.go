package assessments

import "time"

type AssessmentResponse struct {
	AssessmentID   string    `json:"assessmentId"`
	FraudScore     int       `json:"fraudScore"`
	CreditScore    int       `json:"creditScore"`
	RiskLevel      string    `json:"riskLevel"`
	EligibleAmount int       `json:"eligibleAmount"`
	Insights       string    `json:"insights"`
	Flags          []string  `json:"flags"`
	ValidDocuments int       `json:"validDocuments"`
	CreatedAt      time.Time `json:"createdAt"`
}

type RunResponse struct {
	Produced          bool                `json:"produced"`
	ValidDocuments    int                 `json:"validDocuments"`
	RequiredDocuments int                 `json:"requiredDocuments"`
	Assessment        *AssessmentResponse `json:"assessment"`
}

type QueuedResponse struct {
	Status    string `json:"status"`
	RequestID string `json:"requestId"`
}

type DashboardResponse struct {
	ValidDocuments   int                 `json:"validDocuments"`
	InvalidDocuments int                 `json:"invalidDocuments"`
	Assessment       *AssessmentResponse `json:"assessment"`
}

type ListResponse struct {
	Items []AssessmentResponse `json:"items"`
}

func toResponse(a Assessment) AssessmentResponse {
	flags := a.Flags
	if flags == nil {
		flags = []string{}
	}
	return AssessmentResponse{
		AssessmentID:   a.ID,
		FraudScore:     a.FraudScore,
		CreditScore:    a.CreditScore,
		RiskLevel:      string(a.RiskLevel),
		EligibleAmount: a.EligibleAmount,
		Insights:       a.Insights,
		Flags:          flags,
		ValidDocuments: a.ValidDocuments,
		CreatedAt:      a.CreatedAt,
	}
}
