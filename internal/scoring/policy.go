package scoring

// MinRequiredDocs is the number of valid documents an owner needs before an
// assessment is produced.
const MinRequiredDocs = 5

// Policy bundles every constant the decision pipeline runs on.
type Policy struct {
	MinRequiredDocs int
	Fraud           FraudRules
	Credit          CreditRules
	Eligibility     EligibilityTable
}

func DefaultPolicy() Policy {
	return Policy{
		MinRequiredDocs: MinRequiredDocs,
		Fraud:           DefaultFraudRules(),
		Credit:          DefaultCreditRules(),
		Eligibility:     DefaultEligibilityTable(),
	}
}

// Decision is the full pipeline output for one document set.
type Decision struct {
	FraudScore     int
	Flags          []string
	CreditScore    int
	RiskLevel      RiskLevel
	EligibleAmount int
}

// Decide runs fraud, credit and eligibility in sequence. It does not apply
// the MinRequiredDocs gate.
func (p Policy) Decide(docs []Evidence) Decision {
	fraud := p.Fraud.Score(docs)
	credit, risk := p.Credit.Score(len(docs), fraud.Score)
	return Decision{
		FraudScore:     fraud.Score,
		Flags:          fraud.Flags,
		CreditScore:    credit,
		RiskLevel:      risk,
		EligibleAmount: p.Eligibility.Amount(credit),
	}
}
