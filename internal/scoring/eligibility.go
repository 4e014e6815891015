package scoring

// Tier is an inclusive lower bound on credit score and the amount it unlocks.
type Tier struct {
	MinScore int
	Amount   int
}

// EligibilityTable is evaluated top-down; the first tier whose MinScore is
// met wins. Scores below every tier are eligible for nothing.
type EligibilityTable []Tier

func DefaultEligibilityTable() EligibilityTable {
	return EligibilityTable{
		{MinScore: 750, Amount: 500000},
		{MinScore: 650, Amount: 250000},
		{MinScore: 550, Amount: 100000},
	}
}

func (t EligibilityTable) Amount(score int) int {
	for _, tier := range t {
		if score >= tier.MinScore {
			return tier.Amount
		}
	}
	return 0
}
