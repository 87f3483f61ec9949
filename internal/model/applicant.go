package model

// CityTier is the cost-of-living bucket an applicant lives in.
// tier_1 is metro, tier_3 is low-cost.
type CityTier string

// City tier constants.
const (
	TierOne   CityTier = "tier_1"
	TierTwo   CityTier = "tier_2"
	TierThree CityTier = "tier_3"
)

// Valid reports whether the tier is one of the known buckets.
func (c CityTier) Valid() bool {
	switch c {
	case TierOne, TierTwo, TierThree:
		return true
	}
	return false
}

// Encoded returns the numeric encoding used for model inference.
// Unrecognized tiers fall back to 2, matching the training contract.
func (c CityTier) Encoded() float64 {
	switch c {
	case TierOne:
		return 1
	case TierTwo:
		return 2
	case TierThree:
		return 3
	}
	return 2
}

// ApplicantFeatures are the six attributes fed into the scoring pipeline.
// MonthlyIncome must be positive; callers validate before invoking the
// pipeline, and the computation guards divisions rather than rejecting.
type ApplicantFeatures struct {
	NumDebts        int
	TotalDebtAmount float64
	MonthlyEMIs     float64
	TotalAssets     float64
	MonthlyIncome   float64
	CityTier        CityTier
}
