package valuation

// The three valuation methods are pure functions. Each returns 0 rather
// than an error whenever an input makes the method meaningless, so the
// pipeline always completes with a number.

// RevenueMultipleEV values the business off its trailing revenue at the
// comp set's median EV/Revenue multiple
func RevenueMultipleEV(revenueTTM, medianEVRevenue float64) float64 {
	if revenueTTM <= 0 || medianEVRevenue <= 0 {
		return 0
	}
	return revenueTTM * medianEVRevenue
}

// EBITDAMultipleEV values the business off EBITDA at the comp set's median
// EV/EBITDA multiple. A zero result signals downstream that the company
// cannot be valued by this method (negative or zero EBITDA).
func EBITDAMultipleEV(ebitda, medianEVEBITDA float64) float64 {
	if ebitda <= 0 || medianEVEBITDA <= 0 {
		return 0
	}
	return ebitda * medianEVEBITDA
}

// GrowthAdjustedEV applies a growth premium or discount to the revenue
// multiple before valuing. A company growing faster than its comps earns a
// premium; slower, a discount. The adjusted multiple is floored at zero so
// the discount can never produce a negative valuation.
func GrowthAdjustedEV(revenueTTM, medianEVRevenue, companyGrowthRate, medianCompGrowthRate, adjustmentFactor float64) float64 {
	if revenueTTM <= 0 || medianEVRevenue <= 0 {
		return 0
	}
	growthPremium := (companyGrowthRate - medianCompGrowthRate) * adjustmentFactor
	adjustedMultiple := medianEVRevenue * (1 + growthPremium)
	if adjustedMultiple < 0 {
		adjustedMultiple = 0
	}
	return revenueTTM * adjustedMultiple
}
