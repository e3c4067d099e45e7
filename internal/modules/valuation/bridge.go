package valuation

// EquityBridge is the walk from enterprise value down to the HoldCo's
// minority stake
type EquityBridge struct {
	EquityValue       float64 `json:"equity_value"`
	EquityAfterPrefs  float64 `json:"equity_after_prefs"`
	HoldCoEquityValue float64 `json:"holdco_equity_value"`
}

// EnterpriseToEquity converts an enterprise value into the HoldCo's stake.
// The steps are strictly ordered: net debt first, then the preferred
// liquidation preference (senior to common, so deducted before the
// ownership split), then ownership and dilution. A negative netDebt means
// net cash. EquityAfterPrefs and HoldCoEquityValue are never negative for
// ownership and dilution in [0,1].
func EnterpriseToEquity(enterpriseValue, netDebt, preferredAmount, ownershipPct, dilutionPct float64) EquityBridge {
	equityValue := enterpriseValue - netDebt
	equityAfterPrefs := equityValue - preferredAmount
	if equityAfterPrefs < 0 {
		equityAfterPrefs = 0
	}
	holdcoEquity := equityAfterPrefs * ownershipPct * (1 - dilutionPct)
	return EquityBridge{
		EquityValue:       equityValue,
		EquityAfterPrefs:  equityAfterPrefs,
		HoldCoEquityValue: holdcoEquity,
	}
}
