package valuation

import "github.com/evmarklabs/holdco-mtm/internal/domain"

// BlendedEnterpriseValue combines the three method estimates into a single
// EV using the supplied weights.
//
// When the EBITDA method produced no value, its weight is redistributed to
// the remaining methods instead of being silently dropped. Three cases:
//
//  1. EBITDA method usable (or already unweighted): straight weighted sum.
//  2. EBITDA unusable, remaining weights positive: each remaining weight is
//     scaled by own/remaining * originalTotal. The originalTotal factor
//     conserves total weight mass exactly when the caller's weights sum to
//     1.0, which the configuration boundary enforces.
//  3. EBITDA unusable and remaining weights are zero: all weight moves to
//     the revenue method.
func BlendedEnterpriseValue(evRevenue, evEBITDA, evGrowthAdjusted float64, w domain.Weights) float64 {
	wRev := w.EVRevenue
	wEbit := w.EVEBITDA
	wGrowth := w.GrowthAdjusted

	if evEBITDA <= 0 && wEbit > 0 {
		originalTotal := wRev + wEbit + wGrowth
		remaining := wRev + wGrowth
		if remaining > 0 {
			wRev = wRev / remaining * originalTotal
			wGrowth = wGrowth / remaining * originalTotal
		} else {
			wRev = 1.0
			wGrowth = 0.0
		}
		wEbit = 0.0
		evEBITDA = 0.0
	}

	return wRev*evRevenue + wEbit*evEBITDA + wGrowth*evGrowthAdjusted
}
