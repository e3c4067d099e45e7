package valuation

import (
	"fmt"

	"github.com/evmarklabs/holdco-mtm/internal/domain"
	"github.com/evmarklabs/holdco-mtm/internal/modules/settings"
)

// Sensitivity re-runs the valuation math at base, upside and downside
// comp-multiple scenarios. The upside and downside legs shift both medians
// by stdDevs sample standard deviations (floored at zero); the comp growth
// median is left unperturbed. While the EV/EBITDA method stays usable in
// every scenario, the calculators, blend and bridge are all monotonic
// non-decreasing in the multiples, so upside >= base >= downside. Flooring
// a median at zero can break that ordering: the blend then redistributes
// that method's weight onto the surviving estimates.
func (s *Service) Sensitivity(companyID int64, stdDevs *float64, weights *domain.Weights) (*SensitivityResult, error) {
	company, err := s.companies.GetByID(companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, fmt.Errorf("company %d: %w", companyID, domain.ErrNotFound)
	}

	summary, err := s.comps.Summary(companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize comps: %w", err)
	}

	n := s.settings.GetFloat(settings.KeySensitivityStdDevs, settings.DefaultSensitivityStdDevs)
	if stdDevs != nil {
		n = *stdDevs
	}
	w := resolveWeights(weights)
	factor := s.settings.GetFloat(settings.KeyGrowthFactor, settings.DefaultGrowthFactor)

	runScenario := func(multiplier float64) Scenario {
		adjEVRevenue := summary.MedianEVRevenue + multiplier*summary.StdEVRevenue
		adjEVEBITDA := summary.MedianEVEBITDA + multiplier*summary.StdEVEBITDA
		if adjEVRevenue < 0 {
			adjEVRevenue = 0
		}
		if adjEVEBITDA < 0 {
			adjEVEBITDA = 0
		}

		result := s.compute(company, adjEVRevenue, adjEVEBITDA, summary.MedianGrowthRate, factor, w)
		return Scenario{
			EnterpriseValue:      result.EnterpriseValue,
			EquityValue:          result.EquityValue,
			HoldCoEquityValue:    result.HoldCoEquityValue,
			AdjEVRevenueMultiple: adjEVRevenue,
			AdjEVEBITDAMultiple:  adjEVEBITDA,
		}
	}

	base := runScenario(0)
	upside := runScenario(n)
	downside := runScenario(-n)

	evRange := upside.EnterpriseValue - downside.EnterpriseValue
	pctRange := 0.0
	if base.EnterpriseValue > 0 {
		pctRange = evRange / base.EnterpriseValue
	}

	return &SensitivityResult{
		CompanyID:   company.ID,
		CompanyName: company.Name,
		Base:        base,
		Upside:      upside,
		Downside:    downside,
		EVRange:     evRange,
		PctRange:    pctRange,
	}, nil
}
