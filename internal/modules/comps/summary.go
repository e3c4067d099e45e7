package comps

import (
	"github.com/evmarklabs/holdco-mtm/internal/domain"
	"github.com/evmarklabs/holdco-mtm/pkg/formulas"
)

// Summarize reduces a company's current comp observations to summary
// statistics over EV/Revenue and EV/EBITDA, plus a median growth rate.
//
// Multiples participate only when present and strictly positive; a comp with
// negative EBITDA contributes nothing to the EV/EBITDA statistics. Growth
// rates participate whenever present, regardless of sign. With no qualifying
// values every statistic is 0, never NaN, and CompCount still reports the
// raw observation count.
func Summarize(observations []domain.CompObservation) domain.CompSummary {
	var evRevenues, evEBITDAs, growthRates []float64
	for _, o := range observations {
		if o.EVRevenue != nil && *o.EVRevenue > 0 {
			evRevenues = append(evRevenues, *o.EVRevenue)
		}
		if o.EVEBITDA != nil && *o.EVEBITDA > 0 {
			evEBITDAs = append(evEBITDAs, *o.EVEBITDA)
		}
		if o.GrowthRate != nil {
			growthRates = append(growthRates, *o.GrowthRate)
		}
	}

	return domain.CompSummary{
		CompCount:        len(observations),
		MedianEVRevenue:  formulas.Median(evRevenues),
		MeanEVRevenue:    formulas.Mean(evRevenues),
		HighEVRevenue:    formulas.Max(evRevenues),
		LowEVRevenue:     formulas.Min(evRevenues),
		StdEVRevenue:     formulas.SampleStdDev(evRevenues),
		MedianEVEBITDA:   formulas.Median(evEBITDAs),
		MeanEVEBITDA:     formulas.Mean(evEBITDAs),
		HighEVEBITDA:     formulas.Max(evEBITDAs),
		LowEVEBITDA:      formulas.Min(evEBITDAs),
		StdEVEBITDA:      formulas.SampleStdDev(evEBITDAs),
		MedianGrowthRate: formulas.Median(growthRates),
	}
}
