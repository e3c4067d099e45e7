package domain

import "errors"

// ErrNotFound indicates a referenced entity does not exist.
// Single-entity operations let it escape; batch operations record it
// per entity and continue.
var ErrNotFound = errors.New("not found")

// Company represents a privately held portfolio company
type Company struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"` // unique
	Sector          string   `json:"sector,omitempty"`
	Subsector       string   `json:"subsector,omitempty"`
	RevenueTTM      float64  `json:"revenue_ttm"`
	RevenueRunRate  float64  `json:"revenue_run_rate"`
	EBITDA          float64  `json:"ebitda"`
	GrossMargin     float64  `json:"gross_margin"`
	GrowthRate      float64  `json:"growth_rate"` // decimal fraction, e.g. 0.25
	NetDebt         float64  `json:"net_debt"`    // negative = net cash
	OwnershipPct    float64  `json:"ownership_pct"`    // [0,1]
	PreferredAmount float64  `json:"preferred_amount"` // liquidation preference
	DilutionPct     float64  `json:"dilution_pct"`     // [0,1]
	LastMarkDate    *string  `json:"last_mark_date,omitempty"` // YYYY-MM-DD
	LastMarkEV      *float64 `json:"last_mark_ev,omitempty"`
	LastMarkEquity  *float64 `json:"last_mark_equity,omitempty"`
	Notes           string   `json:"notes,omitempty"`
}

// Comp is one tracked public comparable in a company's comp set
type Comp struct {
	ID          int64  `json:"id"`
	CompanyID   int64  `json:"company_id"`
	Ticker      string `json:"ticker"`
	CompanyName string `json:"company_name,omitempty"`
	Source      string `json:"source"` // marketdata or manual
}

// CompObservation is one dated pull of a comparable's financials.
// Immutable once recorded; corrections are new observations.
// EVRevenue and EVEBITDA are nil when the denominator was non-positive.
type CompObservation struct {
	ID              int64    `json:"id"`
	CompID          int64    `json:"comp_id"`
	Ticker          string   `json:"ticker"`
	DatePulled      string   `json:"date_pulled"` // YYYY-MM-DD
	EnterpriseValue float64  `json:"enterprise_value"`
	Revenue         float64  `json:"revenue"`
	EBITDA          float64  `json:"ebitda"`
	MarketCap       float64  `json:"market_cap"`
	EVRevenue       *float64 `json:"ev_revenue,omitempty"`
	EVEBITDA        *float64 `json:"ev_ebitda,omitempty"`
	GrowthRate      *float64 `json:"growth_rate,omitempty"`
	Source          string   `json:"source"`
}

// CompSummary aggregates a comp set's trading multiples.
// All statistics are 0 (never nil/NaN) when no qualifying values exist;
// CompCount reflects the raw observation count regardless.
type CompSummary struct {
	CompCount        int     `json:"comp_count"`
	MedianEVRevenue  float64 `json:"median_ev_revenue"`
	MeanEVRevenue    float64 `json:"mean_ev_revenue"`
	HighEVRevenue    float64 `json:"high_ev_revenue"`
	LowEVRevenue     float64 `json:"low_ev_revenue"`
	StdEVRevenue     float64 `json:"std_ev_revenue"`
	MedianEVEBITDA   float64 `json:"median_ev_ebitda"`
	MeanEVEBITDA     float64 `json:"mean_ev_ebitda"`
	HighEVEBITDA     float64 `json:"high_ev_ebitda"`
	LowEVEBITDA      float64 `json:"low_ev_ebitda"`
	StdEVEBITDA      float64 `json:"std_ev_ebitda"`
	MedianGrowthRate float64 `json:"median_growth_rate"`
}

// Weights holds the blend weights for the three valuation methods.
// Expected to sum to 1.0; validated at the edit boundary, not in the blend.
type Weights struct {
	EVRevenue      float64 `json:"ev_revenue"`
	EVEBITDA       float64 `json:"ev_ebitda"`
	GrowthAdjusted float64 `json:"growth_adjusted"`
}

// DefaultWeights returns the standard 40/40/20 method weighting
func DefaultWeights() Weights {
	return Weights{
		EVRevenue:      0.40,
		EVEBITDA:       0.40,
		GrowthAdjusted: 0.20,
	}
}

// Sum returns the total weight mass
func (w Weights) Sum() float64 {
	return w.EVRevenue + w.EVEBITDA + w.GrowthAdjusted
}
