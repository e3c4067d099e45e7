package valuation

import "github.com/evmarklabs/holdco-mtm/internal/domain"

// MethodBlended tags the canonical blended valuation in snapshots
const MethodBlended = "blended"

// Result is the full output of one company valuation run.
// ChangeEVPct and ChangeEquityPct are nil when no prior mark exists
// (percentage change against a zero baseline is undefined).
type Result struct {
	CompanyID              int64          `json:"company_id"`
	CompanyName            string         `json:"company_name"`
	EVRevenueMethod        float64        `json:"ev_revenue_method"`
	EVEBITDAMethod         float64        `json:"ev_ebitda_method"`
	EVGrowthAdjustedMethod float64        `json:"ev_growth_adjusted_method"`
	EnterpriseValue        float64        `json:"enterprise_value"`
	EquityValue            float64        `json:"equity_value"`
	EquityAfterPrefs       float64        `json:"equity_after_prefs"`
	HoldCoEquityValue      float64        `json:"holdco_equity_value"`
	MedianEVRevenue        float64        `json:"median_ev_revenue"`
	MedianEVEBITDA         float64        `json:"median_ev_ebitda"`
	CompCount              int            `json:"comp_count"`
	Weights                domain.Weights `json:"weights"`
	ChangeEVPct            *float64       `json:"change_ev_pct,omitempty"`
	ChangeEquityPct        *float64       `json:"change_equity_pct,omitempty"`
}

// BatchItem is one company's outcome in a batch run: either a result or an
// error message, never both. Batch runs never abort on a single failure.
type BatchItem struct {
	CompanyID   int64   `json:"company_id"`
	CompanyName string  `json:"company_name"`
	Result      *Result `json:"result,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// Snapshot is one persisted valuation record
type Snapshot struct {
	ID                int64   `json:"id"`
	CompanyID         int64   `json:"company_id"`
	SnapshotDate      string  `json:"snapshot_date"` // YYYY-MM-DD
	Method            string  `json:"method"`
	EnterpriseValue   float64 `json:"enterprise_value"`
	EquityValue       float64 `json:"equity_value"`
	HoldCoEquityValue float64 `json:"holdco_equity_value"`
	MedianEVRevenue   float64 `json:"median_ev_revenue"`
	MedianEVEBITDA    float64 `json:"median_ev_ebitda"`
	WeightsJSON       string  `json:"weights_json,omitempty"`
	Notes             string  `json:"notes,omitempty"`
}

// Scenario is one leg of a sensitivity run
type Scenario struct {
	EnterpriseValue      float64 `json:"enterprise_value"`
	EquityValue          float64 `json:"equity_value"`
	HoldCoEquityValue    float64 `json:"holdco_equity_value"`
	AdjEVRevenueMultiple float64 `json:"adj_ev_revenue_multiple"`
	AdjEVEBITDAMultiple  float64 `json:"adj_ev_ebitda_multiple"`
}

// SensitivityResult holds the base, upside and downside scenarios plus the
// resulting valuation range
type SensitivityResult struct {
	CompanyID   int64    `json:"company_id"`
	CompanyName string   `json:"company_name"`
	Base        Scenario `json:"base"`
	Upside      Scenario `json:"upside"`
	Downside    Scenario `json:"downside"`
	EVRange     float64  `json:"ev_range"`
	PctRange    float64  `json:"pct_range"`
}
