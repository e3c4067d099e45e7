package holdco

// Snapshot is one persisted HoldCo NAV record
type Snapshot struct {
	ID                int64    `json:"id"`
	SnapshotDate      string   `json:"snapshot_date"` // YYYY-MM-DD
	TotalEquityValue  float64  `json:"total_equity_value"`
	HoldCoCash        float64  `json:"holdco_cash"`
	HoldCoDebt        float64  `json:"holdco_debt"`
	NAV               float64  `json:"nav"`
	NAVPerShare       float64  `json:"nav_per_share"`
	SharesOutstanding float64  `json:"shares_outstanding"`
	ChangeVsPriorPct  *float64 `json:"change_vs_prior_pct,omitempty"`
}

// Contribution is one company's share of the NAV roll-up
type Contribution struct {
	CompanyID         int64   `json:"company_id"`
	CompanyName       string  `json:"company_name"`
	HoldCoEquityValue float64 `json:"holdco_equity_value"`
	EnterpriseValue   float64 `json:"enterprise_value"`
}

// NAVResult is the output of a NAV calculation.
// ChangeVsPriorPct is nil when no prior snapshot exists.
type NAVResult struct {
	TotalEquityValue  float64        `json:"total_equity_value"`
	HoldCoCash        float64        `json:"holdco_cash"`
	HoldCoDebt        float64        `json:"holdco_debt"`
	NAV               float64        `json:"nav"`
	NAVPerShare       float64        `json:"nav_per_share"`
	SharesOutstanding float64        `json:"shares_outstanding"`
	ChangeVsPriorPct  *float64       `json:"change_vs_prior_pct,omitempty"`
	Contributions     []Contribution `json:"company_contributions"`
}

// CompanySummary combines a company's financials with its latest valuation
type CompanySummary struct {
	ID                int64    `json:"id"`
	Name              string   `json:"name"`
	Sector            string   `json:"sector"`
	RevenueTTM        float64  `json:"revenue_ttm"`
	EBITDA            float64  `json:"ebitda"`
	GrowthRate        float64  `json:"growth_rate"`
	EnterpriseValue   *float64 `json:"enterprise_value,omitempty"`
	HoldCoEquityValue float64  `json:"holdco_equity_value"`
	LastMarkDate      *string  `json:"last_mark_date,omitempty"`
	LastMarkEV        *float64 `json:"last_mark_ev,omitempty"`
	WeightPct         float64  `json:"weight_pct"`
}

// PortfolioSummary is the portfolio-level roll-up view
type PortfolioSummary struct {
	Companies        []CompanySummary   `json:"companies"`
	TotalEquity      float64            `json:"total_equity"`
	NAV              *float64           `json:"nav,omitempty"`
	NAVPerShare      *float64           `json:"nav_per_share,omitempty"`
	ChangeVsPriorPct *float64           `json:"change_vs_prior_pct,omitempty"`
	CompanyCount     int                `json:"company_count"`
	SectorBreakdown  map[string]float64 `json:"sector_breakdown"`
}

// ConcentrationEntry is one row of the concentration ranking
type ConcentrationEntry struct {
	CompanyID         int64   `json:"company_id"`
	CompanyName       string  `json:"company_name"`
	HoldCoEquityValue float64 `json:"holdco_equity_value"`
	WeightPct         float64 `json:"weight_pct"`
}
