package alerts

// Alert types
const (
	TypeCompMultipleChange = "comp_multiple_change"
	TypeValuationDelta     = "valuation_delta"
	TypeUnderperformance   = "underperformance"
)

// Severities
const (
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Alert is one triggered divergence event. Only the acknowledged flag ever
// changes after creation.
type Alert struct {
	ID           int64  `json:"id"`
	Type         string `json:"alert_type"`
	CompanyID    *int64 `json:"company_id,omitempty"`
	Message      string `json:"message"`
	Severity     string `json:"severity"`
	TriggeredAt  string `json:"triggered_at,omitempty"`
	Acknowledged bool   `json:"acknowledged"`
}

// Summary counts currently unacknowledged alerts
type Summary struct {
	TotalActive int            `json:"total_active"`
	BySeverity  map[string]int `json:"by_severity"`
	ByType      map[string]int `json:"by_type"`
}
