package alerts

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/evmarklabs/holdco-mtm/internal/modules/companies"
	"github.com/evmarklabs/holdco-mtm/internal/modules/comps"
	"github.com/evmarklabs/holdco-mtm/internal/modules/settings"
	"github.com/evmarklabs/holdco-mtm/internal/modules/valuation"
	"github.com/evmarklabs/holdco-mtm/pkg/formulas"
)

// Service runs threshold checks against recorded baselines and emits
// alerts. Checks are deliberately not deduplicated: an unresolved
// divergence produces a fresh alert row on every sweep.
type Service struct {
	repo       *Repository
	companies  *companies.Repository
	comps      *comps.Service
	valuations *valuation.SnapshotRepository
	settings   *settings.Repository
	log        zerolog.Logger
}

// NewService creates a new alert service
func NewService(
	repo *Repository,
	companyRepo *companies.Repository,
	compService *comps.Service,
	valuationRepo *valuation.SnapshotRepository,
	settingsRepo *settings.Repository,
	log zerolog.Logger,
) *Service {
	return &Service{
		repo:       repo,
		companies:  companyRepo,
		comps:      compService,
		valuations: valuationRepo,
		settings:   settingsRepo,
		log:        log.With().Str("service", "alerts").Logger(),
	}
}

// CheckCompMultipleChange compares the current live comp medians against
// the medians stored with the company's most recent blended snapshot. Each
// multiple type can trigger independently, so up to two alerts per run.
// A stored median of zero is skipped, not treated as a divergence.
func (s *Service) CheckCompMultipleChange(companyID int64, threshold *float64) ([]Alert, error) {
	limit := s.settings.GetFloat(settings.KeyCompChangeThreshold, settings.DefaultCompChangeThreshold)
	if threshold != nil {
		limit = *threshold
	}

	company, err := s.companies.GetByID(companyID)
	if err != nil || company == nil {
		return nil, err
	}

	latest, err := s.valuations.GetLatest(companyID)
	if err != nil || latest == nil {
		return nil, err
	}

	summary, err := s.comps.Summary(companyID)
	if err != nil {
		return nil, err
	}

	var triggered []Alert
	check := func(label string, stored, current float64) {
		if stored <= 0 {
			return
		}
		change := formulas.PctChange(stored, current)
		if change == nil || math.Abs(*change) <= limit {
			return
		}
		direction := "increased"
		if *change < 0 {
			direction = "decreased"
		}
		triggered = append(triggered, Alert{
			Type:      TypeCompMultipleChange,
			CompanyID: &company.ID,
			Message: fmt.Sprintf("%s: Median %s %s %.1f%% (from %.1fx to %.1fx)",
				company.Name, label, direction, math.Abs(*change)*100, stored, current),
			Severity: severityFor(*change, limit),
		})
	}

	check("EV/Revenue", latest.MedianEVRevenue, summary.MedianEVRevenue)
	check("EV/EBITDA", latest.MedianEVEBITDA, summary.MedianEVEBITDA)
	return triggered, nil
}

// CheckValuationDelta compares the company's cached last-mark EV against
// the latest persisted blended valuation. Skipped when no last mark exists.
func (s *Service) CheckValuationDelta(companyID int64, threshold *float64) (*Alert, error) {
	limit := s.settings.GetFloat(settings.KeyValueDeltaThreshold, settings.DefaultValueDeltaThreshold)
	if threshold != nil {
		limit = *threshold
	}

	company, err := s.companies.GetByID(companyID)
	if err != nil || company == nil {
		return nil, err
	}
	if company.LastMarkEV == nil || *company.LastMarkEV == 0 {
		return nil, nil
	}

	latest, err := s.valuations.GetLatest(companyID)
	if err != nil || latest == nil {
		return nil, err
	}

	change := formulas.PctChange(*company.LastMarkEV, latest.EnterpriseValue)
	if change == nil || math.Abs(*change) <= limit {
		return nil, nil
	}

	direction := "increased"
	if *change < 0 {
		direction = "decreased"
	}
	return &Alert{
		Type:      TypeValuationDelta,
		CompanyID: &company.ID,
		Message: fmt.Sprintf("%s: EV %s %.1f%% vs last mark",
			company.Name, direction, math.Abs(*change)*100),
		Severity: severityFor(*change, limit),
	}, nil
}

// CheckUnderperformance compares the revenue run-rate against the revenue
// the company's own growth rate implies. Only a miss triggers;
// outperformance never alerts.
func (s *Service) CheckUnderperformance(companyID int64, threshold *float64) (*Alert, error) {
	limit := s.settings.GetFloat(settings.KeyUnderperfThreshold, settings.DefaultUnderperfThreshold)
	if threshold != nil {
		limit = *threshold
	}

	company, err := s.companies.GetByID(companyID)
	if err != nil || company == nil {
		return nil, err
	}

	expectedRevenue := company.RevenueTTM * (1 + company.GrowthRate)
	if expectedRevenue <= 0 || company.RevenueRunRate <= 0 {
		return nil, nil
	}

	miss := formulas.PctChange(expectedRevenue, company.RevenueRunRate)
	if miss == nil || *miss >= -limit {
		return nil, nil
	}

	return &Alert{
		Type:      TypeUnderperformance,
		CompanyID: &company.ID,
		Message: fmt.Sprintf("%s: Revenue run-rate (%.1fM) is %.1f%% below expected (%.1fM)",
			company.Name, company.RevenueRunRate/1e6, math.Abs(*miss)*100, expectedRevenue/1e6),
		Severity: severityFor(*miss, limit),
	}, nil
}

// RunAllChecks executes every check for every company, persists each
// triggered alert as a new row, and returns the newly created alerts
func (s *Service) RunAllChecks() ([]Alert, error) {
	all, err := s.companies.GetAll()
	if err != nil {
		return nil, err
	}

	var newAlerts []Alert
	for _, company := range all {
		compAlerts, err := s.CheckCompMultipleChange(company.ID, nil)
		if err != nil {
			s.log.Warn().Err(err).Str("company", company.Name).Msg("Comp multiple check failed")
		}
		newAlerts = append(newAlerts, compAlerts...)

		deltaAlert, err := s.CheckValuationDelta(company.ID, nil)
		if err != nil {
			s.log.Warn().Err(err).Str("company", company.Name).Msg("Valuation delta check failed")
		}
		if deltaAlert != nil {
			newAlerts = append(newAlerts, *deltaAlert)
		}

		perfAlert, err := s.CheckUnderperformance(company.ID, nil)
		if err != nil {
			s.log.Warn().Err(err).Str("company", company.Name).Msg("Underperformance check failed")
		}
		if perfAlert != nil {
			newAlerts = append(newAlerts, *perfAlert)
		}
	}

	for i := range newAlerts {
		id, err := s.repo.Insert(newAlerts[i])
		if err != nil {
			return nil, err
		}
		newAlerts[i].ID = id
	}

	s.log.Info().Int("triggered", len(newAlerts)).Msg("Alert sweep completed")
	return newAlerts, nil
}

// GetSummary counts currently unacknowledged alerts by severity and type
func (s *Service) GetSummary() (*Summary, error) {
	active, err := s.repo.GetActive()
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		TotalActive: len(active),
		BySeverity:  make(map[string]int),
		ByType:      make(map[string]int),
	}
	for _, a := range active {
		summary.BySeverity[a.Severity]++
		summary.ByType[a.Type]++
	}
	return summary, nil
}

// Acknowledge marks an alert as acknowledged
func (s *Service) Acknowledge(id int64) error {
	return s.repo.Acknowledge(id)
}

// severityFor escalates to high when the divergence magnitude exceeds
// twice the threshold
func severityFor(change, threshold float64) string {
	if math.Abs(change) > threshold*2 {
		return SeverityHigh
	}
	return SeverityMedium
}
