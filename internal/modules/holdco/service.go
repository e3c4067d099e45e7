package holdco

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/evmarklabs/holdco-mtm/internal/modules/companies"
	"github.com/evmarklabs/holdco-mtm/internal/modules/settings"
	"github.com/evmarklabs/holdco-mtm/internal/modules/valuation"
	"github.com/evmarklabs/holdco-mtm/pkg/formulas"
)

// Service rolls per-company valuations up into HoldCo-level NAV and
// concentration analytics
type Service struct {
	companies  *companies.Repository
	valuations *valuation.SnapshotRepository
	snapshots  *SnapshotRepository
	settings   *settings.Repository
	log        zerolog.Logger
}

// NewService creates a new holdco service
func NewService(
	companyRepo *companies.Repository,
	valuationRepo *valuation.SnapshotRepository,
	snapshotRepo *SnapshotRepository,
	settingsRepo *settings.Repository,
	log zerolog.Logger,
) *Service {
	return &Service{
		companies:  companyRepo,
		valuations: valuationRepo,
		snapshots:  snapshotRepo,
		settings:   settingsRepo,
		log:        log.With().Str("service", "holdco").Logger(),
	}
}

// CalculateNAV sums each company's latest persisted equity value into total
// portfolio equity and combines it with HoldCo cash, debt and share count.
// Nil inputs fall back to the configured values. A company with no
// valuation yet contributes zero.
func (s *Service) CalculateNAV(cash, debt, shares *float64, persist bool) (*NAVResult, error) {
	holdcoCash := s.settings.GetFloat(settings.KeyHoldCoCash, 0)
	if cash != nil {
		holdcoCash = *cash
	}
	holdcoDebt := s.settings.GetFloat(settings.KeyHoldCoDebt, 0)
	if debt != nil {
		holdcoDebt = *debt
	}
	sharesOutstanding := s.settings.GetFloat(settings.KeySharesOutstanding, settings.DefaultSharesOutstanding)
	if shares != nil {
		sharesOutstanding = *shares
	}

	all, err := s.companies.GetAll()
	if err != nil {
		return nil, err
	}

	contributions := make([]Contribution, 0, len(all))
	totalEquity := 0.0
	for _, company := range all {
		latest, err := s.valuations.GetLatest(company.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get latest valuation for %s: %w", company.Name, err)
		}
		contribution := Contribution{CompanyID: company.ID, CompanyName: company.Name}
		if latest != nil {
			contribution.HoldCoEquityValue = latest.HoldCoEquityValue
			contribution.EnterpriseValue = latest.EnterpriseValue
		}
		totalEquity += contribution.HoldCoEquityValue
		contributions = append(contributions, contribution)
	}

	nav := totalEquity + holdcoCash - holdcoDebt
	navPerShare := formulas.SafeDivide(nav, sharesOutstanding, 0)

	prior, err := s.snapshots.GetLatest()
	if err != nil {
		return nil, err
	}
	var changeVsPrior *float64
	if prior != nil {
		changeVsPrior = formulas.PctChange(prior.NAV, nav)
	}

	result := &NAVResult{
		TotalEquityValue:  totalEquity,
		HoldCoCash:        holdcoCash,
		HoldCoDebt:        holdcoDebt,
		NAV:               nav,
		NAVPerShare:       navPerShare,
		SharesOutstanding: sharesOutstanding,
		ChangeVsPriorPct:  changeVsPrior,
		Contributions:     contributions,
	}

	if persist {
		_, err := s.snapshots.Insert(Snapshot{
			SnapshotDate:      time.Now().Format("2006-01-02"),
			TotalEquityValue:  totalEquity,
			HoldCoCash:        holdcoCash,
			HoldCoDebt:        holdcoDebt,
			NAV:               nav,
			NAVPerShare:       navPerShare,
			SharesOutstanding: sharesOutstanding,
			ChangeVsPriorPct:  changeVsPrior,
		})
		if err != nil {
			return nil, err
		}
		s.log.Info().Float64("nav", nav).Msg("NAV snapshot recorded")
	}

	return result, nil
}

// Summary builds the portfolio-level view: per-company financials with
// latest valuations, portfolio weights, and a sector breakdown
func (s *Service) Summary() (*PortfolioSummary, error) {
	all, err := s.companies.GetAll()
	if err != nil {
		return nil, err
	}

	summaries := make([]CompanySummary, 0, len(all))
	sectorBreakdown := make(map[string]float64)
	totalEquity := 0.0

	for _, company := range all {
		latest, err := s.valuations.GetLatest(company.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get latest valuation for %s: %w", company.Name, err)
		}

		cs := CompanySummary{
			ID:           company.ID,
			Name:         company.Name,
			Sector:       company.Sector,
			RevenueTTM:   company.RevenueTTM,
			EBITDA:       company.EBITDA,
			GrowthRate:   company.GrowthRate,
			LastMarkDate: company.LastMarkDate,
			LastMarkEV:   company.LastMarkEV,
		}
		if cs.Sector == "" {
			cs.Sector = "Other"
		}
		if latest != nil {
			ev := latest.EnterpriseValue
			cs.EnterpriseValue = &ev
			cs.HoldCoEquityValue = latest.HoldCoEquityValue
		}

		totalEquity += cs.HoldCoEquityValue
		sectorBreakdown[cs.Sector] += cs.HoldCoEquityValue
		summaries = append(summaries, cs)
	}

	for i := range summaries {
		if totalEquity > 0 {
			summaries[i].WeightPct = summaries[i].HoldCoEquityValue / totalEquity
		}
	}

	result := &PortfolioSummary{
		Companies:       summaries,
		TotalEquity:     totalEquity,
		CompanyCount:    len(all),
		SectorBreakdown: sectorBreakdown,
	}

	latest, err := s.snapshots.GetLatest()
	if err != nil {
		return nil, err
	}
	if latest != nil {
		nav := latest.NAV
		navPerShare := latest.NAVPerShare
		result.NAV = &nav
		result.NAVPerShare = &navPerShare
		result.ChangeVsPriorPct = latest.ChangeVsPriorPct
	}

	return result, nil
}

// Concentration returns each company's share of total portfolio equity,
// sorted descending by weight. This is the canonical ranking for
// concentration-risk review; weights sum to 1.0 whenever total equity is
// positive.
func (s *Service) Concentration() ([]ConcentrationEntry, error) {
	all, err := s.companies.GetAll()
	if err != nil {
		return nil, err
	}

	entries := make([]ConcentrationEntry, 0, len(all))
	total := 0.0
	for _, company := range all {
		latest, err := s.valuations.GetLatest(company.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get latest valuation for %s: %w", company.Name, err)
		}
		entry := ConcentrationEntry{CompanyID: company.ID, CompanyName: company.Name}
		if latest != nil {
			entry.HoldCoEquityValue = latest.HoldCoEquityValue
		}
		total += entry.HoldCoEquityValue
		entries = append(entries, entry)
	}

	for i := range entries {
		if total > 0 {
			entries[i].WeightPct = entries[i].HoldCoEquityValue / total
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].WeightPct > entries[j].WeightPct
	})
	return entries, nil
}

// TimeSeries returns historical NAV snapshots, oldest first, for charting
func (s *Service) TimeSeries(periods int) ([]Snapshot, error) {
	if periods <= 0 {
		periods = 12
	}
	snapshots, err := s.snapshots.GetHistory(periods)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(snapshots)-1; i < j; i, j = i+1, j-1 {
		snapshots[i], snapshots[j] = snapshots[j], snapshots[i]
	}
	return snapshots, nil
}
