package valuation

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/evmarklabs/holdco-mtm/internal/domain"
	"github.com/evmarklabs/holdco-mtm/internal/modules/companies"
	"github.com/evmarklabs/holdco-mtm/internal/modules/comps"
	"github.com/evmarklabs/holdco-mtm/internal/modules/settings"
	"github.com/evmarklabs/holdco-mtm/pkg/formulas"
)

// Service orchestrates the per-company valuation pipeline: comp summary,
// the three method calculators, the blend, the equity bridge, deltas
// against the last mark, and optional snapshot persistence.
type Service struct {
	db        *sql.DB
	companies *companies.Repository
	comps     *comps.Service
	snapshots *SnapshotRepository
	settings  *settings.Repository
	log       zerolog.Logger
}

// NewService creates a new valuation service
func NewService(
	db *sql.DB,
	companyRepo *companies.Repository,
	compService *comps.Service,
	snapshotRepo *SnapshotRepository,
	settingsRepo *settings.Repository,
	log zerolog.Logger,
) *Service {
	return &Service{
		db:        db,
		companies: companyRepo,
		comps:     compService,
		snapshots: snapshotRepo,
		settings:  settingsRepo,
		log:       log.With().Str("service", "valuation").Logger(),
	}
}

// Run executes the full valuation pipeline for a single company.
// weights may be nil to use the defaults. When persist is true the result
// is stored as a dated blended snapshot and the company's last-mark fields
// are overwritten in the same transaction; this is the only writer of the
// last-mark fields.
func (s *Service) Run(companyID int64, weights *domain.Weights, persist bool, notes string) (*Result, error) {
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

	w := resolveWeights(weights)
	factor := s.settings.GetFloat(settings.KeyGrowthFactor, settings.DefaultGrowthFactor)

	result := s.compute(company, summary.MedianEVRevenue, summary.MedianEVEBITDA, summary.MedianGrowthRate, factor, w)
	result.MedianEVRevenue = summary.MedianEVRevenue
	result.MedianEVEBITDA = summary.MedianEVEBITDA
	result.CompCount = summary.CompCount

	var lastMarkEV, lastMarkEquity float64
	if company.LastMarkEV != nil {
		lastMarkEV = *company.LastMarkEV
	}
	if company.LastMarkEquity != nil {
		lastMarkEquity = *company.LastMarkEquity
	}
	result.ChangeEVPct = formulas.PctChange(lastMarkEV, result.EnterpriseValue)
	result.ChangeEquityPct = formulas.PctChange(lastMarkEquity, result.HoldCoEquityValue)

	if persist {
		if err := s.persist(result, notes); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// RunAll runs the valuation for every tracked company. Each company yields
// either a result or an error message; one failure never aborts the batch.
func (s *Service) RunAll(weights *domain.Weights, persist bool) ([]BatchItem, error) {
	all, err := s.companies.GetAll()
	if err != nil {
		return nil, err
	}

	items := make([]BatchItem, 0, len(all))
	for _, company := range all {
		item := BatchItem{CompanyID: company.ID, CompanyName: company.Name}
		result, err := s.Run(company.ID, weights, persist, "")
		if err != nil {
			s.log.Warn().Err(err).Str("company", company.Name).Msg("Valuation failed")
			item.Error = err.Error()
		} else {
			item.Result = result
		}
		items = append(items, item)
	}
	return items, nil
}

// History returns persisted snapshots for a company, newest first
func (s *Service) History(companyID int64, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.snapshots.GetHistory(companyID, limit)
}

// compute runs the calculator/blend/bridge chain against the given medians.
// The sensitivity engine reuses it with perturbed multiples.
func (s *Service) compute(company *domain.Company, medianEVRevenue, medianEVEBITDA, medianGrowth, growthFactor float64, w domain.Weights) *Result {
	evRevenue := RevenueMultipleEV(company.RevenueTTM, medianEVRevenue)
	evEBITDA := EBITDAMultipleEV(company.EBITDA, medianEVEBITDA)
	evGrowth := GrowthAdjustedEV(company.RevenueTTM, medianEVRevenue, company.GrowthRate, medianGrowth, growthFactor)

	blended := BlendedEnterpriseValue(evRevenue, evEBITDA, evGrowth, w)
	bridge := EnterpriseToEquity(blended, company.NetDebt, company.PreferredAmount, company.OwnershipPct, company.DilutionPct)

	return &Result{
		CompanyID:              company.ID,
		CompanyName:            company.Name,
		EVRevenueMethod:        evRevenue,
		EVEBITDAMethod:         evEBITDA,
		EVGrowthAdjustedMethod: evGrowth,
		EnterpriseValue:        blended,
		EquityValue:            bridge.EquityValue,
		EquityAfterPrefs:       bridge.EquityAfterPrefs,
		HoldCoEquityValue:      bridge.HoldCoEquityValue,
		Weights:                w,
	}
}

// persist writes the snapshot and the last-mark cache atomically. The
// snapshot must be durable before the last mark reflects it, so both
// happen in one transaction.
func (s *Service) persist(result *Result, notes string) error {
	weightsJSON, err := json.Marshal(result.Weights)
	if err != nil {
		return fmt.Errorf("failed to encode weights: %w", err)
	}
	snapshotDate := time.Now().Format("2006-01-02")

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = s.snapshots.InsertTx(tx, Snapshot{
		CompanyID:         result.CompanyID,
		SnapshotDate:      snapshotDate,
		Method:            MethodBlended,
		EnterpriseValue:   result.EnterpriseValue,
		EquityValue:       result.EquityValue,
		HoldCoEquityValue: result.HoldCoEquityValue,
		MedianEVRevenue:   result.MedianEVRevenue,
		MedianEVEBITDA:    result.MedianEVEBITDA,
		WeightsJSON:       string(weightsJSON),
		Notes:             notes,
	})
	if err != nil {
		return err
	}

	if err := s.companies.UpdateLastMarkTx(tx, result.CompanyID, snapshotDate, result.EnterpriseValue, result.HoldCoEquityValue); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit valuation: %w", err)
	}

	s.log.Info().
		Str("company", result.CompanyName).
		Float64("enterprise_value", result.EnterpriseValue).
		Float64("holdco_equity", result.HoldCoEquityValue).
		Msg("Valuation snapshot recorded")

	return nil
}

func resolveWeights(weights *domain.Weights) domain.Weights {
	if weights == nil {
		return domain.DefaultWeights()
	}
	return *weights
}
