package scheduler

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/evmarklabs/holdco-mtm/internal/modules/alerts"
	"github.com/evmarklabs/holdco-mtm/internal/modules/comps"
)

// CompRefreshJob pulls fresh comp fundamentals for every tracked company
type CompRefreshJob struct {
	comps *comps.Service
	log   zerolog.Logger
}

// NewCompRefreshJob creates a new comp refresh job
func NewCompRefreshJob(compService *comps.Service, log zerolog.Logger) *CompRefreshJob {
	return &CompRefreshJob{
		comps: compService,
		log:   log.With().Str("job", "comp_refresh").Logger(),
	}
}

// Name returns the job name
func (j *CompRefreshJob) Name() string {
	return "comp_refresh"
}

// Run refreshes comp data across the portfolio. Per-ticker failures are
// logged, not fatal.
func (j *CompRefreshJob) Run() error {
	results, err := j.comps.RefreshAll()
	if err != nil {
		return fmt.Errorf("comp refresh failed: %w", err)
	}

	refreshed, failures := 0, 0
	for _, result := range results {
		refreshed += result.Refreshed
		failures += len(result.Errors)
	}
	j.log.Info().
		Int("refreshed", refreshed).
		Int("failures", failures).
		Msg("Comp refresh completed")
	return nil
}

// AlertSweepJob runs every alert check across the portfolio
type AlertSweepJob struct {
	alerts *alerts.Service
	log    zerolog.Logger
}

// NewAlertSweepJob creates a new alert sweep job
func NewAlertSweepJob(alertService *alerts.Service, log zerolog.Logger) *AlertSweepJob {
	return &AlertSweepJob{
		alerts: alertService,
		log:    log.With().Str("job", "alert_sweep").Logger(),
	}
}

// Name returns the job name
func (j *AlertSweepJob) Name() string {
	return "alert_sweep"
}

// Run executes the full alert sweep
func (j *AlertSweepJob) Run() error {
	triggered, err := j.alerts.RunAllChecks()
	if err != nil {
		return fmt.Errorf("alert sweep failed: %w", err)
	}
	j.log.Info().Int("triggered", len(triggered)).Msg("Alert sweep completed")
	return nil
}
