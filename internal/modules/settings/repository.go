package settings

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
)

// Config keys with system-wide defaults. Values are stored as strings in the
// app_config table and parsed on read; a missing or malformed value falls
// back to the supplied default.
const (
	KeyCompChangeThreshold = "alert_comp_change_pct"
	KeyValueDeltaThreshold = "alert_value_delta_pct"
	KeyUnderperfThreshold  = "alert_underperformance_pct"
	KeyGrowthFactor        = "growth_adjustment_factor"
	KeySensitivityStdDevs  = "sensitivity_std_devs"
	KeyHoldCoCash          = "holdco_cash"
	KeyHoldCoDebt          = "holdco_debt"
	KeySharesOutstanding   = "shares_outstanding"
)

// Default threshold and model parameters
const (
	DefaultCompChangeThreshold = 0.15 // 15% move in comp multiples
	DefaultValueDeltaThreshold = 0.10 // 10% delta vs last mark
	DefaultUnderperfThreshold  = 0.10 // 10% miss vs expected revenue
	DefaultGrowthFactor        = 0.5  // scaling of the growth premium
	DefaultSensitivityStdDevs  = 1.0
	DefaultSharesOutstanding   = 1.0
)

// Repository reads and writes the flat key/value configuration store
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new settings repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "settings").Logger(),
	}
}

// Get returns the raw string value for a key, or the default if unset
func (r *Repository) Get(key, defaultValue string) (string, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM app_config WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return defaultValue, nil
	}
	if err != nil {
		return defaultValue, fmt.Errorf("failed to read config key %s: %w", key, err)
	}
	return value, nil
}

// GetFloat returns a numeric config value, falling back to the default when
// the key is unset or does not parse
func (r *Repository) GetFloat(key string, defaultValue float64) float64 {
	raw, err := r.Get(key, "")
	if err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("Config read failed, using default")
		return defaultValue
	}
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		r.log.Warn().Str("key", key).Str("value", raw).Msg("Config value not numeric, using default")
		return defaultValue
	}
	return value
}

// Set upserts a config value
func (r *Repository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO app_config (key, value, updated_at)
		 VALUES (?, ?, datetime('now'))
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set config key %s: %w", key, err)
	}
	return nil
}

// SetFloat upserts a numeric config value
func (r *Repository) SetFloat(key string, value float64) error {
	return r.Set(key, strconv.FormatFloat(value, 'f', -1, 64))
}
