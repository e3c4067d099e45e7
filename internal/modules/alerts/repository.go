package alerts

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

// Repository handles alert database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new alert repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "alerts").Logger(),
	}
}

// Insert creates an alert row. Returns the new row id.
func (r *Repository) Insert(a Alert) (int64, error) {
	result, err := r.db.Exec(
		`INSERT INTO alerts (alert_type, portfolio_company_id, message, severity)
		 VALUES (?, ?, ?, ?)`,
		a.Type, nullInt(a.CompanyID), a.Message, a.Severity,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert alert: %w", err)
	}
	return result.LastInsertId()
}

// GetActive returns all unacknowledged alerts, newest first
func (r *Repository) GetActive() ([]Alert, error) {
	return r.query(
		`SELECT id, alert_type, portfolio_company_id, message, severity,
		        triggered_at, acknowledged
		 FROM alerts WHERE acknowledged = 0 ORDER BY triggered_at DESC, id DESC`)
}

// GetForCompany returns all alerts for a company, newest first
func (r *Repository) GetForCompany(companyID int64) ([]Alert, error) {
	return r.query(
		`SELECT id, alert_type, portfolio_company_id, message, severity,
		        triggered_at, acknowledged
		 FROM alerts WHERE portfolio_company_id = ?
		 ORDER BY triggered_at DESC, id DESC`,
		companyID)
}

// Acknowledge marks an alert as acknowledged
func (r *Repository) Acknowledge(id int64) error {
	_, err := r.db.Exec("UPDATE alerts SET acknowledged = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to acknowledge alert %d: %w", id, err)
	}
	return nil
}

func (r *Repository) query(query string, args ...interface{}) ([]Alert, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []Alert
	for rows.Next() {
		var a Alert
		var companyID sql.NullInt64
		var acknowledged int
		if err := rows.Scan(&a.ID, &a.Type, &companyID, &a.Message, &a.Severity, &a.TriggeredAt, &acknowledged); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		if companyID.Valid {
			a.CompanyID = &companyID.Int64
		}
		a.Acknowledged = acknowledged != 0
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
