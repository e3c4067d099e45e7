package database

import "fmt"

// schema contains the full table layout. Statements are idempotent so the
// schema can be re-applied on every start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS portfolio_companies (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		sector TEXT,
		subsector TEXT,
		revenue_ttm REAL DEFAULT 0,
		revenue_run_rate REAL DEFAULT 0,
		ebitda REAL DEFAULT 0,
		gross_margin REAL DEFAULT 0,
		growth_rate REAL DEFAULT 0,
		net_debt REAL DEFAULT 0,
		ownership_pct REAL DEFAULT 0,
		preferred_amount REAL DEFAULT 0,
		dilution_pct REAL DEFAULT 0,
		last_mark_date TEXT,
		last_mark_ev REAL,
		last_mark_equity REAL,
		notes TEXT,
		created_at TEXT DEFAULT (datetime('now')),
		updated_at TEXT DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE IF NOT EXISTS comp_sets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		portfolio_company_id INTEGER NOT NULL,
		ticker TEXT NOT NULL,
		company_name TEXT,
		source TEXT DEFAULT 'manual',
		FOREIGN KEY (portfolio_company_id) REFERENCES portfolio_companies(id) ON DELETE CASCADE,
		UNIQUE(portfolio_company_id, ticker)
	)`,
	`CREATE TABLE IF NOT EXISTS comp_data (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		comp_set_id INTEGER NOT NULL,
		ticker TEXT NOT NULL,
		date_pulled TEXT NOT NULL,
		enterprise_value REAL,
		revenue REAL,
		ebitda REAL,
		market_cap REAL,
		ev_revenue REAL,
		ev_ebitda REAL,
		growth_rate REAL,
		source TEXT DEFAULT 'marketdata',
		FOREIGN KEY (comp_set_id) REFERENCES comp_sets(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS valuation_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		portfolio_company_id INTEGER NOT NULL,
		snapshot_date TEXT NOT NULL,
		method TEXT NOT NULL,
		enterprise_value REAL,
		equity_value REAL,
		holdco_equity_value REAL,
		median_ev_revenue REAL,
		median_ev_ebitda REAL,
		weights_json TEXT,
		notes TEXT,
		FOREIGN KEY (portfolio_company_id) REFERENCES portfolio_companies(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS holdco_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		snapshot_date TEXT NOT NULL,
		total_equity_value REAL,
		holdco_cash REAL,
		holdco_debt REAL,
		nav REAL,
		nav_per_share REAL,
		shares_outstanding REAL,
		change_vs_prior_pct REAL
	)`,
	`CREATE TABLE IF NOT EXISTS alerts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		alert_type TEXT NOT NULL,
		portfolio_company_id INTEGER,
		message TEXT NOT NULL,
		severity TEXT DEFAULT 'medium',
		triggered_at TEXT DEFAULT (datetime('now')),
		acknowledged INTEGER DEFAULT 0,
		FOREIGN KEY (portfolio_company_id) REFERENCES portfolio_companies(id) ON DELETE SET NULL
	)`,
	`CREATE TABLE IF NOT EXISTS app_config (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT DEFAULT (datetime('now'))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comp_data_comp_set ON comp_data(comp_set_id, date_pulled)`,
	`CREATE INDEX IF NOT EXISTS idx_valuation_snapshots_company ON valuation_snapshots(portfolio_company_id, snapshot_date)`,
	`CREATE INDEX IF NOT EXISTS idx_holdco_snapshots_date ON holdco_snapshots(snapshot_date)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_active ON alerts(acknowledged, triggered_at)`,
}

// InitSchema creates all tables and indexes if they do not exist
func (db *DB) InitSchema() error {
	for _, stmt := range schema {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
