// Package store persists forecast rows in Postgres.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/seenimoa/stockcast/pkg/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS forecast_results (
	id          BIGSERIAL PRIMARY KEY,
	run_id      UUID        NOT NULL,
	symbol      TEXT        NOT NULL,
	as_of       DATE,
	lr_mse      NUMERIC,
	nn_mse      NUMERIC,
	last_close  NUMERIC,
	sentiment   NUMERIC,
	actions     JSONB       NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS forecast_results_symbol_idx ON forecast_results (symbol, created_at DESC);
`

const insertRow = `
	INSERT INTO forecast_results (run_id, symbol, as_of, lr_mse, nn_mse, last_close, sentiment, actions, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

// Postgres writes each run's rows into forecast_results under one run id.
type Postgres struct {
	db    *sql.DB
	RunID uuid.UUID
	now   func() time.Time
}

// New opens and pings the database at dsn.
func New(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return newPostgres(db), nil
}

func newPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db, RunID: uuid.New(), now: time.Now}
}

func (p *Postgres) Name() string { return "postgres" }

// EnsureSchema creates the results table when it does not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Write inserts rows in a single transaction.
func (p *Postgres) Write(ctx context.Context, rows []models.ForecastRow) (err error) {
	if len(rows) == 0 {
		return nil
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	created := p.now().UTC()
	for _, r := range rows {
		actions, err := json.Marshal(actionMap(r))
		if err != nil {
			return fmt.Errorf("failed to encode actions for %s: %w", r.Symbol, err)
		}
		var asOf any
		if !r.AsOf.IsZero() {
			asOf = r.AsOf
		}
		_, err = tx.ExecContext(ctx, insertRow,
			p.RunID.String(), r.Symbol, asOf,
			nullDecimal(r.Linear.MSE), nullDecimal(r.Neural.MSE),
			nullDecimal(r.LastClose), nullDecimal(r.Sentiment),
			string(actions), created,
		)
		if err != nil {
			return fmt.Errorf("failed to insert forecast for %s: %w", r.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit forecasts: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// actionMap is {"1d": {"LR": "Buy", "NN": "Hold"}, ...}.
func actionMap(r models.ForecastRow) map[string]map[string]models.Action {
	out := make(map[string]map[string]models.Action, len(r.Horizons))
	for k, h := range r.Horizons {
		m := make(map[string]models.Action, 2)
		if k < len(r.Linear.Actions) {
			m[models.ModelLinear] = r.Linear.Actions[k]
		}
		if k < len(r.Neural.Actions) {
			m[models.ModelNeural] = r.Neural.Actions[k]
		}
		out[h.Label] = m
	}
	return out
}

// nullDecimal converts v for a NUMERIC column; non-finite values are NULL.
func nullDecimal(v float64) decimal.NullDecimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(v))
}
