package storage

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"skyshield/internal/model"
)

type postgresStore struct {
	baseStore
}

func NewPostgres(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "postgres://localhost:5432/skyshield?sslmode=disable"
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &postgresStore{baseStore{db: db}}, nil
}

func (s *postgresStore) Init(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS assessments (
			id TEXT PRIMARY KEY,
			ts TIMESTAMPTZ NOT NULL,
			success BOOLEAN NOT NULL,
			error TEXT,
			threat_class TEXT NOT NULL,
			threat_count INTEGER NOT NULL,
			range_km DOUBLE PRECISION NOT NULL,
			priority TEXT NOT NULL,
			options_generated INTEGER NOT NULL,
			generation_ms DOUBLE PRECISION NOT NULL,
			ranker_ms DOUBLE PRECISION NOT NULL,
			total_ms DOUBLE PRECISION NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_assessments_ts ON assessments(ts)`,
		`CREATE TABLE IF NOT EXISTS options (
			id BIGSERIAL PRIMARY KEY,
			assessment_id TEXT NOT NULL,
			option_id TEXT NOT NULL,
			pattern_id TEXT NOT NULL,
			title TEXT NOT NULL,
			estimated_cost BIGINT NOT NULL,
			success_percent INTEGER NOT NULL,
			assets_json JSONB NOT NULL,
			narrative TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_options_assessment ON options(assessment_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *postgresStore) SaveAssessment(ctx context.Context, a model.Assessment) error {
	if s.db == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO assessments (id, ts, success, error, threat_class, threat_count, range_km, priority, options_generated, generation_ms, ranker_ms, total_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		a.ID,
		a.Timestamp.UTC(),
		a.Success,
		a.Error,
		string(a.Threat.Class),
		a.Threat.Count,
		a.Threat.RangeKm,
		string(a.Threat.Priority),
		a.OptionsGenerated,
		a.GenerationMs,
		a.RankerMs,
		a.TotalMs,
	); err != nil {
		_ = tx.Rollback()
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO options (assessment_id, option_id, pattern_id, title, estimated_cost, success_percent, assets_json, narrative)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, opt := range a.Options {
		if _, err := stmt.ExecContext(ctx,
			a.ID,
			opt.ID,
			opt.PatternID,
			opt.Title,
			opt.EstimatedCost,
			opt.SuccessPercent,
			encodeJSON(opt.AssetsUsed),
			opt.Narrative,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
