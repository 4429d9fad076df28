package storage

import (
	"context"
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"

	"skyshield/internal/model"
)

type sqliteStore struct {
	baseStore
}

func NewSQLite(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "file:skyshield.db?_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	return &sqliteStore{baseStore{db: db}}, nil
}

func (s *sqliteStore) Init(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS assessments (
			id TEXT PRIMARY KEY,
			ts TEXT NOT NULL,
			success INTEGER NOT NULL,
			error TEXT,
			threat_class TEXT NOT NULL,
			threat_count INTEGER NOT NULL,
			range_km REAL NOT NULL,
			priority TEXT NOT NULL,
			options_generated INTEGER NOT NULL,
			generation_ms REAL NOT NULL,
			ranker_ms REAL NOT NULL,
			total_ms REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_assessments_ts ON assessments(ts)`,
		`CREATE TABLE IF NOT EXISTS options (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			assessment_id TEXT NOT NULL,
			option_id TEXT NOT NULL,
			pattern_id TEXT NOT NULL,
			title TEXT NOT NULL,
			estimated_cost INTEGER NOT NULL,
			success_percent INTEGER NOT NULL,
			assets_json TEXT NOT NULL,
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

func (s *sqliteStore) SaveAssessment(ctx context.Context, a model.Assessment) error {
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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
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
