package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"skyshield/internal/config"
	"skyshield/internal/model"
)

// Store is the optional audit trail: every completed assessment and its
// generated options are written out. The engine never reads them back.
type Store interface {
	Init(ctx context.Context) error
	Close() error
	SaveAssessment(ctx context.Context, a model.Assessment) error
}

func NewStore(cfg config.StorageConfig) (Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	switch strings.ToLower(cfg.Driver) {
	case "sqlite":
		return NewSQLite(cfg.DSN)
	case "postgres", "postgresql":
		return NewPostgres(cfg.DSN)
	default:
		return nil, errors.New("unsupported storage driver")
	}
}

type baseStore struct {
	db *sql.DB
}

func (b *baseStore) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

func encodeJSON(value any) string {
	data, _ := json.Marshal(value)
	return string(data)
}
