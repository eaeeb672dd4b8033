// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"

	"content-analyzer/internal/common/errors"
	"content-analyzer/internal/models"
)

const schemaSQL = `CREATE TABLE IF NOT EXISTS analyses (
	id          UUID PRIMARY KEY,
	input       TEXT NOT NULL,
	mode        TEXT NOT NULL,
	source      TEXT NOT NULL,
	scenario_id TEXT,
	response    JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS analyses_created_at_idx ON analyses (created_at DESC)`

const (
	insertSQL = `INSERT INTO analyses (id, input, mode, source, scenario_id, response, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	selectOneSQL = `SELECT id, input, mode, source, scenario_id, response, created_at
FROM analyses WHERE id = $1`
	selectRecentSQL = `SELECT id, input, mode, source, scenario_id, response, created_at
FROM analyses ORDER BY created_at DESC LIMIT $1`
)

// PostgresStore keeps records in the analyses table with the response as
// JSONB.
type PostgresStore struct {
	db          *sql.DB
	recentLimit int
}

func NewPostgresStore(db *sql.DB, recentLimit int) *PostgresStore {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	return &PostgresStore{db: db, recentLimit: recentLimit}
}

// EnsureSchema creates the analyses table and index if missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return errors.NewStoreOperationFailedError("ensure_schema", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, rec *models.AnalysisRecord) (err error) {
	defer func() { observe(BackendPostgres, "save", err) }()

	resp, err := json.Marshal(rec.Response)
	if err != nil {
		return errors.NewStoreOperationFailedError("save", err)
	}

	scenario := sql.NullString{String: rec.ScenarioID, Valid: rec.ScenarioID != ""}
	_, err = s.db.ExecContext(ctx, insertSQL,
		rec.ID, rec.Input, rec.Mode, rec.Source, scenario, resp, rec.CreatedAt)
	if err != nil {
		return errors.NewStoreOperationFailedError("save", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (rec *models.AnalysisRecord, err error) {
	defer func() { observe(BackendPostgres, "get", err) }()

	// Anything that is not a UUID cannot exist and would make the cast fail.
	if !validID(id) {
		return nil, errors.NewAnalysisNotFoundError(id)
	}

	rec, err = scanRecord(s.db.QueryRowContext(ctx, selectOneSQL, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewAnalysisNotFoundError(id)
	}
	if err != nil {
		return nil, errors.NewStoreOperationFailedError("get", err)
	}
	return rec, nil
}

func (s *PostgresStore) List(ctx context.Context, limit int) (out []*models.AnalysisRecord, err error) {
	defer func() { observe(BackendPostgres, "list", err) }()

	rows, err := s.db.QueryContext(ctx, selectRecentSQL, clampLimit(limit, s.recentLimit))
	if err != nil {
		return nil, errors.NewStoreOperationFailedError("list", err)
	}
	defer rows.Close()

	out = []*models.AnalysisRecord{}
	for rows.Next() {
		rec, scanErr := scanRecord(rows)
		if scanErr != nil {
			return nil, errors.NewStoreOperationFailedError("list", scanErr)
		}
		out = append(out, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.NewStoreOperationFailedError("list", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.AnalysisRecord, error) {
	var (
		rec      models.AnalysisRecord
		scenario sql.NullString
		resp     []byte
	)
	if err := row.Scan(&rec.ID, &rec.Input, &rec.Mode, &rec.Source, &scenario, &resp, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.ScenarioID = scenario.String

	rec.Response = &models.StructuredResponse{}
	if err := json.Unmarshal(resp, rec.Response); err != nil {
		return nil, err
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return &rec, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Backend() string { return BackendPostgres }

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
