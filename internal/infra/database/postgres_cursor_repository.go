// internal/infra/database/postgres_cursor_repository.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"homework_status_bot/internal/domain/cursor"

	"github.com/lib/pq"
)

const defaultCursorTable = "poll_cursors"

// PostgresCursorRepository stores the poll cursor in a single keyed row.
type PostgresCursorRepository struct {
	db    *sql.DB
	table string
	name  string
}

func NewPostgresCursorRepository(db *sql.DB, name string) *PostgresCursorRepository {
	return &PostgresCursorRepository{db: db, table: pq.QuoteIdentifier(defaultCursorTable), name: name}
}

// EnsureSchema creates the cursor table if it does not exist yet.
func (r *PostgresCursorRepository) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
               name       TEXT PRIMARY KEY,
               from_date  BIGINT NOT NULL,
               updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
           )`, r.table)
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return fmt.Errorf("error creating cursor table (%s): %w", pqErr.Code.Name(), err)
		}
		return fmt.Errorf("error creating cursor table: %w", err)
	}
	return nil
}

func (r *PostgresCursorRepository) Load(ctx context.Context) (int64, error) {
	query := fmt.Sprintf(`SELECT from_date FROM %s WHERE name = $1`, r.table)
	var fromDate int64
	err := r.db.QueryRowContext(ctx, query, r.name).Scan(&fromDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, cursor.ErrNotFound
		}
		return 0, fmt.Errorf("error loading poll cursor %q: %w", r.name, err)
	}
	return fromDate, nil
}

func (r *PostgresCursorRepository) Save(ctx context.Context, fromDate int64) error {
	query := fmt.Sprintf(`INSERT INTO %s (name, from_date, updated_at)
               VALUES ($1, $2, NOW())
               ON CONFLICT (name) DO UPDATE SET from_date = EXCLUDED.from_date, updated_at = NOW()`, r.table)
	if _, err := r.db.ExecContext(ctx, query, r.name, fromDate); err != nil {
		return fmt.Errorf("error saving poll cursor %q: %w", r.name, err)
	}
	return nil
}
