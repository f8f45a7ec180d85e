package sequence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// PostgresCounter draws values from native PostgreSQL sequences named <counter>_seq
type PostgresCounter struct {
	db *sql.DB
}

// NewPostgresCounter creates the backing sequences when they are missing
func NewPostgresCounter(ctx context.Context, db *sql.DB) (*PostgresCounter, error) {
	for _, name := range []string{UnitCodeCounter, SaleFolioCounter, AssetCodeCounter} {
		stmt := fmt.Sprintf("CREATE SEQUENCE IF NOT EXISTS %s", pq.QuoteIdentifier(name+"_seq"))
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to create sequence %s: %w", name, err)
		}
	}
	return &PostgresCounter{db: db}, nil
}

func (c *PostgresCounter) Next(ctx context.Context, name string) (int64, error) {
	var value int64
	if err := c.db.QueryRowContext(ctx, "SELECT nextval($1)", name+"_seq").Scan(&value); err != nil {
		return 0, err
	}
	return value, nil
}
