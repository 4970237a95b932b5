// Package migrations embeds the SQL schema and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var files embed.FS

// NewProvider returns a goose provider over the embedded migrations.
// Versions come from the numeric file-name prefix.
func NewProvider(db *sql.DB) (*goose.Provider, error) {
	return goose.NewProvider(goose.DialectPostgres, db, files)
}

// Apply runs every pending migration and returns the versions it applied.
func Apply(ctx context.Context, db *sqlx.DB, log *slog.Logger) ([]int64, error) {
	const op = "migrations.Apply"

	provider, err := NewProvider(db.DB)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	results, err := provider.Up(ctx)
	applied := make([]int64, 0, len(results))
	for _, r := range results {
		log.Info("migration applied",
			slog.Int64("version", r.Source.Version),
			slog.String("file", r.Source.Path),
			slog.Duration("took", r.Duration),
		)
		applied = append(applied, r.Source.Version)
	}
	if err != nil {
		return applied, fmt.Errorf("%s: %w", op, err)
	}
	return applied, nil
}
