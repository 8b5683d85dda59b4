package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/auroralabs/aurora-search/internal/search/store"
	"github.com/auroralabs/aurora-search/pkg/postgres"
)

// PostgresSource loads the corpus from local snapshot tables instead of the
// upstream API, for deployments that mirror the records into a database.
//
// Expected schema:
//
//	CREATE TABLE messages (
//	    id         TEXT PRIMARY KEY,
//	    user_name  TEXT NOT NULL,
//	    message    TEXT NOT NULL,
//	    created_at TIMESTAMPTZ
//	);
//	CREATE TABLE movies (
//	    id          TEXT PRIMARY KEY,
//	    title       TEXT NOT NULL,
//	    description TEXT NOT NULL DEFAULT '',
//	    year        INT,
//	    rating      DOUBLE PRECISION
//	);
type PostgresSource struct {
	db     *postgres.Client
	logger *slog.Logger
}

// NewPostgres creates a PostgresSource over an existing client.
func NewPostgres(db *postgres.Client) *PostgresSource {
	return &PostgresSource{
		db:     db,
		logger: slog.Default().With("component", "postgres-source"),
	}
}

// Fetch reads every message and movie row. Ordering by id keeps batches
// reproducible across reloads.
func (s *PostgresSource) Fetch(ctx context.Context) (*Batch, error) {
	batch := &Batch{}

	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT id, user_name, message, COALESCE(created_at, 'epoch'::timestamptz)
		 FROM messages ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var m store.Message
		if err := rows.Scan(&m.ID, &m.UserName, &m.Text, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message row: %w", err)
		}
		batch.Messages = append(batch.Messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating message rows: %w", err)
	}

	movieRows, err := s.db.DB.QueryContext(ctx,
		`SELECT id, title, description, COALESCE(year, 0), COALESCE(rating, 0)
		 FROM movies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying movies: %w", err)
	}
	defer movieRows.Close()
	for movieRows.Next() {
		var m store.Movie
		if err := movieRows.Scan(&m.ID, &m.Title, &m.Description, &m.Year, &m.Rating); err != nil {
			return nil, fmt.Errorf("scanning movie row: %w", err)
		}
		batch.Movies = append(batch.Movies, m)
	}
	if err := movieRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating movie rows: %w", err)
	}

	s.logger.Info("corpus loaded from postgres",
		"messages", len(batch.Messages),
		"movies", len(batch.Movies),
	)
	return batch, nil
}
