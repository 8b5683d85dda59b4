// Package source fetches the raw record batch the index is built from.
// Two implementations exist: APISource pages through the upstream HTTP API,
// and PostgresSource reads snapshot tables from a local database. The engine
// never talks to a Source directly; the service fetches a Batch and hands it
// to the engine wholesale.
package source

import (
	"context"

	"github.com/auroralabs/aurora-search/internal/search/store"
)

// Batch is one complete corpus: every message and every movie. Malformed
// batches (duplicate ids, missing required fields) are rejected during index
// build, not here.
type Batch struct {
	Messages []store.Message
	Movies   []store.Movie
}

// Source supplies the full record batch, once at startup and again on each
// reload.
type Source interface {
	Fetch(ctx context.Context) (*Batch, error)
}
