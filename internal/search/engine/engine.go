// Package engine executes keyword queries against the in-memory inverted
// indexes. A query matches every document containing at least one query term
// (OR semantics); the relevance score is the number of distinct query terms
// the document contains, so broader coverage of the query outranks repetition
// of a single term. Ties are broken by ascending document id, giving every
// query a total order and reproducible pagination.
package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/auroralabs/aurora-search/internal/search/index"
	"github.com/auroralabs/aurora-search/internal/search/paginate"
	"github.com/auroralabs/aurora-search/internal/search/store"
	"github.com/auroralabs/aurora-search/internal/search/tokenizer"
	apperrors "github.com/auroralabs/aurora-search/pkg/errors"
)

// Config carries the engine's limits, supplied explicitly at construction
// time rather than read from the process environment.
type Config struct {
	MinTokenLength int
	MaxQueryLength int
	MaxLimit       int
}

// snapshot is one fully built generation of the corpus: the document tables
// and their inverted indexes. Snapshots are immutable; Load swaps in a new
// one atomically, and in-flight queries keep reading the one they started
// with.
type snapshot struct {
	messages     *store.Table[store.Message]
	movies       *store.Table[store.Movie]
	messageIndex *index.Index
	movieIndex   *index.Index
	builtAt      time.Time
}

// Engine is the query engine. Safe for unlimited concurrent readers: all
// post-build state is reached through a single atomic pointer.
type Engine struct {
	cfg    Config
	tok    *tokenizer.Tokenizer
	snap   atomic.Pointer[snapshot]
	logger *slog.Logger
}

// New creates an Engine with no index. Queries return ErrNotReady until the
// first successful Load.
func New(cfg Config) *Engine {
	return &Engine{
		cfg:    cfg,
		tok:    tokenizer.New(cfg.MinTokenLength),
		logger: slog.Default().With("component", "search-engine"),
	}
}

// Ready reports whether an index exists to query.
func (e *Engine) Ready() bool {
	return e.snap.Load() != nil
}

// Counts returns the number of indexed documents per type, or zeros before
// the first build.
func (e *Engine) Counts() (messages, movies int) {
	snap := e.snap.Load()
	if snap == nil {
		return 0, 0
	}
	return snap.messages.Len(), snap.movies.Len()
}

// BuiltAt returns the build time of the current snapshot.
func (e *Engine) BuiltAt() (time.Time, bool) {
	snap := e.snap.Load()
	if snap == nil {
		return time.Time{}, false
	}
	return snap.builtAt, true
}

// Load builds a new snapshot from the record batch and swaps it in
// atomically. On any build error the previous snapshot, if one exists,
// remains authoritative; a build is never partially applied.
func (e *Engine) Load(messages []store.Message, movies []store.Movie) error {
	if len(messages) == 0 && len(movies) == 0 {
		return apperrors.ErrEmptyCorpus
	}

	start := time.Now()
	msgTable, err := store.NewTable(messages)
	if err != nil {
		return fmt.Errorf("building message table: %w", err)
	}
	movTable, err := store.NewTable(movies)
	if err != nil {
		return fmt.Errorf("building movie table: %w", err)
	}

	next := &snapshot{
		messages:     msgTable,
		movies:       movTable,
		messageIndex: index.Build(msgTable, e.tok),
		movieIndex:   index.Build(movTable, e.tok),
		builtAt:      time.Now().UTC(),
	}
	e.snap.Store(next)

	e.logger.Info("index built",
		"messages", msgTable.Len(),
		"movies", movTable.Len(),
		"message_terms", next.messageIndex.TermCount(),
		"movie_terms", next.movieIndex.TermCount(),
		"duration", time.Since(start),
	)
	return nil
}

// Search runs a keyword query against the requested record types and returns
// ranked, paginated per-type result pages. Validation failures (empty or
// oversized query, bad pagination) are returned as the caller's problem;
// querying before the first successful Load returns ErrNotReady.
func (e *Engine) Search(query string, filter Filter, skip, limit int) (*Result, error) {
	snap := e.snap.Load()
	if snap == nil {
		return nil, apperrors.ErrNotReady
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.ErrEmptyQuery
	}
	if len(query) > e.cfg.MaxQueryLength {
		return nil, apperrors.Newf(apperrors.ErrQueryTooLong, 400,
			"query must be at most %d characters", e.cfg.MaxQueryLength)
	}
	if skip < 0 {
		return nil, apperrors.New(apperrors.ErrInvalidPagination, 400, "skip must be non-negative")
	}
	if limit < 1 || limit > e.cfg.MaxLimit {
		return nil, apperrors.Newf(apperrors.ErrInvalidPagination, 400,
			"limit must be between 1 and %d", e.cfg.MaxLimit)
	}

	terms := e.tok.Distinct(query)
	if len(terms) == 0 {
		// Punctuation-only queries are a validation failure, never an
		// implicit match-everything or silent empty result.
		return nil, apperrors.ErrEmptyQuery
	}

	result := &Result{}
	if filter == FilterAll || filter == FilterMessages {
		ranked := rank(snap.messageIndex, snap.messages, terms, func(m store.Message, score int) MessageHit {
			return MessageHit{Message: m, Score: score}
		})
		items, total := paginate.Page(ranked, skip, limit, e.cfg.MaxLimit)
		result.Messages = &Page[MessageHit]{Total: total, Items: items}
	}
	if filter == FilterAll || filter == FilterMovies {
		ranked := rank(snap.movieIndex, snap.movies, terms, func(m store.Movie, score int) MovieHit {
			return MovieHit{Movie: m, Score: score}
		})
		items, total := paginate.Page(ranked, skip, limit, e.cfg.MaxLimit)
		result.Movies = &Page[MovieHit]{Total: total, Items: items}
	}
	return result, nil
}

// rank collects every document matching at least one term, scores it by the
// number of distinct terms it contains, and orders the result by score
// descending then document id ascending.
func rank[T store.Record, H any](ix *index.Index, tbl *store.Table[T], terms []string, wrap func(T, int) H) []H {
	scores := make(map[string]int)
	for _, term := range terms {
		for _, posting := range ix.Postings(term) {
			scores[posting.DocID]++
		}
	}

	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if scores[ids[i]] != scores[ids[j]] {
			return scores[ids[i]] > scores[ids[j]]
		}
		return ids[i] < ids[j]
	})

	ranked := make([]H, 0, len(ids))
	for _, id := range ids {
		rec, ok := tbl.Get(id)
		if !ok {
			// Cannot happen while the referential invariant holds: every id
			// in a posting exists in the table the index was built from.
			continue
		}
		ranked = append(ranked, wrap(rec, scores[id]))
	}
	return ranked
}
