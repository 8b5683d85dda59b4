package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/auroralabs/aurora-search/internal/search/store"
	"github.com/auroralabs/aurora-search/pkg/config"
	apperrors "github.com/auroralabs/aurora-search/pkg/errors"
	"github.com/auroralabs/aurora-search/pkg/resilience"
	"golang.org/x/sync/errgroup"
)

// APISource fetches the corpus from the upstream HTTP API. Messages are
// paged through skip/limit; movies fit in a single page. Both fetches run
// concurrently, each page request is retried with backoff, and the upstream
// as a whole sits behind a circuit breaker so repeated reloads against a
// dead origin fail fast.
type APISource struct {
	baseURL  string
	pageSize int
	client   *http.Client
	cb       *resilience.CircuitBreaker
	logger   *slog.Logger
}

// envelope is the upstream list response shape.
type envelope[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// NewAPI creates an APISource from config.
func NewAPI(cfg config.SourceConfig) *APISource {
	return &APISource{
		baseURL:  cfg.BaseURL,
		pageSize: cfg.PageSize,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		cb:     resilience.NewCircuitBreaker("corpus-source", resilience.CircuitBreakerConfig{}),
		logger: slog.Default().With("component", "api-source"),
	}
}

// Fetch retrieves all messages and all movies concurrently.
func (s *APISource) Fetch(ctx context.Context) (*Batch, error) {
	batch := &Batch{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		messages, err := s.fetchMessages(gctx)
		if err != nil {
			return fmt.Errorf("fetching messages: %w", err)
		}
		batch.Messages = messages
		return nil
	})
	g.Go(func() error {
		movies, err := s.fetchMovies(gctx)
		if err != nil {
			return fmt.Errorf("fetching movies: %w", err)
		}
		batch.Movies = movies
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.logger.Info("corpus fetched", "messages", len(batch.Messages), "movies", len(batch.Movies))
	return batch, nil
}

// fetchMessages pages through the messages endpoint until the reported total
// is reached or the upstream stops serving further offsets.
func (s *APISource) fetchMessages(ctx context.Context) ([]store.Message, error) {
	var all []store.Message
	skip := 0
	for {
		page, total, status, err := getPage[store.Message](ctx, s, "/messages/", skip)
		if err != nil {
			if paginationCutoff(status) {
				// The upstream rejects deep offsets on its free tier; keep
				// what we have rather than failing the whole build.
				s.logger.Warn("upstream stopped paging", "status", status, "fetched", len(all))
				return all, nil
			}
			return nil, err
		}
		if len(page) == 0 {
			return all, nil
		}
		all = append(all, page...)
		if total > 0 && len(all) >= total {
			return all, nil
		}
		skip += s.pageSize
	}
}

// fetchMovies retrieves the movie catalogue in one page.
func (s *APISource) fetchMovies(ctx context.Context) ([]store.Movie, error) {
	movies, _, _, err := getPage[store.Movie](ctx, s, "/movies/", 0)
	return movies, err
}

// getPage performs one GET against the upstream with retry and circuit
// breaking. It returns the decoded items, the reported total, and the last
// HTTP status (0 when the request never completed).
func getPage[T any](ctx context.Context, s *APISource, path string, skip int) (items []T, total, status int, err error) {
	u, err := url.Parse(s.baseURL + path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("parsing url: %w", err)
	}
	q := u.Query()
	q.Set("skip", strconv.Itoa(skip))
	q.Set("limit", strconv.Itoa(s.pageSize))
	u.RawQuery = q.Encode()

	var env envelope[T]
	var cutoffErr error
	attempt := func() error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if reqErr != nil {
			return reqErr
		}
		resp, doErr := s.client.Do(req)
		if doErr != nil {
			return doErr
		}
		defer resp.Body.Close()

		status = resp.StatusCode
		if paginationCutoff(status) {
			// Definitive refusal; returning nil stops the retry loop and
			// the error is surfaced below instead of being retried.
			cutoffErr = fmt.Errorf("%w: upstream returned %d for %s", apperrors.ErrUpstream, status, u.Path)
			return nil
		}
		if status != http.StatusOK {
			return fmt.Errorf("%w: unexpected status %d for %s", apperrors.ErrUpstream, status, u.Path)
		}
		return json.NewDecoder(resp.Body).Decode(&env)
	}

	err = s.cb.Execute(func() error {
		if retryErr := resilience.Retry(ctx, "fetch "+path, resilience.RetryConfig{}, attempt); retryErr != nil {
			return retryErr
		}
		return cutoffErr
	})
	if err != nil {
		return nil, 0, status, err
	}
	return env.Items, env.Total, status, nil
}

// paginationCutoff reports whether the upstream status means "this offset
// will never be served", as opposed to a transient failure.
func paginationCutoff(status int) bool {
	switch status {
	case http.StatusBadRequest,
		http.StatusUnauthorized,
		http.StatusPaymentRequired,
		http.StatusMethodNotAllowed:
		return true
	}
	return false
}
