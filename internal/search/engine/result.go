package engine

import "github.com/auroralabs/aurora-search/internal/search/store"

// Filter selects which record types a query runs against. FilterAll fans the
// query out over every type's index independently; per-type results are
// reported side by side, never merged into one ranked list.
type Filter string

const (
	FilterAll      Filter = "all"
	FilterMessages Filter = Filter(store.TypeMessages)
	FilterMovies   Filter = Filter(store.TypeMovies)
)

// ParseFilter validates a raw type filter string. Empty means FilterAll.
func ParseFilter(s string) (Filter, bool) {
	switch Filter(s) {
	case "":
		return FilterAll, true
	case FilterAll, FilterMessages, FilterMovies:
		return Filter(s), true
	default:
		return "", false
	}
}

// MessageHit is a matching message with its coverage score.
type MessageHit struct {
	store.Message
	Score int `json:"score"`
}

// MovieHit is a matching movie with its coverage score.
type MovieHit struct {
	store.Movie
	Score int `json:"score"`
}

// Page is one type's paginated result window. Total is the match count
// before pagination, so it is invariant under skip/limit.
type Page[T any] struct {
	Total int `json:"total"`
	Items []T `json:"items"`
}

// Result holds the per-type result pages for one query execution. A type
// excluded by the filter has a nil page and is omitted from JSON.
type Result struct {
	Messages *Page[MessageHit] `json:"messages,omitempty"`
	Movies   *Page[MovieHit]   `json:"movies,omitempty"`
}

// TotalHits returns the summed pre-pagination match count across types.
func (r *Result) TotalHits() int {
	total := 0
	if r.Messages != nil {
		total += r.Messages.Total
	}
	if r.Movies != nil {
		total += r.Movies.Total
	}
	return total
}

// Returned reports the number of items actually present in the result pages.
func (r *Result) Returned() int {
	n := 0
	if r.Messages != nil {
		n += len(r.Messages.Items)
	}
	if r.Movies != nil {
		n += len(r.Movies.Items)
	}
	return n
}
