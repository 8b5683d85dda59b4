// Package paginate slices a ranked result sequence into a requested window.
package paginate

// Page returns the [skip, skip+limit) window of ranked along with the total
// length of ranked before slicing. skip past the end yields an empty page,
// not an error. limit is clamped to maxLimit to bound response size; callers
// are expected to reject non-positive limits before reaching this point, as
// a zero limit is ambiguous input rather than a request for an empty page.
func Page[T any](ranked []T, skip, limit, maxLimit int) (items []T, total int) {
	total = len(ranked)
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	if skip < 0 {
		skip = 0
	}
	if skip >= total || limit <= 0 {
		return []T{}, total
	}
	end := skip + limit
	if end > total {
		end = total
	}
	// Copy so a cached or retained page never aliases the ranked slice.
	items = make([]T, end-skip)
	copy(items, ranked[skip:end])
	return items, total
}
