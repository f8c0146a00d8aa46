// Package pagination splits an already-ordered sequence into fixed-size
// pages and locates the page containing a given element. It holds no derived
// state: every call recomputes from the input slice, so callers paginate a
// freshly fetched ordering on each request.
package pagination

import "errors"

// ErrNotFound is returned by Locate when no element matches.
var ErrNotFound = errors.New("pagination: item not found")

// DefaultPageSize is used when a caller passes a non-positive page size.
const DefaultPageSize = 10

// Paginator presents a fixed view over one snapshot of an ordered sequence.
// Pages partition the input exactly: no gaps, no overlaps.
type Paginator[T any] struct {
	items    []T
	pageSize int
}

// New builds a paginator over items. A non-positive pageSize falls back to
// DefaultPageSize.
func New[T any](items []T, pageSize int) *Paginator[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Paginator[T]{items: items, pageSize: pageSize}
}

// PageSize returns the effective page size.
func (p *Paginator[T]) PageSize() int {
	return p.pageSize
}

// Len returns the total number of items.
func (p *Paginator[T]) Len() int {
	return len(p.items)
}

// PageCount returns ceil(len/pageSize), 0 for an empty input.
func (p *Paginator[T]) PageCount() int {
	return (len(p.items) + p.pageSize - 1) / p.pageSize
}

// Page returns the 1-indexed k-th page, at most pageSize items in input
// order. Out-of-range requests clamp to page 1 rather than failing; for an
// empty input the result is empty. The last page may be short.
func (p *Paginator[T]) Page(k int) []T {
	count := p.PageCount()
	if count == 0 {
		return nil
	}
	if k < 1 || k > count {
		k = 1
	}
	start := (k - 1) * p.pageSize
	end := start + p.pageSize
	if end > len(p.items) {
		end = len(p.items)
	}
	return p.items[start:end]
}

// Locate returns the 1-indexed page number of the first element for which
// match is true, or ErrNotFound. Page(Locate(x)) always contains x.
func (p *Paginator[T]) Locate(match func(T) bool) (int, error) {
	for i, item := range p.items {
		if match(item) {
			return i/p.pageSize + 1, nil
		}
	}
	return 0, ErrNotFound
}
