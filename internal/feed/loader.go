package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/lienzo/lienzo-go/internal/api"
	"github.com/lienzo/lienzo-go/internal/models"
)

// DefaultPageSize matches the server's listing default.
const DefaultPageSize = 10

var errNoSource = errors.New("feed: loader needs a source")

// Loader is the page window over one filtered listing: it accumulates pages
// into an in-memory item slice and tracks whether more pages exist.
//
// Responses are tagged with a generation counter taken when the request is
// issued. Changing the filter or resetting bumps the generation, so a
// response from a superseded request can never populate state that belongs
// to a newer filter, however late it lands.
type Loader struct {
	source   Source
	pageSize int

	mu         sync.Mutex
	filter     Filter
	generation uint64
	items      []models.Publication
	page       int
	hasMore    bool
	loading    bool
	lastErr    error
}

// NewLoader constructs a Loader over source with the given page size and
// initial filter. Nothing is fetched until the first Load call.
func NewLoader(source Source, pageSize int, filter Filter) *Loader {
	if source == nil {
		panic(errNoSource)
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Loader{
		source:   source,
		pageSize: pageSize,
		filter:   filter,
		hasMore:  true,
	}
}

// LoadPage fetches one page. Page zero, or any call with reset set, replaces
// the accumulated items; otherwise the page is appended. reset also
// invalidates every request still in flight.
func (l *Loader) LoadPage(ctx context.Context, page int, reset bool) error {
	l.mu.Lock()
	if reset {
		l.generation++
	}
	generation := l.generation
	filter := l.filter
	l.loading = true
	l.mu.Unlock()

	result, err := l.source.FetchPage(ctx, filter, api.Pageable{
		Page: page,
		Size: l.pageSize,
		Sort: filter.Sort,
	})

	l.mu.Lock()
	defer l.mu.Unlock()

	if generation != l.generation {
		// Superseded while in flight; the newer request owns the state.
		return nil
	}
	l.loading = false

	if err != nil {
		l.lastErr = err
		return fmt.Errorf("load page %d: %w", page, err)
	}

	if page == 0 || reset {
		l.items = append([]models.Publication(nil), result.Content...)
	} else {
		l.items = append(l.items, result.Content...)
	}
	l.page = page
	l.hasMore = !result.Last
	l.lastErr = nil
	return nil
}

// LoadMore fetches the next page. It is a no-op while a fetch is in flight
// or when the server already reported the last page.
func (l *Loader) LoadMore(ctx context.Context) error {
	l.mu.Lock()
	if l.loading || !l.hasMore {
		l.mu.Unlock()
		return nil
	}
	next := l.page + 1
	l.mu.Unlock()

	return l.LoadPage(ctx, next, false)
}

// Refresh discards the window and refetches page zero.
func (l *Loader) Refresh(ctx context.Context) error {
	return l.LoadPage(ctx, 0, true)
}

// SetFilter swaps the filter descriptor. On a change the window is emptied
// immediately, before the page-zero fetch resolves, so no stale items from
// the previous filter remain visible. Setting an identical filter is a
// no-op.
func (l *Loader) SetFilter(ctx context.Context, filter Filter) error {
	l.mu.Lock()
	if filter.key() == l.filter.key() {
		l.mu.Unlock()
		return nil
	}
	l.filter = filter
	l.items = nil
	l.page = 0
	l.hasMore = true
	l.lastErr = nil
	l.mu.Unlock()

	return l.LoadPage(ctx, 0, true)
}

// Items returns a copy of the accumulated window.
func (l *Loader) Items() []models.Publication {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Publication(nil), l.items...)
}

// HasMore reports whether another page exists past the window.
func (l *Loader) HasMore() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hasMore
}

// Loading reports whether a fetch is currently in flight.
func (l *Loader) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Err returns the error from the most recent fetch, nil after a success.
func (l *Loader) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

// Filter returns the active filter descriptor.
func (l *Loader) Filter() Filter {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filter
}

// Page returns the index of the most recently applied page.
func (l *Loader) Page() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.page
}
