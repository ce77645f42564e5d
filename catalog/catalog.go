// Package catalog owns the product listing state: one server-filtered page
// of products, the filter/sort/pagination inputs that produced it, and the
// fetch workflow that refreshes it.
package catalog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"pharmacart/domain"
	"pharmacart/httpclient"
)

// Store reflects one page of server-side filtered product data. Filters
// are mutated through the Set* entry points; most of them reset the page
// to 1 and trigger a refetch, matching the listing's behavior.
type Store struct {
	mu     sync.Mutex
	client *httpclient.Client
	log    *slog.Logger

	products   []domain.Product
	loading    bool
	lastErr    string
	filters    domain.ProductFilters
	pagination *domain.Pagination

	// fetchGen is a monotonically increasing token; a completing fetch
	// whose token is stale must not overwrite state set by a newer one.
	fetchGen    uint64
	backoffBase time.Duration

	subs    map[int]func()
	nextSub int
}

// NewStore constructs a catalog store backed by the given client.
func NewStore(client *httpclient.Client, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		client:      client,
		log:         logger,
		filters:     domain.DefaultFilters(),
		backoffBase: defaultBackoffBase,
		subs:        make(map[int]func()),
	}
}

// Subscribe registers fn to run after every state change and returns an
// unsubscribe func. Callbacks run outside the store lock.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// SetBackoffBase overrides the retry backoff base delay. Used by tests.
func (s *Store) SetBackoffBase(d time.Duration) {
	s.mu.Lock()
	s.backoffBase = d
	s.mu.Unlock()
}

// SetManufacturer sets the manufacturer filter (nil clears it), resets to
// the first page and refetches.
func (s *Store) SetManufacturer(ctx context.Context, manufacturer *string) {
	s.mu.Lock()
	s.filters.Manufacturer = manufacturer
	s.filters.PageNumber = 1
	s.mu.Unlock()
	s.FetchProducts(ctx)
}

// SetPriceRange sets the price bounds (either may be nil), resets to the
// first page and refetches.
func (s *Store) SetPriceRange(ctx context.Context, min, max *float64) {
	s.mu.Lock()
	s.filters.PriceRange.Min = min
	s.filters.PriceRange.Max = max
	s.filters.PageNumber = 1
	s.mu.Unlock()
	s.FetchProducts(ctx)
}

// SetSearchQuery sets the free-text query and resets to the first page.
// The fetch is the caller's responsibility.
func (s *Store) SetSearchQuery(query string) {
	s.mu.Lock()
	s.filters.SearchQuery = query
	s.filters.PageNumber = 1
	s.mu.Unlock()
	s.notify()
}

// SetSortBy sets the sort key, resets to the first page and refetches.
func (s *Store) SetSortBy(ctx context.Context, sortOption string) {
	s.mu.Lock()
	s.filters.SortBy = sortOption
	s.filters.PageNumber = 1
	s.mu.Unlock()
	s.FetchProducts(ctx)
}

// SetCategoryID sets the category filter (nil clears it), resets to the
// first page and refetches.
func (s *Store) SetCategoryID(ctx context.Context, categoryID *int) {
	s.mu.Lock()
	s.filters.CategoryID = categoryID
	s.filters.PageNumber = 1
	s.mu.Unlock()
	s.FetchProducts(ctx)
}

// SetPageNumber moves to the given page and refetches.
func (s *Store) SetPageNumber(ctx context.Context, pageNumber int) {
	s.mu.Lock()
	s.filters.PageNumber = pageNumber
	s.mu.Unlock()
	s.FetchProducts(ctx)
}

// SetPageSize sets the page size, resets to the first page and refetches.
func (s *Store) SetPageSize(ctx context.Context, pageSize int) {
	s.mu.Lock()
	s.filters.PageSize = pageSize
	s.filters.PageNumber = 1
	s.mu.Unlock()
	s.FetchProducts(ctx)
}

// ResetFilters restores the default filter values without refetching.
func (s *Store) ResetFilters() {
	s.mu.Lock()
	s.filters = domain.DefaultFilters()
	s.mu.Unlock()
	s.notify()
}

// GoToNextPage advances one page and refetches; no-op when the next page
// would pass the known total.
func (s *Store) GoToNextPage(ctx context.Context) {
	s.mu.Lock()
	if s.pagination == nil || s.filters.PageNumber >= s.pagination.TotalPages {
		s.mu.Unlock()
		return
	}
	s.filters.PageNumber++
	s.mu.Unlock()
	s.FetchProducts(ctx)
}

// GoToPreviousPage goes back one page and refetches; no-op on page 1.
func (s *Store) GoToPreviousPage(ctx context.Context) {
	s.mu.Lock()
	if s.filters.PageNumber <= 1 {
		s.mu.Unlock()
		return
	}
	s.filters.PageNumber--
	s.mu.Unlock()
	s.FetchProducts(ctx)
}

// GoToPage jumps to pageNumber and refetches; no-op unless the target lies
// within the known page range.
func (s *Store) GoToPage(ctx context.Context, pageNumber int) {
	s.mu.Lock()
	if s.pagination == nil || pageNumber < 1 || pageNumber > s.pagination.TotalPages {
		s.mu.Unlock()
		return
	}
	s.filters.PageNumber = pageNumber
	s.mu.Unlock()
	s.FetchProducts(ctx)
}

// Products returns the current page of products. Filtering and sorting are
// server-side, so this is the listing as-is.
func (s *Store) Products() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Manufacturers returns the distinct manufacturer names on the current
// page, in first-seen order.
func (s *Store) Manufacturers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool, len(s.products))
	var out []string
	for _, p := range s.products {
		if !seen[p.ManufactName] {
			seen[p.ManufactName] = true
			out = append(out, p.ManufactName)
		}
	}
	return out
}

// CurrentPage returns the page number in the filter state.
func (s *Store) CurrentPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters.PageNumber
}

// PageSize returns the page size in the filter state.
func (s *Store) PageSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters.PageSize
}

// TotalPages returns the server-reported page count, or 1 before the first
// successful fetch.
func (s *Store) TotalPages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pagination == nil {
		return 1
	}
	return s.pagination.TotalPages
}

// Loading reports whether a fetch is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the user-facing message from the last failed fetch, or ""
// when the last fetch succeeded or none has run.
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Pagination returns a copy of the last server-reported paging snapshot,
// or nil before the first successful fetch.
func (s *Store) Pagination() *domain.Pagination {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pagination == nil {
		return nil
	}
	p := *s.pagination
	return &p
}

// Filters returns a snapshot of the current filter state.
func (s *Store) Filters() domain.ProductFilters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}
