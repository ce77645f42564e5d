package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pharmacart/domain"
	"pharmacart/httpclient"
)

const (
	assortmentsPath = "/api/assortments"
	htmlMarker      = "<!DOCTYPE html>"
	tunnelHost      = "ngrok"

	maxRetries         = 3
	defaultBackoffBase = 500 * time.Millisecond
)

// FetchOption overrides one filter field for a single FetchProducts call;
// unspecified fields are left untouched.
type FetchOption func(*domain.ProductFilters)

// WithSearchQuery overrides the free-text query for this fetch.
func WithSearchQuery(query string) FetchOption {
	return func(f *domain.ProductFilters) { f.SearchQuery = query }
}

// WithPage overrides the page number for this fetch.
func WithPage(pageNumber int) FetchOption {
	return func(f *domain.ProductFilters) { f.PageNumber = pageNumber }
}

// WithPageSize overrides the page size for this fetch.
func WithPageSize(pageSize int) FetchOption {
	return func(f *domain.ProductFilters) { f.PageSize = pageSize }
}

// queryEscape escapes s for use in a query string, with %20 for spaces the
// way browsers encode query components.
func queryEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func buildAPIURL(f domain.ProductFilters) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s?pageNumber=%d&pageSize=%d", assortmentsPath, f.PageNumber, f.PageSize)

	// search applies across all data, not just the current page
	if f.SearchQuery != "" {
		b.WriteString("&ProductName=" + queryEscape(f.SearchQuery))
	}
	if f.CategoryID != nil {
		fmt.Fprintf(&b, "&CategoryId=%d", *f.CategoryID)
	}
	if f.Manufacturer != nil && *f.Manufacturer != "" {
		b.WriteString("&Manufacturer=" + queryEscape(*f.Manufacturer))
	}
	if f.PriceRange.Min != nil {
		b.WriteString("&MinPrice=" + formatNumber(*f.PriceRange.Min))
	}
	if f.PriceRange.Max != nil {
		b.WriteString("&MaxPrice=" + formatNumber(*f.PriceRange.Max))
	}
	if f.SortBy != domain.DefaultSortBy {
		b.WriteString("&SortBy=" + queryEscape(f.SortBy))
	}
	return b.String()
}

// BuildAPIURL returns the assortments path and query string for the
// current filter state. Parameter order is fixed: pageNumber and pageSize
// always lead, optional parameters follow in a set order.
func (s *Store) BuildAPIURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return buildAPIURL(s.filters)
}

// FetchProducts fetches one page of products for the current filters,
// first applying any per-call overrides. Up to three attempts are made,
// with exponential backoff between retriable failures. On success the
// product page and pagination snapshot are replaced wholesale; on failure
// a user-facing message is stored and the previous page is kept. Failures
// never escape: callers observe the outcome through store state.
func (s *Store) FetchProducts(ctx context.Context, opts ...FetchOption) {
	s.mu.Lock()
	for _, opt := range opts {
		opt(&s.filters)
	}
	s.loading = true
	s.lastErr = ""
	s.fetchGen++
	gen := s.fetchGen
	pathQuery := buildAPIURL(s.filters)
	backoff := s.backoffBase
	s.mu.Unlock()
	s.notify()

	fullURL := s.client.BaseURL() + pathQuery

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err := s.attempt(ctx, pathQuery, fullURL)
		if err == nil {
			s.applySuccess(gen, resp)
			return
		}
		lastErr = err

		if attempt == maxRetries-1 || !domain.IsRetriable(err) {
			break
		}

		wait := backoff << attempt // 500ms, 1s, 2s
		s.log.Warn("fetch attempt failed, retrying",
			"attempt", attempt+1,
			"backoff", wait.String(),
			"error", err,
		)
		if !sleep(ctx, wait) {
			lastErr = domain.NewNetworkError(ctx.Err().Error())
			break
		}
	}

	s.applyFailure(gen, fullURL, lastErr)
}

// attempt performs one request/validate cycle and returns the decoded
// envelope or a classified FetchError.
func (s *Store) attempt(ctx context.Context, pathQuery, fullURL string) (*domain.AssortmentResponse, error) {
	resp, err := s.client.Get(ctx, pathQuery)
	if err != nil {
		return nil, err
	}
	return decodeAssortment(fullURL, resp)
}

func decodeAssortment(fullURL string, resp *httpclient.Response) (*domain.AssortmentResponse, error) {
	body := strings.TrimSpace(string(resp.Body))

	// an HTML page here means a misconfigured endpoint or an expired
	// tunnel, never a valid API response, whatever the status code says
	if strings.Contains(body, htmlMarker) {
		return nil, domain.NewHTMLBodyError(strings.Contains(fullURL, tunnelHost))
	}

	if resp.Status >= 400 {
		return nil, domain.NewStatusError(resp.Status, body)
	}

	if !strings.HasPrefix(body, "{") {
		return nil, domain.NewMalformedResponseError()
	}

	var env domain.AssortmentResponse
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return nil, domain.NewMalformedResponseError()
	}

	if !env.Success {
		return nil, domain.NewAppFailureError(env.Message)
	}
	return &env, nil
}

func (s *Store) applySuccess(gen uint64, env *domain.AssortmentResponse) {
	s.mu.Lock()
	if gen != s.fetchGen {
		// a newer fetch owns the state now
		s.mu.Unlock()
		return
	}
	s.products = []domain.Product(env.Data)
	s.pagination = domain.PaginationFromResponse(env)
	s.loading = false
	s.mu.Unlock()
	s.notify()
}

func (s *Store) applyFailure(gen uint64, fullURL string, err error) {
	msg := "Failed to fetch products"
	var fe *domain.FetchError
	if errors.As(err, &fe) {
		msg = fe.UserMessage()
	}

	s.log.Error("fetch failed",
		"url", fullURL,
		"error", err,
		"message", msg,
	)

	s.mu.Lock()
	if gen != s.fetchGen {
		s.mu.Unlock()
		return
	}
	// products and pagination keep their prior values
	s.lastErr = msg
	s.loading = false
	s.mu.Unlock()
	s.notify()
}

// sleep waits for d unless ctx ends first; it reports whether the full
// wait elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
