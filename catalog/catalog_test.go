package catalog

import (
	"context"
	"net/http"
	"testing"

	"pharmacart/domain"
	"pharmacart/httpclient"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(`{"Success":true,"Data":[],"TotalRecords":20,"PageSize":5,"CurrentPage":1,"TotalPages":4}`))
}

func TestSetters_ResetPageAndRefetch(t *testing.T) {
	ctx := context.Background()
	m := "Acme"
	min, max := 1.0, 9.0
	cat := 2

	cases := []struct {
		name string
		call func(s *Store)
	}{
		{"manufacturer", func(s *Store) { s.SetManufacturer(ctx, &m) }},
		{"price range", func(s *Store) { s.SetPriceRange(ctx, &min, &max) }},
		{"sort", func(s *Store) { s.SetSortBy(ctx, "price_asc") }},
		{"category", func(s *Store) { s.SetCategoryID(ctx, &cat) }},
		{"page size", func(s *Store) { s.SetPageSize(ctx, 10) }},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			s, hits := newTestStore(t, okHandler)
			s.mu.Lock()
			s.filters.PageNumber = 7
			s.mu.Unlock()

			tc.call(s)

			if got := s.CurrentPage(); got != 1 {
				t.Fatalf("page = %d, want reset to 1", got)
			}
			if hits.Load() != 1 {
				t.Fatalf("expected exactly one fetch, got %d", hits.Load())
			}
		})
	}
}

func TestSetSearchQuery_ResetsPageWithoutFetch(t *testing.T) {
	s, hits := newTestStore(t, okHandler)
	s.mu.Lock()
	s.filters.PageNumber = 3
	s.mu.Unlock()

	s.SetSearchQuery("aspirin")

	if got := s.CurrentPage(); got != 1 {
		t.Fatalf("page = %d, want 1", got)
	}
	if s.Filters().SearchQuery != "aspirin" {
		t.Fatalf("query not stored")
	}
	if hits.Load() != 0 {
		t.Fatalf("SetSearchQuery fetched; fetch is the caller's responsibility")
	}
}

func TestSetPageNumber_KeepsTargetAndFetches(t *testing.T) {
	s, hits := newTestStore(t, okHandler)
	s.SetPageNumber(context.Background(), 3)
	if got := s.CurrentPage(); got != 3 {
		t.Fatalf("page = %d, want 3", got)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected one fetch, got %d", hits.Load())
	}
}

func TestResetFilters(t *testing.T) {
	s, hits := newTestStore(t, okHandler)
	m := "Acme"
	s.mu.Lock()
	s.filters.PageNumber = 9
	s.filters.Manufacturer = &m
	s.filters.SortBy = "price_desc"
	s.filters.SearchQuery = "x"
	s.mu.Unlock()

	s.ResetFilters()

	f := s.Filters()
	want := domain.DefaultFilters()
	if f.PageNumber != want.PageNumber || f.PageSize != want.PageSize ||
		f.SortBy != want.SortBy || f.SearchQuery != "" || f.Manufacturer != nil {
		t.Fatalf("filters not reset: %+v", f)
	}
	if f.CategoryID == nil || *f.CategoryID != domain.DefaultCategoryID {
		t.Fatalf("category not reset: %+v", f.CategoryID)
	}
	if hits.Load() != 0 {
		t.Fatalf("ResetFilters must not fetch")
	}
}

func TestPageNavigation_Bounds(t *testing.T) {
	ctx := context.Background()

	t.Run("no pagination yet", func(t *testing.T) {
		s, hits := newTestStore(t, okHandler)
		s.GoToNextPage(ctx)
		s.GoToPage(ctx, 2)
		if hits.Load() != 0 {
			t.Fatalf("navigation before first fetch must be a no-op")
		}
		s.GoToPreviousPage(ctx)
		if hits.Load() != 0 || s.CurrentPage() != 1 {
			t.Fatalf("previous from page 1 must be a no-op")
		}
	})

	t.Run("within bounds", func(t *testing.T) {
		s, hits := newTestStore(t, okHandler)
		s.FetchProducts(ctx) // totalPages=4
		base := hits.Load()

		s.GoToNextPage(ctx)
		if s.CurrentPage() != 2 || hits.Load() != base+1 {
			t.Fatalf("next failed: page=%d hits=%d", s.CurrentPage(), hits.Load())
		}
		s.GoToPreviousPage(ctx)
		if s.CurrentPage() != 1 || hits.Load() != base+2 {
			t.Fatalf("prev failed: page=%d", s.CurrentPage())
		}
		s.GoToPage(ctx, 4)
		if s.CurrentPage() != 4 || hits.Load() != base+3 {
			t.Fatalf("goto failed: page=%d", s.CurrentPage())
		}
	})

	t.Run("out of bounds", func(t *testing.T) {
		s, hits := newTestStore(t, okHandler)
		s.FetchProducts(ctx)
		base := hits.Load()

		s.GoToPage(ctx, 5)
		s.GoToPage(ctx, 0)
		if s.CurrentPage() != 1 || hits.Load() != base {
			t.Fatalf("out-of-range goto must be a no-op")
		}

		s.GoToPage(ctx, 4)
		s.GoToNextPage(ctx)
		if s.CurrentPage() != 4 {
			t.Fatalf("next past last page must be a no-op, page=%d", s.CurrentPage())
		}
	})
}

func TestManufacturers_DedupedFirstSeen(t *testing.T) {
	s, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Success":true,"Data":[
			{"Id":"1","ManufactName":"Bayer"},
			{"Id":"2","ManufactName":"Acme"},
			{"Id":"3","ManufactName":"Bayer"},
			{"Id":"4","ManufactName":"Teva"}
		]}`))
	})
	s.FetchProducts(context.Background())

	got := s.Manufacturers()
	want := []string{"Bayer", "Acme", "Teva"}
	if len(got) != len(want) {
		t.Fatalf("manufacturers = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("manufacturers = %v, want %v", got, want)
		}
	}
}

func TestTotalPages_DefaultBeforeFirstFetch(t *testing.T) {
	s := NewStore(httpclient.New("http://unused", discardLogger()), discardLogger())
	if got := s.TotalPages(); got != 1 {
		t.Fatalf("TotalPages = %d, want 1", got)
	}
	if s.Pagination() != nil {
		t.Fatalf("pagination should be nil before first fetch")
	}
}

func TestStaleFetchDoesNotOverwriteNewerState(t *testing.T) {
	s, _ := newTestStore(t, okHandler)

	s.mu.Lock()
	s.fetchGen = 5
	stale := uint64(4)
	s.products = []domain.Product{{ID: "current"}}
	s.mu.Unlock()

	s.applySuccess(stale, &domain.AssortmentResponse{
		Success: true,
		Data:    domain.ProductList{{ID: "stale"}},
	})
	if got := s.Products(); len(got) != 1 || got[0].ID != "current" {
		t.Fatalf("stale success overwrote state: %+v", got)
	}

	s.applyFailure(stale, "http://x", domain.NewNetworkError("late"))
	if s.Err() != "" {
		t.Fatalf("stale failure stored an error: %q", s.Err())
	}
}

func TestSubscriberNotifiedOnStateChanges(t *testing.T) {
	s, _ := newTestStore(t, okHandler)
	fired := 0
	unsub := s.Subscribe(func() { fired++ })

	s.SetSearchQuery("a") // 1 notify
	before := fired
	s.FetchProducts(context.Background()) // start + completion
	if fired < before+2 {
		t.Fatalf("fetch should notify at start and completion, fired=%d", fired)
	}

	unsub()
	was := fired
	s.SetSearchQuery("b")
	if fired != was {
		t.Fatalf("unsubscribed callback still fired")
	}
}
