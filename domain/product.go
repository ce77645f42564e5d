// Package domain defines core business types and interfaces.
package domain

import (
	"bytes"
	"encoding/json"
)

// Product represents one catalog entry as served by the assortment API.
// Products are server-owned; the client only reads snapshots.
type Product struct {
	ID           string  `json:"Id"`
	ProductName  string  `json:"ProductName"`
	Barcode      string  `json:"Barcode"`
	Quantity     int     `json:"Quantity"`
	Price        float64 `json:"Price"`
	ExpireDate   string  `json:"ExpireDate"`
	ManufactName string  `json:"ManufactName"`
}

// PriceRange is an optional price filter; either bound may be nil (open).
type PriceRange struct {
	Min *float64
	Max *float64
}

// ProductFilters holds the catalog query state. Changing any field other
// than PageNumber resets PageNumber to 1; the catalog store enforces that.
type ProductFilters struct {
	PageNumber   int
	PageSize     int
	Manufacturer *string
	PriceRange   PriceRange
	SortBy       string
	SearchQuery  string
	CategoryID   *int
}

// Default filter values used at startup and by reset.
const (
	DefaultPageSize   = 5
	DefaultSortBy     = "default"
	DefaultCategoryID = 1
)

// DefaultFilters returns the filter state the catalog starts from.
func DefaultFilters() ProductFilters {
	cat := DefaultCategoryID
	return ProductFilters{
		PageNumber: 1,
		PageSize:   DefaultPageSize,
		SortBy:     DefaultSortBy,
		CategoryID: &cat,
	}
}

// Pagination is the server-reported paging snapshot; read-only to the client.
type Pagination struct {
	TotalRecords    int
	PageSize        int
	CurrentPage     int
	TotalPages      int
	NextPageURL     *string
	PreviousPageURL *string
}

// ProductList decodes the assortment Data field, which the server may emit
// as an array, a single object, or null.
type ProductList []Product

// UnmarshalJSON coerces a single product object into a one-element list and
// null into an empty one.
func (l *ProductList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*l = ProductList{}
		return nil
	}
	if b[0] == '[' {
		var list []Product
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		*l = list
		return nil
	}
	var p Product
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*l = ProductList{p}
	return nil
}

// AssortmentResponse is the API envelope for GET /api/assortments.
type AssortmentResponse struct {
	Success         bool        `json:"Success"`
	Message         string      `json:"Message"`
	Data            ProductList `json:"Data"`
	TotalRecords    int         `json:"TotalRecords"`
	PageSize        int         `json:"PageSize"`
	CurrentPage     int         `json:"CurrentPage"`
	TotalPages      int         `json:"TotalPages"`
	NextPageURL     *string     `json:"NextPageUrl"`
	PreviousPageURL *string     `json:"PreviousPageUrl"`
}

// PaginationFromResponse maps the envelope's paging fields onto a
// Pagination, applying the documented fallbacks for absent values.
func PaginationFromResponse(r *AssortmentResponse) *Pagination {
	p := &Pagination{
		TotalRecords:    r.TotalRecords,
		PageSize:        r.PageSize,
		CurrentPage:     r.CurrentPage,
		TotalPages:      r.TotalPages,
		NextPageURL:     r.NextPageURL,
		PreviousPageURL: r.PreviousPageURL,
	}
	if p.PageSize == 0 {
		p.PageSize = DefaultPageSize
	}
	if p.CurrentPage == 0 {
		p.CurrentPage = 1
	}
	if p.TotalPages == 0 {
		p.TotalPages = 1
	}
	return p
}
