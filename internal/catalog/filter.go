package catalog

import (
	"net/url"
	"strconv"
	"strings"
)

type SortKey string

const (
	SortByID    SortKey = "id"
	SortByName  SortKey = "name"
	SortByPrice SortKey = "price"
	SortByBrand SortKey = "brand"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ProductFilter carries the listing query parameters. Zero-valued optional
// fields mean "no constraint".
type ProductFilter struct {
	BrandID       *int64
	CategoryID    *int64
	MinPriceCents *int64
	MaxPriceCents *int64
	BrandSizeID   *int64

	SortBy         SortKey
	SortDescending bool

	Page     int
	PageSize int
}

// ParseProductFilter reads the listing parameters from a query string.
// Defaults: page 1, page size 10, sort by id ascending. Malformed values
// fail with a ValidationError naming the parameter.
func ParseProductFilter(q url.Values) (ProductFilter, error) {
	f := ProductFilter{SortBy: SortByID, Page: 1, PageSize: DefaultPageSize}

	for _, p := range []struct {
		name string
		dst  **int64
	}{
		{"brandId", &f.BrandID},
		{"categoryId", &f.CategoryID},
		{"minPrice", &f.MinPriceCents},
		{"maxPrice", &f.MaxPriceCents},
		{"brandSizeId", &f.BrandSizeID},
	} {
		raw := strings.TrimSpace(q.Get(p.name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return f, invalidField(p.name, "must be an integer")
		}
		*p.dst = &v
	}

	if raw := strings.TrimSpace(q.Get("sortBy")); raw != "" {
		f.SortBy = SortKey(strings.ToLower(raw))
	}
	if raw := strings.TrimSpace(q.Get("sortDescending")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return f, invalidField("sortDescending", "must be a boolean")
		}
		f.SortDescending = v
	}
	if raw := strings.TrimSpace(q.Get("pageNumber")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return f, invalidField("pageNumber", "must be an integer")
		}
		f.Page = v
	}
	if raw := strings.TrimSpace(q.Get("pageSize")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return f, invalidField("pageSize", "must be an integer")
		}
		f.PageSize = v
	}

	return f, f.Validate()
}

// Validate enforces the relational constraints. Unknown sort keys are
// rejected rather than silently mapped to id order.
func (f *ProductFilter) Validate() error {
	if f.Page < 1 {
		return invalidField("pageNumber", "must be at least 1")
	}
	if f.PageSize < 1 || f.PageSize > MaxPageSize {
		return invalidField("pageSize", "must be between 1 and %d", MaxPageSize)
	}
	if f.MinPriceCents != nil && *f.MinPriceCents < 0 {
		return invalidField("minPrice", "must not be negative")
	}
	if f.MaxPriceCents != nil && *f.MaxPriceCents < 0 {
		return invalidField("maxPrice", "must not be negative")
	}
	if f.MinPriceCents != nil && f.MaxPriceCents != nil && *f.MinPriceCents > *f.MaxPriceCents {
		return invalidField("minPrice", "must not exceed maxPrice")
	}
	switch f.SortBy {
	case SortByID, SortByName, SortByPrice, SortByBrand:
	default:
		return invalidField("sortBy", "must be one of id, name, price, brand")
	}
	return nil
}

// Offset is the SQL OFFSET for the requested page.
func (f *ProductFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}
