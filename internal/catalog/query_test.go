package catalog_test

import (
	"cmp"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facade/internal/catalog"
)

func baseFilter() catalog.ProductFilter {
	return catalog.ProductFilter{SortBy: catalog.SortByID, Page: 1, PageSize: 10}
}

func TestBuildProductListQueryNoFilters(t *testing.T) {
	dataSQL, countSQL, dataArgs, countArgs := catalog.BuildProductListQuery(baseFilter())

	assert.NotContains(t, dataSQL, "WHERE")
	assert.NotContains(t, countSQL, "WHERE")
	assert.Contains(t, dataSQL, "COUNT(*) OVER() AS total_count")
	assert.Contains(t, dataSQL, "ORDER BY p.id ASC")
	assert.Contains(t, dataSQL, "LIMIT $1 OFFSET $2")
	assert.Equal(t, []any{10, 0}, dataArgs)
	assert.Empty(t, countArgs)
}

func TestBuildProductListQueryConjunction(t *testing.T) {
	f := baseFilter()
	brand, category, lo, hi := int64(3), int64(5), int64(1000), int64(5000)
	f.BrandID = &brand
	f.CategoryID = &category
	f.MinPriceCents = &lo
	f.MaxPriceCents = &hi

	dataSQL, countSQL, dataArgs, countArgs := catalog.BuildProductListQuery(f)

	assert.Contains(t, dataSQL, "p.brand_id = $1")
	assert.Contains(t, dataSQL, "p.category_id = $2")
	assert.Contains(t, dataSQL, "p.price_cents >= $3")
	assert.Contains(t, dataSQL, "p.price_cents <= $4")
	assert.Contains(t, dataSQL, " AND ")

	// Count query carries the same predicate without pagination args.
	assert.Contains(t, countSQL, "p.brand_id = $1")
	assert.Equal(t, []any{brand, category, lo, hi}, countArgs)
	assert.Equal(t, []any{brand, category, lo, hi, 10, 0}, dataArgs)
}

func TestBuildProductListQueryBrandSizePredicate(t *testing.T) {
	f := baseFilter()
	size := int64(42)
	f.BrandSizeID = &size

	dataSQL, countSQL, dataArgs, _ := catalog.BuildProductListQuery(f)

	want := "EXISTS (SELECT 1 FROM product_variants v WHERE v.product_id = p.id AND v.brand_size_id = $1 AND v.is_active)"
	assert.Contains(t, dataSQL, want)
	assert.Contains(t, countSQL, want)
	assert.Equal(t, []any{size, 10, 0}, dataArgs)
}

func TestBuildProductListQueryOrdering(t *testing.T) {
	tests := []struct {
		sortBy catalog.SortKey
		desc   bool
		want   string
	}{
		{catalog.SortByID, false, "ORDER BY p.id ASC"},
		{catalog.SortByID, true, "ORDER BY p.id DESC"},
		{catalog.SortByName, false, "ORDER BY LOWER(p.name) ASC, p.id ASC"},
		{catalog.SortByName, true, "ORDER BY LOWER(p.name) DESC, p.id ASC"},
		{catalog.SortByPrice, false, "ORDER BY p.price_cents ASC, p.id ASC"},
		{catalog.SortByPrice, true, "ORDER BY p.price_cents DESC, p.id ASC"},
		{catalog.SortByBrand, false, "ORDER BY LOWER(b.name) ASC, p.id ASC"},
		{catalog.SortByBrand, true, "ORDER BY LOWER(b.name) DESC, p.id ASC"},
	}

	for _, tt := range tests {
		f := baseFilter()
		f.SortBy = tt.sortBy
		f.SortDescending = tt.desc

		dataSQL, _, _, _ := catalog.BuildProductListQuery(f)
		assert.Contains(t, dataSQL, tt.want, "sortBy=%s desc=%v", tt.sortBy, tt.desc)
	}
}

// listedRow is the slice of a product row the ORDER BY clause can touch.
type listedRow struct {
	id    int64
	name  string
	price int64
	brand string
}

// runListQuery executes the generated statement's ORDER BY, LIMIT and
// OFFSET against an in-memory row set, the way the database would.
func runListQuery(t *testing.T, f catalog.ProductFilter, rows []listedRow) []listedRow {
	t.Helper()

	dataSQL, _, dataArgs, _ := catalog.BuildProductListQuery(f)

	start := strings.Index(dataSQL, "ORDER BY")
	end := strings.Index(dataSQL, "LIMIT")
	require.True(t, start >= 0 && end > start, "unexpected statement shape: %s", dataSQL)

	var compares []func(a, b listedRow) int
	for _, raw := range strings.Split(strings.TrimSpace(dataSQL[start+len("ORDER BY"):end]), ",") {
		fields := strings.Fields(raw)
		require.Len(t, fields, 2, "order term %q", raw)
		expr, dir := fields[0], fields[1]

		var c func(a, b listedRow) int
		switch expr {
		case "p.id":
			c = func(a, b listedRow) int { return cmp.Compare(a.id, b.id) }
		case "LOWER(p.name)":
			c = func(a, b listedRow) int { return cmp.Compare(strings.ToLower(a.name), strings.ToLower(b.name)) }
		case "p.price_cents":
			c = func(a, b listedRow) int { return cmp.Compare(a.price, b.price) }
		case "LOWER(b.name)":
			c = func(a, b listedRow) int { return cmp.Compare(strings.ToLower(a.brand), strings.ToLower(b.brand)) }
		default:
			t.Fatalf("order expression %q has no comparator", expr)
		}
		switch dir {
		case "ASC":
		case "DESC":
			asc := c
			c = func(a, b listedRow) int { return -asc(a, b) }
		default:
			t.Fatalf("order term %q has no direction", raw)
		}
		compares = append(compares, c)
	}

	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b listedRow) int {
		for _, c := range compares {
			if v := c(a, b); v != 0 {
				return v
			}
		}
		return 0
	})

	require.GreaterOrEqual(t, len(dataArgs), 2)
	limit := dataArgs[len(dataArgs)-2].(int)
	offset := dataArgs[len(dataArgs)-1].(int)
	if offset >= len(sorted) {
		return nil
	}
	return sorted[offset:min(offset+limit, len(sorted))]
}

func listedIDs(rows []listedRow) []int64 {
	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.id
	}
	return ids
}

func TestBuildProductListQueryTieBreakKeepsIDAscending(t *testing.T) {
	rows := []listedRow{
		{id: 4, name: "runner", price: 3000, brand: "acme"},
		{id: 1, name: "Runner", price: 2000, brand: "zenith"},
		{id: 3, name: "boot", price: 2000, brand: "Acme"},
		{id: 2, name: "runner", price: 1000, brand: "acme"},
	}

	f := baseFilter()
	f.SortBy = catalog.SortByName
	f.SortDescending = true
	// "runner" sorts before "boot" descending; the equal-named rows 1, 2
	// and 4 still come back in ascending id order.
	assert.Equal(t, []int64{1, 2, 4, 3}, listedIDs(runListQuery(t, f, rows)))

	f = baseFilter()
	f.SortBy = catalog.SortByPrice
	assert.Equal(t, []int64{2, 1, 3, 4}, listedIDs(runListQuery(t, f, rows)))

	f.SortDescending = true
	assert.Equal(t, []int64{4, 1, 3, 2}, listedIDs(runListQuery(t, f, rows)))

	f = baseFilter()
	f.SortBy = catalog.SortByBrand
	assert.Equal(t, []int64{2, 3, 4, 1}, listedIDs(runListQuery(t, f, rows)))
}

func TestBuildProductListQueryPagesConcatenateWithoutGaps(t *testing.T) {
	rows := []listedRow{
		{id: 1, name: "alpha", price: 500, brand: "nimbus"},
		{id: 2, name: "echo", price: 300, brand: "acme"},
		{id: 3, name: "alpha", price: 300, brand: "Zenith"},
		{id: 4, name: "delta", price: 900, brand: "acme"},
		{id: 5, name: "Bravo", price: 500, brand: "nimbus"},
		{id: 6, name: "charlie", price: 100, brand: "orbit"},
		{id: 7, name: "echo", price: 500, brand: "Acme"},
	}

	for _, sortBy := range []catalog.SortKey{catalog.SortByID, catalog.SortByName, catalog.SortByPrice, catalog.SortByBrand} {
		for _, desc := range []bool{false, true} {
			full := baseFilter()
			full.SortBy = sortBy
			full.SortDescending = desc
			full.PageSize = len(rows)
			want := listedIDs(runListQuery(t, full, rows))
			require.Len(t, want, len(rows))

			var got []int64
			for page := 1; page <= 4; page++ {
				f := full
				f.Page = page
				f.PageSize = 2
				got = append(got, listedIDs(runListQuery(t, f, rows))...)
			}
			assert.Equal(t, want, got, "sortBy=%s desc=%v", sortBy, desc)
		}
	}
}

func TestBuildProductListQueryPagination(t *testing.T) {
	f := baseFilter()
	f.Page = 3
	f.PageSize = 25

	dataSQL, _, dataArgs, _ := catalog.BuildProductListQuery(f)

	require.Len(t, dataArgs, 2)
	assert.Equal(t, 25, dataArgs[0])
	assert.Equal(t, 50, dataArgs[1])
	assert.Contains(t, dataSQL, "LIMIT $1 OFFSET $2")
}

func TestBuildProductListQueryArgNumberingWithFilters(t *testing.T) {
	f := baseFilter()
	brand := int64(1)
	f.BrandID = &brand
	f.Page = 2
	f.PageSize = 5

	dataSQL, _, dataArgs, _ := catalog.BuildProductListQuery(f)

	assert.Contains(t, dataSQL, "LIMIT $2 OFFSET $3")
	assert.Equal(t, []any{brand, 5, 5}, dataArgs)
}
