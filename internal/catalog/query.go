package catalog

import (
	"fmt"
	"strings"
)

// BuildProductListQuery composes the listing statements for a validated
// filter: the data query (page of products with denormalized brand and
// category names plus a COUNT(*) OVER() total) and the bare count query
// used when a past-the-end page returns no rows.
//
// Ordering maps the sort key to its column, applies the direction to that
// column only, and always appends p.id ASC as the tie-break so equal-keyed
// rows keep a stable order in both directions.
func BuildProductListQuery(f ProductFilter) (dataSQL, countSQL string, dataArgs, countArgs []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.BrandID != nil {
		where = append(where, "p.brand_id = "+arg(*f.BrandID))
	}
	if f.CategoryID != nil {
		where = append(where, "p.category_id = "+arg(*f.CategoryID))
	}
	if f.MinPriceCents != nil {
		where = append(where, "p.price_cents >= "+arg(*f.MinPriceCents))
	}
	if f.MaxPriceCents != nil {
		where = append(where, "p.price_cents <= "+arg(*f.MaxPriceCents))
	}
	if f.BrandSizeID != nil {
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM product_variants v WHERE v.product_id = p.id AND v.brand_size_id = %s AND v.is_active)",
			arg(*f.BrandSizeID)))
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = "WHERE " + strings.Join(where, " AND ")
	}

	countArgs = args
	countSQL = strings.TrimSpace(fmt.Sprintf(`
		SELECT COUNT(*)
		FROM products p
		%s`, whereSQL))

	dir := "ASC"
	if f.SortDescending {
		dir = "DESC"
	}
	var orderSQL string
	switch f.SortBy {
	case SortByName:
		orderSQL = fmt.Sprintf("ORDER BY LOWER(p.name) %s, p.id ASC", dir)
	case SortByPrice:
		orderSQL = fmt.Sprintf("ORDER BY p.price_cents %s, p.id ASC", dir)
	case SortByBrand:
		orderSQL = fmt.Sprintf("ORDER BY LOWER(b.name) %s, p.id ASC", dir)
	default:
		orderSQL = fmt.Sprintf("ORDER BY p.id %s", dir)
	}

	dataArgs = append(args, f.PageSize, f.Offset())
	dataSQL = strings.TrimSpace(fmt.Sprintf(`
		SELECT
			p.id, p.name, p.description, p.price_cents,
			p.brand_id, b.name AS brand_name,
			p.category_id, c.name AS category_name,
			p.is_active, p.created_at, p.updated_at,
			COUNT(*) OVER() AS total_count
		FROM products p
		JOIN brands b     ON b.id = p.brand_id
		JOIN categories c ON c.id = p.category_id
		%s
		%s
		LIMIT $%d OFFSET $%d`, whereSQL, orderSQL, len(args)+1, len(args)+2))

	return dataSQL, countSQL, dataArgs, countArgs
}
