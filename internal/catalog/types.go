package catalog

import (
	"math"
	"time"

	"facade/internal/media"
)

type Brand struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BrandSize is a brand- and category-scoped size label ("42", "L",
// "Regular"); variants reference it so products can be filtered by fit.
type BrandSize struct {
	ID         int64  `json:"id"`
	BrandID    int64  `json:"brand_id"`
	CategoryID int64  `json:"category_id"`
	Label      string `json:"label"`
}

type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	BrandID     int64     `json:"brand_id"`
	CategoryID  int64     `json:"category_id"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProductVariant struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"product_id"`
	BrandSizeID int64  `json:"brand_size_id"`
	SizeLabel   string `json:"size_label,omitempty"`
	PriceCents  int64  `json:"price_cents"`
	Stock       int    `json:"stock"`
	IsActive    bool   `json:"is_active"`
}

// ProductMedia is a persisted media row. URL is always absolute; inline
// payloads never reach the database.
type ProductMedia struct {
	ID        int64      `json:"id"`
	ProductID int64      `json:"product_id"`
	URL       string     `json:"url"`
	MediaType media.Kind `json:"media_type"`
	SortOrder int        `json:"order"`
	IsPrimary bool       `json:"is_primary"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ProductSummary is the denormalized read model: brand and category names
// resolved, variants carrying their size labels, media in display order.
type ProductSummary struct {
	Product
	BrandName    string            `json:"brand_name"`
	CategoryName string            `json:"category_name"`
	Variants     []*ProductVariant `json:"variants"`
	Media        []*ProductMedia   `json:"media"`
}

type ProductPage struct {
	Items      []*ProductSummary `json:"items"`
	TotalCount int               `json:"total_count"`
	Page       int               `json:"page_number"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
	HasNext    bool              `json:"has_next"`
	HasPrev    bool              `json:"has_previous"`
}

// NewProductPage fills the derived pagination metadata.
func NewProductPage(items []*ProductSummary, total, page, pageSize int) *ProductPage {
	p := &ProductPage{
		Items:      items,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	}
	if p.Items == nil {
		p.Items = []*ProductSummary{}
	}
	if pageSize > 0 {
		p.TotalPages = int(math.Ceil(float64(total) / float64(pageSize)))
	}
	p.HasNext = page*pageSize < total
	p.HasPrev = page > 1
	return p
}
