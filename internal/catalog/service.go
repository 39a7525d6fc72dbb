package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"facade/internal/media"
	"facade/internal/storage"
)

// MediaInput is one media item in a product payload. Value carries either
// an absolute URL or an inline data URI; ID references an existing row.
type MediaInput struct {
	ID        *int64     `json:"id,omitempty"`
	Value     string     `json:"value"`
	Type      media.Kind `json:"media_type"`
	SortOrder int        `json:"order"`
	IsPrimary bool       `json:"is_primary"`
}

type VariantInput struct {
	ID          int64 `json:"id,omitempty"`
	BrandSizeID int64 `json:"brand_size_id" validate:"required"`
	PriceCents  int64 `json:"price_cents" validate:"gte=0"`
	Stock       int   `json:"stock" validate:"gte=0"`
	IsActive    bool  `json:"is_active"`
}

type CreateProductInput struct {
	Name        string         `json:"name" validate:"required,max=200"`
	Description string         `json:"description" validate:"max=2000"`
	PriceCents  int64          `json:"price_cents" validate:"gte=0"`
	BrandID     int64          `json:"brand_id" validate:"required"`
	CategoryID  int64          `json:"category_id" validate:"required"`
	IsActive    bool           `json:"is_active"`
	Variants    []VariantInput `json:"variants" validate:"dive"`
	Media       []MediaInput   `json:"media"`
}

// UpdateProductInput carries the full desired state of a product; the
// variant and media lists replace what is stored.
type UpdateProductInput struct {
	Name        string         `json:"name" validate:"required,max=200"`
	Description string         `json:"description" validate:"max=2000"`
	PriceCents  int64          `json:"price_cents" validate:"gte=0"`
	BrandID     int64          `json:"brand_id" validate:"required"`
	CategoryID  int64          `json:"category_id" validate:"required"`
	IsActive    bool           `json:"is_active"`
	Variants    []VariantInput `json:"variants" validate:"dive"`
	Media       []MediaInput   `json:"media"`
}

// Service implements the product write paths, coordinating media
// reconciliation against object storage with row persistence so that
// uploads happen before the transaction and remote cleanup after it.
type Service struct {
	store      Store
	reconciler *media.Reconciler
	storage    storage.Storage
	logger     *zap.SugaredLogger
}

func NewService(store Store, rc *media.Reconciler, st storage.Storage, logger *zap.SugaredLogger) *Service {
	return &Service{store: store, reconciler: rc, storage: st, logger: logger}
}

func (s *Service) ListProducts(ctx context.Context, f ProductFilter) (*ProductPage, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	items, total, err := s.store.ListProducts(ctx, f)
	if err != nil {
		return nil, err
	}
	return NewProductPage(items, total, f.Page, f.PageSize), nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*ProductSummary, error) {
	return s.store.GetProductByID(ctx, id)
}

func (s *Service) CreateProduct(ctx context.Context, in CreateProductInput) (*ProductSummary, error) {
	if err := s.checkRefs(ctx, in.BrandID, in.CategoryID); err != nil {
		return nil, err
	}

	// Uploads run before the transaction touches the database; if persisting
	// fails the uploaded objects are removed again.
	res, err := s.reconciler.Reconcile(ctx, toEntries(in.Media), nil)
	if err != nil {
		return nil, err
	}

	p := &Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		PriceCents:  in.PriceCents,
		BrandID:     in.BrandID,
		CategoryID:  in.CategoryID,
		IsActive:    in.IsActive,
	}

	err = s.store.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := s.store.CreateProduct(ctx, tx, p); err != nil {
			return err
		}
		if err := s.store.ReplaceProductVariants(ctx, tx, p.ID, toVariants(p.ID, in.Variants)); err != nil {
			return err
		}
		if len(res.Rows) > 0 {
			if _, err := s.store.ReplaceProductMedia(ctx, tx, p.ID, toMediaRows(res.Rows)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.removeObjectsAsync(res.UploadedURLs)
		return nil, err
	}

	return s.store.GetProductByID(ctx, p.ID)
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, in UpdateProductInput) (*ProductSummary, error) {
	current, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, in.BrandID, in.CategoryID); err != nil {
		return nil, err
	}

	res, err := s.reconciler.Reconcile(ctx, toEntries(in.Media), toExistingRows(current.Media))
	if err != nil {
		return nil, err
	}

	p := &Product{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		PriceCents:  in.PriceCents,
		BrandID:     in.BrandID,
		CategoryID:  in.CategoryID,
		IsActive:    in.IsActive,
	}

	err = s.store.WithTx(ctx, func(tx pgx.Tx) error {
		if err := s.store.UpdateProduct(ctx, tx, p); err != nil {
			return err
		}
		if err := s.store.ReplaceProductVariants(ctx, tx, id, toVariants(id, in.Variants)); err != nil {
			return err
		}
		_, err := s.store.ReplaceProductMedia(ctx, tx, id, toMediaRows(res.Rows))
		return err
	})
	if err != nil {
		s.removeObjectsAsync(res.UploadedURLs)
		return nil, err
	}

	// Stored objects dropped from the desired list are gone from the
	// database now; remote removal happens off the request path.
	s.removeObjectsAsync(res.RemovedURLs)

	return s.store.GetProductByID(ctx, id)
}

// UpdateProductMedia reconciles only the media list of a product, leaving
// the rest of the row untouched.
func (s *Service) UpdateProductMedia(ctx context.Context, productID int64, entries []MediaInput) ([]*ProductMedia, error) {
	ok, err := s.store.ProductExists(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrProductNotFound
	}

	existing, err := s.store.ListProductMedia(ctx, productID)
	if err != nil {
		return nil, err
	}

	res, err := s.reconciler.Reconcile(ctx, toEntries(entries), toExistingRows(existing))
	if err != nil {
		return nil, err
	}

	var rows []*ProductMedia
	err = s.store.WithTx(ctx, func(tx pgx.Tx) error {
		rows, err = s.store.ReplaceProductMedia(ctx, tx, productID, toMediaRows(res.Rows))
		return err
	})
	if err != nil {
		s.removeObjectsAsync(res.UploadedURLs)
		return nil, err
	}

	s.removeObjectsAsync(res.RemovedURLs)
	return rows, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	existing, err := s.store.ListProductMedia(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return err
	}

	urls := make([]string, 0, len(existing))
	for _, m := range existing {
		urls = append(urls, m.URL)
	}
	s.removeObjectsAsync(urls)
	return nil
}

func (s *Service) checkRefs(ctx context.Context, brandID, categoryID int64) error {
	if _, err := s.store.GetBrandByID(ctx, brandID); err != nil {
		return err
	}
	if _, err := s.store.GetCategoryByID(ctx, categoryID); err != nil {
		return err
	}
	return nil
}

// removeObjectsAsync deletes stored objects off the request path. Failures
// are logged; an orphaned object is preferable to failing the request after
// the database already committed.
func (s *Service) removeObjectsAsync(urls []string) {
	for _, u := range urls {
		go func(fileURL string) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := s.storage.Delete(ctx, fileURL); err != nil {
				s.logger.Errorw("failed to delete stored object", "url", fileURL, "error", err)
			}
		}(u)
	}
}

func toEntries(in []MediaInput) []media.Entry {
	out := make([]media.Entry, 0, len(in))
	for _, m := range in {
		out = append(out, media.Entry{
			ID:        m.ID,
			Value:     m.Value,
			Type:      m.Type,
			SortOrder: m.SortOrder,
			IsPrimary: m.IsPrimary,
		})
	}
	return out
}

func toExistingRows(rows []*ProductMedia) []media.Row {
	out := make([]media.Row, 0, len(rows))
	for _, m := range rows {
		out = append(out, media.Row{
			ID:        m.ID,
			URL:       m.URL,
			Type:      m.MediaType,
			SortOrder: m.SortOrder,
			IsPrimary: m.IsPrimary,
		})
	}
	return out
}

func toMediaRows(rows []media.Row) []*ProductMedia {
	out := make([]*ProductMedia, 0, len(rows))
	for _, r := range rows {
		out = append(out, &ProductMedia{
			ID:        r.ID,
			URL:       r.URL,
			MediaType: r.Type,
			SortOrder: r.SortOrder,
			IsPrimary: r.IsPrimary,
		})
	}
	return out
}

func toVariants(productID int64, in []VariantInput) []*ProductVariant {
	out := make([]*ProductVariant, 0, len(in))
	for _, v := range in {
		out = append(out, &ProductVariant{
			ID:          v.ID,
			ProductID:   productID,
			BrandSizeID: v.BrandSizeID,
			PriceCents:  v.PriceCents,
			Stock:       v.Stock,
			IsActive:    v.IsActive,
		})
	}
	return out
}
