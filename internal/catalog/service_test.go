package catalog_test

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"facade/internal/catalog"
	"facade/internal/media"
)

// ---- fakes ----

type fakeStorage struct {
	mu      sync.Mutex
	uploads []string
	deletes []string
}

func (f *fakeStorage) Upload(_ context.Context, key string, _ []byte, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, key)
	return "https://cdn.example.com/" + key, nil
}

func (f *fakeStorage) Delete(_ context.Context, fileURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, fileURL)
	return nil
}

func (f *fakeStorage) Exists(_ context.Context, _ string) (bool, error) { return false, nil }

func (f *fakeStorage) deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deletes...)
}

// fakeStore keeps everything in maps; only the paths the service exercises
// are fully modeled.
type fakeStore struct {
	brands     map[int64]*catalog.Brand
	categories map[int64]*catalog.Category
	products   map[int64]*catalog.Product
	variants   map[int64][]*catalog.ProductVariant
	mediaRows  map[int64][]*catalog.ProductMedia
	nextID     int64
	txErr      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		brands:     map[int64]*catalog.Brand{},
		categories: map[int64]*catalog.Category{},
		products:   map[int64]*catalog.Product{},
		variants:   map[int64][]*catalog.ProductVariant{},
		mediaRows:  map[int64][]*catalog.ProductMedia{},
		nextID:     100,
	}
}

func (s *fakeStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *fakeStore) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	if s.txErr != nil {
		return s.txErr
	}
	return fn(nil)
}

func (s *fakeStore) CreateBrand(_ context.Context, b *catalog.Brand) (*catalog.Brand, error) {
	b.ID = s.id()
	s.brands[b.ID] = b
	return b, nil
}

func (s *fakeStore) GetBrandByID(_ context.Context, id int64) (*catalog.Brand, error) {
	b, ok := s.brands[id]
	if !ok {
		return nil, catalog.ErrBrandNotFound
	}
	return b, nil
}

func (s *fakeStore) ListBrands(_ context.Context, _, _ int) ([]*catalog.Brand, int, error) {
	return nil, 0, nil
}
func (s *fakeStore) UpdateBrand(_ context.Context, _ *catalog.Brand) error { return nil }
func (s *fakeStore) DeleteBrand(_ context.Context, _ int64) error          { return nil }

func (s *fakeStore) CreateCategory(_ context.Context, c *catalog.Category) (*catalog.Category, error) {
	c.ID = s.id()
	s.categories[c.ID] = c
	return c, nil
}

func (s *fakeStore) GetCategoryByID(_ context.Context, id int64) (*catalog.Category, error) {
	c, ok := s.categories[id]
	if !ok {
		return nil, catalog.ErrCategoryNotFound
	}
	return c, nil
}

func (s *fakeStore) ListCategories(_ context.Context, _, _ int) ([]*catalog.Category, int, error) {
	return nil, 0, nil
}
func (s *fakeStore) UpdateCategory(_ context.Context, _ *catalog.Category) error { return nil }
func (s *fakeStore) DeleteCategory(_ context.Context, _ int64) error             { return nil }

func (s *fakeStore) CreateBrandSize(_ context.Context, bs *catalog.BrandSize) (*catalog.BrandSize, error) {
	bs.ID = s.id()
	return bs, nil
}
func (s *fakeStore) GetBrandSizeByID(_ context.Context, _ int64) (*catalog.BrandSize, error) {
	return nil, catalog.ErrSizeNotFound
}
func (s *fakeStore) ListBrandSizes(_ context.Context, _ int64) ([]*catalog.BrandSize, error) {
	return nil, nil
}
func (s *fakeStore) UpdateBrandSize(_ context.Context, _ *catalog.BrandSize) error { return nil }
func (s *fakeStore) DeleteBrandSize(_ context.Context, _ int64) error              { return nil }

func (s *fakeStore) CreateProduct(_ context.Context, _ pgx.Tx, p *catalog.Product) (*catalog.Product, error) {
	p.ID = s.id()
	s.products[p.ID] = p
	return p, nil
}

func (s *fakeStore) GetProductByID(_ context.Context, id int64) (*catalog.ProductSummary, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	sum := &catalog.ProductSummary{Product: *p}
	if b, ok := s.brands[p.BrandID]; ok {
		sum.BrandName = b.Name
	}
	if c, ok := s.categories[p.CategoryID]; ok {
		sum.CategoryName = c.Name
	}
	sum.Variants = s.variants[id]
	sum.Media = s.mediaRows[id]
	return sum, nil
}

func (s *fakeStore) ListProducts(_ context.Context, f catalog.ProductFilter) ([]*catalog.ProductSummary, int, error) {
	var out []*catalog.ProductSummary
	for id := range s.products {
		sum, _ := s.GetProductByID(context.Background(), id)
		out = append(out, sum)
	}
	return out, len(out), nil
}

func (s *fakeStore) UpdateProduct(_ context.Context, _ pgx.Tx, p *catalog.Product) error {
	if _, ok := s.products[p.ID]; !ok {
		return catalog.ErrProductNotFound
	}
	s.products[p.ID] = p
	return nil
}

func (s *fakeStore) DeleteProduct(_ context.Context, id int64) error {
	if _, ok := s.products[id]; !ok {
		return catalog.ErrProductNotFound
	}
	delete(s.products, id)
	delete(s.mediaRows, id)
	delete(s.variants, id)
	return nil
}

func (s *fakeStore) ProductExists(_ context.Context, id int64) (bool, error) {
	_, ok := s.products[id]
	return ok, nil
}

func (s *fakeStore) CreateVariant(_ context.Context, v *catalog.ProductVariant) (*catalog.ProductVariant, error) {
	v.ID = s.id()
	s.variants[v.ProductID] = append(s.variants[v.ProductID], v)
	return v, nil
}
func (s *fakeStore) ListVariantsByProduct(_ context.Context, productID int64) ([]*catalog.ProductVariant, error) {
	return s.variants[productID], nil
}
func (s *fakeStore) UpdateVariant(_ context.Context, _ *catalog.ProductVariant) error { return nil }
func (s *fakeStore) DeleteVariant(_ context.Context, _ int64) error                   { return nil }

func (s *fakeStore) ReplaceProductVariants(_ context.Context, _ pgx.Tx, productID int64, variants []*catalog.ProductVariant) error {
	for _, v := range variants {
		if v.ID == 0 {
			v.ID = s.id()
		}
	}
	s.variants[productID] = variants
	return nil
}

func (s *fakeStore) ListProductMedia(_ context.Context, productID int64) ([]*catalog.ProductMedia, error) {
	return s.mediaRows[productID], nil
}

func (s *fakeStore) ReplaceProductMedia(_ context.Context, _ pgx.Tx, productID int64, rows []*catalog.ProductMedia) ([]*catalog.ProductMedia, error) {
	for _, m := range rows {
		m.ProductID = productID
		if m.ID == 0 {
			m.ID = s.id()
		}
	}
	s.mediaRows[productID] = rows
	return rows, nil
}

// ---- helpers ----

func newTestService(t *testing.T) (*catalog.Service, *fakeStore, *fakeStorage) {
	t.Helper()
	store := newFakeStore()
	st := &fakeStorage{}
	rc := media.NewReconciler(st, "products", 0)
	svc := catalog.NewService(store, rc, st, zap.NewNop().Sugar())
	return svc, store, st
}

func seedRefs(store *fakeStore) (brandID, categoryID int64) {
	b, _ := store.CreateBrand(context.Background(), &catalog.Brand{Name: "Acme"})
	c, _ := store.CreateCategory(context.Background(), &catalog.Category{Name: "Shoes", IsActive: true})
	return b.ID, c.ID
}

func pngDataURI(payload string) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(payload))
}

// ---- tests ----

func TestListProductsRejectsInvalidFilter(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.ListProducts(context.Background(), catalog.ProductFilter{
		SortBy: "popularity", Page: 1, PageSize: 10,
	})
	require.Error(t, err)

	var vErr *catalog.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestCreateProductRejectsUnknownBrand(t *testing.T) {
	svc, store, st := newTestService(t)
	_, categoryID := seedRefs(store)

	_, err := svc.CreateProduct(context.Background(), catalog.CreateProductInput{
		Name: "Runner", PriceCents: 9999, BrandID: 999, CategoryID: categoryID,
	})
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.Empty(t, st.uploads)
}

func TestCreateProductUploadsInlineMedia(t *testing.T) {
	svc, store, st := newTestService(t)
	brandID, categoryID := seedRefs(store)

	created, err := svc.CreateProduct(context.Background(), catalog.CreateProductInput{
		Name:       "Runner",
		PriceCents: 9999,
		BrandID:    brandID,
		CategoryID: categoryID,
		IsActive:   true,
		Media: []catalog.MediaInput{
			{Value: pngDataURI("img-a"), Type: media.KindImage, IsPrimary: true},
			{Value: "https://cdn.example.com/products/kept.png", Type: media.KindImage, SortOrder: 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme", created.BrandName)
	assert.Equal(t, "Shoes", created.CategoryName)
	require.Len(t, created.Media, 2)
	assert.True(t, created.Media[0].IsPrimary)
	assert.Contains(t, created.Media[0].URL, "https://cdn.example.com/products/")
	assert.Equal(t, "https://cdn.example.com/products/kept.png", created.Media[1].URL)
	assert.Len(t, st.uploads, 1)
}

func TestCreateProductCleansUpUploadsOnPersistFailure(t *testing.T) {
	svc, store, st := newTestService(t)
	brandID, categoryID := seedRefs(store)
	store.txErr = fmt.Errorf("connection reset")

	_, err := svc.CreateProduct(context.Background(), catalog.CreateProductInput{
		Name: "Runner", PriceCents: 9999, BrandID: brandID, CategoryID: categoryID,
		Media: []catalog.MediaInput{
			{Value: pngDataURI("img-a"), Type: media.KindImage},
		},
	})
	require.Error(t, err)

	require.Eventually(t, func() bool {
		return len(st.deleted()) == 1
	}, 2*time.Second, 10*time.Millisecond, "uploaded object should be removed after persistence failure")
}

func TestUpdateProductMediaResubmitIsNoUpload(t *testing.T) {
	svc, store, st := newTestService(t)
	brandID, categoryID := seedRefs(store)

	created, err := svc.CreateProduct(context.Background(), catalog.CreateProductInput{
		Name: "Runner", PriceCents: 9999, BrandID: brandID, CategoryID: categoryID,
		Media: []catalog.MediaInput{
			{Value: pngDataURI("img-a"), Type: media.KindImage, IsPrimary: true},
		},
	})
	require.NoError(t, err)
	require.Len(t, st.uploads, 1)

	// Resubmitting the resolved rows converges with zero uploads.
	rows, err := svc.UpdateProductMedia(context.Background(), created.ID, []catalog.MediaInput{
		{ID: &created.Media[0].ID, Value: created.Media[0].URL, Type: media.KindImage, IsPrimary: true},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, created.Media[0].URL, rows[0].URL)
	assert.Len(t, st.uploads, 1)
}

func TestUpdateProductMediaRemovesOmittedRows(t *testing.T) {
	svc, store, st := newTestService(t)
	brandID, categoryID := seedRefs(store)

	created, err := svc.CreateProduct(context.Background(), catalog.CreateProductInput{
		Name: "Runner", PriceCents: 9999, BrandID: brandID, CategoryID: categoryID,
		Media: []catalog.MediaInput{
			{Value: pngDataURI("img-a"), Type: media.KindImage, IsPrimary: true},
			{Value: pngDataURI("img-b"), Type: media.KindImage, SortOrder: 1},
		},
	})
	require.NoError(t, err)
	require.Len(t, created.Media, 2)

	removedURL := created.Media[1].URL
	rows, err := svc.UpdateProductMedia(context.Background(), created.ID, []catalog.MediaInput{
		{ID: &created.Media[0].ID, Value: created.Media[0].URL, Type: media.KindImage, IsPrimary: true},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	require.Eventually(t, func() bool {
		for _, u := range st.deleted() {
			if u == removedURL {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond, "omitted row's object should be removed from storage")
}

func TestUpdateProductMediaUnknownProduct(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.UpdateProductMedia(context.Background(), 12345, nil)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestDeleteProductRemovesStoredObjects(t *testing.T) {
	svc, store, st := newTestService(t)
	brandID, categoryID := seedRefs(store)

	created, err := svc.CreateProduct(context.Background(), catalog.CreateProductInput{
		Name: "Runner", PriceCents: 9999, BrandID: brandID, CategoryID: categoryID,
		Media: []catalog.MediaInput{
			{Value: pngDataURI("img-a"), Type: media.KindImage},
		},
	})
	require.NoError(t, err)
	url := created.Media[0].URL

	require.NoError(t, svc.DeleteProduct(context.Background(), created.ID))

	_, err = svc.GetProduct(context.Background(), created.ID)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)

	require.Eventually(t, func() bool {
		for _, u := range st.deleted() {
			if u == url {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestUpdateProductValidatesMediaBeforeTouchingStorage(t *testing.T) {
	svc, store, st := newTestService(t)
	brandID, categoryID := seedRefs(store)

	created, err := svc.CreateProduct(context.Background(), catalog.CreateProductInput{
		Name: "Runner", PriceCents: 9999, BrandID: brandID, CategoryID: categoryID,
	})
	require.NoError(t, err)

	_, err = svc.UpdateProduct(context.Background(), created.ID, catalog.UpdateProductInput{
		Name: "Runner v2", PriceCents: 10999, BrandID: brandID, CategoryID: categoryID,
		Media: []catalog.MediaInput{
			{Value: "data:video/exe;base64,YQ==", Type: media.KindVideo},
		},
	})
	require.Error(t, err)

	var vErr *media.ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Empty(t, st.uploads)

	// The product itself is unchanged.
	got, err := svc.GetProduct(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Runner", got.Name)
}
