package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the data access abstraction for the catalog domain.
// Implemented by Repository on top of pgxpool.Pool.
type Store interface {
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error

	// Brands
	CreateBrand(ctx context.Context, b *Brand) (*Brand, error)
	GetBrandByID(ctx context.Context, id int64) (*Brand, error)
	ListBrands(ctx context.Context, limit, offset int) ([]*Brand, int, error)
	UpdateBrand(ctx context.Context, b *Brand) error
	DeleteBrand(ctx context.Context, id int64) error

	// Categories
	CreateCategory(ctx context.Context, c *Category) (*Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*Category, error)
	ListCategories(ctx context.Context, limit, offset int) ([]*Category, int, error)
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id int64) error

	// Brand sizes
	CreateBrandSize(ctx context.Context, s *BrandSize) (*BrandSize, error)
	GetBrandSizeByID(ctx context.Context, id int64) (*BrandSize, error)
	ListBrandSizes(ctx context.Context, brandID int64) ([]*BrandSize, error)
	UpdateBrandSize(ctx context.Context, s *BrandSize) error
	DeleteBrandSize(ctx context.Context, id int64) error

	// Products
	CreateProduct(ctx context.Context, tx pgx.Tx, p *Product) (*Product, error)
	GetProductByID(ctx context.Context, id int64) (*ProductSummary, error)
	ListProducts(ctx context.Context, f ProductFilter) ([]*ProductSummary, int, error)
	UpdateProduct(ctx context.Context, tx pgx.Tx, p *Product) error
	DeleteProduct(ctx context.Context, id int64) error
	ProductExists(ctx context.Context, id int64) (bool, error)

	// Variants
	CreateVariant(ctx context.Context, v *ProductVariant) (*ProductVariant, error)
	ListVariantsByProduct(ctx context.Context, productID int64) ([]*ProductVariant, error)
	UpdateVariant(ctx context.Context, v *ProductVariant) error
	DeleteVariant(ctx context.Context, id int64) error
	ReplaceProductVariants(ctx context.Context, tx pgx.Tx, productID int64, variants []*ProductVariant) error

	// Media
	ListProductMedia(ctx context.Context, productID int64) ([]*ProductMedia, error)
	ReplaceProductMedia(ctx context.Context, tx pgx.Tx, productID int64, rows []*ProductMedia) ([]*ProductMedia, error)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// ------------------------------------
// Brands
// ------------------------------------

func (r *Repository) CreateBrand(ctx context.Context, b *Brand) (*Brand, error) {
	query := `
		INSERT INTO brands (name)
		VALUES ($1)
		RETURNING id, name, created_at, updated_at;
	`
	row := r.db.QueryRow(ctx, query, b.Name)
	if err := row.Scan(&b.ID, &b.Name, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("create brand: %w", err)
	}
	return b, nil
}

func (r *Repository) GetBrandByID(ctx context.Context, id int64) (*Brand, error) {
	query := `SELECT id, name, created_at, updated_at FROM brands WHERE id = $1;`
	b := &Brand{}
	if err := r.db.QueryRow(ctx, query, id).
		Scan(&b.ID, &b.Name, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBrandNotFound
		}
		return nil, fmt.Errorf("get brand: %w", err)
	}
	return b, nil
}

// ListBrands returns a page of brands and the true total. It uses
// COUNT(*) OVER() when rows exist; if the page is beyond the end it falls
// back to a separate COUNT(*) to avoid a false total.
func (r *Repository) ListBrands(ctx context.Context, limit, offset int) ([]*Brand, int, error) {
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	const q = `
		SELECT id, name, created_at, updated_at,
		       COUNT(*) OVER() AS total_count
		FROM brands
		ORDER BY LOWER(name) ASC, id ASC
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.db.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list brands: %w", err)
	}
	defer rows.Close()

	var (
		brands []*Brand
		total  int
	)
	for rows.Next() {
		var b Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.CreatedAt, &b.UpdatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan brand: %w", err)
		}
		brands = append(brands, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration: %w", err)
	}

	if len(brands) == 0 && offset > 0 {
		if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM brands;`).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count brands: %w", err)
		}
	}
	return brands, total, nil
}

func (r *Repository) UpdateBrand(ctx context.Context, b *Brand) error {
	cmd, err := r.db.Exec(ctx,
		`UPDATE brands SET name = $1, updated_at = now() WHERE id = $2;`, b.Name, b.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("update brand: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrBrandNotFound
	}
	return nil
}

func (r *Repository) DeleteBrand(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM brands WHERE id = $1;`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrBrandHasProducts
		}
		return fmt.Errorf("delete brand: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrBrandNotFound
	}
	return nil
}

// ------------------------------------
// Categories
// ------------------------------------

func (r *Repository) CreateCategory(ctx context.Context, c *Category) (*Category, error) {
	query := `
		INSERT INTO categories (name, is_active)
		VALUES ($1, $2)
		RETURNING id, name, is_active, created_at, updated_at;
	`
	row := r.db.QueryRow(ctx, query, c.Name, c.IsActive)
	if err := row.Scan(&c.ID, &c.Name, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (r *Repository) GetCategoryByID(ctx context.Context, id int64) (*Category, error) {
	query := `SELECT id, name, is_active, created_at, updated_at FROM categories WHERE id = $1;`
	c := &Category{}
	if err := r.db.QueryRow(ctx, query, id).
		Scan(&c.ID, &c.Name, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *Repository) ListCategories(ctx context.Context, limit, offset int) ([]*Category, int, error) {
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	const q = `
		SELECT id, name, is_active, created_at, updated_at,
		       COUNT(*) OVER() AS total_count
		FROM categories
		ORDER BY id ASC
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.db.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var (
		list  []*Category
		total int
	)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.IsActive, &c.CreatedAt, &c.UpdatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan category: %w", err)
		}
		list = append(list, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration: %w", err)
	}

	if len(list) == 0 && offset > 0 {
		if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM categories;`).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count categories: %w", err)
		}
	}
	return list, total, nil
}

func (r *Repository) UpdateCategory(ctx context.Context, c *Category) error {
	cmd, err := r.db.Exec(ctx,
		`UPDATE categories SET name = $1, is_active = $2, updated_at = now() WHERE id = $3;`,
		c.Name, c.IsActive, c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("update category: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *Repository) DeleteCategory(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1;`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrCategoryHasProducts
		}
		return fmt.Errorf("delete category: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// ------------------------------------
// Brand sizes
// ------------------------------------

func (r *Repository) CreateBrandSize(ctx context.Context, s *BrandSize) (*BrandSize, error) {
	query := `
		INSERT INTO brand_sizes (brand_id, category_id, label)
		VALUES ($1, $2, $3)
		RETURNING id, brand_id, category_id, label;
	`
	row := r.db.QueryRow(ctx, query, s.BrandID, s.CategoryID, s.Label)
	if err := row.Scan(&s.ID, &s.BrandID, &s.CategoryID, &s.Label); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		if isForeignKeyViolation(err) {
			return nil, ErrBrandNotFound
		}
		return nil, fmt.Errorf("create brand size: %w", err)
	}
	return s, nil
}

func (r *Repository) GetBrandSizeByID(ctx context.Context, id int64) (*BrandSize, error) {
	query := `SELECT id, brand_id, category_id, label FROM brand_sizes WHERE id = $1;`
	s := &BrandSize{}
	if err := r.db.QueryRow(ctx, query, id).
		Scan(&s.ID, &s.BrandID, &s.CategoryID, &s.Label); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSizeNotFound
		}
		return nil, fmt.Errorf("get brand size: %w", err)
	}
	return s, nil
}

func (r *Repository) ListBrandSizes(ctx context.Context, brandID int64) ([]*BrandSize, error) {
	query := `
		SELECT id, brand_id, category_id, label
		FROM brand_sizes
		WHERE brand_id = $1
		ORDER BY category_id ASC, label ASC, id ASC;
	`
	rows, err := r.db.Query(ctx, query, brandID)
	if err != nil {
		return nil, fmt.Errorf("list brand sizes: %w", err)
	}
	defer rows.Close()

	var sizes []*BrandSize
	for rows.Next() {
		var s BrandSize
		if err := rows.Scan(&s.ID, &s.BrandID, &s.CategoryID, &s.Label); err != nil {
			return nil, fmt.Errorf("scan brand size: %w", err)
		}
		sizes = append(sizes, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return sizes, nil
}

func (r *Repository) UpdateBrandSize(ctx context.Context, s *BrandSize) error {
	cmd, err := r.db.Exec(ctx,
		`UPDATE brand_sizes SET category_id = $1, label = $2 WHERE id = $3;`,
		s.CategoryID, s.Label, s.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("update brand size: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrSizeNotFound
	}
	return nil
}

func (r *Repository) DeleteBrandSize(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM brand_sizes WHERE id = $1;`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return errors.New("cannot delete size with associated variants")
		}
		return fmt.Errorf("delete brand size: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrSizeNotFound
	}
	return nil
}

// ------------------------------------
// Products
// ------------------------------------

func (r *Repository) CreateProduct(ctx context.Context, tx pgx.Tx, p *Product) (*Product, error) {
	query := `
		INSERT INTO products (name, description, price_cents, brand_id, category_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at;
	`
	row := tx.QueryRow(ctx, query, p.Name, p.Description, p.PriceCents, p.BrandID, p.CategoryID, p.IsActive)
	if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

func (r *Repository) GetProductByID(ctx context.Context, id int64) (*ProductSummary, error) {
	query := `
		SELECT p.id, p.name, p.description, p.price_cents,
		       p.brand_id, b.name, p.category_id, c.name,
		       p.is_active, p.created_at, p.updated_at
		FROM products p
		JOIN brands b     ON b.id = p.brand_id
		JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1;
	`
	s := &ProductSummary{}
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.Description, &s.PriceCents,
		&s.BrandID, &s.BrandName, &s.CategoryID, &s.CategoryName,
		&s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	var err error
	if s.Variants, err = r.ListVariantsByProduct(ctx, id); err != nil {
		return nil, err
	}
	if s.Media, err = r.ListProductMedia(ctx, id); err != nil {
		return nil, err
	}
	return s, nil
}

// ListProducts runs the filtered, sorted, paginated listing. The returned
// total reflects the filtered set before pagination.
func (r *Repository) ListProducts(ctx context.Context, f ProductFilter) ([]*ProductSummary, int, error) {
	dataSQL, countSQL, dataArgs, countArgs := BuildProductListQuery(f)

	rows, err := r.db.Query(ctx, dataSQL, dataArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var (
		items []*ProductSummary
		total int
	)
	for rows.Next() {
		var s ProductSummary
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Description, &s.PriceCents,
			&s.BrandID, &s.BrandName, &s.CategoryID, &s.CategoryName,
			&s.IsActive, &s.CreatedAt, &s.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		items = append(items, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration: %w", err)
	}

	// A page past the end returns no rows; the total still has to reflect
	// the filtered set.
	if len(items) == 0 && f.Offset() > 0 {
		if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count products: %w", err)
		}
	}

	if err := r.attachChildren(ctx, items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// attachChildren loads variants and media for a page of products in two
// batched queries rather than 2N round trips.
func (r *Repository) attachChildren(ctx context.Context, items []*ProductSummary) error {
	if len(items) == 0 {
		return nil
	}
	byID := make(map[int64]*ProductSummary, len(items))
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		it.Variants = []*ProductVariant{}
		it.Media = []*ProductMedia{}
		byID[it.ID] = it
		ids = append(ids, it.ID)
	}

	vSQL := `
		SELECT v.id, v.product_id, v.brand_size_id, s.label, v.price_cents, v.stock, v.is_active
		FROM product_variants v
		JOIN brand_sizes s ON s.id = v.brand_size_id
		WHERE v.product_id = ANY($1)
		ORDER BY v.product_id ASC, v.price_cents ASC, v.id ASC;
	`
	vRows, err := r.db.Query(ctx, vSQL, ids)
	if err != nil {
		return fmt.Errorf("list variants: %w", err)
	}
	defer vRows.Close()
	for vRows.Next() {
		var v ProductVariant
		if err := vRows.Scan(&v.ID, &v.ProductID, &v.BrandSizeID, &v.SizeLabel, &v.PriceCents, &v.Stock, &v.IsActive); err != nil {
			return fmt.Errorf("scan variant: %w", err)
		}
		if p := byID[v.ProductID]; p != nil {
			p.Variants = append(p.Variants, &v)
		}
	}
	if err := vRows.Err(); err != nil {
		return fmt.Errorf("variants rows: %w", err)
	}

	mSQL := `
		SELECT id, product_id, url, media_type, sort_order, is_primary, created_at, updated_at
		FROM product_media
		WHERE product_id = ANY($1)
		ORDER BY product_id ASC, sort_order ASC, id ASC;
	`
	mRows, err := r.db.Query(ctx, mSQL, ids)
	if err != nil {
		return fmt.Errorf("list media: %w", err)
	}
	defer mRows.Close()
	for mRows.Next() {
		var m ProductMedia
		if err := mRows.Scan(&m.ID, &m.ProductID, &m.URL, &m.MediaType, &m.SortOrder, &m.IsPrimary, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return fmt.Errorf("scan media: %w", err)
		}
		if p := byID[m.ProductID]; p != nil {
			p.Media = append(p.Media, &m)
		}
	}
	if err := mRows.Err(); err != nil {
		return fmt.Errorf("media rows: %w", err)
	}
	return nil
}

func (r *Repository) UpdateProduct(ctx context.Context, tx pgx.Tx, p *Product) error {
	cmd, err := tx.Exec(ctx, `
		UPDATE products
		SET name = $1, description = $2, price_cents = $3,
		    brand_id = $4, category_id = $5, is_active = $6,
		    updated_at = now()
		WHERE id = $7;
	`, p.Name, p.Description, p.PriceCents, p.BrandID, p.CategoryID, p.IsActive, p.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrNotFound
		}
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// DeleteProduct removes the product row; variants and media rows go with it
// via ON DELETE CASCADE.
func (r *Repository) DeleteProduct(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *Repository) ProductExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1);`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("product exists: %w", err)
	}
	return exists, nil
}

// ------------------------------------
// Variants
// ------------------------------------

func (r *Repository) CreateVariant(ctx context.Context, v *ProductVariant) (*ProductVariant, error) {
	query := `
		INSERT INTO product_variants (product_id, brand_size_id, price_cents, stock, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id;
	`
	if err := r.db.QueryRow(ctx, query, v.ProductID, v.BrandSizeID, v.PriceCents, v.Stock, v.IsActive).
		Scan(&v.ID); err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("create variant: %w", err)
	}
	return v, nil
}

func (r *Repository) ListVariantsByProduct(ctx context.Context, productID int64) ([]*ProductVariant, error) {
	query := `
		SELECT v.id, v.product_id, v.brand_size_id, s.label, v.price_cents, v.stock, v.is_active
		FROM product_variants v
		JOIN brand_sizes s ON s.id = v.brand_size_id
		WHERE v.product_id = $1
		ORDER BY v.price_cents ASC, v.id ASC;
	`
	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()

	variants := []*ProductVariant{}
	for rows.Next() {
		var v ProductVariant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.BrandSizeID, &v.SizeLabel, &v.PriceCents, &v.Stock, &v.IsActive); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		variants = append(variants, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return variants, nil
}

func (r *Repository) UpdateVariant(ctx context.Context, v *ProductVariant) error {
	cmd, err := r.db.Exec(ctx, `
		UPDATE product_variants
		SET brand_size_id = $1, price_cents = $2, stock = $3, is_active = $4
		WHERE id = $5;
	`, v.BrandSizeID, v.PriceCents, v.Stock, v.IsActive, v.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrSizeNotFound
		}
		return fmt.Errorf("update variant: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteVariant(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM product_variants WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete variant: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceProductVariants reconciles the variant rows of a product inside an
// existing transaction: rows with ids update in place, rows without insert,
// stored rows missing from the list are deleted.
func (r *Repository) ReplaceProductVariants(ctx context.Context, tx pgx.Tx, productID int64, variants []*ProductVariant) error {
	keep := make([]int64, 0, len(variants))
	for _, v := range variants {
		if v.ID > 0 {
			cmd, err := tx.Exec(ctx, `
				UPDATE product_variants
				SET brand_size_id = $1, price_cents = $2, stock = $3, is_active = $4
				WHERE id = $5 AND product_id = $6;
			`, v.BrandSizeID, v.PriceCents, v.Stock, v.IsActive, v.ID, productID)
			if err != nil {
				return fmt.Errorf("update variant %d: %w", v.ID, err)
			}
			if cmd.RowsAffected() == 0 {
				return fmt.Errorf("variant %d does not belong to product %d", v.ID, productID)
			}
		} else {
			if err := tx.QueryRow(ctx, `
				INSERT INTO product_variants (product_id, brand_size_id, price_cents, stock, is_active)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING id;
			`, productID, v.BrandSizeID, v.PriceCents, v.Stock, v.IsActive).Scan(&v.ID); err != nil {
				if isForeignKeyViolation(err) {
					return ErrSizeNotFound
				}
				return fmt.Errorf("insert variant: %w", err)
			}
		}
		keep = append(keep, v.ID)
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM product_variants WHERE product_id = $1 AND NOT (id = ANY($2));`,
		productID, keep); err != nil {
		return fmt.Errorf("prune variants: %w", err)
	}
	return nil
}

// ------------------------------------
// Media
// ------------------------------------

func (r *Repository) ListProductMedia(ctx context.Context, productID int64) ([]*ProductMedia, error) {
	query := `
		SELECT id, product_id, url, media_type, sort_order, is_primary, created_at, updated_at
		FROM product_media
		WHERE product_id = $1
		ORDER BY sort_order ASC, id ASC;
	`
	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list product media: %w", err)
	}
	defer rows.Close()

	out := []*ProductMedia{}
	for rows.Next() {
		var m ProductMedia
		if err := rows.Scan(&m.ID, &m.ProductID, &m.URL, &m.MediaType, &m.SortOrder, &m.IsPrimary, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product media: %w", err)
		}
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

// ReplaceProductMedia applies a reconciled media row set inside an existing
// transaction: rows carrying an id update that row, rows without insert,
// stored rows whose id is absent from the set are deleted. Returns the
// final rows with ids filled in.
func (r *Repository) ReplaceProductMedia(ctx context.Context, tx pgx.Tx, productID int64, rows []*ProductMedia) ([]*ProductMedia, error) {
	keep := make([]int64, 0, len(rows))
	for _, m := range rows {
		m.ProductID = productID
		if m.ID > 0 {
			cmd, err := tx.Exec(ctx, `
				UPDATE product_media
				SET url = $1, media_type = $2, sort_order = $3, is_primary = $4, updated_at = now()
				WHERE id = $5 AND product_id = $6;
			`, m.URL, m.MediaType, m.SortOrder, m.IsPrimary, m.ID, productID)
			if err != nil {
				return nil, fmt.Errorf("update media %d: %w", m.ID, err)
			}
			if cmd.RowsAffected() == 0 {
				return nil, fmt.Errorf("media %d does not belong to product %d", m.ID, productID)
			}
		} else {
			if err := tx.QueryRow(ctx, `
				INSERT INTO product_media (product_id, url, media_type, sort_order, is_primary)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING id, created_at, updated_at;
			`, productID, m.URL, m.MediaType, m.SortOrder, m.IsPrimary).
				Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt); err != nil {
				return nil, fmt.Errorf("insert media: %w", err)
			}
		}
		keep = append(keep, m.ID)
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM product_media WHERE product_id = $1 AND NOT (id = ANY($2));`,
		productID, keep); err != nil {
		return nil, fmt.Errorf("prune media: %w", err)
	}
	return rows, nil
}
