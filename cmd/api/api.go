package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"facade/docs" //this is required to generate swagger docs
	"facade/internal/auth"
	"facade/internal/catalog"
	"facade/internal/users"
)

// productService is the slice of catalog.Service the handlers need; kept
// as an interface so handler tests can swap in a fake.
type productService interface {
	ListProducts(ctx context.Context, f catalog.ProductFilter) (*catalog.ProductPage, error)
	GetProduct(ctx context.Context, id int64) (*catalog.ProductSummary, error)
	CreateProduct(ctx context.Context, in catalog.CreateProductInput) (*catalog.ProductSummary, error)
	UpdateProduct(ctx context.Context, id int64, in catalog.UpdateProductInput) (*catalog.ProductSummary, error)
	UpdateProductMedia(ctx context.Context, productID int64, entries []catalog.MediaInput) ([]*catalog.ProductMedia, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type application struct {
	config        config
	catalogSvc    productService
	store         catalog.Store
	users         users.Store
	logger        *zap.SugaredLogger
	authenticator auth.Authenticator
}

type config struct {
	addr    string
	env     string
	apiURL  string
	db      dbConfig
	auth    authConfig
	storage storageConfig
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}

type tokenConfig struct {
	secret string
	aud    string
	iss    string
}

type basicConfig struct {
	user string
	pass string
}

type dbConfig struct {
	addr        string
	maxConns    int
	maxIdleTime string
}

type storageConfig struct {
	backend       string // "s3" or "cloudinary"
	cloudinaryURL string
	s3Region      string
	s3Endpoint    string
	s3AccessKey   string
	s3SecretKey   string
	s3Bucket      string
	s3CDN         string
	mediaFolder   string
	mediaMaxBytes int64
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", app.listProductsHandler)
			r.Get("/{productID}", app.getProductHandler)
			r.Get("/{productID}/media", app.listProductMediaHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.AuthTokenMiddleware)
				r.Use(app.RequireAdmin)
				r.Post("/", app.createProductHandler)
				r.Put("/{productID}", app.updateProductHandler)
				r.Delete("/{productID}", app.deleteProductHandler)
				r.Put("/{productID}/media", app.updateProductMediaHandler)
			})
		})

		r.Route("/brands", func(r chi.Router) {
			r.Get("/", app.listBrandsHandler)
			r.Get("/{brandID}", app.getBrandHandler)
			r.Get("/{brandID}/sizes", app.listBrandSizesHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.AuthTokenMiddleware)
				r.Use(app.RequireAdmin)
				r.Post("/", app.createBrandHandler)
				r.Put("/{brandID}", app.updateBrandHandler)
				r.Delete("/{brandID}", app.deleteBrandHandler)
				r.Post("/{brandID}/sizes", app.createBrandSizeHandler)
				r.Put("/{brandID}/sizes/{sizeID}", app.updateBrandSizeHandler)
				r.Delete("/{brandID}/sizes/{sizeID}", app.deleteBrandSizeHandler)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", app.listCategoriesHandler)
			r.Get("/{categoryID}", app.getCategoryHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.AuthTokenMiddleware)
				r.Use(app.RequireAdmin)
				r.Post("/", app.createCategoryHandler)
				r.Put("/{categoryID}", app.updateCategoryHandler)
				r.Delete("/{categoryID}", app.deleteCategoryHandler)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Get("/me", app.getCurrentUserHandler)
			r.Put("/me", app.updateCurrentUserHandler)
		})
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	// Docs
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/v1"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
