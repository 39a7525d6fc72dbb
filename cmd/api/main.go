package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"facade/internal/auth"
	"facade/internal/catalog"
	"facade/internal/db"
	"facade/internal/media"
	"facade/internal/storage"
	"facade/internal/users"
)

// NewLogger creates a new zap logger with color.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder // This adds color to log levels (INFO, WARN, ERROR)

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)

	level := zapcore.InfoLevel

	core := zapcore.NewCore(consoleEncoder, zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stdout)), level)

	logger := zap.New(core)

	return logger.Sugar(), nil
}

func envInt(key string, fallback int) int {
	if val, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
		fmt.Println("Invalid", key, "defaulting to", fallback)
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if val, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			return parsed
		}
		fmt.Println("Invalid", key, "defaulting to", fallback)
	}
	return fallback
}

func envString(key, fallback string) string {
	if val, exists := os.LookupEnv(key); exists && val != "" {
		return val
	}
	return fallback
}

var version = "1.0.0"

//	@title			Facade API
//	@description	Catalog backend with filtered product listings and media reconciliation against object storage.

//	@contact.name	API Support

//	@BasePath					/v1
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization
//	@description

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading configuration from the environment")
	}

	cfg := config{
		addr:   envString("ADDR", ":8080"),
		env:    envString("ENV", "development"),
		apiURL: envString("EXTERNAL_URL", "localhost:8080"),
		db: dbConfig{
			addr:        os.Getenv("DB_ADDR"),
			maxConns:    envInt("DB_MAX_CONNS", 30),
			maxIdleTime: envString("DB_MAX_IDLE_TIME", "15m"),
		},
		auth: authConfig{
			basic: basicConfig{
				user: os.Getenv("AUTH_BASIC_USER"),
				pass: os.Getenv("AUTH_BASIC_PASS"),
			},
			token: tokenConfig{
				secret: os.Getenv("SUPABASE_JWT_SECRET"),
				aud:    envString("SUPABASE_JWT_AUD", "authenticated"),
				iss:    os.Getenv("SUPABASE_URL"),
			},
		},
		storage: storageConfig{
			backend:       envString("STORAGE_BACKEND", "s3"),
			cloudinaryURL: os.Getenv("CLOUDINARY_URL"),
			s3Region:      envString("S3_REGION", "us-east-1"),
			s3Endpoint:    os.Getenv("S3_ENDPOINT"),
			s3AccessKey:   os.Getenv("S3_ACCESS_KEY"),
			s3SecretKey:   os.Getenv("S3_SECRET_KEY"),
			s3Bucket:      os.Getenv("S3_BUCKET"),
			s3CDN:         os.Getenv("S3_CDN_URL"),
			mediaFolder:   envString("MEDIA_FOLDER", "products"),
			mediaMaxBytes: envInt64("MEDIA_MAX_BYTES", media.DefaultMaxBytes),
		},
	}

	logger, err := NewLogger()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		return
	}
	defer logger.Sync()

	// Database
	pool, err := db.New(cfg.db.addr, int32(cfg.db.maxConns), cfg.db.maxIdleTime)
	if err != nil {
		logger.Fatal(err)
	}
	defer pool.Close()
	logger.Info("database connection pool established")

	catalogStore := catalog.NewRepository(pool)
	userStore := users.NewRepository(pool)

	// Object storage backend
	var objectStorage storage.Storage
	switch cfg.storage.backend {
	case "cloudinary":
		objectStorage, err = storage.NewCloudinary(cfg.storage.cloudinaryURL)
	case "s3":
		objectStorage, err = storage.NewS3(context.Background(), storage.S3Config{
			Region:    cfg.storage.s3Region,
			Endpoint:  cfg.storage.s3Endpoint,
			AccessKey: cfg.storage.s3AccessKey,
			SecretKey: cfg.storage.s3SecretKey,
			Bucket:    cfg.storage.s3Bucket,
			CDN:       cfg.storage.s3CDN,
		})
	default:
		logger.Fatalf("unknown storage backend %q", cfg.storage.backend)
	}
	if err != nil {
		logger.Fatal(err)
	}
	logger.Infow("object storage ready", "backend", cfg.storage.backend)

	reconciler := media.NewReconciler(objectStorage, cfg.storage.mediaFolder, cfg.storage.mediaMaxBytes)
	catalogService := catalog.NewService(catalogStore, reconciler, objectStorage, logger)

	// Authenticator
	authenticator := auth.NewSupabaseAuthenticator(
		cfg.auth.token.secret,
		cfg.auth.token.aud,
		cfg.auth.token.iss,
	)

	app := &application{
		config:        cfg,
		catalogSvc:    catalogService,
		store:         catalogStore,
		users:         userStore,
		logger:        logger,
		authenticator: authenticator,
	}

	// Metrics collected at /v1/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("database", expvar.Func(func() any {
		s := pool.Stat()
		return map[string]any{
			"total_conns":    s.TotalConns(),
			"idle_conns":     s.IdleConns(),
			"acquired_conns": s.AcquiredConns(),
		}
	}))
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
