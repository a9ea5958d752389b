package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/bryanwahyu/sentinel-ai/internal/application"
	appanalysis "github.com/bryanwahyu/sentinel-ai/internal/application/analysis"
	appjobs "github.com/bryanwahyu/sentinel-ai/internal/application/jobs"
	"github.com/bryanwahyu/sentinel-ai/internal/config"
	domai "github.com/bryanwahyu/sentinel-ai/internal/domain/ai"
	domjobs "github.com/bryanwahyu/sentinel-ai/internal/domain/jobs"
	aimock "github.com/bryanwahyu/sentinel-ai/internal/infra/ai/mock"
	aiopenai "github.com/bryanwahyu/sentinel-ai/internal/infra/ai/openai"
	memoryRepo "github.com/bryanwahyu/sentinel-ai/internal/infra/db/memory"
	mysqlRepo "github.com/bryanwahyu/sentinel-ai/internal/infra/db/mysql"
	postgresRepo "github.com/bryanwahyu/sentinel-ai/internal/infra/db/postgres"
	"github.com/bryanwahyu/sentinel-ai/internal/infra/httpserver"
	"github.com/bryanwahyu/sentinel-ai/internal/infra/source"
	minioStore "github.com/bryanwahyu/sentinel-ai/internal/infra/storage"
	"github.com/bryanwahyu/sentinel-ai/internal/infra/ws"
	"github.com/bryanwahyu/sentinel-ai/internal/middleware"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// job store
	repo, db, closeDB, err := buildRepository(ctx, cfg)
	if err != nil {
		log.Fatalf("job store init error: %v", err)
	}
	defer closeDB()

	checkers := map[string]middleware.HealthChecker{}
	if db != nil {
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
	}

	// inference collaborator
	var analyzer domai.Analyzer
	switch cfg.AI.Provider {
	case "openai":
		if cfg.AI.APIKey == "" {
			log.Fatal("ai.apiKey (or OPENAI_API_KEY) is required for the openai provider")
		}
		analyzer = aiopenai.NewClient(cfg.AI.APIKey, cfg.AI.Model)
	case "mock":
		analyzer = aimock.NewClient()
	default:
		log.Fatalf("unknown ai provider: %q", cfg.AI.Provider)
	}

	// artifact stash (optional)
	var artifacts domjobs.ArtifactStore
	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		artifacts = store
	}

	svc := &appjobs.Service{
		Repo:      repo,
		Analysis:  appanalysis.NewService(analyzer),
		Fetcher:   source.NewGitHubFetcher(),
		Artifacts: artifacts,
		Clock:     application.SystemClock{},

		OnJobFailed: middleware.IncrementJobsFailed,
	}

	hub := ws.NewHub()
	go hub.Run()

	mux := chi.NewRouter()
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.APIKeyAuth(cfg.Auth.Keys))
	mux.Use(middleware.RateLimitMiddleware(30, 1))
	mux.Mount("/", httpserver.NewRouter(svc, hub, checkers))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func buildRepository(ctx context.Context, cfg *config.Config) (domjobs.Repository, *sql.DB, func(), error) {
	switch cfg.Database.Driver {
	case "", "memory":
		return memoryRepo.NewJobRepository(), nil, func() {}, nil
	case "mysql":
		db, err := mysqlRepo.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, nil, err
		}
		return mysqlRepo.NewJobRepository(db), db, func() { db.Close() }, nil
	case "postgres":
		db, err := postgresRepo.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, nil, err
		}
		return postgresRepo.NewJobRepository(db), db, func() { db.Close() }, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown database driver: %q", cfg.Database.Driver)
	}
}
