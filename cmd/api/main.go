package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"equiplend/internal/cache"
	"equiplend/internal/config"
	"equiplend/internal/database"
	"equiplend/internal/domain/activity"
	jwtsvc "equiplend/internal/pkg/jwt"
	"equiplend/internal/repository"
	"equiplend/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if config.IsProdLike(cfg.AppEnv) {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal("AutoMigrate failed: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// statistics cache is optional; a nil store disables it
	var statsCache *cache.Store
	if cfg.RedisURL != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Printf("redis unavailable, statistics cache disabled: %v", err)
		} else {
			defer rdb.Close()
			statsCache = cache.NewStore(rdb, cfg.StatsCacheTTL)
		}
	}

	objects, err := newObjectStore(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}

	tokens := jwtsvc.New(cfg.JWTSecret, cfg.JWTAudience, cfg.DevTokenTTL)
	hub := activity.NewHub()

	r := newRouter(cfg, db, tokens, statsCache, objects, hub)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func newObjectStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, error) {
	switch cfg.StorageDriver {
	case config.StorageGDrive:
		return storage.NewDriveStore(ctx, cfg.GDriveCredentialsPath, cfg.GDriveCredentialsJSON, cfg.GDriveFolderID)
	default:
		if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
			return nil, err
		}
		return storage.NewLocalStore(cfg.UploadDir, cfg.StaticURLBase), nil
	}
}
