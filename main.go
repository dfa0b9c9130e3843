package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"flipbook/config"
	"flipbook/controller"
	"flipbook/database"
	"flipbook/logging"
	mw "flipbook/middlewares"
	"flipbook/objectstore"
	"flipbook/route"
	"flipbook/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var client *mongo.Client
	if cfg.StoreBackend == "mongo" {
		if client, err = database.Connect(ctx, cfg.MongoURI); err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
		}
	}
	db, err := store.New(ctx, cfg.StoreBackend, client, cfg.DatabaseName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize store")
	}

	deps := controller.Deps{
		Store:          db,
		RequestTimeout: cfg.RequestTimeout,
		SignedURLTTL:   cfg.SignedURLTTL,
	}
	if cfg.ObjectStorageEnabled() {
		objects, err := objectstore.NewS3Store(ctx, cfg.BucketName, cfg.AWSRegion)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize S3 client")
		}
		deps.Objects = objects
	}

	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Fatal().Err(err).Msg("Invalid TRUSTED_PROXIES")
	}
	router.Use(mw.RequestID(), mw.Logger(), mw.Metrics(), gin.Recovery())
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	if cfg.RateLimit > 0 {
		router.Use(mw.NewRateLimiter(ctx, cfg.RateLimit, time.Minute).Middleware())
	}
	route.Register(router, controller.New(deps))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Str("store", cfg.StoreBackend).Msg("Server is running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
	if err := db.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Store close failed")
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Content-Length", "Accept", controller.ProjectPasswordHeader, mw.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", mw.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
