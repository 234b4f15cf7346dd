package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"reportify/auth"
	"reportify/classifier"
	"reportify/config"
	"reportify/database"
	"reportify/geocode"
	"reportify/handlers"
	"reportify/metrics"
	"reportify/middleware"
	"reportify/openrouter"
	"reportify/reports"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Validate required configuration
	if cfg.OpenRouterAPIKey == "" {
		log.Fatal("OPENROUTER_API_KEY environment variable is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable is required")
	}
	if cfg.LocationIQKey == "" {
		log.Warn("LOCATIONIQ_KEY not set, reverse geocoding will fail fast")
	}

	metrics.Register()

	// Initialize database
	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.CreateReportsTable(); err != nil {
		log.Fatalf("Failed to create reports table: %v", err)
	}

	// Initialize services
	visionClient := openrouter.NewClient(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.AppURL, cfg.ClassifierTimeout)
	imageClassifier := classifier.New(visionClient)

	geocodeClient := geocode.NewClient(cfg.LocationIQKey, cfg.GeocoderTimeout)
	geocoder := geocode.NewCachedService(geocodeClient, db.GetDB())
	if err := geocoder.CreateCacheTable(); err != nil {
		log.Fatalf("Failed to create geocode cache table: %v", err)
	}

	reportService := reports.NewService(db, cfg.StrictCategories)
	tokenService := auth.NewTokenService(cfg.JWTSecret)

	// Initialize handlers
	h := handlers.New(reportService, imageClassifier, geocoder)

	// Setup HTTP server
	router := gin.Default()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Fatalf("Failed to set trusted proxies: %v", err)
	}
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())

	router.GET("/health", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public routes: submission, anonymous tracking, prefill helpers
	api := router.Group("/api/v3")
	{
		api.GET("/health", h.HealthCheck)
		api.POST("/reports", h.CreateReport)
		api.GET("/reports/:reportId", h.GetReport)
		api.POST("/analyze-image", h.AnalyzeImage)
		api.POST("/reverse-geocode", h.ReverseGeocode)
	}

	// Protected routes: moderator triage
	protected := router.Group("/api/v3")
	protected.Use(middleware.Auth(tokenService))
	{
		protected.GET("/reports", h.ListReports)
		protected.PATCH("/reports/id/:id/status", h.UpdateReportStatus)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Infof("Starting HTTP server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
