package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/clearcert/clearcert/internal/engines"
	"github.com/clearcert/clearcert/internal/forensics"
	"github.com/clearcert/clearcert/internal/submissions"
	"github.com/clearcert/clearcert/internal/verification"
	"github.com/clearcert/clearcert/pkg/cache"
	"github.com/clearcert/clearcert/pkg/common"
	"github.com/clearcert/clearcert/pkg/config"
	"github.com/clearcert/clearcert/pkg/database"
	"github.com/clearcert/clearcert/pkg/health"
	"github.com/clearcert/clearcert/pkg/logger"
	"github.com/clearcert/clearcert/pkg/middleware"
	"github.com/clearcert/clearcert/pkg/storage"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load("api")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Server.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(pool)
	logger.Info("Connected to PostgreSQL database")

	// Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("Connected to Redis")

	// Object storage
	store, err := storage.NewS3Storage(ctx, storage.S3Config{
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		BaseURL:   cfg.Storage.BaseURL,
	})
	if err != nil {
		logger.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	// Forensic analysis pipeline
	analyzer := forensics.NewAnalyzer(
		engines.NewPDFTextEngine(),
		engines.NewNoopOCR(),
		engines.NewZXingQRDecoder(),
		forensics.DefaultNamePatterns(),
		forensics.AnalyzerConfig{
			Extractor: forensics.ExtractorConfig{
				MaxOCRPages: cfg.Forensics.MaxOCRPages,
				RenderScale: cfg.Forensics.RenderScale,
			},
			QR: forensics.QRVerifierConfig{
				VerificationDomains: cfg.Forensics.VerificationDomains,
				ProbeTimeout:        time.Duration(cfg.Forensics.QRProbeTimeoutMS) * time.Millisecond,
			},
		},
	)

	// Services and handlers
	verificationRepo := verification.NewRepository(pool)
	verificationService := verification.NewService(verificationRepo, redisClient)
	verificationHandler := verification.NewHandler(verificationService, cfg.Storage.MaxFileSizeMB)

	submissionRepo := submissions.NewRepository(pool)
	submissionService := submissions.NewService(submissionRepo, analyzer, verificationService, store)
	submissionHandler := submissions.NewHandler(submissionService, cfg.Storage.MaxFileSizeMB)

	// Set up Gin router
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics(cfg.Server.ServiceName))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.Server.CORSOrigins, ",")
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	router.Use(cors.New(corsConfig))

	// Health check and metrics (no auth required)
	router.GET("/healthz", common.HealthCheckWithDeps(cfg.Server.ServiceName, version, map[string]func() error{
		"database": health.DatabaseChecker(pool),
		"redis":    health.RedisChecker(redisClient.Client),
		"storage":  health.StorageChecker(store.Exists),
	}))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := router.Group("/api/v1")
	{
		submissionHandler.RegisterRoutes(api)
		verificationHandler.RegisterRoutes(api)
	}

	// Start server
	addr := ":" + cfg.Server.Port
	logger.Info("API service starting", zap.String("port", cfg.Server.Port))
	if err := router.Run(addr); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
