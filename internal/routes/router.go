package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eld-compliance/internal/alerts"
	"eld-compliance/internal/config"
	"eld-compliance/internal/delivery/http/handler"
	"eld-compliance/internal/hos"
	"eld-compliance/internal/infrastructure/database/postgres"
	"eld-compliance/internal/ingestion"
	"eld-compliance/internal/logger"
	"eld-compliance/internal/middleware"
	complianceUsecase "eld-compliance/internal/usecase/compliance"
	deviceUsecase "eld-compliance/internal/usecase/device"
	mappingUsecase "eld-compliance/internal/usecase/mapping"
)

func SetupRoutes(cfg *config.Config, db *postgres.DB, processor *ingestion.Processor) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware in order: request ID, logging, security headers, CORS,
	// request size limit, general rate limit.
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(10 << 20))
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst))

	router.GET("/health", func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	})

	deviceRepository := postgres.NewDeviceRepository(db)
	mappingRepository := postgres.NewDriverMappingRepository(db)
	dutyLogRepository := postgres.NewDutyLogRepository(db)
	locationRepository := postgres.NewLocationRepository(db)
	eventRepository := postgres.NewComplianceEventRepository(db)

	var notifier alerts.Notifier = alerts.NoopNotifier{}
	if cfg.Alerting.URL != "" {
		notifier = alerts.NewHTTPNotifier(&cfg.Alerting)
	}
	emitter := alerts.NewEmitter(eventRepository, notifier, cfg.Alerting.Timeout)

	verifier := ingestion.NewSignatureVerifier(&cfg.Providers)
	registry := ingestion.DefaultRegistry()
	store := ingestion.NewStore(deviceRepository, mappingRepository, dutyLogRepository, locationRepository, emitter, cfg.Ingest.LocationBatchSize)
	ingestor := ingestion.NewIngestor(verifier, registry, deviceRepository, store)

	hosService := hos.NewService(dutyLogRepository, hos.CycleConfig{
		Days:     cfg.HOS.CycleDays,
		MaxHours: cfg.HOS.CycleMaxHours,
	})

	deviceService := deviceUsecase.NewService(deviceRepository)
	mappingService := mappingUsecase.NewService(mappingRepository, deviceRepository)
	complianceService := complianceUsecase.NewService(hosService, emitter, eventRepository, dutyLogRepository)

	webhookHandler := handler.NewWebhookHandler(ingestor)
	mobileHandler := handler.NewMobileHandler(deviceService, ingestor)
	deviceHandler := handler.NewDeviceHandler(deviceService)
	mappingHandler := handler.NewMappingHandler(mappingService)
	complianceHandler := handler.NewComplianceHandler(complianceService, ingestor, processor)

	v1 := router.Group("/api/v1")
	{
		// Provider webhooks authenticate by signature, mobile sync by
		// device token; neither uses the fleet-manager JWT.
		webhookHandler.RegisterRoutes(v1)
		mobileHandler.RegisterRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			// Registration issues the device sync token, so it sits
			// behind the JWT and scopes to the caller's company.
			mobileHandler.RegisterProtectedRoutes(protected)
			deviceHandler.RegisterRoutes(protected)
			complianceHandler.RegisterRoutes(protected)

			managers := protected.Group("")
			managers.Use(middleware.FleetManagerOnly())
			{
				mappingHandler.RegisterRoutes(managers)
			}
		}
	}

	logger.Info("All routes initialized")
	return router
}
