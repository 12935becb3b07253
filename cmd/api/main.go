package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-restaurant-onboarding/config"
	_ "go-restaurant-onboarding/docs" // Important for Swagger
	v1 "go-restaurant-onboarding/internal/delivery/http/v1"
	"go-restaurant-onboarding/internal/repository/crm"
	"go-restaurant-onboarding/internal/usecase"
	"go-restaurant-onboarding/pkg/audit"
	"go-restaurant-onboarding/pkg/docai"
	"go-restaurant-onboarding/pkg/email"
	"go-restaurant-onboarding/pkg/logger"
	"go-restaurant-onboarding/pkg/redis"
	"go-restaurant-onboarding/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// @title           Restaurant Onboarding API
// @version         1.0
// @description     Backend for the restaurant onboarding wizard and e-signature flow.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init()
	logger.Log.Info("Starting onboarding backend", "port", cfg.Port)
	auditLog := audit.Init("restaurant-onboarding", os.Getenv("GIN_MODE"))
	defer auditLog.Sync()

	// 3. Setup Redis (rate limiting; in-memory fallback when absent)
	if cfg.RedisURL != "" {
		if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, rate limiting falls back to in-memory", "error", err)
		}
	}
	defer redis.Close()

	// 4. Setup CRM client and repositories
	crmClient := crm.NewClient(cfg)
	userRepo := crm.NewUserRepository(crmClient)
	profileRepo := crm.NewProfileRepository(crmClient)
	leadRepo := crm.NewLeadRepository(crmClient)
	addressRepo := crm.NewAddressRepository(crmClient)
	contactRepo := crm.NewContactRepository(crmClient)
	serviceRepo := crm.NewServiceRepository(crmClient)

	// 5. Setup outbound services
	emailService := email.NewEmailService(cfg)
	if !emailService.IsConfigured() {
		logger.Log.Warn("Email service not fully configured - signing invites will not be sent")
	}
	docaiClient := docai.NewClient(cfg)

	// 6. Setup UseCases
	validate := validator.New()
	validation.RegisterValidators(validate)

	identityUC := usecase.NewIdentityResolver(userRepo, profileRepo)
	reconciler := usecase.NewAddressReconciler(addressRepo, contactRepo)
	serviceUC := usecase.NewServiceWriter(serviceRepo, leadRepo)
	leadUC := usecase.NewLeadUsecase(identityUC, leadRepo, reconciler, serviceUC, validate)
	esignUC := usecase.NewESignUsecase(leadRepo, crmClient, emailService, auditLog, validate, cfg.AppBaseURL)
	documentUC := usecase.NewDocumentUsecase(docaiClient, validate)
	adminUC := usecase.NewAdminUsecase(leadRepo)

	// 7. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		LeadUC:     leadUC,
		ESignUC:    esignUC,
		DocumentUC: documentUC,
		ServiceUC:  serviceUC,
		AdminUC:    adminUC,
		Config:     cfg,
	})

	// 8. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
