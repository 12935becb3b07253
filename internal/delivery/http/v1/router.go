package v1

import (
	"net/http"
	"time"

	"go-restaurant-onboarding/config"
	"go-restaurant-onboarding/internal/delivery/http/middleware"
	"go-restaurant-onboarding/internal/delivery/http/response"
	"go-restaurant-onboarding/internal/domain"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	LeadUC     domain.LeadUsecase
	ESignUC    domain.ESignUsecase
	DocumentUC domain.DocumentUsecase
	ServiceUC  domain.ServiceWriter
	AdminUC    domain.AdminUsecase
	Config     *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware()) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler())

	window := time.Duration(deps.Config.RateLimitWindowSeconds) * time.Second
	r.Use(middleware.RateLimitMiddleware(
		middleware.GlobalRateLimitConfig(deps.Config.RateLimitGlobalThreshold, window)))

	signLimiter := middleware.RateLimitMiddleware(
		middleware.SignRateLimitConfig(deps.Config.RateLimitSignThreshold, window))

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, "System operational", nil)
	})

	// Public routes (the wizard runs before any account exists)
	NewLeadHandler(v1, deps.LeadUC)
	NewServiceHandler(v1, deps.ServiceUC)
	NewDocumentHandler(v1, deps.DocumentUC)
	NewESignHandler(v1, deps.ESignUC, signLimiter)

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AdminAuthMiddleware(deps.Config.AdminJWTSecret))
	{
		NewAdminHandler(protected, deps.AdminUC)
	}

	return r
}
