package handler

import (
	"rfid-pos-gateway/internal/adapter/http/middleware"
	redisStore "rfid-pos-gateway/internal/adapter/storage/redis"
	"rfid-pos-gateway/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	PaymentSvc     ports.PaymentService
	CardSvc        ports.CardService
	CatalogSvc     ports.CatalogService
	ReportingSvc   ports.ReportingService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore           // nil = rate limiting disabled
	RateLimitRules map[string]middleware.RateLimitRule // nil = DefaultRateLimitRules
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	// Health check (deep, verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Swagger documentation
	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	// Rate limit rules
	rules := deps.RateLimitRules
	if rules == nil {
		rules = middleware.DefaultRateLimitRules()
	}

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	optionalJWT := middleware.OptionalJWTAuth(deps.TokenSvc, deps.Logger)

	// Card issuance happens at the kiosk (self-issue) or from a merchant
	// session (merchant-issued); the optional token decides which.
	cardHandler := NewCardHandler(deps.CardSvc)
	cards := v1.Group("/cards")
	{
		cards.POST("/register", optionalJWT, rl("cards_issue"), cardHandler.Register)
	}

	// --- JWT-authenticated routes (merchant terminal + dashboard) ---

	posHandler := NewPOSHandler(deps.PaymentSvc, deps.CardSvc)
	pos := v1.Group("/pos")
	{
		// Verify is PIN-gated but needs no merchant session so the terminal
		// can show the balance before login-bound flows.
		pos.POST("/verify", rl("pos_verify"), posHandler.VerifyCard)
		pos.POST("/payments", jwtAuth, rl("payments"), posHandler.ProcessPayment)
	}

	// Top-ups are taken at the counter, so they require a merchant session.
	cardsAuth := v1.Group("/cards", jwtAuth)
	{
		cardsAuth.POST("/topup", rl("cards_topup"), cardHandler.TopUp)
		cardsAuth.GET("", rl("dashboard"), cardHandler.List)
		cardsAuth.PATCH("/:card_uid/status", rl("dashboard"), cardHandler.SetActive)
	}

	catalogHandler := NewCatalogHandler(deps.CatalogSvc)
	products := v1.Group("/products", jwtAuth)
	{
		products.POST("", rl("dashboard"), catalogHandler.Create)
		products.GET("", rl("dashboard"), catalogHandler.List)
		products.PUT("/:id", rl("dashboard"), catalogHandler.Update)
		products.DELETE("/:id", rl("dashboard"), catalogHandler.Delete)
		products.POST("/:id/restock", rl("dashboard"), catalogHandler.Restock)
	}

	dashboardHandler := NewDashboardHandler(deps.ReportingSvc)
	dashboard := v1.Group("/dashboard", jwtAuth)
	{
		dashboard.GET("/stats", rl("dashboard"), dashboardHandler.GetStats)
	}

	transactions := v1.Group("/transactions", jwtAuth)
	{
		transactions.GET("", rl("dashboard"), dashboardHandler.ListTransactions)
	}

	return r
}
