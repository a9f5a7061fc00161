package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"cv-analyser/internal/api/handlers"
	"cv-analyser/internal/api/middleware"
	"cv-analyser/internal/auth"
	"cv-analyser/internal/config"
	"cv-analyser/internal/llm"
	"cv-analyser/internal/logging"
)

// Dependencies are the collaborators the HTTP layer is wired to
type Dependencies struct {
	Config    *config.Config
	Extractor handlers.TextExtractor
	Gateway   *llm.Gateway
	Matcher   handlers.CandidateMatcher
	Auth      *auth.Service
	Logger    logging.Logger
}

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	cfg := deps.Config
	logger := logging.OrGlobal(deps.Logger)

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig(cfg.CORS.AllowedOrigins))
	e.Use(middleware.RequestValidation(cfg.Server.MaxUploadBytes))
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.TimeoutConfig(cfg.Server.RequestTimeout))

	// Health check routes
	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler)
		health.GET("/ready", handlers.ReadinessHandler(cfg, deps.Gateway.Providers))
		health.GET("/live", handlers.LivenessHandler)
	}

	// Root route
	e.GET("/", handlers.RootHandler)

	requireToken := auth.Middleware(deps.Auth, logger)
	analyze := handlers.AnalyzeCVHandler(cfg, deps.Extractor, deps.Gateway, logger)
	token := handlers.GenerateTokenHandler(deps.Auth, logger)

	// both spellings are served directly; a redirect would drop the multipart body
	for _, path := range []string{"/analyze-cv", "/analyze-cv/"} {
		e.POST(path, analyze, requireToken)
	}
	for _, path := range []string{"/generate-token", "/generate-token/"} {
		e.POST(path, token)
	}

	e.POST("/contextuel", handlers.MatchingHandler(deps.Matcher, logger))

	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, map[string]string{"detail": "Not Found"})
	})
}
