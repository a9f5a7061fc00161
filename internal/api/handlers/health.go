package handlers

import (
	"net/http"
	"os/exec"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"cv-analyser/internal/config"
	"cv-analyser/internal/logging"
	"cv-analyser/pkg/models"
)

const version = "1.0.0"

var (
	startTime = time.Now()
	lookPath  = exec.LookPath
)

// RootHandler handles GET /
func RootHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "API is running."})
}

// HealthHandler handles health check requests
func HealthHandler(c echo.Context) error {
	logging.GetGlobalLogger().Debug("Health check requested", map[string]interface{}{"request_id": requestIDFrom(c)})

	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   version,
		Uptime:    time.Since(startTime),
		Checks: map[string]string{
			"api": "ok",
		},
	})
}

// ReadinessHandler reports whether the OCR toolchain is installed and which
// providers are registered. Missing OCR binaries only degrade the service:
// documents with a text layer can still be analysed.
func ReadinessHandler(cfg *config.Config, providers func() []models.ProviderName) echo.HandlerFunc {
	return func(c echo.Context) error {
		logging.GetGlobalLogger().Debug("Readiness check requested", map[string]interface{}{"request_id": requestIDFrom(c)})

		status := "ready"
		checks := map[string]string{"api": "ok"}
		for name, bin := range map[string]string{
			"pdftoppm":  cfg.Extractor.Pdftoppm,
			"tesseract": cfg.Extractor.Tesseract,
		} {
			if _, err := lookPath(bin); err != nil {
				checks[name] = "missing"
				status = "degraded"
			} else {
				checks[name] = "ok"
			}
		}

		names := providers()
		list := make([]string, len(names))
		for i, n := range names {
			list[i] = string(n)
		}
		checks["providers"] = strings.Join(list, ",")

		return c.JSON(http.StatusOK, models.HealthResponse{
			Status:    status,
			Timestamp: time.Now(),
			Version:   version,
			Uptime:    time.Since(startTime),
			Checks:    checks,
		})
	}
}

// LivenessHandler handles liveness probe requests
func LivenessHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   version,
		Uptime:    time.Since(startTime),
	})
}
