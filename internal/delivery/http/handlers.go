package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/healthtwin/backend/internal/domain"
	"github.com/healthtwin/backend/internal/service"
)

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handler contains all HTTP handlers
type Handler struct {
	riskSvc  *service.RiskService
	settings *service.SettingsStore
	engine   HealthChecker
	repo     HealthChecker
}

// NewHandler creates a new handler
func NewHandler(riskSvc *service.RiskService, settings *service.SettingsStore, engine, repo HealthChecker) *Handler {
	return &Handler{
		riskSvc:  riskSvc,
		settings: settings,
		engine:   engine,
		repo:     repo,
	}
}

// HealthCheck returns service health status along with its dependencies.
// The service stays "ok" while the engine is down since snapshots fall back.
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	return c.JSON(fiber.Map{
		"status":      "ok",
		"service":     "healthtwin-risk-gateway",
		"version":     "1.0.0",
		"risk_engine": dependencyStatus(ctx, h.engine),
		"database":    dependencyStatus(ctx, h.repo),
		"thresholds":  h.riskSvc.Thresholds(),
	})
}

func dependencyStatus(ctx context.Context, p HealthChecker) string {
	if p == nil {
		return "disabled"
	}
	if err := p.Health(ctx); err != nil {
		return "down"
	}
	return "up"
}

// GetRisk returns the dashboard snapshot
func (h *Handler) GetRisk(c *fiber.Ctx) error {
	return h.snapshot(c, service.ProfileDashboard)
}

// GetMobileRisk returns the mobile home screen snapshot
func (h *Handler) GetMobileRisk(c *fiber.Ctx) error {
	return h.snapshot(c, service.ProfileMobile)
}

func (h *Handler) snapshot(c *fiber.Ctx, p service.Profile) error {
	snap, err := h.riskSvc.Snapshot(c.Context(), p)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to build risk snapshot")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    snap,
	})
}

// AssessVitals computes a snapshot from vitals posted by the client
func (h *Handler) AssessVitals(c *fiber.Ctx) error {
	var v domain.Vitals
	if err := c.BodyParser(&v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	snap, err := h.riskSvc.SnapshotFromVitals(c.Context(), v)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    snap,
	})
}

// GetRiskHistory returns recorded assessments within a time range
func (h *Handler) GetRiskHistory(c *fiber.Ctx) error {
	ctx := c.Context()

	hours := c.QueryInt("hours", 24)
	if hours < 1 || hours > 720 { // max 30 days
		hours = 24
	}

	to := time.Now()
	from := to.Add(-time.Duration(hours) * time.Hour)

	data, err := h.riskSvc.History(ctx, from, to)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch assessment history")
	}
	if data == nil {
		data = []domain.AssessmentRecord{}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
		"count":   len(data),
	})
}

// GetSettings returns the current settings
func (h *Handler) GetSettings(c *fiber.Ctx) error {
	s, err := h.settings.Get(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch settings")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    s,
	})
}

// UpdateSettings merges the posted fields into the stored settings
func (h *Handler) UpdateSettings(c *fiber.Ctx) error {
	var patch domain.SettingsPatch
	if err := c.BodyParser(&patch); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	s, err := h.settings.Update(c.Context(), patch)
	if errors.Is(err, service.ErrInvalidSettings) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to save settings")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Settings saved successfully",
		"data":    s,
	})
}
