package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthtwin/backend/internal/domain"
	"github.com/healthtwin/backend/internal/repository/postgres"
	"github.com/healthtwin/backend/internal/service"
)

type stubAssessor struct {
	result domain.Assessment
	err    error
}

func (s stubAssessor) Assess(context.Context, domain.RiskAssessmentRequest, domain.FatigueAssessmentRequest) (domain.Assessment, error) {
	return s.result, s.err
}

type stubChecker struct{ err error }

func (s stubChecker) Health(context.Context) error { return s.err }

type testEnv struct {
	app     *fiber.App
	riskSvc *service.RiskService
}

func newTestApp(t *testing.T, assessor service.Assessor, engine HealthChecker) testEnv {
	t.Helper()
	repo := postgres.NewMockRepository()
	riskSvc := service.NewRiskService(assessor, service.NewPayloadBuilder(time.Now), repo, domain.DefaultThresholds, nil)
	t.Cleanup(riskSvc.WaitBackground)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	SetupRoutes(app, NewHandler(riskSvc, service.NewSettingsStore(repo), engine, repo))
	return testEnv{app: app, riskSvc: riskSvc}
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func TestGetRisk_Live(t *testing.T) {
	live := domain.Assessment{
		Cardiac: domain.RiskAssessmentResult{RiskScore: 45, RiskLevel: domain.RiskLevelModerate, RiskFactors: []string{"Reduced HRV"}},
		Fatigue: domain.FatigueAssessmentResult{FatigueScore: 65, RiskLevel: domain.RiskLevelHigh, Contributors: []string{"Chronic Sleep Debt"}},
		Source:  domain.SourceLive,
	}
	env := newTestApp(t, stubAssessor{result: live}, stubChecker{})

	code, body := doJSON(t, env.app, nethttp.MethodGet, "/api/v1/risk", "")
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, true, body["success"])

	data := body["data"].(map[string]any)
	assert.Equal(t, "live", data["source"])
	assert.Equal(t, float64(45), data["cardiac"].(map[string]any)["risk_score"])

	view := data["view"].(map[string]any)
	assert.Equal(t, float64(55), view["health_score"])
	assert.Equal(t, "High risk", view["status_label"])
	assert.Equal(t, "UNFIT", view["fit_to_work_label"])
}

func TestGetMobileRisk_Fallback(t *testing.T) {
	env := newTestApp(t, stubAssessor{err: service.ErrRemoteUnavailable}, stubChecker{})

	code, body := doJSON(t, env.app, nethttp.MethodGet, "/api/v1/risk/mobile", "")
	require.Equal(t, fiber.StatusOK, code)

	data := body["data"].(map[string]any)
	assert.Equal(t, "fallback", data["source"])
	assert.Equal(t, float64(35), data["cardiac"].(map[string]any)["risk_score"])
	assert.Equal(t, float64(42), data["fatigue"].(map[string]any)["fatigue_score"])
	assert.Len(t, data["trends"], 7)
}

func TestAssessVitals(t *testing.T) {
	env := newTestApp(t, stubAssessor{err: service.ErrRemoteUnavailable}, stubChecker{})

	code, body := doJSON(t, env.app, nethttp.MethodPost, "/api/v1/risk/assess",
		`{"age": 42, "resting_hr": 76, "hrv_sdnn": 60, "shift_type": "night"}`)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, true, body["success"])

	code, body = doJSON(t, env.app, nethttp.MethodPost, "/api/v1/risk/assess", `{"age": 3}`)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, true, body["error"])

	code, _ = doJSON(t, env.app, nethttp.MethodPost, "/api/v1/risk/assess", `{not json`)
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestGetRiskHistory(t *testing.T) {
	env := newTestApp(t, stubAssessor{err: service.ErrRemoteUnavailable}, stubChecker{})

	code, body := doJSON(t, env.app, nethttp.MethodGet, "/api/v1/risk/history", "")
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, float64(0), body["count"])

	doJSON(t, env.app, nethttp.MethodGet, "/api/v1/risk", "")
	env.riskSvc.WaitBackground()

	code, body = doJSON(t, env.app, nethttp.MethodGet, "/api/v1/risk/history?hours=1", "")
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, float64(1), body["count"])

	rec := body["data"].([]any)[0].(map[string]any)
	assert.Equal(t, true, rec["is_fallback"])
	assert.Equal(t, "dashboard", rec["profile"])
}

func TestSettings(t *testing.T) {
	env := newTestApp(t, stubAssessor{}, stubChecker{})

	code, body := doJSON(t, env.app, nethttp.MethodGet, "/api/v1/settings", "")
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, float64(60), body["data"].(map[string]any)["cardiacRiskThreshold"])

	code, body = doJSON(t, env.app, nethttp.MethodPost, "/api/v1/settings", `{"cardiacRiskThreshold": 65, "timezone": "UTC"}`)
	require.Equal(t, fiber.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(65), data["cardiacRiskThreshold"])
	assert.Equal(t, "UTC", data["timezone"])
	assert.Equal(t, float64(70), data["fatigueThreshold"])

	code, body = doJSON(t, env.app, nethttp.MethodPost, "/api/v1/settings", `{"cardiacRiskThreshold": 101}`)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, true, body["error"])

	_, body = doJSON(t, env.app, nethttp.MethodGet, "/api/v1/settings", "")
	assert.Equal(t, float64(65), body["data"].(map[string]any)["cardiacRiskThreshold"])
}

func TestHealthCheck(t *testing.T) {
	env := newTestApp(t, stubAssessor{}, stubChecker{err: errors.New("connection refused")})

	code, body := doJSON(t, env.app, nethttp.MethodGet, "/health", "")
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "down", body["risk_engine"])
	assert.Equal(t, "up", body["database"])

	thresholds, ok := body["thresholds"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, domain.DefaultThresholds.HighRisk, thresholds["high_risk"])
	assert.Equal(t, float64(domain.DefaultThresholds.HealthExcellent), thresholds["health_excellent"])
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestApp(t, stubAssessor{err: service.ErrRemoteUnavailable}, stubChecker{})
	doJSON(t, env.app, nethttp.MethodGet, "/api/v1/risk", "")

	resp, err := env.app.Test(httptest.NewRequest(nethttp.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `healthtwin_risk_fetch_total{source="fallback"}`)
}
