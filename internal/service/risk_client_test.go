package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthtwin/backend/internal/domain"
)

const (
	scenarioCardiacBody = `{"risk_score": 45, "risk_level": "Moderate", "risk_factors": ["Reduced HRV"]}`
	scenarioFatigueBody = `{"fatigue_score": 65, "fit_to_work": false, "risk_level": "High", "contributors": ["Chronic Sleep Debt"]}`
)

// engineStub scripts the two risk engine endpoints
type engineStub struct {
	cardiacStatus int
	cardiacBody   string
	fatigueStatus int
	fatigueBody   string
	delay         time.Duration

	mu       sync.Mutex
	payloads map[string]map[string]any
}

func (s *engineStub) handler(status *int, body *string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var payload map[string]any
		_ = json.Unmarshal(raw, &payload)
		s.mu.Lock()
		s.payloads[r.URL.Path] = payload
		s.mu.Unlock()

		if s.delay > 0 {
			select {
			case <-time.After(s.delay):
			case <-r.Context().Done():
				return
			}
		}

		code := *status
		if code == 0 {
			code = http.StatusOK
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_, _ = io.WriteString(w, *body)
	}
}

func (s *engineStub) payload(path string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payloads[path]
}

// newEngine starts a fake engine and returns the API base URL
func newEngine(t *testing.T, stub *engineStub) string {
	t.Helper()
	stub.payloads = make(map[string]map[string]any)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/risk/cardiac", stub.handler(&stub.cardiacStatus, &stub.cardiacBody))
	mux.HandleFunc("/api/v1/risk/fatigue", stub.handler(&stub.fatigueStatus, &stub.fatigueBody))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status": "healthy", "service": "risk-engine"}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv.URL + "/api/v1"
}

// unreachableURL returns a base URL nothing is listening on
func unreachableURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL + "/api/v1"
	srv.Close()
	return url
}

func newTestClient(t *testing.T, baseURL string, timeout time.Duration) *RiskClient {
	t.Helper()
	c := NewRiskClient(baseURL, timeout, nil)
	t.Cleanup(c.Close)
	return c
}

func dashboardPayloads(t *testing.T) (domain.RiskAssessmentRequest, domain.FatigueAssessmentRequest) {
	t.Helper()
	c, f, err := NewPayloadBuilder(nil).Build(ProfileDashboard)
	require.NoError(t, err)
	return c, f
}

func TestRiskClient_Assess_Success(t *testing.T) {
	stub := &engineStub{cardiacBody: scenarioCardiacBody, fatigueBody: scenarioFatigueBody}
	client := newTestClient(t, newEngine(t, stub), time.Second)

	cardiacReq, fatigueReq := dashboardPayloads(t)
	got, err := client.Assess(context.Background(), cardiacReq, fatigueReq)
	require.NoError(t, err)

	assert.Equal(t, domain.Assessment{
		Cardiac: domain.RiskAssessmentResult{
			RiskScore:   45,
			RiskLevel:   domain.RiskLevelModerate,
			RiskFactors: []string{"Reduced HRV"},
		},
		Fatigue: domain.FatigueAssessmentResult{
			FatigueScore: 65,
			FitToWork:    false,
			RiskLevel:    domain.RiskLevelHigh,
			Contributors: []string{"Chronic Sleep Debt"},
		},
		Source: domain.SourceLive,
	}, got)
}

func TestRiskClient_Assess_SendsWireNames(t *testing.T) {
	stub := &engineStub{cardiacBody: scenarioCardiacBody, fatigueBody: scenarioFatigueBody}
	client := newTestClient(t, newEngine(t, stub), time.Second)

	cardiacReq, fatigueReq := dashboardPayloads(t)
	_, err := client.Assess(context.Background(), cardiacReq, fatigueReq)
	require.NoError(t, err)

	cardiac := stub.payload("/api/v1/risk/cardiac")
	assert.Equal(t, float64(45), cardiac["age"])
	assert.Equal(t, float64(82), cardiac["resting_hr"])
	assert.Equal(t, float64(18), cardiac["hrv_rmssd"])
	assert.Equal(t, float64(135), cardiac["systolic_bp"])

	fatigue := stub.payload("/api/v1/risk/fatigue")
	assert.Equal(t, 5.5, fatigue["last_sleep_duration_hours"])
	assert.Equal(t, float64(3), fatigue["current_hour"])
	assert.Equal(t, "night", fatigue["shift_type"])
}

func TestRiskClient_Assess_BoundaryScores(t *testing.T) {
	for _, score := range []string{"0", "100"} {
		t.Run(score, func(t *testing.T) {
			stub := &engineStub{
				cardiacBody: `{"risk_score": ` + score + `, "risk_level": "Low", "risk_factors": []}`,
				fatigueBody: `{"fatigue_score": ` + score + `, "fit_to_work": true, "risk_level": "Low", "contributors": []}`,
			}
			client := newTestClient(t, newEngine(t, stub), time.Second)

			cardiacReq, fatigueReq := dashboardPayloads(t)
			got, err := client.Assess(context.Background(), cardiacReq, fatigueReq)
			require.NoError(t, err)
			assert.Equal(t, domain.SourceLive, got.Source)
		})
	}
}

func TestRiskClient_Assess_Failures(t *testing.T) {
	testCases := []struct {
		name   string
		stub   *engineStub
		reason FailureReason
	}{
		{
			name:   "fatigue returns 500",
			stub:   &engineStub{cardiacBody: scenarioCardiacBody, fatigueStatus: http.StatusInternalServerError, fatigueBody: `oops`},
			reason: ReasonHTTPStatus,
		},
		{
			name:   "cardiac returns 404",
			stub:   &engineStub{cardiacStatus: http.StatusNotFound, cardiacBody: `{}`, fatigueBody: scenarioFatigueBody},
			reason: ReasonHTTPStatus,
		},
		{
			name:   "cardiac body is not json",
			stub:   &engineStub{cardiacBody: `<html>bad gateway</html>`, fatigueBody: scenarioFatigueBody},
			reason: ReasonMalformedBody,
		},
		{
			name:   "engine reports error in body",
			stub:   &engineStub{cardiacBody: scenarioCardiacBody, fatigueBody: `{"error": "division by zero"}`},
			reason: ReasonMalformedBody,
		},
		{
			name:   "unknown risk level",
			stub:   &engineStub{cardiacBody: `{"risk_score": 10, "risk_level": "Spicy", "risk_factors": []}`, fatigueBody: scenarioFatigueBody},
			reason: ReasonMalformedBody,
		},
		{
			name:   "cardiac body missing score",
			stub:   &engineStub{cardiacBody: `{"risk_level": "Moderate"}`, fatigueBody: scenarioFatigueBody},
			reason: ReasonMalformedBody,
		},
		{
			name:   "fatigue endpoint returns cardiac body",
			stub:   &engineStub{cardiacBody: scenarioCardiacBody, fatigueBody: scenarioCardiacBody},
			reason: ReasonMalformedBody,
		},
		{
			name:   "fatigue body missing fit_to_work",
			stub:   &engineStub{cardiacBody: scenarioCardiacBody, fatigueBody: `{"fatigue_score": 20, "risk_level": "Low", "contributors": []}`},
			reason: ReasonMalformedBody,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, newEngine(t, tc.stub), time.Second)

			cardiacReq, fatigueReq := dashboardPayloads(t)
			got, err := client.Assess(context.Background(), cardiacReq, fatigueReq)

			require.ErrorIs(t, err, ErrRemoteUnavailable)
			assert.Equal(t, domain.Assessment{}, got, "no partial result on failure")

			var remoteErr *RemoteError
			require.True(t, errors.As(err, &remoteErr))
			assert.Equal(t, tc.reason, remoteErr.Reason)
		})
	}
}

func TestRiskClient_Assess_Unreachable(t *testing.T) {
	client := newTestClient(t, unreachableURL(t), time.Second)

	cardiacReq, fatigueReq := dashboardPayloads(t)
	_, err := client.Assess(context.Background(), cardiacReq, fatigueReq)
	require.ErrorIs(t, err, ErrRemoteUnavailable)

	var remoteErr *RemoteError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, ReasonNetwork, remoteErr.Reason)
}

func TestRiskClient_Assess_Deadline(t *testing.T) {
	stub := &engineStub{cardiacBody: scenarioCardiacBody, fatigueBody: scenarioFatigueBody, delay: 2 * time.Second}
	client := newTestClient(t, newEngine(t, stub), 50*time.Millisecond)

	cardiacReq, fatigueReq := dashboardPayloads(t)
	start := time.Now()
	_, err := client.Assess(context.Background(), cardiacReq, fatigueReq)

	require.ErrorIs(t, err, ErrRemoteUnavailable)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRiskClient_Assess_CallerCancel(t *testing.T) {
	stub := &engineStub{cardiacBody: scenarioCardiacBody, fatigueBody: scenarioFatigueBody}
	client := newTestClient(t, newEngine(t, stub), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cardiacReq, fatigueReq := dashboardPayloads(t)
	_, err := client.Assess(ctx, cardiacReq, fatigueReq)
	require.ErrorIs(t, err, ErrRemoteUnavailable)
}

func TestRiskClient_Health(t *testing.T) {
	stub := &engineStub{}
	client := newTestClient(t, newEngine(t, stub), time.Second)
	assert.NoError(t, client.Health(context.Background()))

	down := newTestClient(t, unreachableURL(t), time.Second)
	assert.Error(t, down.Health(context.Background()))
}
