package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/healthtwin/backend/internal/domain"
)

// ErrRemoteUnavailable is returned for any failure talking to the risk engine.
// Callers never see partial results alongside it.
var ErrRemoteUnavailable = errors.New("risk engine unavailable")

// DefaultEngineTimeout bounds a full cardiac+fatigue round trip
const DefaultEngineTimeout = 5 * time.Second

const maxResponseBytes = 1 << 20

// FailureReason classifies why a sub-request failed
type FailureReason string

const (
	ReasonNetwork       FailureReason = "network"
	ReasonHTTPStatus    FailureReason = "http_status"
	ReasonMalformedBody FailureReason = "malformed_body"
)

// RemoteError describes a single failed sub-request
type RemoteError struct {
	Endpoint   string
	Reason     FailureReason
	StatusCode int
	Err        error
}

func (e *RemoteError) Error() string {
	if e.Reason == ReasonHTTPStatus {
		return fmt.Sprintf("%s: status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s: %v", e.Endpoint, e.Reason, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// RiskClient handles communication with the Python risk engine
type RiskClient struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

// NewRiskClient creates a new risk engine client. baseURL is the API root,
// e.g. http://localhost:8005/api/v1.
func NewRiskClient(baseURL string, timeout time.Duration, logger *zap.Logger) *RiskClient {
	if timeout <= 0 {
		timeout = DefaultEngineTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RiskClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Assess sends both payloads concurrently and returns the pair only if both
// succeed. Any failure on either side yields ErrRemoteUnavailable.
func (c *RiskClient) Assess(
	ctx context.Context,
	cardiacReq domain.RiskAssessmentRequest,
	fatigueReq domain.FatigueAssessmentRequest,
) (domain.Assessment, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	var (
		cardiac cardiacBody
		fatigue fatigueBody
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.post(gctx, "/risk/cardiac", cardiacReq, &cardiac)
	})
	g.Go(func() error {
		return c.post(gctx, "/risk/fatigue", fatigueReq, &fatigue)
	})
	err := g.Wait()
	riskFetchDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		reason := ReasonNetwork
		var remoteErr *RemoteError
		if errors.As(err, &remoteErr) {
			reason = remoteErr.Reason
		}
		riskRemoteFailures.WithLabelValues(string(reason)).Inc()
		c.logger.Warn("risk engine unavailable",
			zap.String("base_url", c.baseURL),
			zap.String("reason", string(reason)),
			zap.Error(err))
		return domain.Assessment{}, fmt.Errorf("%w: %w", ErrRemoteUnavailable, err)
	}

	return domain.Assessment{
		Cardiac: cardiac.result(),
		Fatigue: fatigue.result(),
		Source:  domain.SourceLive,
	}, nil
}

// resultBody is implemented by the engine response shapes
type resultBody interface {
	Validate() error
}

// cardiacBody is the /risk/cardiac response as sent on the wire. Pointer
// fields tell a missing score apart from a real 0.
type cardiacBody struct {
	RiskScore   *float64         `json:"risk_score" validate:"required"`
	RiskLevel   domain.RiskLevel `json:"risk_level"`
	RiskFactors []string         `json:"risk_factors" validate:"required"`
}

func (b *cardiacBody) Validate() error {
	if err := inputValidate.Struct(b); err != nil {
		return err
	}
	return b.result().Validate()
}

func (b *cardiacBody) result() domain.RiskAssessmentResult {
	var score float64
	if b.RiskScore != nil {
		score = *b.RiskScore
	}
	return domain.RiskAssessmentResult{
		RiskScore:   score,
		RiskLevel:   b.RiskLevel,
		RiskFactors: b.RiskFactors,
	}
}

// fatigueBody is the /risk/fatigue response as sent on the wire
type fatigueBody struct {
	FatigueScore *float64         `json:"fatigue_score" validate:"required"`
	FitToWork    *bool            `json:"fit_to_work" validate:"required"`
	RiskLevel    domain.RiskLevel `json:"risk_level"`
	Contributors []string         `json:"contributors" validate:"required"`
}

func (b *fatigueBody) Validate() error {
	if err := inputValidate.Struct(b); err != nil {
		return err
	}
	return b.result().Validate()
}

func (b *fatigueBody) result() domain.FatigueAssessmentResult {
	var (
		score float64
		fit   bool
	)
	if b.FatigueScore != nil {
		score = *b.FatigueScore
	}
	if b.FitToWork != nil {
		fit = *b.FitToWork
	}
	return domain.FatigueAssessmentResult{
		FatigueScore: score,
		FitToWork:    fit,
		RiskLevel:    b.RiskLevel,
		Contributors: b.Contributors,
	}
}

// engineError is the shape the engine uses to report failures with a 200 status
type engineError struct {
	Error string `json:"error"`
}

func (c *RiskClient) post(ctx context.Context, path string, payload any, out resultBody) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("risk_client: failed to marshal request: %w", err)
	}

	endpoint := c.baseURL + path
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("risk_client: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &RemoteError{Endpoint: path, Reason: ReasonNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return &RemoteError{Endpoint: path, Reason: ReasonHTTPStatus, StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &RemoteError{Endpoint: path, Reason: ReasonNetwork, Err: err}
	}

	var ee engineError
	if json.Unmarshal(raw, &ee) == nil && ee.Error != "" {
		return &RemoteError{Endpoint: path, Reason: ReasonMalformedBody, StatusCode: resp.StatusCode, Err: errors.New(ee.Error)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &RemoteError{Endpoint: path, Reason: ReasonMalformedBody, StatusCode: resp.StatusCode, Err: err}
	}
	if err := out.Validate(); err != nil {
		return &RemoteError{Endpoint: path, Reason: ReasonMalformedBody, StatusCode: resp.StatusCode, Err: err}
	}

	return nil
}

// Health checks risk engine connectivity against its root endpoint
func (c *RiskClient) Health(ctx context.Context) error {
	root, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("risk_client: invalid base url: %w", err)
	}
	root.Path = "/"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, root.String(), nil)
	if err != nil {
		return fmt.Errorf("risk_client: failed to create health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("risk_client: health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("risk_client: health check returned status %d", resp.StatusCode)
	}

	return nil
}

// Close releases idle keep-alive connections
func (c *RiskClient) Close() {
	c.httpClient.CloseIdleConnections()
}
