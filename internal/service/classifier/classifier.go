package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dinerozz/focus-session-backend/internal/entity"
)

type RatioScale string

const (
	RatioFraction RatioScale = "fraction"
	RatioPercent  RatioScale = "percent"
)

const (
	defaultMaxAttempts    = 3
	defaultAttemptTimeout = 30 * time.Second
	defaultRetryBudget    = 90 * time.Second
	defaultBackoffBase    = time.Second
	defaultBackoffMax     = 8 * time.Second

	maxResponseBytes = 64 << 10
)

type Config struct {
	URL            string
	MaxAttempts    int
	AttemptTimeout time.Duration
	RetryBudget    time.Duration
	BackoffBase    time.Duration
	BackoffMax     time.Duration
	// RatioScale selects how active_ratio is encoded on the wire. Internally it
	// is always a fraction.
	RatioScale RatioScale
}

// PredictRequest is the classifier wire payload. Duration is in minutes, the
// unit the model was trained on.
type PredictRequest struct {
	Duration    float64 `json:"duration"`
	SwitchCount int     `json:"switch_count"`
	SwitchRate  float64 `json:"switch_rate"`
	ActiveRatio float64 `json:"active_ratio"`
}

type PredictResponse struct {
	Prediction *int     `json:"prediction"`
	Confidence *float64 `json:"confidence"`
}

type remotePrediction struct {
	label      int
	confidence float64
}

type attemptKind int

const (
	attemptSuccess attemptKind = iota
	attemptRetryable
	attemptFatal
)

func (k attemptKind) String() string {
	switch k {
	case attemptSuccess:
		return "success"
	case attemptRetryable:
		return "retryable"
	default:
		return "fatal"
	}
}

// attemptResult is the tagged outcome of one classifier call; the retry loop
// switches on kind instead of inspecting errors.
type attemptResult struct {
	kind       attemptKind
	value      remotePrediction
	detail     string
	retryAfter time.Duration
}

type Gateway struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewGateway(cfg Config, logger *slog.Logger) *Gateway {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = defaultAttemptTimeout
	}
	if cfg.RetryBudget <= 0 {
		cfg.RetryBudget = defaultRetryBudget
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = defaultBackoffBase
	}
	if cfg.BackoffMax < cfg.BackoffBase {
		cfg.BackoffMax = cfg.BackoffBase
	}
	if cfg.RatioScale != RatioPercent {
		cfg.RatioScale = RatioFraction
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Gateway{
		cfg:        cfg,
		httpClient: &http.Client{},
		logger:     logger,
		sleep:      sleepContext,
	}
}

// Classify never fails: when the remote classifier cannot be used the result
// is built from the local activity-ratio heuristic and flagged RemoteUnavailable.
func (g *Gateway) Classify(ctx context.Context, metrics entity.SessionMetrics) entity.ClassificationResult {
	status := entity.StatusFromRatio(metrics.ActiveRatio)

	remote, attempts, last := g.predict(ctx, metrics)
	if last.kind != attemptSuccess {
		g.logger.Warn("classifier unavailable, using activity ratio",
			slog.Int("attempts", attempts),
			slog.String("outcome", last.kind.String()),
			slog.String("detail", last.detail),
			slog.Float64("active_ratio", metrics.ActiveRatio),
		)

		return entity.ClassificationResult{
			Confidence:        metrics.ActiveRatio,
			ResolvedStatus:    status,
			RemoteUnavailable: true,
			Attempts:          attempts,
		}
	}

	if remoteStatus(remote.label) != status {
		g.logger.Debug("classifier label disagrees with activity ratio",
			slog.Int("label", remote.label),
			slog.Float64("active_ratio", metrics.ActiveRatio),
			slog.String("status", string(status)),
		)
	}

	label := remote.label
	return entity.ClassificationResult{
		RawLabel:       &label,
		Confidence:     remote.confidence,
		ResolvedStatus: status,
		Attempts:       attempts,
	}
}

// Ping touches the classifier host so a sleeping instance starts warming up.
// Any HTTP response counts as awake.
func (g *Gateway) Ping(ctx context.Context) error {
	root, err := url.Parse(g.cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to parse classifier url: %w", err)
	}
	root.Path = "/"
	root.RawQuery = ""

	ctx, cancel := context.WithTimeout(ctx, g.cfg.AttemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, root.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to build ping request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to ping classifier: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	return nil
}

func (g *Gateway) predict(ctx context.Context, metrics entity.SessionMetrics) (remotePrediction, int, attemptResult) {
	budgetCtx, cancel := context.WithTimeout(ctx, g.cfg.RetryBudget)
	defer cancel()

	body, err := json.Marshal(g.payload(metrics))
	if err != nil {
		return remotePrediction{}, 0, attemptResult{kind: attemptFatal, detail: err.Error()}
	}

	var last attemptResult
	attempts := 0
	for attempts < g.cfg.MaxAttempts {
		if err := budgetCtx.Err(); err != nil {
			last = attemptResult{kind: attemptFatal, detail: "retry budget exhausted: " + err.Error()}
			break
		}

		attempts++
		last = g.attempt(budgetCtx, body)

		switch last.kind {
		case attemptSuccess:
			return last.value, attempts, last
		case attemptFatal:
			return remotePrediction{}, attempts, last
		}

		g.logger.Info("classifier attempt failed, will retry",
			slog.Int("attempt", attempts),
			slog.Int("max_attempts", g.cfg.MaxAttempts),
			slog.String("detail", last.detail),
		)

		if attempts == g.cfg.MaxAttempts {
			break
		}

		delay := g.backoff(attempts)
		if last.retryAfter > 0 {
			delay = min(last.retryAfter, g.cfg.BackoffMax)
		}
		if err := g.sleep(budgetCtx, delay); err != nil {
			last = attemptResult{kind: attemptFatal, detail: "retry budget exhausted: " + err.Error()}
			break
		}
	}

	return remotePrediction{}, attempts, last
}

func (g *Gateway) attempt(ctx context.Context, body []byte) attemptResult {
	attemptCtx, cancel := context.WithTimeout(ctx, g.cfg.AttemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, g.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return attemptResult{kind: attemptFatal, detail: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		// The caller or the overall budget gave up; another attempt cannot help.
		if ctx.Err() != nil {
			return attemptResult{kind: attemptFatal, detail: err.Error()}
		}
		return attemptResult{kind: attemptRetryable, detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

		detail := fmt.Sprintf("classifier returned status %d", resp.StatusCode)
		if isRetryableStatus(resp.StatusCode) {
			return attemptResult{kind: attemptRetryable, detail: detail, retryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
		}
		return attemptResult{kind: attemptFatal, detail: detail}
	}

	var out PredictResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		if attemptCtx.Err() != nil && ctx.Err() == nil {
			return attemptResult{kind: attemptRetryable, detail: "timed out reading classifier response"}
		}
		return attemptResult{kind: attemptFatal, detail: "malformed classifier response: " + err.Error()}
	}

	prediction, err := validateResponse(out)
	if err != nil {
		return attemptResult{kind: attemptFatal, detail: err.Error()}
	}

	return attemptResult{kind: attemptSuccess, value: prediction}
}

func (g *Gateway) payload(m entity.SessionMetrics) PredictRequest {
	return PredictRequest{
		Duration:    m.DurationMinutes(),
		SwitchCount: m.SwitchCount,
		SwitchRate:  m.SwitchRate,
		ActiveRatio: encodeRatio(m.ActiveRatio, g.cfg.RatioScale),
	}
}

// encodeRatio is the only place the classifier boundary converts the internal
// fraction.
func encodeRatio(ratio float64, scale RatioScale) float64 {
	if scale == RatioPercent {
		return ratio * 100
	}
	return ratio
}

// backoff doubles from BackoffBase per failed attempt, capped at BackoffMax.
func (g *Gateway) backoff(attempt int) time.Duration {
	delay := g.cfg.BackoffBase
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= g.cfg.BackoffMax {
			return g.cfg.BackoffMax
		}
	}
	return delay
}

func validateResponse(out PredictResponse) (remotePrediction, error) {
	if out.Prediction == nil || (*out.Prediction != 0 && *out.Prediction != 1) {
		return remotePrediction{}, errors.New("classifier prediction is missing or not 0/1")
	}
	if out.Confidence == nil {
		return remotePrediction{}, errors.New("classifier confidence is missing")
	}

	c := *out.Confidence
	if math.IsNaN(c) || c < 0 || c > 1 {
		return remotePrediction{}, fmt.Errorf("classifier confidence %v is outside [0,1]", c)
	}

	return remotePrediction{label: *out.Prediction, confidence: c}, nil
}

// remoteStatus reads a label with the model's training convention, where 0 is
// the focused class. It is used for logging only.
func remoteStatus(label int) entity.Status {
	if label == 0 {
		return entity.StatusFocused
	}
	return entity.StatusDistracted
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusRequestTimeout:
		return true
	}
	return false
}

func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
