package classifier

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dinerozz/focus-session-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var focusedMetrics = entity.SessionMetrics{DurationSeconds: 120, SwitchCount: 4, SwitchRate: 2, ActiveRatio: 0.9}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestGateway(url string) *Gateway {
	return NewGateway(Config{
		URL:            url,
		MaxAttempts:    3,
		AttemptTimeout: time.Second,
		RetryBudget:    5 * time.Second,
		BackoffBase:    time.Millisecond,
		BackoffMax:     4 * time.Millisecond,
	}, testLogger())
}

// countingServer answers each call with the status/body returned by respond.
func countingServer(t *testing.T, respond func(call int32, w http.ResponseWriter, r *http.Request)) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(calls.Add(1), w, r)
	}))
	t.Cleanup(server.Close)

	return server, &calls
}

func writePrediction(w http.ResponseWriter, label int, confidence float64) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"prediction": label, "confidence": confidence})
}

func TestClassify_RemoteSuccessKeepsLocalStatus(t *testing.T) {
	server, calls := countingServer(t, func(_ int32, w http.ResponseWriter, _ *http.Request) {
		// the remote claims the distracted class for a 90% active session
		writePrediction(w, 1, 0.82)
	})

	result := newTestGateway(server.URL).Classify(context.Background(), focusedMetrics)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, entity.StatusFocused, result.ResolvedStatus)
	assert.Equal(t, 0.82, result.Confidence)
	require.NotNil(t, result.RawLabel)
	assert.Equal(t, 1, *result.RawLabel)
	assert.False(t, result.RemoteUnavailable)
	assert.Equal(t, 1, result.Attempts)
}

func TestClassify_StatusFollowsRatioWhateverTheRemoteSays(t *testing.T) {
	for _, label := range []int{0, 1} {
		server, _ := countingServer(t, func(_ int32, w http.ResponseWriter, _ *http.Request) {
			writePrediction(w, label, 0.99)
		})
		gateway := newTestGateway(server.URL)

		for _, ratio := range []float64{0, 0.2, 0.49, 0.5, 0.51, 1} {
			result := gateway.Classify(context.Background(), entity.SessionMetrics{DurationSeconds: 60, ActiveRatio: ratio})
			assert.Equal(t, ratio >= 0.5, result.ResolvedStatus == entity.StatusFocused, "label %d ratio %v", label, ratio)
		}
	}
}

func TestClassify_ThresholdIsInclusive(t *testing.T) {
	server, _ := countingServer(t, func(_ int32, w http.ResponseWriter, _ *http.Request) {
		writePrediction(w, 1, 0.6)
	})

	result := newTestGateway(server.URL).Classify(context.Background(), entity.SessionMetrics{DurationSeconds: 60, ActiveRatio: 0.5})
	assert.Equal(t, entity.StatusFocused, result.ResolvedStatus)
}

func TestClassify_RetryableStatusesAreBounded(t *testing.T) {
	for _, status := range []int{http.StatusTooManyRequests, http.StatusServiceUnavailable} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			server, calls := countingServer(t, func(_ int32, w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(status)
			})

			result := newTestGateway(server.URL).Classify(context.Background(), focusedMetrics)

			assert.Equal(t, int32(3), calls.Load())
			assert.Equal(t, 3, result.Attempts)
			assert.True(t, result.RemoteUnavailable)
			assert.Nil(t, result.RawLabel)
			assert.Equal(t, focusedMetrics.ActiveRatio, result.Confidence)
			assert.Equal(t, entity.StatusFocused, result.ResolvedStatus)
		})
	}
}

func TestClassify_RecoversAfterColdStart(t *testing.T) {
	server, calls := countingServer(t, func(call int32, w http.ResponseWriter, _ *http.Request) {
		if call == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writePrediction(w, 0, 0.91)
	})

	result := newTestGateway(server.URL).Classify(context.Background(), focusedMetrics)

	assert.Equal(t, int32(2), calls.Load())
	assert.False(t, result.RemoteUnavailable)
	assert.Equal(t, 0.91, result.Confidence)
	assert.Equal(t, 2, result.Attempts)
}

func TestClassify_NonRetryableFailuresAbortImmediately(t *testing.T) {
	tests := []struct {
		name    string
		respond func(w http.ResponseWriter)
	}{
		{"bad request", func(w http.ResponseWriter) { w.WriteHeader(http.StatusBadRequest) }},
		{"internal error", func(w http.ResponseWriter) { w.WriteHeader(http.StatusInternalServerError) }},
		{"malformed body", func(w http.ResponseWriter) { _, _ = w.Write([]byte("<html>sleeping</html>")) }},
		{"label out of range", func(w http.ResponseWriter) { writePrediction(w, 2, 0.5) }},
		{"confidence out of range", func(w http.ResponseWriter) { writePrediction(w, 1, 1.5) }},
		{"missing confidence", func(w http.ResponseWriter) { _, _ = w.Write([]byte(`{"prediction":1}`)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, calls := countingServer(t, func(_ int32, w http.ResponseWriter, _ *http.Request) {
				tt.respond(w)
			})

			ratio := 0.3
			result := newTestGateway(server.URL).Classify(context.Background(), entity.SessionMetrics{DurationSeconds: 60, ActiveRatio: ratio})

			assert.Equal(t, int32(1), calls.Load())
			assert.True(t, result.RemoteUnavailable)
			assert.Equal(t, ratio, result.Confidence)
			assert.Equal(t, entity.StatusDistracted, result.ResolvedStatus)
		})
	}
}

func TestClassify_NetworkErrorOnEveryAttempt(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	metrics := entity.SessionMetrics{DurationSeconds: 300, SwitchCount: 9, SwitchRate: 1.8, ActiveRatio: 0.42}
	result := newTestGateway(url).Classify(context.Background(), metrics)

	assert.Equal(t, 3, result.Attempts)
	assert.True(t, result.RemoteUnavailable)
	assert.Equal(t, metrics.ActiveRatio, result.Confidence)
	assert.Equal(t, entity.StatusDistracted, result.ResolvedStatus)
}

func TestClassify_PerAttemptTimeoutIsRetried(t *testing.T) {
	server, calls := countingServer(t, func(_ int32, w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	gateway := newTestGateway(server.URL)
	gateway.cfg.AttemptTimeout = 20 * time.Millisecond

	started := time.Now()
	result := gateway.Classify(context.Background(), focusedMetrics)

	assert.Equal(t, 3, result.Attempts)
	assert.True(t, result.RemoteUnavailable)
	assert.Less(t, time.Since(started), time.Second)
	assert.LessOrEqual(t, calls.Load(), int32(3))
}

func TestClassify_RetryBudgetCapsTotalTime(t *testing.T) {
	server, calls := countingServer(t, func(_ int32, w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	gateway := newTestGateway(server.URL)
	gateway.cfg.RetryBudget = 50 * time.Millisecond
	gateway.cfg.BackoffBase = time.Second
	gateway.cfg.BackoffMax = time.Second

	started := time.Now()
	result := gateway.Classify(context.Background(), focusedMetrics)

	assert.Less(t, time.Since(started), 900*time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, result.RemoteUnavailable)
	assert.Equal(t, focusedMetrics.ActiveRatio, result.Confidence)
}

func TestClassify_CancelledCallerStopsRetrying(t *testing.T) {
	server, calls := countingServer(t, func(_ int32, w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := newTestGateway(server.URL).Classify(ctx, focusedMetrics)

	assert.Equal(t, int32(0), calls.Load())
	assert.True(t, result.RemoteUnavailable)
	assert.Equal(t, entity.StatusFocused, result.ResolvedStatus)
}

func TestClassify_HonoursRetryAfterWithinCap(t *testing.T) {
	server, _ := countingServer(t, func(_ int32, w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "120")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	gateway := newTestGateway(server.URL)
	var delays []time.Duration
	gateway.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	gateway.Classify(context.Background(), focusedMetrics)

	assert.Equal(t, []time.Duration{4 * time.Millisecond, 4 * time.Millisecond}, delays)
}

func TestClassify_Payload(t *testing.T) {
	tests := []struct {
		name      string
		scale     RatioScale
		wantRatio float64
	}{
		{"fraction by default", "", 0.9},
		{"percent when configured", RatioPercent, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got PredictRequest
			server, _ := countingServer(t, func(_ int32, w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				writePrediction(w, 0, 0.7)
			})

			gateway := NewGateway(Config{URL: server.URL, RatioScale: tt.scale}, testLogger())
			gateway.Classify(context.Background(), focusedMetrics)

			assert.InDelta(t, 2.0, got.Duration, 1e-9)
			assert.Equal(t, 4, got.SwitchCount)
			assert.Equal(t, 2.0, got.SwitchRate)
			assert.InDelta(t, tt.wantRatio, got.ActiveRatio, 1e-9)
		})
	}
}

func TestBackoff(t *testing.T) {
	gateway := NewGateway(Config{BackoffBase: 100 * time.Millisecond, BackoffMax: 350 * time.Millisecond}, testLogger())

	assert.Equal(t, 100*time.Millisecond, gateway.backoff(1))
	assert.Equal(t, 200*time.Millisecond, gateway.backoff(2))
	assert.Equal(t, 350*time.Millisecond, gateway.backoff(3))
	assert.Equal(t, 350*time.Millisecond, gateway.backoff(10))
}

func TestNewGateway_Defaults(t *testing.T) {
	gateway := NewGateway(Config{URL: "http://classifier"}, nil)

	assert.Equal(t, defaultMaxAttempts, gateway.cfg.MaxAttempts)
	assert.Equal(t, defaultAttemptTimeout, gateway.cfg.AttemptTimeout)
	assert.Equal(t, defaultRetryBudget, gateway.cfg.RetryBudget)
	assert.Equal(t, RatioFraction, gateway.cfg.RatioScale)
}

func TestPing(t *testing.T) {
	var path string
	server, _ := countingServer(t, func(_ int32, w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusNotFound)
	})

	gateway := newTestGateway(server.URL + "/predict")
	require.NoError(t, gateway.Ping(context.Background()))
	assert.Equal(t, "/", path)

	server.Close()
	assert.Error(t, gateway.Ping(context.Background()))
}
