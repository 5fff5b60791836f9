package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dinerozz/focus-session-backend/config"
	"github.com/dinerozz/focus-session-backend/internal/repository"
	"github.com/dinerozz/focus-session-backend/internal/service/advisor"
	"github.com/dinerozz/focus-session-backend/migrations"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Message string          `json:"message"`
	Success bool            `json:"success"`
}

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func newTestAPI(t *testing.T, classifierHandler http.HandlerFunc) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	classifierSrv := httptest.NewServer(classifierHandler)
	t.Cleanup(classifierSrv.Close)

	db, err := repository.OpenSQLite(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(db.DB, "sqlite"))

	cfg := &config.Config{
		Server: config.ServerConfig{Port: "0", BaseURL: "http://localhost:8080"},
		Redis:  config.RedisConfig{RateLimit: 30, Window: time.Minute},
		Auth:   config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour},
		Classifier: config.ClassifierConfig{
			URL:            classifierSrv.URL + "/predict",
			MaxAttempts:    3,
			AttemptTimeout: time.Second,
			RetryBudget:    5 * time.Second,
			BackoffBase:    time.Millisecond,
			BackoffMax:     2 * time.Millisecond,
			RatioScale:     "fraction",
		},
		Advisor: config.AdvisorConfig{Timeout: time.Second},
		History: config.HistoryConfig{TrendLimit: 20},
		Env:     "local",
	}

	app, err := NewApp(context.Background(), cfg, db, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	return &testAPI{t: t, router: app.Router}
}

func (a *testAPI) do(method, path string, body interface{}) (int, envelope) {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func (a *testAPI) login() {
	a.t.Helper()

	code, _ := a.do(http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Dana", "email": "dana@example.com", "password": "correct-horse",
	})
	require.Equal(a.t, http.StatusCreated, code)

	code, env := a.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "DANA@example.com", "password": "correct-horse",
	})
	require.Equal(a.t, http.StatusOK, code)

	var auth struct {
		Token string `json:"token"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &auth))
	require.NotEmpty(a.t, auth.Token)
	a.token = auth.Token
}

func focusedClassifier(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"prediction": 0, "confidence": 0.87}`))
}

func TestAPI_SessionLifecycle(t *testing.T) {
	api := newTestAPI(t, focusedClassifier)
	api.login()

	code, env := api.do(http.MethodPost, "/api/sessions", map[string]interface{}{
		"elapsed_seconds": 120, "switch_count": 4, "active_ticks": 108,
	})
	require.Equal(t, http.StatusCreated, code, env.Message)

	var outcome struct {
		Record struct {
			ID          string  `json:"id"`
			Status      string  `json:"status"`
			SwitchRate  float64 `json:"switch_rate"`
			ActiveRatio float64 `json:"active_ratio"`
			Advice      string  `json:"advice"`
		} `json:"record"`
		Classification struct {
			Confidence        float64 `json:"confidence"`
			RemoteUnavailable bool    `json:"remote_unavailable"`
		} `json:"classification"`
		IntensityPercent int  `json:"intensity_percent"`
		Saved            bool `json:"saved"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &outcome))
	assert.True(t, outcome.Saved)
	assert.Equal(t, "Focused", outcome.Record.Status)
	assert.InDelta(t, 2.0, outcome.Record.SwitchRate, 1e-9)
	assert.Equal(t, 90, outcome.IntensityPercent)
	assert.Equal(t, 0.87, outcome.Classification.Confidence)
	assert.False(t, outcome.Classification.RemoteUnavailable)
	assert.Equal(t, advisor.FocusedFallback, outcome.Record.Advice)

	code, env = api.do(http.MethodGet, "/api/history?page=1&per_page=10", nil)
	require.Equal(t, http.StatusOK, code)
	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &records))
	require.Len(t, records, 1)
	assert.Equal(t, outcome.Record.ID, records[0]["id"])
	assert.Contains(t, string(env.Meta), `"total_items":1`)

	code, env = api.do(http.MethodGet, "/api/history/trend", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"intensity_percent":90`)

	code, env = api.do(http.MethodGet, "/api/history/stats", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"focused_sessions":1`)

	code, _ = api.do(http.MethodGet, "/api/auth/profile", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestAPI_Errors(t *testing.T) {
	api := newTestAPI(t, focusedClassifier)

	code, env := api.do(http.MethodGet, "/api/history", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)

	api.login()

	code, _ = api.do(http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Dana", "email": "dana@example.com", "password": "another-pass",
	})
	assert.Equal(t, http.StatusConflict, code)

	code, env = api.do(http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Noé", "email": "noe@example.com", "password": strings.Repeat("é", 72),
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Message, "72 bytes")

	code, _ = api.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "dana@example.com", "password": "wrong-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = api.do(http.MethodPost, "/api/sessions", map[string]interface{}{
		"elapsed_seconds": 60, "switch_count": -2, "active_ticks": 10,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Message, "switch_count")

	code, _ = api.do(http.MethodPost, "/api/sessions", map[string]interface{}{"switch_count": 1})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = api.do(http.MethodGet, "/api/history", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestAPI_PredictFallsBackWhenClassifierDown(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	code, env := api.do(http.MethodPost, "/api/predict", map[string]interface{}{
		"duration_seconds": 300, "switch_count": 10, "active_ratio": 0.3,
	})
	require.Equal(t, http.StatusOK, code)

	var prediction struct {
		Classification struct {
			Status            string  `json:"status"`
			Confidence        float64 `json:"confidence"`
			RemoteUnavailable bool    `json:"remote_unavailable"`
			Attempts          int     `json:"attempts"`
		} `json:"classification"`
		IntensityPercent int `json:"intensity_percent"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &prediction))
	assert.Equal(t, "Distracted", prediction.Classification.Status)
	assert.Equal(t, 0.3, prediction.Classification.Confidence)
	assert.True(t, prediction.Classification.RemoteUnavailable)
	assert.Equal(t, 3, prediction.Classification.Attempts)
	assert.Equal(t, 30, prediction.IntensityPercent)

	code, _ = api.do(http.MethodPost, "/api/predict", map[string]interface{}{
		"duration_seconds": 300, "switch_count": 1, "active_ratio": 30,
	})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAPI_AdviceAndEvents(t *testing.T) {
	api := newTestAPI(t, focusedClassifier)

	code, env := api.do(http.MethodPost, "/api/advice", map[string]interface{}{
		"status": "Distracted", "intensity_percent": 20,
	})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"fallback":true`)

	code, _ = api.do(http.MethodPost, "/api/advice", map[string]interface{}{
		"status": "Sleepy", "intensity_percent": 20,
	})
	assert.Equal(t, http.StatusBadRequest, code)

	api.login()

	for _, eventType := range []string{"start", "switch", "stop"} {
		code, _ = api.do(http.MethodPost, "/api/events", map[string]string{"event_type": eventType})
		require.Equal(t, http.StatusCreated, code)
	}
	code, _ = api.do(http.MethodPost, "/api/events", map[string]string{"event_type": "scroll"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = api.do(http.MethodGet, "/api/events?event_type=switch", nil)
	require.Equal(t, http.StatusOK, code)
	var events []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &events))
	require.Len(t, events, 1)
	assert.Equal(t, "switch", events[0]["event_type"])
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t, focusedClassifier)

	code, _ := api.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)
}
