package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dinerozz/focus-session-backend/internal/entity"
	"github.com/dinerozz/focus-session-backend/internal/model/response"
	"github.com/dinerozz/focus-session-backend/internal/session"
)

// API is the part of the HTTP API the dashboard talks to.
type API interface {
	CompleteSession(ctx context.Context, raw session.RawSession) (*response.SessionOutcome, error)
	Trend(ctx context.Context, limit int) ([]entity.TrendPoint, error)
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Success bool            `json:"success"`
}

// Client calls the focus session API with a bearer token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) CompleteSession(ctx context.Context, raw session.RawSession) (*response.SessionOutcome, error) {
	var outcome response.SessionOutcome
	if err := c.do(ctx, http.MethodPost, "/api/sessions", raw, &outcome); err != nil {
		return nil, err
	}
	return &outcome, nil
}

func (c *Client) Trend(ctx context.Context, limit int) ([]entity.TrendPoint, error) {
	var points []entity.TrendPoint
	if err := c.do(ctx, http.MethodGet, "/api/history/trend?limit="+strconv.Itoa(limit), nil, &points); err != nil {
		return nil, err
	}
	return points, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode %s response (status %d): %w", path, resp.StatusCode, err)
	}

	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		if env.Message == "" {
			env.Message = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("%s: %s", path, env.Message)
	}

	if err := json.Unmarshal(env.Data, dest); err != nil {
		return fmt.Errorf("failed to decode %s data: %w", path, err)
	}
	return nil
}
