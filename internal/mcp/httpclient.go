package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/mapty/internal/app"
	"github.com/claude/mapty/internal/store"
	"github.com/claude/mapty/internal/workout"
)

// HTTPClient implements DataSource by calling the mapty REST API.
// Used for the stdio MCP binary, where the workouts live in a running
// mapty server (possibly reached over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// apiError is the error body the server writes.
type apiError struct {
	Error  string `json:"error"`
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in any, wantStatus int) ([]byte, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("httpclient: encode %s: %w", path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != wantStatus {
		return nil, statusError(path, resp.StatusCode, data)
	}
	return data, nil
}

// statusError turns a non-success response back into the controller's errors.
func statusError(path string, status int, body []byte) error {
	var e apiError
	_ = json.Unmarshal(body, &e)
	switch status {
	case http.StatusNotFound:
		return fmt.Errorf("httpclient: %s: %w", path, store.ErrNotFound)
	case http.StatusUnprocessableEntity:
		return &app.ValidationError{Field: e.Field, Value: e.Value, Reason: e.Reason}
	case http.StatusConflict:
		return fmt.Errorf("httpclient: %s: %w", path, app.ErrMapUnavailable)
	}
	return fmt.Errorf("httpclient: %s returned %d: %s", path, status, body)
}

// workoutPath escapes id so it stays one path segment.
func workoutPath(id string) string {
	return "/api/v1/workouts/" + url.PathEscape(id)
}

func (c *HTTPClient) ListWorkouts(ctx context.Context) ([]workout.Workout, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/workouts", nil, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var ws []workout.Workout
	if err := json.Unmarshal(body, &ws); err != nil {
		return nil, fmt.Errorf("httpclient: decode workouts: %w", err)
	}
	return ws, nil
}

func (c *HTTPClient) GetWorkout(ctx context.Context, id string) (workout.Workout, error) {
	body, err := c.do(ctx, http.MethodGet, workoutPath(id), nil, http.StatusOK)
	if err != nil {
		return workout.Workout{}, err
	}

	var w workout.Workout
	if err := json.Unmarshal(body, &w); err != nil {
		return workout.Workout{}, fmt.Errorf("httpclient: decode workout: %w", err)
	}
	return w, nil
}

func (c *HTTPClient) LogWorkout(ctx context.Context, at workout.Coordinate, in app.FormInput) (workout.Workout, error) {
	req := struct {
		workout.Coordinate
		app.FormInput
	}{at, in}
	body, err := c.do(ctx, http.MethodPost, "/api/v1/workouts", req, http.StatusCreated)
	if err != nil {
		return workout.Workout{}, err
	}

	var w workout.Workout
	if err := json.Unmarshal(body, &w); err != nil {
		return workout.Workout{}, fmt.Errorf("httpclient: decode workout: %w", err)
	}
	return w, nil
}

func (c *HTTPClient) FocusWorkout(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodPost, workoutPath(id)+"/focus", nil, http.StatusOK)
	return err
}
