// Package client is a Go client for the Lifter HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// APIError is a Problem Details response from the server.
type APIError struct {
	Status int    `json:"status"`
	Type   string `json:"type"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("lifter: %d %s", e.Status, e.Title)
	}
	return fmt.Sprintf("lifter: %d %s: %s", e.Status, e.Title, e.Detail)
}

// StatusCode returns the HTTP status of an *APIError in err's chain, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Client talks to a Lifter server
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a new Client
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("BaseURL is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Health checks connectivity. It needs no API key.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	err := c.do(ctx, http.MethodGet, "/api/v1/health", nil, &h)
	return h, err
}

// ListPlans returns a summary of every stored plan.
func (c *Client) ListPlans(ctx context.Context) ([]PlanSummary, error) {
	var resp struct {
		Plans []PlanSummary `json:"plans"`
	}
	err := c.do(ctx, http.MethodGet, "/api/v1/plans", nil, &resp)
	return resp.Plans, err
}

// Plan returns the template of a plan.
func (c *Client) Plan(ctx context.Context, id string) (Plan, error) {
	var p Plan
	err := c.do(ctx, http.MethodGet, "/api/v1/plans/"+url.PathEscape(id), nil, &p)
	return p, err
}

// ImportText imports a plan from free text.
func (c *Client) ImportText(ctx context.Context, text string) (Plan, error) {
	return c.importPlan(ctx, map[string]any{"text": text})
}

// ImportFile imports a plan from a document, with optional accompanying text.
func (c *Client) ImportFile(ctx context.Context, data []byte, mimeType, text string) (Plan, error) {
	body := map[string]any{
		"file": map[string]string{
			"data":      base64.StdEncoding.EncodeToString(data),
			"mime_type": mimeType,
		},
	}
	if text != "" {
		body["text"] = text
	}
	return c.importPlan(ctx, body)
}

func (c *Client) importPlan(ctx context.Context, body any) (Plan, error) {
	var p Plan
	err := c.do(ctx, http.MethodPost, "/api/v1/plans/import", body, &p)
	return p, err
}

// DeletePlan deletes a plan template. Its logs are kept.
func (c *Client) DeletePlan(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/plans/"+url.PathEscape(id)+"?confirm=true", nil, nil)
}

// SelectPlan makes id the active plan.
func (c *Client) SelectPlan(ctx context.Context, id string) (View, error) {
	var v View
	err := c.do(ctx, http.MethodPost, "/api/v1/plans/"+url.PathEscape(id)+"/select", nil, &v)
	return v, err
}

// Session returns the session view.
func (c *Client) Session(ctx context.Context) (View, error) {
	var v View
	err := c.do(ctx, http.MethodGet, "/api/v1/session", nil, &v)
	return v, err
}

// SetCursor moves the session cursor and returns the clamped position.
func (c *Client) SetCursor(ctx context.Context, cur Cursor) (Position, error) {
	var pos Position
	err := c.do(ctx, http.MethodPut, "/api/v1/session/cursor", cur, &pos)
	return pos, err
}

// StartRepetition starts a new repetition from the current template.
func (c *Client) StartRepetition(ctx context.Context) (View, error) {
	var v View
	err := c.do(ctx, http.MethodPost, "/api/v1/session/repetitions", nil, &v)
	return v, err
}

// RenameRepetition names the viewed repetition. It reports whether the name
// changed along with the resulting label.
func (c *Client) RenameRepetition(ctx context.Context, name string) (bool, string, error) {
	var resp struct {
		Renamed bool   `json:"renamed"`
		Label   string `json:"label"`
	}
	err := c.do(ctx, http.MethodPut, "/api/v1/session/repetition/name", map[string]string{"name": name}, &resp)
	return resp.Renamed, resp.Label, err
}

// LogSet records one field of a set and returns the stored set.
func (c *Client) LogSet(ctx context.Context, e LogEntry) (SetLog, error) {
	var s SetLog
	err := c.do(ctx, http.MethodPut, "/api/v1/session/logs", e, &s)
	return s, err
}

// ProposeEdit stages a change to an exercise of the viewed day.
func (c *Client) ProposeEdit(ctx context.Context, exerciseID string, in ExerciseInput) (*Pending, error) {
	body := struct {
		ExerciseID string `json:"exercise_id"`
		ExerciseInput
	}{exerciseID, in}
	return c.propose(ctx, "edit", body)
}

// ProposeAdd stages appending an exercise. Zero fields take server defaults.
func (c *Client) ProposeAdd(ctx context.Context, in ExerciseInput) (*Pending, error) {
	return c.propose(ctx, "add", in)
}

// ProposeRemove stages removing an exercise. The server refuses unconfirmed
// removals with 428.
func (c *Client) ProposeRemove(ctx context.Context, exerciseID string, confirm bool) (*Pending, error) {
	return c.propose(ctx, "remove", map[string]any{"exercise_id": exerciseID, "confirm": confirm})
}

// ProposeReorder stages moving an exercise. Moving onto the same position
// stages nothing and returns nil.
func (c *Client) ProposeReorder(ctx context.Context, from, to int) (*Pending, error) {
	return c.propose(ctx, "reorder", map[string]int{"from": from, "to": to})
}

func (c *Client) propose(ctx context.Context, kind string, body any) (*Pending, error) {
	var p *Pending
	if err := c.do(ctx, http.MethodPost, "/api/v1/session/pending/"+kind, body, &p); err != nil {
		return nil, err
	}
	return p, nil
}

// Apply propagates the staged change with scope.
func (c *Client) Apply(ctx context.Context, scope Scope) (View, error) {
	var v View
	err := c.do(ctx, http.MethodPost, "/api/v1/session/pending/apply", map[string]Scope{"scope": scope}, &v)
	return v, err
}

// Dismiss discards the staged change.
func (c *Client) Dismiss(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/session/pending", nil, nil)
}

// do sends an authenticated request. A 204 or a nil out skips decoding.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Title: http.StatusText(resp.StatusCode)}
		// Non-problem bodies keep the status text.
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		apiErr.Status = resp.StatusCode
		return apiErr
	}
	if resp.StatusCode == http.StatusNoContent || out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
