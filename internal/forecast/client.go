// Package forecast is the client for the external projection/optimization
// service that produces suggestions, previews, and accepts plan creation.
package forecast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/plan"
)

// #region service-interface

// Service abstracts the forecast endpoints so the session can be tested
// without a live service.
type Service interface {
	FetchSuggestions(ctx context.Context, cfg plan.Config) (SuggestionResponse, error)
	ComputePreview(ctx context.Context, cfg plan.Config) (PreviewResponse, error)
	CreatePlan(ctx context.Context, req CreateRequest) (CreateResponse, error)
}

// #endregion service-interface

// #region client

// Client talks JSON over HTTP to the forecast service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// FetchSuggestions asks the service for per-group suggested values.
func (c *Client) FetchSuggestions(ctx context.Context, cfg plan.Config) (SuggestionResponse, error) {
	var out SuggestionResponse
	if err := c.post(ctx, "/v1/suggestions", cfg, &out); err != nil {
		return SuggestionResponse{}, fmt.Errorf("fetch suggestions: %w", err)
	}
	return out, nil
}

// ComputePreview asks the service for a feasibility preview of cfg.
func (c *Client) ComputePreview(ctx context.Context, cfg plan.Config) (PreviewResponse, error) {
	var out PreviewResponse
	if err := c.post(ctx, "/v1/preview", cfg, &out); err != nil {
		return PreviewResponse{}, fmt.Errorf("compute preview: %w", err)
	}
	return out, nil
}

// CreatePlan submits the final create request.
func (c *Client) CreatePlan(ctx context.Context, req CreateRequest) (CreateResponse, error) {
	var out CreateResponse
	if err := c.post(ctx, "/v1/plans", req, &out); err != nil {
		return CreateResponse{}, fmt.Errorf("create plan: %w", err)
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: status %d: %s", path, resp.StatusCode, snippet)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// #endregion client
