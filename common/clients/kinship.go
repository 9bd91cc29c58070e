package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/juruladenbam/bam-sub001/common/models"
)

// APIError is a non-2xx response from the kinship service
type APIError struct {
	StatusCode int
	Code       string `json:"error"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("kinship api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("kinship api: status %d: %s", e.StatusCode, e.Message)
}

// MutationResponse reports what a mutation hook touched
type MutationResponse struct {
	PersonIDs          []int64 `json:"person_ids"`
	AffectedPersons    int     `json:"affected_persons"`
	InvalidatedRows    int64   `json:"invalidated_rows"`
	GenerationsChanged int     `json:"generations_changed"`
}

// RecomputeResponse reports a full generation pass
type RecomputeResponse struct {
	RootID    int64 `json:"root_id"`
	Assigned  int   `json:"assigned"`
	Changed   int   `json:"changed"`
	Persisted bool  `json:"persisted"`
}

// KinshipClient handles communication with the kinship API
type KinshipClient struct {
	baseURL string
	secret  string
	http    *HTTPClient
	logger  Logger
}

// NewKinshipClient creates a new kinship client
func NewKinshipClient(cfg *ClientConfig, logger Logger) *KinshipClient {
	httpClient := &http.Client{
		Timeout: cfg.Timeout,
	}

	return &KinshipClient{
		baseURL: strings.TrimRight(cfg.KinshipURL, "/"),
		secret:  cfg.InternalSecret,
		http:    NewHTTPClient(httpClient, logger),
		logger:  logger,
	}
}

// Resolve asks what b is to a
func (c *KinshipClient) Resolve(ctx context.Context, a, b int64) (*models.Relationship, error) {
	q := url.Values{}
	q.Set("person_a", strconv.FormatInt(a, 10))
	q.Set("person_b", strconv.FormatInt(b, 10))

	var rel models.Relationship
	if err := c.do(ctx, http.MethodGet, "/api/v1/relationships?"+q.Encode(), nil, false, &rel); err != nil {
		return nil, err
	}
	return &rel, nil
}

// Generation returns a person's generation (nil when unassigned)
func (c *KinshipClient) Generation(ctx context.Context, personID int64) (*int, error) {
	var resp struct {
		Generation *int `json:"generation"`
	}
	path := fmt.Sprintf("/api/v1/persons/%d/generation", personID)
	if err := c.do(ctx, http.MethodGet, path, nil, false, &resp); err != nil {
		return nil, err
	}
	return resp.Generation, nil
}

// NotifyMutation calls the graph mutation hook
func (c *KinshipClient) NotifyMutation(ctx context.Context, personIDs []int64) (*MutationResponse, error) {
	body := map[string]any{"person_ids": personIDs}

	var resp MutationResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/graph/mutations", body, true, &resp); err != nil {
		return nil, err
	}

	c.logger.Info("graph mutation accepted",
		"persons", len(personIDs),
		"invalidated_rows", resp.InvalidatedRows)
	return &resp, nil
}

// RecomputeGenerations triggers a full generation pass
func (c *KinshipClient) RecomputeGenerations(ctx context.Context) (*RecomputeResponse, error) {
	var resp RecomputeResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/generations/recompute", nil, true, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stats returns the raw statistics document
func (c *KinshipClient) Stats(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/v1/relationships/stats", nil, false, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *KinshipClient) do(ctx context.Context, method, path string, body any, internal bool, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	var headers map[string]string
	if internal {
		headers = map[string]string{"X-Internal-Service": c.secret}
	}

	resp, err := c.http.DoRequest(ctx, method, c.baseURL+path, reader, headers)
	if err != nil {
		return fmt.Errorf("failed to call kinship api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(data, apiErr) != nil {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
