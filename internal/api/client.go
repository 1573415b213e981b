package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	httpTimeoutEnvKey  = "JSONBLOB_HTTP_TIMEOUT"
	adminTokenEnvKey   = "JSONBLOB_ADMIN_TOKEN"

	// BlobIDHeader carries the new blob's id on create responses.
	BlobIDHeader = "X-jsonblob"
)

// Client is a simple HTTP client for the jsonblob API.
type Client struct {
	baseURL    string
	http       *http.Client
	adminToken string
}

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       &http.Client{Timeout: httpTimeoutFromEnv()},
		adminToken: strings.TrimSpace(os.Getenv(adminTokenEnvKey)),
	}
}

// Ping checks whether the API server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/health", "")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// GetInfo returns server info.
func (c *Client) GetInfo(ctx context.Context) (InfoResponse, error) {
	var info InfoResponse
	resp, err := c.do(ctx, http.MethodGet, "/v1/info", "")
	if err != nil {
		return info, err
	}
	defer resp.Body.Close()
	err = json.NewDecoder(resp.Body).Decode(&info)
	return info, err
}

// CreateBlob stores a new JSON document and returns its id.
func (c *Client) CreateBlob(ctx context.Context, body string) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/jsonBlob", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Header.Get(BlobIDHeader), nil
}

// GetBlob returns the stored document for id.
func (c *Client) GetBlob(ctx context.Context, id string) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/jsonBlob/"+url.PathEscape(id), "")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

// UpdateBlob replaces the stored document for id and returns the new body.
func (c *Client) UpdateBlob(ctx context.Context, id, body string) (string, error) {
	resp, err := c.do(ctx, http.MethodPut, "/api/jsonBlob/"+url.PathEscape(id), body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

// DeleteBlob removes the stored document for id.
func (c *Client) DeleteBlob(ctx context.Context, id string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/api/jsonBlob/"+url.PathEscape(id), "")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// AdminCleanup triggers a manual sweep of expired blobs.
func (c *Client) AdminCleanup(ctx context.Context, req CleanupRequest, confirm bool) (CleanupResponse, error) {
	var out CleanupResponse
	payload, err := json.Marshal(req)
	if err != nil {
		return out, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/admin/cleanup", strings.NewReader(string(payload)))
	if err != nil {
		return out, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if confirm {
		httpReq.Header.Set("X-Confirm", "true")
	}
	c.setAdminHeader(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return out, decodeError(resp)
	}
	err = json.NewDecoder(resp.Body).Decode(&out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path, body string) (*http.Response, error) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp, nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
		apiErr.Message = errResp.Error
		apiErr.Code = errResp.Code
		apiErr.ErrorCode = errResp.ErrorCode
		return apiErr
	}
	apiErr.Message = resp.Status
	return apiErr
}

func (c *Client) setAdminHeader(req *http.Request) {
	if c.adminToken == "" || req == nil {
		return
	}
	req.Header.Set("X-Admin-Token", c.adminToken)
}

func httpTimeoutFromEnv() time.Duration {
	value := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if value == "" {
		return defaultHTTPTimeout
	}

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultHTTPTimeout
}
