package engagementclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/peoplesync/absence-bridge/internal"
	"github.com/peoplesync/absence-bridge/pkg/datamodel"
)

// Config holds the connection parameters of the engagement platform API.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration // per-request, default 30s
}

// Client is the REST client for the engagement platform. It implements
// leavesync.EngagementClient.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: internal.GetHTTPClient(cfg.BaseURL, timeout),
	}
}

func (c *Client) ListUsers(ctx context.Context) ([]datamodel.EngagementUser, error) {
	var resp struct {
		Data []userDTO `json:"data"`
	}
	if err := c.send(ctx, http.MethodGet, "/api/v1/users", nil, &resp); err != nil {
		return nil, err
	}
	users := make([]datamodel.EngagementUser, 0, len(resp.Data))
	for _, u := range resp.Data {
		users = append(users, datamodel.EngagementUser{ID: u.ID, Email: u.Email})
	}
	return users, nil
}

func (c *Client) GetRequestByExternalID(ctx context.Context, externalID string) (datamodel.EngagementRequest, error) {
	q := url.Values{}
	q.Set("externalId", externalID)

	var resp struct {
		Data requestDTO `json:"data"`
	}
	err := c.send(ctx, http.MethodGet, "/api/v1/absence-requests?"+q.Encode(), nil, &resp)
	if err != nil {
		return datamodel.EngagementRequest{}, err
	}
	if resp.Data.ID == "" {
		return datamodel.EngagementRequest{}, datamodel.ErrNotFound
	}
	return datamodel.EngagementRequest{
		ID:         resp.Data.ID,
		ExternalID: resp.Data.ExternalID,
		Status:     resp.Data.Status,
	}, nil
}

func (c *Client) Approve(ctx context.Context, approverID, requestID string) error {
	payload := map[string]string{"approverId": approverID}
	return c.send(ctx, http.MethodPost, "/api/v1/absence-requests/"+url.PathEscape(requestID)+"/approve", payload, nil)
}

func (c *Client) Reject(ctx context.Context, approverID, requestID string) error {
	payload := map[string]string{"approverId": approverID}
	return c.send(ctx, http.MethodPost, "/api/v1/absence-requests/"+url.PathEscape(requestID)+"/reject", payload, nil)
}

func (c *Client) PatchExternalID(ctx context.Context, requestID, newExternalID string) error {
	payload := map[string]string{"externalId": newExternalID}
	return c.send(ctx, http.MethodPatch, "/api/v1/absence-requests/"+url.PathEscape(requestID), payload, nil)
}

func (c *Client) StartSync(ctx context.Context) (string, error) {
	var resp struct {
		SessionID string `json:"sessionId"`
	}
	if err := c.send(ctx, http.MethodPost, "/api/v1/absence-sync/sessions", struct{}{}, &resp); err != nil {
		return "", err
	}
	if resp.SessionID == "" {
		return "", fmt.Errorf("engagement API returned an empty session id")
	}
	return resp.SessionID, nil
}

func (c *Client) PushSyncBatch(ctx context.Context, sessionID string, items []datamodel.SyncItem) error {
	payload := map[string]any{"items": items}
	return c.send(ctx, http.MethodPost, "/api/v1/absence-sync/sessions/"+url.PathEscape(sessionID)+"/items", payload, nil)
}

func (c *Client) CompleteSync(ctx context.Context, sessionID string) error {
	return c.send(ctx, http.MethodPost, "/api/v1/absence-sync/sessions/"+url.PathEscape(sessionID)+"/complete", struct{}{}, nil)
}

func (c *Client) CancelSync(ctx context.Context, sessionID string) error {
	return c.send(ctx, http.MethodPost, "/api/v1/absence-sync/sessions/"+url.PathEscape(sessionID)+"/cancel", struct{}{}, nil)
}

func (c *Client) GetAbsencePolicies(ctx context.Context) ([]datamodel.Policy, error) {
	var resp struct {
		Data []policyDTO `json:"data"`
	}
	if err := c.send(ctx, http.MethodGet, "/api/v1/absence-policies", nil, &resp); err != nil {
		return nil, err
	}
	policies := make([]datamodel.Policy, 0, len(resp.Data))
	for _, p := range resp.Data {
		policies = append(policies, datamodel.Policy{
			ID:                p.ID,
			Name:              p.Name,
			ExternalReference: p.ExternalReference,
		})
	}
	return policies, nil
}

func (c *Client) send(ctx context.Context, method, path string, payload, out any) error {
	var reader io.Reader = http.NoBody
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding %s %s payload: %w", method, path, err)
		}
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("engagement API %s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("engagement API %s %s: reading response: %w", method, path, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return datamodel.ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("engagement API %s %s failed with status %d: %s", method, path, resp.StatusCode, truncate(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

func truncate(b []byte) string {
	const max = 256
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
