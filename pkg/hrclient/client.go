package hrclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/peoplesync/absence-bridge/internal"
	"github.com/peoplesync/absence-bridge/pkg/datamodel"
)

// Config holds the connection parameters of the HR platform API.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration // per-request, default 30s
	MaxRetries int64         // retries on 429/5xx, default 4
}

// Client is the REST client for the HR platform. It implements
// leavesync.HRClient. Rate limiting is handled here with exponential
// backoff; the core never retries on its own.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries int64
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 4
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: internal.GetHTTPClient(cfg.BaseURL, timeout),
		maxRetries: maxRetries,
	}
}

const employeePageSize = 200

func (c *Client) ListEmployees(ctx context.Context) ([]datamodel.Employee, error) {
	var employees []datamodel.Employee
	offset := 0
	for {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(employeePageSize))
		q.Set("offset", strconv.Itoa(offset))

		var page struct {
			Data []employeeDTO `json:"data"`
		}
		if err := c.get(ctx, "/v1/company/employees?"+q.Encode(), &page); err != nil {
			return nil, err
		}
		for _, e := range page.Data {
			employees = append(employees, e.toModel())
		}
		if len(page.Data) < employeePageSize {
			return employees, nil
		}
		offset += employeePageSize
	}
}

func (c *Client) GetEmployee(ctx context.Context, employeeID string) (datamodel.Employee, error) {
	var resp struct {
		Data employeeDTO `json:"data"`
	}
	if err := c.get(ctx, "/v1/company/employees/"+url.PathEscape(employeeID), &resp); err != nil {
		return datamodel.Employee{}, err
	}
	return resp.Data.toModel(), nil
}

func (c *Client) ListLeaveRequests(ctx context.Context, employeeID string) ([]datamodel.LeaveRequest, error) {
	q := url.Values{}
	q.Set("employee_id", employeeID)

	var resp struct {
		Data []leaveRequestDTO `json:"data"`
	}
	if err := c.get(ctx, "/v1/company/time-offs?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	requests := make([]datamodel.LeaveRequest, 0, len(resp.Data))
	for _, r := range resp.Data {
		requests = append(requests, r.toModel())
	}
	return requests, nil
}

func (c *Client) ListAbsences(ctx context.Context, employeeID string) ([]datamodel.Absence, error) {
	q := url.Values{}
	q.Set("employee_id", employeeID)

	var resp struct {
		Data []absenceDTO `json:"data"`
	}
	if err := c.get(ctx, "/v1/company/absence-periods?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	absences := make([]datamodel.Absence, 0, len(resp.Data))
	for _, a := range resp.Data {
		absences = append(absences, a.toModel())
	}
	return absences, nil
}

func (c *Client) CreateLeaveRequest(ctx context.Context, employeeID string, draft datamodel.LeaveRequestDraft) (datamodel.LeaveRequest, error) {
	payload := map[string]any{
		"employee_id":      employeeID,
		"start_date":       draft.StartDate,
		"end_date":         draft.EndDate,
		"half_day_start":   draft.HalfDayStart,
		"half_day_end":     draft.HalfDayEnd,
		"time_off_type_id": draft.ReasonID,
		"comment":          draft.Comment,
	}
	var resp struct {
		Data leaveRequestDTO `json:"data"`
	}
	if err := c.send(ctx, http.MethodPost, "/v1/company/time-offs", payload, &resp); err != nil {
		return datamodel.LeaveRequest{}, err
	}
	return resp.Data.toModel(), nil
}

func (c *Client) CancelLeaveRequest(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, "/v1/company/time-offs/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *Client) CancelAbsence(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, "/v1/company/absence-periods/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.send(ctx, http.MethodGet, path, nil, out)
}

// send performs one API call, retrying on 429 and 5xx with exponential
// backoff up to maxRetries. Anything else is returned to the caller as is.
func (c *Client) send(ctx context.Context, method, path string, payload, out any) error {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding %s %s payload: %w", method, path, err)
		}
	}

	for attempt := int64(0); ; attempt++ {
		status, respBody, err := c.do(ctx, method, path, body)
		if err != nil {
			return err
		}

		switch {
		case status >= 200 && status < 300:
			if out == nil {
				return nil
			}
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("decoding %s %s response: %w", method, path, err)
			}
			return nil
		case status == http.StatusTooManyRequests || status >= 500:
			if attempt >= c.maxRetries {
				return fmt.Errorf("HR API %s %s failed with status %d after %d attempts", method, path, status, attempt+1)
			}
			zap.S().Debugf("HR API %s %s returned %d, backing off (attempt %d)", method, path, status, attempt+1)
			if err := internal.SleepBackedOff(ctx, attempt+1, 500*time.Millisecond, 30*time.Second); err != nil {
				return err
			}
		default:
			return fmt.Errorf("HR API %s %s failed with status %d: %s", method, path, status, truncate(respBody))
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("HR API %s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("HR API %s %s: reading response: %w", method, path, err)
	}
	return resp.StatusCode, respBody, nil
}

func truncate(b []byte) string {
	const max = 256
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
