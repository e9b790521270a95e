// Package client provides HTTP client operations against a running tracker
// daemon.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ngcde/assignment-tracker/internal/assignment"
	"github.com/ngcde/assignment-tracker/internal/report"
	"github.com/ngcde/assignment-tracker/internal/snapshot"
	"github.com/ngcde/assignment-tracker/pkg/cerr"
)

// Client talks to the tracker HTTP API.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a new client. baseURL looks like "http://localhost:8080".
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  http.DefaultClient,
	}
}

// CreateAssignment creates a new assignment.
func (c *Client) CreateAssignment(ctx context.Context, req assignment.CreateRequest) (*assignment.Assignment, error) {
	var created assignment.Assignment
	if err := c.do(ctx, http.MethodPost, "/api/assignments", req, &created); err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}
	return &created, nil
}

// ListAssignments lists assignments matching the filter.
func (c *Client) ListAssignments(ctx context.Context, f assignment.Filter) ([]*assignment.Assignment, error) {
	q := url.Values{}
	if f.Engineer != "" {
		q.Set("engineer", string(f.Engineer))
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Priority != "" {
		q.Set("priority", string(f.Priority))
	}
	path := "/api/assignments"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var list []*assignment.Assignment
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return list, nil
}

// GetAssignment gets a single assignment by id.
func (c *Client) GetAssignment(ctx context.Context, id int) (*assignment.Assignment, error) {
	var a assignment.Assignment
	if err := c.do(ctx, http.MethodGet, "/api/assignments/"+strconv.Itoa(id), nil, &a); err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return &a, nil
}

// UpdateAssignment applies a partial update to an assignment.
func (c *Client) UpdateAssignment(ctx context.Context, req assignment.UpdateRequest) (*assignment.Assignment, error) {
	var updated assignment.Assignment
	if err := c.do(ctx, http.MethodPatch, "/api/assignments/"+strconv.Itoa(req.ID), req, &updated); err != nil {
		return nil, fmt.Errorf("failed to update assignment: %w", err)
	}
	return &updated, nil
}

// Dashboard holds the dashboard report payload.
type Dashboard struct {
	Summary              report.Summary            `json:"summary"`
	StatusDistribution   []report.StatusCount      `json:"status_distribution"`
	PriorityDistribution []report.PriorityCount    `json:"priority_distribution"`
	Workload             []report.EngineerWorkload `json:"workload"`
	Recent               []*assignment.Assignment  `json:"recent"`
}

// GetDashboard fetches the dashboard report.
func (c *Client) GetDashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	if err := c.do(ctx, http.MethodGet, "/api/reports/dashboard", nil, &d); err != nil {
		return nil, fmt.Errorf("failed to get dashboard: %w", err)
	}
	return &d, nil
}

// Analytics holds the analytics report payload.
type Analytics struct {
	MonthlyCreated     []report.MonthCount   `json:"monthly_created"`
	AvgCompletionDays  *float64              `json:"avg_completion_days"`
	TimeEfficiency     *float64              `json:"time_efficiency"`
	CategoryCompletion []report.CategoryRate `json:"category_completion"`
}

// GetAnalytics fetches the analytics report.
func (c *Client) GetAnalytics(ctx context.Context) (*Analytics, error) {
	var a Analytics
	if err := c.do(ctx, http.MethodGet, "/api/reports/analytics", nil, &a); err != nil {
		return nil, fmt.Errorf("failed to get analytics: %w", err)
	}
	return &a, nil
}

// GetSnapshot fetches the full export document.
func (c *Client) GetSnapshot(ctx context.Context) (*snapshot.Document, error) {
	var doc snapshot.Document
	if err := c.do(ctx, http.MethodGet, "/api/snapshot", nil, &doc); err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return &doc, nil
}

// ExportSnapshot archives the current snapshot on the server and returns the
// archive name.
func (c *Client) ExportSnapshot(ctx context.Context) (string, error) {
	var resp struct {
		Archive string `json:"archive"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/snapshot/export", nil, &resp); err != nil {
		return "", fmt.Errorf("failed to export snapshot: %w", err)
	}
	return resp.Archive, nil
}

// ImportSnapshot replaces the server's assignments with the document's and
// returns the imported count.
func (c *Client) ImportSnapshot(ctx context.Context, raw []byte) (int, error) {
	var resp struct {
		Imported int `json:"imported"`
	}
	if err := c.doRaw(ctx, http.MethodPost, "/api/snapshot/import", raw, &resp); err != nil {
		return 0, fmt.Errorf("failed to import snapshot: %w", err)
	}
	return resp.Imported, nil
}

// ListArchives lists archived snapshot names.
func (c *Client) ListArchives(ctx context.Context) ([]string, error) {
	var resp struct {
		Archives []string `json:"archives"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/snapshot/archives", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list archives: %w", err)
	}
	return resp.Archives, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		if err != nil {
			return err
		}
	}
	return c.doRaw(ctx, method, path, raw, out)
}

func (c *Client) doRaw(ctx context.Context, method, path string, raw []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	if len(raw) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

// decodeError maps the server's {"code","message"} body back onto a coded
// error so callers can branch on cerr codes.
func decodeError(status int, data []byte) error {
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err != nil || body.Code == "" {
		return cerr.NewError(cerr.Unknown, fmt.Sprintf("server returned status %d", status), nil)
	}
	return cerr.NewError(codeFromString(body.Code), body.Message, nil)
}

func codeFromString(s string) cerr.Code {
	switch s {
	case "canceled":
		return cerr.Canceled
	case "invalid":
		return cerr.Invalid
	case "not_found":
		return cerr.NotFound
	case "bad_format":
		return cerr.BadFormat
	case "internal":
		return cerr.Internal
	}
	return cerr.Unknown
}
