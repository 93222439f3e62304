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
	"strings"
	"time"

	"github.com/kazz187/housekeeping/internal/engine"
	"github.com/kazz187/housekeeping/internal/history"
	"github.com/kazz187/housekeeping/internal/query"
	"github.com/kazz187/housekeeping/internal/room"
	"github.com/kazz187/housekeeping/internal/server"
	"github.com/kazz187/housekeeping/internal/staff"
	"github.com/kazz187/housekeeping/internal/task"
	"github.com/kazz187/housekeeping/pkg/cerr"
)

// Client talks to the housekeeping JSON API. Failed calls return a *cerr.Error
// carrying the server's code, so callers can use cerr.IsCode.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// NewWithHTTPClient is New with a caller-supplied transport, e.g. httptest.Server.Client().
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

type TaskQuery struct {
	Search   string
	Status   string
	Priority string
	StaffID  string
	Sort     string
	Page     int
	PageSize int
}

func (q TaskQuery) values() url.Values {
	v := url.Values{}
	set(v, "search", q.Search)
	set(v, "status", q.Status)
	set(v, "priority", q.Priority)
	set(v, "staff", q.StaffID)
	set(v, "sort", q.Sort)
	setPage(v, q.Page, q.PageSize)
	return v
}

type HistoryQuery struct {
	Search   string
	Status   string
	StaffID  string
	Newest   bool
	Page     int
	PageSize int
}

func (q HistoryQuery) values() url.Values {
	v := url.Values{}
	set(v, "search", q.Search)
	set(v, "status", q.Status)
	set(v, "staff", q.StaffID)
	if q.Newest {
		v.Set("newest", "true")
	}
	setPage(v, q.Page, q.PageSize)
	return v
}

func (c *Client) ListTasks(ctx context.Context, q TaskQuery) (*query.Page[query.TaskView], error) {
	var res query.Page[query.TaskView]
	if err := c.do(ctx, http.MethodGet, "/api/tasks", q.values(), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (*task.Task, error) {
	var t task.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks/"+url.PathEscape(id), nil, nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) CreateTask(ctx context.Context, req server.CreateTaskRequest) (*task.Task, error) {
	var t task.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", nil, req, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) StartTask(ctx context.Context, id, staffID string) (*task.Task, error) {
	return c.taskCommand(ctx, http.MethodPost, id, "start", server.StartTaskRequest{StaffID: staffID})
}

func (c *Client) CompleteTask(ctx context.Context, id string) (*task.Task, error) {
	return c.taskCommand(ctx, http.MethodPost, id, "complete", nil)
}

func (c *Client) ReportException(ctx context.Context, id, reason string) (*task.Task, error) {
	return c.taskCommand(ctx, http.MethodPost, id, "exception", server.ExceptionRequest{Reason: reason})
}

func (c *Client) SetPriority(ctx context.Context, id, priority string) (*task.Task, error) {
	return c.taskCommand(ctx, http.MethodPut, id, "priority", server.PriorityRequest{Priority: priority})
}

func (c *Client) SetNotes(ctx context.Context, id, notes string) (*task.Task, error) {
	return c.taskCommand(ctx, http.MethodPut, id, "notes", server.NotesRequest{Notes: notes})
}

func (c *Client) taskCommand(ctx context.Context, method, id, action string, body any) (*task.Task, error) {
	var t task.Task
	if err := c.do(ctx, method, "/api/tasks/"+url.PathEscape(id)+"/"+action, nil, body, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) AutoAssign(ctx context.Context) (*engine.AssignResult, error) {
	var res engine.AssignResult
	if err := c.do(ctx, http.MethodPost, "/api/tasks/auto-assign", nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) AutoGenerate(ctx context.Context, rooms []room.Descriptor) (*engine.GenerateResult, error) {
	var res engine.GenerateResult
	if err := c.do(ctx, http.MethodPost, "/api/tasks/auto-generate", nil, server.AutoGenerateRequest{Rooms: rooms}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) ListStaff(ctx context.Context, status string, page, pageSize int) (*query.Page[staff.Staff], error) {
	v := url.Values{}
	set(v, "status", status)
	setPage(v, page, pageSize)
	var res query.Page[staff.Staff]
	if err := c.do(ctx, http.MethodGet, "/api/staff", v, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) GetStaff(ctx context.Context, id string) (*staff.Staff, error) {
	var s staff.Staff
	if err := c.do(ctx, http.MethodGet, "/api/staff/"+url.PathEscape(id), nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) SetStaffStatus(ctx context.Context, id, status string) (*staff.Staff, error) {
	var s staff.Staff
	if err := c.do(ctx, http.MethodPut, "/api/staff/"+url.PathEscape(id)+"/status", nil, server.StaffStatusRequest{Status: status}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) ListStaffTasks(ctx context.Context, id string, page, pageSize int) (*query.Page[query.TaskView], error) {
	v := url.Values{}
	setPage(v, page, pageSize)
	var res query.Page[query.TaskView]
	if err := c.do(ctx, http.MethodGet, "/api/staff/"+url.PathEscape(id)+"/tasks", v, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) ListHistory(ctx context.Context, q HistoryQuery) (*query.Page[history.Record], error) {
	var res query.Page[history.Record]
	if err := c.do(ctx, http.MethodGet, "/api/history", q.values(), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Summary(ctx context.Context) (*query.Summary, error) {
	var res query.Summary
	if err := c.do(ctx, http.MethodGet, "/api/summary", nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

type errorBody struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details"`
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var eb errorBody
		if err := json.Unmarshal(data, &eb); err != nil || eb.Code == "" {
			return cerr.NewError(cerr.Unknown, fmt.Sprintf("%s %s: %s", method, path, resp.Status), nil)
		}
		e := cerr.NewError(cerr.ParseCode(eb.Code), eb.Message, nil)
		for _, d := range eb.Details {
			e.AddDetailMessage(d)
		}
		return e
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func set(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func setPage(v url.Values, page, pageSize int) {
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		v.Set("pageSize", strconv.Itoa(pageSize))
	}
}
