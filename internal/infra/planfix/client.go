package planfix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
	"github.com/KasumiMercury/primind-task-reminder/internal/observability/logging"
	"github.com/KasumiMercury/primind-task-reminder/internal/observability/tracing"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultPageSize = 100
	maxPages        = 50
)

type Config struct {
	AccountURL      string
	APIToken        string
	FilterID        string
	UserID          string
	IncludeAssignee bool
	IncludeAssigner bool
	IncludeAuditor  bool
	Timeout         time.Duration
	Location        *time.Location
	// BaseTransport is wrapped by the bearer-token transport. Nil uses
	// http.DefaultTransport.
	BaseTransport http.RoundTripper
}

// FetchStatus describes the outcome of the most recent fetch.
type FetchStatus struct {
	LastAttempt time.Time
	LastSuccess time.Time
	LastError   string
	TaskCount   int
}

// Client is a TaskSource backed by the Planfix REST API.
type Client struct {
	baseURL    string
	filterID   int
	userID     string
	roleTypes  []int
	pageSize   int
	loc        *time.Location
	httpClient *http.Client

	mu     sync.RWMutex
	status FetchStatus
}

var _ domain.TaskSource = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	var filterID int
	if cfg.FilterID != "" {
		id, err := strconv.Atoi(cfg.FilterID)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidFilterID, cfg.FilterID)
		}
		filterID = id
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	var roles []int
	if cfg.IncludeAssignee {
		roles = append(roles, roleTypeAssignee)
	}
	if cfg.IncludeAssigner {
		roles = append(roles, roleTypeAssigner)
	}
	if cfg.IncludeAuditor {
		roles = append(roles, roleTypeAuditor)
	}

	base := cfg.BaseTransport
	if base == nil {
		base = http.DefaultTransport
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.AccountURL, "/"),
		filterID:  filterID,
		userID:    cfg.UserID,
		roleTypes: roles,
		pageSize:  defaultPageSize,
		loc:       loc,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &oauth2.Transport{
				Source: oauth2.StaticTokenSource(&oauth2.Token{
					AccessToken: cfg.APIToken,
					TokenType:   "Bearer",
				}),
				Base: base,
			},
		},
	}, nil
}

// FetchTasks returns the open tasks visible to the configured user, either
// from the saved filter or from one query per enabled role. A failing query
// fails the whole fetch.
func (c *Client) FetchTasks(ctx context.Context) ([]domain.Task, error) {
	ctx, span := tracing.StartSourceFetchSpan(ctx, "fetch_tasks", c.baseURL+"/task/list")
	defer span.End()

	tasks, err := c.fetchTasks(ctx)
	c.recordStatus(len(tasks), err)
	tracing.RecordFetchResult(span, len(tasks), err)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}

	return tasks, nil
}

func (c *Client) fetchTasks(ctx context.Context) ([]domain.Task, error) {
	if c.filterID != 0 {
		raw, err := c.listAll(ctx, TaskListRequest{FilterID: c.filterID, Fields: taskFields})
		if err != nil {
			return nil, fmt.Errorf("filter %d: %w", c.filterID, err)
		}
		return c.convert(raw, nil), nil
	}

	// Records without a parsed id are kept one by one so each is counted as
	// invalid downstream.
	var tasks []domain.Task
	index := make(map[string]int)
	for _, roleType := range c.roleTypes {
		raw, err := c.listAll(ctx, TaskListRequest{
			Filters: []TaskFilter{{
				Type:     roleType,
				Operator: "equal",
				Value:    "user:" + c.userID,
			}},
			Fields: taskFields,
		})
		if err != nil {
			return nil, fmt.Errorf("role %d: %w", roleType, err)
		}

		for _, task := range c.convert(raw, roleFor(roleType)) {
			if task.ID == "" {
				tasks = append(tasks, task)
				continue
			}
			if i, ok := index[task.ID]; ok {
				tasks[i].Roles = mergeRoles(tasks[i].Roles, task.Roles)
				continue
			}
			index[task.ID] = len(tasks)
			tasks = append(tasks, task)
		}

		slog.DebugContext(ctx, "fetched tasks for role",
			slog.Int("role_type", roleType),
			slog.Int("task_count", len(raw)),
		)
	}

	if tasks == nil {
		tasks = []domain.Task{}
	}

	return tasks, nil
}

// Ping issues a one-task request to verify the URL and token.
func (c *Client) Ping(ctx context.Context) error {
	ctx, span := tracing.StartSourceFetchSpan(ctx, "ping", c.baseURL+"/task/list")
	defer span.End()

	req := TaskListRequest{PageSize: 1, Fields: "id,name"}
	if c.filterID != 0 {
		req.FilterID = c.filterID
	}

	_, err := c.list(ctx, req)
	tracing.RecordError(span, err)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}

	return nil
}

func (c *Client) Status() FetchStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

func (c *Client) listAll(ctx context.Context, req TaskListRequest) ([]TaskResponse, error) {
	var all []TaskResponse
	req.PageSize = c.pageSize

	for page := 0; page < maxPages; page++ {
		req.Offset = page * c.pageSize
		tasks, err := c.list(ctx, req)
		if err != nil {
			return nil, err
		}
		all = append(all, tasks...)
		if len(tasks) < c.pageSize {
			return all, nil
		}
	}

	slog.WarnContext(ctx, "task list truncated at page limit",
		slog.Int("max_pages", maxPages),
		slog.Int("task_count", len(all)),
	)

	return all, nil
}

func (c *Client) list(ctx context.Context, payload TaskListRequest) ([]TaskResponse, error) {
	url := c.baseURL + "/task/list"

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if requestID := logging.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set("x-request-id", requestID)
	}
	tracing.InjectToHTTPRequest(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "failed to send request to planfix",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.ErrorContext(ctx, "unexpected status code from planfix",
			slog.String("url", url),
			slog.Int("status_code", resp.StatusCode),
			slog.String("body", truncate(string(respBody), 200)),
		)
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var decoded TaskListResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if decoded.Result == resultFail {
		slog.ErrorContext(ctx, "planfix api returned failure",
			slog.String("url", url),
			slog.String("api_error", decoded.Error),
		)
		return nil, fmt.Errorf("%w: %s", ErrAPIFailure, decoded.Error)
	}

	return decoded.Tasks, nil
}

func (c *Client) recordStatus(count int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	c.status.LastAttempt = now
	if err != nil {
		c.status.LastError = err.Error()
		return
	}
	c.status.LastSuccess = now
	c.status.LastError = ""
	c.status.TaskCount = count
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
