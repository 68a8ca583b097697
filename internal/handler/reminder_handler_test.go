package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
	"github.com/KasumiMercury/primind-task-reminder/internal/service/category"
	"github.com/KasumiMercury/primind-task-reminder/internal/service/cycle"
	"github.com/KasumiMercury/primind-task-reminder/internal/service/pause"
	"github.com/KasumiMercury/primind-task-reminder/internal/service/scheduler"
	"github.com/KasumiMercury/primind-task-reminder/internal/service/tracker"
)

type testEnv struct {
	router    *gin.Engine
	source    *domain.MockTaskSource
	presenter *domain.MockPresenter
	runner    *cycle.Runner
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctrl := gomock.NewController(t)
	source := domain.NewMockTaskSource(ctrl)
	presenter := domain.NewMockPresenter(ctrl)

	settings := cycle.Settings{
		Limits:    scheduler.Limits{MaxPerCategory: 5, MaxTotal: 10},
		Intervals: tracker.Intervals{Default: 5 * time.Minute},
	}
	tr, err := tracker.NewTracker(settings.Intervals)
	require.NoError(t, err)
	pauseCtl, err := pause.NewController(8)
	require.NoError(t, err)

	svc, err := cycle.NewService(
		source,
		presenter,
		category.NewClassifier(1),
		tr,
		scheduler.NewScheduler(settings.Limits, pauseCtl),
		pauseCtl,
		settings,
		cycle.WithTaskURL(func(id string) string { return "https://pf.example/task/" + id + "/" }),
	)
	require.NoError(t, err)

	runner := cycle.NewRunner(svc, time.Minute, nil)

	r := gin.New()
	NewReminderHandler(svc, runner).Register(r.Group("/api/v1"))

	return &testEnv{
		router:    r,
		source:    source,
		presenter: presenter,
		runner:    runner,
	}
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) seed(t *testing.T, tasks ...domain.Task) {
	t.Helper()
	e.source.EXPECT().FetchTasks(gomock.Any()).Return(tasks, nil)
	e.presenter.EXPECT().Present(gomock.Any(), gomock.Any()).Return(nil)
	_, err := e.runner.TryRun(context.Background(), false)
	require.NoError(t, err)
}

func overdue(id string) domain.Task {
	return domain.Task{ID: id, Title: "t" + id, Due: time.Now().Add(-time.Hour), DueHasTime: true}
}

func TestHandleCheck(t *testing.T) {
	env := setupTestEnv(t)

	env.source.EXPECT().FetchTasks(gomock.Any()).Return([]domain.Task{overdue("1")}, nil)
	env.presenter.EXPECT().Present(gomock.Any(), gomock.Len(1)).Return(nil)

	w := env.do(http.MethodPost, "/api/v1/check", "")

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Notifications []domain.NotificationIntent `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Notifications, 1)
	assert.Equal(t, "1", body.Notifications[0].Task.ID)
}

func TestHandleCheckSourceUnavailable(t *testing.T) {
	env := setupTestEnv(t)

	env.source.EXPECT().FetchTasks(gomock.Any()).Return(nil, domain.ErrSourceUnavailable)

	w := env.do(http.MethodPost, "/api/v1/check", "")

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestHandleAction(t *testing.T) {
	env := setupTestEnv(t)
	env.seed(t, overdue("1"), domain.Task{ID: "2", Title: "current"})

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantURL    string
	}{
		{
			name:       "unknown action",
			path:       "/api/v1/tasks/1/actions/explode",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown task",
			path:       "/api/v1/tasks/404/actions/done",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "snooze not offered for current",
			path:       "/api/v1/tasks/2/actions/snooze15",
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "open",
			path:       "/api/v1/tasks/1/actions/open",
			wantStatus: http.StatusOK,
			wantURL:    "https://pf.example/task/1/",
		},
		{
			name:       "done",
			path:       "/api/v1/tasks/2/actions/done",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, tt.path, "")

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantURL != "" {
				var res cycle.ActionResult
				if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if res.URL != tt.wantURL {
					t.Errorf("URL = %q, want %q", res.URL, tt.wantURL)
				}
			}
		})
	}

	w := env.do(http.MethodGet, "/api/v1/notifications", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":0`)
}

func TestHandlePauseAndResume(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantMode   domain.PauseMode
		wantWithin time.Duration
	}{
		{
			name:       "default one hour",
			wantStatus: http.StatusOK,
			wantMode:   domain.PauseModeDuration,
			wantWithin: time.Hour,
		},
		{
			name:       "minutes field",
			body:       `{"minutes": 30}`,
			wantStatus: http.StatusOK,
			wantMode:   domain.PauseModeDuration,
			wantWithin: 30 * time.Minute,
		},
		{
			name:       "bare minutes string",
			body:       `{"duration": "45"}`,
			wantStatus: http.StatusOK,
			wantMode:   domain.PauseModeDuration,
			wantWithin: 45 * time.Minute,
		},
		{
			name:       "go duration",
			body:       `{"duration": "2h"}`,
			wantStatus: http.StatusOK,
			wantMode:   domain.PauseModeDuration,
			wantWithin: 2 * time.Hour,
		},
		{
			name:       "next day",
			body:       `{"duration": "next_day"}`,
			wantStatus: http.StatusOK,
			wantMode:   domain.PauseModeNextDay,
			wantWithin: 48 * time.Hour,
		},
		{
			name:       "negative minutes",
			body:       `{"minutes": -5}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "garbage",
			body:       `{"duration": "soon"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "minutes that would overflow",
			body:       `{"minutes": 9223372036854775807}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bare minutes beyond a week",
			body:       `{"duration": "99999999999"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "go duration beyond a week",
			body:       `{"duration": "200h"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(t)

			w := env.do(http.MethodPost, "/api/v1/pause", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var state domain.PauseState
			if err := json.Unmarshal(w.Body.Bytes(), &state); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !state.Active {
				t.Errorf("Active = false, want true")
			}
			if state.Mode != tt.wantMode {
				t.Errorf("Mode = %v, want %v", state.Mode, tt.wantMode)
			}
			now := time.Now()
			if !state.ResumeAt.After(now) || !state.ResumeAt.Before(now.Add(tt.wantWithin+time.Minute)) {
				t.Errorf("ResumeAt = %v, want within %v of now", state.ResumeAt, tt.wantWithin)
			}

			w = env.do(http.MethodPost, "/api/v1/resume", "")
			if w.Code != http.StatusOK {
				t.Fatalf("resume status = %d, want %d", w.Code, http.StatusOK)
			}
			if err := json.Unmarshal(w.Body.Bytes(), &state); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if state.Active {
				t.Errorf("Active = true after resume, want false")
			}
		})
	}
}

func TestHandleStatus(t *testing.T) {
	env := setupTestEnv(t)
	env.seed(t, overdue("1"))

	w := env.do(http.MethodGet, "/api/v1/status", "")

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status   cycle.Status `json:"status"`
		Interval string       `json:"interval"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Status.Tracker.Tracked)
	assert.Equal(t, "1m0s", body.Interval)
	assert.Equal(t, cycle.OutcomeOK, body.Status.LastCycle.Outcome)
}
