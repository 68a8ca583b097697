package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
	"github.com/KasumiMercury/primind-task-reminder/internal/service/cycle"
	"github.com/KasumiMercury/primind-task-reminder/internal/service/pause"
)

const defaultPauseDuration = time.Hour

type PauseRequest struct {
	// Duration is "next_day", a Go duration such as "1h30m", or a bare
	// number of minutes. Empty pauses for one hour.
	Duration string `json:"duration"`
	Minutes  int    `json:"minutes"`
}

type ReminderHandler struct {
	service *cycle.Service
	runner  *cycle.Runner
}

func NewReminderHandler(service *cycle.Service, runner *cycle.Runner) *ReminderHandler {
	return &ReminderHandler{
		service: service,
		runner:  runner,
	}
}

func (h *ReminderHandler) Register(r gin.IRouter) {
	r.GET("/status", h.HandleStatus)
	r.GET("/notifications", h.HandleNotifications)
	r.POST("/tasks/:id/actions/:action", h.HandleAction)
	r.POST("/pause", h.HandlePause)
	r.POST("/resume", h.HandleResume)
	r.POST("/check", h.HandleCheck)
}

func (h *ReminderHandler) HandleStatus(c *gin.Context) {
	status := h.service.Status()
	c.JSON(http.StatusOK, gin.H{
		"status":        status,
		"interval":      h.runner.Interval().String(),
		"cycle_running": h.runner.Running(),
		"skipped_ticks": h.runner.Skipped(),
	})
}

func (h *ReminderHandler) HandleNotifications(c *gin.Context) {
	intents := h.service.Latest()
	c.JSON(http.StatusOK, gin.H{
		"notifications": intents,
		"count":         len(intents),
	})
}

func (h *ReminderHandler) HandleAction(c *gin.Context) {
	ctx := c.Request.Context()
	taskID := c.Param("id")
	action := c.Param("action")

	result, err := h.service.HandleAction(ctx, taskID, action)
	if err != nil {
		status := actionErrorStatus(err)
		if status == http.StatusInternalServerError {
			slog.ErrorContext(ctx, "failed to apply action",
				slog.String("task_id", taskID),
				slog.String("action", action),
				slog.String("error", err.Error()),
			)
		}
		respondError(c, status, err.Error())
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ReminderHandler) HandlePause(c *gin.Context) {
	ctx := c.Request.Context()

	var req PauseRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	sel, err := parsePause(req)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	state, err := h.service.Pause(ctx, sel)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, pause.ErrInvalidDuration) {
			status = http.StatusBadRequest
		}
		respondError(c, status, err.Error())
		return
	}

	slog.InfoContext(ctx, "notifications paused via api",
		slog.Time("resume_at", state.ResumeAt),
		slog.String("mode", string(state.Mode)),
	)

	c.JSON(http.StatusOK, state)
}

func (h *ReminderHandler) HandleResume(c *gin.Context) {
	state := h.service.Resume(c.Request.Context())
	c.JSON(http.StatusOK, state)
}

// HandleCheck runs a forced cycle immediately. It answers 409 while another
// cycle is running.
func (h *ReminderHandler) HandleCheck(c *gin.Context) {
	ctx := c.Request.Context()

	record, err := h.runner.TryRun(ctx, true)
	switch {
	case errors.Is(err, domain.ErrCycleInProgress):
		respondError(c, http.StatusConflict, err.Error())
		return
	case errors.Is(err, domain.ErrSourceUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{
			"error": err.Error(),
			"cycle": record,
		})
		return
	case err != nil:
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cycle":         record,
		"notifications": h.service.Latest(),
	})
}

func parsePause(req PauseRequest) (pause.Selector, error) {
	if req.Minutes != 0 {
		d, err := minutesDuration(req.Minutes)
		if err != nil {
			return nil, err
		}
		return pause.PauseFor(d), nil
	}

	raw := strings.TrimSpace(req.Duration)
	switch raw {
	case "":
		return pause.PauseFor(defaultPauseDuration), nil
	case string(domain.PauseModeNextDay):
		return pause.PauseUntilNextDay(), nil
	}

	if minutes, err := strconv.Atoi(raw); err == nil {
		d, err := minutesDuration(minutes)
		if err != nil {
			return nil, err
		}
		return pause.PauseFor(d), nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return nil, errors.New("duration must be next_day, a duration like 1h, or minutes")
	}
	return pause.PauseFor(d), nil
}

// minutesDuration converts a minute count, rejecting values outside
// (0, pause.MaxPauseDuration] before they can overflow.
func minutesDuration(minutes int) (time.Duration, error) {
	if minutes <= 0 || minutes > int(pause.MaxPauseDuration/time.Minute) {
		return 0, fmt.Errorf("%w: %d minutes", pause.ErrInvalidDuration, minutes)
	}
	return time.Duration(minutes) * time.Minute, nil
}

func actionErrorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownAction):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTaskNotTracked):
		return http.StatusNotFound
	case errors.Is(err, cycle.ErrActionNotOffered):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
