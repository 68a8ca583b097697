// Package planfixstub serves a fake Planfix task list endpoint backed by
// in-memory storage. It is used by tests and by the stub-server command.
package planfixstub

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-task-reminder/internal/infra/planfix"
)

type Handler struct {
	storage *TaskStorage
	token   string
}

func NewHandler(storage *TaskStorage, token string) *Handler {
	return &Handler{storage: storage, token: token}
}

// NewRouter mounts the fake API under /rest and the control endpoints
// under /stub.
func NewRouter(storage *TaskStorage, token string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	h := NewHandler(storage, token)

	r := gin.New()
	r.POST("/rest/task/list", h.HandleTaskList)
	r.POST("/stub/seed", h.HandleSeed)
	r.POST("/stub/reset", h.HandleReset)
	r.POST("/stub/failure", h.HandleFailure)
	r.DELETE("/stub/tasks/:id", h.HandleDeleteTask)
	return r
}

func (h *Handler) HandleTaskList(c *gin.Context) {
	if h.token != "" && c.GetHeader("Authorization") != "Bearer "+h.token {
		c.JSON(http.StatusUnauthorized, gin.H{"result": "fail", "error": "invalid token"})
		return
	}

	if status, message := h.storage.failure(); status != 0 || message != "" {
		if status == 0 {
			c.JSON(http.StatusOK, planfix.TaskListResponse{Result: "fail", Error: message})
			return
		}
		c.JSON(status, gin.H{"result": "fail", "error": message})
		return
	}

	var req planfix.TaskListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"result": "fail", "error": err.Error()})
		return
	}

	tasks := h.storage.List(req.Filters, req.Offset, req.PageSize)

	slog.Debug("task list",
		slog.Int("offset", req.Offset),
		slog.Int("page_size", req.PageSize),
		slog.Int("filter_count", len(req.Filters)),
		slog.Int("count", len(tasks)),
	)

	c.JSON(http.StatusOK, planfix.TaskListResponse{Result: "success", Tasks: tasks})
}

func (h *Handler) HandleSeed(c *gin.Context) {
	var req SeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tasks := make([]planfix.TaskResponse, 0, len(req.Tasks))
	for _, st := range req.Tasks {
		tasks = append(tasks, ToResponse(st))
	}
	h.storage.Add(tasks...)

	slog.Info("seeded tasks", slog.Int("task_count", len(tasks)))

	c.JSON(http.StatusOK, gin.H{
		"status":     "seeded",
		"task_count": len(tasks),
	})
}

func (h *Handler) HandleReset(c *gin.Context) {
	h.storage.Reset()

	slog.Info("reset tasks")

	c.JSON(http.StatusOK, gin.H{"status": "reset complete"})
}

func (h *Handler) HandleFailure(c *gin.Context) {
	var req FailureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.storage.SetFailure(req.Status, req.Message)

	slog.Info("failure injection updated",
		slog.Int("status", req.Status),
		slog.String("message", req.Message),
	)

	c.Status(http.StatusNoContent)
}

func (h *Handler) HandleDeleteTask(c *gin.Context) {
	if !h.storage.Remove(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// ToResponse builds the API record for a seeded task.
func ToResponse(st SeedTask) planfix.TaskResponse {
	resp := planfix.TaskResponse{
		ID:       []byte(strconv.Itoa(st.ID)),
		Name:     st.Name,
		Priority: st.Priority,
		Overdue:  st.Overdue,
	}
	if st.Status != "" {
		resp.Status = &planfix.StatusResponse{Name: st.Status}
	}
	if st.EndDate != "" {
		resp.EndDateTime = &planfix.DateTime{Date: st.EndDate, Time: st.EndTime}
	}
	if len(st.Assignees) > 0 {
		resp.Assignees = people(st.Assignees)
	}
	if len(st.Auditors) > 0 {
		resp.Auditors = people(st.Auditors)
	}
	if st.Assigner != "" {
		resp.Assigner = &planfix.PersonResponse{ID: st.Assigner}
	}
	return resp
}

func people(ids []string) *planfix.PeopleResponse {
	users := make([]planfix.PersonResponse, 0, len(ids))
	for _, id := range ids {
		users = append(users, planfix.PersonResponse{ID: id, Name: id})
	}
	return &planfix.PeopleResponse{Users: users}
}
