package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/daypilot/backend/internal/models"
	"github.com/daypilot/backend/internal/service"
	"github.com/daypilot/backend/internal/types"
)

// TaskHandler serves the task list and its priority/learn/company views.
type TaskHandler struct {
	tasks service.ITaskService
	log   logrus.FieldLogger
}

func NewTaskHandler(tasks service.ITaskService, log logrus.FieldLogger) *TaskHandler {
	return &TaskHandler{tasks: tasks, log: log.WithField("handler", "tasks")}
}

func (h *TaskHandler) RegisterRoutes(router *gin.RouterGroup) {
	tasks := router.Group("/tasks")
	{
		tasks.GET("", h.List)
		tasks.POST("", h.Create)
		tasks.GET("/priority", h.Priority)
		tasks.GET("/learn", h.category(models.CategoryLearn))
		tasks.GET("/company", h.category(models.CategoryCompany))
		tasks.GET("/grouped", h.Grouped)
		tasks.GET("/:id", h.Get)
		tasks.PATCH("/:id", h.Update)
		tasks.DELETE("/:id", h.Delete)
		tasks.POST("/:id/complete", h.Complete)
		tasks.POST("/:id/priority", h.SetPriority)
	}
}

// List returns the tasks of ?date=, or every task when no date is given.
func (h *TaskHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	tasks, err := h.tasks.List(c.Request.Context(), userID, c.Query("date"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req types.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req types.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), userID, id, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TaskHandler) Complete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req types.CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	task, err := h.tasks.SetCompleted(c.Request.Context(), userID, id, *req.Completed)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) SetPriority(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req types.PriorityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	task, err := h.tasks.SetPriority(c.Request.Context(), userID, id, *req.Priority)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Priority(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	tasks, err := h.tasks.Priority(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) category(category string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}

		tasks, err := h.tasks.ByCategory(c.Request.Context(), userID, category)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, tasks)
	}
}

func (h *TaskHandler) Grouped(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	groups, err := h.tasks.Grouped(c.Request.Context(), userID, c.Query("date"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}
