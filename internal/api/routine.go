package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/daypilot/backend/internal/service"
	"github.com/daypilot/backend/internal/types"
)

// RoutineHandler serves the per-day routine timeline.
type RoutineHandler struct {
	routines service.IRoutineService
	log      logrus.FieldLogger
}

func NewRoutineHandler(routines service.IRoutineService, log logrus.FieldLogger) *RoutineHandler {
	return &RoutineHandler{routines: routines, log: log.WithField("handler", "routines")}
}

func (h *RoutineHandler) RegisterRoutes(router *gin.RouterGroup) {
	day := router.Group("/routines/:date")
	{
		day.GET("", h.Get)
		day.POST("/reset", h.Reset)
		day.GET("/stats", h.Stats)
		day.GET("/current", h.Current)
		day.POST("/blocks", h.AddBlock)
		day.PATCH("/blocks/:blockId", h.UpdateBlock)
		day.DELETE("/blocks/:blockId", h.DeleteBlock)
		day.POST("/blocks/:blockId/complete", h.Complete)
		day.POST("/blocks/:blockId/priority", h.SetPriority)
	}
}

// Get returns the routine for :date, creating the default one on first read.
func (h *RoutineHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	r, err := h.routines.Get(c.Request.Context(), userID, c.Param("date"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *RoutineHandler) update(c *gin.Context, req *types.UpdateBlockRequest) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	block, err := h.routines.UpdateBlock(c.Request.Context(), userID, c.Param("date"), c.Param("blockId"), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, block)
}

func (h *RoutineHandler) UpdateBlock(c *gin.Context) {
	var req types.UpdateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.update(c, &req)
}

func (h *RoutineHandler) Complete(c *gin.Context) {
	var req types.CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.update(c, &types.UpdateBlockRequest{Version: req.Version, Completed: req.Completed})
}

func (h *RoutineHandler) SetPriority(c *gin.Context) {
	var req types.PriorityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.update(c, &types.UpdateBlockRequest{Version: req.Version, Priority: req.Priority})
}

func (h *RoutineHandler) DeleteBlock(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.routines.DeleteBlock(c.Request.Context(), userID, c.Param("date"), c.Param("blockId")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RoutineHandler) AddBlock(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req types.AddBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	block, err := h.routines.AddBlock(c.Request.Context(), userID, c.Param("date"), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, block)
}

func (h *RoutineHandler) Reset(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	r, err := h.routines.Reset(c.Request.Context(), userID, c.Param("date"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *RoutineHandler) Stats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.routines.Stats(c.Request.Context(), userID, c.Param("date"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Current returns the block containing ?at= (HH:mm), defaulting to now.
func (h *RoutineHandler) Current(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	block, err := h.routines.Current(c.Request.Context(), userID, c.Param("date"), c.Query("at"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, block)
}
