package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/daypilot/backend/internal/service"
	"github.com/daypilot/backend/internal/types"
)

type MealHandler struct {
	meals service.IMealService
	log   logrus.FieldLogger
}

func NewMealHandler(meals service.IMealService, log logrus.FieldLogger) *MealHandler {
	return &MealHandler{meals: meals, log: log.WithField("handler", "meals")}
}

func (h *MealHandler) RegisterRoutes(router *gin.RouterGroup) {
	meals := router.Group("/meals")
	{
		meals.GET("", h.List)
		meals.POST("", h.Create)
		meals.GET("/by-type", h.ByType)
		meals.PATCH("/:id", h.Update)
		meals.DELETE("/:id", h.Delete)
	}
}

func (h *MealHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	meals, err := h.meals.List(c.Request.Context(), userID, c.Query("date"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, meals)
}

func (h *MealHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req types.MealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	meal, err := h.meals.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, meal)
}

func (h *MealHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req types.UpdateMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	meal, err := h.meals.Update(c.Request.Context(), userID, id, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, meal)
}

func (h *MealHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.meals.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MealHandler) ByType(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	groups, err := h.meals.ByType(c.Request.Context(), userID, c.Query("date"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}
