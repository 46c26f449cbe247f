package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/daypilot/backend/internal/models"
	"github.com/daypilot/backend/internal/nutrition"
	"github.com/daypilot/backend/internal/service"
	"github.com/daypilot/backend/internal/types"
)

// MenuItemResponse flags items whose food was not found and that carry no
// manual values, so the client can ask the user for them.
type MenuItemResponse struct {
	*models.MenuItem
	NutritionUnknown bool `json:"nutrition_unknown"`
}

func menuItemResponse(item *models.MenuItem) MenuItemResponse {
	return MenuItemResponse{
		MenuItem:         item,
		NutritionUnknown: item.NutritionSource == models.SourceUnknown,
	}
}

// MenuHandler serves the daily menu and the nutrition lookups behind it.
type MenuHandler struct {
	menu service.IMenuService
	log  logrus.FieldLogger
}

func NewMenuHandler(menu service.IMenuService, log logrus.FieldLogger) *MenuHandler {
	return &MenuHandler{menu: menu, log: log.WithField("handler", "menu")}
}

func (h *MenuHandler) RegisterRoutes(router *gin.RouterGroup) {
	menu := router.Group("/menu")
	{
		menu.GET("", h.Daily)
		menu.POST("", h.Create)
		menu.PUT("/:id", h.Update)
		menu.DELETE("/:id", h.Delete)
	}

	n := router.Group("/nutrition")
	{
		n.GET("/lookup", h.Lookup)
		n.POST("/calculate", h.Calculate)
		n.GET("/units", h.Units)
		n.GET("/custom-foods", h.ListCustomFoods)
		n.POST("/custom-foods", h.CreateCustomFood)
		n.DELETE("/custom-foods/:id", h.DeleteCustomFood)
	}
}

// Daily returns every menu item ordered by time with totals and slot groups.
func (h *MenuHandler) Daily(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	daily, err := h.menu.Daily(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, daily)
}

func (h *MenuHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req types.MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	item, err := h.menu.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, menuItemResponse(item))
}

func (h *MenuHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req types.MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	item, err := h.menu.Update(c.Request.Context(), userID, id, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, menuItemResponse(item))
}

func (h *MenuHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.menu.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Lookup resolves ?food= against the user's custom foods and the reference
// table. An unknown food is a 200 with found=false.
func (h *MenuHandler) Lookup(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	res, err := h.menu.Lookup(c.Request.Context(), userID, c.Query("food"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *MenuHandler) Calculate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req types.CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.menu.Calculate(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *MenuHandler) Units(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"units": nutrition.FoodUnits})
}

func (h *MenuHandler) ListCustomFoods(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	foods, err := h.menu.ListCustomFoods(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, foods)
}

func (h *MenuHandler) CreateCustomFood(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req types.CustomFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	food, err := h.menu.CreateCustomFood(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, food)
}

func (h *MenuHandler) DeleteCustomFood(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.menu.DeleteCustomFood(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
