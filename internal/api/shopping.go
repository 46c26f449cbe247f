package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/daypilot/backend/internal/models"
	"github.com/daypilot/backend/internal/service"
	"github.com/daypilot/backend/internal/types"
)

// ShoppingHandler serves the shopping list and the reminders list.
type ShoppingHandler struct {
	shopping service.IShoppingService
	log      logrus.FieldLogger
}

func NewShoppingHandler(shopping service.IShoppingService, log logrus.FieldLogger) *ShoppingHandler {
	return &ShoppingHandler{shopping: shopping, log: log.WithField("handler", "shopping")}
}

func (h *ShoppingHandler) RegisterRoutes(router *gin.RouterGroup) {
	shopping := router.Group("/shopping")
	{
		shopping.GET("/options", h.Options)

		shopping.GET("/items", h.ListItems)
		shopping.POST("/items", h.CreateItem)
		shopping.GET("/items/by-category", h.ItemsByCategory)
		shopping.GET("/items/stats", h.ItemStats)
		shopping.POST("/items/clear-purchased", h.ClearPurchased)
		shopping.PATCH("/items/:id", h.UpdateItem)
		shopping.DELETE("/items/:id", h.DeleteItem)
		shopping.POST("/items/:id/purchased", h.SetPurchased)

		shopping.GET("/reminders", h.ListReminders)
		shopping.POST("/reminders", h.CreateReminder)
		shopping.GET("/reminders/stats", h.ReminderStats)
		shopping.POST("/reminders/clear-bought", h.ClearBought)
		shopping.PATCH("/reminders/:id", h.UpdateReminder)
		shopping.DELETE("/reminders/:id", h.DeleteReminder)
		shopping.POST("/reminders/:id/need-to-buy", h.SetNeedToBuy)
	}
}

// Options lists the accepted units and categories for the item form.
func (h *ShoppingHandler) Options(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"units":      models.ShoppingUnits,
		"categories": models.ShoppingCategories,
	})
}

func (h *ShoppingHandler) ListItems(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	items, err := h.shopping.ListItems(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *ShoppingHandler) CreateItem(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req types.ShoppingItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	item, err := h.shopping.CreateItem(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *ShoppingHandler) UpdateItem(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req types.UpdateShoppingItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	item, err := h.shopping.UpdateItem(c.Request.Context(), userID, id, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *ShoppingHandler) DeleteItem(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.shopping.DeleteItem(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ShoppingHandler) SetPurchased(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req types.PurchasedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	item, err := h.shopping.SetPurchased(c.Request.Context(), userID, id, *req.Purchased)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *ShoppingHandler) ClearPurchased(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	n, err := h.shopping.ClearPurchased(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": n})
}

func (h *ShoppingHandler) ItemsByCategory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	groups, err := h.shopping.ItemsByCategory(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

func (h *ShoppingHandler) ItemStats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.shopping.ItemStats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *ShoppingHandler) ListReminders(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	reminders, err := h.shopping.ListReminders(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, reminders)
}

func (h *ShoppingHandler) CreateReminder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req types.ReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var name, quantity string
	if req.Name != nil {
		name = *req.Name
	}
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	reminder, err := h.shopping.CreateReminder(c.Request.Context(), userID, name, quantity)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, reminder)
}

func (h *ShoppingHandler) UpdateReminder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req types.ReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	reminder, err := h.shopping.UpdateReminder(c.Request.Context(), userID, id, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, reminder)
}

func (h *ShoppingHandler) SetNeedToBuy(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req types.NeedToBuyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	reminder, err := h.shopping.SetNeedToBuy(c.Request.Context(), userID, id, *req.NeedToBuy)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, reminder)
}

func (h *ShoppingHandler) DeleteReminder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.shopping.DeleteReminder(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ShoppingHandler) ClearBought(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	n, err := h.shopping.ClearBought(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": n})
}

func (h *ShoppingHandler) ReminderStats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.shopping.ReminderStats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
