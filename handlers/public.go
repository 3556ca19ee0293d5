package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mazzeh-api/models"
	"mazzeh-api/statemachine"
)

// approvedRestaurant loads a restaurant visible in the public catalogue.
func (h *Handler) approvedRestaurant(c *gin.Context) (*models.RestaurantProfile, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	var restaurant models.RestaurantProfile
	if err := h.db.Where("state = ?", models.StateApproved).First(&restaurant, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return nil, false
	}
	return &restaurant, true
}

// ListRestaurants returns approved restaurants (public)
func (h *Handler) ListRestaurants(c *gin.Context) {
	query := h.db.Where("state = ?", models.StateApproved)

	if city := c.Query("city"); city != "" {
		query = query.Where("city_name = ?", city)
	}
	if bt := c.Query("business_type"); bt != "" {
		query = query.Where("business_type = ?", bt)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var restaurants []models.RestaurantProfile
	if err := query.Order("name").Find(&restaurants).Error; err != nil {
		h.internalError(c, err, "Failed to load restaurants")
		return
	}
	if err := h.scores.FillRestaurants(c.Request.Context(), restaurants); err != nil {
		h.internalError(c, err, "Failed to compute scores")
		return
	}
	now := time.Now()
	for i := range restaurants {
		restaurants[i].IsOpen = restaurants[i].OpenAt(now)
	}
	if c.Query("open") == "true" {
		open := restaurants[:0]
		for _, r := range restaurants {
			if r.IsOpen {
				open = append(open, r)
			}
		}
		restaurants = open
	}

	c.JSON(http.StatusOK, gin.H{
		"count":       len(restaurants),
		"restaurants": restaurants,
	})
}

// GetRestaurant returns a single restaurant with its available menu
func (h *Handler) GetRestaurant(c *gin.Context) {
	restaurant, ok := h.approvedRestaurant(c)
	if !ok {
		return
	}
	if err := h.db.Where("restaurant_id = ? AND state = ?", restaurant.ID, models.ItemAvailable).
		Order("id").Find(&restaurant.Items).Error; err != nil {
		h.internalError(c, err, "Failed to load items")
		return
	}
	if err := h.scores.FillRestaurant(c.Request.Context(), restaurant); err != nil {
		h.internalError(c, err, "Failed to compute scores")
		return
	}
	restaurant.IsOpen = restaurant.OpenAt(time.Now())
	c.JSON(http.StatusOK, gin.H{"restaurant": restaurant})
}

// GetMenu returns the menu for a specific restaurant (public)
func (h *Handler) GetMenu(c *gin.Context) {
	restaurant, ok := h.approvedRestaurant(c)
	if !ok {
		return
	}

	query := h.db.Where("restaurant_id = ?", restaurant.ID)
	if state := c.Query("state"); state != "" {
		query = query.Where("state = ?", state)
	}
	var items []models.Item
	if err := query.Order("id").Find(&items).Error; err != nil {
		h.internalError(c, err, "Failed to load items")
		return
	}
	if err := h.scores.FillItems(c.Request.Context(), items); err != nil {
		h.internalError(c, err, "Failed to compute scores")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"restaurant": restaurant.Name,
		"count":      len(items),
		"menu":       items,
	})
}

// GetOrderStates publishes the order lifecycle
func (h *Handler) GetOrderStates(c *gin.Context) {
	terminal := []models.OrderState{}
	for _, s := range []models.OrderState{
		models.OrderPending, models.OrderPreparing, models.OrderReadyForPickup,
		models.OrderDelivering, models.OrderCompleted,
	} {
		if statemachine.IsTerminal(s) {
			terminal = append(terminal, s)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   statemachine.GetAllTransitions(),
		"terminal_states": terminal,
		"description":     "Order lifecycle state machine",
	})
}
