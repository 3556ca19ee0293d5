package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"mazzeh-api/middleware"
	"mazzeh-api/models"
	"mazzeh-api/statemachine"
)

var errStaleOrder = errors.New("order state changed concurrently")

type UpdateOrderStateRequest struct {
	State models.OrderState `json:"state" binding:"required"`
	Note  string            `json:"note"`
}

// GetRestaurantOrders returns all orders placed at the manager's restaurant
func (h *Handler) GetRestaurantOrders(c *gin.Context) {
	restaurant, ok := h.managedRestaurant(c)
	if !ok {
		return
	}

	query := h.db.Preload("Items").Preload("User").Where("restaurant_id = ?", restaurant.ID)
	if state := c.Query("state"); state != "" {
		query = query.Where("state = ?", state)
	}
	var orders []models.Order
	if err := query.Order("order_date desc").Find(&orders).Error; err != nil {
		h.internalError(c, err, "Failed to load orders")
		return
	}

	// Group counts by state for the dashboard
	summary := map[string]int{}
	for _, o := range orders {
		summary[string(o.State)]++
	}

	c.JSON(http.StatusOK, gin.H{
		"restaurant":    restaurant.Name,
		"order_summary": summary,
		"count":         len(orders),
		"orders":        orders,
	})
}

// transitionOrder moves order to the requested state and records the change.
func (h *Handler) transitionOrder(c *gin.Context, order *models.Order, to models.OrderState, actor statemachine.Actor, note string) bool {
	if err := statemachine.CanTransition(order.State, to, order.DeliveryMethod, actor); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":             "Invalid state transition",
			"current_state":     order.State,
			"requested":         to,
			"reason":            err.Error(),
			"valid_next_states": statemachine.ValidTransitionsFrom(order.State, order.DeliveryMethod),
		})
		return false
	}

	from := order.State
	err := h.db.Transaction(func(tx *gorm.DB) error {
		// Guard against a concurrent change between load and update.
		res := tx.Model(&models.Order{}).
			Where("id = ? AND state = ?", order.ID, from).
			Update("state", to)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errStaleOrder
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:   order.ID,
			FromState: from,
			ToState:   to,
			ChangedBy: middleware.GetUserID(c),
			Note:      note,
		}).Error
	})
	if errors.Is(err, errStaleOrder) {
		c.JSON(http.StatusConflict, gin.H{"error": "Order state changed meanwhile, reload and retry"})
		return false
	}
	if err != nil {
		h.internalError(c, err, "Failed to update order state")
		return false
	}
	order.State = to

	h.log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"from":     from,
		"to":       to,
		"actor":    actor,
	}).Info("order state changed")
	return true
}

// UpdateOrderState handles the restaurant's state transitions
func (h *Handler) UpdateOrderState(c *gin.Context) {
	restaurant, ok := h.managedRestaurant(c)
	if !ok {
		return
	}
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var order models.Order
	if err := h.db.First(&order, orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if order.RestaurantID != restaurant.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This order does not belong to your restaurant"})
		return
	}

	var req UpdateOrderStateRequest
	if !bindJSON(c, &req) {
		return
	}

	previous := order.State
	if !h.transitionOrder(c, &order, req.State, statemachine.ActorRestaurant, req.Note) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Order state updated",
		"order_id":       order.ID,
		"previous_state": previous,
		"current_state":  order.State,
	})
}
