package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"mazzeh-api/middleware"
	"mazzeh-api/models"
)

var (
	errEmptyCart          = errors.New("cart is empty")
	errRestaurantInactive = errors.New("restaurant is not approved")
)

type PlaceOrderRequest struct {
	RestaurantID   uint                  `json:"restaurant_id" binding:"required"`
	DeliveryMethod models.DeliveryMethod `json:"delivery_method" binding:"omitempty,enum"`
	PaymentMethod  models.PaymentMethod  `json:"payment_method" binding:"omitempty,enum"`
	Description    string                `json:"description"`
}

type ReviewRequest struct {
	Score       uint8  `json:"score" binding:"required,min=1,max=5"`
	Description string `json:"description"`
}

// PlaceOrder turns the caller's cart at a restaurant into an order and empties the cart.
func (h *Handler) PlaceOrder(c *gin.Context) {
	cust, ok := h.customer(c)
	if !ok {
		return
	}
	if !cust.CanOrder() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Your account is not approved for ordering."})
		return
	}

	var req PlaceOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.DeliveryMethod == "" {
		req.DeliveryMethod = models.DeliveryPickup
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = models.PaymentInPerson
	}

	var order models.Order
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var restaurant models.RestaurantProfile
		if err := tx.First(&restaurant, req.RestaurantID).Error; err != nil {
			return err
		}
		if restaurant.State != models.StateApproved {
			return errRestaurantInactive
		}

		var cart models.Cart
		err := tx.Preload("Items.Item").
			Where("user_id = ? AND restaurant_id = ?", cust.User.ID, restaurant.ID).
			First(&cart).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errEmptyCart
		}
		if err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return errEmptyCart
		}

		items := make([]models.OrderItem, 0, len(cart.Items))
		for _, line := range cart.Items {
			name := ""
			if line.Item != nil {
				name = line.Item.Name
			}
			items = append(items, models.OrderItem{
				ItemID:   line.ItemID,
				Name:     name,
				Count:    line.Count,
				Price:    line.Price,
				Discount: line.Discount,
			})
		}

		total := cart.Total()
		if req.DeliveryMethod == models.DeliveryDelivery {
			total = total.Add(restaurant.DeliveryPrice)
		}

		order = models.Order{
			UserID:         cust.User.ID,
			RestaurantID:   restaurant.ID,
			TotalPrice:     total,
			State:          models.OrderPending,
			DeliveryMethod: req.DeliveryMethod,
			PaymentMethod:  req.PaymentMethod,
			Description:    req.Description,
			Items:          items,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		history := models.OrderStatusHistory{
			OrderID:   order.ID,
			ToState:   models.OrderPending,
			ChangedBy: cust.User.ID,
			Note:      "Order placed by customer",
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&cart).Error
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	case errors.Is(err, errRestaurantInactive):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Restaurant is not accepting orders"})
		return
	case errors.Is(err, errEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Your cart for this restaurant is empty."})
		return
	case err != nil:
		h.internalError(c, err, "Failed to place order")
		return
	}

	h.db.Preload("Items").Preload("Restaurant").Preload("StatusHistory").First(&order, order.ID)
	h.log.WithFields(logrus.Fields{"order_id": order.ID, "user_id": cust.User.ID}).Info("order placed")

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"order":   order,
	})
}

// ReviewOrder records the caller's verdict on one of its completed orders.
func (h *Handler) ReviewOrder(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req ReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	userID := middleware.GetUserID(c)

	var order models.Order
	if err := h.db.First(&order, orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if order.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This order does not belong to you"})
		return
	}
	if order.State != models.OrderCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only completed orders can be reviewed."})
		return
	}

	review := models.Review{
		UserID:      userID,
		OrderID:     order.ID,
		Score:       req.Score,
		Description: req.Description,
	}
	if err := h.db.Create(&review).Error; err != nil {
		if isDuplicate(err) {
			uniqueTogether(c, "user", "order")
			return
		}
		h.internalError(c, err, "Failed to save review")
		return
	}

	if err := h.scores.InvalidateOrder(c.Request.Context(), order.ID); err != nil {
		h.log.WithError(err).WithField("order_id", order.ID).Warn("failed to invalidate scores")
	}
	c.JSON(http.StatusCreated, gin.H{"review": review})
}
