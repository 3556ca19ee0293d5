package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"mazzeh-api/middleware"
	"mazzeh-api/models"
)

type UpdateCustomerProfileRequest struct {
	Address   *string          `json:"address"`
	Latitude  *decimal.Decimal `json:"latitude"`
	Longitude *decimal.Decimal `json:"longitude"`
	State     *string          `json:"state"`
}

type FavoriteRequest struct {
	RestaurantID uint `json:"restaurant_id" binding:"required"`
}

// GetCustomerProfile returns the caller's customer profile
func (h *Handler) GetCustomerProfile(c *gin.Context) {
	cust, ok := h.customer(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": cust.User, "profile": cust.Profile})
}

// UpdateCustomerProfile edits address and coordinates. The approval state is not client editable here.
func (h *Handler) UpdateCustomerProfile(c *gin.Context) {
	cust, ok := h.customer(c)
	if !ok {
		return
	}
	var req UpdateCustomerProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.State != nil {
		c.JSON(http.StatusBadRequest, gin.H{"state": []string{"This field is read-only."}})
		return
	}

	updates := map[string]interface{}{}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Latitude != nil {
		if !validCoordinate(*req.Latitude, 90) {
			c.JSON(http.StatusBadRequest, gin.H{"latitude": []string{"Ensure this value is between -90 and 90."}})
			return
		}
		updates["latitude"] = decimal.NewNullDecimal(*req.Latitude)
	}
	if req.Longitude != nil {
		if !validCoordinate(*req.Longitude, 180) {
			c.JSON(http.StatusBadRequest, gin.H{"longitude": []string{"Ensure this value is between -180 and 180."}})
			return
		}
		updates["longitude"] = decimal.NewNullDecimal(*req.Longitude)
	}
	if len(updates) > 0 {
		if err := h.db.Model(cust.Profile).Updates(updates).Error; err != nil {
			h.internalError(c, err, "Failed to update profile")
			return
		}
	}

	var profile models.CustomerProfile
	h.db.First(&profile, "user_id = ?", cust.User.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "profile": profile})
}

func validCoordinate(v decimal.Decimal, bound int64) bool {
	limit := decimal.NewFromInt(bound)
	return v.LessThanOrEqual(limit) && v.GreaterThanOrEqual(limit.Neg())
}

// ListFavorites returns the restaurants the caller marked as favorite
func (h *Handler) ListFavorites(c *gin.Context) {
	var favorites []models.Favorite
	if err := h.db.Preload("Restaurant").
		Where("user_id = ?", middleware.GetUserID(c)).
		Order("created_at desc").
		Find(&favorites).Error; err != nil {
		h.internalError(c, err, "Failed to load favorites")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(favorites), "favorites": favorites})
}

func (h *Handler) AddFavorite(c *gin.Context) {
	var req FavoriteRequest
	if !bindJSON(c, &req) {
		return
	}

	var restaurant models.RestaurantProfile
	if err := h.db.First(&restaurant, req.RestaurantID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}

	favorite := models.Favorite{UserID: middleware.GetUserID(c), RestaurantID: restaurant.ID}
	if err := h.db.Create(&favorite).Error; err != nil {
		if isDuplicate(err) {
			uniqueTogether(c, "user", "restaurant")
			return
		}
		h.internalError(c, err, "Failed to add favorite")
		return
	}
	favorite.Restaurant = &restaurant
	c.JSON(http.StatusCreated, gin.H{"favorite": favorite})
}

func (h *Handler) RemoveFavorite(c *gin.Context) {
	restaurantID, ok := paramID(c, "restaurant_id")
	if !ok {
		return
	}
	res := h.db.Where("user_id = ? AND restaurant_id = ?", middleware.GetUserID(c), restaurantID).
		Delete(&models.Favorite{})
	if res.Error != nil {
		h.internalError(c, res.Error, "Failed to remove favorite")
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Favorite not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// GetMyOrders returns all orders for the logged-in customer
func (h *Handler) GetMyOrders(c *gin.Context) {
	query := h.db.Preload("Items").Preload("Restaurant").
		Where("user_id = ?", middleware.GetUserID(c))
	if state := c.Query("state"); state != "" {
		query = query.Where("state = ?", state)
	}

	var orders []models.Order
	if err := query.Order("order_date desc").Find(&orders).Error; err != nil {
		h.internalError(c, err, "Failed to load orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// GetOrderDetail returns a single order's full detail with history
func (h *Handler) GetOrderDetail(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var order models.Order
	err := h.db.Preload("Items").Preload("Restaurant").Preload("StatusHistory").First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if err != nil {
		h.internalError(c, err, "Failed to load order")
		return
	}
	if order.UserID != middleware.GetUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "This order does not belong to you"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}
