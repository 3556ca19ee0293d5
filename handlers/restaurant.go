package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"mazzeh-api/media"
	"mazzeh-api/models"
)

// ── Restaurant Management ────────────────────────────────────────────────────

type UpdateRestaurantRequest struct {
	Name          *string              `json:"name" binding:"omitempty,max=255"`
	BusinessType  *models.BusinessType `json:"business_type" binding:"omitempty,enum"`
	CityName      *string              `json:"city_name" binding:"omitempty,max=255"`
	DeliveryPrice *decimal.Decimal     `json:"delivery_price"`
	Address       *string              `json:"address"`
	Description   *string              `json:"description"`
	OpenHour      *string              `json:"open_hour"`
	CloseHour     *string              `json:"close_hour"`
	Latitude      *decimal.Decimal     `json:"latitude"`
	Longitude     *decimal.Decimal     `json:"longitude"`
}

type CreateItemRequest struct {
	Name        string           `json:"name" binding:"required,max=100"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	Discount    uint             `json:"discount" binding:"max=100"`
	Description string           `json:"description"`
	State       models.ItemState `json:"state" binding:"omitempty,enum"`
}

type UpdateItemRequest struct {
	Name        *string           `json:"name" binding:"omitempty,max=100"`
	Price       *decimal.Decimal  `json:"price"`
	Discount    *uint             `json:"discount" binding:"omitempty,max=100"`
	Description *string           `json:"description"`
	State       *models.ItemState `json:"state" binding:"omitempty,enum"`
}

// parseHour accepts "HH:MM" or "HH:MM:SS".
func parseHour(s string) (datatypes.Time, bool) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return datatypes.NewTime(t.Hour(), t.Minute(), t.Second(), 0), true
		}
	}
	return 0, false
}

func nonNegative(c *gin.Context, field string, v decimal.Decimal) bool {
	if v.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{field: []string{"Ensure this value is greater than or equal to 0."}})
		return false
	}
	return true
}

// GetMyRestaurant fetches the restaurant owned by the logged-in manager
func (h *Handler) GetMyRestaurant(c *gin.Context) {
	restaurant, ok := h.managedRestaurant(c)
	if !ok {
		return
	}
	if err := h.db.Where("restaurant_id = ?", restaurant.ID).Find(&restaurant.Items).Error; err != nil {
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

// UpdateRestaurant updates restaurant details. The approval state is left to admins.
func (h *Handler) UpdateRestaurant(c *gin.Context) {
	restaurant, ok := h.managedRestaurant(c)
	if !ok {
		return
	}
	var req UpdateRestaurantRequest
	if !bindJSON(c, &req) {
		return
	}

	update := map[string]interface{}{}
	if req.Name != nil {
		update["name"] = *req.Name
	}
	if req.BusinessType != nil {
		update["business_type"] = *req.BusinessType
	}
	if req.CityName != nil {
		update["city_name"] = *req.CityName
	}
	if req.DeliveryPrice != nil {
		if !nonNegative(c, "delivery_price", *req.DeliveryPrice) {
			return
		}
		update["delivery_price"] = *req.DeliveryPrice
	}
	if req.Address != nil {
		update["address"] = *req.Address
	}
	if req.Description != nil {
		update["description"] = *req.Description
	}
	hours := []struct {
		field string
		raw   *string
	}{
		{"open_hour", req.OpenHour},
		{"close_hour", req.CloseHour},
	}
	for _, hr := range hours {
		if hr.raw == nil {
			continue
		}
		hour, valid := parseHour(*hr.raw)
		if !valid {
			c.JSON(http.StatusBadRequest, gin.H{hr.field: []string{"Time has wrong format. Use one of these formats instead: hh:mm[:ss]."}})
			return
		}
		update[hr.field] = hour
	}
	if req.Latitude != nil {
		if !validCoordinate(*req.Latitude, 90) {
			c.JSON(http.StatusBadRequest, gin.H{"latitude": []string{"Ensure this value is between -90 and 90."}})
			return
		}
		update["latitude"] = decimal.NewNullDecimal(*req.Latitude)
	}
	if req.Longitude != nil {
		if !validCoordinate(*req.Longitude, 180) {
			c.JSON(http.StatusBadRequest, gin.H{"longitude": []string{"Ensure this value is between -180 and 180."}})
			return
		}
		update["longitude"] = decimal.NewNullDecimal(*req.Longitude)
	}

	if len(update) > 0 {
		if err := h.db.Model(restaurant).Updates(update).Error; err != nil {
			h.internalError(c, err, "Failed to update restaurant")
			return
		}
	}
	h.db.First(restaurant, restaurant.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Restaurant updated", "restaurant": restaurant})
}

// savePhoto stores the multipart "photo" field, answering 400 when it is missing or refused.
func (h *Handler) savePhoto(c *gin.Context, dir string) (string, bool) {
	fh, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"photo": []string{"No file was submitted."}})
		return "", false
	}
	url, err := h.media.SavePhoto(fh, dir)
	if err != nil {
		var perr *media.PhotoError
		if errors.As(err, &perr) {
			c.JSON(http.StatusBadRequest, gin.H{"photo": []string{perr.Message}})
			return "", false
		}
		h.internalError(c, err, "Failed to save photo")
		return "", false
	}
	return url, true
}

func (h *Handler) removePhoto(url string) {
	if err := h.media.Remove(url); err != nil {
		h.log.WithError(err).WithField("photo", url).Warn("failed to remove old photo")
	}
}

func (h *Handler) UploadRestaurantPhoto(c *gin.Context) {
	restaurant, ok := h.managedRestaurant(c)
	if !ok {
		return
	}
	url, ok := h.savePhoto(c, media.RestaurantPhotos)
	if !ok {
		return
	}
	previous := restaurant.Photo
	if err := h.db.Model(restaurant).Update("photo", url).Error; err != nil {
		h.removePhoto(url)
		h.internalError(c, err, "Failed to update restaurant")
		return
	}
	h.removePhoto(previous)
	c.JSON(http.StatusOK, gin.H{"photo": url})
}

// ── Menu Management ──────────────────────────────────────────────────────────

func (h *Handler) ListMyItems(c *gin.Context) {
	restaurant, ok := h.managedRestaurant(c)
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
	c.JSON(http.StatusOK, gin.H{"count": len(items), "items": items})
}

// AddItem adds an item to the manager's menu
func (h *Handler) AddItem(c *gin.Context) {
	restaurant, ok := h.managedRestaurant(c)
	if !ok {
		return
	}
	var req CreateItemRequest
	if !bindJSON(c, &req) {
		return
	}
	if !nonNegative(c, "price", *req.Price) {
		return
	}

	item := models.Item{
		RestaurantID: restaurant.ID,
		Name:         req.Name,
		Price:        *req.Price,
		Discount:     req.Discount,
		Description:  req.Description,
		State:        req.State,
	}
	if item.State == "" {
		item.State = models.ItemAvailable
	}
	if err := h.db.Create(&item).Error; err != nil {
		h.internalError(c, err, "Failed to add item")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Item added", "item": item})
}

// ownItem loads an item and checks it belongs to the manager's restaurant.
func (h *Handler) ownItem(c *gin.Context) (*models.Item, bool) {
	restaurant, ok := h.managedRestaurant(c)
	if !ok {
		return nil, false
	}
	itemID, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	var item models.Item
	if err := h.db.First(&item, itemID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return nil, false
	}
	if item.RestaurantID != restaurant.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This item does not belong to your restaurant"})
		return nil, false
	}
	return &item, true
}

func (h *Handler) UpdateItem(c *gin.Context) {
	item, ok := h.ownItem(c)
	if !ok {
		return
	}
	var req UpdateItemRequest
	if !bindJSON(c, &req) {
		return
	}

	update := map[string]interface{}{}
	if req.Name != nil {
		update["name"] = *req.Name
	}
	if req.Price != nil {
		if !nonNegative(c, "price", *req.Price) {
			return
		}
		update["price"] = *req.Price
	}
	if req.Discount != nil {
		update["discount"] = *req.Discount
	}
	if req.Description != nil {
		update["description"] = *req.Description
	}
	if req.State != nil {
		update["state"] = *req.State
	}
	if len(update) > 0 {
		if err := h.db.Model(item).Updates(update).Error; err != nil {
			h.internalError(c, err, "Failed to update item")
			return
		}
	}
	h.db.First(item, item.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Item updated", "item": item})
}

func (h *Handler) DeleteItem(c *gin.Context) {
	item, ok := h.ownItem(c)
	if !ok {
		return
	}
	if err := h.db.Delete(item).Error; err != nil {
		h.internalError(c, err, "Failed to delete item")
		return
	}
	h.removePhoto(item.Photo)
	c.JSON(http.StatusOK, gin.H{"message": "Item deleted"})
}

func (h *Handler) UploadItemPhoto(c *gin.Context) {
	item, ok := h.ownItem(c)
	if !ok {
		return
	}
	url, ok := h.savePhoto(c, media.ItemPhotos)
	if !ok {
		return
	}
	previous := item.Photo
	if err := h.db.Model(item).Update("photo", url).Error; err != nil {
		h.removePhoto(url)
		h.internalError(c, err, "Failed to update item")
		return
	}
	h.removePhoto(previous)
	c.JSON(http.StatusOK, gin.H{"photo": url})
}
