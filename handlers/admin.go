package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	"mazzeh-api/middleware"
	"mazzeh-api/models"
	"mazzeh-api/statemachine"
)

type ApprovalRequest struct {
	State models.ApprovalState `json:"state" binding:"required,enum"`
}

type UserActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

type ForceOrderStateRequest struct {
	State  models.OrderState `json:"state" binding:"required"`
	Reason string            `json:"reason"`
}

// filteredOrders applies the admin order filters from the query string.
func (h *Handler) filteredOrders(c *gin.Context) *gorm.DB {
	query := h.db.Preload("Items").Preload("User").Preload("Restaurant")
	if state := c.Query("state"); state != "" {
		query = query.Where("state = ?", state)
	}
	if userID := c.Query("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if restaurantID := c.Query("restaurant_id"); restaurantID != "" {
		query = query.Where("restaurant_id = ?", restaurantID)
	}
	return query.Order("order_date desc")
}

// AdminGetAllOrders returns all orders with full detail (admin only)
func (h *Handler) AdminGetAllOrders(c *gin.Context) {
	var orders []models.Order
	if err := h.filteredOrders(c).Preload("StatusHistory").Find(&orders).Error; err != nil {
		h.internalError(c, err, "Failed to load orders")
		return
	}

	// Admin dashboard: aggregate by state
	summary := map[string]int{}
	revenue := decimal.Zero
	for _, o := range orders {
		summary[string(o.State)]++
		if o.State == models.OrderCompleted {
			revenue = revenue.Add(o.TotalPrice)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"order_summary": summary,
		"total_revenue": revenue,
		"count":         len(orders),
		"orders":        orders,
	})
}

// AdminForceOrderState lets an admin move an order along the lifecycle on a restaurant's behalf
func (h *Handler) AdminForceOrderState(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req ForceOrderStateRequest
	if !bindJSON(c, &req) {
		return
	}
	var order models.Order
	if err := h.db.First(&order, orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	previous := order.State
	if !h.transitionOrder(c, &order, req.State, statemachine.ActorAdmin, "[ADMIN OVERRIDE] "+req.Reason) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Order state force-updated by admin",
		"order_id":       order.ID,
		"previous_state": previous,
		"new_state":      order.State,
	})
}

// orderWorkbook lays orders out as a single-sheet spreadsheet.
func orderWorkbook(orders []models.Order) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return nil, err
	}

	headers := []string{
		"ID", "OrderDate", "Customer", "Restaurant", "State",
		"DeliveryMethod", "PaymentMethod", "Items", "TotalPrice", "Description",
	}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().SetValue(h)
	}

	for _, o := range orders {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(o.ID))
		row.AddCell().SetValue(o.OrderDate.Format("2006-01-02 15:04:05"))
		customer := ""
		if o.User != nil {
			customer = o.User.PhoneNumber
		}
		row.AddCell().SetValue(customer)
		restaurant := ""
		if o.Restaurant != nil {
			restaurant = o.Restaurant.Name
		}
		row.AddCell().SetValue(restaurant)
		row.AddCell().SetValue(string(o.State))
		row.AddCell().SetValue(string(o.DeliveryMethod))
		row.AddCell().SetValue(string(o.PaymentMethod))

		var count uint
		for _, it := range o.Items {
			count += it.Count
		}
		row.AddCell().SetInt(int(count))
		row.AddCell().SetValue(o.TotalPrice.StringFixed(2))
		row.AddCell().SetValue(o.Description)
	}
	return file, nil
}

// AdminExportOrders downloads the filtered orders as an xlsx file
func (h *Handler) AdminExportOrders(c *gin.Context) {
	var orders []models.Order
	if err := h.filteredOrders(c).Find(&orders).Error; err != nil {
		h.internalError(c, err, "Failed to fetch orders")
		return
	}

	file, err := orderWorkbook(orders)
	if err != nil {
		h.internalError(c, err, "Failed to create Excel sheet")
		return
	}

	name := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+name)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Expires", "0")
	if err := file.Write(c.Writer); err != nil {
		h.log.WithError(err).Error("failed to write order export")
	}
}

// AdminGetAllUsers returns all users (admin only)
func (h *Handler) AdminGetAllUsers(c *gin.Context) {
	query := h.db.Preload("CustomerProfile").Preload("RestaurantProfile")
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	var users []models.User
	if err := query.Order("id").Find(&users).Error; err != nil {
		h.internalError(c, err, "Failed to load users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(users), "users": users})
}

// AdminDeleteUser removes a user and, through the cascades, everything it owns
func (h *Handler) AdminDeleteUser(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if userID == middleware.GetUserID(c) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot delete your own account"})
		return
	}
	// the cascade takes the user's reviews along, so the scores they fed go stale
	stale, err := h.scores.ReviewerKeys(c.Request.Context(), userID)
	if err != nil {
		h.internalError(c, err, "Failed to delete user")
		return
	}
	res := h.db.Delete(&models.User{}, userID)
	if res.Error != nil {
		h.internalError(c, res.Error, "Failed to delete user")
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err := h.scores.Invalidate(c.Request.Context(), stale...); err != nil {
		h.log.WithError(err).WithField("user_id", userID).Warn("failed to invalidate scores")
	}
	h.log.WithField("user_id", userID).Info("user deleted")
	c.Status(http.StatusNoContent)
}

func (h *Handler) AdminSetUserActive(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UserActiveRequest
	if !bindJSON(c, &req) {
		return
	}
	res := h.db.Model(&models.User{}).Where("id = ?", userID).Update("is_active", *req.IsActive)
	if res.Error != nil {
		h.internalError(c, res.Error, "Failed to update user")
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "is_active": *req.IsActive})
}

// AdminGetAllRestaurants returns all restaurants, optionally filtered by approval state
func (h *Handler) AdminGetAllRestaurants(c *gin.Context) {
	query := h.db
	if state := c.Query("state"); state != "" {
		query = query.Where("state = ?", state)
	}
	var restaurants []models.RestaurantProfile
	if err := query.Order("id").Find(&restaurants).Error; err != nil {
		h.internalError(c, err, "Failed to load restaurants")
		return
	}
	if err := h.scores.FillRestaurants(c.Request.Context(), restaurants); err != nil {
		h.internalError(c, err, "Failed to compute scores")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(restaurants), "restaurants": restaurants})
}

func (h *Handler) setApproval(c *gin.Context, model interface{}, column string, what string) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req ApprovalRequest
	if !bindJSON(c, &req) {
		return
	}

	res := h.db.Model(model).Where(column+" = ?", id).Update("state", req.State)
	if res.Error != nil {
		h.internalError(c, res.Error, "Failed to update "+what)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
		return
	}
	h.log.WithField(column, id).WithField("state", req.State).Info(what + " state changed")
	c.JSON(http.StatusOK, gin.H{"id": id, "state": req.State})
}

// AdminSetRestaurantState approves or rejects a restaurant
func (h *Handler) AdminSetRestaurantState(c *gin.Context) {
	h.setApproval(c, &models.RestaurantProfile{}, "id", "Restaurant")
}

// AdminSetCustomerState approves or rejects a customer; the id is the customer's user id
func (h *Handler) AdminSetCustomerState(c *gin.Context) {
	h.setApproval(c, &models.CustomerProfile{}, "user_id", "Customer")
}
