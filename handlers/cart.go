package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"mazzeh-api/middleware"
	"mazzeh-api/models"
)

// MaxLineCount caps how many units of one item a cart line may hold.
const MaxLineCount = 1000

var (
	errNotYours     = errors.New("resource belongs to another user")
	errLineTooLarge = errors.New("cart line count over limit")
)

type CreateCartRequest struct {
	RestaurantID uint `json:"restaurant_id" binding:"required"`
}

type AddCartItemRequest struct {
	ItemID uint `json:"item_id" binding:"required"`
	Count  uint `json:"count" binding:"required,min=1,max=1000"`
}

type UpdateCartItemRequest struct {
	Count uint `json:"count" binding:"required,min=1,max=1000"`
}

// recalcCart stores the sum of the cart's lines as its total.
func recalcCart(tx *gorm.DB, cartID uint) error {
	var cart models.Cart
	if err := tx.Preload("Items").First(&cart, cartID).Error; err != nil {
		return err
	}
	return tx.Model(&models.Cart{}).Where("id = ?", cartID).Update("total_price", cart.Total()).Error
}

func (h *Handler) loadCart(userID, restaurantID uint) (*models.Cart, error) {
	var cart models.Cart
	err := h.db.Preload("Items.Item").Preload("Restaurant").
		Where("user_id = ? AND restaurant_id = ?", userID, restaurantID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// CreateCart opens an empty cart at a restaurant. A user keeps one cart per restaurant.
func (h *Handler) CreateCart(c *gin.Context) {
	var req CreateCartRequest
	if !bindJSON(c, &req) {
		return
	}

	var restaurant models.RestaurantProfile
	if err := h.db.First(&restaurant, req.RestaurantID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}

	cart := models.Cart{UserID: middleware.GetUserID(c), RestaurantID: restaurant.ID}
	if err := h.db.Create(&cart).Error; err != nil {
		if isDuplicate(err) {
			uniqueTogether(c, "user", "restaurant")
			return
		}
		h.internalError(c, err, "Failed to create cart")
		return
	}
	cart.Items = []models.CartItem{}
	c.JSON(http.StatusCreated, gin.H{"cart": cart})
}

func (h *Handler) ListCarts(c *gin.Context) {
	var carts []models.Cart
	if err := h.db.Preload("Items.Item").Preload("Restaurant").
		Where("user_id = ?", middleware.GetUserID(c)).
		Order("updated_at desc").
		Find(&carts).Error; err != nil {
		h.internalError(c, err, "Failed to load carts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(carts), "carts": carts})
}

func (h *Handler) GetCart(c *gin.Context) {
	restaurantID, ok := paramID(c, "restaurant_id")
	if !ok {
		return
	}
	cart, err := h.loadCart(middleware.GetUserID(c), restaurantID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
		return
	}
	if err != nil {
		h.internalError(c, err, "Failed to load cart")
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cart})
}

func (h *Handler) DeleteCart(c *gin.Context) {
	restaurantID, ok := paramID(c, "restaurant_id")
	if !ok {
		return
	}
	userID := middleware.GetUserID(c)

	err := h.db.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := tx.Where("user_id = ? AND restaurant_id = ?", userID, restaurantID).First(&cart).Error; err != nil {
			return err
		}
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&cart).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
		return
	}
	if err != nil {
		h.internalError(c, err, "Failed to delete cart")
		return
	}
	c.Status(http.StatusNoContent)
}

// AddCartItem puts an item into the caller's cart for the item's restaurant, opening the cart if needed.
// Price and discount are copied when the line is first added; later adds only raise the count.
func (h *Handler) AddCartItem(c *gin.Context) {
	var req AddCartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	userID := middleware.GetUserID(c)

	var item models.Item
	if err := h.db.First(&item, req.ItemID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}
	if item.State != models.ItemAvailable {
		c.JSON(http.StatusBadRequest, gin.H{"item_id": []string{"This item is not available."}})
		return
	}
	var restaurant models.RestaurantProfile
	if err := h.db.First(&restaurant, item.RestaurantID).Error; err != nil {
		h.internalError(c, err, "Failed to load restaurant")
		return
	}
	if restaurant.State != models.StateApproved {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Restaurant is not accepting orders"})
		return
	}

	var line models.CartItem
	add := func(tx *gorm.DB) error {
		var cart models.Cart
		if err := tx.Where(models.Cart{UserID: userID, RestaurantID: restaurant.ID}).
			FirstOrCreate(&cart).Error; err != nil {
			return err
		}

		line = models.CartItem{}
		err := tx.Where("cart_id = ? AND item_id = ?", cart.ID, item.ID).First(&line).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			line = models.CartItem{
				CartID:   cart.ID,
				ItemID:   item.ID,
				Count:    req.Count,
				Price:    item.Price,
				Discount: item.Discount,
			}
			if err := tx.Create(&line).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if line.Count+req.Count > MaxLineCount {
				return errLineTooLarge
			}
			line.Count += req.Count
			if err := tx.Model(&line).Update("count", line.Count).Error; err != nil {
				return err
			}
		}
		return recalcCart(tx, cart.ID)
	}

	err := h.db.Transaction(add)
	if isDuplicate(err) {
		// a concurrent first add opened the cart; it is there now
		err = h.db.Transaction(add)
	}
	switch {
	case errors.Is(err, errLineTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"count": []string{
			fmt.Sprintf("Ensure this value is less than or equal to %d.", MaxLineCount),
		}})
		return
	case isDuplicate(err):
		uniqueTogether(c, "user", "restaurant")
		return
	case err != nil:
		h.internalError(c, err, "Failed to add item to cart")
		return
	}

	cart, err := h.loadCart(userID, restaurant.ID)
	if err != nil {
		h.internalError(c, err, "Failed to load cart")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"cart_item": line, "cart": cart})
}

// lineOf loads a cart line and checks it belongs to userID.
func lineOf(tx *gorm.DB, lineID, userID uint) (*models.CartItem, error) {
	var line models.CartItem
	if err := tx.First(&line, lineID).Error; err != nil {
		return nil, err
	}
	var cart models.Cart
	if err := tx.First(&cart, line.CartID).Error; err != nil {
		return nil, err
	}
	if cart.UserID != userID {
		return nil, errNotYours
	}
	return &line, nil
}

func (h *Handler) cartLineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
	case errors.Is(err, errNotYours):
		c.JSON(http.StatusForbidden, gin.H{"error": "This cart item does not belong to you"})
	default:
		h.internalError(c, err, "Failed to update cart")
	}
}

func (h *Handler) UpdateCartItem(c *gin.Context) {
	lineID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}

	var line *models.CartItem
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var err error
		if line, err = lineOf(tx, lineID, middleware.GetUserID(c)); err != nil {
			return err
		}
		line.Count = req.Count
		if err := tx.Model(line).Update("count", req.Count).Error; err != nil {
			return err
		}
		return recalcCart(tx, line.CartID)
	})
	if err != nil {
		h.cartLineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart_item": line})
}

func (h *Handler) DeleteCartItem(c *gin.Context) {
	lineID, ok := paramID(c, "id")
	if !ok {
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		line, err := lineOf(tx, lineID, middleware.GetUserID(c))
		if err != nil {
			return err
		}
		if err := tx.Delete(line).Error; err != nil {
			return err
		}
		return recalcCart(tx, line.CartID)
	})
	if err != nil {
		h.cartLineError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
