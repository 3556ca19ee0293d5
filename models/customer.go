package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CustomerProfile struct {
	UserID    uint                `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	State     ApprovalState       `json:"state" gorm:"size:30;not null;default:'approved'"`
	Latitude  decimal.NullDecimal `json:"latitude" gorm:"type:decimal(9,6)"`
	Longitude decimal.NullDecimal `json:"longitude" gorm:"type:decimal(9,6)"`
	Address   string              `json:"address"`
}

// Favorite links a user to a restaurant; each pair appears once.
type Favorite struct {
	ID           uint               `json:"id" gorm:"primaryKey"`
	UserID       uint               `json:"user_id" gorm:"not null;uniqueIndex:idx_favorite_user_restaurant"`
	User         *User              `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	RestaurantID uint               `json:"restaurant_id" gorm:"not null;uniqueIndex:idx_favorite_user_restaurant"`
	Restaurant   *RestaurantProfile `json:"restaurant,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time          `json:"created_at"`
}

// Cart is the single open basket a user keeps per restaurant.
type Cart struct {
	ID           uint               `json:"id" gorm:"primaryKey"`
	UserID       uint               `json:"user_id" gorm:"not null;uniqueIndex:idx_cart_user_restaurant"`
	User         *User              `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	RestaurantID uint               `json:"restaurant_id" gorm:"not null;uniqueIndex:idx_cart_user_restaurant"`
	Restaurant   *RestaurantProfile `json:"restaurant,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	TotalPrice   decimal.Decimal    `json:"total_price" gorm:"type:decimal(10,2);not null;default:0"`
	Items        []CartItem         `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

type CartItem struct {
	ID       uint            `json:"id" gorm:"primaryKey"`
	CartID   uint            `json:"cart_id" gorm:"not null;index"`
	ItemID   uint            `json:"item_id" gorm:"not null"`
	Item     *Item           `json:"item,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Count    uint            `json:"count" gorm:"not null;check:count > 0"`
	Price    decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"` // snapshot when added
	Discount uint            `json:"discount" gorm:"not null;default:0"`
}

// LineTotal is price × count with the discount percentage applied.
func LineTotal(price decimal.Decimal, count, discount uint) decimal.Decimal {
	if discount > 100 {
		discount = 100
	}
	return price.
		Mul(decimal.NewFromInt(int64(count))).
		Mul(decimal.NewFromInt(int64(100 - discount))).
		Div(decimal.NewFromInt(100)).
		Round(2)
}

// Total sums the cart's lines. Items must be loaded.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, ci := range c.Items {
		total = total.Add(LineTotal(ci.Price, ci.Count, ci.Discount))
	}
	return total
}
