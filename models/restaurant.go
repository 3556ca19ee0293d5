package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type BusinessType string

const (
	BusinessRestaurant BusinessType = "restaurant"
	BusinessCafe       BusinessType = "cafe"
	BusinessBakery     BusinessType = "bakery"
	BusinessSweets     BusinessType = "sweets"
	BusinessIceCream   BusinessType = "ice_cream"
)

func (b BusinessType) Valid() bool {
	switch b {
	case BusinessRestaurant, BusinessCafe, BusinessBakery, BusinessSweets, BusinessIceCream:
		return true
	}
	return false
}

type ItemState string

const (
	ItemAvailable   ItemState = "available"
	ItemUnavailable ItemState = "unavailable"
)

func (s ItemState) Valid() bool {
	return s == ItemAvailable || s == ItemUnavailable
}

// Default business hours for a freshly signed-up restaurant.
var (
	DefaultOpenHour  = datatypes.NewTime(9, 0, 0, 0)
	DefaultCloseHour = datatypes.NewTime(23, 0, 0, 0)
)

// RestaurantProfile is owned by exactly one manager. Score is derived from reviews and never stored.
type RestaurantProfile struct {
	ID            uint                `json:"id" gorm:"primaryKey"`
	ManagerID     uint                `json:"manager_id" gorm:"not null;uniqueIndex"`
	Name          string              `json:"name" gorm:"size:255;not null"`
	BusinessType  BusinessType        `json:"business_type" gorm:"size:255;not null;default:'restaurant'"`
	CityName      string              `json:"city_name" gorm:"size:255;not null"`
	DeliveryPrice decimal.Decimal     `json:"delivery_price" gorm:"type:decimal(10,2);not null;default:0"`
	Address       string              `json:"address"`
	Description   string              `json:"description"`
	State         ApprovalState       `json:"state" gorm:"size:30;not null;default:'pending'"`
	OpenHour      datatypes.Time      `json:"open_hour"`
	CloseHour     datatypes.Time      `json:"close_hour"`
	Latitude      decimal.NullDecimal `json:"latitude" gorm:"type:decimal(9,6)"`
	Longitude     decimal.NullDecimal `json:"longitude" gorm:"type:decimal(9,6)"`
	Photo         string              `json:"photo"`
	Score         float64             `json:"score" gorm:"-"`
	IsOpen        bool                `json:"is_open" gorm:"-"`
	Items         []Item              `json:"items,omitempty" gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

type Item struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	RestaurantID uint            `json:"restaurant_id" gorm:"not null;index"`
	Price        decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null;default:0"`
	Discount     uint            `json:"discount" gorm:"not null;default:0"`
	Name         string          `json:"name" gorm:"size:100;not null"`
	Description  string          `json:"description"`
	State        ItemState       `json:"state" gorm:"size:50;not null;default:'available'"`
	Photo        string          `json:"photo"`
	Score        float64         `json:"score" gorm:"-"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// OpenAt reports whether t's time of day falls inside the business hours.
// Hours that wrap past midnight (close before open) are supported.
func (r *RestaurantProfile) OpenAt(t time.Time) bool {
	now := datatypes.NewTime(t.Hour(), t.Minute(), t.Second(), 0)
	if r.CloseHour < r.OpenHour {
		return now >= r.OpenHour || now < r.CloseHour
	}
	return now >= r.OpenHour && now < r.CloseHour
}
