package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderState represents all possible states of an order
type OrderState string

const (
	OrderPending        OrderState = "pending"
	OrderPreparing      OrderState = "preparing"
	OrderReadyForPickup OrderState = "ready_for_pickup"
	OrderDelivering     OrderState = "delivering"
	OrderCompleted      OrderState = "completed"
)

func (s OrderState) Valid() bool {
	switch s {
	case OrderPending, OrderPreparing, OrderReadyForPickup, OrderDelivering, OrderCompleted:
		return true
	}
	return false
}

type DeliveryMethod string

const (
	DeliveryPickup   DeliveryMethod = "pickup"
	DeliveryDelivery DeliveryMethod = "delivery"
)

func (m DeliveryMethod) Valid() bool {
	return m == DeliveryPickup || m == DeliveryDelivery
}

type PaymentMethod string

const (
	PaymentInPerson PaymentMethod = "in_person"
	PaymentOnline   PaymentMethod = "online"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentInPerson || m == PaymentOnline
}

type Order struct {
	ID             uint                 `json:"id" gorm:"primaryKey"`
	UserID         uint                 `json:"user_id" gorm:"not null;index"`
	User           *User                `json:"customer,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	RestaurantID   uint                 `json:"restaurant_id" gorm:"not null;index"`
	Restaurant     *RestaurantProfile   `json:"restaurant,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	OrderDate      time.Time            `json:"order_date" gorm:"autoCreateTime"`
	TotalPrice     decimal.Decimal      `json:"total_price" gorm:"type:decimal(10,2);not null"`
	State          OrderState           `json:"state" gorm:"size:20;not null;default:'pending'"`
	DeliveryMethod DeliveryMethod       `json:"delivery_method" gorm:"size:20;not null;default:'pickup'"`
	PaymentMethod  PaymentMethod        `json:"payment_method" gorm:"size:20;not null;default:'in_person'"`
	Description    string               `json:"description"`
	Items          []OrderItem          `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	StatusHistory  []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// OrderItem keeps the price, discount and name the item had when the order was placed.
type OrderItem struct {
	ID       uint            `json:"id" gorm:"primaryKey"`
	OrderID  uint            `json:"order_id" gorm:"not null;index"`
	ItemID   uint            `json:"item_id" gorm:"not null;index"`
	Item     *Item           `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Name     string          `json:"name"`
	Count    uint            `json:"count" gorm:"not null;check:count > 0"`
	Price    decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Discount uint            `json:"discount" gorm:"not null;default:0"`
}

// Review is one user's verdict on one order.
type Review struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_review_user_order"`
	User        *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	OrderID     uint      `json:"order_id" gorm:"not null;uniqueIndex:idx_review_user_order"`
	Order       *Order    `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Score       uint8     `json:"score" gorm:"not null;check:score > 0"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// OrderStatusHistory tracks every state change
type OrderStatusHistory struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	OrderID   uint       `json:"order_id" gorm:"not null;index"`
	FromState OrderState `json:"from_state"`
	ToState   OrderState `json:"to_state" gorm:"not null"`
	ChangedBy uint       `json:"changed_by"`
	Note      string     `json:"note"`
	CreatedAt time.Time  `json:"created_at"`
}

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&CustomerProfile{},
		&RestaurantProfile{},
		&Item{},
		&Favorite{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&Review{},
		&OrderStatusHistory{},
	}
}
