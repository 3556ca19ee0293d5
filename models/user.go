package models

import (
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleCustomer          UserRole = "customer"
	RoleRestaurantManager UserRole = "restaurant_manager"
	RoleAdmin             UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleCustomer, RoleRestaurantManager, RoleAdmin:
		return true
	}
	return false
}

// ApprovalState gates whether a customer or restaurant is active in the marketplace
type ApprovalState string

const (
	StatePending  ApprovalState = "pending"
	StateApproved ApprovalState = "approved"
	StateRejected ApprovalState = "rejected"
)

func (s ApprovalState) Valid() bool {
	switch s {
	case StatePending, StateApproved, StateRejected:
		return true
	}
	return false
}

// User logs in with its phone number. The role is fixed at creation.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	PhoneNumber  string    `json:"phone_number" gorm:"size:15;uniqueIndex;not null"`
	FirstName    string    `json:"first_name" gorm:"size:30"`
	LastName     string    `json:"last_name" gorm:"size:30"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         UserRole  `json:"role" gorm:"size:20;not null;default:'customer'"`
	IsActive     bool      `json:"is_active" gorm:"not null;default:true"`
	IsStaff      bool      `json:"is_staff" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	CustomerProfile   *CustomerProfile   `json:"customer_profile,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	RestaurantProfile *RestaurantProfile `json:"restaurant_profile,omitempty" gorm:"foreignKey:ManagerID;constraint:OnDelete:CASCADE"`
}
