package models

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrUnknownRole     = errors.New("unknown role")
	ErrProfileNotFound = errors.New("profile not found for account")
)

// Capability is a permission checked per endpoint.
type Capability string

const (
	CapShop             Capability = "shop"              // carts, favorites, orders, reviews
	CapManageRestaurant Capability = "manage_restaurant" // own restaurant, menu and incoming orders
	CapModerate         Capability = "moderate"          // approvals, user management, forced transitions
)

var capabilities = map[UserRole][]Capability{
	RoleCustomer:          {CapShop},
	RoleRestaurantManager: {CapManageRestaurant},
	RoleAdmin:             {CapModerate},
}

// Can reports whether the role grants c.
func (r UserRole) Can(c Capability) bool {
	for _, granted := range capabilities[r] {
		if granted == c {
			return true
		}
	}
	return false
}

// Account is the closed set of account kinds. Only this package implements it.
type Account interface {
	Base() *User
	Can(c Capability) bool
	account()
}

type CustomerAccount struct {
	*User
	Profile *CustomerProfile
}

type ManagerAccount struct {
	*User
	Restaurant *RestaurantProfile
}

type AdminAccount struct {
	*User
}

func (a *CustomerAccount) Base() *User { return a.User }
func (a *ManagerAccount) Base() *User  { return a.User }
func (a *AdminAccount) Base() *User    { return a.User }

func (a *CustomerAccount) Can(c Capability) bool { return RoleCustomer.Can(c) }
func (a *ManagerAccount) Can(c Capability) bool  { return RoleRestaurantManager.Can(c) }
func (a *AdminAccount) Can(c Capability) bool    { return RoleAdmin.Can(c) }

func (*CustomerAccount) account() {}
func (*ManagerAccount) account()  {}
func (*AdminAccount) account()    {}

// CanOrder is true for approved customers only.
func (a *CustomerAccount) CanOrder() bool {
	return a.Profile != nil && a.Profile.State == StateApproved
}

// LoadAccount fetches the user and the profile matching its role.
func LoadAccount(db *gorm.DB, userID uint) (Account, error) {
	var user User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, err
	}
	return AccountFor(db, &user)
}

// AccountFor wraps an already loaded user.
func AccountFor(db *gorm.DB, user *User) (Account, error) {
	switch user.Role {
	case RoleCustomer:
		var profile CustomerProfile
		if err := db.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProfileNotFound
			}
			return nil, err
		}
		return &CustomerAccount{User: user, Profile: &profile}, nil
	case RoleRestaurantManager:
		var restaurant RestaurantProfile
		if err := db.Where("manager_id = ?", user.ID).First(&restaurant).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProfileNotFound
			}
			return nil, err
		}
		return &ManagerAccount{User: user, Restaurant: &restaurant}, nil
	case RoleAdmin:
		return &AdminAccount{User: user}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownRole, user.Role)
}
