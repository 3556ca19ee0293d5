package models_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"mazzeh-api/models"
	"mazzeh-api/testutil"
)

func TestRoleCapabilities(t *testing.T) {
	assert.True(t, models.RoleCustomer.Can(models.CapShop))
	assert.False(t, models.RoleCustomer.Can(models.CapManageRestaurant))
	assert.True(t, models.RoleRestaurantManager.Can(models.CapManageRestaurant))
	assert.False(t, models.RoleRestaurantManager.Can(models.CapShop))
	assert.True(t, models.RoleAdmin.Can(models.CapModerate))
	assert.False(t, models.UserRole("driver").Can(models.CapShop))
}

func TestLoadAccount(t *testing.T) {
	db := testutil.NewDB(t)

	customer := models.User{PhoneNumber: "0551", Role: models.RoleCustomer, PasswordHash: "x", IsActive: true,
		CustomerProfile: &models.CustomerProfile{State: models.StatePending}}
	manager := models.User{PhoneNumber: "0552", Role: models.RoleRestaurantManager, PasswordHash: "x", IsActive: true,
		RestaurantProfile: &models.RestaurantProfile{Name: "Grill", CityName: "Homs", State: models.StatePending}}
	admin := models.User{PhoneNumber: "0553", Role: models.RoleAdmin, PasswordHash: "x", IsActive: true, IsStaff: true}
	orphan := models.User{PhoneNumber: "0554", Role: models.RoleCustomer, PasswordHash: "x", IsActive: true}
	for _, u := range []*models.User{&customer, &manager, &admin, &orphan} {
		require.NoError(t, db.Create(u).Error)
	}

	acc, err := models.LoadAccount(db, customer.ID)
	require.NoError(t, err)
	c, ok := acc.(*models.CustomerAccount)
	require.True(t, ok)
	assert.Equal(t, models.StatePending, c.Profile.State)
	assert.False(t, c.CanOrder())
	assert.True(t, acc.Can(models.CapShop))

	acc, err = models.LoadAccount(db, manager.ID)
	require.NoError(t, err)
	m, ok := acc.(*models.ManagerAccount)
	require.True(t, ok)
	assert.Equal(t, "Grill", m.Restaurant.Name)
	assert.Equal(t, manager.ID, m.Base().ID)

	acc, err = models.LoadAccount(db, admin.ID)
	require.NoError(t, err)
	_, ok = acc.(*models.AdminAccount)
	assert.True(t, ok)

	_, err = models.LoadAccount(db, orphan.ID)
	assert.ErrorIs(t, err, models.ErrProfileNotFound)
}

func TestDeletingUserCascades(t *testing.T) {
	db := testutil.NewDB(t)

	manager := models.User{PhoneNumber: "0552", Role: models.RoleRestaurantManager, PasswordHash: "x", IsActive: true,
		RestaurantProfile: &models.RestaurantProfile{Name: "Grill", CityName: "Homs",
			Items: []models.Item{{Name: "Kebab"}}}}
	require.NoError(t, db.Create(&manager).Error)

	require.NoError(t, db.Delete(&models.User{}, manager.ID).Error)

	var restaurants, items int64
	db.Model(&models.RestaurantProfile{}).Count(&restaurants)
	db.Model(&models.Item{}).Count(&items)
	assert.Zero(t, restaurants)
	assert.Zero(t, items)
}

func TestOpenAt(t *testing.T) {
	day := func(h, m int) time.Time { return time.Date(2024, 5, 1, h, m, 0, 0, time.UTC) }

	r := models.RestaurantProfile{OpenHour: models.DefaultOpenHour, CloseHour: models.DefaultCloseHour}
	assert.False(t, r.OpenAt(day(8, 59)))
	assert.True(t, r.OpenAt(day(9, 0)))
	assert.True(t, r.OpenAt(day(22, 59)))
	assert.False(t, r.OpenAt(day(23, 0)))

	night := models.RestaurantProfile{OpenHour: datatypes.NewTime(18, 0, 0, 0), CloseHour: datatypes.NewTime(2, 0, 0, 0)}
	assert.True(t, night.OpenAt(day(23, 30)))
	assert.True(t, night.OpenAt(day(1, 0)))
	assert.False(t, night.OpenAt(day(12, 0)))
}

func TestCartTotal(t *testing.T) {
	cart := models.Cart{Items: []models.CartItem{
		{Price: decimal.RequireFromString("10.00"), Count: 2, Discount: 0},
		{Price: decimal.RequireFromString("4.50"), Count: 3, Discount: 10},
	}}
	assert.Equal(t, "32.15", cart.Total().StringFixed(2))
}
