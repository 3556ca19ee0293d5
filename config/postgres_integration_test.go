//go:build integration
// +build integration

package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"mazzeh-api/config"
	"mazzeh-api/models"
)

func setupPostgres(t *testing.T) *gorm.DB {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("mazzeh"),
		postgres.WithUsername("mazzeh"),
		postgres.WithPassword("mazzeh"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := config.InitDB(config.DatabaseConfig{Driver: "postgres", DSN: dsn})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return db
}

func TestPostgresSchema(t *testing.T) {
	db := setupPostgres(t)

	manager := models.User{PhoneNumber: "0911", PasswordHash: "x", Role: models.RoleRestaurantManager, IsActive: true}
	require.NoError(t, db.Create(&manager).Error)
	restaurant := models.RestaurantProfile{
		ManagerID:     manager.ID,
		Name:          "Grill House",
		BusinessType:  models.BusinessRestaurant,
		CityName:      "Damascus",
		State:         models.StateApproved,
		DeliveryPrice: decimal.RequireFromString("5.00"),
		OpenHour:      models.DefaultOpenHour,
		CloseHour:     models.DefaultCloseHour,
	}
	require.NoError(t, db.Create(&restaurant).Error)
	item := models.Item{
		RestaurantID: restaurant.ID,
		Name:         "Burger",
		Price:        decimal.RequireFromString("10.50"),
		State:        models.ItemAvailable,
	}
	require.NoError(t, db.Create(&item).Error)

	var loaded models.RestaurantProfile
	require.NoError(t, db.Preload("Items").First(&loaded, restaurant.ID).Error)
	assert.Equal(t, models.DefaultOpenHour, loaded.OpenHour)
	require.Len(t, loaded.Items, 1)
	assert.True(t, loaded.Items[0].Price.Equal(decimal.RequireFromString("10.50")))

	duplicate := models.User{PhoneNumber: "0911", PasswordHash: "y", Role: models.RoleCustomer, IsActive: true}
	assert.ErrorIs(t, db.Create(&duplicate).Error, gorm.ErrDuplicatedKey)

	require.NoError(t, db.Delete(&manager).Error)
	var count int64
	require.NoError(t, db.Model(&models.Item{}).Count(&count).Error)
	assert.Zero(t, count)
}
