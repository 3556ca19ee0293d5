package statemachine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mazzeh-api/models"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    models.OrderState
		to      models.OrderState
		method  models.DeliveryMethod
		actor   Actor
		wantErr bool
	}{
		{"restaurant starts preparing", models.OrderPending, models.OrderPreparing, models.DeliveryPickup, ActorRestaurant, false},
		{"pickup order becomes ready", models.OrderPreparing, models.OrderReadyForPickup, models.DeliveryPickup, ActorRestaurant, false},
		{"delivery order goes out", models.OrderPreparing, models.OrderDelivering, models.DeliveryDelivery, ActorRestaurant, false},
		{"pickup order completed", models.OrderReadyForPickup, models.OrderCompleted, models.DeliveryPickup, ActorRestaurant, false},
		{"delivery order completed", models.OrderDelivering, models.OrderCompleted, models.DeliveryDelivery, ActorRestaurant, false},
		{"delivery order never waits for pickup", models.OrderPreparing, models.OrderReadyForPickup, models.DeliveryDelivery, ActorRestaurant, true},
		{"pickup order never delivered", models.OrderPreparing, models.OrderDelivering, models.DeliveryPickup, ActorRestaurant, true},
		{"no skipping", models.OrderPending, models.OrderCompleted, models.DeliveryPickup, ActorRestaurant, true},
		{"no regression", models.OrderPreparing, models.OrderPending, models.DeliveryPickup, ActorRestaurant, true},
		{"completed is terminal", models.OrderCompleted, models.OrderPending, models.DeliveryPickup, ActorAdmin, true},
		{"admin follows the table", models.OrderPending, models.OrderPreparing, models.DeliveryDelivery, ActorAdmin, false},
		{"unknown target", models.OrderPending, models.OrderState("cancelled"), models.DeliveryPickup, ActorAdmin, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanTransition(tt.from, tt.to, tt.method, tt.actor)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidTransitionsFrom(t *testing.T) {
	assert.Equal(t, []models.OrderState{models.OrderReadyForPickup},
		ValidTransitionsFrom(models.OrderPreparing, models.DeliveryPickup))
	assert.Equal(t, []models.OrderState{models.OrderDelivering},
		ValidTransitionsFrom(models.OrderPreparing, models.DeliveryDelivery))
	assert.Empty(t, ValidTransitionsFrom(models.OrderCompleted, models.DeliveryPickup))
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(models.OrderCompleted))
	assert.False(t, IsTerminal(models.OrderPending))
}

func TestInvalidTransitionMessageListsNextStates(t *testing.T) {
	err := CanTransition(models.OrderPending, models.OrderCompleted, models.DeliveryPickup, ActorRestaurant)
	assert.ErrorContains(t, err, "Valid transitions from pending are: preparing")

	err = CanTransition(models.OrderCompleted, models.OrderPending, models.DeliveryPickup, ActorRestaurant)
	assert.ErrorContains(t, err, "none (terminal state)")
}
