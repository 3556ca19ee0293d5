package statemachine

import (
	"fmt"
	"strings"

	"mazzeh-api/models"
)

// Actor is whoever asks for a transition
type Actor string

const (
	ActorRestaurant Actor = "restaurant"
	ActorAdmin      Actor = "admin"
)

// Transition defines a valid state change and who can perform it.
// Method restricts the transition to one delivery method; empty means any.
type Transition struct {
	From   models.OrderState     `json:"from"`
	To     models.OrderState     `json:"to"`
	Actor  Actor                 `json:"actor"`
	Method models.DeliveryMethod `json:"delivery_method,omitempty"`
}

// validTransitions is the authoritative state machine definition.
// States only move forward; nothing is skipped.
var validTransitions = []Transition{
	{From: models.OrderPending, To: models.OrderPreparing, Actor: ActorRestaurant},
	{From: models.OrderPreparing, To: models.OrderReadyForPickup, Actor: ActorRestaurant, Method: models.DeliveryPickup},
	{From: models.OrderPreparing, To: models.OrderDelivering, Actor: ActorRestaurant, Method: models.DeliveryDelivery},
	{From: models.OrderReadyForPickup, To: models.OrderCompleted, Actor: ActorRestaurant},
	{From: models.OrderDelivering, To: models.OrderCompleted, Actor: ActorRestaurant},
}

func allowed(t Transition, from, to models.OrderState, method models.DeliveryMethod) bool {
	return t.From == from && t.To == to && (t.Method == "" || t.Method == method)
}

// ValidTransitionsFrom returns all valid next states for an order in the given state
func ValidTransitionsFrom(state models.OrderState, method models.DeliveryMethod) []models.OrderState {
	nexts := []models.OrderState{}
	seen := map[models.OrderState]bool{}
	for _, t := range validTransitions {
		if t.From == state && (t.Method == "" || t.Method == method) && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransition checks if actor can move an order from one state to another.
// Admins may take any step of the table regardless of the actor column.
func CanTransition(from, to models.OrderState, method models.DeliveryMethod, actor Actor) error {
	if !to.Valid() {
		return fmt.Errorf("unknown state %q", to)
	}
	for _, t := range validTransitions {
		if allowed(t, from, to, method) && (t.Actor == actor || actor == ActorAdmin) {
			return nil
		}
	}
	return fmt.Errorf("invalid transition: %s → %s is not allowed for %s %s orders. Valid transitions from %s are: %s",
		from, to, actor, method, from, describeValidFrom(from, method))
}

func describeValidFrom(state models.OrderState, method models.DeliveryMethod) string {
	nexts := ValidTransitionsFrom(state, method)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	names := make([]string, len(nexts))
	for i, s := range nexts {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}

// IsTerminal reports whether no transition leaves state.
func IsTerminal(state models.OrderState) bool {
	for _, t := range validTransitions {
		if t.From == state {
			return false
		}
	}
	return true
}
