package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidSlot(t *testing.T) {
	for _, slot := range Slots {
		assert.True(t, IsValidSlot(slot), slot)
	}
	assert.False(t, IsValidSlot("12:00"))
	assert.False(t, IsValidSlot("8:00"))
	assert.False(t, IsValidSlot(""))
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusInProgress, true},
		{StatusPending, StatusCompleted, true},
		{StatusConfirmed, StatusInProgress, true},
		{StatusInProgress, StatusCompleted, true},
		{StatusPending, StatusCancelled, true},
		{StatusInProgress, StatusCancelled, true},

		{StatusConfirmed, StatusPending, false},
		{StatusInProgress, StatusConfirmed, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCompleted, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCancelled, StatusCancelled, false},
		{StatusPending, StatusPending, false},
		{"unknown", StatusConfirmed, false},
		{StatusPending, "unknown", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestInventoryItemIsLowStock(t *testing.T) {
	assert.True(t, InventoryItem{CurrentStock: 2, MinimumStock: 5}.IsLowStock())
	assert.True(t, InventoryItem{CurrentStock: 5, MinimumStock: 5}.IsLowStock())
	assert.False(t, InventoryItem{CurrentStock: 6, MinimumStock: 5}.IsLowStock())
	assert.True(t, InventoryItem{CurrentStock: 0, MinimumStock: 0}.IsLowStock())
}
