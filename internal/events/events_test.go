package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishJSONDeliversToSubscribers(t *testing.T) {
	bus := NewEventBus()

	var received []AppointmentEventPayload
	bus.Subscribe(EventAppointmentCreated, func(event *Event) error {
		var p AppointmentEventPayload
		require.NoError(t, json.Unmarshal(event.Payload, &p))
		received = append(received, p)
		return nil
	})

	payload := AppointmentEventPayload{
		AppointmentID: 1,
		CustomerName:  "Juan Pérez García",
		ServiceName:   "Cambio de Aceite",
		Status:        "pending",
		Date:          time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		Slot:          "09:00",
	}
	require.NoError(t, bus.PublishJSON(EventAppointmentCreated, payload))

	require.Len(t, received, 1)
	assert.Equal(t, int64(1), received[0].AppointmentID)
	assert.Equal(t, "09:00", received[0].Slot)
}

func TestPublishIgnoresUnrelatedTypes(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	bus.Subscribe(EventAppointmentCancelled, func(*Event) error {
		calls++
		return nil
	})

	require.NoError(t, bus.PublishJSON(EventAppointmentCreated, AppointmentEventPayload{AppointmentID: 2}))
	assert.Zero(t, calls)
}

func TestNilBusPublishIsNoop(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventLowStockDetected, LowStockEventPayload{ItemID: 1}))
}
