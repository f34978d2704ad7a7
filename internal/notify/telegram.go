package notify

import (
	"encoding/json"
	"fmt"

	"tallergo/internal/config"
	"tallergo/internal/domain"
	"tallergo/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// TelegramNotifier pushes workshop alerts to the staff chat.
type TelegramNotifier struct {
	sender domain.TelegramSender
	chatID int64
	logger zerolog.Logger
}

func NewTelegramNotifier(sender domain.TelegramSender, cfg config.TelegramConfig, logger zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{sender: sender, chatID: cfg.ChatID, logger: logger}
}

// SubscribeAll attaches the notifier to the events the staff care about.
func (n *TelegramNotifier) SubscribeAll(bus *events.EventBus) {
	bus.Subscribe(events.EventAppointmentCreated, n.onAppointment("🆕 Nueva cita agendada"))
	bus.Subscribe(events.EventAppointmentCancelled, n.onAppointment("❌ Cita cancelada"))
	bus.Subscribe(events.EventAppointmentCompleted, n.onAppointment("✅ Servicio completado"))
	bus.Subscribe(events.EventLowStockDetected, n.onLowStock)
}

func (n *TelegramNotifier) onAppointment(title string) events.EventHandler {
	return func(event *events.Event) error {
		var payload events.AppointmentEventPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			n.logger.Error().Err(err).Str("event_type", event.Type).Msg("decode appointment event")
			return err
		}

		message := fmt.Sprintf(`%s:

🔧 Servicio: %s
📅 Fecha: %s
🕐 Hora: %s
👤 Cliente: %s
📱 Teléfono: %s
🆔 Cita: %d`,
			title,
			payload.ServiceName,
			payload.Date.Format("02.01.2006"),
			payload.Slot,
			payload.CustomerName,
			payload.CustomerPhone,
			payload.AppointmentID)

		return n.send(message)
	}
}

func (n *TelegramNotifier) onLowStock(event *events.Event) error {
	var payload events.LowStockEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		n.logger.Error().Err(err).Msg("decode low stock event")
		return err
	}

	message := fmt.Sprintf(`⚠️ Stock bajo:

📦 Repuesto: %s
📉 Stock actual: %d
🔻 Mínimo: %d`,
		payload.Name,
		payload.CurrentStock,
		payload.MinimumStock)

	return n.send(message)
}

func (n *TelegramNotifier) send(text string) error {
	if n.sender == nil || n.chatID == 0 {
		return nil
	}
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.sender.Send(msg); err != nil {
		n.logger.Error().Err(err).Msg("telegram send error")
		return err
	}
	return nil
}
