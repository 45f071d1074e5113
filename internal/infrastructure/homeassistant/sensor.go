package homeassistant

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/beepbasket/backend/internal/events"
)

// SensorBridge reinterprets state changes of one barcode-scanner sensor as
// scan events: every state-changed event matching the configured entity and
// carrying a non-empty new state is re-published as a barcode-scanned event
// with that state as payload.
type SensorBridge struct {
	bus    *events.Bus
	entity string
	sub    *events.Subscription
	logger zerolog.Logger
}

// NewSensorBridge subscribes the bridge to state-changed events. Close
// releases the subscription.
func NewSensorBridge(bus *events.Bus, entity string, logger zerolog.Logger) *SensorBridge {
	b := &SensorBridge{
		bus:    bus,
		entity: entity,
		logger: logger.With().Str("component", "sensor_bridge").Logger(),
	}
	b.sub = bus.Subscribe(events.TopicStateChanged, b.handle)
	return b
}

// Close unsubscribes the bridge from the bus.
func (b *SensorBridge) Close() {
	b.sub.Unsubscribe()
}

func (b *SensorBridge) handle(ev events.Event) {
	entityID := ev.Data["entity_id"]
	if !strings.Contains(entityID, b.entity) {
		return
	}

	state := strings.TrimSpace(ev.Data["new_state"])
	if state == "" {
		return
	}

	b.logger.Info().Str("entity_id", entityID).Str("barcode", state).Msg("sensor state forwarded as scan")
	b.bus.Publish(events.Event{
		Topic: events.TopicBarcodeScanned,
		Data:  map[string]string{"barcode": state},
	})
}
