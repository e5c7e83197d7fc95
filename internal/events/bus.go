package events

import (
	platformevents "admissions_portal_backend/platform/events"
	"admissions_portal_backend/platform/logger"
)

// InMemoryBus aliases the platform bus so modules only import
// internal/events for both the event types and the bus.
type InMemoryBus = platformevents.InMemoryBus

// NewInMemoryBus creates the process-local event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}
