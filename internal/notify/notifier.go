// Package notify delivers customer events to systems outside the service.
package notify

import (
	"context"

	"github.com/voltai/billing-service/internal/events"
)

// Notifier sends events to an external system.
type Notifier interface {
	// Name returns the notifier identifier.
	Name() string

	// Send delivers an event. Implementations must be safe for concurrent use.
	Send(ctx context.Context, event events.Event) error
}
