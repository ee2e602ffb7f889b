package changes

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/cjdworks/stockpos-backend/pkg/logger"
	"github.com/cjdworks/stockpos-backend/pkg/redis"
)

// Entity names carried on change events.
const (
	EntityInventory   = "inventory"
	EntityReservation = "reservation"
	EntityLog         = "log"
)

// Event tells connected clients which entity changed so they can refetch.
// The event intentionally carries no row data.
type Event struct {
	Entity string    `json:"entity"`
	Action string    `json:"action"`
	ID     uuid.UUID `json:"id"`
	At     time.Time `json:"at"`
}

// Notifier fans change events out to interested clients.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

type redisNotifier struct {
	client *redis.Client
	logg   *logger.Logger
}

// NewNotifier builds a redis pub/sub backed notifier. Publish failures are
// logged and swallowed so a flaky broker never fails the write path.
func NewNotifier(client *redis.Client, logg *logger.Logger) Notifier {
	return &redisNotifier{client: client, logg: logg}
}

func (n *redisNotifier) Notify(ctx context.Context, event Event) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		if n.logg != nil {
			n.logg.Error(ctx, "marshal change event", err)
		}
		return
	}
	if err := n.client.Publish(ctx, n.client.ChangesChannel(), payload); err != nil {
		if n.logg != nil {
			n.logg.Warn(n.logg.WithField(ctx, "entity", event.Entity), "publish change event failed")
		}
	}
}

// NoopNotifier discards all events. Used in tests and tooling.
type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, Event) {}
