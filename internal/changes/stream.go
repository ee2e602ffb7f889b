package changes

import (
	"context"
	"encoding/json"

	"github.com/cjdworks/stockpos-backend/pkg/logger"
	"github.com/cjdworks/stockpos-backend/pkg/redis"
)

// Streamer hands out live change event feeds for SSE subscribers.
type Streamer struct {
	client *redis.Client
	logg   *logger.Logger
}

// NewStreamer builds a streamer over the shared redis client.
func NewStreamer(client *redis.Client, logg *logger.Logger) *Streamer {
	return &Streamer{client: client, logg: logg}
}

// Stream subscribes to the change channel and decodes events until ctx is
// cancelled. The returned channel is closed when the subscription ends.
func (s *Streamer) Stream(ctx context.Context) (<-chan Event, error) {
	sub, err := s.client.Subscribe(ctx, s.client.ChangesChannel())
	if err != nil {
		return nil, err
	}

	out := make(chan Event, 16)
	go func() {
		defer close(out)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					if s.logg != nil {
						s.logg.Warn(ctx, "drop malformed change event")
					}
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
