package queue

import (
	"context"
	"log/slog"
	"time"

	sl "trailmate/internal/lib/logger"
	"trailmate/internal/models"
)

type EventDrainer interface {
	DrainPendingEvents(ctx context.Context, limit int, fn func(models.QueueEvent) error) (int, error)
}

type Publisher interface {
	Publish(ctx context.Context, body []byte) error
}

// Consumer drains pending queue events to the message broker on a fixed
// interval. Claiming uses SKIP LOCKED, so several instances can run at once.
type Consumer struct {
	log       *slog.Logger
	store     EventDrainer
	pub       Publisher
	interval  time.Duration
	batchSize int
}

func New(log *slog.Logger, store EventDrainer, pub Publisher, interval time.Duration, batchSize int) *Consumer {
	return &Consumer{
		log:       log,
		store:     store,
		pub:       pub,
		interval:  interval,
		batchSize: batchSize,
	}
}

// Run polls until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	const op = "queue.Consumer.Run"

	log := c.log.With(slog.String("op", op))

	t := time.NewTicker(c.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("queue consumer stopped")
			return
		case <-t.C:
			n, err := c.store.DrainPendingEvents(ctx, c.batchSize, func(e models.QueueEvent) error {
				return c.pub.Publish(ctx, e.Payload)
			})
			if err != nil {
				log.Error("failed to drain queue events", sl.Err(err))
				continue
			}

			if n > 0 {
				log.Info("queue events processed", slog.Int("count", n))
			}
		}
	}
}
