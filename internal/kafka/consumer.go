package kafka

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Handler must return nil only when the message is done and may be committed.
// A non-nil error makes the consumer retry the same message.
type Handler func(ctx context.Context, m kafka.Message) error

const (
	DefaultRetryBackoff = 100 * time.Millisecond
	MaxRetryBackoff     = 5 * time.Second
)

type Consumer struct {
	r       *kafka.Reader
	workers int
	backoff time.Duration
	log     zerolog.Logger
}

func NewConsumer(brokers []string, group string, topics []string, workers int, log zerolog.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		GroupTopics:    topics,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // commit per message after the handler succeeds
	})
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{r: r, workers: workers, backoff: DefaultRetryBackoff, log: log}
}

// Start fetches until ctx is cancelled. Each partition is pinned to one
// worker so its offsets are committed in order and a failing message holds
// back everything behind it instead of being skipped.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	queues := make([]chan kafka.Message, c.workers)
	var wg sync.WaitGroup
	for i := range queues {
		queues[i] = make(chan kafka.Message, 4)
		wg.Add(1)
		go func(id int, jobs <-chan kafka.Message) {
			defer wg.Done()
			log := c.log.With().Int("worker", id).Logger()
			for m := range jobs {
				if err := handleWithRetry(ctx, h, m, c.backoff, log); err != nil {
					// shutting down: leave the offset for the next owner
					continue
				}
				if err := c.r.CommitMessages(ctx, m); err != nil {
					log.Error().Err(err).Msg("commit offset")
				}
			}
		}(i, queues[i])
	}
	defer wg.Wait()
	defer func() {
		for _, q := range queues {
			close(q)
		}
	}()

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		select {
		case queues[m.Partition%c.workers] <- m:
		case <-ctx.Done():
			return nil
		}
	}
}

// handleWithRetry runs h until it succeeds, backing off exponentially up to
// MaxRetryBackoff. It only gives up, with ctx's error, when ctx ends.
func handleWithRetry(ctx context.Context, h Handler, m kafka.Message, backoff time.Duration, log zerolog.Logger) error {
	if backoff <= 0 {
		backoff = DefaultRetryBackoff
	}
	for attempt := 1; ; attempt++ {
		err := h(ctx, m)
		if err == nil {
			return nil
		}
		log.Error().Err(err).
			Str("topic", m.Topic).
			Int("partition", m.Partition).
			Int64("offset", m.Offset).
			Int("attempt", attempt).
			Dur("retry_in", backoff).
			Msg("handle message")

		t := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		backoff = min(backoff*2, MaxRetryBackoff)
	}
}
