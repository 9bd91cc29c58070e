package subscriber

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/juruladenbam/bam-sub001/common/events"
	"github.com/juruladenbam/bam-sub001/common/logger"
	rediscommon "github.com/juruladenbam/bam-sub001/common/redis"
)

// MutationHandler applies a graph mutation
type MutationHandler func(ctx context.Context, personIDs []int64) error

// MutationSubscriber listens to Redis PubSub for graph mutation events
// published by the CRUD layer
type MutationSubscriber struct {
	redis   *rediscommon.Client
	channel string
	handle  MutationHandler
	log     *logger.Logger
}

// NewMutationSubscriber creates a new MutationSubscriber instance
func NewMutationSubscriber(client *rediscommon.Client, channel string, handle MutationHandler, log *logger.Logger) *MutationSubscriber {
	if channel == "" {
		channel = events.DefaultMutationChannel
	}
	return &MutationSubscriber{
		redis:   client,
		channel: channel,
		handle:  handle,
		log:     log.WithFields(map[string]any{"channel": channel}),
	}
}

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Start listens until ctx is cancelled, resubscribing after connection loss
func (s *MutationSubscriber) Start(ctx context.Context) {
	s.reconnect(ctx, s.listen, time.After)
}

// reconnect calls listen until ctx ends. The delay doubles after each
// failed subscribe and starts over once a subscription was established.
func (s *MutationSubscriber) reconnect(ctx context.Context, listen func(context.Context) (bool, error), wait func(time.Duration) <-chan time.Time) {
	backoff := initialBackoff
	for {
		subscribed, err := listen(ctx)
		if ctx.Err() != nil {
			s.log.Info("mutation subscriber stopping")
			return
		}
		if subscribed {
			backoff = initialBackoff
		}
		s.log.Warn("mutation subscription lost, retrying", "error", err, "backoff", backoff)

		select {
		case <-ctx.Done():
			return
		case <-wait(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// listen reports whether the subscription was established before it ended
func (s *MutationSubscriber) listen(ctx context.Context) (bool, error) {
	pubsub, err := s.redis.Subscribe(ctx, s.channel)
	if err != nil {
		return false, err
	}
	defer pubsub.Close()

	s.log.Info("mutation subscriber started")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return true, ctx.Err()

		case msg, ok := <-ch:
			if !ok {
				return true, errors.New("subscription channel closed")
			}
			s.dispatch(ctx, msg)
		}
	}
}

func (s *MutationSubscriber) dispatch(ctx context.Context, msg *redis.Message) {
	ev, err := events.DecodeGraphMutation([]byte(msg.Payload))
	if err != nil {
		s.log.Warn("dropping malformed mutation event", "error", err, "size", len(msg.Payload))
		return
	}

	log := s.log.WithFields(map[string]any{"event_id": ev.EventID, "source": ev.Source})
	log.Debug("mutation event received", "persons", len(ev.PersonIDs))

	if err := s.handle(ctx, ev.PersonIDs); err != nil {
		log.Error("failed to apply mutation event", "error", err)
	}
}
