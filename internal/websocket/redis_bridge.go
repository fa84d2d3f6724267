package websocket

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"parley-chat/internal/events"
	"parley-chat/pkg/logger"

	"go.uber.org/zap"
)

// RedisBridge relays chat events published on any node to the local hub.
type RedisBridge struct {
	subscriber events.Subscriber
	hub        *Hub
	logger     *logger.Logger
	minBackoff time.Duration
	maxBackoff time.Duration
}

const (
	defaultBridgeMinBackoff = 500 * time.Millisecond
	defaultBridgeMaxBackoff = 30 * time.Second
)

func NewRedisBridge(subscriber events.Subscriber, hub *Hub, log *logger.Logger) *RedisBridge {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &RedisBridge{
		subscriber: subscriber,
		hub:        hub,
		logger:     log,
		minBackoff: defaultBridgeMinBackoff,
		maxBackoff: defaultBridgeMaxBackoff,
	}
}

// WithBackoff sets the resubscribe delay bounds. Non-positive values are ignored.
func (b *RedisBridge) WithBackoff(initial, limit time.Duration) *RedisBridge {
	if initial > 0 {
		b.minBackoff = initial
	}
	if limit > 0 {
		b.maxBackoff = limit
	}
	if b.minBackoff > b.maxBackoff {
		b.minBackoff = b.maxBackoff
	}
	return b
}

// Run relays events until ctx is cancelled. A failed subscription is logged
// and retried with a doubling delay; it never ends Run with an error.
func (b *RedisBridge) Run(ctx context.Context) error {
	backoff := b.minBackoff
	for {
		var relayed atomic.Bool
		err := b.subscriber.Subscribe(ctx, []string{events.ChatChannelPattern}, func(channel string, payload []byte) {
			relayed.Store(true)
			b.handle(channel, payload)
		})
		if ctx.Err() != nil {
			return nil
		}
		if relayed.Load() {
			backoff = b.minBackoff
		}
		if err != nil {
			b.logger.Error("realtime subscription failed, resubscribing",
				zap.Duration("retry_in", backoff), zap.Error(err))
		} else {
			b.logger.Warn("realtime subscription ended, resubscribing", zap.Duration("retry_in", backoff))
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
		if backoff < b.maxBackoff {
			backoff = min(backoff*2, b.maxBackoff)
		}
	}
}

func (b *RedisBridge) handle(channel string, payload []byte) {
	var env events.Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		b.logger.Warn("dropping malformed event", zap.String("channel", channel), zap.Error(err))
		return
	}
	frame, err := env.ClientFrame()
	if err != nil {
		b.logger.Warn("failed to encode client frame", zap.String("channel", channel), zap.Error(err))
		return
	}
	delivered := b.hub.BroadcastExcept(channel, frame, env.ExcludeConnectionID)
	b.logger.Debug("event relayed",
		zap.String("event", env.Event),
		zap.String("channel", channel),
		zap.Int("delivered", delivered),
	)
}
