package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"parley-chat/internal/domain/message"
	"parley-chat/internal/transport/httpdto"
	"parley-chat/pkg/logger"

	"go.uber.org/zap"
)

const defaultPublishTimeout = 3 * time.Second

// Dispatcher announces domain events to chat channels. Publishing happens on
// its own goroutine and is at-most-once; failures are logged and dropped.
type Dispatcher struct {
	publisher Publisher
	logger    *logger.Logger
	timeout   time.Duration
	now       func() time.Time
	wg        sync.WaitGroup
}

func NewDispatcher(publisher Publisher, log *logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Dispatcher{
		publisher: publisher,
		logger:    log,
		timeout:   defaultPublishTimeout,
		now:       time.Now,
	}
}

// MessageCreated publishes msg to its chat channel. Subscribers on the
// connection excludeConnectionID (may be empty) do not receive it.
func (d *Dispatcher) MessageCreated(msg message.Message, excludeConnectionID string) {
	env, err := d.envelope(EventTypeMessageCreated, ChatChannel(msg.ChatID), excludeConnectionID, httpdto.FromMessage(msg))
	if err != nil {
		d.logger.Error("failed to encode message event", zap.Int64("message_id", msg.ID), zap.Error(err))
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.Publish(ctx, env); err != nil {
			d.logger.Warn("failed to publish event",
				zap.String("event", env.Event),
				zap.String("channel", env.Channel),
				zap.Int64("message_id", msg.ID),
				zap.Error(err),
			)
		}
	}()
}

// Publish sends env synchronously.
func (d *Dispatcher) Publish(ctx context.Context, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	return d.publisher.Publish(ctx, env.Channel, data)
}

// Wait blocks until in-flight publishes finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) envelope(event, channel, excludeConnectionID string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		Event:               event,
		Channel:             channel,
		ExcludeConnectionID: excludeConnectionID,
		OccurredAt:          d.now().UTC(),
		Payload:             raw,
	}, nil
}
