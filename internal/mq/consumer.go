// README: Queue consumer for ride.created events.
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Consumer struct {
	ch  *amqp.Channel
	log *slog.Logger
}

func NewConsumer(ch *amqp.Channel, log *slog.Logger) *Consumer {
	return &Consumer{ch: ch, log: log}
}

// ConsumeRideCreated binds a durable queue to the ride exchange and invokes
// handler for every RideCreated event until ctx is cancelled. Malformed
// messages are logged and dropped.
func (c *Consumer) ConsumeRideCreated(ctx context.Context, queueName string, handler func(context.Context, RideCreatedMessage)) error {
	if err := c.ch.ExchangeDeclare(RideExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	q, err := c.ch.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := c.ch.QueueBind(q.Name, RideCreatedKey, RideExchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	deliveries, err := c.ch.Consume(q.Name, "", true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				var msg RideCreatedMessage
				if err := json.Unmarshal(d.Body, &msg); err != nil {
					c.log.Warn("dropping malformed ride.created message", "error", err)
					continue
				}
				handler(ctx, msg)
			}
		}
	}()
	return nil
}
