// README: Topic-exchange publisher for ride events.
package mq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Publisher struct {
	ch       *amqp.Channel
	exchange string
}

func NewPublisher(ch *amqp.Channel, exchange string) (*Publisher, error) {
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &Publisher{ch: ch, exchange: exchange}, nil
}

func (p *Publisher) publish(ctx context.Context, routingKey string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s message: %w", routingKey, err)
	}
	if err := p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	}); err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return nil
}

func (p *Publisher) PublishRideCreated(ctx context.Context, msg RideCreatedMessage) error {
	return p.publish(ctx, RideCreatedKey, msg)
}

func (p *Publisher) PublishDriverOffer(ctx context.Context, msg DriverOfferMessage) error {
	return p.publish(ctx, fmt.Sprintf("notify.driver.%s", msg.DriverID), msg)
}

func (p *Publisher) PublishRiderUpdate(ctx context.Context, msg RiderUpdateMessage) error {
	return p.publish(ctx, fmt.Sprintf("notify.rider.%s", msg.RiderID), msg)
}
