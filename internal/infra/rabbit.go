// README: RabbitMQ connection with bounded retry on startup.
package infra

import (
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Rabbit struct {
	Conn *amqp.Connection
	Chan *amqp.Channel
}

// NewRabbit dials the broker, retrying with exponential backoff because the
// broker often comes up after the service in local compose setups.
func NewRabbit(url string) (*Rabbit, error) {
	var lastErr error
	for attempt := 1; attempt <= 5; attempt++ {
		conn, err := amqp.Dial(url)
		if err == nil {
			ch, chErr := conn.Channel()
			if chErr != nil {
				_ = conn.Close()
				return nil, fmt.Errorf("open channel: %w", chErr)
			}
			return &Rabbit{Conn: conn, Chan: ch}, nil
		}
		lastErr = err
		time.Sleep(time.Duration(1<<attempt) * time.Second)
	}
	return nil, fmt.Errorf("connect to rabbitmq: %w", lastErr)
}

func (r *Rabbit) Close() {
	if r.Chan != nil {
		_ = r.Chan.Close()
	}
	if r.Conn != nil {
		_ = r.Conn.Close()
	}
}
