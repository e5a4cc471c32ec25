package rabbitmq

import (
	"context"
	"fmt"
	"sync"

	"github.com/streadway/amqp"
)

// Publisher публикует сообщения в канал RabbitMQ. Канал amqp не потокобезопасен,
// поэтому публикации сериализуются.
type Publisher struct {
	mu sync.Mutex
	ch *amqp.Channel
}

// NewPublisher создаёт Publisher поверх открытого канала.
func NewPublisher(ch *amqp.Channel) *Publisher {
	return &Publisher{ch: ch}
}

// Publish отправляет готовое JSON-тело с постоянной доставкой.
func (p *Publisher) Publish(ctx context.Context, exchange, routingKey string, body []byte) error {
	const op = "rabbitmq.Publish"

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.ch.Publish(
		exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
