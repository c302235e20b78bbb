package rabbitmq

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
)

// PublishMessage marshals the message to JSON and publishes it with the
// given routing key as a persistent delivery.
func PublishMessage(ch *amqp.Channel, exchange string, routingkey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		routingkey,
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

// Publisher binds PublishMessage to a channel so services can depend on
// a narrow interface instead of *amqp.Channel.
type Publisher struct {
	Ch *amqp.Channel
}

func (p *Publisher) Publish(exchange, routingkey string, message any) error {
	return PublishMessage(p.Ch, exchange, routingkey, message)
}
