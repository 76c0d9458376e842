package storage

import (
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQClient dials the broker and opens one channel. name shows up as
// the connection name in the management ui.
func RabbitMQClient(name string, username string, password string, address string, port int) (*amqp.Channel, *amqp.Connection, error) {
	uri := amqp.URI{
		Scheme:   "amqp",
		Host:     address,
		Port:     port,
		Username: username,
		Password: password,
		Vhost:    "/",
	}
	props := amqp.NewConnectionProperties()
	props.SetClientConnectionName(name)
	conn, err := amqp.DialConfig(uri.String(), amqp.Config{
		Heartbeat:  10 * time.Second,
		Properties: props,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("error establishing connection with rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("error opening channel for rabbitmq: %w", err)
	}
	return ch, conn, nil
}
