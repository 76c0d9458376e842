package services

import (
	"context"

	"campusnet/pkg/metrics"
	"campusnet/pkg/model"
	"campusnet/pkg/realtime"
	"campusnet/pkg/social"
	"campusnet/pkg/storage"

	"github.com/ServiceWeaver/weaver"
	amqp "github.com/rabbitmq/amqp091-go"
)

type MessageService interface {
	SendMessage(ctx context.Context, senderID string, receiverID string, text string) (model.Message, error)
	GetMessages(ctx context.Context, callerID string, peerID string) ([]model.Message, error)
	ListConversations(ctx context.Context, callerID string) ([]model.ConversationView, error)
}

var _ weaver.NotRetriable = MessageService.SendMessage

type messageService struct {
	weaver.Implements[MessageService]
	weaver.WithConfig[messageServiceOptions]
	gateway  *social.Gateway
	amqpConn *amqp.Connection
}

type messageServiceOptions struct {
	MongoDBAddr      string `toml:"mongodb_address"`
	MongoDBPort      int    `toml:"mongodb_port"`
	RabbitMQAddr     string `toml:"rabbitmq_address"`
	RabbitMQPort     int    `toml:"rabbitmq_port"`
	RabbitMQUsername string `toml:"rabbitmq_username"`
	RabbitMQPassword string `toml:"rabbitmq_password"`
}

// countingNotifier records the outcome of every publish.
type countingNotifier struct {
	social.Notifier
}

func (c countingNotifier) Notify(ctx context.Context, userID string, event string, payload interface{}) error {
	err := c.Notifier.Notify(ctx, userID, event, payload)
	outcome := "published"
	if err != nil {
		outcome = "failed"
	}
	metrics.Notifications.Get(metrics.OutcomeLabel{Outcome: outcome}).Inc()
	return err
}

func (m *messageService) Init(ctx context.Context) error {
	logger := m.Logger(ctx)

	_, stores, err := openMongo(ctx, logger, m.Config().MongoDBAddr, m.Config().MongoDBPort)
	if err != nil {
		return err
	}

	var notifier social.Notifier = realtime.Discard{Logger: logger}
	if m.Config().RabbitMQAddr != "" {
		ch, conn, err := storage.RabbitMQClient("campusnet-messages", m.Config().RabbitMQUsername, m.Config().RabbitMQPassword, m.Config().RabbitMQAddr, m.Config().RabbitMQPort)
		if err != nil {
			logger.Error(err.Error())
			return err
		}
		publisher, err := realtime.NewPublisher(ch)
		if err != nil {
			logger.Error("error declaring exchange for rabbitmq", "msg", err.Error())
			conn.Close()
			return err
		}
		m.amqpConn = conn
		notifier = countingNotifier{publisher}
	}

	m.gateway = social.NewGateway(social.Deps{
		Stores:   stores,
		Notifier: notifier,
		Logger:   logger,
	})

	logger.Info("message service running!",
		"mongodb_addr", m.Config().MongoDBAddr, "mongodb_port", m.Config().MongoDBPort,
		"rabbitmq_addr", m.Config().RabbitMQAddr, "rabbitmq_port", m.Config().RabbitMQPort,
	)
	return nil
}

func (m *messageService) Shutdown(ctx context.Context) error {
	if m.amqpConn != nil {
		return m.amqpConn.Close()
	}
	return nil
}

func (m *messageService) SendMessage(ctx context.Context, senderID string, receiverID string, text string) (model.Message, error) {
	logger := m.Logger(ctx)
	logger.Debug("entering SendMessage", "sender_id", senderID, "receiver_id", receiverID)

	msg, err := m.gateway.SendMessage(ctx, senderID, receiverID, text)
	if err != nil {
		return model.Message{}, err
	}
	metrics.SentMessages.Inc()
	return msg, nil
}

func (m *messageService) GetMessages(ctx context.Context, callerID string, peerID string) ([]model.Message, error) {
	logger := m.Logger(ctx)
	logger.Debug("entering GetMessages", "user_id", callerID, "peer_id", peerID)
	return m.gateway.GetMessages(ctx, callerID, peerID)
}

func (m *messageService) ListConversations(ctx context.Context, callerID string) ([]model.ConversationView, error) {
	logger := m.Logger(ctx)
	logger.Debug("entering ListConversations", "user_id", callerID)
	return m.gateway.ListConversations(ctx, callerID)
}
