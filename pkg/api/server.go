package api

import (
	"context"
	"net/http"

	"campusnet/pkg/realtime"
	"campusnet/pkg/services"
	"campusnet/pkg/storage"

	"github.com/ServiceWeaver/weaver"
)

type server struct {
	weaver.Implements[weaver.Main]
	weaver.WithConfig[serverOptions]
	userService        weaver.Ref[services.UserService]
	socialGraphService weaver.Ref[services.SocialGraphService]
	postService        weaver.Ref[services.PostService]
	feedService        weaver.Ref[services.FeedService]
	messageService     weaver.Ref[services.MessageService]
	mediaService       weaver.Ref[services.MediaService]
	_                  weaver.Ref[services.ReconcilerService]
	lis                weaver.Listener `weaver:"campusnet"`
}

type serverOptions struct {
	RabbitMQAddr     string `toml:"rabbitmq_address"`
	RabbitMQPort     int    `toml:"rabbitmq_port"`
	RabbitMQUsername string `toml:"rabbitmq_username"`
	RabbitMQPassword string `toml:"rabbitmq_password"`
	CorsOrigin       string `toml:"cors_origin"`
}

// Serve runs the http api and, when a broker is configured, the consumer
// that relays realtime events to the sockets held by this process.
func Serve(ctx context.Context, s *server) error {
	logger := s.Logger(ctx)
	registry := realtime.NewRegistry()

	if s.Config().RabbitMQAddr != "" {
		ch, conn, err := storage.RabbitMQClient("campusnet-api", s.Config().RabbitMQUsername, s.Config().RabbitMQPassword, s.Config().RabbitMQAddr, s.Config().RabbitMQPort)
		if err != nil {
			logger.Error(err.Error())
			return err
		}
		defer conn.Close()
		go func() {
			if err := realtime.Consume(ctx, ch, registry, logger); err != nil && ctx.Err() == nil {
				logger.Error("realtime consumer stopped", "msg", err.Error())
			}
		}()
	}

	h := &handlers{
		users:    s.userService.Get(),
		graph:    s.socialGraphService.Get(),
		posts:    s.postService.Get(),
		feed:     s.feedService.Get(),
		messages: s.messageService.Get(),
		media:    s.mediaService.Get(),
		registry: registry,
		logger:   logger,
	}
	handler := newRouter(h, instrument, s.Config().CorsOrigin)
	logger.Info("campusnet api available", "addr", s.lis)
	return http.Serve(s.lis, handler)
}

func instrument(label string, fn http.HandlerFunc) http.Handler {
	return weaver.InstrumentHandlerFunc(label, fn)
}
