package services

import (
	"context"

	"campusnet/pkg/media"
	"campusnet/pkg/model"

	"github.com/ServiceWeaver/weaver"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type MediaService interface {
	Upload(ctx context.Context, kind model.MediaKind, file model.Upload) (string, error)
	Fetch(ctx context.Context, name string) (model.Upload, error)
}

type mediaService struct {
	weaver.Implements[MediaService]
	weaver.WithConfig[mediaServiceOptions]
	host media.Host
}

type mediaServiceOptions struct {
	MongoDBAddr  string `toml:"mongodb_address"`
	MongoDBPort  int    `toml:"mongodb_port"`
	MediaBaseURL string `toml:"media_base_url"`
}

func (m *mediaService) Init(ctx context.Context) error {
	logger := m.Logger(ctx)

	client, _, err := openMongo(ctx, logger, m.Config().MongoDBAddr, m.Config().MongoDBPort)
	if err != nil {
		return err
	}
	m.host, err = media.NewGridFS(client, m.Config().MediaBaseURL)
	if err != nil {
		logger.Error("error opening gridfs bucket", "msg", err.Error())
		return err
	}

	logger.Info("media service running!",
		"mongodb_addr", m.Config().MongoDBAddr, "mongodb_port", m.Config().MongoDBPort,
		"media_base_url", m.Config().MediaBaseURL,
	)
	return nil
}

func (m *mediaService) Upload(ctx context.Context, kind model.MediaKind, file model.Upload) (string, error) {
	logger := m.Logger(ctx)
	logger.Debug("entering Upload", "kind", int(kind), "name", file.Name, "size", len(file.Data))

	url, err := m.host.Upload(ctx, kind, file)
	if err != nil {
		logger.Error("error uploading media", "msg", err.Error())
		return "", err
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("media_bytes", len(file.Data)))
	return url, nil
}

func (m *mediaService) Fetch(ctx context.Context, name string) (model.Upload, error) {
	logger := m.Logger(ctx)
	logger.Debug("entering Fetch", "name", name)
	return m.host.Fetch(ctx, name)
}
