package media

import (
	"bytes"
	"context"
	"errors"

	"campusnet/pkg/apperr"
	"campusnet/pkg/model"
	"campusnet/pkg/storage"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const BUCKET = "media"

// GridFS keeps blobs in a mongodb GridFS bucket.
type GridFS struct {
	bucket  *gridfs.Bucket
	baseURL string
}

func NewGridFS(client *mongo.Client, baseURL string) (*GridFS, error) {
	bucket, err := gridfs.NewBucket(client.Database(storage.DATABASE), options.GridFSBucket().SetName(BUCKET))
	if err != nil {
		return nil, err
	}
	return &GridFS{bucket: bucket, baseURL: baseURL}, nil
}

func (g *GridFS) Upload(ctx context.Context, kind model.MediaKind, file model.Upload) (string, error) {
	if err := Check(kind, file); err != nil {
		return "", err
	}
	name := BlobName(file)
	opts := options.GridFSUpload().SetMetadata(bson.D{
		{Key: "content_type", Value: contentType(file)},
		{Key: "kind", Value: int(kind)},
	})
	if _, err := g.bucket.UploadFromStream(name, bytes.NewReader(file.Data), opts); err != nil {
		return "", err
	}
	return URL(g.baseURL, name), nil
}

func (g *GridFS) Fetch(ctx context.Context, name string) (model.Upload, error) {
	stream, err := g.bucket.OpenDownloadStreamByName(name)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return model.Upload{}, apperr.NotFound("Image not found")
		}
		return model.Upload{}, err
	}
	defer stream.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(stream); err != nil {
		return model.Upload{}, err
	}
	upload := model.Upload{Name: name, Data: buf.Bytes()}
	if file := stream.GetFile(); file != nil {
		if ct, ok := file.Metadata.Lookup("content_type").StringValueOK(); ok {
			upload.ContentType = ct
		}
	}
	if upload.ContentType == "" {
		upload.ContentType = contentType(upload)
	}
	return upload, nil
}
