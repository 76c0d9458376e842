package storage

import (
	"context"
	"fmt"

	"campusnet/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoComments struct {
	collection *mongo.Collection
}

// NewMongoComments returns a CommentStore backed by the "comments" collection.
func NewMongoComments(ctx context.Context, client *mongo.Client) (CommentStore, error) {
	collection := client.Database(DATABASE).Collection("comments")
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "post_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return nil, fmt.Errorf("error creating comment indexes: %w", err)
	}
	return &mongoComments{collection: collection}, nil
}

func (m *mongoComments) InsertComment(ctx context.Context, comment model.Comment) error {
	_, err := m.collection.InsertOne(ctx, comment)
	return err
}

func (m *mongoComments) FindComment(ctx context.Context, id string) (model.Comment, bool, error) {
	var comment model.Comment
	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return model.Comment{}, false, nil
		}
		return model.Comment{}, false, err
	}
	return comment, true, nil
}

func (m *mongoComments) ListComments(ctx context.Context, postID string) ([]model.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := m.collection.Find(ctx, bson.M{"post_id": postID}, opts)
	if err != nil {
		return nil, err
	}
	comments := []model.Comment{}
	if err = cur.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (m *mongoComments) DeleteComment(ctx context.Context, id string) (model.Comment, bool, error) {
	var comment model.Comment
	err := m.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&comment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return model.Comment{}, false, nil
		}
		return model.Comment{}, false, err
	}
	return comment, true, nil
}

func (m *mongoComments) DeletePostComments(ctx context.Context, postID string) (int64, error) {
	result, err := m.collection.DeleteMany(ctx, bson.M{"post_id": postID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
