package storage

import (
	"context"
	"fmt"
	"time"

	"campusnet/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoPosts struct {
	collection *mongo.Collection
}

// NewMongoPosts returns a PostStore backed by the "posts" collection.
func NewMongoPosts(ctx context.Context, client *mongo.Client) (PostStore, error) {
	collection := client.Database(DATABASE).Collection("posts")
	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "creator", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("error creating post indexes: %w", err)
	}
	return &mongoPosts{collection: collection}, nil
}

func (m *mongoPosts) InsertPost(ctx context.Context, post model.Post) error {
	_, err := m.collection.InsertOne(ctx, post)
	return err
}

func (m *mongoPosts) FindPost(ctx context.Context, id string) (model.Post, bool, error) {
	var post model.Post
	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return model.Post{}, false, nil
		}
		return model.Post{}, false, err
	}
	return post, true, nil
}

func (m *mongoPosts) ListPosts(ctx context.Context, query PostQuery) ([]model.Post, error) {
	filter := bson.M{}
	if query.CreatorIDs != nil {
		filter["creator"] = bson.M{"$in": query.CreatorIDs}
	}
	if query.IDs != nil {
		filter["_id"] = bson.M{"$in": query.IDs}
	}
	switch {
	case query.Before.IsZero():
	case query.BeforeID == "":
		filter["created_at"] = bson.M{"$lt": query.Before}
	default:
		filter["$or"] = bson.A{
			bson.M{"created_at": bson.M{"$lt": query.Before}},
			bson.M{"created_at": query.Before, "_id": bson.M{"$lt": query.BeforeID}},
		}
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if query.Limit > 0 {
		opts.SetLimit(int64(query.Limit))
	}
	cur, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	posts := []model.Post{}
	if err = cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (m *mongoPosts) update(ctx context.Context, id string, update bson.M) (model.Post, bool, error) {
	var post model.Post
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := m.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return model.Post{}, false, nil
		}
		return model.Post{}, false, err
	}
	return post, true, nil
}

func (m *mongoPosts) UpdatePostBody(ctx context.Context, id string, body string) (model.Post, bool, error) {
	return m.update(ctx, id, bson.M{"$set": bson.M{"body": body, "updated_at": time.Now().UTC()}})
}

func (m *mongoPosts) DeletePost(ctx context.Context, id string) (model.Post, bool, error) {
	var post model.Post
	err := m.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return model.Post{}, false, nil
		}
		return model.Post{}, false, err
	}
	return post, true, nil
}

func (m *mongoPosts) AddLike(ctx context.Context, id string, userID string) (model.Post, bool, error) {
	return m.update(ctx, id, bson.M{"$addToSet": bson.M{"likes": userID}})
}

func (m *mongoPosts) RemoveLike(ctx context.Context, id string, userID string) (model.Post, bool, error) {
	return m.update(ctx, id, bson.M{"$pull": bson.M{"likes": userID}})
}

func (m *mongoPosts) AddComment(ctx context.Context, id string, commentID string) (model.Post, bool, error) {
	return m.update(ctx, id, bson.M{"$push": bson.M{"comments": commentID}})
}

func (m *mongoPosts) RemoveComment(ctx context.Context, id string, commentID string) (model.Post, bool, error) {
	return m.update(ctx, id, bson.M{"$pull": bson.M{"comments": commentID}})
}
