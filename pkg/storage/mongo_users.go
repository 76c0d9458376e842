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

type mongoUsers struct {
	collection *mongo.Collection
}

// NewMongoUsers returns a UserStore backed by the "users" collection.
func NewMongoUsers(ctx context.Context, client *mongo.Client) (UserStore, error) {
	collection := client.Database(DATABASE).Collection("users")
	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("error creating user indexes: %w", err)
	}
	return &mongoUsers{collection: collection}, nil
}

func (m *mongoUsers) InsertUser(ctx context.Context, user model.User) error {
	_, err := m.collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (m *mongoUsers) findOne(ctx context.Context, filter bson.D) (model.User, bool, error) {
	var user model.User
	err := m.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return model.User{}, false, nil
		}
		return model.User{}, false, err
	}
	return user, true, nil
}

func (m *mongoUsers) FindUser(ctx context.Context, id string) (model.User, bool, error) {
	return m.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (m *mongoUsers) FindUserByEmail(ctx context.Context, email string) (model.User, bool, error) {
	return m.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (m *mongoUsers) FindUserByUsername(ctx context.Context, username string) (model.User, bool, error) {
	return m.findOne(ctx, bson.D{{Key: "username", Value: username}})
}

func (m *mongoUsers) FindUsers(ctx context.Context, ids []string) ([]model.User, error) {
	users := []model.User{}
	if len(ids) == 0 {
		return users, nil
	}
	filter := bson.M{"_id": bson.M{"$in": ids}}
	cur, err := m.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err = cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (m *mongoUsers) ListUsers(ctx context.Context, limit int) ([]model.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := m.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	users := []model.User{}
	if err = cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (m *mongoUsers) update(ctx context.Context, id string, update bson.M) (model.User, bool, error) {
	var user model.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := m.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return model.User{}, false, nil
		}
		return model.User{}, false, err
	}
	return user, true, nil
}

func (m *mongoUsers) UpdateProfile(ctx context.Context, id string, edit model.ProfileEdit) (model.User, bool, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if edit.FullName != "" {
		set["full_name"] = edit.FullName
	}
	if edit.Bio != "" {
		set["bio"] = edit.Bio
	}
	return m.update(ctx, id, bson.M{"$set": set})
}

func (m *mongoUsers) SetProfilePic(ctx context.Context, id string, url string) (model.User, bool, error) {
	return m.update(ctx, id, bson.M{"$set": bson.M{"profile_pic": url, "updated_at": time.Now().UTC()}})
}

func (m *mongoUsers) AddEdge(ctx context.Context, id string, edge model.Edge, value string) (model.User, bool, error) {
	return m.update(ctx, id, bson.M{"$addToSet": bson.M{string(edge): value}})
}

func (m *mongoUsers) RemoveEdge(ctx context.Context, id string, edge model.Edge, value string) (model.User, bool, error) {
	return m.update(ctx, id, bson.M{"$pull": bson.M{string(edge): value}})
}
