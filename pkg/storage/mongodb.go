package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const DATABASE = "campusnet"

func MongoDBClient(ctx context.Context, address string, port int) (*mongo.Client, error) {
	uri := fmt.Sprintf("mongodb://%s:%d/?directConnection=true", address, port)
	clientOptions := options.Client().ApplyURI(uri).SetConnectTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("error connecting to mongodb: %s", err.Error())
	}
	err = client.Ping(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("mongodb cannot be reached after connecting: %s", err.Error())
	}
	return client, nil
}

// MongoStores opens every collection of the application on client.
func MongoStores(ctx context.Context, client *mongo.Client) (Stores, error) {
	var stores Stores
	var err error
	if stores.Users, err = NewMongoUsers(ctx, client); err != nil {
		return Stores{}, err
	}
	if stores.Posts, err = NewMongoPosts(ctx, client); err != nil {
		return Stores{}, err
	}
	if stores.Comments, err = NewMongoComments(ctx, client); err != nil {
		return Stores{}, err
	}
	if stores.Conversations, err = NewMongoConversations(ctx, client); err != nil {
		return Stores{}, err
	}
	return stores, nil
}
