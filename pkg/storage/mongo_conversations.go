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

type mongoConversations struct {
	conversations *mongo.Collection
	messages      *mongo.Collection
}

// NewMongoConversations returns a ConversationStore backed by the
// "conversations" and "messages" collections. The unique index on the
// conversation key keeps one conversation per pair of participants.
func NewMongoConversations(ctx context.Context, client *mongo.Client) (ConversationStore, error) {
	db := client.Database(DATABASE)
	conversations := db.Collection("conversations")
	_, err := conversations.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "key", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "participants", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("error creating conversation indexes: %w", err)
	}
	messages := db.Collection("messages")
	_, err = messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return nil, fmt.Errorf("error creating message indexes: %w", err)
	}
	return &mongoConversations{conversations: conversations, messages: messages}, nil
}

func (m *mongoConversations) FindOrCreateConversation(ctx context.Context, conv model.Conversation) (model.Conversation, bool, error) {
	filter := bson.M{"key": conv.Key}
	update := bson.M{"$setOnInsert": conv}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored model.Conversation
	err := m.conversations.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored)
	if mongo.IsDuplicateKeyError(err) {
		// lost an upsert race on the unique key, the winner's document is there now
		err = m.conversations.FindOne(ctx, filter).Decode(&stored)
	}
	if err != nil {
		return model.Conversation{}, false, err
	}
	return stored, stored.ID == conv.ID, nil
}

func (m *mongoConversations) FindConversation(ctx context.Context, key string) (model.Conversation, bool, error) {
	var conv model.Conversation
	err := m.conversations.FindOne(ctx, bson.M{"key": key}).Decode(&conv)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return model.Conversation{}, false, nil
		}
		return model.Conversation{}, false, err
	}
	return conv, true, nil
}

func (m *mongoConversations) SetLastMessage(ctx context.Context, id string, last model.LastMessage) error {
	update := bson.M{"$set": bson.M{"last_message": last, "updated_at": time.Now().UTC()}}
	_, err := m.conversations.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

func (m *mongoConversations) ListConversations(ctx context.Context, userID string) ([]model.Conversation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := m.conversations.Find(ctx, bson.M{"participants": userID}, opts)
	if err != nil {
		return nil, err
	}
	convs := []model.Conversation{}
	if err = cur.All(ctx, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

func (m *mongoConversations) InsertMessage(ctx context.Context, msg model.Message) error {
	_, err := m.messages.InsertOne(ctx, msg)
	return err
}

func (m *mongoConversations) ListMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := m.messages.Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, err
	}
	msgs := []model.Message{}
	if err = cur.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}
