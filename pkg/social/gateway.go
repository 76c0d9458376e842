package social

import (
	"context"
	"strings"

	"campusnet/pkg/apperr"
	"campusnet/pkg/model"
	"campusnet/pkg/realtime"
	"campusnet/pkg/utils"
)

// Gateway stores direct messages and pushes them to the receiver.
type Gateway struct {
	Deps
}

func NewGateway(d Deps) *Gateway {
	return &Gateway{Deps: d.withDefaults()}
}

// SendMessage appends a message to the conversation between senderID and
// receiverID, creating the conversation on the first message. The realtime
// push is best effort and never fails the send.
func (g *Gateway) SendMessage(ctx context.Context, senderID string, receiverID string, text string) (model.Message, error) {
	if strings.TrimSpace(text) == "" {
		return model.Message{}, apperr.Validation("Message cannot be empty")
	}

	now := g.Now()
	last := model.LastMessage{Text: text, SenderID: senderID}
	conv, created, err := g.Stores.Conversations.FindOrCreateConversation(ctx, model.Conversation{
		ID:           utils.NewID(),
		Key:          utils.ConversationKey(senderID, receiverID),
		Participants: []string{senderID, receiverID},
		LastMessage:  last,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return model.Message{}, g.internal(err, "Could not send message")
	}

	msg := model.Message{
		ID:             utils.NewID(),
		ConversationID: conv.ID,
		SenderID:       senderID,
		Text:           text,
		CreatedAt:      now,
	}
	if err := g.Stores.Conversations.InsertMessage(ctx, msg); err != nil {
		return model.Message{}, g.internal(err, "Could not send message")
	}
	if !created {
		if err := g.Stores.Conversations.SetLastMessage(ctx, conv.ID, last); err != nil {
			return model.Message{}, g.internal(err, "Could not send message")
		}
	}

	if err := g.Notifier.Notify(ctx, receiverID, realtime.EVENT_NEW_MESSAGE, msg); err != nil {
		g.Logger.Warn("error pushing message to receiver", "receiver_id", receiverID, "msg", err.Error())
	}
	return msg, nil
}

// GetMessages returns the conversation between callerID and peerID, newest
// message first.
func (g *Gateway) GetMessages(ctx context.Context, callerID string, peerID string) ([]model.Message, error) {
	conv, found, err := g.Stores.Conversations.FindConversation(ctx, utils.ConversationKey(callerID, peerID))
	if err != nil {
		return nil, g.internal(err, "Could not fetch messages")
	}
	if !found {
		return nil, apperr.NotFound("No Conversation")
	}
	msgs, err := g.Stores.Conversations.ListMessages(ctx, conv.ID)
	if err != nil {
		return nil, g.internal(err, "Could not fetch messages")
	}
	return msgs, nil
}

// ListConversations returns the conversations of callerID with the other
// participant projected in.
func (g *Gateway) ListConversations(ctx context.Context, callerID string) ([]model.ConversationView, error) {
	convs, err := g.Stores.Conversations.ListConversations(ctx, callerID)
	if err != nil {
		return nil, g.internal(err, "Could not fetch conversations")
	}
	var peerIDs []string
	for _, c := range convs {
		peerIDs = append(peerIDs, utils.Without(c.Participants, callerID)...)
	}
	peers, err := g.Stores.Users.FindUsers(ctx, utils.Unique(peerIDs))
	if err != nil {
		return nil, g.internal(err, "Could not fetch conversations")
	}
	byID := make(map[string]model.Participant, len(peers))
	for _, u := range peers {
		byID[u.ID] = model.Participant{ID: u.ID, FullName: u.FullName, ProfilePic: u.ProfilePic}
	}

	views := make([]model.ConversationView, 0, len(convs))
	for _, c := range convs {
		participants := []model.Participant{}
		for _, id := range utils.Without(c.Participants, callerID) {
			if p, ok := byID[id]; ok {
				participants = append(participants, p)
			}
		}
		views = append(views, model.ConversationView{
			ID:           c.ID,
			Participants: participants,
			LastMessage:  c.LastMessage,
			CreatedAt:    c.CreatedAt,
			UpdatedAt:    c.UpdatedAt,
		})
	}
	return views, nil
}
