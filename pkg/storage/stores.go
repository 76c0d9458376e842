package storage

import (
	"context"
	"errors"
	"time"

	"campusnet/pkg/model"
)

// ErrDuplicate is returned when an insert violates a unique index.
var ErrDuplicate = errors.New("duplicate key")

// Lookups return (value, found, err). A missing document is never an error,
// callers decide what absence means for them.

type UserStore interface {
	InsertUser(ctx context.Context, user model.User) error
	FindUser(ctx context.Context, id string) (model.User, bool, error)
	FindUserByEmail(ctx context.Context, email string) (model.User, bool, error)
	FindUserByUsername(ctx context.Context, username string) (model.User, bool, error)
	FindUsers(ctx context.Context, ids []string) ([]model.User, error)
	// ListUsers returns users newest first; limit <= 0 returns all of them.
	ListUsers(ctx context.Context, limit int) ([]model.User, error)
	UpdateProfile(ctx context.Context, id string, edit model.ProfileEdit) (model.User, bool, error)
	SetProfilePic(ctx context.Context, id string, url string) (model.User, bool, error)
	// AddEdge and RemoveEdge are single-document atomic set operations
	// ($addToSet / $pull) on one of the user's id lists.
	AddEdge(ctx context.Context, id string, edge model.Edge, value string) (model.User, bool, error)
	RemoveEdge(ctx context.Context, id string, edge model.Edge, value string) (model.User, bool, error)
}

// PostQuery filters posts. A nil CreatorIDs or IDs does not restrict, an
// empty non-nil slice matches nothing.
type PostQuery struct {
	CreatorIDs []string
	IDs        []string
	Before     time.Time
	BeforeID   string
	Limit      int
}

type PostStore interface {
	InsertPost(ctx context.Context, post model.Post) error
	FindPost(ctx context.Context, id string) (model.Post, bool, error)
	// ListPosts returns the matching posts ordered by creation time, newest first.
	ListPosts(ctx context.Context, query PostQuery) ([]model.Post, error)
	UpdatePostBody(ctx context.Context, id string, body string) (model.Post, bool, error)
	DeletePost(ctx context.Context, id string) (model.Post, bool, error)
	AddLike(ctx context.Context, id string, userID string) (model.Post, bool, error)
	RemoveLike(ctx context.Context, id string, userID string) (model.Post, bool, error)
	AddComment(ctx context.Context, id string, commentID string) (model.Post, bool, error)
	RemoveComment(ctx context.Context, id string, commentID string) (model.Post, bool, error)
}

type CommentStore interface {
	InsertComment(ctx context.Context, comment model.Comment) error
	FindComment(ctx context.Context, id string) (model.Comment, bool, error)
	// ListComments returns the comments of a post newest first.
	ListComments(ctx context.Context, postID string) ([]model.Comment, error)
	DeleteComment(ctx context.Context, id string) (model.Comment, bool, error)
	DeletePostComments(ctx context.Context, postID string) (int64, error)
}

type ConversationStore interface {
	// FindOrCreateConversation atomically returns the conversation with the
	// given key, inserting conv when there is none. created reports whether
	// conv was inserted.
	FindOrCreateConversation(ctx context.Context, conv model.Conversation) (model.Conversation, bool, error)
	FindConversation(ctx context.Context, key string) (model.Conversation, bool, error)
	SetLastMessage(ctx context.Context, id string, last model.LastMessage) error
	// ListConversations returns the conversations of a participant newest first.
	ListConversations(ctx context.Context, userID string) ([]model.Conversation, error)
	InsertMessage(ctx context.Context, msg model.Message) error
	// ListMessages returns the messages of a conversation newest first.
	ListMessages(ctx context.Context, conversationID string) ([]model.Message, error)
}

// Stores groups the collections of the application.
type Stores struct {
	Users         UserStore
	Posts         PostStore
	Comments      CommentStore
	Conversations ConversationStore
}
