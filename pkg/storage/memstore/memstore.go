// Package memstore keeps every collection in process memory. It mirrors
// the semantics of the mongodb stores (set operations, ordering, unique
// keys) and backs the unit tests of the domain packages.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"campusnet/pkg/model"
	"campusnet/pkg/storage"
	"campusnet/pkg/utils"
)

type Store struct {
	mu            sync.Mutex
	users         map[string]model.User
	posts         map[string]model.Post
	comments      map[string]model.Comment
	conversations map[string]model.Conversation
	messages      map[string]model.Message
	// FailWrites makes every mutation fail with the given error.
	FailWrites error
	// FailEdges makes edge updates of the listed edges fail.
	FailEdges map[model.Edge]error
}

func New() *Store {
	return &Store{
		users:         map[string]model.User{},
		posts:         map[string]model.Post{},
		comments:      map[string]model.Comment{},
		conversations: map[string]model.Conversation{},
		messages:      map[string]model.Message{},
	}
}

// Stores exposes s through the storage interfaces.
func (s *Store) Stores() storage.Stores {
	return storage.Stores{Users: s, Posts: s, Comments: s, Conversations: s}
}

func clone(ids []string) []string {
	if ids == nil {
		return nil
	}
	return append([]string{}, ids...)
}

func copyUser(u model.User) model.User {
	u.Followers = clone(u.Followers)
	u.Following = clone(u.Following)
	u.Bookmarks = clone(u.Bookmarks)
	u.Posts = clone(u.Posts)
	return u
}

func copyPost(p model.Post) model.Post {
	p.Likes = clone(p.Likes)
	p.Comments = clone(p.Comments)
	return p
}

func copyConversation(c model.Conversation) model.Conversation {
	c.Participants = clone(c.Participants)
	return c
}

// newerFirst orders by creation time descending, ids break ties.
func newerFirst(a time.Time, aID string, b time.Time, bID string) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return aID > bID
}

func addToSet(ids []string, id string) []string {
	if utils.Contains(ids, id) {
		return ids
	}
	return append(ids, id)
}

// Users

func (s *Store) InsertUser(ctx context.Context, user model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return s.FailWrites
	}
	for _, u := range s.users {
		if u.ID == user.ID || u.Email == user.Email || u.Username == user.Username {
			return storage.ErrDuplicate
		}
	}
	s.users[user.ID] = copyUser(user)
	return nil
}

func (s *Store) FindUser(ctx context.Context, id string) (model.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	return copyUser(u), ok, nil
}

func (s *Store) findUserBy(match func(model.User) bool) (model.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			return copyUser(u), true, nil
		}
	}
	return model.User{}, false, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (model.User, bool, error) {
	return s.findUserBy(func(u model.User) bool { return u.Email == email })
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (model.User, bool, error) {
	return s.findUserBy(func(u model.User) bool { return u.Username == username })
}

func (s *Store) FindUsers(ctx context.Context, ids []string) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := []model.User{}
	for _, id := range utils.Unique(ids) {
		if u, ok := s.users[id]; ok {
			users = append(users, copyUser(u))
		}
	}
	return users, nil
}

func (s *Store) ListUsers(ctx context.Context, limit int) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, copyUser(u))
	}
	sort.Slice(users, func(i, j int) bool {
		return newerFirst(users[i].CreatedAt, users[i].ID, users[j].CreatedAt, users[j].ID)
	})
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (s *Store) updateUser(id string, fn func(*model.User)) (model.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return model.User{}, false, s.FailWrites
	}
	u, ok := s.users[id]
	if !ok {
		return model.User{}, false, nil
	}
	fn(&u)
	s.users[id] = u
	return copyUser(u), true, nil
}

func (s *Store) UpdateProfile(ctx context.Context, id string, edit model.ProfileEdit) (model.User, bool, error) {
	return s.updateUser(id, func(u *model.User) {
		if edit.FullName != "" {
			u.FullName = edit.FullName
		}
		if edit.Bio != "" {
			u.Bio = edit.Bio
		}
		u.UpdatedAt = time.Now().UTC()
	})
}

func (s *Store) SetProfilePic(ctx context.Context, id string, url string) (model.User, bool, error) {
	return s.updateUser(id, func(u *model.User) {
		u.ProfilePic = url
		u.UpdatedAt = time.Now().UTC()
	})
}

func edgeOf(u *model.User, edge model.Edge) *[]string {
	switch edge {
	case model.EDGE_FOLLOWERS:
		return &u.Followers
	case model.EDGE_FOLLOWING:
		return &u.Following
	case model.EDGE_BOOKMARKS:
		return &u.Bookmarks
	default:
		return &u.Posts
	}
}

func (s *Store) edgeFailure(edge model.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.FailEdges[edge]
}

func (s *Store) AddEdge(ctx context.Context, id string, edge model.Edge, value string) (model.User, bool, error) {
	if err := s.edgeFailure(edge); err != nil {
		return model.User{}, false, err
	}
	return s.updateUser(id, func(u *model.User) {
		ids := edgeOf(u, edge)
		*ids = addToSet(clone(*ids), value)
	})
}

func (s *Store) RemoveEdge(ctx context.Context, id string, edge model.Edge, value string) (model.User, bool, error) {
	if err := s.edgeFailure(edge); err != nil {
		return model.User{}, false, err
	}
	return s.updateUser(id, func(u *model.User) {
		ids := edgeOf(u, edge)
		*ids = utils.Without(*ids, value)
	})
}

// Posts

func (s *Store) InsertPost(ctx context.Context, post model.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return s.FailWrites
	}
	if _, ok := s.posts[post.ID]; ok {
		return storage.ErrDuplicate
	}
	s.posts[post.ID] = copyPost(post)
	return nil
}

func (s *Store) FindPost(ctx context.Context, id string) (model.Post, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	return copyPost(p), ok, nil
}

func (s *Store) ListPosts(ctx context.Context, query storage.PostQuery) ([]model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	posts := []model.Post{}
	for _, p := range s.posts {
		if query.CreatorIDs != nil && !utils.Contains(query.CreatorIDs, p.CreatorID) {
			continue
		}
		if query.IDs != nil && !utils.Contains(query.IDs, p.ID) {
			continue
		}
		if !query.Before.IsZero() && !newerFirst(query.Before, query.BeforeID, p.CreatedAt, p.ID) {
			continue
		}
		posts = append(posts, copyPost(p))
	}
	sort.Slice(posts, func(i, j int) bool {
		return newerFirst(posts[i].CreatedAt, posts[i].ID, posts[j].CreatedAt, posts[j].ID)
	})
	if query.Limit > 0 && len(posts) > query.Limit {
		posts = posts[:query.Limit]
	}
	return posts, nil
}

func (s *Store) updatePost(id string, fn func(*model.Post)) (model.Post, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return model.Post{}, false, s.FailWrites
	}
	p, ok := s.posts[id]
	if !ok {
		return model.Post{}, false, nil
	}
	fn(&p)
	s.posts[id] = p
	return copyPost(p), true, nil
}

func (s *Store) UpdatePostBody(ctx context.Context, id string, body string) (model.Post, bool, error) {
	return s.updatePost(id, func(p *model.Post) {
		p.Body = body
		p.UpdatedAt = time.Now().UTC()
	})
}

func (s *Store) DeletePost(ctx context.Context, id string) (model.Post, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return model.Post{}, false, s.FailWrites
	}
	p, ok := s.posts[id]
	if !ok {
		return model.Post{}, false, nil
	}
	delete(s.posts, id)
	return copyPost(p), true, nil
}

func (s *Store) AddLike(ctx context.Context, id string, userID string) (model.Post, bool, error) {
	return s.updatePost(id, func(p *model.Post) { p.Likes = addToSet(clone(p.Likes), userID) })
}

func (s *Store) RemoveLike(ctx context.Context, id string, userID string) (model.Post, bool, error) {
	return s.updatePost(id, func(p *model.Post) { p.Likes = utils.Without(p.Likes, userID) })
}

func (s *Store) AddComment(ctx context.Context, id string, commentID string) (model.Post, bool, error) {
	return s.updatePost(id, func(p *model.Post) { p.Comments = append(clone(p.Comments), commentID) })
}

func (s *Store) RemoveComment(ctx context.Context, id string, commentID string) (model.Post, bool, error) {
	return s.updatePost(id, func(p *model.Post) { p.Comments = utils.Without(p.Comments, commentID) })
}

// Comments

func (s *Store) InsertComment(ctx context.Context, comment model.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return s.FailWrites
	}
	s.comments[comment.ID] = comment
	return nil
}

func (s *Store) FindComment(ctx context.Context, id string) (model.Comment, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	return c, ok, nil
}

func (s *Store) ListComments(ctx context.Context, postID string) ([]model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comments := []model.Comment{}
	for _, c := range s.comments {
		if c.PostID == postID {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		return newerFirst(comments[i].CreatedAt, comments[i].ID, comments[j].CreatedAt, comments[j].ID)
	})
	return comments, nil
}

func (s *Store) DeleteComment(ctx context.Context, id string) (model.Comment, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return model.Comment{}, false, s.FailWrites
	}
	c, ok := s.comments[id]
	if ok {
		delete(s.comments, id)
	}
	return c, ok, nil
}

func (s *Store) DeletePostComments(ctx context.Context, postID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return 0, s.FailWrites
	}
	var n int64
	for id, c := range s.comments {
		if c.PostID == postID {
			delete(s.comments, id)
			n++
		}
	}
	return n, nil
}

// Conversations

func (s *Store) FindOrCreateConversation(ctx context.Context, conv model.Conversation) (model.Conversation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return model.Conversation{}, false, s.FailWrites
	}
	for _, c := range s.conversations {
		if c.Key == conv.Key {
			return copyConversation(c), false, nil
		}
	}
	s.conversations[conv.ID] = copyConversation(conv)
	return copyConversation(conv), true, nil
}

func (s *Store) FindConversation(ctx context.Context, key string) (model.Conversation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conversations {
		if c.Key == key {
			return copyConversation(c), true, nil
		}
	}
	return model.Conversation{}, false, nil
}

func (s *Store) SetLastMessage(ctx context.Context, id string, last model.LastMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return s.FailWrites
	}
	c, ok := s.conversations[id]
	if !ok {
		return nil
	}
	c.LastMessage = last
	c.UpdatedAt = time.Now().UTC()
	s.conversations[id] = c
	return nil
}

func (s *Store) ListConversations(ctx context.Context, userID string) ([]model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	convs := []model.Conversation{}
	for _, c := range s.conversations {
		if utils.Contains(c.Participants, userID) {
			convs = append(convs, copyConversation(c))
		}
	}
	sort.Slice(convs, func(i, j int) bool {
		return newerFirst(convs[i].CreatedAt, convs[i].ID, convs[j].CreatedAt, convs[j].ID)
	})
	return convs, nil
}

func (s *Store) InsertMessage(ctx context.Context, msg model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return s.FailWrites
	}
	s.messages[msg.ID] = msg
	return nil
}

func (s *Store) ListMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := []model.Message{}
	for _, m := range s.messages {
		if m.ConversationID == conversationID {
			msgs = append(msgs, m)
		}
	}
	sort.Slice(msgs, func(i, j int) bool {
		return newerFirst(msgs[i].CreatedAt, msgs[i].ID, msgs[j].CreatedAt, msgs[j].ID)
	})
	return msgs, nil
}
