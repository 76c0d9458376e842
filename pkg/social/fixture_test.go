package social

import (
	"context"
	"sync"
	"testing"
	"time"

	"campusnet/pkg/auth"
	"campusnet/pkg/cache"
	"campusnet/pkg/media"
	"campusnet/pkg/model"
	"campusnet/pkg/storage/memstore"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type notification struct {
	UserID  string
	Event   string
	Payload interface{}
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
	err  error
}

func (r *recordingNotifier) Notify(ctx context.Context, userID string, event string, payload interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, notification{UserID: userID, Event: event, Payload: payload})
	return r.err
}

// clock advances one second on every reading so creation order is total.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type fixture struct {
	store    *memstore.Store
	cache    *cache.Memory
	blobs    *media.Memory
	notifier *recordingNotifier

	accounts *Accounts
	graph    *Graph
	posts    *Posts
	feed     *Feed
	gateway  *Gateway
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    memstore.New(),
		cache:    cache.NewMemory(),
		blobs:    media.NewMemory("http://localhost:12345/media"),
		notifier: &recordingNotifier{},
	}
	c := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	d := Deps{
		Stores:    f.store.Stores(),
		Creators:  f.cache,
		Following: f.cache,
		Blobs:     f.blobs,
		Notifier:  f.notifier,
		Hasher:    auth.NewBcrypt(bcrypt.MinCost),
		Tokens:    auth.NewTokens("test-secret"),
		Now:       c.Now,
	}
	f.accounts = NewAccounts(d)
	f.graph = NewGraph(d)
	f.posts = NewPosts(d)
	f.feed = NewFeed(d)
	f.gateway = NewGateway(d)
	return f
}

func (f *fixture) register(t *testing.T, name string) model.User {
	t.Helper()
	user, err := f.accounts.Register(context.Background(), model.Registration{
		FullName:        name + " Example",
		Username:        name,
		Email:           name + "@campus.edu",
		Password:        "password",
		ConfirmPassword: "password",
		School:          "Campus U",
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) post(t *testing.T, callerID string, body string) model.PostView {
	t.Helper()
	post, err := f.posts.CreatePost(context.Background(), callerID, body, model.Upload{})
	require.NoError(t, err)
	return post
}

func (f *fixture) user(t *testing.T, id string) model.User {
	t.Helper()
	user, err := f.accounts.GetUser(context.Background(), id)
	require.NoError(t, err)
	return user
}

func viewIDs(views []model.PostView) []string {
	ids := []string{}
	for _, v := range views {
		ids = append(ids, v.ID)
	}
	return ids
}
