package reconcile

import (
	"context"
	"testing"

	"campusnet/pkg/model"
	"campusnet/pkg/storage/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsistentGraphHasNoFindings(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	require.NoError(t, s.InsertUser(ctx, model.User{ID: "a", Email: "a", Username: "a", Following: []string{"b"}, Posts: []string{"p"}}))
	require.NoError(t, s.InsertUser(ctx, model.User{ID: "b", Email: "b", Username: "b", Followers: []string{"a"}}))
	require.NoError(t, s.InsertPost(ctx, model.Post{ID: "p", CreatorID: "a"}))

	report, err := (&Checker{Stores: s.Stores()}).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Users)
	assert.Equal(t, 1, report.Posts)
	assert.Empty(t, report.Findings)
}

func TestDetectsHalfWrites(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	// a follows b without the inverse edge, a lists a deleted post and one of c's,
	// and c's post q is missing from c's list
	require.NoError(t, s.InsertUser(ctx, model.User{ID: "a", Email: "a", Username: "a", Following: []string{"b"}, Posts: []string{"gone", "q"}}))
	require.NoError(t, s.InsertUser(ctx, model.User{ID: "b", Email: "b", Username: "b"}))
	require.NoError(t, s.InsertUser(ctx, model.User{ID: "c", Email: "c", Username: "c", Followers: []string{"ghost"}}))
	require.NoError(t, s.InsertPost(ctx, model.Post{ID: "q", CreatorID: "c"}))

	report, err := (&Checker{Stores: s.Stores()}).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[Kind]int{
		MISSING_FOLLOWER: 1,
		DANGLING_POST:    1,
		FOREIGN_POST:     1,
		UNLISTED_POST:    1,
		DANGLING_USER:    1,
	}, report.Counts())
}
