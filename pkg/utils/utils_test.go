package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversationKeyIsUnordered(t *testing.T) {
	assert.Equal(t, ConversationKey("alice", "bob"), ConversationKey("bob", "alice"))
	assert.NotEqual(t, ConversationKey("alice", "bob"), ConversationKey("alice", "carol"))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "alice@school.edu", Fold("  Alice@School.EDU "))
	assert.Equal(t, Fold("ALICE"), Fold("alice"))
}

func TestSetHelpers(t *testing.T) {
	ids := []string{"a", "b", "a", "c"}
	assert.True(t, Contains(ids, "c"))
	assert.False(t, Contains(ids, "d"))
	assert.Equal(t, []string{"b", "c"}, Without(ids, "a"))
	assert.Equal(t, []string{"a", "b", "c"}, Unique(ids))
	assert.True(t, SameSet(ids, []string{"c", "b", "a"}))
	assert.False(t, SameSet(ids, []string{"a", "b"}))
	assert.True(t, SameSet(nil, []string{}))
}

func TestNewIDIsHex(t *testing.T) {
	id := NewID()
	assert.Len(t, id, 24)
	assert.NotEqual(t, id, NewID())
}
