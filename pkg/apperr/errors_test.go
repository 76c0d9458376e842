package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{Validation("Fill in all required fields"), http.StatusUnprocessableEntity},
		{Conflict("Email already exists"), http.StatusUnprocessableEntity},
		{NotFound("Post not found"), http.StatusNotFound},
		{Forbidden("not the owner"), http.StatusForbidden},
		{Unauthorized("invalid token"), http.StatusUnauthorized},
		{Internal("store failure"), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", NotFound("No Conversation")), http.StatusNotFound},
	}
	for i, c := range cases {
		assert.Equal(t, c.status, StatusOf(c.err), "case %d", i)
	}
}

func TestIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("loading post: %w", NotFound("Post not found"))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))
	assert.Equal(t, NOT_FOUND, KindOf(err))
}

func TestMessageOfHidesUntaggedErrors(t *testing.T) {
	assert.Equal(t, "Post not found", MessageOf(NotFound("Post not found")))
	assert.Equal(t, "Internal server error", MessageOf(errors.New("mongodb: connection refused")))
}
