package media

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"campusnet/pkg/apperr"
	"campusnet/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckCaps(t *testing.T) {
	small := model.Upload{Name: "a.png", Data: []byte("x")}
	assert.NoError(t, Check(model.MEDIA_POST_IMAGE, small))
	assert.NoError(t, Check(model.MEDIA_AVATAR, small))

	mid := model.Upload{Name: "a.png", Data: bytes.Repeat([]byte("x"), MAX_AVATAR_BYTES+1)}
	assert.NoError(t, Check(model.MEDIA_POST_IMAGE, mid))
	assert.ErrorIs(t, Check(model.MEDIA_AVATAR, mid), apperr.ErrValidation)

	big := model.Upload{Name: "a.png", Data: bytes.Repeat([]byte("x"), MAX_POST_IMAGE_BYTES+1)}
	assert.ErrorIs(t, Check(model.MEDIA_POST_IMAGE, big), apperr.ErrValidation)

	assert.ErrorIs(t, Check(model.MEDIA_AVATAR, model.Upload{}), apperr.ErrValidation)
}

func TestBlobNameKeepsExtension(t *testing.T) {
	name := BlobName(model.Upload{Name: "Holiday.JPG"})
	assert.True(t, strings.HasSuffix(name, ".jpg"))
	assert.NotEqual(t, name, BlobName(model.Upload{Name: "Holiday.JPG"}))
}

func TestURL(t *testing.T) {
	assert.Equal(t, "http://host/media/x.png", URL("http://host/media/", "x.png"))
	assert.Equal(t, "http://host/media/x.png", URL("http://host/media", "x.png"))
}

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("http://localhost/media")
	url, err := m.Upload(ctx, model.MEDIA_POST_IMAGE, model.Upload{Name: "a.png", ContentType: "image/png", Data: []byte("png")})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "http://localhost/media/"))

	name := strings.TrimPrefix(url, "http://localhost/media/")
	got, err := m.Fetch(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), got.Data)
	assert.Equal(t, "image/png", got.ContentType)

	_, err = m.Fetch(ctx, "missing.png")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
