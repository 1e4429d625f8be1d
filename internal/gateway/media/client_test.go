package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/bazaar/internal/config"
)

func testClient(url string) *Client {
	return &Client{
		httpClient: http.DefaultClient,
		cfg:        config.Media{UploadURL: url, Key: "private-key"},
		logger:     zap.NewNop(),
	}
}

func TestUploadSendsMultipartAndParsesAsset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "private-key", user)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "bottle.jpg", r.MultipartForm.Value["fileName"][0])
		assert.Equal(t, "bottle.jpg", r.MultipartForm.File["file"][0].Filename)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"file_id":"f-1","url":"https://cdn.example/bottle.jpg"}`))
	}))
	defer srv.Close()

	asset, err := testClient(srv.URL).Upload(context.Background(), "bottle.jpg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/bottle.jpg", asset.URL)
}

func TestUploadDisabledWithoutEndpoint(t *testing.T) {
	client := testClient("")

	_, err := client.Upload(context.Background(), "bottle.jpg", strings.NewReader("jpeg-bytes"))
	assert.ErrorIs(t, err, ErrDisabled)
}
