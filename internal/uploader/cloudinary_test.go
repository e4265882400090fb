package uploader_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photo-journal-backend/internal/models"
	"photo-journal-backend/internal/uploader"
)

func TestCloudinaryUpload(t *testing.T) {
	var gotPath string
	var gotPreset, gotFolder string
	var gotFile []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotPreset = r.FormValue("upload_preset")
		gotFolder = r.FormValue("folder")

		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		gotFile, err = io.ReadAll(file)
		require.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"public_id": "photos/user-1/abc123",
			"secure_url": "https://res.example/photos/user-1/abc123.jpg",
			"width": 800,
			"height": 600
		}`)
	}))
	t.Cleanup(srv.Close)

	u := uploader.NewCloudinaryUploader(uploader.CloudinaryConfig{
		CloudName:    "demo",
		UploadPreset: "unsigned_preset",
		BaseURL:      srv.URL,
	})

	result, err := u.Upload(context.Background(), []byte("jpeg-bytes"), "image/jpeg", "user-1")
	require.NoError(t, err)

	assert.Equal(t, "/demo/image/upload", gotPath)
	assert.Equal(t, "unsigned_preset", gotPreset)
	assert.Equal(t, "photos/user-1", gotFolder)
	assert.Equal(t, []byte("jpeg-bytes"), gotFile)

	assert.Equal(t, "photos/user-1/abc123", result.PublicID)
	assert.Equal(t, "https://res.example/photos/user-1/abc123.jpg", result.URL)
	assert.Equal(t, 800, result.Width)
	assert.Equal(t, 600, result.Height)
}

func TestCloudinaryUploadRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error": {"message": "Upload preset not found"}}`)
	}))
	t.Cleanup(srv.Close)

	u := uploader.NewCloudinaryUploader(uploader.CloudinaryConfig{
		CloudName:    "demo",
		UploadPreset: "missing",
		BaseURL:      srv.URL,
	})

	_, err := u.Upload(context.Background(), []byte("jpeg-bytes"), "image/jpeg", "user-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrUploadFailed)
	assert.True(t, strings.Contains(err.Error(), "Upload preset not found"))
}

func TestCloudinaryUploadUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	u := uploader.NewCloudinaryUploader(uploader.CloudinaryConfig{
		CloudName:    "demo",
		UploadPreset: "unsigned_preset",
		BaseURL:      base,
	})

	_, err := u.Upload(context.Background(), []byte("jpeg-bytes"), "image/jpeg", "user-1")
	assert.ErrorIs(t, err, models.ErrUploadFailed)
}
