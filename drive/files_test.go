package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewClient(url, url, nil, StaticTokenSource("test-token"), logger)
}

// readMultipart splits a multipart/related request into its metadata JSON
// and media bytes.
func readMultipart(t *testing.T, r *http.Request) (map[string]any, []byte) {
	t.Helper()

	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	require.NoError(t, err)
	require.Equal(t, "multipart/related", mediaType)

	mr := multipart.NewReader(r.Body, params["boundary"])

	metaPart, err := mr.NextPart()
	require.NoError(t, err)
	assert.Contains(t, metaPart.Header.Get("Content-Type"), "application/json")

	var metadata map[string]any
	require.NoError(t, json.NewDecoder(metaPart).Decode(&metadata))

	mediaPart, err := mr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", mediaPart.Header.Get("Content-Type"))

	media, err := io.ReadAll(mediaPart)
	require.NoError(t, err)

	return metadata, media
}

func TestCreateFile_SendsMetadataAndMedia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/files", r.URL.Path)
		assert.Equal(t, "multipart", r.URL.Query().Get("uploadType"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		metadata, media := readMultipart(t, r)
		assert.Equal(t, "notes.txt", metadata["name"])
		assert.Equal(t, "hello", string(media))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"F1","name":"notes.txt","mimeType":"text/plain"}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	f, err := client.CreateFile(context.Background(),
		map[string]any{"name": "notes.txt"}, strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, "F1", f.ID)
	assert.Equal(t, "notes.txt", f.Name)
}

func TestUpdateFile_PatchesExistingFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/files/F1", r.URL.Path)

		_, media := readMultipart(t, r)
		assert.Equal(t, "updated", string(media))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"F1","name":"notes.txt"}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	f, err := client.UpdateFile(context.Background(), "F1",
		map[string]any{}, strings.NewReader("updated"))
	require.NoError(t, err)
	assert.Equal(t, "F1", f.ID)
}

func TestCreateMetadata_FolderBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/files", r.URL.Path)
		assert.Contains(t, r.Header.Get("Content-Type"), "application/json")

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "reports", body["name"])
		assert.Equal(t, FolderMimeType, body["mimeType"])

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"D1","name":"reports","mimeType":"application/vnd.google-apps.folder"}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	f, err := client.CreateMetadata(context.Background(), map[string]any{
		"name":     "reports",
		"mimeType": FolderMimeType,
	})
	require.NoError(t, err)
	assert.Equal(t, "D1", f.ID)
	assert.Equal(t, FolderMimeType, f.MimeType)
}

func TestCreateComment_ReturnsID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/files/F1/comments", r.URL.Path)
		assert.Equal(t, "id", r.URL.Query().Get("fields"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "looks good", body["content"])

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"C1"}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	c, err := client.CreateComment(context.Background(), "F1", "looks good")
	require.NoError(t, err)
	assert.Equal(t, "C1", c.ID)
}

func TestCreateFile_NotFoundClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"message":"File not found"}}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	_, err := client.UpdateFile(context.Background(), "missing",
		map[string]any{}, strings.NewReader("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "File not found")
}

func TestCreateMetadata_ServerErrorClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	_, err := client.CreateMetadata(context.Background(), map[string]any{"name": "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServerError)
}
