package gdrive

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtoivanen/gdrive-go/drive"
)

func TestUpload_NoFileIDCreates(t *testing.T) {
	svc := &fakeService{}
	want := &drive.File{ID: "F-new", Name: "payload.bin"}
	svc.createFunc = func() (*drive.File, error) { return want, nil }

	c := newTestClient(svc)

	got, err := c.Upload(context.Background(), UploadSpec{
		Media: strings.NewReader("12345"),
	})
	require.NoError(t, err)

	// The service's metadata response is returned verbatim.
	assert.Same(t, want, got)

	require.Len(t, svc.createMedia, 1)
	assert.Equal(t, []byte("12345"), svc.createMedia[0])
	assert.Empty(t, svc.updateIDs)
}

func TestUpload_FileIDUpdatesInPlace(t *testing.T) {
	svc := &fakeService{}
	c := newTestClient(svc)

	got, err := c.Upload(context.Background(), UploadSpec{
		Media:  strings.NewReader("content"),
		FileID: "F1",
	})
	require.NoError(t, err)
	assert.Equal(t, "F1", got.ID)

	assert.Equal(t, []string{"F1"}, svc.updateIDs)
	assert.Empty(t, svc.createBodies)
}

func TestUpload_FolderIDSetsSingleParent(t *testing.T) {
	svc := &fakeService{}
	c := newTestClient(svc)

	_, err := c.Upload(context.Background(), UploadSpec{
		Media:    strings.NewReader("x"),
		FolderID: "P1",
	})
	require.NoError(t, err)

	require.Len(t, svc.createBodies, 1)
	assert.Equal(t, []string{"P1"}, svc.createBodies[0]["parents"])
}

func TestUpload_ThumbnailMergedIntoContentHints(t *testing.T) {
	svc := &fakeService{}
	c := newTestClient(svc)

	thumb := []byte{0x89, 0x50, 0x4e, 0x47}

	_, err := c.Upload(context.Background(), UploadSpec{
		Media:     strings.NewReader("x"),
		Thumbnail: thumb,
		Extra: map[string]any{
			"contentHints": map[string]any{"indexableText": "report"},
		},
	})
	require.NoError(t, err)

	require.Len(t, svc.createBodies, 1)
	hints, ok := svc.createBodies[0]["contentHints"].(map[string]any)
	require.True(t, ok)

	// Existing hint keys survive the merge.
	assert.Equal(t, "report", hints["indexableText"])

	thumbHint, ok := hints["thumbnail"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "image/png", thumbHint["mimeType"])
	assert.Equal(t, base64.URLEncoding.EncodeToString(thumb), thumbHint["image"])
}

func TestUpload_ExtraFieldsPassThrough(t *testing.T) {
	svc := &fakeService{}
	c := newTestClient(svc)

	_, err := c.Upload(context.Background(), UploadSpec{
		Media: strings.NewReader("x"),
		Extra: map[string]any{
			"name":        "report.pdf",
			"description": "quarterly",
		},
	})
	require.NoError(t, err)

	require.Len(t, svc.createBodies, 1)
	assert.Equal(t, "report.pdf", svc.createBodies[0]["name"])
	assert.Equal(t, "quarterly", svc.createBodies[0]["description"])
}

func TestUpload_TransientFailuresRetried(t *testing.T) {
	svc := &fakeService{}

	calls := 0
	svc.createFunc = func() (*drive.File, error) {
		calls++
		if calls < 3 {
			return nil, fmt.Errorf("posting media: %w", syscall.EPIPE)
		}

		return &drive.File{ID: "eventually"}, nil
	}

	c := newTestClient(svc)

	got, err := c.Upload(context.Background(), UploadSpec{
		Media:      strings.NewReader("x"),
		RetryCount: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, "eventually", got.ID)
	assert.Equal(t, 3, calls)
}

func TestUpload_ExhaustionWrapsSentinelAndLastMessage(t *testing.T) {
	svc := &fakeService{}

	calls := 0
	svc.createFunc = func() (*drive.File, error) {
		calls++
		return nil, fmt.Errorf("attempt %d: %w", calls, syscall.ECONNRESET)
	}

	c := newTestClient(svc)

	_, err := c.Upload(context.Background(), UploadSpec{
		Media:      strings.NewReader("x"),
		RetryCount: 3,
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Contains(t, err.Error(), "attempt 3")
}

func TestUpload_DefaultRetryCount(t *testing.T) {
	svc := &fakeService{}

	calls := 0
	svc.createFunc = func() (*drive.File, error) {
		calls++
		return nil, fmt.Errorf("tls hiccup: %w", syscall.EPIPE)
	}

	c := newTestClient(svc)

	_, err := c.Upload(context.Background(), UploadSpec{Media: strings.NewReader("x")})
	require.Error(t, err)
	assert.Equal(t, DefaultRetryCount, calls)
}

func TestUpload_ServiceErrorPropagatesUnchanged(t *testing.T) {
	svc := &fakeService{}

	boom := &drive.APIError{StatusCode: 404, Message: "not found", Err: drive.ErrNotFound}
	calls := 0
	svc.updateFunc = func() (*drive.File, error) {
		calls++
		return nil, boom
	}

	c := newTestClient(svc)

	_, err := c.Upload(context.Background(), UploadSpec{
		Media:  strings.NewReader("x"),
		FileID: "F1",
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, drive.ErrNotFound)

	var apiErr *drive.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Same(t, boom, apiErr)
}

func TestUpload_MediaReadErrorSurfacesBeforeTransport(t *testing.T) {
	svc := &fakeService{}
	c := newTestClient(svc)

	_, err := c.Upload(context.Background(), UploadSpec{Media: failingReader{}})
	require.Error(t, err)
	assert.Empty(t, svc.createBodies)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("source unreadable")
}
