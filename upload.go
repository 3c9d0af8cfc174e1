package gdrive

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mtoivanen/gdrive-go/drive"
	"github.com/mtoivanen/gdrive-go/internal/retry"
)

// thumbnailMimeType is the mime type recorded for thumbnail content hints.
const thumbnailMimeType = "image/png"

// UploadSpec describes one upload. It is read once by Upload and never
// mutated.
type UploadSpec struct {
	// Media is the payload to upload. It is read fully before the first
	// transport attempt so retries can resend the same bytes.
	Media io.Reader

	// FileID, when set, updates that file's content in place instead of
	// creating a new file.
	FileID string

	// FolderID, when set, becomes the file's single parent container.
	FolderID string

	// Thumbnail, when set, is attached to the file's content hints as a
	// PNG image.
	Thumbnail []byte

	// RetryCount is the total number of transport attempts for transient
	// failures, including the first. Zero means DefaultRetryCount.
	RetryCount int

	// Extra holds additional metadata fields passed through to the
	// remote body. The keys "parents", "mimeType", and "contentHints"
	// are reserved: the client sets them itself and caller-supplied
	// values for "parents" are overwritten when FolderID is set, while
	// "contentHints" is merged with the thumbnail.
	Extra map[string]any
}

// Upload sends spec's payload to the remote service, creating a new file
// or updating FileID in place. The transport call is retried on
// transient failures up to RetryCount attempts with a fixed backoff;
// exhaustion returns an error wrapping ErrRetriesExhausted and only the
// final attempt's message. Errors the remote service itself raises are
// returned unchanged, without retrying.
func (c *Client) Upload(ctx context.Context, spec UploadSpec) (*drive.File, error) {
	var result *drive.File

	err := c.gate.Do("upload", func() error {
		var opErr error
		result, opErr = c.upload(ctx, spec)

		return opErr
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (c *Client) upload(ctx context.Context, spec UploadSpec) (*drive.File, error) {
	body := shapeUploadBody(spec)

	// Buffer the payload once; each retry attempt resends the same bytes.
	media, err := io.ReadAll(spec.Media)
	if err != nil {
		return nil, fmt.Errorf("gdrive: reading upload media: %w", err)
	}

	c.logger.Debug("upload starting",
		slog.String("file_id", spec.FileID),
		slog.Int("media_bytes", len(media)),
	)

	var result *drive.File

	err = retry.Do(func() error {
		var opErr error

		if spec.FileID != "" {
			result, opErr = c.svc.UpdateFile(ctx, spec.FileID, body, bytes.NewReader(media))
		} else {
			result, opErr = c.svc.CreateFile(ctx, body, bytes.NewReader(media))
		}

		return opErr
	}, spec.RetryCount, c.retryBackoff, c.sleepFunc)

	var exhausted *retry.Exhausted
	if errors.As(err, &exhausted) {
		// Contract: only the last message survives exhaustion.
		return nil, fmt.Errorf("%w after %d attempts: %s",
			ErrRetriesExhausted, exhausted.Attempts, exhausted.LastMessage)
	}

	if err != nil {
		return nil, err
	}

	return result, nil
}

// shapeUploadBody builds the metadata body from the spec: caller extras
// first, then the reserved keys the client owns.
func shapeUploadBody(spec UploadSpec) map[string]any {
	body := make(map[string]any, len(spec.Extra)+2)
	for k, v := range spec.Extra {
		body[k] = v
	}

	if spec.FolderID != "" {
		body["parents"] = []string{spec.FolderID}
	}

	if len(spec.Thumbnail) > 0 {
		hints, _ := body["contentHints"].(map[string]any)
		if hints == nil {
			hints = make(map[string]any, 1)
		}

		hints["thumbnail"] = map[string]any{
			"image":    base64.URLEncoding.EncodeToString(spec.Thumbnail),
			"mimeType": thumbnailMimeType,
		}

		body["contentHints"] = hints
	}

	return body
}
