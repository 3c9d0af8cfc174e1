package gdrive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mtoivanen/gdrive-go/internal/throttle"
)

// downloadFilePerms matches the standard file permissions for newly
// written downloads (owner rw, group/other r).
const downloadFilePerms = 0o644

// DownloadBytes fetches fileID's full content into memory. When
// maxBytesPerSecond is positive, the chunk loop sleeps between chunks to
// keep the observed transfer speed under that ceiling; zero or negative
// disables throttling.
//
// Downloads are not retried — a failed transfer surfaces the transport
// or service error directly. This asymmetry with Upload is deliberate:
// a partially consumed download cannot be transparently resent.
func (c *Client) DownloadBytes(ctx context.Context, fileID string, maxBytesPerSecond int64) ([]byte, error) {
	var buf bytes.Buffer

	err := c.gate.Do("download_bytes", func() error {
		return c.download(ctx, fileID, &buf, maxBytesPerSecond)
	})
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// DownloadFile streams fileID's content to localPath, creating or
// truncating the file. The file handle is closed on every exit path; a
// partially written file is left in place on error.
func (c *Client) DownloadFile(ctx context.Context, fileID, localPath string, maxBytesPerSecond int64) error {
	return c.gate.Do("download_file", func() error {
		f, err := os.OpenFile(localPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, downloadFilePerms)
		if err != nil {
			return fmt.Errorf("gdrive: opening %s: %w", localPath, err)
		}

		downloadErr := c.download(ctx, fileID, f, maxBytesPerSecond)

		if closeErr := f.Close(); closeErr != nil && downloadErr == nil {
			return fmt.Errorf("gdrive: closing %s: %w", localPath, closeErr)
		}

		return downloadErr
	})
}

// download drives the chunk loop shared by both download forms, feeding
// each chunk's size and arrival time into the throttle and sleeping as
// instructed before requesting the next chunk. The final chunk's delay
// is deliberately skipped: pacing only ever defers the next request,
// never the return to the caller.
func (c *Client) download(ctx context.Context, fileID string, w io.Writer, maxBytesPerSecond int64) error {
	w = c.bw.WrapWriter(ctx, w)
	stream := c.svc.NewMediaDownload(fileID, w)

	state := throttle.Begin(time.Now())

	var prevTotal int64

	for {
		progress, done, err := stream.NextChunk(ctx)
		if err != nil {
			return err
		}

		chunkBytes := progress.TotalBytesSoFar - prevTotal
		prevTotal = progress.TotalBytesSoFar

		var sleep time.Duration
		state, sleep = throttle.Next(state, chunkBytes, time.Now(), maxBytesPerSecond)

		if done {
			c.logger.Debug("download complete",
				slog.String("file_id", fileID),
				slog.Int64("bytes", progress.TotalBytesSoFar),
			)

			return nil
		}

		if sleep > 0 {
			c.sleepFunc(sleep)
		}
	}
}
