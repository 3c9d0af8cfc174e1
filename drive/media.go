package drive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// MediaDownload drives a chunked download of a file's content. Each
// NextChunk call issues one ranged request, streams the delivered bytes
// to the destination writer, and reports cumulative progress plus a done
// flag. The zero chunk of an empty file reports done immediately.
type MediaDownload struct {
	c      *Client
	fileID string
	w      io.Writer

	offset int64
	total  int64 // -1 until the server reports it
	done   bool
}

// NewMediaDownload prepares a chunked media download for fileID, writing
// delivered chunks to w. No request is issued until NextChunk.
func (c *Client) NewMediaDownload(fileID string, w io.Writer) *MediaDownload {
	return &MediaDownload{
		c:      c,
		fileID: fileID,
		w:      w,
		total:  -1,
	}
}

// NextChunk fetches the next chunk. It returns the progress after the
// chunk was written and whether the download is complete. Calling
// NextChunk after completion keeps returning done with no request.
func (d *MediaDownload) NextChunk(ctx context.Context) (Progress, bool, error) {
	if d.done {
		return Progress{TotalBytesSoFar: d.offset, TotalSize: d.total}, true, nil
	}

	endpoint := d.c.baseURL + "/files/" + url.PathEscape(d.fileID) + "?alt=media"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return Progress{}, false, fmt.Errorf("drive: creating media request: %w", err)
	}

	tok, err := d.c.token.Token()
	if err != nil {
		return Progress{}, false, fmt.Errorf("drive: obtaining token: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", d.offset, d.offset+d.c.chunkSize-1))

	resp, err := d.c.httpClient.Do(req)
	if err != nil {
		return Progress{}, false, fmt.Errorf("drive: media request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusPartialContent:
		written, copyErr := io.Copy(d.w, resp.Body)
		d.offset += written

		if copyErr != nil {
			return Progress{}, false, fmt.Errorf("drive: streaming media chunk: %w", copyErr)
		}

		if total, ok := parseRangeTotal(resp.Header.Get("Content-Range")); ok {
			d.total = total
		}

		d.done = d.total >= 0 && d.offset >= d.total

	case http.StatusOK:
		// Server ignored the range and sent the whole file in one go.
		written, copyErr := io.Copy(d.w, resp.Body)
		d.offset += written

		if copyErr != nil {
			return Progress{}, false, fmt.Errorf("drive: streaming media: %w", copyErr)
		}

		d.total = d.offset
		d.done = true

	case http.StatusRequestedRangeNotSatisfiable:
		// Requested past the end: zero-byte file or final chunk landed
		// exactly on the boundary.
		d.total = d.offset
		d.done = true

	default:
		errBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			errBody = []byte("(failed to read response body)")
		}

		return Progress{}, false, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(errBody),
			Err:        classifyStatus(resp.StatusCode),
		}
	}

	d.c.logger.Debug("media chunk delivered",
		slog.String("file_id", d.fileID),
		slog.Int64("bytes_so_far", d.offset),
		slog.Int64("total", d.total),
		slog.Bool("done", d.done),
	)

	return Progress{TotalBytesSoFar: d.offset, TotalSize: d.total}, d.done, nil
}

// parseRangeTotal extracts the total size from a Content-Range header of
// the form "bytes 0-1023/4096". A "*" total is reported as unknown.
func parseRangeTotal(header string) (int64, bool) {
	slash := strings.LastIndexByte(header, '/')
	if slash < 0 {
		return 0, false
	}

	totalPart := header[slash+1:]
	if totalPart == "*" {
		return 0, false
	}

	total, err := strconv.ParseInt(totalPart, 10, 64)
	if err != nil {
		return 0, false
	}

	return total, true
}
