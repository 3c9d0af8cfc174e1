package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
)

// CreateFile uploads media as a new file with the given metadata body.
// The body is the open metadata map sent to the API verbatim (name,
// parents, contentHints, and any other Drive file fields).
func (c *Client) CreateFile(ctx context.Context, body map[string]any, media io.Reader) (*File, error) {
	c.logger.Info("creating file", slog.Any("name", body["name"]))

	endpoint := c.uploadBaseURL + "/files?uploadType=multipart&fields=" + fileFields

	return c.sendMultipart(ctx, http.MethodPost, endpoint, body, media)
}

// UpdateFile replaces the content of an existing file in place, merging
// the metadata body into the file's current metadata.
func (c *Client) UpdateFile(ctx context.Context, fileID string, body map[string]any, media io.Reader) (*File, error) {
	c.logger.Info("updating file", slog.String("file_id", fileID))

	endpoint := c.uploadBaseURL + "/files/" + url.PathEscape(fileID) + "?uploadType=multipart&fields=" + fileFields

	return c.sendMultipart(ctx, http.MethodPatch, endpoint, body, media)
}

// CreateMetadata creates a file object without media content. Folders are
// created this way, with body["mimeType"] set to FolderMimeType.
func (c *Client) CreateMetadata(ctx context.Context, body map[string]any) (*File, error) {
	c.logger.Info("creating metadata object",
		slog.Any("name", body["name"]),
		slog.Any("mime_type", body["mimeType"]),
	)

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("drive: marshaling metadata body: %w", err)
	}

	endpoint := c.baseURL + "/files?fields=" + fileFields

	resp, err := c.do(ctx, http.MethodPost, endpoint, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return decodeFile(resp.Body)
}

// CreateComment posts a plain-text comment to an existing file and
// returns the new comment's identifier.
func (c *Client) CreateComment(ctx context.Context, fileID, content string) (*Comment, error) {
	c.logger.Info("creating comment", slog.String("file_id", fileID))

	payload, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return nil, fmt.Errorf("drive: marshaling comment body: %w", err)
	}

	endpoint := c.baseURL + "/files/" + url.PathEscape(fileID) + "/comments?fields=id"

	resp, err := c.do(ctx, http.MethodPost, endpoint, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var comment Comment
	if decErr := json.NewDecoder(resp.Body).Decode(&comment); decErr != nil {
		return nil, fmt.Errorf("drive: decoding comment response: %w", decErr)
	}

	return &comment, nil
}

// fileFields is the partial-response selector for file metadata requests.
const fileFields = "id%2Cname%2CmimeType%2Csize%2Cparents"

// sendMultipart builds a multipart/related request with a JSON metadata
// part followed by the media part, and decodes the returned file metadata.
func (c *Client) sendMultipart(ctx context.Context, method, endpoint string, body map[string]any, media io.Reader) (*File, error) {
	metadata, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("drive: marshaling file metadata: %w", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	metaPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"application/json; charset=UTF-8"},
	})
	if err != nil {
		return nil, fmt.Errorf("drive: creating metadata part: %w", err)
	}

	if _, err := metaPart.Write(metadata); err != nil {
		return nil, fmt.Errorf("drive: writing metadata part: %w", err)
	}

	mediaPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"application/octet-stream"},
	})
	if err != nil {
		return nil, fmt.Errorf("drive: creating media part: %w", err)
	}

	if _, err := io.Copy(mediaPart, media); err != nil {
		return nil, fmt.Errorf("drive: writing media part: %w", err)
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("drive: finalizing multipart body: %w", err)
	}

	contentType := "multipart/related; boundary=" + mw.Boundary()

	resp, err := c.do(ctx, method, endpoint, contentType, &buf)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return decodeFile(resp.Body)
}

func decodeFile(r io.Reader) (*File, error) {
	var f File
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("drive: decoding file metadata: %w", err)
	}

	return &f, nil
}
