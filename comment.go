package gdrive

import (
	"context"
	"log/slog"
)

// CreateComment posts a plain-text comment to an existing file and
// returns the new comment's identifier. Comments are not retried.
func (c *Client) CreateComment(ctx context.Context, fileID, text string) (string, error) {
	var commentID string

	err := c.gate.Do("create_comment", func() error {
		c.logger.Debug("creating comment", slog.String("file_id", fileID))

		comment, opErr := c.svc.CreateComment(ctx, fileID, text)
		if opErr != nil {
			return opErr
		}

		commentID = comment.ID

		return nil
	})
	if err != nil {
		return "", err
	}

	return commentID, nil
}
