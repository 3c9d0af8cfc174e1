package gdrive

import (
	"context"
	"log/slog"

	"github.com/mtoivanen/gdrive-go/drive"
)

// CreateFolder creates a folder container named name. folderID, when
// non-empty, nests the new folder under that parent. extra fields are
// passed through to the remote body; "name", "mimeType", and "parents"
// are set by the client and override caller-supplied values. Folder
// creation is not retried.
func (c *Client) CreateFolder(ctx context.Context, name, folderID string, extra map[string]any) (*drive.File, error) {
	var result *drive.File

	err := c.gate.Do("create_folder", func() error {
		body := make(map[string]any, len(extra)+3)
		for k, v := range extra {
			body[k] = v
		}

		body["name"] = name
		body["mimeType"] = drive.FolderMimeType

		if folderID != "" {
			body["parents"] = []string{folderID}
		}

		c.logger.Debug("creating folder",
			slog.String("name", name),
			slog.String("parent", folderID),
		)

		var opErr error
		result, opErr = c.svc.CreateMetadata(ctx, body)

		return opErr
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
