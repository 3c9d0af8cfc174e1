package gdrive

import (
	"context"
	"io"

	"github.com/mtoivanen/gdrive-go/drive"
)

// Service is the remote storage collaborator the client operates
// against. Defined at the consumer per Go convention "accept interfaces,
// return structs"; *drive.Client provides the live implementation.
type Service interface {
	// CreateFile uploads media as a new file with the given metadata body.
	CreateFile(ctx context.Context, body map[string]any, media io.Reader) (*drive.File, error)

	// UpdateFile replaces an existing file's content in place.
	UpdateFile(ctx context.Context, fileID string, body map[string]any, media io.Reader) (*drive.File, error)

	// CreateMetadata creates a file object without media (folders).
	CreateMetadata(ctx context.Context, body map[string]any) (*drive.File, error)

	// NewMediaDownload prepares a chunked download of fileID's content,
	// writing delivered chunks to w.
	NewMediaDownload(fileID string, w io.Writer) MediaStream

	// CreateComment posts a plain-text comment to an existing file.
	CreateComment(ctx context.Context, fileID, content string) (*drive.Comment, error)
}

// MediaStream yields a file's content chunk by chunk. Each NextChunk
// delivers one chunk to the download's writer and reports cumulative
// progress plus a completion flag.
type MediaStream interface {
	NextChunk(ctx context.Context) (drive.Progress, bool, error)
}

// driveService adapts *drive.Client to the Service interface. Only the
// download constructor needs adapting: it returns the concrete stream
// type where the interface wants MediaStream.
type driveService struct {
	*drive.Client
}

func (s driveService) NewMediaDownload(fileID string, w io.Writer) MediaStream {
	return s.Client.NewMediaDownload(fileID, w)
}

var _ Service = driveService{}
