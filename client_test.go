package gdrive

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/mtoivanen/gdrive-go/drive"
)

// fakeService records calls and plays back configured responses. The
// zero value succeeds with empty metadata; tests override the hook
// functions for failures and custom responses.
type fakeService struct {
	mu sync.Mutex

	createBodies []map[string]any
	createMedia  [][]byte
	updateIDs    []string
	updateBodies []map[string]any
	metaBodies   []map[string]any
	commentCalls []struct{ FileID, Content string }

	createFunc  func() (*drive.File, error)
	updateFunc  func() (*drive.File, error)
	metaFunc    func() (*drive.File, error)
	commentFunc func() (*drive.Comment, error)

	// chunks feed the fake media stream, one NextChunk call per element.
	chunks [][]byte
}

func (f *fakeService) CreateFile(_ context.Context, body map[string]any, media io.Reader) (*drive.File, error) {
	data, err := io.ReadAll(media)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.createBodies = append(f.createBodies, body)
	f.createMedia = append(f.createMedia, data)
	fn := f.createFunc
	f.mu.Unlock()

	if fn != nil {
		return fn()
	}

	return &drive.File{ID: "created"}, nil
}

func (f *fakeService) UpdateFile(_ context.Context, fileID string, body map[string]any, media io.Reader) (*drive.File, error) {
	if _, err := io.ReadAll(media); err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.updateIDs = append(f.updateIDs, fileID)
	f.updateBodies = append(f.updateBodies, body)
	fn := f.updateFunc
	f.mu.Unlock()

	if fn != nil {
		return fn()
	}

	return &drive.File{ID: fileID}, nil
}

func (f *fakeService) CreateMetadata(_ context.Context, body map[string]any) (*drive.File, error) {
	f.mu.Lock()
	f.metaBodies = append(f.metaBodies, body)
	fn := f.metaFunc
	f.mu.Unlock()

	if fn != nil {
		return fn()
	}

	return &drive.File{ID: "folder"}, nil
}

func (f *fakeService) NewMediaDownload(_ string, w io.Writer) MediaStream {
	return &fakeStream{chunks: f.chunks, w: w}
}

func (f *fakeService) CreateComment(_ context.Context, fileID, content string) (*drive.Comment, error) {
	f.mu.Lock()
	f.commentCalls = append(f.commentCalls, struct{ FileID, Content string }{fileID, content})
	fn := f.commentFunc
	f.mu.Unlock()

	if fn != nil {
		return fn()
	}

	return &drive.Comment{ID: "comment-1"}, nil
}

// fakeStream delivers the configured chunks one NextChunk at a time,
// reporting done alongside the final chunk.
type fakeStream struct {
	chunks [][]byte
	w      io.Writer

	index   int
	written int64
	err     error
}

func (s *fakeStream) NextChunk(_ context.Context) (drive.Progress, bool, error) {
	if s.err != nil {
		return drive.Progress{}, false, s.err
	}

	if s.index >= len(s.chunks) {
		return drive.Progress{TotalBytesSoFar: s.written}, true, nil
	}

	chunk := s.chunks[s.index]
	s.index++

	n, err := s.w.Write(chunk)
	s.written += int64(n)

	if err != nil {
		return drive.Progress{}, false, err
	}

	done := s.index >= len(s.chunks)

	return drive.Progress{TotalBytesSoFar: s.written}, done, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestClient builds a client over svc with no real sleeping.
func newTestClient(svc Service, opts ...Option) *Client {
	c := NewWithService(svc, append([]Option{WithLogger(discardLogger())}, opts...)...)
	c.sleepFunc = func(time.Duration) {}

	return c
}
