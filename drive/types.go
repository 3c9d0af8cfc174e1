package drive

// FolderMimeType marks a Drive file object as a folder container.
const FolderMimeType = "application/vnd.google-apps.folder"

// File is the metadata the API returns for a file or folder object.
type File struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	MimeType string   `json:"mimeType"`
	Size     int64    `json:"size,string,omitempty"`
	Parents  []string `json:"parents,omitempty"`
}

// Comment is the response for a created comment. Only the identifier is
// requested from the API.
type Comment struct {
	ID string `json:"id"`
}

// Progress reports the state of a chunked media download after a chunk
// has been delivered.
type Progress struct {
	// TotalBytesSoFar is the cumulative number of bytes delivered.
	TotalBytesSoFar int64

	// TotalSize is the full size of the media, or -1 when the server has
	// not reported it yet.
	TotalSize int64
}
