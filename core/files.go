package core

import "io"

// FileStore is any service that can persist uploaded files under named
// folders and report the public URL path they are served from.
type FileStore interface {
	// EnsureFolder creates the folder if absent; it is idempotent.
	EnsureFolder(folder string) error
	// Save writes src to folder/filename, completing the write before
	// returning. It returns the stored file's path on disk.
	Save(folder, filename string, src io.Reader) (string, error)
	// URLPath returns the public path the file is served back from.
	URLPath(folder, filename string) string
}
