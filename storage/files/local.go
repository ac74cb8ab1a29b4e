package filestore

import (
	"io"
	"io/ioutil"
	"os"
	"path"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/shulehub/backend/core"
)

// LocalStore keeps uploaded files on the local filesystem under a
// single root directory. Folder and file names are flattened with
// filepath.Base so callers cannot escape the root.
type LocalStore struct {
	root string
}

var _ core.FileStore = (*LocalStore)(nil) // interface compliance check

func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating media root")
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) EnsureFolder(folder string) error {
	dir := filepath.Join(s.root, filepath.Base(folder))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "creating folder")
	}
	return nil
}

// Save writes src to a temp file first and renames it into place, so a
// half-written upload never appears under the folder.
func (s *LocalStore) Save(folder, filename string, src io.Reader) (string, error) {
	dir := filepath.Join(s.root, filepath.Base(folder))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "creating folder")
	}

	tmp, err := ioutil.TempFile(dir, ".upload-*")
	if err != nil {
		return "", errors.Wrap(err, "creating temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err = io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		return "", errors.Wrap(err, "writing file")
	}
	if err = tmp.Close(); err != nil {
		return "", errors.Wrap(err, "closing temp file")
	}

	dst := filepath.Join(dir, filepath.Base(filename))
	if err = os.Rename(tmp.Name(), dst); err != nil {
		return "", errors.Wrap(err, "moving file into place")
	}
	return dst, nil
}

// URLPath returns the path the API serves the file under; see the
// static route mounted on the media root.
func (s *LocalStore) URLPath(folder, filename string) string {
	return path.Join("/assignments", filepath.Base(folder), filepath.Base(filename))
}
