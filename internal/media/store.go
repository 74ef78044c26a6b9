package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Store manages image files under a media root directory.
type Store struct {
	root string
}

// NewStore creates a media store rooted at the given directory.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the media root directory.
func (s *Store) Root() string {
	return s.root
}

// Abs resolves a stored relative path to an absolute filesystem path.
func (s *Store) Abs(relPath string) string {
	return filepath.Join(s.root, filepath.FromSlash(relPath))
}

// Exists reports whether a stored file is present.
func (s *Store) Exists(relPath string) bool {
	info, err := os.Stat(s.Abs(relPath))
	return err == nil && info.Mode().IsRegular()
}

// Remove deletes a stored file. Missing files are not an error.
func (s *Store) Remove(relPath string) error {
	err := os.Remove(s.Abs(relPath))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Staging collects files for a single import run outside their final
// locations. A rolled back run discards the whole staging directory, so
// the database transaction and the filesystem stay consistent: files only
// reach their final paths after the transaction commits.
type Staging struct {
	store *Store
	dir   string
	files []string
}

// StagingPrefix is the directory name prefix for in-flight import runs.
const StagingPrefix = ".staging-"

// NewStaging creates a staging area for one import run.
func (s *Store) NewStaging(runID string) (*Staging, error) {
	dir := filepath.Join(s.root, StagingPrefix+runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	return &Staging{store: s, dir: dir}, nil
}

// Add copies the source file into the staging area under relPath.
func (st *Staging) Add(srcPath, relPath string) error {
	dst := filepath.Join(st.dir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if err := copyFile(srcPath, dst); err != nil {
		return err
	}
	st.files = append(st.files, relPath)
	return nil
}

// Promote moves every staged file into its final location and removes the
// staging directory. Call only after the surrounding transaction committed.
func (st *Staging) Promote() error {
	for _, relPath := range st.files {
		src := filepath.Join(st.dir, filepath.FromSlash(relPath))
		dst := st.store.Abs(relPath)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		if err := os.Rename(src, dst); err != nil {
			return fmt.Errorf("failed to promote %s: %w", relPath, err)
		}
	}
	return os.RemoveAll(st.dir)
}

// Discard removes the staging directory and everything in it.
func (st *Staging) Discard() error {
	return os.RemoveAll(st.dir)
}

// IsStagingDir reports whether a directory name belongs to an import run's
// staging area.
func IsStagingDir(name string) bool {
	return strings.HasPrefix(name, StagingPrefix)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
