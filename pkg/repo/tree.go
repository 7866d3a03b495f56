package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/odvcencio/gitplumb/pkg/object"
)

// WriteTree snapshots dir into the object store and returns the root tree
// hash. Regular files become blobs and subdirectories become subtrees,
// recursively; the .git metadata directory is skipped at every level.
// Symlinks and other special files are ignored. Empty directories still
// produce a (zero-entry) tree.
//
// If any child cannot be stored, WriteTree fails with an error matching
// object.ErrEncoding that names the offending path.
func (r *Repo) WriteTree(dir string) (object.Hash, error) {
	if dir == "" {
		dir = r.RootDir
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return object.ZeroHash, fmt.Errorf("write tree: abs path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return object.ZeroHash, fmt.Errorf("write tree: %w", err)
	}
	if !info.IsDir() {
		return object.ZeroHash, fmt.Errorf("write tree: %s is not a directory", abs)
	}
	return r.writeTreeDir(abs, "")
}

// writeTreeDir encodes the directory at abs. rel is its slash-separated
// path below the snapshot root, used in errors and logs.
func (r *Repo) writeTreeDir(abs, rel string) (object.Hash, error) {
	dirEntries, err := os.ReadDir(abs)
	if err != nil {
		return object.ZeroHash, &object.EncodingError{Path: displayPath(rel), Err: err}
	}

	entries := make([]object.TreeEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if name == MetaDir {
			continue
		}
		childAbs := filepath.Join(abs, name)
		childRel := joinRel(rel, name)

		switch {
		case de.IsDir():
			h, err := r.writeTreeDir(childAbs, childRel)
			if err != nil {
				return object.ZeroHash, err
			}
			entries = append(entries, object.TreeEntry{Name: name, IsDir: true, Hash: h})

		case de.Type().IsRegular():
			h, err := r.writeFileBlob(childAbs)
			if err != nil {
				return object.ZeroHash, &object.EncodingError{Path: childRel, Err: err}
			}
			entries = append(entries, object.TreeEntry{Name: name, Hash: h})

		default:
			r.log.Debug("skipping non-regular file", zap.String("path", childRel))
		}
	}

	h, err := r.Store.WriteTree(&object.TreeObj{Entries: entries})
	if err != nil {
		var encErr *object.EncodingError
		if errors.As(err, &encErr) {
			return object.ZeroHash, err
		}
		return object.ZeroHash, &object.EncodingError{Path: displayPath(rel), Err: err}
	}
	r.log.Debug("wrote tree",
		zap.String("path", displayPath(rel)),
		zap.String("hash", string(h)),
		zap.Int("entries", len(entries)),
	)
	return h, nil
}

func (r *Repo) writeFileBlob(path string) (object.Hash, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return object.ZeroHash, err
	}
	return r.Store.WriteBlob(&object.Blob{Data: data})
}

// HashFile computes the blob digest of the file at path. When write is
// true the blob is also stored. Empty files fail with
// object.ErrEmptyContent.
func (r *Repo) HashFile(path string, write bool) (object.Hash, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return object.ZeroHash, fmt.Errorf("hash object: %w", err)
	}
	if len(data) == 0 {
		return object.ZeroHash, fmt.Errorf("hash object %s: %w", path, object.ErrEmptyContent)
	}
	if !write {
		return object.HashObject(object.TypeBlob, data), nil
	}
	h, err := r.Store.WriteBlob(&object.Blob{Data: data})
	if err != nil {
		return object.ZeroHash, fmt.Errorf("hash object %s: %w", path, err)
	}
	return h, nil
}

// ListTree returns the entry names of the tree at h, sorted for display.
func (r *Repo) ListTree(h object.Hash, mode object.ParseMode) ([]string, error) {
	names, err := r.Store.TreeNames(h, mode)
	if err != nil {
		return nil, fmt.Errorf("ls-tree: %w", err)
	}
	return names, nil
}

func joinRel(rel, name string) string {
	if rel == "" {
		return name
	}
	return rel + "/" + name
}

func displayPath(rel string) string {
	if rel == "" {
		return "."
	}
	return rel
}
