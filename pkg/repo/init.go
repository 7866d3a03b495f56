package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ErrNotRepository is returned by Open when no metadata directory is found.
var ErrNotRepository = errors.New("not a git repository")

// Init creates the repository layout at path: .git/HEAD, .git/objects/ and
// .git/refs/heads/. Running Init on an existing repository is safe; an
// existing HEAD is left untouched.
func Init(path string, opts ...Option) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("init: abs path: %w", err)
	}
	gitDir := filepath.Join(abs, MetaDir)

	dirs := []string{
		filepath.Join(gitDir, "objects"),
		filepath.Join(gitDir, "refs", "heads"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	r := newRepo(abs, gitDir, opts)

	headPath := filepath.Join(gitDir, "HEAD")
	if _, err := os.Stat(headPath); errors.Is(err, fs.ErrNotExist) {
		head := "ref: refs/heads/" + DefaultBranch + "\n"
		if err := os.WriteFile(headPath, []byte(head), 0o644); err != nil {
			return nil, fmt.Errorf("init: write HEAD: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("init: stat HEAD: %w", err)
	}

	r.log.Debug("initialized repository", zap.String("dir", gitDir))
	return r, nil
}

// Open searches upward from path for a .git/ directory and opens the
// repository.
func Open(path string, opts ...Option) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		gitDir := filepath.Join(cur, MetaDir)
		info, err := os.Stat(gitDir)
		if err == nil && info.IsDir() {
			return newRepo(cur, gitDir, opts), nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open %s: %w (or any parent up to /)", abs, ErrNotRepository)
		}
		cur = parent
	}
}

// Head reads .git/HEAD. For a symbolic ref it returns the ref path
// (e.g. "refs/heads/master"); otherwise the raw content.
func (r *Repo) Head() (string, error) {
	data, err := os.ReadFile(filepath.Join(r.GitDir, "HEAD"))
	if err != nil {
		return "", fmt.Errorf("head: %w", err)
	}
	content := strings.TrimRight(string(data), "\n")
	return strings.TrimPrefix(content, "ref: "), nil
}
