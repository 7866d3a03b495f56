package object

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/renameio"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/zlib"
	"go.uber.org/zap"
)

// Store is a content-addressed object store with a 2-character fan-out
// directory layout: objects/ab/cdef0123... Each file holds the
// zlib-compressed framed object.
type Store struct {
	root  string
	log   *zap.Logger
	cache *lru.Cache[Hash, []byte]
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for object writes.
func WithLogger(l *zap.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithCacheSize keeps up to n decompressed objects in memory. n <= 0
// disables the cache.
func WithCacheSize(n int) StoreOption {
	return func(s *Store) {
		if n <= 0 {
			s.cache = nil
			return
		}
		// lru.New only fails for a non-positive size.
		s.cache, _ = lru.New[Hash, []byte](n)
	}
}

// NewStore creates a Store rooted at the given directory. The objects/
// subdirectory is created lazily on first write.
func NewStore(root string, opts ...StoreOption) *Store {
	s := &Store{root: root, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the directory holding objects/.
func (s *Store) Root() string { return s.root }

// objectPath returns the filesystem path for a given hash.
func (s *Store) objectPath(h Hash) string {
	return filepath.Join(s.root, "objects", string(h[:2]), string(h[2:]))
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) bool {
	if _, err := ParseHash(string(h)); err != nil {
		return false
	}
	_, err := os.Stat(s.objectPath(h))
	return err == nil
}

// Put stores an already framed object and returns its digest. Writing a
// digest that already exists is a no-op. Input that is not a well-formed
// frame fails with ErrCorruptObject. New objects are written to a
// temporary file and renamed into place, so readers never see a partial
// object.
func (s *Store) Put(framed []byte) (Hash, error) {
	if _, _, err := ParseFrame(framed); err != nil {
		return ZeroHash, fmt.Errorf("object write: %w", err)
	}
	h := HashFramed(framed)

	// Fast path: already exists.
	if s.Has(h) {
		return h, nil
	}

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(framed); err != nil {
		return ZeroHash, fmt.Errorf("object write %s: compress: %w", h, err)
	}
	if err := zw.Close(); err != nil {
		return ZeroHash, fmt.Errorf("object write %s: compress: %w", h, err)
	}

	dir := filepath.Join(s.root, "objects", string(h[:2]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ZeroHash, fmt.Errorf("object write mkdir: %w", err)
	}
	if err := renameio.WriteFile(s.objectPath(h), buf.Bytes(), 0o644); err != nil {
		return ZeroHash, fmt.Errorf("object write %s: %w", h, err)
	}

	s.log.Debug("wrote object",
		zap.String("hash", h.Short()),
		zap.Int("size", len(framed)),
		zap.Int("compressed", buf.Len()),
	)
	return h, nil
}

// Get returns the framed bytes stored under h.
func (s *Store) Get(h Hash) ([]byte, error) {
	if _, err := ParseHash(string(h)); err != nil {
		return nil, fmt.Errorf("object read %q: %w", string(h), err)
	}
	if s.cache != nil {
		if framed, ok := s.cache.Get(h); ok {
			return bytes.Clone(framed), nil
		}
	}

	compressed, err := os.ReadFile(s.objectPath(h))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("object read %s: %w", h, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("object read %s: %w", h, err)
	}

	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("object read %s: %w: %v", h, ErrCorruptObject, err)
	}
	framed, err := io.ReadAll(zr)
	if err != nil {
		zr.Close()
		return nil, fmt.Errorf("object read %s: %w: %v", h, ErrCorruptObject, err)
	}
	if err := zr.Close(); err != nil {
		return nil, fmt.Errorf("object read %s: %w: %v", h, ErrCorruptObject, err)
	}

	if s.cache != nil {
		s.cache.Add(h, bytes.Clone(framed))
	}
	return framed, nil
}

// Write frames and stores an object and returns its content hash.
func (s *Store) Write(objType ObjectType, data []byte) (Hash, error) {
	return s.Put(Frame(objType, data))
}

// Read retrieves an object by hash, returning its type and raw content.
func (s *Store) Read(h Hash) (ObjectType, []byte, error) {
	framed, err := s.Get(h)
	if err != nil {
		return "", nil, err
	}
	objType, content, err := ParseFrame(framed)
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: %w", h, err)
	}
	return objType, content, nil
}

// List returns every digest in the store in lexicographic order.
func (s *Store) List() ([]Hash, error) {
	objDir := filepath.Join(s.root, "objects")
	shards, err := os.ReadDir(objDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("object list: %w", err)
	}

	var out []Hash
	for _, shard := range shards {
		if !shard.IsDir() || len(shard.Name()) != 2 {
			continue
		}
		files, err := os.ReadDir(filepath.Join(objDir, shard.Name()))
		if err != nil {
			return nil, fmt.Errorf("object list %s: %w", shard.Name(), err)
		}
		for _, f := range files {
			h, err := ParseHash(shard.Name() + f.Name())
			if err != nil {
				continue
			}
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

func (s *Store) readTyped(h Hash, want ObjectType) ([]byte, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != want {
		return nil, fmt.Errorf("object %s: %w: got %q, want %q", h, ErrTypeMismatch, objType, want)
	}
	return data, nil
}

// WriteBlob serializes and stores a Blob. Empty blobs are refused with
// ErrEmptyContent and nothing is written.
func (s *Store) WriteBlob(b *Blob) (Hash, error) {
	if b == nil || len(b.Data) == 0 {
		return ZeroHash, ErrEmptyContent
	}
	return s.Write(TypeBlob, MarshalBlob(b))
}

// ReadBlob reads and deserializes a Blob.
func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	data, err := s.readTyped(h, TypeBlob)
	if err != nil {
		return nil, err
	}
	return UnmarshalBlob(data)
}

// WriteTree serializes and stores a TreeObj.
func (s *Store) WriteTree(tr *TreeObj) (Hash, error) {
	data, err := MarshalTree(tr)
	if err != nil {
		return ZeroHash, err
	}
	return s.Write(TypeTree, data)
}

// ReadTree reads and deserializes a TreeObj using the given parse mode.
func (s *Store) ReadTree(h Hash, mode ParseMode) (*TreeObj, error) {
	data, err := s.readTyped(h, TypeTree)
	if err != nil {
		return nil, err
	}
	tr, err := UnmarshalTree(data, mode)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", h, err)
	}
	return tr, nil
}

// TreeNames returns the entry names of a tree sorted for display.
func (s *Store) TreeNames(h Hash, mode ParseMode) ([]string, error) {
	tr, err := s.ReadTree(h, mode)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(tr.Entries))
	for _, e := range tr.Entries {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names, nil
}

// WriteCommit serializes and stores a CommitObj.
func (s *Store) WriteCommit(c *CommitObj) (Hash, error) {
	return s.Write(TypeCommit, MarshalCommit(c))
}

// ReadCommit reads and deserializes a CommitObj.
func (s *Store) ReadCommit(h Hash) (*CommitObj, error) {
	data, err := s.readTyped(h, TypeCommit)
	if err != nil {
		return nil, err
	}
	c, err := UnmarshalCommit(data)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", h, err)
	}
	return c, nil
}
