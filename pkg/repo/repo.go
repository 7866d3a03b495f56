package repo

import (
	"time"

	"go.uber.org/zap"

	"github.com/odvcencio/gitplumb/pkg/object"
)

// MetaDir is the name of the repository metadata directory. It is never
// included in tree snapshots.
const MetaDir = ".git"

// DefaultBranch is the branch HEAD points at after Init.
const DefaultBranch = "master"

// Repo represents an opened repository.
type Repo struct {
	RootDir string        // working directory root
	GitDir  string        // .git/ directory
	Store   *object.Store // content-addressed object store

	log *zap.Logger
	now func() time.Time
}

// Option configures a Repo opened by Init or Open.
type Option func(*options)

type options struct {
	log       *zap.Logger
	cacheSize int
	now       func() time.Time
}

// WithLogger sets the logger shared by the repository and its store.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithObjectCache keeps up to n decoded objects in memory.
func WithObjectCache(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// WithClock overrides the time source used to stamp commits.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func newRepo(root, gitDir string, opts []Option) *Repo {
	o := options{log: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	if o.now == nil {
		o.now = time.Now
	}
	return &Repo{
		RootDir: root,
		GitDir:  gitDir,
		Store: object.NewStore(gitDir,
			object.WithLogger(o.log.Named("store")),
			object.WithCacheSize(o.cacheSize),
		),
		log: o.log,
		now: o.now,
	}
}
