package object

import "time"

// Hash is a 40-character hex-encoded SHA-1 digest.
type Hash string

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
)

// Valid reports whether t is one of the known object types.
func (t ObjectType) Valid() bool {
	switch t {
	case TypeBlob, TypeTree, TypeCommit:
		return true
	}
	return false
}

func (t ObjectType) String() string { return string(t) }

const (
	// Tree mode strings as written into tree payloads.
	TreeModeFile = "100644"
	TreeModeDir  = "040000"

	// treeModeDirCanonical is the form Git itself writes. It is accepted
	// when decoding but never produced.
	treeModeDirCanonical = "40000"
)

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// TreeEntry is one entry in a tree object.
type TreeEntry struct {
	Name  string
	IsDir bool
	Hash  Hash // blob digest for files, subtree digest for directories
}

// Mode returns the tree mode string for e.
func (e TreeEntry) Mode() string {
	if e.IsDir {
		return TreeModeDir
	}
	return TreeModeFile
}

// TreeObj holds tree entries. They are serialized in byte-wise name order
// regardless of the order held here.
type TreeObj struct {
	Entries []TreeEntry
}

// Signature identifies who wrote a commit and when.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// CommitObj represents a commit pointing to a tree with metadata. Parent is
// ZeroHash for a root commit.
type CommitObj struct {
	TreeHash  Hash
	Parent    Hash
	Author    Signature
	Committer Signature
	Message   string
}
