package repo

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/odvcencio/gitplumb/pkg/object"
)

// CommitRequest describes a commit to create from an existing tree.
type CommitRequest struct {
	Tree    object.Hash
	Parent  object.Hash // optional
	Message string

	// Author overrides the resolved identity when set.
	Author *Identity
	// When overrides the repository clock when non-zero.
	When time.Time
}

// CommitTree writes a commit object for req.Tree and returns its hash.
// Author and committer are the same identity and time. Neither the tree
// nor the parent has to exist in the store; only their format is checked.
// No ref is moved.
func (r *Repo) CommitTree(req CommitRequest) (object.Hash, error) {
	tree, err := object.ParseHash(string(req.Tree))
	if err != nil {
		return object.ZeroHash, fmt.Errorf("commit tree: tree: %w", err)
	}
	var parent object.Hash
	if !req.Parent.IsZero() {
		parent, err = object.ParseHash(string(req.Parent))
		if err != nil {
			return object.ZeroHash, fmt.Errorf("commit tree: parent: %w", err)
		}
	}

	var id Identity
	if req.Author != nil {
		id = *req.Author
	} else {
		id, err = r.ResolveIdentity()
		if err != nil {
			return object.ZeroHash, fmt.Errorf("commit tree: %w", err)
		}
	}

	when := req.When
	if when.IsZero() {
		when = r.now()
	}
	sig := object.Signature{Name: id.Name, Email: id.Email, When: when}

	h, err := r.Store.WriteCommit(&object.CommitObj{
		TreeHash:  tree,
		Parent:    parent,
		Author:    sig,
		Committer: sig,
		Message:   req.Message,
	})
	if err != nil {
		return object.ZeroHash, fmt.Errorf("commit tree: write commit: %w", err)
	}

	r.log.Debug("wrote commit",
		zap.String("hash", string(h)),
		zap.String("tree", string(tree)),
		zap.String("parent", string(parent)),
	)
	return h, nil
}
