package repo

import (
	"strings"
	"testing"
	"time"

	"github.com/odvcencio/gitplumb/pkg/object"
)

var fixedNow = time.Unix(1700000000, 0).UTC()

func TestCommitTree_Chain(t *testing.T) {
	t.Setenv("GIT_AUTHOR_NAME", "")
	t.Setenv("GIT_AUTHOR_EMAIL", "")
	r, err := Init(t.TempDir(), WithClock(func() time.Time { return fixedNow }))
	if err != nil {
		t.Fatal(err)
	}

	t1 := object.HashObject(object.TypeTree, nil)
	first, err := r.CommitTree(CommitRequest{Tree: t1, Message: "init"})
	if err != nil {
		t.Fatalf("CommitTree 1: %v", err)
	}
	t2 := object.HashObject(object.TypeTree, []byte("dangling"))
	second, err := r.CommitTree(CommitRequest{Tree: t2, Parent: first, Message: "second"})
	if err != nil {
		t.Fatalf("CommitTree 2: %v", err)
	}

	_, payload, err := r.Store.Read(first)
	if err != nil {
		t.Fatal(err)
	}
	want := "tree " + string(t1) + "\n" +
		"author Your Name <your.email@example.com> 1700000000 +0000\n" +
		"committer Your Name <your.email@example.com> 1700000000 +0000\n" +
		"\n" +
		"init\n"
	if string(payload) != want {
		t.Errorf("first commit =\n%s\nwant\n%s", payload, want)
	}

	c, err := r.Store.ReadCommit(second)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if c.Parent != first {
		t.Errorf("parent = %s, want %s", c.Parent, first)
	}
	if c.Message != "second" {
		t.Errorf("message = %q", c.Message)
	}
}

func TestCommitTree_IdentityFromConfig(t *testing.T) {
	t.Setenv("GIT_AUTHOR_NAME", "")
	t.Setenv("GIT_AUTHOR_EMAIL", "")
	r, err := Init(t.TempDir(), WithClock(func() time.Time { return fixedNow }))
	if err != nil {
		t.Fatal(err)
	}
	if err := r.SetIdentity(Identity{Name: "Cfg User", Email: "cfg@example.com"}); err != nil {
		t.Fatal(err)
	}
	h, err := r.CommitTree(CommitRequest{Tree: object.HashObject(object.TypeTree, nil), Message: "m"})
	if err != nil {
		t.Fatal(err)
	}
	_, payload, err := r.Store.Read(h)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(payload), "author Cfg User <cfg@example.com> 1700000000 +0000\n") {
		t.Errorf("payload lacks configured author:\n%s", payload)
	}
}

func TestCommitTree_ExplicitAuthorAndTime(t *testing.T) {
	r, err := Init(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	when := time.Unix(42, 0).In(time.FixedZone("", 2*3600))
	h, err := r.CommitTree(CommitRequest{
		Tree:    object.HashObject(object.TypeTree, nil),
		Message: "explicit",
		Author:  &Identity{Name: "A", Email: "a@example.com"},
		When:    when,
	})
	if err != nil {
		t.Fatal(err)
	}
	c, err := r.Store.ReadCommit(h)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Committer.String(); got != "A <a@example.com> 42 +0200" {
		t.Errorf("committer = %q", got)
	}
}

func TestCommitTree_InvalidHashes(t *testing.T) {
	r, err := Init(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.CommitTree(CommitRequest{Tree: "nope"}); err == nil {
		t.Error("invalid tree accepted")
	}
	if _, err := r.CommitTree(CommitRequest{Tree: object.HashObject(object.TypeTree, nil), Parent: "nope"}); err == nil {
		t.Error("invalid parent accepted")
	}
}
