package object

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// MarshalBlob serializes a Blob to raw bytes (identity).
func MarshalBlob(b *Blob) []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// UnmarshalBlob deserializes raw bytes into a Blob.
func UnmarshalBlob(data []byte) (*Blob, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return &Blob{Data: out}, nil
}

// ---------------------------------------------------------------------------
// TreeObj
// ---------------------------------------------------------------------------

// ParseMode controls how tree payloads with malformed records are decoded.
type ParseMode int

const (
	// ParseLenient stops at the first malformed record and returns the
	// entries decoded so far (permissive truncation).
	ParseLenient ParseMode = iota
	// ParseStrict fails with ErrCorruptObject on any malformed record.
	ParseStrict
)

func (m ParseMode) String() string {
	if m == ParseStrict {
		return "strict"
	}
	return "lenient"
}

// MarshalTree serializes a TreeObj. Entries are sorted byte-wise by Name so
// the same set of entries always yields the same bytes. Each entry is
//
//	<mode> <name>\0<20 raw digest bytes>
//
// with no separator between entries.
func MarshalTree(tr *TreeObj) ([]byte, error) {
	sorted := make([]TreeEntry, len(tr.Entries))
	copy(sorted, tr.Entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	var buf bytes.Buffer
	for i, e := range sorted {
		if e.Name == "" || strings.ContainsAny(e.Name, "\x00/") {
			return nil, fmt.Errorf("marshal tree: invalid entry name %q", e.Name)
		}
		if i > 0 && sorted[i-1].Name == e.Name {
			return nil, fmt.Errorf("marshal tree: duplicate entry %q", e.Name)
		}
		raw, err := e.Hash.Raw()
		if err != nil {
			return nil, fmt.Errorf("marshal tree: entry %q: %w", e.Name, err)
		}
		buf.WriteString(e.Mode())
		buf.WriteByte(' ')
		buf.WriteString(e.Name)
		buf.WriteByte(0)
		buf.Write(raw)
	}
	return buf.Bytes(), nil
}

// UnmarshalTree parses a tree payload. Records are read in stored order by
// locating the space after the mode and the NUL after the name, then
// consuming the fixed-width digest.
func UnmarshalTree(data []byte, mode ParseMode) (*TreeObj, error) {
	tr := &TreeObj{}
	for len(data) > 0 {
		sp := bytes.IndexByte(data, ' ')
		nul := -1
		if sp >= 0 {
			if i := bytes.IndexByte(data[sp:], 0); i >= 0 {
				nul = sp + i
			}
		}
		if sp < 0 || nul < 0 {
			if mode == ParseStrict {
				return nil, fmt.Errorf("unmarshal tree: %w: unterminated entry at %q", ErrCorruptObject, truncateForError(data))
			}
			break
		}

		modeStr := string(data[:sp])
		name := string(data[sp+1 : nul])
		rest := data[nul+1:]

		isDir, ok := parseTreeMode(modeStr)
		if !ok && mode == ParseStrict {
			return nil, fmt.Errorf("unmarshal tree: %w: unknown mode %q for %q", ErrCorruptObject, modeStr, name)
		}

		if len(rest) < HashSize {
			if mode == ParseStrict {
				return nil, fmt.Errorf("unmarshal tree: %w: entry %q has %d digest bytes, want %d", ErrCorruptObject, name, len(rest), HashSize)
			}
			tr.Entries = append(tr.Entries, TreeEntry{Name: name, IsDir: isDir})
			break
		}

		h, _ := HashFromRaw(rest[:HashSize])
		tr.Entries = append(tr.Entries, TreeEntry{Name: name, IsDir: isDir, Hash: h})
		data = rest[HashSize:]
	}
	return tr, nil
}

func parseTreeMode(mode string) (isDir bool, known bool) {
	switch mode {
	case TreeModeDir, treeModeDirCanonical:
		return true, true
	case TreeModeFile:
		return false, true
	}
	return false, false
}

func truncateForError(b []byte) string {
	const max = 32
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}

// ---------------------------------------------------------------------------
// Signature
// ---------------------------------------------------------------------------

// String renders s as "Name <email> <unix-seconds> <+hhmm>".
func (s Signature) String() string {
	return fmt.Sprintf("%s <%s> %d %s", s.Name, s.Email, s.When.Unix(), formatTimezone(s.When))
}

func formatTimezone(t time.Time) string {
	_, offset := t.Zone()
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	return fmt.Sprintf("%c%02d%02d", sign, offset/3600, (offset%3600)/60)
}

// ParseSignature parses the "Name <email> unix tz" form written into commit
// headers.
func ParseSignature(s string) (Signature, error) {
	lt := strings.IndexByte(s, '<')
	gt := strings.LastIndexByte(s, '>')
	if lt < 0 || gt < lt {
		return Signature{}, fmt.Errorf("parse signature %q: missing <email>", s)
	}
	sig := Signature{
		Name:  strings.TrimSpace(s[:lt]),
		Email: s[lt+1 : gt],
	}

	fields := strings.Fields(s[gt+1:])
	if len(fields) != 2 {
		return Signature{}, fmt.Errorf("parse signature %q: want timestamp and timezone", s)
	}
	ts, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Signature{}, fmt.Errorf("parse signature %q: bad timestamp: %w", s, err)
	}
	loc, err := parseTimezone(fields[1])
	if err != nil {
		return Signature{}, fmt.Errorf("parse signature %q: %w", s, err)
	}
	sig.When = time.Unix(ts, 0).In(loc)
	return sig, nil
}

func parseTimezone(tz string) (*time.Location, error) {
	if len(tz) != 5 || (tz[0] != '+' && tz[0] != '-') {
		return nil, fmt.Errorf("bad timezone %q", tz)
	}
	hh, err := strconv.Atoi(tz[1:3])
	if err != nil {
		return nil, fmt.Errorf("bad timezone %q", tz)
	}
	mm, err := strconv.Atoi(tz[3:5])
	if err != nil {
		return nil, fmt.Errorf("bad timezone %q", tz)
	}
	offset := hh*3600 + mm*60
	if tz[0] == '-' {
		offset = -offset
	}
	return time.FixedZone(tz, offset), nil
}

// ---------------------------------------------------------------------------
// CommitObj
// ---------------------------------------------------------------------------

// MarshalCommit serializes a CommitObj:
//
//	tree H
//	parent H     (optional)
//	author A
//	committer C
//
//	message
//
// The message is always followed by a newline.
func MarshalCommit(c *CommitObj) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", string(c.TreeHash))
	if !c.Parent.IsZero() {
		fmt.Fprintf(&buf, "parent %s\n", string(c.Parent))
	}
	fmt.Fprintf(&buf, "author %s\n", c.Author)
	fmt.Fprintf(&buf, "committer %s\n", c.Committer)
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	buf.WriteByte('\n')
	return buf.Bytes()
}

// UnmarshalCommit parses a CommitObj from its serialized form.
func UnmarshalCommit(data []byte) (*CommitObj, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("unmarshal commit: %w: missing header/message separator", ErrCorruptObject)
	}
	header := string(data[:idx])
	message := strings.TrimSuffix(string(data[idx+2:]), "\n")

	c := &CommitObj{Message: message}
	for _, line := range strings.Split(header, "\n") {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("unmarshal commit: %w: malformed header line %q", ErrCorruptObject, line)
		}
		switch key {
		case "tree":
			c.TreeHash = Hash(val)
		case "parent":
			if !c.Parent.IsZero() {
				return nil, fmt.Errorf("unmarshal commit: multiple parents are not supported")
			}
			c.Parent = Hash(val)
		case "author", "committer":
			sig, err := ParseSignature(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: %w", err)
			}
			if key == "author" {
				c.Author = sig
			} else {
				c.Committer = sig
			}
		default:
			return nil, fmt.Errorf("unmarshal commit: unknown header key %q", key)
		}
	}
	if c.TreeHash.IsZero() {
		return nil, fmt.Errorf("unmarshal commit: %w: missing tree", ErrCorruptObject)
	}
	return c, nil
}
