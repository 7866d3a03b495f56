package remote

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/odvcencio/gitplumb/pkg/object"
)

// ErrMalformedAdvertisement is returned when a ref advertisement cannot be
// parsed as pkt-lines.
var ErrMalformedAdvertisement = errors.New("malformed ref advertisement")

// Ref is one advertised remote reference.
type Ref struct {
	Name string
	Hash object.Hash
}

// Advertisement is the parsed response of a smart-HTTP ref discovery
// request.
type Advertisement struct {
	Service      string
	Refs         []Ref
	Capabilities Capabilities
}

// Capabilities represents a set of protocol capabilities.
type Capabilities struct {
	set map[string]struct{}
}

// ParseCapabilities parses a space-separated capability string.
func ParseCapabilities(raw string) Capabilities {
	caps := Capabilities{set: make(map[string]struct{})}
	for _, cap := range strings.Fields(raw) {
		caps.set[cap] = struct{}{}
	}
	return caps
}

// Has returns true if the capability is present. Capabilities carrying a
// value ("agent=git/2.x") match on the name before "=".
func (c Capabilities) Has(name string) bool {
	if _, ok := c.set[name]; ok {
		return true
	}
	for k := range c.set {
		if key, _, ok := strings.Cut(k, "="); ok && key == name {
			return true
		}
	}
	return false
}

// String returns a sorted space-separated capability string.
func (c Capabilities) String() string {
	names := make([]string, 0, len(c.set))
	for k := range c.set {
		names = append(names, k)
	}
	sort.Strings(names)
	return strings.Join(names, " ")
}

// readPktLines splits data into pkt-line payloads. A flush packet ("0000")
// yields a nil element.
func readPktLines(data []byte) ([][]byte, error) {
	var lines [][]byte
	for len(data) > 0 {
		if len(data) < 4 {
			return nil, fmt.Errorf("%w: truncated length prefix", ErrMalformedAdvertisement)
		}
		n, err := strconv.ParseUint(string(data[:4]), 16, 16)
		if err != nil {
			return nil, fmt.Errorf("%w: bad length prefix %q", ErrMalformedAdvertisement, data[:4])
		}
		if n == 0 {
			lines = append(lines, nil)
			data = data[4:]
			continue
		}
		if n < 4 || int(n) > len(data) {
			return nil, fmt.Errorf("%w: packet length %d out of range", ErrMalformedAdvertisement, n)
		}
		lines = append(lines, data[4:n])
		data = data[n:]
	}
	return lines, nil
}

// ParseAdvertisement decodes a protocol v0 upload-pack ref advertisement:
// an optional "# service=..." header and flush, then one
// "<hash> <refname>" line per ref where the first carries capabilities
// after a NUL.
func ParseAdvertisement(data []byte) (*Advertisement, error) {
	lines, err := readPktLines(data)
	if err != nil {
		return nil, err
	}
	adv := &Advertisement{Capabilities: ParseCapabilities("")}

	if len(lines) > 0 && bytes.HasPrefix(lines[0], []byte("# service=")) {
		adv.Service = strings.TrimSpace(strings.TrimPrefix(string(lines[0]), "# service="))
		lines = lines[1:]
		if len(lines) > 0 && lines[0] == nil {
			lines = lines[1:]
		}
	}

	first := true
	for _, line := range lines {
		if line == nil {
			break
		}
		line = bytes.TrimSuffix(line, []byte("\n"))
		if first {
			if i := bytes.IndexByte(line, 0); i >= 0 {
				adv.Capabilities = ParseCapabilities(string(line[i+1:]))
				line = line[:i]
			}
			first = false
		}

		hash, name, ok := strings.Cut(string(line), " ")
		if !ok {
			return nil, fmt.Errorf("%w: ref line %q", ErrMalformedAdvertisement, line)
		}
		h, err := object.ParseHash(hash)
		if err != nil {
			return nil, fmt.Errorf("%w: ref %q: %v", ErrMalformedAdvertisement, name, err)
		}
		// An empty repository advertises only its capabilities.
		if name == "capabilities^{}" {
			continue
		}
		adv.Refs = append(adv.Refs, Ref{Name: name, Hash: h})
	}
	return adv, nil
}
