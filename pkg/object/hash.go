package object

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
)

// HashSize is the length in bytes of a raw object digest.
const HashSize = sha1.Size

// ZeroHash is the empty Hash. It never names a stored object.
const ZeroHash Hash = ""

// HashBytes computes the raw SHA-1 of data and returns it as a lowercase
// hex-encoded Hash. It does not add an object envelope.
func HashBytes(data []byte) Hash {
	sum := sha1.Sum(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// HashFramed computes the digest of an already framed object
// ("type len\0content"). This is the storage key.
func HashFramed(framed []byte) Hash {
	return HashBytes(framed)
}

// HashObject computes the SHA-1 of the envelope "type len\0content",
// the same digest Git assigns to a loose object.
func HashObject(objType ObjectType, data []byte) Hash {
	h := sha1.New()
	h.Write(frameHeader(objType, len(data)))
	h.Write(data)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

// ParseHash validates a 40-character hex digest and lowercases it.
func ParseHash(s string) (Hash, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2*HashSize {
		return ZeroHash, fmt.Errorf("%w: %q has length %d, want %d", ErrInvalidHash, s, len(s), 2*HashSize)
	}
	if _, err := hex.DecodeString(s); err != nil {
		return ZeroHash, fmt.Errorf("%w: %q: %v", ErrInvalidHash, s, err)
	}
	return Hash(s), nil
}

// HashFromRaw converts the 20 binary digest bytes embedded in a tree entry
// into a Hash.
func HashFromRaw(raw []byte) (Hash, error) {
	if len(raw) != HashSize {
		return ZeroHash, fmt.Errorf("%w: raw digest has %d bytes, want %d", ErrInvalidHash, len(raw), HashSize)
	}
	return Hash(hex.EncodeToString(raw)), nil
}

// Raw returns the binary form of h. It fails for anything that is not a
// well-formed digest.
func (h Hash) Raw() ([]byte, error) {
	if len(h) != 2*HashSize {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHash, string(h))
	}
	raw, err := hex.DecodeString(string(h))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidHash, string(h), err)
	}
	return raw, nil
}

// IsZero reports whether h is the empty Hash.
func (h Hash) IsZero() bool { return h == ZeroHash }

// Short returns the first 7 characters of h for display.
func (h Hash) Short() string {
	if len(h) > 7 {
		return string(h[:7])
	}
	return string(h)
}

func (h Hash) String() string { return string(h) }
