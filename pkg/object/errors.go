package object

import (
	"errors"
	"fmt"
)

var (
	// ErrObjectNotFound is returned when no object exists for a digest.
	ErrObjectNotFound = errors.New("object not found")
	// ErrCorruptObject is returned when stored bytes fail to decompress or
	// do not match their declared envelope.
	ErrCorruptObject = errors.New("corrupt object")
	// ErrEmptyContent is returned when asked to store a zero-length blob.
	// Empty blobs are rejected and never written.
	ErrEmptyContent = errors.New("empty content")
	// ErrEncoding is returned when a tree cannot be built because one of its
	// children could not be stored.
	ErrEncoding = errors.New("encoding failed")
	// ErrTypeMismatch is returned when an object has a different type than
	// the caller asked for.
	ErrTypeMismatch = errors.New("object type mismatch")
	// ErrInvalidHash is returned for malformed digests.
	ErrInvalidHash = errors.New("invalid hash")
)

// EncodingError reports the path of the tree child that failed to encode.
type EncodingError struct {
	Path string
	Err  error
}

func (e *EncodingError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: %s: %v", ErrEncoding, e.Path, e.Err)
}

func (e *EncodingError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *EncodingError) Is(target error) bool {
	return target == ErrEncoding
}
