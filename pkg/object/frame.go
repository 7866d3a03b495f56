package object

import (
	"bytes"
	"fmt"
	"strconv"
)

func frameHeader(objType ObjectType, n int) []byte {
	return []byte(fmt.Sprintf("%s %d\x00", objType, n))
}

// Frame prefixes data with its envelope: "type len\0content". The result is
// the exact byte sequence that is hashed and compressed on disk.
func Frame(objType ObjectType, data []byte) []byte {
	header := frameHeader(objType, len(data))
	out := make([]byte, 0, len(header)+len(data))
	out = append(out, header...)
	return append(out, data...)
}

// ParseFrame splits a framed object into its type and content. The type
// must be blob, tree or commit, and the length must be canonical decimal
// matching the content length exactly.
func ParseFrame(framed []byte) (ObjectType, []byte, error) {
	nulIdx := bytes.IndexByte(framed, 0)
	if nulIdx < 0 {
		return "", nil, fmt.Errorf("%w: no NUL after header", ErrCorruptObject)
	}
	header := framed[:nulIdx]
	content := framed[nulIdx+1:]

	typ, size, ok := bytes.Cut(header, []byte(" "))
	if !ok {
		return "", nil, fmt.Errorf("%w: invalid header %q", ErrCorruptObject, header)
	}
	if !ObjectType(typ).Valid() {
		return "", nil, fmt.Errorf("%w: unknown type %q", ErrCorruptObject, typ)
	}
	length, err := strconv.Atoi(string(size))
	if err != nil || length < 0 || strconv.Itoa(length) != string(size) {
		return "", nil, fmt.Errorf("%w: invalid length %q", ErrCorruptObject, size)
	}
	if len(content) != length {
		return "", nil, fmt.Errorf("%w: length mismatch (header=%d, actual=%d)", ErrCorruptObject, length, len(content))
	}
	return ObjectType(typ), content, nil
}
