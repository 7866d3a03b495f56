package remote

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// decodeBody wraps resp.Body according to its Content-Encoding. Closing the
// returned reader does not close resp.Body.
func decodeBody(resp *http.Response) (io.ReadCloser, error) {
	if !isGzipEncoded(resp.Header.Get("Content-Encoding")) {
		return io.NopCloser(resp.Body), nil
	}
	zr, err := gzip.NewReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gzip response: %w", err)
	}
	return zr, nil
}

// isGzipEncoded checks if the content encoding includes gzip.
func isGzipEncoded(contentEncoding string) bool {
	return strings.Contains(strings.ToLower(contentEncoding), "gzip")
}
