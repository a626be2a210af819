package transport

import (
	"bytes"
	"io"
)

// newBodyReader returns nil for an empty body so GET/DELETE-without-body
// requests don't carry a spurious zero-length reader.
func newBodyReader(body []byte) io.Reader {
	if len(body) == 0 {
		return nil
	}
	return bytes.NewReader(body)
}
