package course

// stream.go wraps dataset readers to handle artifacts of spreadsheet exports:
//
//   - bomSkippingReader: drops a leading UTF-8 BOM (0xEF 0xBB 0xBF)
//   - countingReader: tracks bytes read for load statistics

import (
	"bufio"
	"bytes"
	"io"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// bomSkippingReader removes a UTF-8 BOM from the start of the stream.
type bomSkippingReader struct {
	r       *bufio.Reader
	checked bool
}

func newBOMSkippingReader(r io.Reader) *bomSkippingReader {
	return &bomSkippingReader{r: bufio.NewReader(r)}
}

// Read implements io.Reader. The BOM check happens on the first call.
func (b *bomSkippingReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		head, err := b.r.Peek(len(utf8BOM))
		if err != nil && err != io.EOF {
			return 0, err
		}
		if bytes.Equal(head, utf8BOM) {
			if _, err := b.r.Discard(len(utf8BOM)); err != nil {
				return 0, err
			}
		}
	}
	return b.r.Read(p)
}

// countingReader tracks the number of bytes read through it.
type countingReader struct {
	r         io.Reader
	bytesRead int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.bytesRead += int64(n)
	return n, err
}
