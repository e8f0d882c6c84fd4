package csvtext

// reader.go wraps uploaded files before they reach the tokenizer:
//
//   - the UTF-8 BOM written by Excel and other Windows tools is skipped
//   - bytes are counted so the size limit applies to the text itself
//   - invalid UTF-8 is replaced with U+FFFD once the text is decoded

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrFileTooLarge is returned by ReadText when the input exceeds its limit.
var ErrFileTooLarge = errors.New("file too large")

var bomBytes = []byte{0xEF, 0xBB, 0xBF}

// CountingReader tracks how many bytes have been read through it.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
}

// NewReader wraps r with BOM skipping and byte counting.
func NewReader(r io.Reader) *CountingReader {
	return &CountingReader{reader: skipBOM(r)}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// skipBOM drops a leading UTF-8 BOM and leaves any other prefix untouched.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(bomBytes)); err == nil && bytes.Equal(head, bomBytes) {
		_, _ = br.Discard(len(bomBytes))
	}
	return br
}

// ReadText reads r completely and returns it as valid UTF-8 text.
// It fails with ErrFileTooLarge once more than maxBytes have been read;
// maxBytes <= 0 disables the limit.
func ReadText(r io.Reader, maxBytes int64) (string, error) {
	cr := NewReader(r)
	var src io.Reader = cr
	if maxBytes > 0 {
		src = io.LimitReader(cr, maxBytes+1)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("read csv: %w", err)
	}
	if maxBytes > 0 && cr.BytesRead > maxBytes {
		return "", fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, maxBytes)
	}

	return strings.ToValidUTF8(string(data), "\uFFFD"), nil
}
