package irc

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"unicode"
)

// LineReader yields newline-terminated protocol lines from a byte stream.
type LineReader struct {
	r   *bufio.Reader
	eof bool
}

// NewLineReader wraps r in a buffered line reader.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: bufio.NewReader(r)}
}

// Next returns the next line with its trailing terminator and whitespace
// removed. A partial line ending the stream is still returned; the call after
// it reports io.EOF, which means the peer closed the connection.
func (lr *LineReader) Next() (string, error) {
	if lr.eof {
		return "", io.EOF
	}

	line, err := lr.r.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", err
		}
		lr.eof = true
		if line == "" {
			return "", io.EOF
		}
	}
	return strings.TrimRightFunc(line, unicode.IsSpace), nil
}
