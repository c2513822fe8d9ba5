package irc

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, lr *LineReader) []string {
	t.Helper()
	var lines []string
	for {
		line, err := lr.Next()
		if errors.Is(err, io.EOF) {
			return lines
		}
		require.NoError(t, err)
		lines = append(lines, line)
	}
}

func TestLineReader_SplitsOnNewline(t *testing.T) {
	lr := NewLineReader(strings.NewReader("PING :a\r\n:x!cho@ppy.sh PRIVMSG #c :hi\nlast"))
	assert.Equal(t, []string{"PING :a", ":x!cho@ppy.sh PRIVMSG #c :hi", "last"}, readAll(t, lr))
}

func TestLineReader_EmptyStreamIsDisconnect(t *testing.T) {
	lr := NewLineReader(strings.NewReader(""))
	_, err := lr.Next()
	assert.ErrorIs(t, err, io.EOF)

	// Stays at EOF.
	_, err = lr.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestLineReader_TrimsTrailingWhitespaceOnly(t *testing.T) {
	lr := NewLineReader(strings.NewReader("  leading kept  \t\r\n\n"))
	assert.Equal(t, []string{"  leading kept", ""}, readAll(t, lr))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestLineReader_ReadError(t *testing.T) {
	lr := NewLineReader(failingReader{})
	_, err := lr.Next()
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
	assert.Contains(t, err.Error(), "connection reset")
}
