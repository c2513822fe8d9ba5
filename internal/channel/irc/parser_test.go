package irc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine_Fields(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"ping", "PING :cho.ppy.sh", []string{"PING", ":cho.ppy.sh"}},
		{"privmsg keeps trailing spaces", ":alice!cho@ppy.sh PRIVMSG #vietnamese :xin chao ban",
			[]string{":alice!cho@ppy.sh", "PRIVMSG", "#vietnamese", ":xin chao ban"}},
		{"numeric", ":cho.ppy.sh 001 relaybot :Welcome to osu!Bancho.",
			[]string{":cho.ppy.sh", "001", "relaybot", ":Welcome to osu!Bancho."}},
		{"single field", "garbage", []string{"garbage"}},
		{"empty", "", []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := ParseLine(tt.raw)
			assert.Equal(t, tt.want, l.Fields)
			assert.Equal(t, tt.raw, l.Raw)
		})
	}
}

func TestLine_KeepAlive(t *testing.T) {
	l := ParseLine("PING :token123")
	assert.True(t, l.IsKeepAlive())
	assert.Equal(t, ":token123", l.KeepAliveToken())

	bare := ParseLine("PING")
	assert.True(t, bare.IsKeepAlive())
	assert.Equal(t, "", bare.KeepAliveToken())

	// A prefixed line mentioning PING in a later field is not a probe.
	assert.False(t, ParseLine(":a!cho@ppy.sh PRIVMSG #c :PING").IsKeepAlive())
}

func TestLine_Command(t *testing.T) {
	cmd, err := ParseLine(":cho.ppy.sh 464 bot :Bad authentication token.").Command()
	require.NoError(t, err)
	assert.Equal(t, "464", cmd)

	_, err = ParseLine("garbage").Command()
	assert.ErrorIs(t, err, errNoCommand)

	_, err = ParseLine("prefix ").Command()
	assert.ErrorIs(t, err, errNoCommand)
}

func TestLine_Field(t *testing.T) {
	l := ParseLine("a b")
	f, ok := l.Field(1)
	assert.True(t, ok)
	assert.Equal(t, "b", f)

	_, ok = l.Field(2)
	assert.False(t, ok)
	_, ok = l.Field(-1)
	assert.False(t, ok)
}

func TestParseChatPost(t *testing.T) {
	post, err := parseChatPost(ParseLine(":peppy!cho@ppy.sh PRIVMSG #vietnamese :hello world"))
	require.NoError(t, err)
	assert.Equal(t, "peppy", post.Author)
	assert.Equal(t, "#vietnamese", post.Target)
	assert.Equal(t, "hello world", post.Body)
}

func TestParseChatPost_ActionKeepsControlBytes(t *testing.T) {
	post, err := parseChatPost(ParseLine(":peppy!cho@ppy.sh PRIVMSG #vietnamese :\x01ACTION waves\x01"))
	require.NoError(t, err)
	assert.Equal(t, "\x01ACTION waves\x01", post.Body)
}

func TestParseChatPost_TooShort(t *testing.T) {
	_, err := parseChatPost(ParseLine(":peppy!cho@ppy.sh PRIVMSG #vietnamese"))
	assert.ErrorIs(t, err, errShortChatMsg)
}

func TestAuthorFromPrefix(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{":peppy!cho@ppy.sh", "peppy"},
		{":Some_User!cho@ppy.sh", "Some_User"},
		{":a!cho@ppy.sh", "a"},
		{":x!y@z", "x"},
		{":server", "server"},
		{":", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			assert.Equal(t, tt.want, authorFromPrefix(tt.prefix))
		})
	}
}

func FuzzParseLine(f *testing.F) {
	f.Add("PING :cho.ppy.sh")
	f.Add(":peppy!cho@ppy.sh PRIVMSG #vietnamese :hello")
	f.Add(":cho.ppy.sh 001 bot :Welcome")
	f.Add("")
	f.Add("   ")
	f.Add(string([]byte{0x00, 0x01}))

	f.Fuzz(func(t *testing.T, raw string) {
		l := ParseLine(raw)

		if len(l.Fields) == 0 || len(l.Fields) > maxFields {
			t.Fatalf("ParseLine(%q) produced %d fields", raw, len(l.Fields))
		}
		if strings.Join(l.Fields, " ") != raw {
			t.Errorf("fields of %q do not rejoin to the input", raw)
		}

		// None of these may panic, whatever the input.
		_, _ = l.Command()
		_ = l.KeepAliveToken()
		if post, err := parseChatPost(l); err == nil && len(post.Author) > len(raw) {
			t.Errorf("author %q longer than line %q", post.Author, raw)
		}
	})
}
