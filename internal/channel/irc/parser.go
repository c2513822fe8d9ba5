package irc

import (
	"errors"
	"strings"

	"github.com/lrstanley/girc"
)

// hostSuffixLen is the length of the fixed host suffix Bancho appends to
// every sender prefix ("!cho@ppy.sh").
const hostSuffixLen = 11

// maxFields is the number of space-separated fields a line is split into.
// The last field keeps any embedded spaces.
const maxFields = 4

var (
	errNoCommand    = errors.New("line has no command field")
	errShortChatMsg = errors.New("chat post is missing target or body")
)

// Line is one protocol line split into at most four fields: prefix, command,
// middle parameter and trailing parameter.
type Line struct {
	Raw    string
	Fields []string
}

// ParseLine splits raw on its first three spaces.
func ParseLine(raw string) Line {
	return Line{Raw: raw, Fields: strings.SplitN(raw, " ", maxFields)}
}

// Field returns field i, or "" and false when the line is too short.
func (l Line) Field(i int) (string, bool) {
	if i < 0 || i >= len(l.Fields) {
		return "", false
	}
	return l.Fields[i], true
}

// IsKeepAlive reports whether the line is a server PING. Keep-alive lines
// carry no prefix, so the command sits in field 0.
func (l Line) IsKeepAlive() bool {
	return len(l.Fields) > 0 && l.Fields[0] == girc.PING
}

// KeepAliveToken returns the PING token exactly as received.
func (l Line) KeepAliveToken() string {
	tok, _ := l.Field(1)
	return tok
}

// Command returns the command in field 1.
func (l Line) Command() (string, error) {
	cmd, ok := l.Field(1)
	if !ok || cmd == "" {
		return "", errNoCommand
	}
	return cmd, nil
}

// chatPost is the decoded form of a PRIVMSG line.
type chatPost struct {
	Author string
	Target string
	Body   string
}

// parseChatPost decodes a PRIVMSG line. The author is the prefix without its
// leading sigil and fixed host suffix; the body drops the single leading
// trailing-parameter marker.
func parseChatPost(l Line) (chatPost, error) {
	if len(l.Fields) < maxFields {
		return chatPost{}, errShortChatMsg
	}
	return chatPost{
		Author: authorFromPrefix(l.Fields[0]),
		Target: l.Fields[2],
		Body:   dropFirstByte(l.Fields[3]),
	}, nil
}

func authorFromPrefix(prefix string) string {
	prefix = dropFirstByte(prefix)
	if len(prefix) > hostSuffixLen {
		return prefix[:len(prefix)-hostSuffixLen]
	}
	if nick, _, ok := strings.Cut(prefix, "!"); ok {
		return nick
	}
	return prefix
}

func dropFirstByte(s string) string {
	if s == "" {
		return s
	}
	return s[1:]
}
