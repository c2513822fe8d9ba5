package irc

import (
	"github.com/lrstanley/girc"
	"github.com/soyeahso/ircrelay/internal/config"
)

// handshakeLines returns the registration commands replayed on every
// connect, in the order the server expects them: credentials, identity,
// channel join.
func handshakeLines(cfg config.SourceConfig) []string {
	events := []*girc.Event{
		{Command: girc.PASS, Params: []string{cfg.Password}},
		{Command: girc.NICK, Params: []string{cfg.Username}},
		{Command: girc.JOIN, Params: []string{cfg.Channel}},
	}

	lines := make([]string, 0, len(events))
	for _, e := range events {
		lines = append(lines, string(e.Bytes()))
	}
	return lines
}

// pongLine answers a keep-alive probe, echoing its token byte for byte.
func pongLine(token string) string {
	if token == "" {
		return girc.PONG
	}
	return girc.PONG + " " + token
}
