// Package irc implements the source side of the relay: a single persistent
// IRC connection with keep-alive handling and reconnection backoff.
package irc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lrstanley/girc"
	"github.com/soyeahso/ircrelay/internal/config"
	"github.com/soyeahso/ircrelay/internal/domain"
	"github.com/soyeahso/ircrelay/internal/hooks"
	"github.com/soyeahso/ircrelay/internal/logging"
)

// ErrAuthRejected is returned by Run once the server has refused the
// configured credentials. Reconnection is never attempted afterwards.
var ErrAuthRejected = errors.New("irc: authentication rejected")

const (
	dialTimeout  = 30 * time.Second
	writeTimeout = 10 * time.Second
)

// Sink receives finished messages. Enqueue must not block.
type Sink interface {
	Enqueue(msg domain.OutboundMessage)
}

// Formatter turns a chat event into destination text.
type Formatter interface {
	Format(ev domain.ChatEvent) string
}

// DialFunc opens the transport to the server.
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// Option configures a Client.
type Option func(*Client)

// WithHooks emits lifecycle events on m.
func WithHooks(m *hooks.Manager) Option {
	return func(c *Client) { c.hooks = m }
}

// WithDialer replaces the default TCP dialer.
func WithDialer(d DialFunc) Option {
	return func(c *Client) { c.dial = d }
}

// Client owns the source connection and its reconnection state. All fields
// are confined to the goroutine calling Run.
type Client struct {
	cfg    config.SourceConfig
	sink   Sink
	format Formatter
	hooks  *hooks.Manager
	log    *logging.Logger

	dial  DialFunc
	sleep func(ctx context.Context, d time.Duration) error

	state    *ReconnectState
	lastPing time.Time
}

// New creates a client for cfg. Chat posts addressed to cfg.Channel are
// formatted with format and handed to sink.
func New(cfg config.SourceConfig, sink Sink, format Formatter, log *logging.Logger, opts ...Option) *Client {
	d := &net.Dialer{Timeout: dialTimeout}
	c := &Client{
		cfg:    cfg,
		sink:   sink,
		format: format,
		log:    log.Sub("irc"),
		dial:   d.DialContext,
		sleep:  sleepContext,
		state:  NewReconnectState(cfg.Reconnect.Base, cfg.Reconnect.Step, cfg.Reconnect.Max),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connection is one live socket plus its line reader. It is never reused
// after Close.
type Connection struct {
	conn        net.Conn
	lines       *LineReader
	readTimeout time.Duration
}

// ReadLine blocks for the next line. With a read timeout configured, an idle
// connection fails with a timeout error.
func (c *Connection) ReadLine() (string, error) {
	if c.readTimeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
			return "", err
		}
	}
	return c.lines.Next()
}

// WriteLine sends line terminated by CRLF.
func (c *Connection) WriteLine(line string) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	_, err := io.WriteString(c.conn, line+"\r\n")
	return err
}

// Close closes the underlying socket.
func (c *Connection) Close() error {
	return c.conn.Close()
}

// Run connects and serves until ctx is cancelled or the server rejects the
// credentials. Only a failure of the very first connection is returned as an
// error; later transport faults go through the reconnection backoff.
func (c *Client) Run(ctx context.Context) error {
	conn, err := c.connect(ctx)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", c.cfg.Addr(), err)
	}

	for {
		err := c.serve(ctx, conn)
		conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}

		ev := c.log.Warn().Err(err)
		if !c.lastPing.IsZero() {
			ev = ev.Time("lastPing", c.lastPing)
		}
		ev.Msg("source connection lost")
		c.hooks.EmitAsync(ctx, hooks.EventSourceDisconnected, map[string]any{
			"server": c.cfg.Addr(),
			"error":  errString(err),
		})

		conn, err = c.reconnect(ctx)
		if err != nil {
			return err
		}
	}
}

func (c *Client) reconnect(ctx context.Context) (*Connection, error) {
	for {
		if !c.state.AllowReconnect() {
			return nil, ErrAuthRejected
		}

		delay := c.state.NextDelay()
		if delay > 0 {
			c.log.Info().Dur("delay", delay).Msg("reconnecting after delay")
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		conn, err := c.connect(ctx)
		if err == nil {
			return conn, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.log.Warn().Err(err).Str("server", c.cfg.Addr()).Msg("reconnect failed")
	}
}

// connect dials the server and replays the registration handshake.
func (c *Client) connect(ctx context.Context) (*Connection, error) {
	c.log.Info().
		Str("server", c.cfg.Addr()).
		Str("nick", c.cfg.Username).
		Str("channel", c.cfg.Channel).
		Msg("connecting to IRC")

	nc, err := c.dial(ctx, "tcp", c.cfg.Addr())
	if err != nil {
		return nil, err
	}

	conn := &Connection{
		conn:        nc,
		lines:       NewLineReader(nc),
		readTimeout: c.cfg.ReadTimeout,
	}
	for _, line := range handshakeLines(c.cfg) {
		if err := conn.WriteLine(line); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sending handshake: %w", err)
		}
	}
	return conn, nil
}

func (c *Client) serve(ctx context.Context, conn *Connection) error {
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		raw, err := conn.ReadLine()
		if err != nil {
			return err
		}
		if err := c.handleLine(ctx, conn, raw); err != nil {
			return err
		}
	}
}

func (c *Client) handleLine(ctx context.Context, conn *Connection, raw string) error {
	c.log.Trace().Str("line", raw).Msg("recv")

	l := ParseLine(raw)
	if l.IsKeepAlive() {
		c.lastPing = time.Now()
		return conn.WriteLine(pongLine(l.KeepAliveToken()))
	}

	cmd, err := l.Command()
	if err != nil {
		c.log.Debug().Str("line", raw).Err(err).Msg("skipping malformed line")
		return nil
	}

	switch cmd {
	case girc.PRIVMSG:
		c.handleChatPost(ctx, l)
	case girc.RPL_WELCOME:
		c.state.Welcome()
		c.log.Info().Str("channel", c.cfg.Channel).Msg("registered with server")
		c.hooks.EmitAsync(ctx, hooks.EventSourceConnected, map[string]any{
			"server":  c.cfg.Addr(),
			"channel": c.cfg.Channel,
		})
	case girc.ERR_PASSWDMISMATCH:
		c.state.Reject()
		c.log.Error().Str("nick", c.cfg.Username).Msg("wrong credentials, reconnect disabled")
		c.hooks.Emit(ctx, hooks.EventAuthRejected, map[string]any{
			"server": c.cfg.Addr(),
			"nick":   c.cfg.Username,
		})
	}
	return nil
}

func (c *Client) handleChatPost(ctx context.Context, l Line) {
	post, err := parseChatPost(l)
	if err != nil {
		c.log.Debug().Str("line", l.Raw).Err(err).Msg("skipping malformed chat post")
		return
	}
	if !strings.Contains(post.Target, c.cfg.Channel) {
		return
	}

	ev := domain.ChatEvent{
		ID:         uuid.NewString(),
		Author:     post.Author,
		Body:       post.Body,
		Target:     post.Target,
		ReceivedAt: time.Now(),
	}
	c.sink.Enqueue(domain.OutboundMessage{ID: ev.ID, Text: c.format.Format(ev)})

	c.log.Debug().Str("id", ev.ID).Str("author", ev.Author).Msg("chat post queued")
	c.hooks.EmitAsync(ctx, hooks.EventMessageReceived, map[string]any{
		"id":     ev.ID,
		"author": ev.Author,
		"target": ev.Target,
		"body":   ev.Body,
	})
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
