package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/soyeahso/ircrelay/internal/config"
	"github.com/soyeahso/ircrelay/internal/logging"
	"github.com/soyeahso/ircrelay/internal/version"
)

// Gateway opcodes.
const (
	opDispatch       = 0
	opHeartbeat      = 1
	opIdentify       = 2
	opReconnect      = 7
	opInvalidSession = 9
	opHello          = 10
	opHeartbeatAck   = 11
)

// Gateway intents.
const (
	intentGuildMessages  = 1 << 9
	intentDirectMessages = 1 << 12
)

// closeAuthenticationFailed is the close code sent for an invalid token.
const closeAuthenticationFailed = 4004

// DefaultRetryDelay is the pause before reopening a failed session.
const DefaultRetryDelay = 5 * time.Second

// ErrAuthenticationFailed means the gateway refused the bot token.
var ErrAuthenticationFailed = errors.New("discord: gateway authentication failed")

var (
	errReconnectRequested = errors.New("gateway requested reconnect")
	errInvalidSession     = errors.New("gateway invalidated the session")
)

type gatewayPayload struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d,omitempty"`
	S  *int64          `json:"s,omitempty"`
	T  string          `json:"t,omitempty"`
}

type helloData struct {
	HeartbeatInterval int `json:"heartbeat_interval"`
}

type identifyData struct {
	Token      string            `json:"token"`
	Intents    int               `json:"intents"`
	Properties map[string]string `json:"properties"`
}

type readyData struct {
	SessionID string `json:"session_id"`
	User      struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
}

// Gateway keeps a bot session open so the bot shows as online. It does not
// consume any channel messages.
type Gateway struct {
	url        string
	token      string
	dialer     *websocket.Dialer
	retryDelay time.Duration
	log        *logging.Logger

	mu   sync.Mutex
	user string
}

// NewGateway creates a gateway session for cfg.
func NewGateway(cfg config.DestinationConfig, log *logging.Logger) *Gateway {
	url := cfg.GatewayURL
	if url == "" {
		url = config.DefaultGatewayURL
	}
	return &Gateway{
		url:        url,
		token:      cfg.Token,
		dialer:     websocket.DefaultDialer,
		retryDelay: DefaultRetryDelay,
		log:        log.Sub("discord"),
	}
}

// User returns the bot's username once the session is ready.
func (g *Gateway) User() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.user
}

// Run holds the session open until ctx is done, reopening it after a pause
// whenever it drops. A rejected token ends Run with ErrAuthenticationFailed.
func (g *Gateway) Run(ctx context.Context) error {
	for {
		err := g.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, ErrAuthenticationFailed) {
			return err
		}
		g.log.Warn().Err(err).Dur("retryIn", g.retryDelay).Msg("gateway session ended")

		t := time.NewTimer(g.retryDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		g.log.Info().Msg("gateway reconnecting")
	}
}

// session runs one gateway connection from hello to disconnect.
func (g *Gateway) session(ctx context.Context) error {
	header := http.Header{"User-Agent": {version.UserAgent()}}
	ws, _, err := g.dialer.DialContext(ctx, g.url, header)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	conn := &gatewayConn{ws: ws}
	defer conn.close()
	stop := context.AfterFunc(ctx, conn.close)
	defer stop()

	var hello gatewayPayload
	if err := conn.read(&hello); err != nil {
		return fmt.Errorf("read hello: %w", err)
	}
	if hello.Op != opHello {
		return fmt.Errorf("expected op %d, got %d", opHello, hello.Op)
	}
	var hd helloData
	if err := json.Unmarshal(hello.D, &hd); err != nil || hd.HeartbeatInterval <= 0 {
		return fmt.Errorf("invalid hello payload: %s", hello.D)
	}

	hbCtx, hbCancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		g.heartbeatLoop(hbCtx, conn, time.Duration(hd.HeartbeatInterval)*time.Millisecond)
	}()
	defer func() {
		hbCancel()
		conn.close()
		wg.Wait()
	}()

	if err := conn.send(opIdentify, identifyData{
		Token:   g.token,
		Intents: intentGuildMessages | intentDirectMessages,
		Properties: map[string]string{
			"os": "linux", "browser": "ircrelay", "device": "ircrelay",
		},
	}); err != nil {
		return fmt.Errorf("identify: %w", err)
	}

	for {
		var p gatewayPayload
		if err := conn.read(&p); err != nil {
			if websocket.IsCloseError(err, closeAuthenticationFailed) {
				return ErrAuthenticationFailed
			}
			return fmt.Errorf("read: %w", err)
		}
		if p.S != nil {
			conn.setSeq(*p.S)
		}

		switch p.Op {
		case opDispatch:
			g.handleDispatch(p)
		case opHeartbeat:
			if err := conn.heartbeat(); err != nil {
				return fmt.Errorf("heartbeat: %w", err)
			}
		case opReconnect:
			return errReconnectRequested
		case opInvalidSession:
			return errInvalidSession
		case opHeartbeatAck:
		}
	}
}

func (g *Gateway) handleDispatch(p gatewayPayload) {
	if p.T != "READY" {
		return
	}
	var ready readyData
	if err := json.Unmarshal(p.D, &ready); err != nil {
		g.log.Debug().Err(err).Msg("malformed READY payload")
		return
	}
	g.mu.Lock()
	g.user = ready.User.Username
	g.mu.Unlock()
	g.log.Info().Str("session", ready.SessionID).Msgf("%s is connected!", ready.User.Username)
}

func (g *Gateway) heartbeatLoop(ctx context.Context, conn *gatewayConn, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.heartbeat(); err != nil {
				g.log.Debug().Err(err).Msg("heartbeat failed")
				return
			}
		}
	}
}

// gatewayConn serializes writes to the socket, which gorilla/websocket
// requires, and carries the last sequence number.
type gatewayConn struct {
	ws      *websocket.Conn
	writeMu sync.Mutex

	mu     sync.Mutex
	seq    *int64
	closed bool
}

func (c *gatewayConn) read(v any) error {
	return c.ws.ReadJSON(v)
}

func (c *gatewayConn) send(op int, d any) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteJSON(gatewayPayload{Op: op, D: raw})
}

func (c *gatewayConn) setSeq(s int64) {
	c.mu.Lock()
	c.seq = &s
	c.mu.Unlock()
}

// heartbeat sends the last sequence number, or null before the first dispatch.
func (c *gatewayConn) heartbeat() error {
	c.mu.Lock()
	var seq any
	if c.seq != nil {
		seq = *c.seq
	}
	c.mu.Unlock()
	return c.send(opHeartbeat, seq)
}

func (c *gatewayConn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.ws.Close()
}
