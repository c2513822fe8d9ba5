// Package discord implements the destination side of the relay: a REST
// announcer that posts messages and a gateway session that keeps the bot
// online.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/soyeahso/ircrelay/internal/config"
	"github.com/soyeahso/ircrelay/internal/logging"
	"github.com/soyeahso/ircrelay/internal/version"
)

const (
	// MaxContentLength is the longest message content the API accepts.
	MaxContentLength = 2000

	requestTimeout = 15 * time.Second
	maxErrorBody   = 1024
)

// APIError is a non-2xx response from the REST API.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("discord api %s %s: %d %s", e.Method, e.Path, e.Status, e.Body)
}

// REST posts text messages to channels. It implements domain.Announcer.
type REST struct {
	base   string
	token  string
	client *http.Client
	log    *logging.Logger
}

// NewREST creates a REST client. A nil client gets a default with a
// request timeout.
func NewREST(cfg config.DestinationConfig, client *http.Client, log *logging.Logger) *REST {
	if client == nil {
		client = &http.Client{Timeout: requestTimeout}
	}
	base := cfg.APIBase
	if base == "" {
		base = config.DefaultAPIBase
	}
	return &REST{
		base:   strings.TrimRight(base, "/"),
		token:  cfg.Token,
		client: client,
		log:    log.Sub("discord"),
	}
}

type createMessage struct {
	Content         string          `json:"content"`
	AllowedMentions allowedMentions `json:"allowed_mentions"`
}

type allowedMentions struct {
	Parse []string `json:"parse"`
}

// SendText posts text to channelID. Content over the length limit is
// truncated with a trailing ellipsis. Mentions are never resolved.
func (r *REST) SendText(ctx context.Context, channelID, text string) error {
	body, err := json.Marshal(createMessage{
		Content:         truncate(text, MaxContentLength),
		AllowedMentions: allowedMentions{Parse: []string{}},
	})
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}

	path := "/channels/" + channelID + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.base+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bot "+r.token)
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("discord api %s %s: %w", http.MethodPost, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{
			Method: http.MethodPost,
			Path:   path,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(b)),
		}
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	r.log.Trace().Str("channel", channelID).Int("status", resp.StatusCode).Msg("message posted")
	return nil
}

// truncate shortens s to at most limit characters, ending in "...".
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-3]) + "..."
}
