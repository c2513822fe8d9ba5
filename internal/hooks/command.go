package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/soyeahso/ircrelay/internal/config"
)

// DefaultCommandTimeout bounds a hook command with no configured timeout.
const DefaultCommandTimeout = 5 * time.Second

// CommandHandler returns a Handler that runs entry.Command through sh -c.
// The payload is written to the command's stdin as JSON and the event name
// is exported as IRCRELAY_EVENT.
func CommandHandler(entry config.HookEntry) Handler {
	timeout := DefaultCommandTimeout
	if entry.Timeout > 0 {
		timeout = time.Duration(entry.Timeout) * time.Millisecond
	}

	return func(ctx context.Context, p Payload) error {
		input, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encoding hook payload: %w", err)
		}

		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		cmd := exec.CommandContext(ctx, "sh", "-c", entry.Command)
		cmd.Stdin = bytes.NewReader(input)
		cmd.Env = append(os.Environ(), "IRCRELAY_EVENT="+p.Event)
		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		// Children of sh may outlive it and hold stderr open.
		cmd.WaitDelay = time.Second

		if err := cmd.Run(); err != nil {
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return fmt.Errorf("hook command %q: %w: %s", entry.Command, err, msg)
			}
			return fmt.Errorf("hook command %q: %w", entry.Command, err)
		}
		return nil
	}
}

// RegisterCommands registers a CommandHandler for every configured hook entry.
// It returns the number of handlers registered.
func RegisterCommands(m *Manager, cfg config.HooksConfig) int {
	n := 0
	for _, event := range AllEvents {
		for i, entry := range cfg.ByEvent()[event] {
			m.On(event, fmt.Sprintf("%s[%d]", event, i), CommandHandler(entry))
			n++
		}
	}
	return n
}
