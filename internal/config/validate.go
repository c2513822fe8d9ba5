package config

import (
	"fmt"
	"slices"

	"github.com/lrstanley/girc"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	// Source validation
	src := cfg.Source
	if src.Server == "" {
		issues = append(issues, ValidationIssue{
			Path:    "source.server",
			Message: "server is required",
		})
	}
	if src.Port < 0 || src.Port > 65535 {
		issues = append(issues, ValidationIssue{
			Path:    "source.port",
			Message: fmt.Sprintf("port must be 0-65535, got %d", src.Port),
		})
	}
	if src.Username == "" {
		issues = append(issues, ValidationIssue{
			Path:    "source.username",
			Message: "username is required (or set IRC_USERNAME)",
		})
	}
	if src.Channel == "" {
		issues = append(issues, ValidationIssue{
			Path:    "source.channel",
			Message: "channel is required",
		})
	} else if !girc.IsValidChannel(src.Channel) {
		issues = append(issues, ValidationIssue{
			Path:    "source.channel",
			Message: fmt.Sprintf("%q is not a valid IRC channel name", src.Channel),
		})
	}
	if src.ReadTimeout < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "source.readTimeout",
			Message: "must not be negative",
		})
	}

	rc := src.Reconnect
	if rc.Base < 0 || rc.Step < 0 || rc.Max < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "source.reconnect",
			Message: "delays must not be negative",
		})
	} else if rc.Max > 0 && rc.Base > rc.Max {
		issues = append(issues, ValidationIssue{
			Path:    "source.reconnect.base",
			Message: fmt.Sprintf("base %s exceeds max %s", rc.Base, rc.Max),
		})
	}

	// Destination validation
	if cfg.Destination.Token == "" {
		issues = append(issues, ValidationIssue{
			Path:    "destination.token",
			Message: "token is required (or set DISCORD_TOKEN)",
		})
	}

	if cfg.Relay.QueueCapacity < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "relay.queueCapacity",
			Message: fmt.Sprintf("must be >= 0, got %d", cfg.Relay.QueueCapacity),
		})
	}

	// Logging validation
	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	validConsoleStyles := []string{"pretty", "json"}
	if cfg.Logging.ConsoleStyle != "" && !slices.Contains(validConsoleStyles, cfg.Logging.ConsoleStyle) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.consoleStyle",
			Message: fmt.Sprintf("must be one of %v, got %q", validConsoleStyles, cfg.Logging.ConsoleStyle),
		})
	}

	for event, entries := range cfg.Hooks.ByEvent() {
		for i, h := range entries {
			if h.Command == "" {
				issues = append(issues, ValidationIssue{
					Path:    fmt.Sprintf("hooks.%s[%d].command", event, i),
					Message: "command is required",
				})
			}
			if h.Timeout < 0 {
				issues = append(issues, ValidationIssue{
					Path:    fmt.Sprintf("hooks.%s[%d].timeout", event, i),
					Message: "must not be negative",
				})
			}
		}
	}

	return issues
}
