package config

import "time"

// Config is the root configuration for the relay.
type Config struct {
	Source      SourceConfig      `yaml:"source,omitempty"`
	Destination DestinationConfig `yaml:"destination,omitempty"`
	Relay       RelayConfig       `yaml:"relay,omitempty"`
	Logging     LoggingConfig     `yaml:"logging,omitempty"`
	Hooks       HooksConfig       `yaml:"hooks,omitempty"`
}

// SourceConfig describes the IRC network messages are read from.
type SourceConfig struct {
	Server      string          `yaml:"server"`
	Port        int             `yaml:"port,omitempty"`
	Username    string          `yaml:"username"`
	Password    string          `yaml:"password,omitempty"`
	Channel     string          `yaml:"channel"`
	ReadTimeout time.Duration   `yaml:"readTimeout,omitempty"` // 0 disables the idle watchdog
	Reconnect   ReconnectConfig `yaml:"reconnect,omitempty"`
}

// Addr returns the host:port the relay dials.
func (s SourceConfig) Addr() string {
	port := s.Port
	if port == 0 {
		port = DefaultIRCPort
	}
	return joinHostPort(s.Server, port)
}

// ReconnectConfig shapes the delay inserted between reconnection attempts.
type ReconnectConfig struct {
	Base time.Duration `yaml:"base,omitempty"` // delay after a successful welcome
	Step time.Duration `yaml:"step,omitempty"` // growth per attempt
	Max  time.Duration `yaml:"max,omitempty"`
}

// DestinationConfig describes the Discord side of the relay.
type DestinationConfig struct {
	Token      string   `yaml:"token,omitempty"`
	Channels   []string `yaml:"channels,omitempty"`
	APIBase    string   `yaml:"apiBase,omitempty"`
	GatewayURL string   `yaml:"gatewayUrl,omitempty"`
}

// ChannelSet returns the destination channel identifiers in configured
// order. Empty and non-numeric entries are dropped, duplicates collapsed.
func (d DestinationConfig) ChannelSet() []string {
	return ParseChannelIDs(d.Channels)
}

// RelayConfig controls the hand-off between the IRC reader and the sender.
type RelayConfig struct {
	QueueCapacity int `yaml:"queueCapacity,omitempty"` // 0 = unbounded
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"`        // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	File         string `yaml:"file,omitempty"`
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "json"
}

// HooksConfig maps lifecycle events to shell commands.
type HooksConfig struct {
	RelayStart         []HookEntry `yaml:"relayStart,omitempty"`
	RelayStop          []HookEntry `yaml:"relayStop,omitempty"`
	SourceConnected    []HookEntry `yaml:"sourceConnected,omitempty"`
	SourceDisconnected []HookEntry `yaml:"sourceDisconnected,omitempty"`
	AuthRejected       []HookEntry `yaml:"authRejected,omitempty"`
	MessageReceived    []HookEntry `yaml:"messageReceived,omitempty"`
	SendFailed         []HookEntry `yaml:"sendFailed,omitempty"`
}

// ByEvent returns the configured hook entries keyed by event name.
func (h HooksConfig) ByEvent() map[string][]HookEntry {
	return map[string][]HookEntry{
		"relay_start":         h.RelayStart,
		"relay_stop":          h.RelayStop,
		"source_connected":    h.SourceConnected,
		"source_disconnected": h.SourceDisconnected,
		"auth_rejected":       h.AuthRejected,
		"message_received":    h.MessageReceived,
		"send_failed":         h.SendFailed,
	}
}

// HookEntry defines a single hook action.
type HookEntry struct {
	Command string `yaml:"command"`
	Timeout int    `yaml:"timeout,omitempty"` // milliseconds
}
