package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Defaults for the osu! Bancho IRC gateway and the Discord API.
const (
	DefaultIRCServer  = "irc.ppy.sh"
	DefaultIRCPort    = 6667
	DefaultIRCChannel = "#vietnamese"

	DefaultAPIBase    = "https://discord.com/api/v10"
	DefaultGatewayURL = "wss://gateway.discord.gg/?v=10&encoding=json"

	DefaultReconnectBase = time.Second
	DefaultReconnectStep = time.Second
	DefaultReconnectMax  = 60 * time.Second
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Source: SourceConfig{
			Server:  DefaultIRCServer,
			Port:    DefaultIRCPort,
			Channel: DefaultIRCChannel,
			Reconnect: ReconnectConfig{
				Base: DefaultReconnectBase,
				Step: DefaultReconnectStep,
				Max:  DefaultReconnectMax,
			},
		},
		Destination: DestinationConfig{
			APIBase:    DefaultAPIBase,
			GatewayURL: DefaultGatewayURL,
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleStyle: "pretty",
		},
	}
}

// ParseChannelIDs normalizes raw destination channel entries. Each entry may
// itself be a comma-separated list. Entries that are empty or not unsigned
// integers are dropped; the first occurrence of a duplicate wins.
func ParseChannelIDs(raw []string) []string {
	var ids []string
	seen := make(map[uint64]bool)
	for _, entry := range raw {
		for _, part := range strings.Split(entry, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseUint(part, 10, 64)
			if err != nil || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, strconv.FormatUint(id, 10))
		}
	}
	return ids
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
