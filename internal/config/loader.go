package config

import (
	"errors"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields processes environment variable references in
// credential fields so passwords and tokens can be stored as ${ENV_VAR}.
func expandSensitiveFields(cfg *Config) {
	cfg.Source.Username = expandEnvVars(cfg.Source.Username)
	cfg.Source.Password = expandEnvVars(cfg.Source.Password)
	cfg.Destination.Token = expandEnvVars(cfg.Destination.Token)
}

// LoadEnvFile reads KEY=VALUE pairs from a dotenv file into the process
// environment. Variables that are already set keep their value. A missing
// file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return &ConfigError{Message: "failed to read env file: " + err.Error()}
	}
	return nil
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. Missing files produce defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandSensitiveFields(&cfg)
	return cfg, nil
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.Source.Server == "" {
		cfg.Source.Server = DefaultIRCServer
	}
	if cfg.Source.Port == 0 {
		cfg.Source.Port = DefaultIRCPort
	}
	if cfg.Source.Channel == "" {
		cfg.Source.Channel = DefaultIRCChannel
	}
	if cfg.Source.Reconnect.Base == 0 {
		cfg.Source.Reconnect.Base = DefaultReconnectBase
	}
	if cfg.Source.Reconnect.Step == 0 {
		cfg.Source.Reconnect.Step = DefaultReconnectStep
	}
	if cfg.Source.Reconnect.Max == 0 {
		cfg.Source.Reconnect.Max = DefaultReconnectMax
	}
	if cfg.Destination.APIBase == "" {
		cfg.Destination.APIBase = DefaultAPIBase
	}
	if cfg.Destination.GatewayURL == "" {
		cfg.Destination.GatewayURL = DefaultGatewayURL
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.ConsoleStyle == "" {
		cfg.Logging.ConsoleStyle = "pretty"
	}
}

// applyEnvOverrides reads the relay's environment variables and overrides
// config values. The credential and channel variables keep the names the
// relay has always used so existing deployments keep working.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("IRC_USERNAME"); v != "" {
		cfg.Source.Username = v
	}
	if v := os.Getenv("IRC_PASSWORD"); v != "" {
		cfg.Source.Password = v
	}
	if v := os.Getenv("DISCORD_TOKEN"); v != "" {
		cfg.Destination.Token = v
	}
	if v, ok := os.LookupEnv("TARGET_CHANNELS"); ok {
		cfg.Destination.Channels = strings.Split(v, ",")
	}
	if v := os.Getenv("IRCRELAY_IRC_SERVER"); v != "" {
		cfg.Source.Server = v
	}
	if v := os.Getenv("IRCRELAY_IRC_CHANNEL"); v != "" {
		cfg.Source.Channel = v
	}
	if v := os.Getenv("IRCRELAY_QUEUE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Relay.QueueCapacity = n
		}
	}
	if v := os.Getenv("IRCRELAY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}
