package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/soyeahso/ircrelay/internal/config"
	"github.com/soyeahso/ircrelay/internal/hooks"
	"github.com/soyeahso/ircrelay/internal/version"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the resolved relay configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ircrelay %s (commit %s)\n\n", version.Version, version.Commit)
			fmt.Fprintf(out, "Config:  %s\n", paths.Config)
			fmt.Fprintf(out, "Env:     %s\n", paths.EnvFile)
			fmt.Fprintln(out)

			cfg, err := config.Load(paths.Config)
			if err != nil {
				fmt.Fprintf(out, "Config:  error loading: %v\n", err)
				return nil
			}
			if logLevel != "" {
				cfg.Logging.Level = logLevel
			}
			printStatus(out, cfg)
			return nil
		},
	}

	return cmd
}

// printStatus writes a summary of cfg. Secrets are reported as set or unset
// and never printed.
func printStatus(out io.Writer, cfg config.Config) {
	src := cfg.Source
	fmt.Fprintf(out, "Source:  server=%s channel=%s nick=%s password=%s\n",
		src.Addr(), src.Channel, src.Username, setOrUnset(src.Password))
	fmt.Fprintf(out, "Backoff: base=%s step=%s max=%s readTimeout=%s\n",
		src.Reconnect.Base, src.Reconnect.Step, src.Reconnect.Max, src.ReadTimeout)

	channels := cfg.Destination.ChannelSet()
	list := "(none)"
	if len(channels) > 0 {
		list = strings.Join(channels, ",")
	}
	fmt.Fprintf(out, "Discord: channels=%s token=%s api=%s\n",
		list, setOrUnset(cfg.Destination.Token), cfg.Destination.APIBase)

	queue := "unbounded"
	if cfg.Relay.QueueCapacity > 0 {
		queue = fmt.Sprintf("%d (drop oldest)", cfg.Relay.QueueCapacity)
	}
	fmt.Fprintf(out, "Queue:   %s\n", queue)
	fmt.Fprintf(out, "Logging: level=%s style=%s\n", cfg.Logging.Level, cfg.Logging.ConsoleStyle)

	byEvent := cfg.Hooks.ByEvent()
	for _, event := range hooks.AllEvents {
		if n := len(byEvent[event]); n > 0 {
			fmt.Fprintf(out, "Hooks:   %s=%d\n", event, n)
		}
	}

	issues := config.Validate(&cfg)
	if len(issues) > 0 {
		fmt.Fprintf(out, "\nValidation issues (%d):\n", len(issues))
		for _, issue := range issues {
			fmt.Fprintf(out, "  - %s: %s\n", issue.Path, issue.Message)
		}
	}
}

func setOrUnset(s string) string {
	if s == "" {
		return "unset"
	}
	return "set"
}
