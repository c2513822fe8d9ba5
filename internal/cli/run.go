package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/soyeahso/ircrelay/internal/channel/discord"
	"github.com/soyeahso/ircrelay/internal/channel/irc"
	"github.com/soyeahso/ircrelay/internal/config"
	"github.com/soyeahso/ircrelay/internal/dispatch"
	"github.com/soyeahso/ircrelay/internal/hooks"
	"github.com/soyeahso/ircrelay/internal/logging"
	"github.com/soyeahso/ircrelay/internal/transform"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start relaying IRC chat to Discord",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Logging.Level = logLevel
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				for _, issue := range issues {
					log.Error().Str("path", issue.Path).Msg(issue.Message)
				}
				return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
			}

			relayLog, closer, err := logging.Open(logging.Options{
				Level: cfg.Logging.Level,
				Style: cfg.Logging.ConsoleStyle,
				File:  cfg.Logging.File,
			})
			if err != nil {
				return err
			}
			defer closer.Close()

			// Block until SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runRelay(ctx, cfg, relayLog)
		},
	}
}

// runRelay wires the source connection, queue, fan-out and gateway session
// and runs them until ctx is cancelled or one of them fails.
func runRelay(ctx context.Context, cfg config.Config, log *logging.Logger) error {
	hookMgr := hooks.NewManager(log)
	if n := hooks.RegisterCommands(hookMgr, cfg.Hooks); n > 0 {
		log.Info().Int("count", n).Strs("events", hookMgr.Events()).Msg("hook commands registered")
	}
	defer hookMgr.Wait()

	channels := cfg.Destination.ChannelSet()
	if len(channels) == 0 {
		log.Warn().Msg("no destination channels configured, chat will not be forwarded")
	} else {
		log.Info().Strs("channels", channels).Msg("destination channels")
	}

	queue := dispatch.NewQueue(cfg.Relay.QueueCapacity, log)
	fanout := dispatch.NewFanout(queue, discord.NewREST(cfg.Destination, nil, log), channels, hookMgr, log)
	gateway := discord.NewGateway(cfg.Destination, log)
	source := irc.New(cfg.Source, queue, transform.New(), log, irc.WithHooks(hookMgr))

	hookMgr.Emit(ctx, hooks.EventRelayStart, map[string]any{
		"server":       cfg.Source.Addr(),
		"channel":      cfg.Source.Channel,
		"destinations": channels,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return source.Run(gctx) })
	g.Go(func() error { return gateway.Run(gctx) })
	g.Go(func() error { return fanout.Run(gctx) })
	err := g.Wait()

	queue.Close()
	if n := queue.Len(); n > 0 {
		log.Warn().Int("pending", n).Msg("discarding undelivered messages")
	}

	hookMgr.Emit(context.WithoutCancel(ctx), hooks.EventRelayStop, map[string]any{
		"error":   errString(err),
		"dropped": queue.Dropped(),
	})

	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		log.Info().Msg("relay stopped")
		return nil
	}
	if errors.Is(err, irc.ErrAuthRejected) {
		log.Error().Msg("IRC server rejected the credentials, check IRC_USERNAME and IRC_PASSWORD")
	}
	return err
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
