package version

import (
	"fmt"
	"runtime"
)

// Set via ldflags at build time:
//
//	go build -ldflags "-X github.com/soyeahso/ircrelay/internal/version.Version=1.0.0
//	  -X github.com/soyeahso/ircrelay/internal/version.Commit=abc123
//	  -X github.com/soyeahso/ircrelay/internal/version.Date=2026-01-01"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// ProjectURL is reported in the user agent.
const ProjectURL = "https://github.com/soyeahso/ircrelay"

// Info returns a formatted version string.
func Info() string {
	return fmt.Sprintf("ircrelay %s (commit: %s, built: %s, %s/%s)",
		Version, short(Commit), Date, runtime.GOOS, runtime.GOARCH)
}

// UserAgent identifies the relay to HTTP APIs in the form Discord expects
// for bots.
func UserAgent() string {
	return fmt.Sprintf("DiscordBot (%s, %s)", ProjectURL, Version)
}

func short(s string) string {
	if len(s) > 7 {
		return s[:7]
	}
	return s
}
