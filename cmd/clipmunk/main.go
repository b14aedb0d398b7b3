// clipmunk: paste templates, system services and a paste keystroke for the
// clipmunk UI.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"go.klb.dev/clipmunk/internal/logging"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "clipmunk",
		Short: "Paste templates and clipboard helpers for the clipmunk UI",
		Long: `clipmunk runs a per-user daemon that keeps three paste templates,
exposes them as the "Clipmunk - Paste 1..3" services, and lets the UI layer
sync templates and trigger a paste keystroke over named method channels.

Run "clipmunk serve" (or install it with "clipmunk daemon install"), then use
the other sub-commands, or the UI, to talk to it.

Config file search order (first found wins):
  /etc/clipmunk/clipmunk.toml
  $HOME/.config/clipmunk/clipmunk.toml
  path supplied via --config

All flags can be set via CLIPMUNK_<FLAG> env vars or config-file keys.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(),
		newTemplatesCmd(),
		newPasteCmd(),
		newServiceCmd(),
		newCallCmd(),
		newDaemonCmd(),
		newTokenCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("clipmunk %s\n", Version)
		},
	}
}

// resolveLogging sets up the global slog logger after flags are parsed.
func resolveLogging(interactive bool, formatStr, levelStr string) {
	fallback := slog.LevelInfo
	if interactive {
		fallback = slog.LevelDebug
	}
	logging.Setup(logging.ParseFormat(formatStr), logging.ParseLevel(levelStr, fallback))
}
