package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/gatewatch/internal/logger"
)

// Global flags
var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "gatewatch",
	Short: "Live telemetry for IoT gateways over WebSocket",
	Long: `gatewatch samples host facts and analog sensor inputs on a gateway and
pushes them to every connected WebSocket client once a second.

Sampling only runs while at least one client is connected.

Examples:
  gatewatch serve
  gatewatch serve --listen :8080 --simulate
  gatewatch watch --url ws://beaglebone.local:5555/`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			os.Setenv(logger.DebugEnv, "1")
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./gatewatch.yaml or ~/.config/gatewatch/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if isUnknownCommandError(err) {
			if name := extractUnknownCommand(err); name != "" {
				fmt.Fprintf(os.Stderr, "Unknown command %q. Run 'gatewatch --help' to see what's available.\n", name)
				os.Exit(1)
			}
		}
		fmt.Fprint(os.Stderr, err.Error())
		if !strings.HasSuffix(err.Error(), "\n") {
			fmt.Fprintln(os.Stderr)
		}
		os.Exit(1)
	}
}

func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "unknown flag")
}

// extractUnknownCommand pulls the quoted name out of cobra's
// `unknown command "foo" for "gatewatch"` message.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start < 0 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end < 0 {
		return ""
	}
	return msg[start+1 : start+1+end]
}
