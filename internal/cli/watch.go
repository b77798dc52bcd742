package cli

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rileyhilliard/gatewatch/internal/config"
	"github.com/rileyhilliard/gatewatch/internal/errors"
	"github.com/rileyhilliard/gatewatch/internal/viewer"
	"github.com/rileyhilliard/gatewatch/internal/wire"
)

var (
	watchURLFlag   string
	watchCodecFlag string
	watchPlainFlag bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live dashboard for a gatewatch endpoint",
	Long: `Connect to a gatewatch endpoint and render its feed as a terminal dashboard.

When stdout is not a terminal (or with --plain), every message is printed
as one key=value line instead.

Examples:
  gatewatch watch
  gatewatch watch --url ws://beaglebone.local:5555/
  gatewatch watch --codec cbor --plain | tee gateway.log`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := config.LoadOrDefault(cfgFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("url") {
			cfg.Viewer.URL = watchURLFlag
		}
		if cmd.Flags().Changed("codec") {
			cfg.Viewer.Codec = watchCodecFlag
		}
		if err := config.Validate(cfg); err != nil {
			return err
		}
		return watchCommand(cmd, cfg.Viewer, watchPlainFlag || !term.IsTerminal(int(os.Stdout.Fd())))
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchURLFlag, "url", "", "endpoint to connect to (e.g., ws://gateway:5555/)")
	watchCmd.Flags().StringVar(&watchCodecFlag, "codec", "", "wire encoding: json or cbor")
	watchCmd.Flags().BoolVar(&watchPlainFlag, "plain", false, "print one line per message instead of the dashboard")
	rootCmd.AddCommand(watchCmd)
}

// subprotocolFor maps a config codec name to its WebSocket subprotocol.
func subprotocolFor(codec string) string {
	if codec == "cbor" {
		return wire.SubprotocolCBOR
	}
	return wire.SubprotocolJSON
}

func watchCommand(cmd *cobra.Command, vc config.ViewerConfig, plain bool) error {
	client, err := viewer.Dial(cmd.Context(), vc.URL, subprotocolFor(vc.Codec))
	if err != nil {
		return err
	}
	defer client.Close()

	if plain {
		err := viewer.RunPlain(client, cmd.OutOrStdout())
		return disconnectError(vc.URL, err)
	}

	p := tea.NewProgram(viewer.NewModel(client, vc.URL, vc.Codec), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrTransport, "Dashboard exited unexpectedly", "")
	}
	if m, ok := final.(viewer.Model); ok && m.Err() != nil {
		return disconnectError(vc.URL, m.Err())
	}
	return nil
}

func disconnectError(url string, err error) error {
	return errors.WrapWithCode(err, errors.ErrTransport,
		"Lost connection to "+url,
		"The gateway may have restarted. Run the command again to reconnect.")
}
