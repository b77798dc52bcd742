package cli

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/gatewatch/internal/broadcast"
	"github.com/rileyhilliard/gatewatch/internal/clock"
	"github.com/rileyhilliard/gatewatch/internal/config"
	"github.com/rileyhilliard/gatewatch/internal/facts"
	"github.com/rileyhilliard/gatewatch/internal/logger"
	"github.com/rileyhilliard/gatewatch/internal/sampler"
	"github.com/rileyhilliard/gatewatch/internal/sensor"
	"github.com/rileyhilliard/gatewatch/internal/transport"
)

var (
	serveListenFlag   string
	serveSimulateFlag bool
	serveMountsFlag   []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the WebSocket telemetry endpoint",
	Long: `Listen for WebSocket clients and stream gateway telemetry to them.

Static facts (OS, network) are sent once to each client on connect.
Dynamic facts and analog readings are pushed to everyone every second
while at least one client is connected.

Clients pick the encoding with the Sec-WebSocket-Protocol header:
"gatewatch.json" (default) or "gatewatch.cbor".

Examples:
  gatewatch serve
  gatewatch serve --listen 127.0.0.1:5555
  gatewatch serve --simulate --mount / --mount /data`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := config.LoadOrDefault(cfgFile)
		if err != nil {
			return err
		}
		applyServeFlags(cmd, cfg)
		if err := config.Validate(cfg); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cfg, logger.NewEnvLogger("[gatewatch]"))
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListenFlag, "listen", "", "address to listen on (e.g., :5555)")
	serveCmd.Flags().BoolVar(&serveSimulateFlag, "simulate", false, "serve fixed analog readings instead of reading the ADC")
	serveCmd.Flags().StringSliceVar(&serveMountsFlag, "mount", nil, "mount point to report disk usage for (repeatable)")
	rootCmd.AddCommand(serveCmd)
}

func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("listen") {
		cfg.Listen = serveListenFlag
	}
	if cmd.Flags().Changed("simulate") {
		cfg.Simulate = serveSimulateFlag
	}
	if cmd.Flags().Changed("mount") {
		cfg.Mounts = serveMountsFlag
	}
}

// daemon is the assembled serve pipeline.
type daemon struct {
	reg   *broadcast.Registry
	sched *broadcast.Scheduler
	srv   *transport.Server
}

func newDaemon(cfg *config.Config, provider facts.Provider, reader sensor.Reader, log logger.Logger) *daemon {
	smp := sampler.New(provider, reader,
		sampler.WithLogger(log),
		sampler.WithTimeout(cfg.ProviderTimeout),
		sampler.WithReferenceVoltage(cfg.Analog.ReferenceVoltage),
	)
	reg := broadcast.NewRegistry()
	return &daemon{
		reg: reg,
		sched: broadcast.NewScheduler(reg, smp,
			broadcast.WithLogger(log),
			broadcast.WithSendTimeout(cfg.SendTimeout),
		),
		srv: transport.NewServer(reg,
			transport.WithLogger(log),
			transport.WithKeepalive(cfg.Keepalive),
		),
	}
}

// serve runs on ln until ctx is cancelled, then stops sampling.
func (d *daemon) serve(ctx context.Context, ln net.Listener) error {
	defer d.sched.Close()
	return d.srv.Serve(ctx, ln)
}

func (d *daemon) listenAndServe(ctx context.Context, addr string) error {
	defer d.sched.Close()
	return d.srv.ListenAndServe(ctx, addr)
}

func sensorReader(cfg *config.Config, log logger.Logger) sensor.Reader {
	if cfg.Simulate {
		log.Info("analog inputs simulated")
		return sensor.Simulated()
	}
	iio := sensor.NewIIO(cfg.Analog.Device, cfg.Analog.FullScale)
	if !iio.Available() {
		log.Warn("ADC device %s not found, analog readings will be N/A", cfg.Analog.Device)
	}
	return iio
}

func runServe(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	provider := facts.NewHost(cfg.Mounts, clock.Real())
	d := newDaemon(cfg, provider, sensorReader(cfg, log), log)
	return d.listenAndServe(ctx, cfg.Listen)
}
