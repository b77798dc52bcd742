// Package cli implements the gatewatch command-line interface.
//
// # Command Structure
//
//	gatewatch serve        - Run the WebSocket telemetry endpoint
//	gatewatch watch        - Live terminal dashboard for an endpoint
//	gatewatch init         - Create gatewatch.yaml
//	gatewatch config set   - Edit a single config key
//	gatewatch version      - Print build information
//
// Global flags (--config, --verbose) live on the root command. --verbose
// sets GATEWATCH_DEBUG so every component logger emits debug lines.
//
// # Serve Wiring
//
// serve builds the pipeline bottom-up: a facts.Host (or the IIO sensor
// reader, or the simulated one), a sampler.Sampler over both, a
// broadcast.Registry with its Scheduler, and a transport.Server that
// registers each WebSocket connection as an observer. The scheduler only
// samples while the registry is non-empty.
package cli
