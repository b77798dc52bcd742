package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/gatewatch/internal/config"
	"github.com/rileyhilliard/gatewatch/internal/errors"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Path           string // Where to write; defaults to ./gatewatch.yaml
	Listen         string // Pre-specified listen address
	Simulate       bool   // Serve fixed analog readings
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Skip prompts, use defaults
}

var (
	initListenFlag         string
	initSimulateFlag       bool
	initForce              bool
	initNonInteractiveFlag bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create gatewatch.yaml configuration",
	Long: `Create a gatewatch.yaml in the current directory with sensible defaults.

Prompts for the listen address and analog input source unless
--non-interactive is given (or GATEWATCH_NON_INTERACTIVE / CI is set).

Examples:
  gatewatch init
  gatewatch init --listen :8080 --simulate --non-interactive
  gatewatch init --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := getInitDefaults()
		if cmd.Flags().Changed("listen") {
			opts.Listen = initListenFlag
		}
		if cmd.Flags().Changed("simulate") {
			opts.Simulate = initSimulateFlag
		}
		if initNonInteractiveFlag {
			opts.NonInteractive = true
		}
		opts.Overwrite = initForce
		opts.Path = cfgFile
		return Init(opts)
	},
}

func init() {
	initCmd.Flags().StringVar(&initListenFlag, "listen", "", "address to listen on")
	initCmd.Flags().BoolVar(&initSimulateFlag, "simulate", false, "simulate analog inputs")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config")
	initCmd.Flags().BoolVar(&initNonInteractiveFlag, "non-interactive", false, "skip prompts and use defaults")
	rootCmd.AddCommand(initCmd)
}

// getInitDefaults reads init values from the environment.
func getInitDefaults() InitOptions {
	opts := InitOptions{
		Listen: os.Getenv("GATEWATCH_LISTEN"),
	}
	if v := os.Getenv("GATEWATCH_SIMULATE"); v == "1" || strings.EqualFold(v, "true") {
		opts.Simulate = true
	}
	if v := os.Getenv("GATEWATCH_NON_INTERACTIVE"); v == "1" || strings.EqualFold(v, "true") {
		opts.NonInteractive = true
	}
	if os.Getenv("CI") != "" {
		opts.NonInteractive = true
	}
	return opts
}

// Init writes a new configuration file.
func Init(opts InitOptions) error {
	configPath := opts.Path
	if configPath == "" {
		configPath = filepath.Join(".", config.ConfigFileName)
	}

	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", configPath)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if opts.Listen != "" {
		cfg.Listen = opts.Listen
	}
	cfg.Simulate = opts.Simulate

	if !opts.NonInteractive {
		if err := promptConfig(cfg); err != nil {
			return err
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}
	if err := config.Write(configPath, cfg); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Couldn't write %s", configPath),
			"Check that the directory is writable")
	}

	fmt.Printf("✓ Created %s\n", configPath)
	fmt.Println("  Run 'gatewatch serve' to start streaming.")
	return nil
}

func promptConfig(cfg *config.Config) error {
	listen := cfg.Listen
	source := "adc"
	if cfg.Simulate {
		source = "simulated"
	}
	codec := cfg.Viewer.Codec

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Listen address").
				Description("host:port the WebSocket endpoint binds to").
				Placeholder(":5555").
				Value(&listen).
				Validate(config.ValidateListen),
			huh.NewSelect[string]().
				Title("Analog inputs").
				Options(
					huh.NewOption("Read the ADC ("+cfg.Analog.Device+")", "adc"),
					huh.NewOption("Simulated fixed readings", "simulated"),
				).
				Value(&source),
			huh.NewSelect[string]().
				Title("Codec for 'gatewatch watch'").
				Options(
					huh.NewOption("JSON", "json"),
					huh.NewOption("CBOR", "cbor"),
				).
				Value(&codec),
		),
	)
	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Try running with --non-interactive")
	}

	cfg.Listen = strings.TrimSpace(listen)
	cfg.Simulate = source == "simulated"
	cfg.Viewer.Codec = codec
	return nil
}
