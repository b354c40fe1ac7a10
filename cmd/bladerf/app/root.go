package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/roman-kulish/bladerf/internal/sdr/bladerf"
)

var (
	cfg     *Config
	cfgFile string
	verbose bool

	logLevel = new(slog.LevelVar)
	logger   = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	// flagBindings maps config keys to the flags that override them. Only
	// flags set on the command line of the command being run are bound.
	flagBindings = map[*cobra.Command]map[string]string{}
)

var rootCmd = &cobra.Command{
	Use:   "bladerf",
	Short: "Control and stream from a bladeRF software defined radio",
	Long: `bladerf talks to a Nuand bladeRF through libbladeRF.

It can list attached boards, print device information, capture IQ samples
to a file while recording per-transfer metadata in SQLite, and render a
waterfall image from a capture.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		bindings := make(map[string]*pflag.Flag)
		for key, name := range flagBindings[cmd] {
			if flag := cmd.Flags().Lookup(name); flag != nil && flag.Changed {
				bindings[key] = flag
			}
		}

		var err error
		if cfg, err = LoadConfig(cfgFile, bindings); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		setupLogging(cfg)
		return nil
	},
}

func bindFlag(cmd *cobra.Command, key, name string) {
	if flagBindings[cmd] == nil {
		flagBindings[cmd] = make(map[string]string)
	}
	flagBindings[cmd][key] = name
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(waterfallCmd)
}

func setupLogging(cfg *Config) {
	level, _ := cfg.Level()
	if verbose {
		level = slog.LevelDebug
	}
	logLevel.Set(level)
	slog.SetDefault(logger)
}

// openDevice opens the board named by the capture device identifier.
func openDevice() (*bladerf.Device, error) {
	dev, err := bladerf.Open(cfg.Capture.Device,
		bladerf.WithLogger(logger),
		bladerf.WithUSBResetOnOpen(cfg.USBResetOnOpen))
	if err != nil {
		return nil, fmt.Errorf("error opening device: %w", err)
	}
	return dev, nil
}

// Execute runs the command line until ctx is cancelled.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
