package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/roman-kulish/bladerf/internal/capture"
	"github.com/roman-kulish/bladerf/internal/sdr/bladerf"
	"github.com/roman-kulish/bladerf/internal/storage"
)

const writeBufferSize = 1 << 20

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Receive IQ samples into a file",
	Long: `Tune the receiver, stream SC16 Q11 samples into the output file and
record every transfer in the session database. A YAML manifest describing
the capture is written next to the output file.

Press Ctrl+C to stop a capture that has no sample limit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateCapture(); err != nil {
			return err
		}

		dev, err := openDevice()
		if err != nil {
			return err
		}

		store := storage.NewSqliteStore(cfg.Database)

		err = runCapture(cmd.Context(), cmd.OutOrStdout(), dev, store)
		return errors.Join(err, store.Close(), dev.Close())
	},
}

func init() {
	flags := captureCmd.Flags()
	flags.StringP("device", "d", "", "device identifier, e.g. \"*:serial=f12ce1\" (default: first board)")
	flags.StringP("frequency", "f", "", "center frequency, e.g. 915M")
	flags.StringP("sample-rate", "s", "", "sample rate, e.g. 2M")
	flags.StringP("bandwidth", "b", "", "LPF bandwidth, e.g. 1500k (default: leave unchanged)")
	flags.String("channel", "", "receive channel: rx0 or rx1")
	flags.String("format", "", "sample format: sc16q11 or sc16q11-meta")
	flags.Uint64P("num-samples", "n", 0, "stop after this many samples (default: until interrupted)")
	flags.StringP("output", "o", "", "output IQ file")
	flags.String("db", "", "session database")

	for key, name := range map[string]string{
		"capture.device":     "device",
		"capture.frequency":  "frequency",
		"capture.sampleRate": "sample-rate",
		"capture.bandwidth":  "bandwidth",
		"capture.channel":    "channel",
		"capture.format":     "format",
		"capture.numSamples": "num-samples",
		"output":             "output",
		"database":           "db",
	} {
		bindFlag(captureCmd, key, name)
	}
}

// manifestPath replaces the extension of the IQ file with .yaml.
func manifestPath(output string) string {
	return strings.TrimSuffix(output, filepath.Ext(output)) + ".yaml"
}

func runCapture(ctx context.Context, out io.Writer, dev *bladerf.Device, store storage.Store) (err error) {
	board, err := dev.BoardName()
	if err != nil {
		return fmt.Errorf("error reading board name: %w", err)
	}

	var serial string
	if info, infoErr := dev.DeviceInfo(); infoErr == nil {
		serial, _ = info.Serial()
	}

	file, err := os.Create(cfg.Output)
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("error closing output file: %w", closeErr))
		}
	}()

	record := &storage.Session{
		StartTime:  time.Now(),
		Device:     cfg.Capture.Device,
		Board:      board,
		Serial:     serial,
		Channel:    textValue(cfg.Capture.Channel),
		Format:     textValue(cfg.Capture.Format),
		Frequency:  cfg.Capture.Frequency,
		SampleRate: cfg.Capture.SampleRate,
		Bandwidth:  cfg.Capture.Bandwidth,
		DataFile:   cfg.Output,
		Config:     cfg.Capture,
	}
	sessionID, err := store.CreateSession(ctx, record)
	if err != nil {
		return err
	}

	log := logger.With(slog.Int64("session", sessionID), slog.String("board", board))
	w := bufio.NewWriterSize(file, writeBufferSize)

	session := capture.NewSession(&cfg.Capture, dev, w,
		capture.WithLogger(log),
		capture.WithSink(storage.SessionSink(store, sessionID), capture.DefaultBatchSize))

	stats, err := session.Run(ctx)
	if flushErr := w.Flush(); flushErr != nil {
		err = errors.Join(err, fmt.Errorf("error writing output file: %w", flushErr))
	}

	// The session row is completed even when the capture failed half way.
	finishCtx := context.WithoutCancel(ctx)
	if finishErr := store.FinishSession(finishCtx, sessionID, stats); finishErr != nil {
		err = errors.Join(err, finishErr)
	}

	manifest := capture.NewManifest(&cfg.Capture, stats, filepath.Base(cfg.Output))
	manifest.SessionID = sessionID
	manifest.Board = board
	manifest.Serial = serial
	if manifestErr := capture.WriteManifest(manifestPath(cfg.Output), manifest); manifestErr != nil {
		err = errors.Join(err, manifestErr)
	}

	printStats(out, sessionID, stats)
	return err
}

func printStats(out io.Writer, sessionID int64, stats capture.Stats) {
	fmt.Fprintf(out, "session %d: %s samples (%s) in %s",
		sessionID,
		humanize.Comma(int64(stats.Samples)),
		humanize.Bytes(stats.Bytes),
		stats.Duration().Round(time.Millisecond))
	if stats.Interrupted {
		fmt.Fprint(out, ", interrupted")
	}
	fmt.Fprintf(out, "\n  rate %s, bandwidth %s, transfers %s, retries %d, overruns %d\n",
		stats.SampleRate, stats.Bandwidth, humanize.Comma(int64(stats.Transfers)), stats.Retries, stats.Overruns)
}
