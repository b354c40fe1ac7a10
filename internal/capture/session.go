// Package capture runs receive sessions on a bladeRF: it tunes the board,
// configures the sync stream, pulls buffers until told to stop, and writes
// the raw SC16 Q11 samples out while reporting per transfer metadata.
package capture

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff"

	"github.com/roman-kulish/bladerf/internal/sdr/bladerf"
	"github.com/roman-kulish/bladerf/internal/units"
)

const DefaultBatchSize = 64

// Receiver is the part of *bladerf.Device a session drives.
type Receiver interface {
	SetFrequency(ch bladerf.Channel, frequency units.Frequency) error
	SetSampleRate(ch bladerf.Channel, rate units.SampleRate) (units.Sps, error)
	SetBandwidth(ch bladerf.Channel, bandwidth units.Frequency) (units.Hertz, error)
	SyncConfig(layout bladerf.ChannelLayout, format bladerf.Format, numBuffers, samplesPerBuffer, numTransfers int, timeout units.MilliSeconds) error
	EnableModule(ch bladerf.Channel, enable bool) error
	SyncRX(samples []int16, md *bladerf.Metadata, timeout units.MilliSeconds) error
}

var _ Receiver = (*bladerf.Device)(nil)

// Transfer is the record of one completed SyncRX call.
type Transfer struct {
	Seq        uint64
	Timestamp  uint64 // device sample counter, 0 without metadata
	Samples    uint32
	Flags      uint32
	Status     uint32
	Retries    int
	ReceivedAt time.Time
}

// Overrun reports whether the device dropped samples before this transfer.
func (t Transfer) Overrun() bool {
	return bladerf.MetaStatusFromBits(t.Status).Overrun()
}

// Sink receives transfer records in batches. The slice is reused once
// StoreTransfers returns.
type Sink interface {
	StoreTransfers(ctx context.Context, transfers []Transfer) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, transfers []Transfer) error

func (f SinkFunc) StoreTransfers(ctx context.Context, transfers []Transfer) error {
	return f(ctx, transfers)
}

// Stats summarises a finished session.
type Stats struct {
	SampleRate  units.Sps   // actual rate reported by the board
	Bandwidth   units.Hertz // actual bandwidth, 0 if not set
	Transfers   uint64
	Samples     uint64
	Bytes       uint64
	Retries     int
	Overruns    int
	Started     time.Time
	Finished    time.Time
	Interrupted bool // stopped by context cancellation
}

func (s Stats) Duration() time.Duration {
	return s.Finished.Sub(s.Started)
}

// WithLogger sets the logger for the session
func WithLogger(logger *slog.Logger) func(s *Session) {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithSink sets where transfer records go and how many are buffered per call.
func WithSink(sink Sink, batchSize int) func(s *Session) {
	return func(s *Session) {
		s.sink = sink
		if batchSize > 0 {
			s.batchSize = batchSize
		}
	}
}

// WithBackOff overrides the retry policy. MaxRetries is applied on top.
func WithBackOff(newBackOff func() backoff.BackOff) func(s *Session) {
	return func(s *Session) {
		s.newBackOff = newBackOff
	}
}

// Session is a single use receive run.
type Session struct {
	cfg *Config
	rx  Receiver
	out io.Writer

	sink       Sink
	batchSize  int
	newBackOff func() backoff.BackOff
	now        func() time.Time

	logger *slog.Logger
}

// NewSession creates a session writing interleaved little-endian I/Q to out.
func NewSession(cfg *Config, rx Receiver, out io.Writer, options ...func(s *Session)) *Session {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // nil logger

	s := Session{
		cfg:        cfg,
		rx:         rx,
		out:        out,
		batchSize:  DefaultBatchSize,
		newBackOff: defaultBackOff,
		now:        time.Now,
		logger:     logger,
	}

	for _, option := range options {
		option(&s)
	}

	return &s
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = time.Second
	b.MaxElapsedTime = 0
	return b
}

// Run tunes the board, streams until NumSamples have been received or ctx is
// cancelled, and always disables the channel before returning.
func (s *Session) Run(ctx context.Context) (stats Stats, err error) {
	stats.Started = s.now()
	defer func() {
		stats.Finished = s.now()
	}()

	if err = s.tune(&stats); err != nil {
		return stats, err
	}

	layout := bladerf.LayoutFor(s.cfg.Channel, false)
	if err = s.rx.SyncConfig(layout, s.cfg.Format, s.cfg.NumBuffers, s.cfg.SamplesPerBuffer, s.cfg.NumTransfers, s.cfg.StreamTimeout); err != nil {
		return stats, fmt.Errorf("error configuring stream: %w", err)
	}

	if err = s.rx.EnableModule(s.cfg.Channel, true); err != nil {
		return stats, fmt.Errorf("error enabling channel: %w", err)
	}
	defer func() {
		if disableErr := s.rx.EnableModule(s.cfg.Channel, false); disableErr != nil {
			err = errors.Join(err, fmt.Errorf("error disabling channel: %w", disableErr))
		}
	}()

	s.logger.Info("capture started",
		slog.String("channel", s.cfg.Channel.String()),
		slog.String("frequency", s.cfg.Frequency.String()),
		slog.String("sampleRate", stats.SampleRate.String()))

	err = s.stream(ctx, &stats)

	s.logger.Info("capture stopped",
		slog.Uint64("transfers", stats.Transfers),
		slog.Uint64("samples", stats.Samples),
		slog.Int("overruns", stats.Overruns),
		slog.Bool("interrupted", stats.Interrupted))

	return stats, err
}

func (s *Session) tune(stats *Stats) error {
	ch := s.cfg.Channel

	if err := s.rx.SetFrequency(ch, s.cfg.Frequency); err != nil {
		return fmt.Errorf("error tuning: %w", err)
	}

	rate, err := s.rx.SetSampleRate(ch, s.cfg.SampleRate)
	if err != nil {
		return fmt.Errorf("error setting sample rate: %w", err)
	}
	if rate != s.cfg.SampleRate {
		s.logger.Warn("sample rate adjusted by hardware",
			slog.String("requested", s.cfg.SampleRate.String()),
			slog.String("actual", rate.String()))
	}
	stats.SampleRate = rate

	if s.cfg.Bandwidth > 0 {
		bw, err := s.rx.SetBandwidth(ch, s.cfg.Bandwidth)
		if err != nil {
			return fmt.Errorf("error setting bandwidth: %w", err)
		}
		stats.Bandwidth = bw
	}

	return nil
}

func (s *Session) stream(ctx context.Context, stats *Stats) error {
	samples := make([]int16, s.cfg.SamplesPerBuffer*bladerf.I16PerSample)
	raw := make([]byte, len(samples)*2)
	batch := make([]Transfer, 0, s.batchSize)

	var md *bladerf.Metadata
	if s.cfg.Format.HasMetadata() {
		md = bladerf.NewMetadata()
	}

	for s.cfg.NumSamples == 0 || stats.Samples < s.cfg.NumSamples {
		if ctx.Err() != nil {
			stats.Interrupted = true
			break
		}

		if md != nil {
			md.Clear()
			md.SetFlags(bladerf.NewRXNowFlags())
		}

		retries, err := s.receive(ctx, samples, md)
		stats.Retries += retries
		if err != nil {
			if ctx.Err() != nil {
				stats.Interrupted = true
				break
			}
			return errors.Join(err, s.flush(ctx, batch))
		}

		t := Transfer{
			Seq:        stats.Transfers,
			Samples:    uint32(s.cfg.SamplesPerBuffer),
			Retries:    retries,
			ReceivedAt: s.now(),
		}
		if md != nil {
			t.Timestamp = md.Timestamp()
			t.Flags = md.Flags().Bits()
			t.Status = md.Status().Bits()
			if n := md.ActualCount(); n > 0 && n < t.Samples {
				t.Samples = n
			}
		}
		if t.Overrun() {
			stats.Overruns++
			s.logger.Warn("overrun detected", slog.Uint64("seq", t.Seq), slog.Uint64("timestamp", t.Timestamp))
		}

		n := uint64(t.Samples)
		if s.cfg.NumSamples > 0 && stats.Samples+n > s.cfg.NumSamples {
			n = s.cfg.NumSamples - stats.Samples
		}

		written, err := s.write(samples[:n*bladerf.I16PerSample], raw)
		stats.Bytes += uint64(written)
		if err != nil {
			return errors.Join(fmt.Errorf("error writing samples: %w", err), s.flush(ctx, batch))
		}

		stats.Transfers++
		stats.Samples += n

		batch = append(batch, t)
		if len(batch) >= s.batchSize {
			if err = s.flush(ctx, batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}

	return s.flush(context.WithoutCancel(ctx), batch)
}

// receive performs one SyncRX, retrying transient failures.
func (s *Session) receive(ctx context.Context, samples []int16, md *bladerf.Metadata) (int, error) {
	var retries int

	operation := func() error {
		err := s.rx.SyncRX(samples, md, s.cfg.TransferTimeout)
		if err != nil && !bladerf.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		retries++
		s.logger.Debug("retrying transfer", slog.String("error", err.Error()), slog.Duration("wait", wait))
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(s.newBackOff(), uint64(s.cfg.MaxRetries)), ctx)
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return retries, fmt.Errorf("transfer failed after %d retries: %w", retries, err)
	}

	return retries, nil
}

func (s *Session) write(samples []int16, raw []byte) (int, error) {
	raw = raw[:len(samples)*2]
	for i, v := range samples {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(v))
	}
	return s.out.Write(raw)
}

func (s *Session) flush(ctx context.Context, batch []Transfer) error {
	if s.sink == nil || len(batch) == 0 {
		return nil
	}
	if err := s.sink.StoreTransfers(ctx, batch); err != nil {
		return fmt.Errorf("error storing transfers: %w", err)
	}
	return nil
}
