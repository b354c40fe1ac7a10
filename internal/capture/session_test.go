package capture

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/cenkalti/backoff"

	"github.com/roman-kulish/bladerf/internal/sdr/bladerf"
	"github.com/roman-kulish/bladerf/internal/sdr/driver"
	"github.com/roman-kulish/bladerf/internal/sdr/driver/drivertest"
	"github.com/roman-kulish/bladerf/internal/units"
)

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Frequency = 915 * units.OneMHz
	cfg.SamplesPerBuffer = bladerf.SamplesPerBuffer
	cfg.NumSamples = 4 * bladerf.SamplesPerBuffer
	return cfg
}

func openDevice(t *testing.T, fake *drivertest.Fake) *bladerf.Device {
	t.Helper()

	d, err := bladerf.Open("", bladerf.WithDriver(fake))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func zeroBackOff() backoff.BackOff {
	return &backoff.ZeroBackOff{}
}

type recordingSink struct {
	batches [][]Transfer
	err     error
}

func (r *recordingSink) StoreTransfers(_ context.Context, transfers []Transfer) error {
	r.batches = append(r.batches, append([]Transfer(nil), transfers...))
	return r.err
}

func (r *recordingSink) all() []Transfer {
	var out []Transfer
	for _, b := range r.batches {
		out = append(out, b...)
	}
	return out
}

func TestSession_Run(t *testing.T) {
	fake := &drivertest.Fake{SampleRateStep: 7}
	d := openDevice(t, fake)

	cfg := testConfig()
	cfg.Bandwidth = 1_500_000

	var out bytes.Buffer
	sink := &recordingSink{}

	stats, err := NewSession(cfg, d, &out, WithSink(sink, 3), WithBackOff(zeroBackOff)).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if stats.Transfers != 4 || stats.Samples != cfg.NumSamples {
		t.Errorf("stats = %+v", stats)
	}
	if stats.SampleRate != 1_999_998 {
		t.Errorf("expected actual sample rate, got %s", stats.SampleRate)
	}
	if stats.Bandwidth != 1_500_000 {
		t.Errorf("bandwidth = %s", stats.Bandwidth)
	}
	if stats.Bytes != uint64(out.Len()) || out.Len() != int(cfg.NumSamples)*4 {
		t.Errorf("wrote %d bytes, stats say %d", out.Len(), stats.Bytes)
	}

	// The fake fills samples with an incrementing counter starting at 1.
	raw := out.Bytes()
	for i := 0; i < 8; i++ {
		if v := int16(binary.LittleEndian.Uint16(raw[i*2:])); v != int16(i+1) {
			t.Fatalf("value %d = %d, want %d", i, v, i+1)
		}
	}

	if len(sink.batches) != 2 || len(sink.batches[0]) != 3 || len(sink.batches[1]) != 1 {
		t.Errorf("unexpected batching: %d batches", len(sink.batches))
	}
	for i, tr := range sink.all() {
		if tr.Seq != uint64(i) || tr.Samples != bladerf.SamplesPerBuffer {
			t.Errorf("transfer %d = %+v", i, tr)
		}
		if tr.Timestamp != uint64(i)*bladerf.SamplesPerBuffer {
			t.Errorf("transfer %d timestamp = %d", i, tr.Timestamp)
		}
	}

	if fake.Enabled[driver.ChannelRX0] {
		t.Error("channel left enabled")
	}

	wantOrder := []string{"SetFrequency", "SetSampleRate", "SetBandwidth", "SyncConfig", "EnableModule"}
	for i, op := range wantOrder {
		if fake.Calls[i+1] != op { // Calls[0] is Open
			t.Fatalf("call %d = %s, want %s (%v)", i, fake.Calls[i+1], op, fake.Calls)
		}
	}
}

func TestSession_PartialLastBuffer(t *testing.T) {
	fake := &drivertest.Fake{}
	d := openDevice(t, fake)

	cfg := testConfig()
	cfg.NumSamples = bladerf.SamplesPerBuffer + 10

	var out bytes.Buffer
	stats, err := NewSession(cfg, d, &out).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Samples != cfg.NumSamples || out.Len() != int(cfg.NumSamples)*4 {
		t.Errorf("samples = %d, bytes = %d", stats.Samples, out.Len())
	}
}

func TestSession_RetriesTransientErrors(t *testing.T) {
	fake := &drivertest.Fake{RXStatuses: []int{driver.ErrTimeout, driver.ErrQueueFull}}
	d := openDevice(t, fake)

	cfg := testConfig()
	cfg.NumSamples = bladerf.SamplesPerBuffer

	sink := &recordingSink{}
	stats, err := NewSession(cfg, d, &bytes.Buffer{}, WithSink(sink, 0), WithBackOff(zeroBackOff)).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Retries != 2 {
		t.Errorf("retries = %d, want 2", stats.Retries)
	}
	if got := sink.all(); len(got) != 1 || got[0].Retries != 2 {
		t.Errorf("transfers = %+v", got)
	}
}

func TestSession_GivesUpAfterMaxRetries(t *testing.T) {
	fake := &drivertest.Fake{RXStatuses: []int{driver.ErrTimeout, driver.ErrTimeout, driver.ErrTimeout}}
	d := openDevice(t, fake)

	cfg := testConfig()
	cfg.MaxRetries = 2

	_, err := NewSession(cfg, d, &bytes.Buffer{}, WithBackOff(zeroBackOff)).Run(context.Background())
	if !errors.Is(err, bladerf.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if n := fake.CallCount("SyncRX"); n != 3 {
		t.Errorf("SyncRX called %d times, want 3", n)
	}
	if fake.Enabled[driver.ChannelRX0] {
		t.Error("channel left enabled after failure")
	}
}

func TestSession_FatalErrorNotRetried(t *testing.T) {
	fake := &drivertest.Fake{RXStatuses: []int{driver.ErrIO}}
	d := openDevice(t, fake)

	_, err := NewSession(testConfig(), d, &bytes.Buffer{}, WithBackOff(zeroBackOff)).Run(context.Background())
	if !errors.Is(err, bladerf.ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
	if n := fake.CallCount("SyncRX"); n != 1 {
		t.Errorf("SyncRX called %d times, want 1", n)
	}
}

func TestSession_ConfigError(t *testing.T) {
	fake := &drivertest.Fake{Status: map[string]int{"SyncConfig": driver.ErrInval}}
	d := openDevice(t, fake)

	_, err := NewSession(testConfig(), d, &bytes.Buffer{}).Run(context.Background())
	if !errors.Is(err, bladerf.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if fake.CallCount("EnableModule") != 0 {
		t.Error("module must not be enabled when configuration fails")
	}
}

func TestSession_Cancelled(t *testing.T) {
	fake := &drivertest.Fake{}
	d := openDevice(t, fake)

	cfg := testConfig()
	cfg.NumSamples = 0

	ctx, cancel := context.WithCancel(context.Background())

	sink := SinkFunc(func(context.Context, []Transfer) error {
		cancel()
		return nil
	})

	stats, err := NewSession(cfg, d, &bytes.Buffer{}, WithSink(sink, 1)).Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !stats.Interrupted || stats.Transfers != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if fake.Enabled[driver.ChannelRX0] {
		t.Error("channel left enabled")
	}
}

func TestSession_Overrun(t *testing.T) {
	fake := &drivertest.Fake{RXStatusBits: driver.MetaStatusOverrun}
	d := openDevice(t, fake)

	cfg := testConfig()
	cfg.NumSamples = 2 * bladerf.SamplesPerBuffer

	sink := &recordingSink{}
	stats, err := NewSession(cfg, d, &bytes.Buffer{}, WithSink(sink, 10)).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Overruns != 2 {
		t.Errorf("overruns = %d", stats.Overruns)
	}
	for _, tr := range sink.all() {
		if !tr.Overrun() {
			t.Errorf("transfer %d not flagged", tr.Seq)
		}
	}
}

func TestSession_WithoutMetadata(t *testing.T) {
	fake := &drivertest.Fake{}
	d := openDevice(t, fake)

	cfg := testConfig()
	cfg.Format = bladerf.SC16Q11
	cfg.NumSamples = bladerf.SamplesPerBuffer

	if _, err := NewSession(cfg, d, &bytes.Buffer{}).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if fake.RX[0].HasMeta {
		t.Error("metadata passed for a format without metadata")
	}
	if fake.SyncConfigs[0].Format != driver.FormatSC16Q11 {
		t.Errorf("format = %d", fake.SyncConfigs[0].Format)
	}
}

func TestSession_SinkError(t *testing.T) {
	fake := &drivertest.Fake{}
	d := openDevice(t, fake)

	sink := &recordingSink{err: errors.New("disk full")}
	_, err := NewSession(testConfig(), d, &bytes.Buffer{}, WithSink(sink, 1)).Run(context.Background())
	if err == nil {
		t.Fatal("expected sink error")
	}
	if fake.Enabled[driver.ChannelRX0] {
		t.Error("channel left enabled")
	}
}
