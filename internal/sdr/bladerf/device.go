// Package bladerf is a typed interface to a bladeRF transceiver.
//
// A Device owns one driver handle. Calls are synchronous and must follow the
// order the driver expects:
//
//	Open
//	SetFrequency / SetSampleRate / SetBandwidth
//	SyncConfig
//	EnableModule(ch, true)
//	SyncRX / SyncTX, repeated
//	EnableModule(ch, false)
//	Close
//
// Out of order calls are not intercepted: the driver reports them and the
// error surfaces unchanged (typically ErrNotInit). A Device is not safe for
// concurrent use, and Close must not race with a transfer in flight.
package bladerf

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"runtime"
	"strings"
	"unicode/utf8"

	"github.com/roman-kulish/bladerf/internal/sdr/driver"
	"github.com/roman-kulish/bladerf/internal/units"
)

// WithDriver selects the native driver. Defaults to driver.Native().
func WithDriver(drv driver.Driver) func(d *Device) {
	return func(d *Device) {
		d.drv = drv
	}
}

// WithLogger sets the logger for the device
func WithLogger(logger *slog.Logger) func(d *Device) {
	return func(d *Device) {
		d.logger = logger
	}
}

// WithUSBResetOnOpen makes the driver reset the USB device before opening it.
// The setting is process-wide in libbladeRF and stays in effect for every
// later Open until changed.
func WithUSBResetOnOpen(enabled bool) func(d *Device) {
	return func(d *Device) {
		d.resetOnOpen = &enabled
	}
}

// Device is an opened bladeRF board.
type Device struct {
	drv    driver.Driver
	handle driver.Handle
	id     string

	resetOnOpen *bool
	logger      *slog.Logger
}

// Open opens the board matching identifier, for example "" for the first
// available one or "*:serial=f12ce1037830a1b27f3ceeba1f521413".
func Open(identifier string, options ...func(d *Device)) (*Device, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // nil logger

	d := &Device{
		drv:    driver.Native(),
		id:     identifier,
		logger: logger,
	}

	for _, option := range options {
		option(d)
	}

	d.logger = d.logger.With(slog.String("device", identifier))

	if strings.IndexByte(identifier, 0) >= 0 {
		return nil, fmt.Errorf("identifier %q: %w", identifier, ErrCString)
	}

	if d.resetOnOpen != nil {
		d.drv.SetUSBResetOnOpen(*d.resetOnOpen)
	}

	h, status := d.drv.Open(identifier)
	if err := statusError(status); err != nil {
		return nil, fmt.Errorf("error opening device: %w", err)
	}
	if h == nil {
		return nil, fmt.Errorf("error opening device: driver returned no handle: %w", ErrInvalid)
	}

	d.handle = h
	runtime.SetFinalizer(d, (*Device).release)

	d.logger.Debug("device opened")

	return d, nil
}

// Close releases the handle. Further calls to Close do nothing; any other
// method returns ErrClosed.
func (d *Device) Close() error {
	if d.handle == nil {
		return nil
	}

	d.release()
	runtime.SetFinalizer(d, nil)

	d.logger.Debug("device closed")

	return nil
}

func (d *Device) release() {
	if d.handle == nil {
		return
	}
	d.drv.Close(d.handle)
	d.handle = nil
}

func (d *Device) ready() error {
	if d.handle == nil {
		return ErrClosed
	}
	return nil
}

// DeviceReset resets the board. The handle is unusable afterwards; close it
// and open the device again.
func (d *Device) DeviceReset() error {
	if err := d.ready(); err != nil {
		return err
	}
	if err := statusError(d.drv.DeviceReset(d.handle)); err != nil {
		return fmt.Errorf("error resetting device: %w", err)
	}
	return nil
}

// DeviceInfo returns the USB identity of the open board.
func (d *Device) DeviceInfo() (DeviceInfo, error) {
	if err := d.ready(); err != nil {
		return DeviceInfo{}, err
	}
	raw, status := d.drv.DevInfo(d.handle)
	if err := statusError(status); err != nil {
		return DeviceInfo{}, fmt.Errorf("error reading device info: %w", err)
	}
	return newDeviceInfo(raw), nil
}

// DeviceSpeed returns the USB bus speed the board enumerated at.
func (d *Device) DeviceSpeed() (DeviceSpeed, error) {
	if err := d.ready(); err != nil {
		return SpeedUnknown, err
	}
	return DeviceSpeed(d.drv.DeviceSpeed(d.handle)), nil
}

// BoardName returns the board model, such as "bladerf2".
func (d *Device) BoardName() (string, error) {
	if err := d.ready(); err != nil {
		return "", err
	}
	name := d.drv.BoardName(d.handle)
	if !utf8.ValidString(name) {
		return "", ErrCString
	}
	return name, nil
}

func checkChannel(ch Channel) error {
	if !ch.valid() {
		return fmt.Errorf("channel %s: %w", ch, ErrInvalid)
	}
	return nil
}

func toUint32(v uint64, what string) (uint32, error) {
	if v > math.MaxUint32 {
		return 0, fmt.Errorf("%s %d does not fit 32 bits: %w", what, v, ErrRange)
	}
	return uint32(v), nil
}

// SetSampleRate sets the sample rate of ch and returns the rate the hardware
// actually uses, which may differ from the request.
func (d *Device) SetSampleRate(ch Channel, rate units.SampleRate) (units.Sps, error) {
	if err := d.ready(); err != nil {
		return 0, err
	}
	if err := checkChannel(ch); err != nil {
		return 0, err
	}
	v, err := toUint32(uint64(rate.Sps()), "sample rate")
	if err != nil {
		return 0, err
	}

	actual, status := d.drv.SetSampleRate(d.handle, ch.code(), v)
	if err = statusError(status); err != nil {
		return 0, fmt.Errorf("error setting sample rate on %s: %w", ch, err)
	}

	d.logger.Debug("sample rate set",
		slog.String("channel", ch.String()),
		slog.String("requested", rate.Sps().String()),
		slog.String("actual", units.Sps(actual).String()))

	return units.Sps(actual), nil
}

// SetBandwidth sets the analog filter bandwidth of ch and returns the actual
// bandwidth.
func (d *Device) SetBandwidth(ch Channel, bandwidth units.Frequency) (units.Hertz, error) {
	if err := d.ready(); err != nil {
		return 0, err
	}
	if err := checkChannel(ch); err != nil {
		return 0, err
	}
	v, err := toUint32(uint64(bandwidth.Hertz()), "bandwidth")
	if err != nil {
		return 0, err
	}

	actual, status := d.drv.SetBandwidth(d.handle, ch.code(), v)
	if err = statusError(status); err != nil {
		return 0, fmt.Errorf("error setting bandwidth on %s: %w", ch, err)
	}

	d.logger.Debug("bandwidth set",
		slog.String("channel", ch.String()),
		slog.String("requested", bandwidth.Hertz().String()),
		slog.String("actual", units.Hertz(actual).String()))

	return units.Hertz(actual), nil
}

// SetFrequency tunes ch. The driver does not report the frequency it settled on.
func (d *Device) SetFrequency(ch Channel, frequency units.Frequency) error {
	if err := d.ready(); err != nil {
		return err
	}
	if err := checkChannel(ch); err != nil {
		return err
	}
	if err := statusError(d.drv.SetFrequency(d.handle, ch.code(), uint64(frequency.Hertz()))); err != nil {
		return fmt.Errorf("error setting frequency on %s: %w", ch, err)
	}

	d.logger.Debug("frequency set",
		slog.String("channel", ch.String()),
		slog.String("frequency", frequency.Hertz().String()))

	return nil
}

// SyncConfig configures the synchronous streaming path for layout.
// samplesPerBuffer must be a positive multiple of SamplesPerBuffer.
func (d *Device) SyncConfig(layout ChannelLayout, format Format, numBuffers, samplesPerBuffer, numTransfers int, timeout units.MilliSeconds) error {
	if err := d.ready(); err != nil {
		return err
	}
	if !layout.valid() {
		return fmt.Errorf("layout %s: %w", layout, ErrInvalid)
	}
	if !format.valid() {
		return fmt.Errorf("format %d: %w", int(format), ErrInvalid)
	}
	if err := CheckSamplesPerBuffer(samplesPerBuffer); err != nil {
		return err
	}
	if numBuffers < 0 || numTransfers < 0 {
		return fmt.Errorf("negative buffer or transfer count: %w", ErrRange)
	}

	nb, err := toUint32(uint64(numBuffers), "number of buffers")
	if err != nil {
		return err
	}
	bs, err := toUint32(uint64(samplesPerBuffer), "buffer size")
	if err != nil {
		return err
	}
	nt, err := toUint32(uint64(numTransfers), "number of transfers")
	if err != nil {
		return err
	}
	to, err := toUint32(uint64(timeout), "timeout")
	if err != nil {
		return err
	}

	if err = statusError(d.drv.SyncConfig(d.handle, layout.code(), format.code(), nb, bs, nt, to)); err != nil {
		return fmt.Errorf("error configuring sync stream: %w", err)
	}

	d.logger.Debug("sync stream configured",
		slog.String("layout", layout.String()),
		slog.String("format", format.String()),
		slog.Int("buffers", numBuffers),
		slog.Int("samplesPerBuffer", samplesPerBuffer),
		slog.Int("transfers", numTransfers),
		slog.String("timeout", timeout.String()))

	return nil
}

// EnableModule turns the RF front end of ch on or off.
func (d *Device) EnableModule(ch Channel, enable bool) error {
	if err := d.ready(); err != nil {
		return err
	}
	if err := checkChannel(ch); err != nil {
		return err
	}
	if err := statusError(d.drv.EnableModule(d.handle, ch.code(), enable)); err != nil {
		return fmt.Errorf("error enabling %s: %w", ch, err)
	}

	d.logger.Debug("module state changed", slog.String("channel", ch.String()), slog.Bool("enabled", enable))

	return nil
}

func sampleCount(samples []int16) (uint32, error) {
	if len(samples)%I16PerSample != 0 {
		return 0, fmt.Errorf("%d values: %w", len(samples), ErrSamplesLen)
	}
	return toUint32(uint64(len(samples)/I16PerSample), "sample count")
}

// SyncRX fills samples with interleaved I/Q values. md may be nil when the
// stream was configured without metadata; otherwise it is updated in place.
func (d *Device) SyncRX(samples []int16, md *Metadata, timeout units.MilliSeconds) error {
	if err := d.ready(); err != nil {
		return err
	}
	n, err := sampleCount(samples)
	if err != nil {
		return err
	}
	to, err := toUint32(uint64(timeout), "timeout")
	if err != nil {
		return err
	}
	if err = statusError(d.drv.SyncRX(d.handle, samples, n, md.native(), to)); err != nil {
		return fmt.Errorf("error receiving samples: %w", err)
	}
	return nil
}

// SyncTX transmits samples. md carries burst flags and the timestamp hint;
// it may be nil when the stream was configured without metadata.
func (d *Device) SyncTX(samples []int16, md *Metadata, timeout units.MilliSeconds) error {
	if err := d.ready(); err != nil {
		return err
	}
	n, err := sampleCount(samples)
	if err != nil {
		return err
	}
	to, err := toUint32(uint64(timeout), "timeout")
	if err != nil {
		return err
	}
	if err = statusError(d.drv.SyncTX(d.handle, samples, n, md.native(), to)); err != nil {
		return fmt.Errorf("error transmitting samples: %w", err)
	}
	return nil
}
