package driver

import "fmt"

// Status codes, BLADERF_ERR_*.
const (
	Success        = 0
	ErrUnexpected  = -1
	ErrRange       = -2
	ErrInval       = -3
	ErrMem         = -4
	ErrIO          = -5
	ErrTimeout     = -6
	ErrNoDev       = -7
	ErrUnsupported = -8
	ErrMisaligned  = -9
	ErrChecksum    = -10
	ErrNoFile      = -11
	ErrUpdateFPGA  = -12
	ErrUpdateFW    = -13
	ErrTimePast    = -14
	ErrQueueFull   = -15
	ErrFPGAOp      = -16
	ErrPermission  = -17
	ErrWouldBlock  = -18
	ErrNotInit     = -19
)

var statusText = map[int]string{
	Success:        "success",
	ErrUnexpected:  "an unexpected failure occurred",
	ErrRange:       "provided parameter is out of range",
	ErrInval:       "invalid operation/parameter",
	ErrMem:         "memory allocation error",
	ErrIO:          "file/device I/O error",
	ErrTimeout:     "operation timed out",
	ErrNoDev:       "no device(s) available",
	ErrUnsupported: "operation not supported",
	ErrMisaligned:  "misaligned flash access",
	ErrChecksum:    "invalid checksum",
	ErrNoFile:      "file not found",
	ErrUpdateFPGA:  "an FPGA update is required",
	ErrUpdateFW:    "a firmware update is required",
	ErrTimePast:    "requested timestamp is in the past",
	ErrQueueFull:   "could not enqueue data into full queue",
	ErrFPGAOp:      "an FPGA operation reported failure",
	ErrPermission:  "insufficient permissions for the requested operation",
	ErrWouldBlock:  "operation would block, but has been requested to be non-blocking",
	ErrNotInit:     "device insufficiently initialized for operation",
}

// StatusText returns the libbladeRF description of a status code.
func StatusText(code int) string {
	if s, ok := statusText[code]; ok {
		return s
	}
	return fmt.Sprintf("unknown error code %d", code)
}

// Channel codes, BLADERF_CHANNEL_RX(n) = n<<1, BLADERF_CHANNEL_TX(n) = n<<1|1.
const (
	ChannelRX0 = 0b00
	ChannelTX0 = 0b01
	ChannelRX1 = 0b10
	ChannelTX1 = 0b11
)

// Channel layouts, bladerf_channel_layout.
const (
	LayoutRXX1 = 0
	LayoutTXX1 = 1
	LayoutRXX2 = 2
	LayoutTXX2 = 3
)

// Sample formats, bladerf_format.
const (
	FormatSC16Q11     = 0
	FormatSC16Q11Meta = 1
)

// Metadata flag bits, BLADERF_META_FLAG_*.
const (
	MetaFlagTXBurstStart      uint32 = 1 << 0
	MetaFlagTXBurstEnd        uint32 = 1 << 1
	MetaFlagTXNow             uint32 = 1 << 2
	MetaFlagTXUpdateTimestamp uint32 = 1 << 3
	MetaFlagRXNow             uint32 = 1 << 31
	MetaFlagRXHWUnderflow     uint32 = 1 << 0
	MetaFlagRXHWMiniexp1      uint32 = 1 << 16
	MetaFlagRXHWMiniexp2      uint32 = 1 << 17
)

// Metadata status bits, BLADERF_META_STATUS_*.
const (
	MetaStatusOverrun  uint32 = 1 << 0
	MetaStatusUnderrun uint32 = 1 << 1
)

// Device speeds, bladerf_dev_speed.
const (
	SpeedUnknown = 0
	SpeedHigh    = 1
	SpeedSuper   = 2
)

// Backends, bladerf_backend.
const (
	BackendAny     = 0
	BackendLinux   = 1
	BackendLibUSB  = 2
	BackendCypress = 3
	BackendDummy   = 100
)
