//go:build !bladerf

package driver

// unsupported stands in for libbladeRF when the binary is built without the
// bladerf build tag. Every call reports ErrUnsupported.
type unsupported struct{}

// Native returns the libbladeRF binding. Build with -tags bladerf to link
// against the vendor library.
func Native() Driver {
	return unsupported{}
}

func (unsupported) SetUSBResetOnOpen(bool) {}

func (unsupported) Open(string) (Handle, int) { return nil, ErrUnsupported }

func (unsupported) Close(Handle) {}

func (unsupported) DeviceReset(Handle) int { return ErrUnsupported }

func (unsupported) DevInfo(Handle) (DevInfo, int) { return DevInfo{}, ErrUnsupported }

func (unsupported) DeviceSpeed(Handle) int { return SpeedUnknown }

func (unsupported) BoardName(Handle) string { return "" }

func (unsupported) SetSampleRate(Handle, int, uint32) (uint32, int) { return 0, ErrUnsupported }

func (unsupported) SetBandwidth(Handle, int, uint32) (uint32, int) { return 0, ErrUnsupported }

func (unsupported) SetFrequency(Handle, int, uint64) int { return ErrUnsupported }

func (unsupported) SyncConfig(Handle, int, int, uint32, uint32, uint32, uint32) int {
	return ErrUnsupported
}

func (unsupported) EnableModule(Handle, int, bool) int { return ErrUnsupported }

func (unsupported) SyncRX(Handle, []int16, uint32, *Metadata, uint32) int { return ErrUnsupported }

func (unsupported) SyncTX(Handle, []int16, uint32, *Metadata, uint32) int { return ErrUnsupported }
