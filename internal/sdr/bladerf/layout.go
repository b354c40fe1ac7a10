package bladerf

import (
	"fmt"

	"github.com/roman-kulish/bladerf/internal/sdr/driver"
)

// ChannelLayout tells the streaming path how many channels of one direction
// are active at once.
type ChannelLayout int

const (
	RXX1 ChannelLayout = iota // one RX channel (SISO)
	TXX1                      // one TX channel (SISO)
	RXX2                      // two RX channels (MIMO)
	TXX2                      // two TX channels (MIMO)
)

func (l ChannelLayout) valid() bool {
	return l >= RXX1 && l <= TXX2
}

func (l ChannelLayout) code() int {
	switch l {
	case RXX1:
		return driver.LayoutRXX1
	case TXX1:
		return driver.LayoutTXX1
	case RXX2:
		return driver.LayoutRXX2
	case TXX2:
		return driver.LayoutTXX2
	}
	panic(fmt.Sprintf("bladerf: invalid channel layout %d", int(l)))
}

// LayoutFor returns the layout streaming ch's direction, with both channels of
// that direction active when mimo is set.
func LayoutFor(ch Channel, mimo bool) ChannelLayout {
	switch {
	case ch.IsTX() && mimo:
		return TXX2
	case ch.IsTX():
		return TXX1
	case mimo:
		return RXX2
	default:
		return RXX1
	}
}

// NumChannels returns the number of interleaved channels in a sample buffer.
func (l ChannelLayout) NumChannels() int {
	if l == RXX2 || l == TXX2 {
		return 2
	}
	return 1
}

func (l ChannelLayout) String() string {
	switch l {
	case RXX1:
		return "x1 RX (SISO)"
	case TXX1:
		return "x1 TX (SISO)"
	case RXX2:
		return "x2 RX (MIMO)"
	case TXX2:
		return "x2 TX (MIMO)"
	}
	return fmt.Sprintf("ChannelLayout(%d)", int(l))
}
