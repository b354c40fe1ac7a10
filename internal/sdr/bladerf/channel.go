package bladerf

import (
	"fmt"
	"strings"

	"github.com/roman-kulish/bladerf/internal/sdr/driver"
)

// Channel identifies one RF front end.
type Channel int

const (
	RX0 Channel = iota
	RX1
	TX0
	TX1
)

var channelNames = map[Channel]string{
	RX0: "RX0",
	RX1: "RX1",
	TX0: "TX0",
	TX1: "TX1",
}

func (c Channel) valid() bool {
	return c >= RX0 && c <= TX1
}

// code returns the BLADERF_CHANNEL_RX/TX encoding of the channel.
func (c Channel) code() int {
	switch c {
	case RX0:
		return driver.ChannelRX0
	case RX1:
		return driver.ChannelRX1
	case TX0:
		return driver.ChannelTX0
	case TX1:
		return driver.ChannelTX1
	}
	panic(fmt.Sprintf("bladerf: invalid channel %d", int(c)))
}

// IsTX reports whether the channel transmits.
func (c Channel) IsTX() bool {
	return c == TX0 || c == TX1
}

func (c Channel) String() string {
	if s, ok := channelNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Channel(%d)", int(c))
}

// ParseChannel accepts "rx0", "RX1", "tx0" and so on.
func ParseChannel(s string) (Channel, error) {
	for c, name := range channelNames {
		if strings.EqualFold(s, name) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("bladerf.Channel: invalid channel %q", s)
}

func (c *Channel) UnmarshalText(text []byte) error {
	v, err := ParseChannel(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func (c Channel) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(c.String())), nil
}
