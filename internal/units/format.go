package units

import "fmt"

type scale struct {
	threshold Hertz
	suffix    string
}

var (
	hertzScales = []scale{{OneGHz, "GHz"}, {OneMHz, "MHz"}, {OneKHz, "kHz"}}
	spsScales   = []scale{{OneGHz, "GSps"}, {OneMHz, "MSps"}, {OneKHz, "KSps"}}
)

// prettyFormat renders v in the largest scale whose threshold v reaches. Scaled
// values carry four decimals; the base scale is printed as an exact integer.
func prettyFormat(v uint64, scales []scale, base string) string {
	for _, s := range scales {
		if v >= uint64(s.threshold) {
			return fmt.Sprintf("%.4f %s", float64(v)/float64(s.threshold), s.suffix)
		}
	}
	return fmt.Sprintf("%d %s", v, base)
}

func (s Sps) String() string {
	return prettyFormat(uint64(s), spsScales, "Sps")
}

func (h Hertz) String() string {
	return prettyFormat(uint64(h), hertzScales, "Hz")
}

func (k KiloHertz) String() string {
	return fmt.Sprintf("%d kHz", uint64(k))
}

func (m MegaHertz) String() string {
	return fmt.Sprintf("%d MHz", uint64(m))
}

func (ms MilliSeconds) String() string {
	return fmt.Sprintf("%d ms", uint64(ms))
}
