package app

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/roman-kulish/bladerf/internal/spectrum"
)

// ColorTheme is a named power to color gradient.
type ColorTheme string

const (
	EnhancedTheme  ColorTheme = "enhanced"  // black, blue, cyan, yellow, red
	ClassicTheme   ColorTheme = "classic"   // blue to red
	GrayscaleTheme ColorTheme = "grayscale" // black to white
	JungleTheme    ColorTheme = "jungle"    // dark green to yellow
	ThermalTheme   ColorTheme = "thermal"   // black, red, yellow, white
	MarineTheme    ColorTheme = "marine"    // deep blue to white

	DefaultTheme        = EnhancedTheme
	DefaultColorMapSize = 256
)

var colorThemes = map[ColorTheme]func(float64) color.Color{
	EnhancedTheme: enhanced,
	ClassicTheme: func(p float64) color.Color {
		return hsv(240-p*240, 0.9+p*0.1, math.Pow(p, 0.7))
	},
	GrayscaleTheme: func(p float64) color.Color {
		v := math.Pow(p, 0.7)
		return colorful.Color{R: v, G: v, B: v}
	},
	JungleTheme: func(p float64) color.Color {
		return hsv(120-p*60, 1, 0.3+math.Pow(p, 0.6)*0.7)
	},
	ThermalTheme: func(p float64) color.Color {
		switch {
		case p < 1.0/3:
			return colorful.Color{R: p * 3}
		case p < 2.0/3:
			return colorful.Color{R: 1, G: (p - 1.0/3) * 3}
		}
		return colorful.Color{R: 1, G: 1, B: (p - 2.0/3) * 3}
	},
	MarineTheme: func(p float64) color.Color {
		return hsv(240-p*60, 1-p*0.8, 0.3+math.Pow(p, 0.6)*0.7)
	},
}

func hsv(h, s, v float64) color.Color {
	return colorful.Hsv(h, s, math.Min(v, 1)).Clamped()
}

// enhanced stretches the low end of the range so the noise floor stays visible.
func enhanced(p float64) color.Color {
	e := math.Pow(p, 0.7)

	switch {
	case p < 0.25:
		return hsv(240, 1, e*4)
	case p < 0.5:
		return hsv(240-(p-0.25)*240, 1, e*1.5)
	case p < 0.75:
		return hsv(180-(p-0.5)*4*120, 1, e*1.5)
	}
	return hsv(60-(p-0.75)*4*60, 1, 1)
}

// ColorMapper maps power in dBFS to a color from a pre-computed gradient.
type ColorMapper struct {
	colorMap []color.Color
	bounds   spectrum.PowerBounds
	step     float64
}

func NewColorMapper(theme ColorTheme, bounds spectrum.PowerBounds) *ColorMapper {
	fn, ok := colorThemes[theme]
	if !ok {
		fn = colorThemes[DefaultTheme]
	}

	cm := &ColorMapper{colorMap: make([]color.Color, DefaultColorMapSize)}
	for i := range cm.colorMap {
		cm.colorMap[i] = fn(float64(i) / float64(len(cm.colorMap)-1))
	}
	cm.UpdateBounds(bounds)

	return cm
}

func (cm *ColorMapper) UpdateBounds(bounds spectrum.PowerBounds) {
	cm.bounds = bounds
	cm.step = (bounds.Max - bounds.Min) / float64(len(cm.colorMap)-1)
}

// Color returns the gradient color of power, clamped to the bounds. Values
// that are not finite map to the bottom of the gradient.
func (cm *ColorMapper) Color(power float64) color.Color {
	if math.IsNaN(power) || math.IsInf(power, -1) || cm.step <= 0 {
		return cm.colorMap[0]
	}

	index := int((power - cm.bounds.Min) / cm.step)
	if index < 0 {
		return cm.colorMap[0]
	}
	if index >= len(cm.colorMap) {
		return cm.colorMap[len(cm.colorMap)-1]
	}
	return cm.colorMap[index]
}
