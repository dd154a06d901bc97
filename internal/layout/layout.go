// Package layout turns built graphs into coordinates and groupings: a
// deterministic generational grid for family trees, level/company buckets
// for professional networks, and an iterative force simulation for social
// graphs.
package layout

// Config holds the canvas parameters shared by the layout engines.
type Config struct {
	Width   float64 // Canvas width
	Height  float64 // Canvas height
	Padding float64 // Padding from canvas edges
}

// DefaultConfig is the canvas used when the caller does not supply one.
var DefaultConfig = Config{Width: 1200, Height: 800, Padding: 40}

// normalized returns the config with zero dimensions replaced by defaults.
func (c Config) normalized() Config {
	if c.Width <= 0 {
		c.Width = DefaultConfig.Width
	}
	if c.Height <= 0 {
		c.Height = DefaultConfig.Height
	}
	if c.Padding < 0 {
		c.Padding = 0
	}
	return c
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
