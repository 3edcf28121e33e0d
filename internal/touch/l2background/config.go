package l2background

import "fmt"

// Config is a builder for Params, following the teacher corpus's
// BackgroundConfig pattern: fluent With* setters over sensible defaults,
// validated before being handed to NewModel.
type Config struct {
	WindowFrames    int     // W: number of frames the learning phase runs for
	ForegroundDelta float64 // t: minimum (r_i - s) to call a sample foreground, metres
	MinRangeMeters  float64
	MaxRangeMeters  float64
}

// DefaultConfig returns a Config tuned for a table-top interactive surface:
// a 50-frame (1.25 s at 40 Hz) learning window, a 4 mm foreground threshold, and
// a 0.05-6 m valid range.
func DefaultConfig() *Config {
	return &Config{
		WindowFrames:    50,
		ForegroundDelta: 0.004,
		MinRangeMeters:  0.05,
		MaxRangeMeters:  6.0,
	}
}

// WithWindowFrames sets W.
func (c *Config) WithWindowFrames(w int) *Config {
	c.WindowFrames = w
	return c
}

// WithForegroundDelta sets t.
func (c *Config) WithForegroundDelta(t float64) *Config {
	c.ForegroundDelta = t
	return c
}

// WithRangeLimits sets the valid [min, max] range window.
func (c *Config) WithRangeLimits(min, max float64) *Config {
	c.MinRangeMeters = min
	c.MaxRangeMeters = max
	return c
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if c.WindowFrames <= 0 {
		return fmt.Errorf("l2background: WindowFrames must be positive, got %d", c.WindowFrames)
	}
	if c.ForegroundDelta < 0 {
		return fmt.Errorf("l2background: ForegroundDelta must be non-negative, got %f", c.ForegroundDelta)
	}
	if c.MinRangeMeters < 0 || c.MaxRangeMeters <= c.MinRangeMeters {
		return fmt.Errorf("l2background: invalid range limits [%f, %f]", c.MinRangeMeters, c.MaxRangeMeters)
	}
	return nil
}
