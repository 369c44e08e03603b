package wiki

import "time"

// Config tunes the annotation engine. Zero values are filled in by
// defaults(); a partially specified config from yaml is fine.
type Config struct {
	// DebounceWindow is how long the coordinator waits after the last
	// document mutation before re-applying annotations.
	DebounceWindow time.Duration `yaml:"debounce_window"`

	// DynamicPasses are the delays, relative to a dynamic-view activation,
	// at which follow-up apply passes run to catch late-loading content.
	DynamicPasses []time.Duration `yaml:"dynamic_passes"`

	// MinTextLen and MaxTextLen bound the length of a text fragment that is
	// worth looking up. Shorter fragments are noise, longer ones are prose.
	MinTextLen int `yaml:"min_text_len"`
	MaxTextLen int `yaml:"max_text_len"`

	// PanelWidth and PanelHeight size the definition panel for placement.
	PanelWidth  int `yaml:"panel_width"`
	PanelHeight int `yaml:"panel_height"`

	// DismissArmDelay is how long after activation a popup ignores outside
	// interactions, so the activating click does not dismiss it.
	DismissArmDelay time.Duration `yaml:"dismiss_arm_delay"`
}

func (c *Config) defaults() {
	if c.DebounceWindow <= 0 {
		c.DebounceWindow = 500 * time.Millisecond
	}
	if len(c.DynamicPasses) == 0 {
		c.DynamicPasses = []time.Duration{
			400 * time.Millisecond,
			1200 * time.Millisecond,
			2500 * time.Millisecond,
		}
	}
	if c.MinTextLen <= 0 {
		c.MinTextLen = 2
	}
	if c.MaxTextLen <= 0 {
		c.MaxTextLen = 50
	}
	if c.PanelWidth <= 0 {
		c.PanelWidth = 300
	}
	if c.PanelHeight <= 0 {
		c.PanelHeight = 180
	}
	if c.DismissArmDelay <= 0 {
		c.DismissArmDelay = 150 * time.Millisecond
	}
}
