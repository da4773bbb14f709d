package sessions

import (
	"github.com/penwyp/timecat/models"
)

// SampleSource provides foreground-activity observations. Sample returns
// ok=false when no foreground identity is resolvable (the caller accounts
// that tick to the catch-all identity) and a non-nil error on probe
// failure (the caller skips the tick entirely).
type SampleSource interface {
	Sample() (models.ActivitySample, bool, error)
}

// IdleMonitor reports seconds since the last user input event.
type IdleMonitor interface {
	IdleSeconds() (float64, error)
}

// SourceFunc adapts a function to the SampleSource interface.
type SourceFunc func() (models.ActivitySample, bool, error)

func (f SourceFunc) Sample() (models.ActivitySample, bool, error) {
	return f()
}

// IdleFunc adapts a function to the IdleMonitor interface.
type IdleFunc func() (float64, error)

func (f IdleFunc) IdleSeconds() (float64, error) {
	return f()
}
