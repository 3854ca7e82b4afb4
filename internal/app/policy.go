package app

import "time"

const (
	// DefaultCompletionWindow is how long a tournament stays live after its start time.
	DefaultCompletionWindow  = time.Hour
	DefaultSweepConcurrency  = 8
	DefaultFanoutConcurrency = 16
	// DefaultFanoutTimeout bounds the notification fan-out that follows a committed go-live.
	DefaultFanoutTimeout = 2 * time.Minute
)

// Policy holds the tunable constants of the lifecycle scheduler.
type Policy struct {
	CompletionWindow  time.Duration
	SweepConcurrency  int
	FanoutConcurrency int
	FanoutTimeout     time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		CompletionWindow:  DefaultCompletionWindow,
		SweepConcurrency:  DefaultSweepConcurrency,
		FanoutConcurrency: DefaultFanoutConcurrency,
		FanoutTimeout:     DefaultFanoutTimeout,
	}
}

// withDefaults fills zero fields so a partially populated Policy is usable.
func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.CompletionWindow <= 0 {
		p.CompletionWindow = d.CompletionWindow
	}
	if p.SweepConcurrency <= 0 {
		p.SweepConcurrency = d.SweepConcurrency
	}
	if p.FanoutConcurrency <= 0 {
		p.FanoutConcurrency = d.FanoutConcurrency
	}
	if p.FanoutTimeout <= 0 {
		p.FanoutTimeout = d.FanoutTimeout
	}
	return p
}
