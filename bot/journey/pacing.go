package journey

import (
	"context"
	"time"
	"unicode/utf8"
)

// Pacing holds the simulated human pacing of the conversation.
type Pacing struct {
	PerChar  time.Duration
	Min      time.Duration
	Max      time.Duration
	Response time.Duration
}

// DefaultPacing mimics a person typing at a brisk pace.
var DefaultPacing = Pacing{
	PerChar:  15 * time.Millisecond,
	Min:      400 * time.Millisecond,
	Max:      2500 * time.Millisecond,
	Response: 300 * time.Millisecond,
}

// Typing returns the narration delay for a message, proportional to its length.
func (p Pacing) Typing(text string) time.Duration {
	d := time.Duration(utf8.RuneCountInString(text)) * p.PerChar
	if d < p.Min {
		d = p.Min
	}
	if p.Max > 0 && d > p.Max {
		d = p.Max
	}
	return d
}

// SleepPacer waits in real time and honours cancellation.
type SleepPacer struct{}

func (SleepPacer) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NoPacer never waits.
type NoPacer struct{}

func (NoPacer) Wait(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}
