package exchange

import "time"

// Options represents configuration options for the Exchange.
type Options struct {
	// PollInterval is how long an instrument goroutine sleeps when its
	// sequencer has no ready item.
	PollInterval time.Duration
	// SnapshotInterval is how often each instrument persists its local book.
	// Zero disables snapshots.
	SnapshotInterval time.Duration
}

// DefaultOptions returns the default exchange options.
func DefaultOptions() *Options {
	return &Options{
		PollInterval:     10 * time.Millisecond,
		SnapshotInterval: 30 * time.Second,
	}
}
