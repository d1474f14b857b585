package contract

import "time"

// WithTimeout returns base with its Timeout() overridden to d, leaving every
// other declaration untouched. Used to apply a per-operation timeout from
// the pipe document on top of whatever timeout (if any) the operation's own
// factory declared.
func WithTimeout(base Contract, d time.Duration) Contract {
	return timeoutOverride{Contract: base, d: d}
}

type timeoutOverride struct {
	Contract
	d time.Duration
}

func (t timeoutOverride) Timeout() *time.Duration { return &t.d }
