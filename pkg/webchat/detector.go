package webchat

import (
	"context"
	"time"
)

// Poll timing defaults. Both values are empirical: they were tuned against
// the targeted UIs rather than derived from any protocol guarantee, which is
// why they stay configurable.
const (
	// DefaultPollInterval is the pause between page samples.
	DefaultPollInterval = 500 * time.Millisecond

	// DefaultStableChecks is the number of consecutive unchanged samples
	// after which a reply is treated as finished when the site exposes no
	// explicit marker. Three checks at the default interval means ~1.5s of
	// no growth.
	DefaultStableChecks = 3
)

// TurnResult is the outcome of one completed turn.
type TurnResult struct {
	// Text is the newly produced reply text, units joined by blank lines.
	Text string

	// Units is the on-page response-unit count when the turn finished. The
	// next turn's extraction range starts right after it.
	Units int

	// Partial marks a best-effort result: the deadline passed before a
	// finish signal, but streamed content had already appeared and is
	// returned rather than dropped.
	Partial bool
}

// Detector decides when a streamed reply is complete. It polls the page on a
// fixed interval and declares completion on the earlier of the profile's
// explicit finish marker or the unit count holding steady for StableChecks
// consecutive polls once a qualifying unit exists.
type Detector struct {
	Interval     time.Duration
	StableChecks int

	// now and sleep are swappable for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewDetector returns a detector with the given timing, falling back to the
// defaults for zero values.
func NewDetector(interval time.Duration, stableChecks int) *Detector {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if stableChecks <= 0 {
		stableChecks = DefaultStableChecks
	}
	return &Detector{
		Interval:     interval,
		StableChecks: stableChecks,
		now:          time.Now,
		sleep:        sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Await blocks until the reply expected at responseIndex (1-based) is
// complete, the deadline passes, or ctx is cancelled.
//
// Sampling errors are treated as "no signal this poll" — a page that is
// mid-navigation briefly fails evaluation without the turn being lost. The
// deadline is coarse: it is checked once per iteration, so a turn can
// overshoot by up to one poll interval.
//
// On deadline expiry with at least one qualifying unit observed, whatever is
// on the page is extracted and returned as a partial result; with none, a
// TimeoutError reports the elapsed time and last observed count.
func (d *Detector) Await(ctx context.Context, dom TurnDOM, responseIndex int, timeout time.Duration) (TurnResult, error) {
	start := d.now()
	deadline := start.Add(timeout)

	prev := -1
	stable := 0
	last := 0

	for d.now().Before(deadline) {
		sample, err := dom.Sample()
		if err == nil {
			last = sample.Units
			if sample.Units >= responseIndex {
				if sample.Units == prev {
					stable++
				} else {
					stable = 0
				}
				prev = sample.Units

				finished := sample.Done && !sample.Busy
				if finished || stable >= d.StableChecks {
					text, extractErr := dom.Extract(responseIndex-1, sample.Units)
					// An empty extraction means the units are still
					// placeholders; keep polling.
					if extractErr == nil && text != "" {
						return TurnResult{Text: text, Units: sample.Units}, nil
					}
				}
			} else {
				stable = 0
				prev = -1
			}
		}

		if err := d.sleep(ctx, d.Interval); err != nil {
			return TurnResult{}, err
		}
	}

	if last >= responseIndex {
		text, err := dom.Extract(responseIndex-1, last)
		if err == nil && text != "" {
			return TurnResult{Text: text, Units: last, Partial: true}, nil
		}
	}

	return TurnResult{}, &TimeoutError{
		Index:   responseIndex,
		Elapsed: d.now().Sub(start),
		Units:   last,
	}
}
