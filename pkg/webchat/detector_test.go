package webchat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTurnDOM scripts a sequence of poll samples and records extraction
// ranges. Once the script runs out, the last sample repeats.
type fakeTurnDOM struct {
	samples    []PollSample
	sampleErrs []error
	pos        int

	extractText  string
	extractErr   error
	extractCalls [][2]int

	elements map[string]Element
	pressed  int
}

func (f *fakeTurnDOM) Sample() (PollSample, error) {
	i := f.pos
	if i >= len(f.samples) {
		i = len(f.samples) - 1
	}
	f.pos++
	if i < len(f.sampleErrs) && f.sampleErrs[i] != nil {
		return PollSample{}, f.sampleErrs[i]
	}
	if i < 0 {
		return PollSample{}, errors.New("no samples scripted")
	}
	return f.samples[i], nil
}

func (f *fakeTurnDOM) Extract(start, end int) (string, error) {
	f.extractCalls = append(f.extractCalls, [2]int{start, end})
	return f.extractText, f.extractErr
}

func (f *fakeTurnDOM) FindElement(selector string) (Element, error) {
	el, ok := f.elements[selector]
	if !ok {
		return nil, nil
	}
	return el, nil
}

func (f *fakeTurnDOM) PressEnter() error {
	f.pressed++
	return nil
}

// fakeClock drives the detector deterministically: now starts at a fixed
// instant and every sleep advances it by the requested duration.
type fakeClock struct {
	current time.Time
	sleeps  int
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	return c.current
}

func (c *fakeClock) sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.current = c.current.Add(d)
	c.sleeps++
	return nil
}

func newTestDetector(clock *fakeClock) *Detector {
	d := NewDetector(500*time.Millisecond, 3)
	d.now = clock.now
	d.sleep = clock.sleep
	return d
}

func TestAwaitFinishMarkerShortCircuits(t *testing.T) {
	clock := newFakeClock()
	d := newTestDetector(clock)

	dom := &fakeTurnDOM{
		samples:     []PollSample{{Units: 1, Done: true}},
		extractText: "Hello",
	}

	result, err := d.Await(context.Background(), dom, 1, 30*time.Second)
	require.NoError(t, err)

	assert.Equal(t, "Hello", result.Text)
	assert.Equal(t, 1, result.Units)
	assert.False(t, result.Partial)
	// Finished on the first poll without waiting for stability.
	assert.Equal(t, [][2]int{{0, 1}}, dom.extractCalls)
	assert.Equal(t, 0, clock.sleeps)
}

func TestAwaitBusyOverridesDoneMarker(t *testing.T) {
	clock := newFakeClock()
	d := newTestDetector(clock)

	// The done marker is visible throughout but the busy indicator holds the
	// turn open until it clears.
	dom := &fakeTurnDOM{
		samples: []PollSample{
			{Units: 1, Done: true, Busy: true},
			{Units: 1, Done: true, Busy: true},
			{Units: 1, Done: true, Busy: false},
		},
		extractText: "finally",
	}

	result, err := d.Await(context.Background(), dom, 1, 30*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "finally", result.Text)
	assert.Equal(t, 2, clock.sleeps)
}

func TestAwaitStabilityFallback(t *testing.T) {
	clock := newFakeClock()
	d := newTestDetector(clock)

	// No finish marker. The count grows, then holds at 2 for three
	// consecutive polls after the first observation.
	dom := &fakeTurnDOM{
		samples: []PollSample{
			{Units: 0},
			{Units: 1},
			{Units: 2},
			{Units: 2},
			{Units: 2},
			{Units: 2},
		},
		extractText: "stable reply",
	}

	result, err := d.Await(context.Background(), dom, 1, 30*time.Second)
	require.NoError(t, err)

	assert.Equal(t, "stable reply", result.Text)
	assert.Equal(t, 2, result.Units)
	assert.False(t, result.Partial)
	assert.Equal(t, [][2]int{{0, 2}}, dom.extractCalls)
}

func TestAwaitTimeoutWithNoUnits(t *testing.T) {
	clock := newFakeClock()
	d := newTestDetector(clock)

	dom := &fakeTurnDOM{
		samples: []PollSample{{Units: 0}},
	}

	_, err := d.Await(context.Background(), dom, 1, 2*time.Second)

	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, 1, timeoutErr.Index)
	assert.Equal(t, 0, timeoutErr.Units)
	assert.GreaterOrEqual(t, timeoutErr.Elapsed, 2*time.Second)
	assert.Empty(t, dom.extractCalls)
}

func TestAwaitDeadlineReturnsPartialContent(t *testing.T) {
	clock := newFakeClock()
	d := newTestDetector(clock)

	// Units keep growing every poll so neither the marker nor stability ever
	// fires before the deadline, but content exists.
	samples := make([]PollSample, 0, 16)
	for i := 1; i <= 16; i++ {
		samples = append(samples, PollSample{Units: i})
	}
	dom := &fakeTurnDOM{
		samples:     samples,
		extractText: "partial text",
	}

	result, err := d.Await(context.Background(), dom, 1, 2*time.Second)
	require.NoError(t, err)

	assert.Equal(t, "partial text", result.Text)
	assert.True(t, result.Partial)
	assert.Equal(t, 4, result.Units)
	require.Len(t, dom.extractCalls, 1)
	assert.Equal(t, 0, dom.extractCalls[0][0])
}

func TestAwaitEmptyExtractionKeepsPolling(t *testing.T) {
	clock := newFakeClock()
	d := newTestDetector(clock)

	dom := &fakeTurnDOM{
		samples: []PollSample{{Units: 1, Done: true}},
	}

	// Extraction stays empty, so the turn eventually times out even though
	// the finish marker fired on every poll.
	_, err := d.Await(context.Background(), dom, 1, 2*time.Second)

	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, 1, timeoutErr.Units)
	// Extract was attempted repeatedly, not just once.
	assert.Greater(t, len(dom.extractCalls), 1)
}

func TestAwaitToleratesSampleErrors(t *testing.T) {
	clock := newFakeClock()
	d := newTestDetector(clock)

	dom := &fakeTurnDOM{
		samples: []PollSample{
			{},
			{},
			{Units: 1, Done: true},
		},
		sampleErrs: []error{
			errors.New("execution context destroyed"),
			errors.New("execution context destroyed"),
			nil,
		},
		extractText: "recovered",
	}

	result, err := d.Await(context.Background(), dom, 1, 30*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "recovered", result.Text)
}

func TestAwaitSecondTurnExtractsOnlyNewUnits(t *testing.T) {
	clock := newFakeClock()
	d := newTestDetector(clock)

	// Three units already on the page from earlier turns; the reply for
	// responseIndex 4 adds two more.
	dom := &fakeTurnDOM{
		samples: []PollSample{
			{Units: 3},
			{Units: 5, Done: true},
		},
		extractText: "new units only",
	}

	result, err := d.Await(context.Background(), dom, 4, 30*time.Second)
	require.NoError(t, err)

	assert.Equal(t, 5, result.Units)
	assert.Equal(t, [][2]int{{3, 5}}, dom.extractCalls)
}

func TestAwaitContextCancellation(t *testing.T) {
	clock := newFakeClock()
	d := newTestDetector(clock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dom := &fakeTurnDOM{
		samples: []PollSample{{Units: 0}},
	}

	_, err := d.Await(ctx, dom, 1, 30*time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewDetectorDefaults(t *testing.T) {
	d := NewDetector(0, 0)
	assert.Equal(t, DefaultPollInterval, d.Interval)
	assert.Equal(t, DefaultStableChecks, d.StableChecks)

	d = NewDetector(250*time.Millisecond, 5)
	assert.Equal(t, 250*time.Millisecond, d.Interval)
	assert.Equal(t, 5, d.StableChecks)
}
