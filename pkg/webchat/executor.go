package webchat

import (
	"context"
	"fmt"
	"time"
)

// Settle delays copied from observed site behavior: the input needs a beat
// for client-side handlers to react to programmatic edits, and submission
// needs one before the first poll can see anything.
const (
	fillSettleDelay   = 200 * time.Millisecond
	submitSettleDelay = 500 * time.Millisecond
)

// Executor submits one message and waits for the reply. It is stateless; all
// per-conversation bookkeeping lives in the Session.
type Executor struct {
	detector *Detector

	// sleep is swappable for tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewExecutor returns an executor that delegates completion detection to the
// given detector.
func NewExecutor(detector *Detector) *Executor {
	return &Executor{
		detector: detector,
		sleep:    sleepContext,
	}
}

// Run submits message and blocks until the reply expected at responseIndex
// is complete, returning the newly produced text.
//
// A missing input or submit control is fatal for the turn: it means the
// site's UI structure changed, and no retry here can fix that.
func (x *Executor) Run(ctx context.Context, dom TurnDOM, profile *Profile, message string, responseIndex int, timeout time.Duration) (TurnResult, error) {
	input, err := x.locateInput(dom, profile)
	if err != nil {
		return TurnResult{}, err
	}

	// Fill clears the field before writing.
	if err := input.Fill(message); err != nil {
		return TurnResult{}, fmt.Errorf("failed to enter message: %w", err)
	}
	if err := x.sleep(ctx, fillSettleDelay); err != nil {
		return TurnResult{}, err
	}

	if err := x.submit(dom, profile); err != nil {
		return TurnResult{}, err
	}
	if err := x.sleep(ctx, submitSettleDelay); err != nil {
		return TurnResult{}, err
	}

	return x.detector.Await(ctx, dom, responseIndex, timeout)
}

// locateInput tries the profile's input selectors in declared order and
// accepts the first match with a positive-area bounding box. Zero-area
// matches are hidden or decoy elements and are skipped.
func (x *Executor) locateInput(dom TurnDOM, profile *Profile) (Element, error) {
	for _, selector := range profile.InputSelectors {
		el, err := dom.FindElement(selector)
		if err != nil || el == nil {
			continue
		}
		visible, err := el.Visible()
		if err != nil || !visible {
			continue
		}
		return el, nil
	}
	return nil, &InteractionError{Op: fmt.Sprintf("could not find message input on %s page", profile.Name)}
}

func (x *Executor) submit(dom TurnDOM, profile *Profile) error {
	if profile.Submit == SubmitKey {
		if err := dom.PressEnter(); err != nil {
			return fmt.Errorf("failed to submit message: %w", err)
		}
		return nil
	}

	for _, selector := range profile.SubmitSelectors {
		el, err := dom.FindElement(selector)
		if err != nil || el == nil {
			continue
		}
		visible, err := el.Visible()
		if err != nil || !visible {
			continue
		}
		enabled, err := el.Enabled()
		if err != nil || !enabled {
			continue
		}
		if err := el.Click(); err != nil {
			return fmt.Errorf("failed to click send button: %w", err)
		}
		return nil
	}
	return &InteractionError{Op: fmt.Sprintf("could not find send button on %s page", profile.Name)}
}
