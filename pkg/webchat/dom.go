package webchat

import (
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"
)

// PollSample is one reading of the page taken by the completion detector.
type PollSample struct {
	// Units is the number of qualifying response units currently rendered.
	Units int

	// Done reports the explicit finish marker, when the profile defines one.
	Done bool

	// Busy reports the explicit in-progress marker, when defined. A visible
	// busy marker overrides Done.
	Busy bool
}

// Element is the narrow element surface the turn executor needs: enough to
// rule out hidden decoys, fill the input and click a send button.
type Element interface {
	// Visible reports whether the element has a positive-area bounding box.
	Visible() (bool, error)
	Enabled() (bool, error)
	Fill(text string) error
	Click() error
}

// TurnDOM is the document-query capability one turn runs against. The
// executor and detector only ever touch the page through this interface,
// which keeps the polling and decision logic independent of the automation
// substrate.
type TurnDOM interface {
	// FindElement returns the first match for selector, or nil when absent.
	FindElement(selector string) (Element, error)

	// PressEnter dispatches an Enter key press to the page.
	PressEnter() error

	// Sample reads the current unit count and finish/busy signals.
	Sample() (PollSample, error)

	// Extract returns the trimmed text of qualifying units in the 0-based
	// half-open range [start, end), empties skipped, joined by blank lines.
	Extract(start, end int) (string, error)
}

// sampleScript counts qualifying response units and reads the finish and
// busy markers in a single page evaluation. Counting filters by trimmed text
// length so placeholder nodes inserted ahead of streamed content are not
// counted; Extract applies the same filter so ordinals agree between the two.
const sampleScript = `(args) => {
	const els = document.querySelectorAll(args.unitSelector);
	let count = 0;
	for (const el of els) {
		const t = (el.textContent || '').trim();
		if (t.length >= args.minChars) count++;
	}
	let done = false;
	if (args.doneSelector) {
		let root = document;
		if (args.doneInLastUnit) {
			const scopes = document.querySelectorAll(args.containerSelector);
			root = scopes.length ? scopes[scopes.length - 1] : null;
		}
		if (root) {
			const m = root.querySelector(args.doneSelector);
			done = !!(m && m.offsetParent !== null && !m.disabled);
		}
	}
	let busy = false;
	if (args.busySelector) {
		const b = document.querySelector(args.busySelector);
		busy = !!(b && b.offsetParent !== null);
	}
	return { units: count, done: done, busy: busy };
}`

// extractScript collects the content of qualifying units in [start, end).
// HTML-mode profiles get a cloned subtree with chrome selectors removed.
const extractScript = `(args) => {
	const els = document.querySelectorAll(args.unitSelector);
	const parts = [];
	let seen = 0;
	for (const el of els) {
		const t = (el.textContent || '').trim();
		if (t.length < args.minChars) continue;
		if (seen >= args.start && seen < args.end) {
			if (args.html) {
				const clone = el.cloneNode(true);
				for (const sel of args.strip) {
					clone.querySelectorAll(sel).forEach(n => n.remove());
				}
				parts.push(clone.innerHTML || '');
			} else {
				parts.push(t);
			}
		}
		seen++;
	}
	return parts;
}`

// pageDOM implements TurnDOM over a live Playwright page.
type pageDOM struct {
	page    playwright.Page
	profile *Profile
}

func newPageDOM(page playwright.Page, profile *Profile) *pageDOM {
	return &pageDOM{page: page, profile: profile}
}

func (d *pageDOM) minChars() int {
	if d.profile.MinUnitChars > 0 {
		return d.profile.MinUnitChars
	}
	return 1
}

func (d *pageDOM) FindElement(selector string) (Element, error) {
	handle, err := d.page.QuerySelector(selector)
	if err != nil {
		return nil, err
	}
	if handle == nil {
		return nil, nil
	}
	return &pageElement{handle: handle}, nil
}

func (d *pageDOM) PressEnter() error {
	return d.page.Keyboard().Press("Enter")
}

func (d *pageDOM) Sample() (PollSample, error) {
	result, err := d.page.Evaluate(sampleScript, map[string]interface{}{
		"unitSelector":      d.profile.ResponseSelector,
		"minChars":          d.minChars(),
		"doneSelector":      d.profile.DoneSelector,
		"containerSelector": d.profile.doneScope(),
		"doneInLastUnit":    d.profile.DoneInLastUnit,
		"busySelector":      d.profile.BusySelector,
	})
	if err != nil {
		return PollSample{}, err
	}
	fields, ok := result.(map[string]interface{})
	if !ok {
		return PollSample{}, fmt.Errorf("unexpected sample result %T", result)
	}
	return PollSample{
		Units: toInt(fields["units"]),
		Done:  fields["done"] == true,
		Busy:  fields["busy"] == true,
	}, nil
}

func (d *pageDOM) Extract(start, end int) (string, error) {
	strip := d.profile.StripSelectors
	if strip == nil {
		strip = []string{}
	}
	result, err := d.page.Evaluate(extractScript, map[string]interface{}{
		"unitSelector": d.profile.ResponseSelector,
		"minChars":     d.minChars(),
		"start":        start,
		"end":          end,
		"html":         d.profile.ExtractHTML,
		"strip":        strip,
	})
	if err != nil {
		return "", err
	}
	raw, ok := result.([]interface{})
	if !ok {
		return "", fmt.Errorf("unexpected extract result %T", result)
	}
	parts := make([]string, 0, len(raw))
	for _, item := range raw {
		text, _ := item.(string)
		if d.profile.ExtractHTML {
			text = htmlToText(text)
		}
		text = strings.TrimSpace(text)
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

// pageElement adapts a Playwright element handle to the Element interface.
type pageElement struct {
	handle playwright.ElementHandle
}

func (e *pageElement) Visible() (bool, error) {
	box, err := e.handle.BoundingBox()
	if err != nil {
		return false, err
	}
	return box != nil && box.Width > 0 && box.Height > 0, nil
}

func (e *pageElement) Enabled() (bool, error) {
	return e.handle.IsEnabled()
}

func (e *pageElement) Fill(text string) error {
	return e.handle.Fill(text)
}

func (e *pageElement) Click() error {
	return e.handle.Click()
}

func toInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}
