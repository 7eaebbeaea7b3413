package webchat

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"
)

const teardownNavigateTimeout = 15000.0 // milliseconds

// Session binds one logical conversation to a dedicated browsing context and
// page. It is owned by exactly one engine and never shared across
// conversations.
type Session struct {
	// ID identifies the session in logs.
	ID string

	// Context is the dedicated browsing context. Using the connection's
	// default context instead would leak cookies and storage between
	// conversations sharing the browser process.
	Context playwright.BrowserContext

	// Page is the conversation tab.
	Page playwright.Page

	// Profile is the site this session is bound to.
	Profile *Profile

	// NextResponseIndex is the 1-based ordinal of the next response unit
	// this conversation expects to consume. Derived from the on-page unit
	// count at acquisition so a resumed tab does not re-consume old
	// replies.
	NextResponseIndex int

	// CreatedAt is when the tab was opened.
	CreatedAt time.Time

	// dom and state override the Playwright-backed surfaces in tests.
	dom   TurnDOM
	state pageState
}

// DOM returns the document-query surface for this session's page.
func (s *Session) DOM() TurnDOM {
	if s.dom != nil {
		return s.dom
	}
	return newPageDOM(s.Page, s.Profile)
}

// reuseState returns the page surface the reuse check runs against.
func (s *Session) reuseState() pageState {
	if s.state != nil {
		return s.state
	}
	if s.Page == nil {
		return nil
	}
	return s.Page
}

// pageState is the slice of the page API the reuse check needs.
type pageState interface {
	IsClosed() bool
	URL() string
}

// canReuse reports whether an existing tab still points at the profile's
// site. This is a best-effort liveness probe: the page can navigate between
// this check and the next interaction.
func canReuse(page pageState, profile *Profile) bool {
	if page == nil || page.IsClosed() {
		return false
	}
	return profile.MatchesURL(page.URL())
}

// Acquire returns a usable session for profile, reusing existing when its
// page is open and still on the site. On reuse the next response index is
// re-derived from the current on-page count, which also absorbs replies that
// arrived outside our own turns. Otherwise the stale session is discarded
// and a fresh dedicated context and tab are opened.
//
// Navigation or readiness timeouts are fatal; the caller surfaces them
// without retrying at this layer.
func Acquire(existing *Session, conn *Connection, profile *Profile, timeout time.Duration) (*Session, error) {
	if existing != nil && existing.Profile == profile && canReuse(existing.reuseState(), profile) {
		sample, err := existing.DOM().Sample()
		if err == nil {
			existing.NextResponseIndex = sample.Units + 1
			return existing, nil
		}
		// The tab looked alive but cannot be probed; rebuild.
	}
	if existing != nil {
		existing.Discard()
	}
	return buildSession(conn, profile, timeout)
}

// buildSession opens a dedicated context and tab for profile and waits for
// the input to appear. Package-level so acquisition tests can stub the
// browser out.
var buildSession = func(conn *Connection, profile *Profile, timeout time.Duration) (*Session, error) {
	browserContext, err := conn.Browser().NewContext()
	if err != nil {
		return nil, &ReadinessError{Site: profile.Name, Err: fmt.Errorf("failed to create browsing context: %w", err)}
	}
	page, err := browserContext.NewPage()
	if err != nil {
		_ = browserContext.Close()
		return nil, &ReadinessError{Site: profile.Name, Err: fmt.Errorf("failed to open tab: %w", err)}
	}

	timeoutMs := float64(timeout.Milliseconds())
	if _, err := page.Goto(profile.URL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(timeoutMs),
	}); err != nil {
		_ = page.Close()
		_ = browserContext.Close()
		return nil, &ReadinessError{Site: profile.Name, Err: err}
	}
	if _, err := page.WaitForSelector(profile.WaitSelector(), playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(timeoutMs),
	}); err != nil {
		_ = page.Close()
		_ = browserContext.Close()
		return nil, &ReadinessError{Site: profile.Name, Err: fmt.Errorf("input did not appear: %w", err)}
	}

	return &Session{
		ID:                uuid.New().String(),
		Context:           browserContext,
		Page:              page,
		Profile:           profile,
		NextResponseIndex: 1,
		CreatedAt:         time.Now(),
	}, nil
}

// Discard closes the session's page and context. Closing is not a
// correctness-critical operation, so every error is swallowed.
func (s *Session) Discard() {
	if s == nil {
		return
	}
	if s.Page != nil && !s.Page.IsClosed() {
		_ = s.Page.Close()
	}
	if s.Context != nil {
		_ = s.Context.Close()
	}
}

// Terminate ends the conversation: the page is navigated back to the site's
// base URL as a courtesy before closing, and every error along the way is
// swallowed.
func (s *Session) Terminate() {
	if s == nil {
		return
	}
	if s.Page != nil && !s.Page.IsClosed() {
		_, _ = s.Page.Goto(s.Profile.URL, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateDomcontentloaded,
			Timeout:   playwright.Float(teardownNavigateTimeout),
		})
	}
	s.Discard()
}
