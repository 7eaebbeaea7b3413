package webchat

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gobwas/glob"
)

// SubmitMode describes how a site expects a composed message to be sent.
type SubmitMode string

const (
	// SubmitKey sends the message by dispatching an Enter key press.
	SubmitKey SubmitMode = "key"

	// SubmitButton sends the message by clicking a send button.
	SubmitButton SubmitMode = "button"
)

// Profile is the per-site selector profile. It captures everything that
// differs between chat sites as pure data, so a single engine can drive any
// of them. Profiles are immutable after registration.
type Profile struct {
	// Name is the short identifier used in config and tool arguments.
	Name string

	// URL is the conversation page for this site.
	URL string

	// LivenessPattern is a glob matched against the page's current URL to
	// decide whether an existing tab still points at this site. A tab whose
	// URL no longer matches is stale and must be replaced.
	LivenessPattern string

	// InputSelectors are candidate selectors for the message input, in
	// preference order. The first visible match with a positive-area
	// bounding box wins.
	InputSelectors []string

	// ReadySelector is waited on after navigation before the page is
	// considered usable. Defaults to "textarea" when empty.
	ReadySelector string

	// Submit selects the submission mechanism.
	Submit SubmitMode

	// SubmitSelectors are candidate send-button selectors, tried in order.
	// Only consulted when Submit is SubmitButton.
	SubmitSelectors []string

	// ResponseSelector matches one response unit — the block of rendered
	// reply content the site appends per streamed answer.
	ResponseSelector string

	// ContainerSelector matches the per-reply container when it differs
	// from ResponseSelector. Used to scope DoneSelector; defaults to
	// ResponseSelector when empty.
	ContainerSelector string

	// DoneSelector, when present and visible, signals that generation has
	// finished. Optional; sites without one fall back to count stability.
	DoneSelector string

	// DoneInLastUnit scopes DoneSelector to the newest reply container
	// instead of the whole document. Needed for sites whose finish marker
	// is rendered per reply (feedback controls) rather than page-wide.
	DoneInLastUnit bool

	// BusySelector, when present and visible, signals that generation is
	// still in progress and overrides DoneSelector. Optional.
	BusySelector string

	// MinUnitChars is the minimum trimmed text length for an element to
	// count as a response unit. Filters out empty placeholder nodes sites
	// insert before real content streams in.
	MinUnitChars int

	// ExtractHTML extracts innerHTML and reduces it to plain text instead
	// of reading textContent directly. Used by sites whose reply markup
	// needs chrome stripped out.
	ExtractHTML bool

	// StripSelectors are removed from each unit before HTML extraction
	// (share buttons, feedback controls and similar chrome).
	StripSelectors []string

	liveness glob.Glob
}

// Validate checks the profile for the fields the engine cannot run without
// and compiles the liveness pattern.
func (p *Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile name is required")
	}
	if p.URL == "" {
		return fmt.Errorf("profile %q: url is required", p.Name)
	}
	if len(p.InputSelectors) == 0 {
		return fmt.Errorf("profile %q: at least one input selector is required", p.Name)
	}
	if p.ResponseSelector == "" {
		return fmt.Errorf("profile %q: response selector is required", p.Name)
	}
	switch p.Submit {
	case SubmitKey:
	case SubmitButton:
		if len(p.SubmitSelectors) == 0 {
			return fmt.Errorf("profile %q: button submit requires submit selectors", p.Name)
		}
	default:
		return fmt.Errorf("profile %q: invalid submit mode %q", p.Name, p.Submit)
	}
	if p.LivenessPattern == "" {
		return fmt.Errorf("profile %q: liveness pattern is required", p.Name)
	}
	g, err := glob.Compile(p.LivenessPattern)
	if err != nil {
		return fmt.Errorf("profile %q: invalid liveness pattern: %w", p.Name, err)
	}
	p.liveness = g
	return nil
}

// MatchesURL reports whether a page URL still belongs to this site. This is
// a best-effort liveness probe, not a strong correctness guarantee: the site
// can navigate client-side between our checks.
func (p *Profile) MatchesURL(url string) bool {
	if p.liveness == nil {
		g, err := glob.Compile(p.LivenessPattern)
		if err != nil {
			return false
		}
		p.liveness = g
	}
	return p.liveness.Match(url)
}

// WaitSelector returns the selector used to decide the page is ready for
// input after navigation.
func (p *Profile) WaitSelector() string {
	if p.ReadySelector != "" {
		return p.ReadySelector
	}
	return "textarea"
}

// doneScope returns the selector that bounds DoneSelector lookups when
// DoneInLastUnit is set.
func (p *Profile) doneScope() string {
	if p.ContainerSelector != "" {
		return p.ContainerSelector
	}
	return p.ResponseSelector
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]*Profile)
)

// Register adds a profile to the global registry. It validates the profile
// and rejects duplicate names.
func Register(p *Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[p.Name]; exists {
		return fmt.Errorf("profile %q already registered", p.Name)
	}
	registry[p.Name] = p
	return nil
}

// Lookup returns the registered profile with the given name.
func Lookup(name string) (*Profile, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	p, ok := registry[name]
	return p, ok
}

// Names returns the registered profile names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func mustRegister(p *Profile) *Profile {
	if err := Register(p); err != nil {
		panic(err)
	}
	return p
}

// GoogleAI drives Google Search's AI mode. Replies render in .pWvJNd blocks;
// the finish marker is the feedback control appearing on the newest reply
// container. Reply markup carries share/feedback chrome, so units are
// extracted as HTML and reduced to text.
var GoogleAI = mustRegister(&Profile{
	Name:            "googleai",
	URL:             "https://www.google.com/search?udm=50",
	LivenessPattern: "*google.com/search*udm=50*",
	InputSelectors: []string{
		`textarea.ITIRGe[jsname="qyBLR"]`,
		`textarea[placeholder*="Ask"]`,
		`textarea.ITIRGe`,
		`textarea[jsname="qyBLR"]`,
		`textarea`,
	},
	Submit: SubmitButton,
	SubmitSelectors: []string{
		`button[data-xid="input-plate-send-button"]`,
		`button[aria-label="Send"]`,
		`button[jsname="H9tDt"][aria-label="Send"]`,
	},
	ResponseSelector:  `.pWvJNd`,
	ContainerSelector: `.zkL70c`,
	DoneSelector:      `button[aria-label*="Thumbs down"], button[aria-label*="thumbs down"], button[aria-label*="Negative feedback"], button[data-snt="-1"]`,
	DoneInLastUnit:    true,
	MinUnitChars:      50,
	ExtractHTML:       true,
	StripSelectors: []string{
		`.VlQBpc`,
		`[data-snt]`,
		`button[aria-label*="Share"]`,
		`button[aria-label*="feedback"]`,
	},
})

// Ernie drives Baidu's Ernie assistant. There is no dedicated send button —
// Enter submits. One reply may span several p.marklang-paragraph units. The
// active send button reappearing signals generation finished; the pause
// control signals it is still streaming.
var Ernie = mustRegister(&Profile{
	Name:            "ernie",
	URL:             "https://chat.baidu.com/search",
	LivenessPattern: "*chat.baidu.com*search*",
	InputSelectors: []string{
		`textarea.ci-textarea`,
		`textarea.ci-scroll-style`,
		`textarea`,
	},
	Submit:           SubmitKey,
	ResponseSelector: `p.marklang-paragraph`,
	DoneSelector:     `#ci-submit-button-ai.ci-submit-button-ai-active`,
	BusySelector:     `.ci-submit-pause`,
	MinUnitChars:     1,
})
