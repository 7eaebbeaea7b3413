// Package webchat exposes chat-site automation as agent tools. Each tool
// wraps the engine in pkg/webchat and reports outcomes as text so a failed
// turn reads as a tool result instead of aborting the caller.
package webchat

import (
	"context"
	"fmt"
	"sync"

	"github.com/driftlabs/chatdrive/pkg/webchat"
)

// conversation is the per-site surface the tools need. Satisfied by
// *webchat.Engine; narrowed so tests can substitute a fake.
type conversation interface {
	SendMessage(ctx context.Context, message string) (string, error)
	EndConversation()
	Close()
}

// ConversationManager owns one engine per chat site, created lazily on
// first use. Engines persist across tool calls so a conversation survives
// multiple turns.
type ConversationManager struct {
	mu      sync.Mutex
	opts    webchat.Options
	engines map[string]conversation

	// newEngine is swapped in tests.
	newEngine func(profile *webchat.Profile, opts webchat.Options) conversation
}

// NewConversationManager creates a manager that builds engines with the
// given options.
func NewConversationManager(opts webchat.Options) *ConversationManager {
	return &ConversationManager{
		opts:    opts,
		engines: make(map[string]conversation),
		newEngine: func(profile *webchat.Profile, opts webchat.Options) conversation {
			return webchat.NewEngine(profile, opts)
		},
	}
}

// Engine returns the conversation engine for a site, creating it on first
// use. The site name must match a registered selector profile.
func (m *ConversationManager) Engine(site string) (conversation, error) {
	profile, ok := webchat.Lookup(site)
	if !ok {
		return nil, fmt.Errorf("unknown site %q (known sites: %v)", site, webchat.Names())
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if engine, ok := m.engines[site]; ok {
		return engine, nil
	}

	engine := m.newEngine(profile, m.opts)
	m.engines[site] = engine
	return engine, nil
}

// ActiveSites returns the sites with a live engine, in no particular order.
func (m *ConversationManager) ActiveSites() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	sites := make([]string, 0, len(m.engines))
	for site := range m.engines {
		sites = append(sites, site)
	}
	return sites
}

// Shutdown closes every engine. Safe to call multiple times.
func (m *ConversationManager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for site, engine := range m.engines {
		engine.Close()
		delete(m.engines, site)
	}
}
