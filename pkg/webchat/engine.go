package webchat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/driftlabs/chatdrive/pkg/logging"
)

// Response timeout bounds. The floor matches the slowest observed replies on
// the targeted sites; anything shorter produces spurious timeouts.
const (
	MinResponseTimeout     = 30 * time.Second
	DefaultResponseTimeout = 90 * time.Second
)

// Options configures an engine. The zero value is usable: local headless
// browser, default timeout and poll policy.
type Options struct {
	// ResponseTimeout bounds one turn, floored at MinResponseTimeout.
	ResponseTimeout time.Duration

	// Headless applies to locally launched browsers.
	Headless bool

	// RemoteDebug attaches to a running browser on DebugPort instead of
	// launching one.
	RemoteDebug bool
	DebugPort   int

	// PollInterval and StableChecks override the detector defaults.
	PollInterval time.Duration
	StableChecks int
}

func (o Options) responseTimeout() time.Duration {
	switch {
	case o.ResponseTimeout <= 0:
		return DefaultResponseTimeout
	case o.ResponseTimeout < MinResponseTimeout:
		return MinResponseTimeout
	default:
		return o.ResponseTimeout
	}
}

// Engine runs one logical conversation against one site. All turns and the
// termination operation are serialized by a mutex, so at most one DOM
// interaction sequence runs against the page at a time.
//
// The browser connection is created lazily on the first turn and reused
// until it becomes unusable.
type Engine struct {
	mu       sync.Mutex
	profile  *Profile
	opts     Options
	executor *Executor
	log      *logging.Logger

	conn    *Connection
	session *Session

	// Seams for tests; production wiring in NewEngine.
	connect func(ConnectOptions) (*Connection, error)
	acquire func(existing *Session, conn *Connection, profile *Profile, timeout time.Duration) (*Session, error)
	turn    func(ctx context.Context, session *Session, message string, timeout time.Duration) (TurnResult, error)
}

// NewEngine creates an engine for one conversation with the given site.
func NewEngine(profile *Profile, opts Options) *Engine {
	log, _ := logging.NewLogger("webchat." + profile.Name)
	e := &Engine{
		profile:  profile,
		opts:     opts,
		executor: NewExecutor(NewDetector(opts.PollInterval, opts.StableChecks)),
		log:      log,
		connect:  Connect,
		acquire:  Acquire,
	}
	e.turn = e.runTurn
	return e
}

// Profile returns the site profile this engine drives.
func (e *Engine) Profile() *Profile {
	return e.profile
}

// SendMessage submits one turn and returns the newly produced reply text.
// The session handle is validated (and rebuilt if stale) on every turn.
func (e *Engine) SendMessage(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("message must not be empty")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureConnection(); err != nil {
		return "", err
	}

	timeout := e.opts.responseTimeout()
	session, err := e.acquire(e.session, e.conn, e.profile, timeout)
	if err != nil {
		e.session = nil
		e.log.Errorf("session acquisition failed: %v", err)
		return "", err
	}
	e.session = session

	e.log.Debugf("turn start: session=%s responseIndex=%d", session.ID, session.NextResponseIndex)
	result, err := e.turn(ctx, session, message, timeout)
	if err != nil {
		e.log.Errorf("turn failed: session=%s: %v", session.ID, err)
		return "", err
	}

	session.NextResponseIndex = result.Units + 1
	if result.Partial {
		e.log.Warnf("turn returned partial reply: session=%s units=%d", session.ID, result.Units)
	} else {
		e.log.Debugf("turn complete: session=%s units=%d chars=%d", session.ID, result.Units, len(result.Text))
	}
	return result.Text, nil
}

// EndConversation tears the current session down. Cleanup is best-effort and
// never fails; the next turn allocates a fresh tab.
func (e *Engine) EndConversation() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != nil {
		e.log.Debugf("ending conversation: session=%s", e.session.ID)
		e.session.Terminate()
		e.session = nil
	}
}

// Close ends the conversation and releases the browser connection.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != nil {
		e.session.Terminate()
		e.session = nil
	}
	if e.conn != nil {
		_ = e.conn.Close()
		e.conn = nil
	}
	_ = e.log.Close()
}

func (e *Engine) ensureConnection() error {
	if e.conn.Alive() {
		return nil
	}
	if e.conn != nil {
		// A dead connection takes its sessions with it.
		_ = e.conn.Close()
		e.conn = nil
		e.session = nil
	}

	conn, err := e.connect(ConnectOptions{
		RemoteDebug: e.opts.RemoteDebug,
		DebugPort:   e.opts.DebugPort,
		Headless:    e.opts.Headless,
	})
	if err != nil {
		e.log.Errorf("browser connection failed: %v", err)
		return err
	}
	e.conn = conn
	return nil
}

func (e *Engine) runTurn(ctx context.Context, session *Session, message string, timeout time.Duration) (TurnResult, error) {
	return e.executor.Run(ctx, session.DOM(), e.profile, message, session.NextResponseIndex, timeout)
}
