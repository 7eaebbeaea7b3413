package webchat

import (
	"fmt"
	"io"

	"github.com/playwright-community/playwright-go"
)

const cdpConnectTimeout = 15000.0 // milliseconds

// ConnectOptions selects how the browser process is obtained.
type ConnectOptions struct {
	// RemoteDebug attaches to an already-running browser through its local
	// debugging endpoint instead of launching a private process. Attaching
	// reuses the user's logged-in state.
	RemoteDebug bool

	// DebugPort is the local debugging endpoint port.
	DebugPort int

	// Headless applies to locally launched browsers only.
	Headless bool
}

// Connection owns the automation driver and one browser, shared by every
// conversation created from it. Dedicated per-conversation contexts keep
// their state from leaking into each other.
type Connection struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	remote  bool
}

// Connect obtains a browser per opts. Driver startup and endpoint connection
// failures are setup errors: fatal, carrying remediation guidance, and never
// retried here.
func Connect(opts ConnectOptions) (*Connection, error) {
	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(runOpts); err != nil {
		return nil, &SetupError{
			Hint: "install the driver and Chromium with: go run github.com/playwright-community/playwright-go/cmd/playwright install chromium",
			Err:  fmt.Errorf("failed to install playwright driver: %w", err),
		}
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, &SetupError{
			Hint: "install the driver and Chromium with: go run github.com/playwright-community/playwright-go/cmd/playwright install chromium",
			Err:  fmt.Errorf("failed to start playwright driver: %w", err),
		}
	}

	if opts.RemoteDebug {
		endpoint := fmt.Sprintf("http://127.0.0.1:%d", opts.DebugPort)
		browser, err := pw.Chromium.ConnectOverCDP(endpoint, playwright.BrowserTypeConnectOverCDPOptions{
			Timeout: playwright.Float(cdpConnectTimeout),
		})
		if err != nil {
			_ = pw.Stop()
			return nil, &SetupError{
				Hint: fmt.Sprintf("start Chrome with --remote-debugging-port=%d (or point remote_debug.port at an endpoint started by a companion process)", opts.DebugPort),
				Err:  fmt.Errorf("failed to connect to Chrome debugging endpoint on port %d: %w", opts.DebugPort, err),
			}
		}
		return &Connection{pw: pw, browser: browser, remote: true}, nil
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, &SetupError{
			Err: fmt.Errorf("failed to launch browser: %w", err),
		}
	}
	return &Connection{pw: pw, browser: browser}, nil
}

// Browser returns the connection's browser.
func (c *Connection) Browser() playwright.Browser {
	return c.browser
}

// Alive reports whether the browser is still usable. A dead connection means
// the next turn must rebuild it.
func (c *Connection) Alive() bool {
	return c != nil && c.browser != nil && c.browser.IsConnected()
}

// Close shuts the connection down. A locally launched browser process is
// owned by us and gets closed; an attached browser belongs to the user, so
// only the driver connection is released.
func (c *Connection) Close() error {
	if c == nil {
		return nil
	}
	if c.browser != nil && !c.remote {
		_ = c.browser.Close()
	}
	if c.pw != nil {
		return c.pw.Stop()
	}
	return nil
}
