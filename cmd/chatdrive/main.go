// Package main provides the chatdrive CLI: a browser-driven client for AI
// chat sites. It runs either an interactive terminal chat or a one-shot
// send-and-print turn for scripting.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/driftlabs/chatdrive/pkg/config"
	"github.com/driftlabs/chatdrive/pkg/ui"
	"github.com/driftlabs/chatdrive/pkg/webchat"
)

const version = "0.1.0"

// CLIConfig holds command-line configuration.
type CLIConfig struct {
	ConfigFile  string
	Site        string
	Message     string
	Headless    bool
	CDP         bool
	CDPPort     int
	Timeout     time.Duration
	ListSites   bool
	ShowVersion bool
}

func main() {
	cliConfig := parseFlags()

	if cliConfig.ShowVersion {
		fmt.Printf("chatdrive v%s\n", version)
		return
	}

	if cliConfig.ListSites {
		for _, name := range webchat.Names() {
			profile, _ := webchat.Lookup(name)
			fmt.Printf("%s\t%s\n", name, profile.URL)
		}
		return
	}

	if err := run(cliConfig); err != nil {
		fmt.Fprintf(os.Stderr, "chatdrive: %v\n", err)
		os.Exit(1)
	}
}

// parseFlags parses command line flags.
func parseFlags() *CLIConfig {
	cliConfig := &CLIConfig{}

	flag.StringVar(&cliConfig.ConfigFile, "config", "", "Path to configuration file (YAML)")
	flag.StringVar(&cliConfig.Site, "site", "", "Chat site to drive (overrides config)")
	flag.StringVar(&cliConfig.Message, "message", "", "Send one message, print the reply and exit")
	flag.BoolVar(&cliConfig.Headless, "headless", true, "Run a locally launched browser without a window")
	flag.BoolVar(&cliConfig.CDP, "cdp", false, "Attach to a running Chrome over its debugging port instead of launching a browser")
	flag.IntVar(&cliConfig.CDPPort, "cdp-port", 9222, "Chrome remote debugging port for -cdp")
	flag.DurationVar(&cliConfig.Timeout, "timeout", 0, "Per-turn response timeout (overrides config)")
	flag.BoolVar(&cliConfig.ListSites, "list-sites", false, "List known chat sites and exit")
	flag.BoolVar(&cliConfig.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "chatdrive - browser-driven client for AI chat sites\n\n")
		fmt.Fprintf(os.Stderr, "Usage: chatdrive [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Interactive chat against the default site\n")
		fmt.Fprintf(os.Stderr, "  chatdrive\n\n")
		fmt.Fprintf(os.Stderr, "  # One-shot question for scripting\n")
		fmt.Fprintf(os.Stderr, "  chatdrive -site ernie -message \"What is the tallest mountain?\"\n\n")
		fmt.Fprintf(os.Stderr, "  # Reuse a logged-in Chrome started with --remote-debugging-port=9222\n")
		fmt.Fprintf(os.Stderr, "  chatdrive -cdp -site googleai\n\n")
	}

	flag.Parse()
	return cliConfig
}

func run(cliConfig *CLIConfig) error {
	cfg, err := loadConfig(cliConfig)
	if err != nil {
		return err
	}

	profile, ok := webchat.Lookup(cfg.Site)
	if !ok {
		return fmt.Errorf("unknown site %q (known sites: %v)", cfg.Site, webchat.Names())
	}

	engine := webchat.NewEngine(profile, cfg.EngineOptions())
	defer engine.Close()

	if cliConfig.Message != "" {
		return runOneShot(engine, cliConfig.Message)
	}

	return ui.Run(engine, cfg.Site)
}

// runOneShot sends a single message and prints the reply to stdout.
func runOneShot(engine *webchat.Engine, message string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	reply, err := engine.SendMessage(ctx, message)
	if err != nil {
		return err
	}
	fmt.Println(reply)
	return nil
}

// loadConfig merges the configuration file with CLI overrides. CLI flags
// that were explicitly set win over file values.
func loadConfig(cliConfig *CLIConfig) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if cliConfig.ConfigFile != "" {
		loaded, err := config.Load(cliConfig.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if cliConfig.Site != "" {
		cfg.Site = cliConfig.Site
	}
	if cliConfig.Timeout > 0 {
		cfg.ResponseTimeoutSeconds = int(cliConfig.Timeout / time.Second)
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["headless"] {
		cfg.Headless = cliConfig.Headless
	}
	if set["cdp"] {
		cfg.RemoteDebug.Enabled = cliConfig.CDP
	}
	if set["cdp-port"] {
		cfg.RemoteDebug.Port = cliConfig.CDPPort
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
