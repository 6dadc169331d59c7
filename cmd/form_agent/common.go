package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/form-agent/internal/agent"
	"github.com/jonathan/form-agent/internal/config"
	"github.com/jonathan/form-agent/internal/dom"
	"github.com/jonathan/form-agent/internal/engine"
	"github.com/jonathan/form-agent/internal/logging"
	"github.com/jonathan/form-agent/internal/profile"
)

// browserTimeout bounds a headless-browser session end to end.
const browserTimeout = 60 * time.Second

var (
	cfgPath          string
	flagProfile      string
	flagPage         string
	flagURL          string
	flagResume       string
	flagUseBrowser   bool
	flagVerbose      bool
	flagMaxAttempts  int
	flagSettleMs     int
	flagConservative bool
	flagSync         string
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgPath, "config", "c", "", "Path to JSON config file")
	pf.StringVar(&flagProfile, "profile", "", "Path to profile record JSON")
	pf.StringVarP(&flagPage, "page", "p", "", "Path to a saved HTML document")
	pf.StringVarP(&flagURL, "url", "u", "", "URL to drive with the browser provider")
	pf.StringVar(&flagResume, "resume", "", "Path to resume file for upload controls")
	pf.BoolVar(&flagUseBrowser, "browser", false, "Drive a headless browser instead of parsing saved HTML")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Print detailed debug information")
	pf.IntVar(&flagMaxAttempts, "max-attempts", 0, "Fill retry cap per field")
	pf.IntVar(&flagSettleMs, "settle-ms", 0, "Delay after interactions, in milliseconds")
	pf.BoolVar(&flagConservative, "conservative", false, "Disable heuristic yes/no defaults")
	pf.StringVar(&flagSync, "sync-endpoint", "", "Learning-sync URL (empty disables)")
}

// loadSettings merges CLI flags over the optional config file. Flags win.
func loadSettings() (config.Config, error) {
	cfg := config.Config{
		Profile:              flagProfile,
		Page:                 flagPage,
		URL:                  flagURL,
		Resume:               flagResume,
		UseBrowser:           flagUseBrowser,
		Verbose:              flagVerbose,
		MaxAttempts:          flagMaxAttempts,
		SettleMs:             flagSettleMs,
		ConservativeDefaults: flagConservative,
		SyncEndpoint:         flagSync,
	}

	if cfgPath != "" {
		fileCfg, err := config.LoadConfig(cfgPath)
		if err != nil {
			return cfg, err
		}
		cfg = cfg.MergeWithDefaults(*fileCfg)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (*logging.Logger, error) {
	if cfg.Verbose {
		return logging.New("development")
	}
	return logging.New("production")
}

// newProvider opens the document named by the settings. The returned
// cleanup must run once the command finishes.
func newProvider(ctx context.Context, cfg config.Config) (dom.Provider, func(), error) {
	if cfg.UseBrowser {
		if cfg.URL == "" {
			return nil, nil, fmt.Errorf("--browser requires --url")
		}
		p, err := dom.NewChromeProvider(ctx, cfg.URL, browserTimeout)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open browser session: %w", err)
		}
		return p, p.Close, nil
	}

	if cfg.Page == "" {
		return nil, nil, fmt.Errorf("either --page or --browser with --url must be provided")
	}
	return newStaticProvider(cfg.Page)
}

func newStaticProvider(page string) (dom.Provider, func(), error) {
	data, err := os.ReadFile(page)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read page file: %w", err)
	}
	abs, err := filepath.Abs(page)
	if err != nil {
		abs = page
	}
	p, err := dom.NewStaticProvider(string(data), "file://"+abs)
	if err != nil {
		return nil, nil, err
	}
	return p, func() {}, nil
}

func newAgent(provider dom.Provider, cfg config.Config, log *logging.Logger) *agent.Agent {
	if cfg.Profile == "" {
		cfg.Profile = "profile.json"
	}
	return agent.New(provider, profile.NewFileStore(cfg.Profile), log, agent.Options{
		Engine: engine.Options{
			MaxAttempts: cfg.MaxAttempts,
			SettleDelay: time.Duration(cfg.SettleMs) * time.Millisecond,
			Answer:      answerOptions(cfg),
		},
		SyncEndpoint: cfg.SyncEndpoint,
	})
}
