package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/websemantics/codepen-puppeteer/internal/browser"
	"github.com/websemantics/codepen-puppeteer/internal/config"
	"github.com/websemantics/codepen-puppeteer/internal/crawler"
	"github.com/websemantics/codepen-puppeteer/internal/progress"
	"github.com/websemantics/codepen-puppeteer/internal/types"
)

// CLI flags structure. Unset flags leave the config file values alone; the
// pointer fields tell an explicit --no-diagnostics or --pen-timeout=0 apart
// from an absent flag.
type CLI struct {
	ConfigFile     string         `name:"config" help:"Path to configuration file" default:"config.yaml" short:"c" env:"CODEPEN_CONFIG"`
	Query          string         `help:"Search query" short:"q" env:"CODEPEN_QUERY"`
	Output         string         `help:"Directory to store pens and the index" short:"o" env:"CODEPEN_OUTPUT_DIR"`
	StartPage      int            `help:"First search results page" env:"CODEPEN_START_PAGE"`
	EndPage        int            `help:"Last search results page" env:"CODEPEN_END_PAGE"`
	Link           []string       `help:"Pen link as URL or 'Title|URL'; bypasses search" short:"l" sep:"none"`
	Diagnostics    *bool          `help:"Save before/after screenshots of every pen" negatable:"" env:"CODEPEN_DIAGNOSTICS"`
	DiagnosticsDir string         `help:"Directory for screenshots" env:"CODEPEN_DIAGNOSTICS_DIR"`
	PenTemplate    string         `help:"Pen page template" env:"CODEPEN_PEN_TEMPLATE"`
	IndexTemplate  string         `help:"Index page template" env:"CODEPEN_INDEX_TEMPLATE"`
	ShowBrowser    *bool          `help:"Run Chrome with a visible window" negatable:""`
	Chrome         string         `help:"Path to the Chrome binary" env:"CHROME_PATH"`
	PenTimeout     *time.Duration `help:"Time limit for a single pen, 0 for none" env:"CODEPEN_PEN_TIMEOUT"`
	Rate           int            `name:"navigations-per-minute" help:"Maximum page loads per minute" env:"CODEPEN_RATE"`
	Debug          bool           `help:"Enable debug logging" env:"CODEPEN_DEBUG"`
	UI             bool           `help:"Show a live run view instead of log output"`
	LogFile        string         `help:"Append logs to this file while the run view is shown" type:"path"`
}

// overrides converts the flags into a config layer.
func (c CLI) overrides() (config.Config, error) {
	cfg := config.Config{
		Query:                c.Query,
		OutputDir:            c.Output,
		StartPage:            c.StartPage,
		EndPage:              c.EndPage,
		Diagnostics:          c.Diagnostics,
		DiagnosticsDir:       c.DiagnosticsDir,
		PenTemplate:          c.PenTemplate,
		IndexTemplate:        c.IndexTemplate,
		ShowBrowser:          c.ShowBrowser,
		PenTimeout:           c.PenTimeout,
		NavigationsPerMinute: c.Rate,
	}
	for _, l := range c.Link {
		ref, err := config.ParseLink(l)
		if err != nil {
			return cfg, err
		}
		cfg.Links = append(cfg.Links, ref)
	}
	return cfg, nil
}

func main() {
	// A missing .env is fine; values may come from the real environment.
	_ = godotenv.Load()

	var cli CLI
	kong.Parse(&cli,
		kong.Name("codepen-crawl"),
		kong.Description("Download pens as self-contained pages and build a browsable index."),
		kong.UsageOnError(),
	)

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "codepen",
	})
	if cli.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cli, logger); err != nil {
		logger.Error("Run failed", "err", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cli CLI, logger *log.Logger) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cli.UI {
		restore, err := redirectLogs(logger, cli.LogFile)
		if err != nil {
			return err
		}
		defer restore()
	}

	logger.Info("Launching browser", "headless", cfg.Headless())
	b, err := browser.Launch(ctx, browser.Options{
		Headless:  cfg.Headless(),
		UserAgent: cfg.UserAgent,
		ExecPath:  cli.Chrome,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	defer b.Close()

	started := time.Now()
	var summary crawler.Summary
	if cli.UI {
		summary, err = runWithView(ctx, cfg, b.Page(), logger)
	} else {
		var c *crawler.Crawler
		c, err = crawler.New(cfg, b.Page(), crawler.Options{
			Logger:   logger,
			Progress: progress.New(os.Stdout),
		})
		if err != nil {
			return err
		}
		summary, err = c.Start(ctx)
	}
	printSummary(os.Stdout, summary)
	logger.Info("Run finished", "took", time.Since(started).Round(time.Second), "output", cfg.OutputDir)
	return err
}

func loadConfig(cli CLI) (config.Config, error) {
	cfg, err := config.Load(cli.ConfigFile)
	if err != nil {
		return cfg, err
	}
	overrides, err := cli.overrides()
	if err != nil {
		return cfg, err
	}
	// Links given on the command line replace the configured search.
	if len(overrides.Links) > 0 {
		cfg.Links = []types.PenReference{}
	}
	return config.Merge(cfg, overrides)
}
