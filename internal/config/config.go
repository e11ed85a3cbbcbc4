// Package config holds the settings for one acquisition run.
//
// Settings are layered: Defaults, then the YAML file, then whatever the
// command line (and environment) provided. Later layers only override
// fields they actually set.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v2"

	"github.com/websemantics/codepen-puppeteer/internal/types"
)

// ErrNoInput is returned when neither a search query nor direct links are set.
var ErrNoInput = errors.New("no search query or pen links configured")

// Config is the value object passed to the crawler.
//
// Settings that can be switched off by a later layer are pointers: nil means
// "not set here", so an explicit false or 0 still overrides.
type Config struct {
	Query          string `yaml:"query"`
	OutputDir      string `yaml:"output_dir"`
	DiagnosticsDir string `yaml:"diagnostics_dir"`
	Diagnostics    *bool  `yaml:"diagnostics"`
	StartPage      int    `yaml:"start_page"`
	EndPage        int    `yaml:"end_page"`

	PenTemplate   string `yaml:"pen_template"`
	IndexTemplate string `yaml:"index_template"`
	IndexFrame    string `yaml:"index_frame"`

	// Links bypass search when present.
	Links []types.PenReference `yaml:"links"`

	SearchURL      string         `yaml:"search_url"`
	ShowBrowser    *bool          `yaml:"show_browser"`
	UserAgent      string         `yaml:"user_agent"`
	ViewportWidth  int            `yaml:"viewport_width"`
	ViewportHeight int            `yaml:"viewport_height"`
	PenTimeout     *time.Duration `yaml:"pen_timeout"`
	// NavigationsPerMinute paces page loads; 0 means no pacing.
	NavigationsPerMinute int `yaml:"navigations_per_minute"`
}

// Defaults returns the built-in settings.
func Defaults() Config {
	return Config{
		OutputDir:      "pens",
		DiagnosticsDir: "screenshots",
		StartPage:      1,
		EndPage:        1,
		IndexFrame:     "pen",
		SearchURL:      "https://codepen.io/search/pens",
		ViewportWidth:  1440,
		ViewportHeight: 900,
		PenTimeout:     Duration(2 * time.Minute),
	}
}

// Bool returns a pointer to b, for building config layers.
func Bool(b bool) *bool { return &b }

// Duration returns a pointer to d, for building config layers.
func Duration(d time.Duration) *time.Duration { return &d }

// DiagnosticsEnabled reports whether screenshots should be taken.
func (c Config) DiagnosticsEnabled() bool {
	return c.Diagnostics != nil && *c.Diagnostics
}

// Headless reports whether Chrome should run without a window.
func (c Config) Headless() bool {
	return c.ShowBrowser == nil || !*c.ShowBrowser
}

// PenTimeLimit is the time allowed for one pen. 0 means no limit.
func (c Config) PenTimeLimit() time.Duration {
	if c.PenTimeout == nil || *c.PenTimeout < 0 {
		return 0
	}
	return *c.PenTimeout
}

// Load reads the YAML file at path on top of Defaults. A missing file is not
// an error.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var file Config
	if err := yaml.UnmarshalStrict(data, &file); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return Merge(cfg, file)
}

// Merge returns base with every set field of override applied. Plain fields
// count as set when non-zero, pointer fields when non-nil.
func Merge(base, override Config) (Config, error) {
	if err := mergo.Merge(&base, override, mergo.WithOverride, mergo.WithoutDereference); err != nil {
		return base, fmt.Errorf("failed to merge config: %w", err)
	}
	return base, nil
}

// Validate checks the settings for a run.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if c.DiagnosticsEnabled() && c.DiagnosticsDir == "" {
		return errors.New("diagnostics directory must be set when diagnostics are enabled")
	}
	if len(c.Links) > 0 {
		for i, link := range c.Links {
			if strings.TrimSpace(link.URL) == "" {
				return fmt.Errorf("link %d has no url", i+1)
			}
		}
		return nil
	}
	if strings.TrimSpace(c.Query) == "" {
		return ErrNoInput
	}
	if c.StartPage < 1 {
		return fmt.Errorf("start page must be at least 1, got %d", c.StartPage)
	}
	if c.EndPage < c.StartPage {
		return fmt.Errorf("end page %d is before start page %d", c.EndPage, c.StartPage)
	}
	return nil
}

// ParseLink reads a command line link given as "URL" or "Title|URL". A bare
// URL is titled after its last path segment.
func ParseLink(s string) (types.PenReference, error) {
	title, rawURL, found := strings.Cut(s, "|")
	if !found {
		rawURL, title = s, ""
	}
	rawURL = strings.TrimSpace(rawURL)

	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return types.PenReference{}, fmt.Errorf("invalid pen link %q", s)
	}
	if strings.TrimSpace(title) == "" {
		title = path.Base(strings.TrimSuffix(u.Path, "/"))
		if title == "." || title == "/" {
			title = u.Host
		}
	}
	return types.PenReference{Title: title, URL: rawURL}, nil
}
