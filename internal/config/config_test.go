package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/websemantics/codepen-puppeteer/internal/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
query: masonry
output_dir: out
start_page: 2
end_page: 4
diagnostics: true
pen_timeout: 45s
links:
  - title: Direct Pen
    url: https://codepen.io/jane/pen/abc
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "masonry", cfg.Query)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, 2, cfg.StartPage)
	assert.Equal(t, 4, cfg.EndPage)
	assert.True(t, cfg.DiagnosticsEnabled())
	assert.Equal(t, 45*time.Second, cfg.PenTimeLimit())
	assert.Equal(t, []types.PenReference{{Title: "Direct Pen", URL: "https://codepen.io/jane/pen/abc"}}, cfg.Links)

	// Unset fields keep their defaults.
	assert.Equal(t, "screenshots", cfg.DiagnosticsDir)
	assert.Equal(t, "https://codepen.io/search/pens", cfg.SearchURL)
	assert.Equal(t, 1440, cfg.ViewportWidth)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadUnknownField(t *testing.T) {
	_, err := Load(writeConfig(t, "qeury: typo\n"))
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	base := Defaults()
	base.Query = "from file"

	got, err := Merge(base, Config{EndPage: 3, Diagnostics: Bool(true)})
	require.NoError(t, err)

	assert.Equal(t, "from file", got.Query)
	assert.Equal(t, 1, got.StartPage)
	assert.Equal(t, 3, got.EndPage)
	assert.True(t, got.DiagnosticsEnabled())
	assert.Equal(t, 2*time.Minute, got.PenTimeLimit())
	assert.True(t, got.Headless())
}

func TestMergeSwitchesOff(t *testing.T) {
	base := Defaults()
	base.Diagnostics = Bool(true)
	base.ShowBrowser = Bool(true)

	got, err := Merge(base, Config{
		Diagnostics: Bool(false),
		ShowBrowser: Bool(false),
		PenTimeout:  Duration(0),
	})
	require.NoError(t, err)

	assert.False(t, got.DiagnosticsEnabled())
	assert.True(t, got.Headless())
	assert.Equal(t, time.Duration(0), got.PenTimeLimit())

	// Base values are not shared with the result.
	assert.True(t, *base.Diagnostics)
}

func TestLoadZeroValuesOverrideDefaults(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "duration string", content: "pen_timeout: 0s\n"},
		{name: "bare zero", content: "pen_timeout: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.content+"diagnostics: false\nshow_browser: false\n"))
			require.NoError(t, err)

			assert.Equal(t, time.Duration(0), cfg.PenTimeLimit())
			require.NotNil(t, cfg.Diagnostics)
			assert.False(t, cfg.DiagnosticsEnabled())
			assert.True(t, cfg.Headless())
		})
	}
}

func TestAccessorsOnUnsetFields(t *testing.T) {
	var cfg Config

	assert.False(t, cfg.DiagnosticsEnabled())
	assert.True(t, cfg.Headless())
	assert.Equal(t, time.Duration(0), cfg.PenTimeLimit())
}

func TestValidate(t *testing.T) {
	valid := func(mod func(*Config)) Config {
		cfg := Defaults()
		cfg.Query = "masonry"
		mod(&cfg)
		return cfg
	}

	tests := []struct {
		name    string
		cfg     Config
		wantErr error
		ok      bool
	}{
		{name: "search run", cfg: valid(func(*Config) {}), ok: true},
		{name: "links only", cfg: valid(func(c *Config) {
			c.Query = ""
			c.Links = []types.PenReference{{Title: "A", URL: "https://codepen.io/a/pen/1"}}
		}), ok: true},
		{name: "no input", cfg: valid(func(c *Config) { c.Query = "  " }), wantErr: ErrNoInput},
		{name: "no output dir", cfg: valid(func(c *Config) { c.OutputDir = "" })},
		{name: "start page zero", cfg: valid(func(c *Config) { c.StartPage = 0 })},
		{name: "end before start", cfg: valid(func(c *Config) { c.StartPage = 3; c.EndPage = 2 })},
		{name: "link without url", cfg: valid(func(c *Config) {
			c.Links = []types.PenReference{{Title: "A"}}
		})},
		{name: "diagnostics without dir", cfg: valid(func(c *Config) {
			c.Diagnostics = Bool(true)
			c.DiagnosticsDir = ""
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
			}
		})
	}
}

func TestParseLink(t *testing.T) {
	tests := []struct {
		in      string
		want    types.PenReference
		wantErr bool
	}{
		{in: "https://codepen.io/jane/pen/abcXYZ", want: types.PenReference{Title: "abcXYZ", URL: "https://codepen.io/jane/pen/abcXYZ"}},
		{in: "https://codepen.io/jane/pen/abcXYZ/", want: types.PenReference{Title: "abcXYZ", URL: "https://codepen.io/jane/pen/abcXYZ/"}},
		{in: "Flexbox Masonry|https://codepen.io/jane/pen/abc", want: types.PenReference{Title: "Flexbox Masonry", URL: "https://codepen.io/jane/pen/abc"}},
		{in: "https://codepen.io", want: types.PenReference{Title: "codepen.io", URL: "https://codepen.io"}},
		{in: "not a url", wantErr: true},
		{in: "Title|", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLink(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
