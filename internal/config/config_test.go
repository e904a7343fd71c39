package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_MissingDefaultFileYieldsDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(configPathEnv, "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Search.Provider != ProviderYtDLP || cfg.Segments.MinSegment != 60 || cfg.Segments.Top != 5 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	p := writeFile(t, "viralcut.yaml", `
out_dir: clips
search:
  provider: html
  max_results: 12
  timeout: 45s
  html:
    selectors:
      card: div.result
fetch:
  timeout: 90s
segments:
  min_segment: 30
tools:
  ffmpeg: /opt/ffmpeg
`)
	t.Setenv(ffmpegEnv, "/usr/local/bin/ffmpeg")
	t.Setenv(outDirEnv, "")

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OutDir != "clips" {
		t.Fatalf("out_dir = %q", cfg.OutDir)
	}
	if cfg.Search.Provider != ProviderHTML || cfg.Search.MaxResults != 12 || cfg.Search.Timeout != 45*time.Second {
		t.Fatalf("unexpected search config: %+v", cfg.Search)
	}
	if cfg.Search.HTML.Selectors.Card != "div.result" {
		t.Fatalf("selectors not loaded: %+v", cfg.Search.HTML.Selectors)
	}
	// untouched keys keep defaults
	if !strings.Contains(cfg.Search.HTML.URLTemplate, "{query}") || cfg.Segments.MinDuration != 60 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	if cfg.Fetch.Timeout != 90*time.Second || cfg.Segments.MinSegment != 30 {
		t.Fatalf("unexpected fetch/segments: %+v %+v", cfg.Fetch, cfg.Segments)
	}
	if cfg.Tools.FFmpeg != "/usr/local/bin/ffmpeg" {
		t.Fatalf("env override not applied: %q", cfg.Tools.FFmpeg)
	}
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	p := writeFile(t, "alt.yaml", "work_dir: /tmp/dl\n")
	t.Setenv(configPathEnv, p)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.WorkDir != "/tmp/dl" {
		t.Fatalf("work_dir = %q", cfg.WorkDir)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	p := writeFile(t, "bad.yaml", "search: [unclosed\n")
	if _, err := Load(p); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"unknown provider", func(c *Config) { c.Search.Provider = "bing" }, "unknown search provider"},
		{"html without placeholder", func(c *Config) {
			c.Search.Provider = ProviderHTML
			c.Search.HTML.URLTemplate = "https://example.com/"
		}, "{query}"},
		{"unknown captions source", func(c *Config) { c.Captions.Source = "llm" }, "unknown captions source"},
		{"whisper without model", func(c *Config) {
			c.Captions.Source = CaptionsWhisper
			c.Tools.WhisperModel = ""
		}, "whisper_model"},
		{"watermark without tesseract", func(c *Config) {
			c.Watermark.Check = true
			c.Tools.Tesseract = ""
		}, "tesseract"},
		{"crf out of range", func(c *Config) { c.Encode.CRF = 60 }, "crf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
