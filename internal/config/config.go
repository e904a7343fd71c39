package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "VIRALCUT_CONFIG"
	outDirEnv         = "VIRALCUT_OUT_DIR"
	ytdlpEnv          = "VIRALCUT_YTDLP"
	ffmpegEnv         = "VIRALCUT_FFMPEG"
	ffprobeEnv        = "VIRALCUT_FFPROBE"
	tesseractEnv      = "VIRALCUT_TESSERACT"
	searchProviderEnv = "VIRALCUT_SEARCH_PROVIDER"

	defaultConfigFile = "viralcut.yaml"
)

const (
	ProviderYtDLP = "ytdlp"
	ProviderHTML  = "html"

	CaptionsStatic  = "static"
	CaptionsWhisper = "whisper"
	CaptionsNone    = "none"
)

// Config is the file-level configuration. CLI flags are applied on top by
// the caller.
type Config struct {
	OutDir  string `yaml:"out_dir"`
	WorkDir string `yaml:"work_dir"`

	Search    SearchConfig    `yaml:"search"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Segments  SegmentsConfig  `yaml:"segments"`
	Captions  CaptionsConfig  `yaml:"captions"`
	Watermark WatermarkConfig `yaml:"watermark"`
	Tools     ToolsConfig     `yaml:"tools"`
	Encode    EncodeConfig    `yaml:"encode"`
}

// SearchConfig selects and tunes the search provider.
type SearchConfig struct {
	Provider   string        `yaml:"provider"`
	MaxResults int           `yaml:"max_results"`
	Timeout    time.Duration `yaml:"timeout"`
	HTML       HTMLConfig    `yaml:"html"`
}

// HTMLConfig drives the page-scraping provider.
type HTMLConfig struct {
	URLTemplate string          `yaml:"url_template"`
	Selectors   SelectorsConfig `yaml:"selectors"`
}

// SelectorsConfig holds CSS selectors for a results page. Empty fields fall
// back to the provider defaults.
type SelectorsConfig struct {
	Card      string `yaml:"card"`
	Title     string `yaml:"title"`
	Link      string `yaml:"link"`
	Views     string `yaml:"views"`
	Likes     string `yaml:"likes"`
	Dislikes  string `yaml:"dislikes"`
	Comments  string `yaml:"comments"`
	Shares    string `yaml:"shares"`
	Thumbnail string `yaml:"thumbnail"`
}

type FetchConfig struct {
	Format        string        `yaml:"format"`
	Timeout       time.Duration `yaml:"timeout"`
	KeepDownloads bool          `yaml:"keep_downloads"`
}

type SegmentsConfig struct {
	Top         int     `yaml:"top"`
	MinSegment  float64 `yaml:"min_segment"`
	MinDuration float64 `yaml:"min_duration"`
	Workers     int     `yaml:"workers"`
}

// CaptionsConfig chooses where burned captions come from.
type CaptionsConfig struct {
	Source   string       `yaml:"source"`
	File     string       `yaml:"file"`
	Language string       `yaml:"language"`
	Style    CaptionStyle `yaml:"style"`
}

type CaptionStyle struct {
	FontName string `yaml:"font_name"`
	FontSize int    `yaml:"font_size"`
	Outline  int    `yaml:"outline"`
}

type WatermarkConfig struct {
	Check       bool   `yaml:"check"`
	Skip        bool   `yaml:"skip"`
	OCRLanguage string `yaml:"ocr_language"`
}

// ToolsConfig names the external binaries.
type ToolsConfig struct {
	YtDLP        string `yaml:"ytdlp"`
	FFmpeg       string `yaml:"ffmpeg"`
	FFprobe      string `yaml:"ffprobe"`
	Tesseract    string `yaml:"tesseract"`
	WhisperBin   string `yaml:"whisper_bin"`
	WhisperModel string `yaml:"whisper_model"`
}

type EncodeConfig struct {
	Preset string `yaml:"preset"`
	CRF    int    `yaml:"crf"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		OutDir:  "out",
		WorkDir: ".cache/downloads",
		Search: SearchConfig{
			Provider:   ProviderYtDLP,
			MaxResults: 5,
			Timeout:    2 * time.Minute,
			HTML: HTMLConfig{
				URLTemplate: "https://www.youtube.com/results?search_query={query}",
			},
		},
		Fetch: FetchConfig{
			Format:  "bestvideo+bestaudio/best",
			Timeout: 15 * time.Minute,
		},
		Segments: SegmentsConfig{
			Top:         5,
			MinSegment:  60,
			MinDuration: 60,
			Workers:     1,
		},
		Captions: CaptionsConfig{
			Source: CaptionsStatic,
			Style: CaptionStyle{
				FontName: "Inter",
				FontSize: 40,
				Outline:  3,
			},
		},
		Tools: ToolsConfig{
			YtDLP:        "yt-dlp",
			FFmpeg:       "ffmpeg",
			FFprobe:      "ffprobe",
			Tesseract:    "tesseract",
			WhisperBin:   ".cache/bin/whisper.cpp",
			WhisperModel: ".cache/models/ggml-base.bin",
		},
		Encode: EncodeConfig{
			Preset: "veryfast",
			CRF:    20,
		},
	}
}

// Load reads the config file at path, falling back to VIRALCUT_CONFIG and
// ./viralcut.yaml. A missing file yields defaults. Environment overrides are
// applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if path == "" {
		if p := strings.TrimSpace(os.Getenv(configPathEnv)); p != "" {
			path, explicit = p, true
		} else {
			path = defaultConfigFile
		}
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrideString(&c.OutDir, outDirEnv)
	overrideString(&c.Tools.YtDLP, ytdlpEnv)
	overrideString(&c.Tools.FFmpeg, ffmpegEnv)
	overrideString(&c.Tools.FFprobe, ffprobeEnv)
	overrideString(&c.Tools.Tesseract, tesseractEnv)
	overrideString(&c.Search.Provider, searchProviderEnv)
}

func overrideString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// Validate checks the settings that do not depend on a particular run.
func (c *Config) Validate() error {
	switch c.Search.Provider {
	case ProviderYtDLP:
		if c.Tools.YtDLP == "" {
			return errors.New("tools.ytdlp is required")
		}
	case ProviderHTML:
		if !strings.Contains(c.Search.HTML.URLTemplate, "{query}") {
			return errors.New("search.html.url_template must contain {query}")
		}
		if c.Tools.YtDLP == "" {
			return errors.New("tools.ytdlp is required for fetching")
		}
	default:
		return fmt.Errorf("unknown search provider %q", c.Search.Provider)
	}

	switch c.Captions.Source {
	case CaptionsStatic, CaptionsNone, "":
	case CaptionsWhisper:
		if c.Tools.WhisperModel == "" {
			return errors.New("tools.whisper_model is required for whisper captions")
		}
	default:
		return fmt.Errorf("unknown captions source %q", c.Captions.Source)
	}

	if c.Watermark.Check && c.Tools.Tesseract == "" {
		return errors.New("tools.tesseract is required for watermark checks")
	}
	if c.Tools.FFmpeg == "" || c.Tools.FFprobe == "" {
		return errors.New("tools.ffmpeg and tools.ffprobe are required")
	}
	if c.Encode.CRF < 0 || c.Encode.CRF > 51 {
		return fmt.Errorf("encode.crf must be in [0, 51], got %d", c.Encode.CRF)
	}
	return nil
}
