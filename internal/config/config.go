// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Environment variables consulted when the config leaves a secret empty.
const (
	EnvAPIKey      = "GEMINI_API_KEY"
	EnvDatabaseURL = "DATABASE_URL"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Paths
	CookiesPath string   `json:"cookies_path,omitempty"`                      // Exported cookie JSON
	OutputDir   string   `json:"output_dir,omitempty"`                        // Raw corpus directory
	CuratedDir  string   `json:"curated_dir,omitempty"`                       // Curated corpus directory
	SummaryPath string   `json:"summary_path,omitempty"`                      // Where the LLM summary is written
	Keywords    []string `json:"keywords,omitempty" validate:"dive,required"` // Search keywords, in crawl order

	// Site
	BaseURL    string `json:"base_url,omitempty" validate:"omitempty,url"`
	VerifyURL  string `json:"verify_url,omitempty" validate:"omitempty,url"`
	SearchURL  string `json:"search_url,omitempty"` // Must contain %s for the keyword
	PublishURL string `json:"publish_url,omitempty" validate:"omitempty,url"`

	// Limits
	ScrollCycles          int `json:"scroll_cycles,omitempty" validate:"gte=0,lte=50"`
	ScrollWaitSeconds     int `json:"scroll_wait_seconds,omitempty" validate:"gte=0,lte=60"`
	MaxItemsPerKeyword    int `json:"max_items_per_keyword,omitempty" validate:"gte=0,lte=500"`
	ElementTimeoutSeconds int `json:"element_timeout_seconds,omitempty" validate:"gte=0,lte=120"`
	DownloadWorkers       int `json:"download_workers,omitempty" validate:"gte=0,lte=16"`
	MinImageWidth         int `json:"min_image_width,omitempty" validate:"gte=0"`
	MinImageHeight        int `json:"min_image_height,omitempty" validate:"gte=0"`
	MinTextLength         int `json:"min_text_length,omitempty" validate:"gte=0"`

	// Behavior
	Headless    *bool  `json:"headless,omitempty"`                                                   // Run Chrome without a window
	LogLevel    string `json:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"` // zap level
	APIKey      string `json:"api_key,omitempty"`                                                    // Gemini API key
	Model       string `json:"model,omitempty"`                                                      // Gemini model override
	DatabaseURL string `json:"database_url,omitempty"`                                               // PostgreSQL connection URL
}

// Defaults returns the configuration used when neither file nor flags set a value.
func Defaults() Config {
	headless := true
	return Config{
		CookiesPath:           "cookies.json",
		OutputDir:             "data",
		CuratedDir:            "processed_data",
		SummaryPath:           "summary.md",
		BaseURL:               "https://www.xiaohongshu.com",
		VerifyURL:             "https://www.xiaohongshu.com",
		SearchURL:             "https://www.xiaohongshu.com/search_result?keyword=%s",
		PublishURL:            "https://creator.xiaohongshu.com/publish/publish",
		ScrollCycles:          3,
		ScrollWaitSeconds:     3,
		MaxItemsPerKeyword:    40,
		ElementTimeoutSeconds: 10,
		DownloadWorkers:       1,
		MinImageWidth:         500,
		MinImageHeight:        500,
		MinTextLength:         10,
		Headless:              &headless,
		LogLevel:              "info",
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("config error: '%s' failed '%s' validation", fe.Field(), fe.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}

	if c.SearchURL != "" {
		if strings.Count(c.SearchURL, "%s") != 1 {
			return fmt.Errorf("config error: 'search_url' must contain exactly one %%s placeholder")
		}
		u, err := url.Parse(strings.Replace(c.SearchURL, "%s", "keyword", 1))
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("config error: 'search_url' is not an absolute URL")
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	mergeString(&result.CookiesPath, defaults.CookiesPath)
	mergeString(&result.OutputDir, defaults.OutputDir)
	mergeString(&result.CuratedDir, defaults.CuratedDir)
	mergeString(&result.SummaryPath, defaults.SummaryPath)
	mergeString(&result.BaseURL, defaults.BaseURL)
	mergeString(&result.VerifyURL, defaults.VerifyURL)
	mergeString(&result.SearchURL, defaults.SearchURL)
	mergeString(&result.PublishURL, defaults.PublishURL)
	mergeString(&result.LogLevel, defaults.LogLevel)
	mergeString(&result.APIKey, defaults.APIKey)
	mergeString(&result.Model, defaults.Model)
	mergeString(&result.DatabaseURL, defaults.DatabaseURL)

	if len(result.Keywords) == 0 {
		result.Keywords = append([]string(nil), defaults.Keywords...)
	}

	// Int fields: use default if zero
	mergeInt(&result.ScrollCycles, defaults.ScrollCycles)
	mergeInt(&result.ScrollWaitSeconds, defaults.ScrollWaitSeconds)
	mergeInt(&result.MaxItemsPerKeyword, defaults.MaxItemsPerKeyword)
	mergeInt(&result.ElementTimeoutSeconds, defaults.ElementTimeoutSeconds)
	mergeInt(&result.DownloadWorkers, defaults.DownloadWorkers)
	mergeInt(&result.MinImageWidth, defaults.MinImageWidth)
	mergeInt(&result.MinImageHeight, defaults.MinImageHeight)
	mergeInt(&result.MinTextLength, defaults.MinTextLength)

	// Pointer bools distinguish unset from false
	if result.Headless == nil && defaults.Headless != nil {
		v := *defaults.Headless
		result.Headless = &v
	}

	return result
}

// ApplyEnv fills secrets left empty from the environment.
func (c *Config) ApplyEnv() {
	if c.APIKey == "" {
		c.APIKey = os.Getenv(EnvAPIKey)
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv(EnvDatabaseURL)
	}
}

// IsHeadless reports the headless setting, defaulting to true.
func (c *Config) IsHeadless() bool {
	return c.Headless == nil || *c.Headless
}

// ElementTimeout returns the bounded element wait.
func (c *Config) ElementTimeout() time.Duration {
	return time.Duration(c.ElementTimeoutSeconds) * time.Second
}

// ScrollWait returns the pause after each scroll.
func (c *Config) ScrollWait() time.Duration {
	return time.Duration(c.ScrollWaitSeconds) * time.Second
}

func mergeString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func mergeInt(dst *int, def int) {
	if *dst == 0 {
		*dst = def
	}
}
