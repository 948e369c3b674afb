package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"
)

const (
	DefaultLogLevel              = slog.LevelInfo
	DefaultTraversalConcurrency  = 1
	DefaultMailConcurrency       = 8
	DefaultRequestTimeoutSeconds = 30
)

type (
	TraversalConfig struct {
		// MaxDepth limits descent, 0 walks the whole tree.
		MaxDepth    int   `json:"max_depth"`
		Concurrency int   `json:"concurrency"`
		FollowPages *bool `json:"follow_pages"`
		PageSize    int32 `json:"page_size"`
	}

	MailConfig struct {
		Concurrency int `json:"concurrency"`
	}

	Config struct {
		Traversal             TraversalConfig `json:"traversal"`
		Mail                  MailConfig      `json:"mail"`
		RequestTimeoutSeconds int             `json:"request_timeout_seconds"`
	}
)

// Default returns the settings used when no config file is present.
func Default() Config {
	followPages := true
	return Config{
		Traversal: TraversalConfig{
			Concurrency: DefaultTraversalConcurrency,
			FollowPages: &followPages,
		},
		Mail: MailConfig{
			Concurrency: DefaultMailConcurrency,
		},
		RequestTimeoutSeconds: DefaultRequestTimeoutSeconds,
	}
}

// LoadConfigSettings reads the JSON config file on top of the defaults. A
// missing file is not an error.
func LoadConfigSettings(filename string) (Config, error) {
	config := Default()

	file, err := os.Open(filename)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Config file not found, using defaults", "file", filename)
		return config, nil
	}
	if err != nil {
		return config, err
	}

	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return config, err
	}

	err = json.Unmarshal(bytes, &config)
	if err != nil {
		return config, fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	// an explicit null leaves the pointer unset
	if config.Traversal.FollowPages == nil {
		followPages := true
		config.Traversal.FollowPages = &followPages
	}

	if err := config.Validate(); err != nil {
		return config, err
	}

	return config, nil
}

func (c Config) Validate() error {
	if c.Traversal.MaxDepth < 0 {
		return fmt.Errorf("traversal.max_depth must not be negative: %d", c.Traversal.MaxDepth)
	}

	if c.Traversal.Concurrency < 1 {
		return fmt.Errorf("traversal.concurrency must be at least 1: %d", c.Traversal.Concurrency)
	}

	if c.Traversal.PageSize < 0 || c.Traversal.PageSize > 999 {
		return fmt.Errorf("traversal.page_size must be between 0 and 999: %d", c.Traversal.PageSize)
	}

	if c.Mail.Concurrency < 1 {
		return fmt.Errorf("mail.concurrency must be at least 1: %d", c.Mail.Concurrency)
	}

	if c.RequestTimeoutSeconds < 1 {
		return fmt.Errorf("request_timeout_seconds must be at least 1: %d", c.RequestTimeoutSeconds)
	}

	return nil
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func (c Config) FollowPages() bool {
	return c.Traversal.FollowPages == nil || *c.Traversal.FollowPages
}
