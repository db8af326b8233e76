// Package config loads, defaults, and validates the guidebuilder YAML
// configuration, with ${ENV} expansion and .env overlay.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/guidebuilder/internal/guideerr"
)

// Config is the root configuration for all guidebuilder commands.
type Config struct {
	Version string        `yaml:"version"`
	Site    SiteConfig    `yaml:"site"`
	Content ContentConfig `yaml:"content"`
	Build   BuildConfig   `yaml:"build"`
	Serve   ServeConfig   `yaml:"serve"`
	Daemon  DaemonConfig  `yaml:"daemon"`
	Logging LoggingConfig `yaml:"logging"`
}

// SiteConfig describes the generated site's identity and URL shape.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	// BaseURL is the absolute URL the site is published under; used for
	// sitemap entries and canonical links. Optional for local preview.
	BaseURL string `yaml:"base_url"`
	// Banner is an optional announcement line rendered above the navbar.
	Banner string `yaml:"banner"`
	// EditBaseURL, when set, produces "edit this page" links by appending
	// each page's corpus-relative path.
	EditBaseURL string `yaml:"edit_base_url"`
	// KeepPrefixes keeps raw NN_name segments in routes instead of
	// stripping the ordering prefixes.
	KeepPrefixes bool `yaml:"keep_prefixes"`
}

// ContentConfig locates the corpus.
type ContentConfig struct {
	Root string `yaml:"root"`
}

// BuildConfig controls site generation.
type BuildConfig struct {
	OutputDir string `yaml:"output_dir"`
	// TemplateDir overrides embedded layout templates file-by-file.
	TemplateDir string `yaml:"template_dir"`
	VerifyLinks bool   `yaml:"verify_links"`
	// KeepStaging leaves the staging directory behind when a build fails.
	KeepStaging bool `yaml:"keep_staging"`
}

// ServeConfig controls the local preview server.
type ServeConfig struct {
	Port       int   `yaml:"port"`
	LiveReload *bool `yaml:"live_reload"`
}

// LiveReloadEnabled reports the live-reload setting with its default (on).
func (s ServeConfig) LiveReloadEnabled() bool {
	return s.LiveReload == nil || *s.LiveReload
}

// DaemonConfig controls continuous mode.
type DaemonConfig struct {
	SitePort    int    `yaml:"site_port"`
	WebhookPort int    `yaml:"webhook_port"`
	AdminPort   int    `yaml:"admin_port"`
	// SyncInterval is a Go duration string for periodic corpus sync.
	SyncInterval string           `yaml:"sync_interval"`
	QueueSize    int              `yaml:"queue_size"`
	Workers      int              `yaml:"workers"`
	WorkDir      string           `yaml:"work_dir"`
	Repo         RepoConfig       `yaml:"repo"`
	Webhook      WebhookConfig    `yaml:"webhook"`
	NATS         NATSConfig       `yaml:"nats"`
	EventStore   EventStoreConfig `yaml:"event_store"`
}

// SyncIntervalDuration parses the configured sync interval.
func (d DaemonConfig) SyncIntervalDuration() (time.Duration, error) {
	return time.ParseDuration(d.SyncInterval)
}

// RepoConfig identifies the git repository holding the corpus.
type RepoConfig struct {
	URL      string `yaml:"url"`
	Branch   string `yaml:"branch"`
	Username string `yaml:"username"`
	Token    string `yaml:"token"`
	Depth    int    `yaml:"depth"`
	// Subdir is the content root inside the repository; defaults to the
	// global content.root.
	Subdir string `yaml:"subdir"`
}

// WebhookConfig secures the push webhook endpoint.
type WebhookConfig struct {
	Secret string `yaml:"secret"`
	Path   string `yaml:"path"`
}

// NATSConfig enables build-event publishing when URL is set.
type NATSConfig struct {
	URL      string `yaml:"url"`
	Subject  string `yaml:"subject"`
	KVBucket string `yaml:"kv_bucket"`
}

// Enabled reports whether NATS publishing is configured.
func (n NATSConfig) Enabled() bool {
	return n.URL != ""
}

// EventStoreConfig locates the sqlite build-event log.
type EventStoreConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads, expands, defaults, and validates a configuration file. The
// .env / .env.local overlay is applied first so ${VAR} references in the
// YAML resolve against it.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, guideerr.ConfigNotFound(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, guideerr.Wrap(err, guideerr.CategoryConfig, guideerr.SeverityFatal, "failed to parse configuration").
			WithContext("path", configPath)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns a fully defaulted configuration without reading a file,
// for commands that work against a plain content directory.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}
