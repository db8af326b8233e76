package config

import (
	"log/slog"
	"net/url"
	"strings"

	"git.home.luguber.info/inful/guidebuilder/internal/guideerr"
)

// Validate checks the configuration for every command except daemon-specific
// requirements (see ValidateDaemon).
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Version, "1.") {
		return guideerr.ValidationFailed("version", "unsupported configuration version "+c.Version+" (expected 1.x)")
	}

	if c.Site.BaseURL != "" {
		u, err := url.Parse(c.Site.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return guideerr.ValidationFailed("site.base_url", "must be an absolute URL")
		}
	}

	if c.Content.Root == c.Build.OutputDir {
		return guideerr.ValidationFailed("build.output_dir", "must differ from content.root")
	}

	if !validPort(c.Serve.Port) {
		return guideerr.ValidationFailed("serve.port", "must be between 1 and 65535")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return guideerr.ValidationFailed("logging.level", "must be one of debug, info, warn, error")
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return guideerr.ValidationFailed("logging.format", "must be text or json")
	}

	return nil
}

// ValidateDaemon checks the additional requirements of continuous mode.
func (c *Config) ValidateDaemon() error {
	d := c.Daemon

	if d.Repo.URL == "" {
		return guideerr.ConfigRequired("daemon.repo.url")
	}

	ports := map[int]string{}
	for _, pc := range []struct {
		name string
		port int
	}{
		{"daemon.site_port", d.SitePort},
		{"daemon.webhook_port", d.WebhookPort},
		{"daemon.admin_port", d.AdminPort},
	} {
		if !validPort(pc.port) {
			return guideerr.ValidationFailed(pc.name, "must be between 1 and 65535")
		}
		if other, dup := ports[pc.port]; dup {
			return guideerr.ValidationFailed(pc.name, "port already used by "+other)
		}
		ports[pc.port] = pc.name
	}

	if _, err := d.SyncIntervalDuration(); err != nil {
		return guideerr.ValidationFailed("daemon.sync_interval", "must be a Go duration (e.g. 15m)")
	}

	if !strings.HasPrefix(d.Webhook.Path, "/") {
		return guideerr.ValidationFailed("daemon.webhook.path", "must start with /")
	}

	return nil
}

// SlogLevel maps the configured logging level to slog.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func validPort(p int) bool {
	return p > 0 && p < 65536
}
