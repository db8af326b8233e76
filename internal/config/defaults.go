package config

// applyDefaults fills every unset field with its documented default.
func applyDefaults(cfg *Config) {
	if cfg.Version == "" {
		cfg.Version = "1.0"
	}

	if cfg.Site.Title == "" {
		cfg.Site.Title = "Guide"
	}

	if cfg.Content.Root == "" {
		cfg.Content.Root = "content"
	}

	if cfg.Build.OutputDir == "" {
		cfg.Build.OutputDir = "public"
	}

	if cfg.Serve.Port == 0 {
		cfg.Serve.Port = 8080
	}

	d := &cfg.Daemon
	if d.SitePort == 0 {
		d.SitePort = 8080
	}
	if d.WebhookPort == 0 {
		d.WebhookPort = 8081
	}
	if d.AdminPort == 0 {
		d.AdminPort = 8082
	}
	if d.SyncInterval == "" {
		d.SyncInterval = "15m"
	}
	if d.QueueSize == 0 {
		d.QueueSize = 16
	}
	if d.Workers == 0 {
		d.Workers = 1
	}
	if d.WorkDir == "" {
		d.WorkDir = "guidebuilder-work"
	}
	if d.Repo.Branch == "" {
		d.Repo.Branch = "main"
	}
	if d.Repo.Depth == 0 {
		d.Repo.Depth = 1
	}
	if d.Repo.Subdir == "" {
		d.Repo.Subdir = cfg.Content.Root
	}
	if d.Webhook.Path == "" {
		d.Webhook.Path = "/webhook/push"
	}
	if d.NATS.Subject == "" {
		d.NATS.Subject = "guidebuilder.events"
	}
	if d.NATS.KVBucket == "" {
		d.NATS.KVBucket = "guidebuilder-linkcache"
	}
	if d.EventStore.Path == "" {
		d.EventStore.Path = "guidebuilder-events.db"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}
