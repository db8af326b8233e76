package config

import (
	"fmt"
	"os"
)

// exampleConfig is the starter configuration written by `guidebuilder init`.
const exampleConfig = `version: "1.0"

site:
  title: "API Design Guide"
  description: "A tiered guide to designing RESTful APIs"
  # base_url: "https://guides.example.com"
  # banner: "Draft — content under review"
  # edit_base_url: "https://github.com/example/guide/edit/main/content/"
  # keep_prefixes: false

content:
  root: "content"

build:
  output_dir: "public"
  verify_links: false
  # template_dir: "templates"

serve:
  port: 8080
  live_reload: true

# daemon:
#   site_port: 8080
#   webhook_port: 8081
#   admin_port: 8082
#   sync_interval: "15m"
#   repo:
#     url: "https://git.example.com/guides/api-guide.git"
#     branch: "main"
#     token: "${GUIDE_REPO_TOKEN}"
#   webhook:
#     secret: "${GUIDE_WEBHOOK_SECRET}"
#   nats:
#     url: "nats://localhost:4222"
#   event_store:
#     path: "guidebuilder-events.db"

logging:
  level: "info"
  format: "text"
`

// Init writes the starter configuration file. An existing file is only
// overwritten with force.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o644); err != nil { // #nosec G306 -- config file is meant to be world readable
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
