package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/titanous/json5"
)

// Load reads config from a JSON5 file, then overlays env vars.
// A missing file is not an error: defaults plus env apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json5.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides overlays env vars onto the config.
// Env vars take precedence over file values.
func (c *Config) applyEnvOverrides() {
	envStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	envInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				*dst = n
			}
		}
	}

	envStr("GATEKEEP_TELEGRAM_TOKEN", &c.Telegram.Token)
	envStr("GATEKEEP_PROXY", &c.Telegram.Proxy)

	envInt("GATEKEEP_SPAM_WINDOW_SECONDS", &c.Spam.WindowSeconds)
	envInt("GATEKEEP_SPAM_THRESHOLD", &c.Spam.Threshold)
	envInt("GATEKEEP_SPAM_MUTE_MINUTES", &c.Spam.MuteMinutes)
}
