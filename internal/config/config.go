// Package config loads GateKeep configuration from a JSON5 file overlaid
// with GATEKEEP_* environment variables, and can watch the file for
// runtime-tunable changes.
package config

import "time"

// Config is the root configuration for the GateKeep bot.
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Spam     SpamConfig     `json:"spam,omitempty"`
}

// TelegramConfig configures the Telegram Bot API connection.
// Token is NEVER read from the config file (secret), env only.
type TelegramConfig struct {
	Token string `json:"-"`               // from env GATEKEEP_TELEGRAM_TOKEN only
	Proxy string `json:"proxy,omitempty"` // optional HTTP proxy URL for Bot API calls
}

// SpamConfig tunes the sliding-window spam detector. Values are applied
// live on config reload.
type SpamConfig struct {
	WindowSeconds int `json:"window_seconds,omitempty"` // trailing window length (default 60)
	Threshold     int `json:"threshold,omitempty"`      // messages allowed inside the window (default 10)
	MuteMinutes   int `json:"mute_minutes,omitempty"`   // mute length on escalation (default 30)
}

// Window returns the spam window as a duration (0 = keep default).
func (s SpamConfig) Window() time.Duration {
	return time.Duration(s.WindowSeconds) * time.Second
}

// MuteFor returns the mute length as a duration (0 = keep default).
func (s SpamConfig) MuteFor() time.Duration {
	return time.Duration(s.MuteMinutes) * time.Minute
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Spam: SpamConfig{
			WindowSeconds: 60,
			Threshold:     10,
			MuteMinutes:   30,
		},
	}
}
