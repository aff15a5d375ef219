package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Spam.WindowSeconds != 60 || cfg.Spam.Threshold != 10 || cfg.Spam.MuteMinutes != 30 {
		t.Errorf("defaults = %+v, want 60/10/30", cfg.Spam)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
		// JSON5: comments and trailing commas allowed
		spam: { window_seconds: 30, threshold: 5, mute_minutes: 10, },
		telegram: { proxy: "http://localhost:8080" },
	}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Spam.WindowSeconds != 30 || cfg.Spam.Threshold != 5 || cfg.Spam.MuteMinutes != 10 {
		t.Errorf("spam config = %+v, want 30/5/10", cfg.Spam)
	}
	if cfg.Telegram.Proxy != "http://localhost:8080" {
		t.Errorf("proxy = %q", cfg.Telegram.Proxy)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{spam: {threshold: 5}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("GATEKEEP_TELEGRAM_TOKEN", "123:abc")
	t.Setenv("GATEKEEP_SPAM_THRESHOLD", "7")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Telegram.Token != "123:abc" {
		t.Errorf("token = %q, want env value", cfg.Telegram.Token)
	}
	if cfg.Spam.Threshold != 7 {
		t.Errorf("threshold = %d, want env override 7", cfg.Spam.Threshold)
	}
}

func TestSpamConfig_Durations(t *testing.T) {
	s := SpamConfig{WindowSeconds: 90, MuteMinutes: 15}
	if s.Window() != 90*time.Second {
		t.Errorf("Window() = %v", s.Window())
	}
	if s.MuteFor() != 15*time.Minute {
		t.Errorf("MuteFor() = %v", s.MuteFor())
	}
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{spam: {threshold: 5}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Config, 1)
	ctx := t.Context()
	if err := Watch(ctx, path, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	}); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	// Give the watcher a moment to register, then rewrite the file.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte(`{spam: {threshold: 9}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Spam.Threshold != 9 {
			t.Errorf("reloaded threshold = %d, want 9", cfg.Spam.Threshold)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("config change never triggered a reload")
	}
}
