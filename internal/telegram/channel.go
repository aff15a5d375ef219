// Package telegram connects the moderation engine to the Telegram Bot API
// using long polling via telego.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/mymmrac/telego"

	"github.com/nextlevelbuilder/gatekeep/internal/config"
	"github.com/nextlevelbuilder/gatekeep/internal/moderation"
)

// Channel runs the bot: it polls Telegram for updates, routes group
// messages through the per-chat sequencer into the moderation pipeline, and
// serves the administrative command surface.
type Channel struct {
	bot       *telego.Bot
	config    config.TelegramConfig
	transport *transport
	admins    *moderation.AdminRegistry
	mutes     *moderation.MuteLedger
	spam      *moderation.SpamDetector
	pipeline  *moderation.Pipeline
	sequencer *moderation.Sequencer

	selfMu sync.RWMutex
	self   telego.User

	pollCancel context.CancelFunc // cancels the long polling context
	pollDone   chan struct{}      // closed when polling goroutine exits
}

// New creates the Telegram channel and assembles the moderation engine
// around it.
func New(cfg config.TelegramConfig, spamCfg config.SpamConfig) (*Channel, error) {
	var opts []telego.BotOption

	if cfg.Proxy != "" {
		proxyURL, parseErr := url.Parse(cfg.Proxy)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", cfg.Proxy, parseErr)
		}
		opts = append(opts, telego.WithHTTPClient(&http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyURL(proxyURL),
			},
		}))
	}

	bot, err := telego.NewBot(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	tr := newTransport(bot)
	mutes := moderation.NewMuteLedger()
	spam := moderation.NewSpamDetector(mutes)
	spam.SetLimits(spamCfg.Window(), spamCfg.Threshold, spamCfg.MuteFor())
	admins := moderation.NewAdminRegistry(tr)
	pipeline := moderation.NewPipeline(tr, admins, mutes, spam, moderation.NewNameCache())

	c := &Channel{
		bot:       bot,
		config:    cfg,
		transport: tr,
		admins:    admins,
		mutes:     mutes,
		spam:      spam,
		pipeline:  pipeline,
	}
	c.sequencer = moderation.NewSequencer(pipeline.Process, moderation.DefaultInterJobDelay)

	return c, nil
}

// Start begins long polling for Telegram updates.
func (c *Channel) Start(ctx context.Context) error {
	slog.Info("starting gatekeep bot (polling mode)")

	pollCtx, cancel := context.WithCancel(ctx)
	c.pollCancel = cancel
	c.pollDone = make(chan struct{})

	me, err := c.bot.GetMe(pollCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("get bot identity: %w", err)
	}
	c.selfMu.Lock()
	c.self = *me
	c.selfMu.Unlock()
	c.pipeline.SetSelfID(me.ID)

	updates, err := c.bot.UpdatesViaLongPolling(pollCtx, &telego.GetUpdatesParams{
		Timeout:        30,
		AllowedUpdates: []string{"message"},
	})
	if err != nil {
		cancel()
		return fmt.Errorf("start long polling: %w", err)
	}

	slog.Info("telegram bot connected", "username", me.Username)

	// Register bot menu commands with retry.
	go func() {
		commands := DefaultMenuCommands()
		for attempt := 1; attempt <= 3; attempt++ {
			if err := c.SyncMenuCommands(pollCtx, commands); err != nil {
				slog.Warn("failed to sync telegram menu commands", "error", err, "attempt", attempt)
				if attempt < 3 {
					select {
					case <-pollCtx.Done():
						return
					case <-time.After(time.Duration(attempt*5) * time.Second):
					}
				}
			} else {
				slog.Info("telegram menu commands synced")
				return
			}
		}
	}()

	go func() {
		defer close(c.pollDone)
		for {
			select {
			case <-pollCtx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					slog.Info("telegram updates channel closed")
					return
				}
				if update.Message != nil {
					c.handleMessage(pollCtx, update.Message)
				} else {
					slog.Debug("telegram update skipped (no message)", "update_id", update.UpdateID)
				}
			}
		}
	}()

	return nil
}

// Stop shuts down the bot by cancelling the long polling context and
// waiting for the polling goroutine to exit.
func (c *Channel) Stop(_ context.Context) error {
	slog.Info("stopping gatekeep bot")

	if c.pollCancel != nil {
		c.pollCancel()
	}

	// Wait for the polling goroutine to fully exit so that Telegram
	// releases the getUpdates lock before a new instance starts.
	if c.pollDone != nil {
		select {
		case <-c.pollDone:
			slog.Info("gatekeep bot stopped")
		case <-time.After(10 * time.Second):
			slog.Warn("telegram polling goroutine did not exit within timeout")
		}
	}

	return nil
}

// ApplySpamConfig applies reloaded spam settings to the running detector.
func (c *Channel) ApplySpamConfig(cfg config.SpamConfig) {
	c.spam.SetLimits(cfg.Window(), cfg.Threshold, cfg.MuteFor())
	slog.Info("spam settings applied",
		"window_seconds", cfg.WindowSeconds,
		"threshold", cfg.Threshold,
		"mute_minutes", cfg.MuteMinutes,
	)
}

func (c *Channel) selfID() int64 {
	c.selfMu.RLock()
	defer c.selfMu.RUnlock()
	return c.self.ID
}

// isGroupChat reports whether the chat is a group or supergroup.
func isGroupChat(chat telego.Chat) bool {
	return chat.Type == "group" || chat.Type == "supergroup"
}
