package moderation

import (
	"log/slog"
	"sync"
	"time"
)

// Spam detection defaults: more than 10 messages inside any rolling
// 60-second window earns a 30-minute mute.
const (
	DefaultSpamWindow    = 60 * time.Second
	DefaultSpamThreshold = 10
	DefaultMuteDuration  = 30 * time.Minute
)

// SpamDetector keeps a trailing window of message timestamps per
// (chat, member) and escalates to a mute when the window overflows.
// This is a sliding-window rate limiter, not a token bucket: burst
// tolerance is exactly "threshold messages inside any rolling window".
// Safe for concurrent use.
type SpamDetector struct {
	mu        sync.Mutex
	window    time.Duration
	threshold int
	muteFor   time.Duration
	ledger    *MuteLedger
	history   map[memberKey][]time.Time
}

// NewSpamDetector creates a detector with the default window, threshold,
// and mute duration, escalating into the given ledger.
func NewSpamDetector(ledger *MuteLedger) *SpamDetector {
	return &SpamDetector{
		window:    DefaultSpamWindow,
		threshold: DefaultSpamThreshold,
		muteFor:   DefaultMuteDuration,
		ledger:    ledger,
		history:   make(map[memberKey][]time.Time),
	}
}

// SetLimits replaces the detector's tunables. Zero or negative values keep
// the current setting. Used by config hot reload.
func (d *SpamDetector) SetLimits(window time.Duration, threshold int, muteFor time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if window > 0 {
		d.window = window
	}
	if threshold > 0 {
		d.threshold = threshold
	}
	if muteFor > 0 {
		d.muteFor = muteFor
	}
}

// MuteDuration returns the currently configured mute length.
func (d *SpamDetector) MuteDuration() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.muteFor
}

// RecordAndCheck appends now to the member's window, prunes entries older
// than the window, and escalates when the pruned window exceeds the
// threshold. On escalation the window is cleared and the member is muted
// until now + mute duration. Returns true when it escalated.
func (d *SpamDetector) RecordAndCheck(chatID, memberID int64, now time.Time) bool {
	d.mu.Lock()

	key := memberKey{ChatID: chatID, MemberID: memberID}
	cutoff := now.Add(-d.window)

	recent := d.history[key][:0]
	for _, t := range d.history[key] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	recent = append(recent, now)

	if len(recent) <= d.threshold {
		d.history[key] = recent
		d.mu.Unlock()
		return false
	}

	delete(d.history, key)
	until := now.Add(d.muteFor)
	d.mu.Unlock()

	d.ledger.Mute(chatID, memberID, until)
	slog.Warn("member muted for spam",
		"chat_id", chatID,
		"member_id", memberID,
		"until", until,
	)
	return true
}

// ClearHistory drops the member's timestamp window. Called on explicit
// unmute so the next message starts a fresh window.
func (d *SpamDetector) ClearHistory(chatID, memberID int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.history, memberKey{ChatID: chatID, MemberID: memberID})
}
