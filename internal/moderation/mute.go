package moderation

import (
	"sync"
	"time"
)

// memberKey addresses per-member state within a chat.
type memberKey struct {
	ChatID   int64
	MemberID int64
}

// MuteLedger tracks per-(chat, member) mute expiries. Entries are evicted
// lazily on the next check; there is no background sweeper.
// Safe for concurrent use.
type MuteLedger struct {
	mu    sync.Mutex
	mutes map[memberKey]time.Time
}

// NewMuteLedger creates an empty ledger.
func NewMuteLedger() *MuteLedger {
	return &MuteLedger{mutes: make(map[memberKey]time.Time)}
}

// IsMuted reports whether the member is muted at the given instant.
// An expired entry is deleted on the way out.
func (l *MuteLedger) IsMuted(chatID, memberID int64, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := memberKey{ChatID: chatID, MemberID: memberID}
	until, ok := l.mutes[key]
	if !ok {
		return false
	}
	if now.Before(until) {
		return true
	}
	delete(l.mutes, key)
	return false
}

// Mute inserts or overwrites the member's mute expiry.
func (l *MuteLedger) Mute(chatID, memberID int64, until time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mutes[memberKey{ChatID: chatID, MemberID: memberID}] = until
}

// Unmute deletes the member's mute entry and reports whether one existed,
// so the invoking admin command can distinguish success from a no-op.
func (l *MuteLedger) Unmute(chatID, memberID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := memberKey{ChatID: chatID, MemberID: memberID}
	if _, ok := l.mutes[key]; !ok {
		return false
	}
	delete(l.mutes, key)
	return true
}
