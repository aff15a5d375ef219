package moderation

import (
	"testing"
	"time"
)

func TestMuteLedger_LazyExpiry(t *testing.T) {
	l := NewMuteLedger()
	now := time.Now()

	l.Mute(1, 42, now.Add(time.Minute))

	if !l.IsMuted(1, 42, now) {
		t.Fatal("member not muted before expiry")
	}
	if l.IsMuted(1, 42, now.Add(time.Minute)) {
		t.Fatal("member muted at expiry instant")
	}
	// The expired entry was evicted by the failed check.
	if l.Unmute(1, 42) {
		t.Error("Unmute found an entry after lazy eviction")
	}
}

func TestMuteLedger_UnmuteReportsExistence(t *testing.T) {
	l := NewMuteLedger()
	l.Mute(1, 42, time.Now().Add(time.Hour))

	if !l.Unmute(1, 42) {
		t.Fatal("Unmute of active mute reported no-op")
	}
	if l.Unmute(1, 42) {
		t.Fatal("second Unmute reported success")
	}
}

func TestMuteLedger_OverwriteExtends(t *testing.T) {
	l := NewMuteLedger()
	now := time.Now()

	l.Mute(1, 42, now.Add(time.Minute))
	l.Mute(1, 42, now.Add(time.Hour))

	if !l.IsMuted(1, 42, now.Add(30*time.Minute)) {
		t.Fatal("overwritten expiry not in effect")
	}
}

func TestMuteLedger_UnknownMember(t *testing.T) {
	l := NewMuteLedger()
	if l.IsMuted(1, 42, time.Now()) {
		t.Fatal("unknown member reported muted")
	}
}
