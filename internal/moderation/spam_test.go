package moderation

import (
	"testing"
	"time"
)

func TestRecordAndCheck_ThresholdBoundary(t *testing.T) {
	ledger := NewMuteLedger()
	d := NewSpamDetector(ledger)
	base := time.Now()

	// 10 messages inside the window: no escalation.
	for i := 0; i < 10; i++ {
		if d.RecordAndCheck(1, 42, base.Add(time.Duration(i)*time.Second)) {
			t.Fatalf("message %d escalated, want no escalation below threshold", i+1)
		}
	}

	// The 11th escalates.
	eleventh := base.Add(10 * time.Second)
	if !d.RecordAndCheck(1, 42, eleventh) {
		t.Fatal("11th message inside the window did not escalate")
	}

	// Mute lasts exactly 30 minutes from the escalating message.
	if !ledger.IsMuted(1, 42, eleventh.Add(30*time.Minute-time.Second)) {
		t.Error("member not muted just before expiry")
	}
	if ledger.IsMuted(1, 42, eleventh.Add(30*time.Minute)) {
		t.Error("member still muted at expiry instant")
	}
}

func TestRecordAndCheck_WindowClearedOnEscalation(t *testing.T) {
	d := NewSpamDetector(NewMuteLedger())
	base := time.Now()

	for i := 0; i < 11; i++ {
		d.RecordAndCheck(1, 42, base.Add(time.Duration(i)*time.Millisecond))
	}

	// After escalation the window is empty: the next message counts as #1
	// and ten more are needed before another escalation.
	after := base.Add(time.Second)
	for i := 0; i < 10; i++ {
		if d.RecordAndCheck(1, 42, after.Add(time.Duration(i)*time.Millisecond)) {
			t.Fatalf("message %d after escalation escalated again too early", i+1)
		}
	}
}

func TestRecordAndCheck_OldEntriesPruned(t *testing.T) {
	d := NewSpamDetector(NewMuteLedger())
	base := time.Now()

	// 10 messages, then wait for the window to pass: the next burst starts
	// fresh instead of escalating.
	for i := 0; i < 10; i++ {
		d.RecordAndCheck(1, 42, base.Add(time.Duration(i)*time.Second))
	}
	late := base.Add(90 * time.Second)
	if d.RecordAndCheck(1, 42, late) {
		t.Fatal("escalated although earlier messages fell out of the window")
	}
}

func TestRecordAndCheck_PerMemberIsolation(t *testing.T) {
	d := NewSpamDetector(NewMuteLedger())
	base := time.Now()

	for i := 0; i < 10; i++ {
		d.RecordAndCheck(1, 42, base)
		d.RecordAndCheck(2, 42, base) // same member, different chat
		d.RecordAndCheck(1, 43, base) // same chat, different member
	}
	if !d.RecordAndCheck(1, 42, base) {
		t.Fatal("11th message for (1,42) did not escalate")
	}
	// Other keys were not polluted by (1,42)'s window; their 11th message
	// is also their own threshold crossing.
	if !d.RecordAndCheck(2, 42, base) {
		t.Fatal("11th message for (2,42) did not escalate")
	}
	if !d.RecordAndCheck(1, 43, base) {
		t.Fatal("11th message for (1,43) did not escalate")
	}
}

func TestSetLimits_AppliedLive(t *testing.T) {
	ledger := NewMuteLedger()
	d := NewSpamDetector(ledger)
	d.SetLimits(10*time.Second, 2, 5*time.Minute)

	base := time.Now()
	d.RecordAndCheck(1, 42, base)
	d.RecordAndCheck(1, 42, base)
	if !d.RecordAndCheck(1, 42, base) {
		t.Fatal("3rd message did not escalate with threshold 2")
	}
	if !ledger.IsMuted(1, 42, base.Add(4*time.Minute)) {
		t.Error("custom mute duration not applied")
	}
	if ledger.IsMuted(1, 42, base.Add(6*time.Minute)) {
		t.Error("mute outlived custom duration")
	}
}

func TestSetLimits_ZeroKeepsDefaults(t *testing.T) {
	d := NewSpamDetector(NewMuteLedger())
	d.SetLimits(0, 0, 0)

	if got := d.MuteDuration(); got != DefaultMuteDuration {
		t.Errorf("MuteDuration() = %v, want default %v", got, DefaultMuteDuration)
	}
}

func TestClearHistory(t *testing.T) {
	d := NewSpamDetector(NewMuteLedger())
	base := time.Now()

	for i := 0; i < 10; i++ {
		d.RecordAndCheck(1, 42, base)
	}
	d.ClearHistory(1, 42)

	if d.RecordAndCheck(1, 42, base) {
		t.Fatal("escalated right after history was cleared")
	}
}
