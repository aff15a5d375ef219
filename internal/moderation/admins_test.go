package moderation

import (
	"context"
	"errors"
	"testing"
)

// fakeRoster returns a canned admin list or error per chat.
type fakeRoster struct {
	admins map[int64][]int64
	err    error
	calls  int
}

func (f *fakeRoster) ChatAdministrators(_ context.Context, chatID int64) ([]int64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.admins[chatID], nil
}

func TestAdminRegistry_RefreshAndLookup(t *testing.T) {
	roster := &fakeRoster{admins: map[int64][]int64{1: {10, 20}}}
	r := NewAdminRegistry(roster)

	count, err := r.Refresh(context.Background(), 1)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if count != 2 {
		t.Fatalf("Refresh() count = %d, want 2", count)
	}

	if !r.IsAdmin(1, 10) || !r.IsAdmin(1, 20) {
		t.Error("refreshed admins not reported as admins")
	}
	if r.IsAdmin(1, 30) {
		t.Error("non-admin reported as admin")
	}
	if r.IsAdmin(2, 10) {
		t.Error("unknown chat reported an admin")
	}
}

func TestAdminRegistry_RefreshFailureFailsSafe(t *testing.T) {
	roster := &fakeRoster{admins: map[int64][]int64{1: {10}}}
	r := NewAdminRegistry(roster)

	if _, err := r.Refresh(context.Background(), 1); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	// Roster failure replaces the set with an empty one: even true admins
	// get moderated until the next successful refresh.
	roster.err = errors.New("api down")
	if _, err := r.Refresh(context.Background(), 1); err == nil {
		t.Fatal("Refresh() with failing roster returned nil error")
	}
	if r.IsAdmin(1, 10) {
		t.Error("admin privilege survived a failed refresh")
	}

	roster.err = nil
	if _, err := r.Refresh(context.Background(), 1); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if !r.IsAdmin(1, 10) {
		t.Error("admin not restored after successful refresh")
	}
}

func TestAdminRegistry_Forget(t *testing.T) {
	roster := &fakeRoster{admins: map[int64][]int64{1: {10}}}
	r := NewAdminRegistry(roster)

	if _, err := r.Refresh(context.Background(), 1); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	r.Forget(1)

	if r.IsAdmin(1, 10) {
		t.Error("admin survived Forget")
	}
	if got := r.Admins(1); len(got) != 0 {
		t.Errorf("Admins() after Forget = %v, want empty", got)
	}
}

func TestAdminRegistry_WholesaleReplace(t *testing.T) {
	roster := &fakeRoster{admins: map[int64][]int64{1: {10, 20}}}
	r := NewAdminRegistry(roster)

	if _, err := r.Refresh(context.Background(), 1); err != nil {
		t.Fatal(err)
	}

	roster.admins[1] = []int64{20, 30}
	if _, err := r.Refresh(context.Background(), 1); err != nil {
		t.Fatal(err)
	}

	if r.IsAdmin(1, 10) {
		t.Error("demoted admin still present after refresh")
	}
	if !r.IsAdmin(1, 30) {
		t.Error("newly promoted admin missing after refresh")
	}
}
