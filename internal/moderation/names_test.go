package moderation

import "testing"

func TestNameCache_MemoizesFirstResolution(t *testing.T) {
	c := NewNameCache()

	first := c.Resolve(Sender{ID: 42, FirstName: "Ada", LastName: "Lovelace"})
	if first != "Ada Lovelace" {
		t.Fatalf("Resolve() = %q, want %q", first, "Ada Lovelace")
	}

	// A changed platform name does not invalidate the cached entry.
	second := c.Resolve(Sender{ID: 42, FirstName: "Renamed"})
	if second != "Ada Lovelace" {
		t.Errorf("Resolve() after rename = %q, want cached %q", second, "Ada Lovelace")
	}
}

func TestNameCache_PerMember(t *testing.T) {
	c := NewNameCache()
	c.Resolve(Sender{ID: 1, FirstName: "Ada"})

	if got := c.Resolve(Sender{ID: 2, FirstName: "Grace"}); got != "Grace" {
		t.Errorf("Resolve() = %q, want %q", got, "Grace")
	}
}
