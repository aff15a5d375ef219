package moderation

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Roster is the platform query for a chat's current administrator IDs.
type Roster interface {
	ChatAdministrators(ctx context.Context, chatID int64) ([]int64, error)
}

// AdminRegistry holds the last-fetched administrator set per chat.
// Staleness is tolerated between refreshes; callers refresh explicitly.
// Safe for concurrent use.
type AdminRegistry struct {
	roster Roster
	group  singleflight.Group

	mu     sync.RWMutex
	admins map[int64]map[int64]struct{}
}

// NewAdminRegistry creates a registry backed by the given roster query.
func NewAdminRegistry(roster Roster) *AdminRegistry {
	return &AdminRegistry{
		roster: roster,
		admins: make(map[int64]map[int64]struct{}),
	}
}

// Refresh replaces the chat's admin set from the platform roster and returns
// the new count. On query failure the set is replaced with an empty one, so
// the pipeline moderates everyone instead of leaking bypass privilege.
// Concurrent refreshes for the same chat are coalesced into one query.
func (r *AdminRegistry) Refresh(ctx context.Context, chatID int64) (int, error) {
	v, err, _ := r.group.Do(strconv.FormatInt(chatID, 10), func() (interface{}, error) {
		ids, err := r.roster.ChatAdministrators(ctx, chatID)
		if err != nil {
			slog.Error("admin roster refresh failed, clearing admin set",
				"chat_id", chatID,
				"error", err,
			)
			r.replace(chatID, nil)
			return 0, err
		}

		r.replace(chatID, ids)
		slog.Info("admin roster refreshed", "chat_id", chatID, "admins", len(ids))
		return len(ids), nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

func (r *AdminRegistry) replace(chatID int64, ids []int64) {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	r.mu.Lock()
	r.admins[chatID] = set
	r.mu.Unlock()
}

// IsAdmin reports whether the member is in the chat's last-refreshed admin
// set. Unknown chats have no admins.
func (r *AdminRegistry) IsAdmin(chatID, memberID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.admins[chatID]
	if !ok {
		return false
	}
	_, ok = set[memberID]
	return ok
}

// Admins returns the chat's last-refreshed admin IDs.
func (r *AdminRegistry) Admins(chatID int64) []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.admins[chatID]))
	for id := range r.admins[chatID] {
		ids = append(ids, id)
	}
	return ids
}

// Forget drops the chat's admin set entirely. Called when the bot is
// removed from the chat.
func (r *AdminRegistry) Forget(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.admins, chatID)
}
