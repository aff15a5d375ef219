package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Transport is the platform surface the pipeline drives. Implementations
// must be safe for concurrent use across chat workers.
type Transport interface {
	// DeleteMessage removes a message from a chat.
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error

	// SendText posts a plain text message, optionally as a reply
	// (replyTo = 0 means no reply linkage).
	SendText(ctx context.Context, chatID int64, text string, replyTo int) error

	// SendMedia reposts the message's media payload. caption carries the
	// attribution line for kinds that support captions and is empty
	// otherwise.
	SendMedia(ctx context.Context, msg *Message, caption string) error
}

// Pipeline is the per-message decision procedure run by a chat worker:
// self-check, admin bypass, mute check, spam check, then delete-and-repost
// attributed to the sender's display name.
type Pipeline struct {
	transport Transport
	admins    *AdminRegistry
	mutes     *MuteLedger
	spam      *SpamDetector
	names     *NameCache
	now       func() time.Time

	selfMu sync.RWMutex
	selfID int64

	modeMu   sync.Mutex
	spamMode map[int64]bool // chatID → spam checks apply to admins too
}

// NewPipeline wires the pipeline's collaborators together.
func NewPipeline(transport Transport, admins *AdminRegistry, mutes *MuteLedger, spam *SpamDetector, names *NameCache) *Pipeline {
	return &Pipeline{
		transport: transport,
		admins:    admins,
		mutes:     mutes,
		spam:      spam,
		names:     names,
		now:       time.Now,
		spamMode:  make(map[int64]bool),
	}
}

// SetSelfID records the moderating account's own identifier so its messages
// are never moderated.
func (p *Pipeline) SetSelfID(id int64) {
	p.selfMu.Lock()
	p.selfID = id
	p.selfMu.Unlock()
}

func (p *Pipeline) isSelf(id int64) bool {
	p.selfMu.RLock()
	defer p.selfMu.RUnlock()
	return p.selfID != 0 && id == p.selfID
}

// ToggleSpamMode flips whether admins are subject to spam muting in the
// chat and returns the new state.
func (p *Pipeline) ToggleSpamMode(chatID int64) bool {
	p.modeMu.Lock()
	defer p.modeMu.Unlock()
	p.spamMode[chatID] = !p.spamMode[chatID]
	return p.spamMode[chatID]
}

// SpamModeEnabled reports whether admins are subject to spam muting in the
// chat. Default false.
func (p *Pipeline) SpamModeEnabled(chatID int64) bool {
	p.modeMu.Lock()
	defer p.modeMu.Unlock()
	return p.spamMode[chatID]
}

// Process moderates a single message. Platform failures are returned for
// the sequencer to log; they never abort the chat's drain loop.
func (p *Pipeline) Process(ctx context.Context, msg *Message) error {
	if p.isSelf(msg.Sender.ID) {
		return nil
	}

	isAdmin := p.admins.IsAdmin(msg.ChatID, msg.Sender.ID)
	bypassSpamCheck := isAdmin && !p.SpamModeEnabled(msg.ChatID)

	if !bypassSpamCheck {
		now := p.now()

		if p.mutes.IsMuted(msg.ChatID, msg.Sender.ID, now) {
			if err := p.transport.DeleteMessage(ctx, msg.ChatID, msg.MessageID); err != nil {
				return fmt.Errorf("delete muted member message: %w", err)
			}
			slog.Info("deleted message from muted member",
				"chat_id", msg.ChatID,
				"member_id", msg.Sender.ID,
			)
			return nil
		}

		if p.spam.RecordAndCheck(msg.ChatID, msg.Sender.ID, now) {
			if err := p.transport.DeleteMessage(ctx, msg.ChatID, msg.MessageID); err != nil {
				return fmt.Errorf("delete spamming member message: %w", err)
			}
			p.announceMute(ctx, msg, isAdmin)
			return nil
		}
	}

	// Admins bypass everything: their messages stay untouched.
	if isAdmin {
		return nil
	}

	return p.repost(ctx, msg)
}

// announceMute posts the role-aware mute notification. A send failure here
// is only logged: the mute itself already took effect.
func (p *Pipeline) announceMute(ctx context.Context, msg *Message, isAdmin bool) {
	role := "Member"
	if isAdmin {
		role = "Admin"
	}
	minutes := int(p.spam.MuteDuration() / time.Minute)
	text := fmt.Sprintf("%s %s was muted for %d minutes for spamming.",
		role, p.names.Resolve(msg.Sender), minutes)

	if err := p.transport.SendText(ctx, msg.ChatID, text, 0); err != nil {
		slog.Error("failed to announce mute",
			"chat_id", msg.ChatID,
			"member_id", msg.Sender.ID,
			"error", err,
		)
	}
}

// repost deletes the original message and re-sends its content attributed
// to the sender, preserving reply linkage. Deletion always comes first; if
// the resend fails afterwards the content is lost and only logged.
func (p *Pipeline) repost(ctx context.Context, msg *Message) error {
	if !msg.Kind.Known() {
		// Payload we cannot faithfully rebuild: leave it in place.
		slog.Warn("unsupported media kind, message left in place",
			"chat_id", msg.ChatID,
			"message_id", msg.MessageID,
			"kind", msg.Kind,
		)
		return nil
	}

	name := p.names.Resolve(msg.Sender)

	if err := p.transport.DeleteMessage(ctx, msg.ChatID, msg.MessageID); err != nil {
		return fmt.Errorf("delete original message: %w", err)
	}

	var err error
	switch {
	case msg.Kind == KindText:
		err = p.transport.SendText(ctx, msg.ChatID, name+":\n"+msg.Text, msg.ReplyTo)

	case msg.Kind.SupportsCaption():
		err = p.transport.SendMedia(ctx, msg, name+":")

	default:
		// No native caption support: name line first, then the raw media.
		if err = p.transport.SendText(ctx, msg.ChatID, name+":", msg.ReplyTo); err == nil {
			err = p.transport.SendMedia(ctx, msg, "")
		}
	}
	if err != nil {
		// Original is already gone; nothing to compensate with.
		return fmt.Errorf("resend after delete (content lost): %w", err)
	}

	slog.Debug("message reposted",
		"chat_id", msg.ChatID,
		"message_id", msg.MessageID,
		"kind", msg.Kind,
		"sender", name,
	)
	return nil
}
