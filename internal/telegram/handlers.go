package telegram

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mymmrac/telego"
)

// handleMessage processes one incoming Telegram message: membership events
// first, then commands, then group moderation via the sequencer.
func (c *Channel) handleMessage(ctx context.Context, message *telego.Message) {
	if len(message.NewChatMembers) > 0 {
		c.handleNewChatMembers(ctx, message)
		return
	}
	if message.LeftChatMember != nil {
		c.handleLeftChatMember(message)
		return
	}

	user := message.From
	if user == nil {
		slog.Debug("telegram message without sender skipped", "chat_id", message.Chat.ID)
		return
	}

	if strings.HasPrefix(message.Text, "/") {
		if handled := c.handleBotCommand(ctx, message); handled {
			return
		}
	}

	if !isGroupChat(message.Chat) {
		// Private chatter outside commands is ignored.
		return
	}

	if isServiceMessage(message) {
		slog.Debug("telegram service message skipped", "chat_id", message.Chat.ID)
		return
	}

	slog.Debug("group message queued",
		"chat_id", message.Chat.ID,
		"message_id", message.MessageID,
		"sender_id", user.ID,
	)

	c.sequencer.Submit(ctx, toModeration(message))
}

// handleNewChatMembers posts a short onboarding message when the bot itself
// is added to a group.
func (c *Channel) handleNewChatMembers(ctx context.Context, message *telego.Message) {
	selfID := c.selfID()
	for _, member := range message.NewChatMembers {
		if member.ID != selfID {
			continue
		}
		slog.Info("bot added to chat", "chat_id", message.Chat.ID)
		c.reply(ctx, message.Chat.ID,
			"GateKeep keeps this group admin-only: messages from regular "+
				"members are removed and reposted under their name.\n\n"+
				"To get started:\n"+
				"1. Grant the bot admin rights (delete + send messages)\n"+
				"2. Run /setup\n\n"+
				"See /help for all commands.")
		return
	}
}

// handleLeftChatMember forgets the chat's admin set when the bot itself is
// removed from the group.
func (c *Channel) handleLeftChatMember(message *telego.Message) {
	if message.LeftChatMember.ID != c.selfID() {
		return
	}
	c.admins.Forget(message.Chat.ID)
	slog.Info("bot removed from chat, admin set cleared", "chat_id", message.Chat.ID)
}

// reply sends a plain text message to the chat, logging on failure.
func (c *Channel) reply(ctx context.Context, chatID int64, text string) {
	if err := c.transport.SendText(ctx, chatID, text, 0); err != nil {
		slog.Warn("failed to send reply", "chat_id", chatID, "error", err)
	}
}
