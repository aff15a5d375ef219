package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mymmrac/telego"
)

// parseCommand extracts the lowercase command from a message text,
// stripping arguments and any @botname suffix.
func parseCommand(text string) string {
	cmd := strings.SplitN(text, " ", 2)[0]
	cmd = strings.SplitN(cmd, "@", 2)[0]
	return strings.ToLower(cmd)
}

// handleBotCommand checks if the message is a known bot command and handles
// it. Returns true if the message was handled as a command.
func (c *Channel) handleBotCommand(ctx context.Context, message *telego.Message) bool {
	cmd := parseCommand(message.Text)
	chatID := message.Chat.ID
	isGroup := isGroupChat(message.Chat)

	switch cmd {
	case "/start":
		if isGroup {
			c.reply(ctx, chatID, "GateKeep is active.\n\nSee /help for commands, /setup to enable moderation.")
		} else {
			c.reply(ctx, chatID,
				"GateKeep moderates groups where only admins may post: messages "+
					"from regular members are deleted and reposted under their name, "+
					"and high-frequency senders are muted.\n\n"+
					"To use it:\n"+
					"1. Add the bot to your group\n"+
					"2. Grant it admin rights\n"+
					"3. Run /setup in the group\n\n"+
					"See /help for all commands.")
		}
		return true

	case "/help":
		c.reply(ctx, chatID,
			"Available commands:\n"+
				"/setup — Enable moderation in this group\n"+
				"/status — Show bot status and admin list\n"+
				"/refresh_admins — Re-fetch the admin list\n"+
				"/unmute — Lift a spam mute (reply to the member's message)\n"+
				"/spam_mode — Toggle spam muting for admins\n"+
				"/help — Show this help message\n\n"+
				"Regular members' messages are removed and reposted under their "+
				"name. More than 10 messages in 60 seconds earns a 30-minute mute.")
		return true

	case "/setup":
		c.handleSetup(ctx, message)
		return true

	case "/status":
		c.handleStatus(ctx, message)
		return true

	case "/refresh_admins":
		c.handleRefreshAdmins(ctx, message)
		return true

	case "/unmute":
		c.handleUnmute(ctx, message)
		return true

	case "/spam_mode":
		c.handleSpamMode(ctx, message)
		return true
	}

	return false
}

// requireGroup replies with a rejection when the command was issued outside
// a group. Returns true when the chat is a group.
func (c *Channel) requireGroup(ctx context.Context, message *telego.Message) bool {
	if isGroupChat(message.Chat) {
		return true
	}
	c.reply(ctx, message.Chat.ID, "This command only works in group chats.")
	return false
}

// requireLiveAdmin checks the invoker's rank against the live platform
// roster. Used by setup-style commands so they work before the first
// refresh.
func (c *Channel) requireLiveAdmin(ctx context.Context, message *telego.Message) bool {
	status, err := c.transport.memberStatus(ctx, message.Chat.ID, message.From.ID)
	if err != nil {
		slog.Error("failed to check invoker rank", "chat_id", message.Chat.ID, "user_id", message.From.ID, "error", err)
		c.reply(ctx, message.Chat.ID, "Could not verify your permissions. Please try again.")
		return false
	}
	if !isElevated(status) {
		c.reply(ctx, message.Chat.ID, "Only group admins can use this command.")
		return false
	}
	return true
}

// requireRegisteredAdmin checks the invoker against the last-refreshed
// admin set.
func (c *Channel) requireRegisteredAdmin(ctx context.Context, message *telego.Message) bool {
	if c.admins.IsAdmin(message.Chat.ID, message.From.ID) {
		return true
	}
	c.reply(ctx, message.Chat.ID, "Only group admins can use this command.")
	return false
}

// handleSetup enables moderation: it verifies the invoker and the bot both
// hold admin rank, then populates the admin registry.
func (c *Channel) handleSetup(ctx context.Context, message *telego.Message) {
	chatID := message.Chat.ID
	slog.Info("setup requested", "chat_id", chatID, "user_id", message.From.ID)

	if !c.requireGroup(ctx, message) || !c.requireLiveAdmin(ctx, message) {
		return
	}

	botStatus, err := c.transport.memberStatus(ctx, chatID, c.selfID())
	if err != nil {
		slog.Error("failed to check bot rank", "chat_id", chatID, "error", err)
		c.reply(ctx, chatID, "Could not verify the bot's permissions. Please try again.")
		return
	}
	if !isElevated(botStatus) {
		c.reply(ctx, chatID,
			"The bot needs admin rights to delete messages.\n\n"+
				"Grant it admin with these permissions and run /setup again:\n"+
				"- Delete messages\n"+
				"- Send messages")
		return
	}

	count, err := c.admins.Refresh(ctx, chatID)
	if err != nil {
		c.reply(ctx, chatID, "Setup failed while fetching the admin list. Please try again.")
		return
	}

	c.reply(ctx, chatID, fmt.Sprintf(
		"Setup complete. %d admins registered.\n\n"+
			"Messages from regular members will now be removed and reposted "+
			"under their name.\n\n"+
			"Check /status any time, or /refresh_admins after admin changes.", count))
}

// handleStatus reports the registered admin list and spam mode state.
func (c *Channel) handleStatus(ctx context.Context, message *telego.Message) {
	chatID := message.Chat.ID

	if !c.requireGroup(ctx, message) || !c.requireLiveAdmin(ctx, message) {
		return
	}

	ids := c.admins.Admins(chatID)
	if len(ids) == 0 {
		c.reply(ctx, chatID, "The admin list is empty. Run /setup or /refresh_admins first.")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "GateKeep is active.\n\nAdmins (%d):\n", len(ids))
	for _, id := range ids {
		fmt.Fprintf(&sb, "- %s\n", c.transport.memberLabel(ctx, chatID, id))
	}
	if c.pipeline.SpamModeEnabled(chatID) {
		sb.WriteString("\nSpam muting for admins: on")
	} else {
		sb.WriteString("\nSpam muting for admins: off")
	}
	c.reply(ctx, chatID, sb.String())
}

// handleRefreshAdmins re-fetches the chat's admin roster.
func (c *Channel) handleRefreshAdmins(ctx context.Context, message *telego.Message) {
	chatID := message.Chat.ID

	if !c.requireGroup(ctx, message) || !c.requireLiveAdmin(ctx, message) {
		return
	}

	oldCount := len(c.admins.Admins(chatID))
	newCount, err := c.admins.Refresh(ctx, chatID)
	if err != nil {
		c.reply(ctx, chatID, "Failed to refresh the admin list. Please try again.")
		return
	}

	c.reply(ctx, chatID, fmt.Sprintf("Admin list refreshed: %d before, %d now.", oldCount, newCount))
}

// handleUnmute lifts a spam mute. The target member is identified by
// replying to one of their messages.
func (c *Channel) handleUnmute(ctx context.Context, message *telego.Message) {
	chatID := message.Chat.ID

	if !c.requireGroup(ctx, message) || !c.requireRegisteredAdmin(ctx, message) {
		return
	}

	if message.ReplyToMessage == nil || message.ReplyToMessage.From == nil {
		c.reply(ctx, chatID, "Reply to a message from the muted member, then send /unmute.")
		return
	}

	target := message.ReplyToMessage.From
	name := target.FirstName
	if name == "" {
		name = "Member"
	}

	if !c.mutes.Unmute(chatID, target.ID) {
		c.reply(ctx, chatID, fmt.Sprintf("%s is not muted.", name))
		return
	}

	c.spam.ClearHistory(chatID, target.ID)
	slog.Info("member unmuted",
		"chat_id", chatID,
		"member_id", target.ID,
		"by", message.From.ID,
	)
	c.reply(ctx, chatID, fmt.Sprintf("%s was unmuted.", name))
}

// handleSpamMode toggles whether admins are subject to spam muting.
func (c *Channel) handleSpamMode(ctx context.Context, message *telego.Message) {
	chatID := message.Chat.ID

	if !c.requireGroup(ctx, message) || !c.requireRegisteredAdmin(ctx, message) {
		return
	}

	enabled := c.pipeline.ToggleSpamMode(chatID)
	slog.Info("spam mode toggled", "chat_id", chatID, "enabled", enabled, "by", message.From.ID)

	if enabled {
		c.reply(ctx, chatID, "Spam muting for admins is now on: admins who spam will be muted too.")
	} else {
		c.reply(ctx, chatID, "Spam muting for admins is now off: only regular members are spam-muted.")
	}
}

// SyncMenuCommands registers bot commands with Telegram via setMyCommands.
func (c *Channel) SyncMenuCommands(ctx context.Context, commands []telego.BotCommand) error {
	if err := c.bot.DeleteMyCommands(ctx, nil); err != nil {
		slog.Debug("deleteMyCommands failed (may not exist)", "error", err)
	}

	if len(commands) == 0 {
		return nil
	}

	return c.bot.SetMyCommands(ctx, &telego.SetMyCommandsParams{
		Commands: commands,
	})
}

// DefaultMenuCommands returns the default bot menu commands.
func DefaultMenuCommands() []telego.BotCommand {
	return []telego.BotCommand{
		{Command: "start", Description: "What this bot does"},
		{Command: "help", Description: "Show available commands"},
		{Command: "setup", Description: "Enable moderation in this group"},
		{Command: "status", Description: "Show bot status and admins"},
		{Command: "refresh_admins", Description: "Re-fetch the admin list"},
		{Command: "unmute", Description: "Lift a mute (reply to the member)"},
		{Command: "spam_mode", Description: "Toggle spam muting for admins"},
	}
}
