package telegram

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"golang.org/x/time/rate"

	"github.com/nextlevelbuilder/gatekeep/internal/moderation"
)

// outboundPerSecond caps Bot API calls below Telegram's global ~30 msg/s
// limit. Delete+resend doubles the call count per moderated message, so the
// limiter keeps bursts of group traffic from tripping 429s.
const outboundPerSecond = 25

// transport implements moderation.Transport and moderation.Roster on top of
// the telego bot, with a shared outbound rate limiter.
type transport struct {
	bot     *telego.Bot
	limiter *rate.Limiter
}

func newTransport(bot *telego.Bot) *transport {
	return &transport{
		bot:     bot,
		limiter: rate.NewLimiter(rate.Limit(outboundPerSecond), outboundPerSecond),
	}
}

func (t *transport) wait(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}

func replyParams(replyTo int) *telego.ReplyParameters {
	if replyTo <= 0 {
		return nil
	}
	return &telego.ReplyParameters{MessageID: replyTo}
}

// DeleteMessage removes a message from a chat.
func (t *transport) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if err := t.wait(ctx); err != nil {
		return err
	}
	return t.bot.DeleteMessage(ctx, &telego.DeleteMessageParams{
		ChatID:    tu.ID(chatID),
		MessageID: messageID,
	})
}

// SendText posts a plain text message, optionally as a reply.
func (t *transport) SendText(ctx context.Context, chatID int64, text string, replyTo int) error {
	if err := t.wait(ctx); err != nil {
		return err
	}
	msg := tu.Message(tu.ID(chatID), text)
	msg.ReplyParameters = replyParams(replyTo)
	_, err := t.bot.SendMessage(ctx, msg)
	return err
}

// SendMedia reposts the message's media payload, shape-dependent on kind.
func (t *transport) SendMedia(ctx context.Context, msg *moderation.Message, caption string) error {
	if err := t.wait(ctx); err != nil {
		return err
	}

	chatID := tu.ID(msg.ChatID)
	reply := replyParams(msg.ReplyTo)
	file := telego.InputFile{FileID: msg.FileID}

	var err error
	switch msg.Kind {
	case moderation.KindSticker:
		_, err = t.bot.SendSticker(ctx, &telego.SendStickerParams{
			ChatID:          chatID,
			Sticker:         file,
			ReplyParameters: reply,
		})

	case moderation.KindPhoto:
		_, err = t.bot.SendPhoto(ctx, &telego.SendPhotoParams{
			ChatID:          chatID,
			Photo:           file,
			Caption:         caption,
			ReplyParameters: reply,
		})

	case moderation.KindVideo:
		_, err = t.bot.SendVideo(ctx, &telego.SendVideoParams{
			ChatID:          chatID,
			Video:           file,
			Caption:         caption,
			ReplyParameters: reply,
		})

	case moderation.KindVoice:
		_, err = t.bot.SendVoice(ctx, &telego.SendVoiceParams{
			ChatID:          chatID,
			Voice:           file,
			Caption:         caption,
			ReplyParameters: reply,
		})

	case moderation.KindVideoNote:
		_, err = t.bot.SendVideoNote(ctx, &telego.SendVideoNoteParams{
			ChatID:          chatID,
			VideoNote:       file,
			ReplyParameters: reply,
		})

	case moderation.KindDocument:
		_, err = t.bot.SendDocument(ctx, &telego.SendDocumentParams{
			ChatID:          chatID,
			Document:        file,
			Caption:         caption,
			ReplyParameters: reply,
		})

	case moderation.KindAudio:
		_, err = t.bot.SendAudio(ctx, &telego.SendAudioParams{
			ChatID:          chatID,
			Audio:           file,
			Caption:         caption,
			ReplyParameters: reply,
		})

	case moderation.KindAnimation:
		_, err = t.bot.SendAnimation(ctx, &telego.SendAnimationParams{
			ChatID:          chatID,
			Animation:       file,
			Caption:         caption,
			ReplyParameters: reply,
		})

	case moderation.KindContact:
		if msg.Contact == nil {
			return fmt.Errorf("contact payload missing")
		}
		_, err = t.bot.SendContact(ctx, &telego.SendContactParams{
			ChatID:          chatID,
			PhoneNumber:     msg.Contact.PhoneNumber,
			FirstName:       msg.Contact.FirstName,
			LastName:        msg.Contact.LastName,
			ReplyParameters: reply,
		})

	case moderation.KindLocation:
		if msg.Location == nil {
			return fmt.Errorf("location payload missing")
		}
		_, err = t.bot.SendLocation(ctx, &telego.SendLocationParams{
			ChatID:          chatID,
			Latitude:        msg.Location.Latitude,
			Longitude:       msg.Location.Longitude,
			ReplyParameters: reply,
		})

	case moderation.KindPoll:
		if msg.Poll == nil {
			return fmt.Errorf("poll payload missing")
		}
		options := make([]telego.InputPollOption, 0, len(msg.Poll.Options))
		for _, o := range msg.Poll.Options {
			options = append(options, telego.InputPollOption{Text: o})
		}
		anonymous := msg.Poll.Anonymous
		_, err = t.bot.SendPoll(ctx, &telego.SendPollParams{
			ChatID:          chatID,
			Question:        msg.Poll.Question,
			Options:         options,
			IsAnonymous:     &anonymous,
			ReplyParameters: reply,
		})

	default:
		return fmt.Errorf("unsupported media kind %q", msg.Kind)
	}

	return err
}

// ChatAdministrators fetches the IDs of members holding owner or
// administrator rank in the chat.
func (t *transport) ChatAdministrators(ctx context.Context, chatID int64) ([]int64, error) {
	if err := t.wait(ctx); err != nil {
		return nil, err
	}

	members, err := t.bot.GetChatAdministrators(ctx, &telego.GetChatAdministratorsParams{
		ChatID: tu.ID(chatID),
	})
	if err != nil {
		return nil, fmt.Errorf("get chat administrators: %w", err)
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		switch m.MemberStatus() {
		case telego.MemberStatusCreator, telego.MemberStatusAdministrator:
			ids = append(ids, m.MemberUser().ID)
		}
	}
	return ids, nil
}

// memberStatus returns the member's rank in the chat.
func (t *transport) memberStatus(ctx context.Context, chatID, memberID int64) (string, error) {
	if err := t.wait(ctx); err != nil {
		return "", err
	}

	member, err := t.bot.GetChatMember(ctx, &telego.GetChatMemberParams{
		ChatID: tu.ID(chatID),
		UserID: memberID,
	})
	if err != nil {
		return "", fmt.Errorf("get chat member: %w", err)
	}
	return member.MemberStatus(), nil
}

// memberLabel resolves a member's display label for /status output, best
// effort.
func (t *transport) memberLabel(ctx context.Context, chatID, memberID int64) string {
	if err := t.wait(ctx); err != nil {
		return fmt.Sprintf("member %d", memberID)
	}

	member, err := t.bot.GetChatMember(ctx, &telego.GetChatMemberParams{
		ChatID: tu.ID(chatID),
		UserID: memberID,
	})
	if err != nil {
		return fmt.Sprintf("member %d", memberID)
	}

	user := member.MemberUser()
	label := user.FirstName
	if label == "" {
		label = fmt.Sprintf("member %d", memberID)
	}
	if user.Username != "" {
		label += " (@" + user.Username + ")"
	}
	return label
}

// isElevated reports whether a rank grants admin privilege.
func isElevated(status string) bool {
	return status == telego.MemberStatusCreator || status == telego.MemberStatusAdministrator
}
