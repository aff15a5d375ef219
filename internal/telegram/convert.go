package telegram

import (
	"github.com/mymmrac/telego"

	"github.com/nextlevelbuilder/gatekeep/internal/moderation"
)

// toModeration reduces a Telegram message to the pipeline's message model,
// tagging its media kind. Unknown payloads get KindUnknown and are left in
// place by the pipeline.
func toModeration(msg *telego.Message) *moderation.Message {
	m := &moderation.Message{
		ChatID:    msg.Chat.ID,
		MessageID: msg.MessageID,
		Kind:      moderation.KindUnknown,
	}
	if msg.From != nil {
		m.Sender = moderation.Sender{
			ID:        msg.From.ID,
			FirstName: msg.From.FirstName,
			LastName:  msg.From.LastName,
		}
	}
	if msg.ReplyToMessage != nil {
		m.ReplyTo = msg.ReplyToMessage.MessageID
	}

	switch {
	case msg.Text != "":
		m.Kind = moderation.KindText
		m.Text = msg.Text

	case msg.Sticker != nil:
		m.Kind = moderation.KindSticker
		m.FileID = msg.Sticker.FileID

	case len(msg.Photo) > 0:
		// Telegram lists photo sizes smallest first; repost the largest.
		m.Kind = moderation.KindPhoto
		m.FileID = msg.Photo[len(msg.Photo)-1].FileID

	case msg.Video != nil:
		m.Kind = moderation.KindVideo
		m.FileID = msg.Video.FileID

	case msg.Voice != nil:
		m.Kind = moderation.KindVoice
		m.FileID = msg.Voice.FileID

	case msg.VideoNote != nil:
		m.Kind = moderation.KindVideoNote
		m.FileID = msg.VideoNote.FileID

	case msg.Document != nil:
		m.Kind = moderation.KindDocument
		m.FileID = msg.Document.FileID

	case msg.Audio != nil:
		m.Kind = moderation.KindAudio
		m.FileID = msg.Audio.FileID

	case msg.Animation != nil:
		m.Kind = moderation.KindAnimation
		m.FileID = msg.Animation.FileID

	case msg.Contact != nil:
		m.Kind = moderation.KindContact
		m.Contact = &moderation.Contact{
			PhoneNumber: msg.Contact.PhoneNumber,
			FirstName:   msg.Contact.FirstName,
			LastName:    msg.Contact.LastName,
		}

	case msg.Location != nil:
		m.Kind = moderation.KindLocation
		m.Location = &moderation.Location{
			Latitude:  msg.Location.Latitude,
			Longitude: msg.Location.Longitude,
		}

	case msg.Poll != nil:
		m.Kind = moderation.KindPoll
		poll := &moderation.Poll{
			Question:  msg.Poll.Question,
			Anonymous: msg.Poll.IsAnonymous,
		}
		for _, o := range msg.Poll.Options {
			poll.Options = append(poll.Options, o.Text)
		}
		m.Poll = poll
	}

	return m
}

// isServiceMessage returns true if the Telegram message is a service/system
// message (member added/removed, title changed, pinned, etc.) rather than a
// user-sent message.
func isServiceMessage(msg *telego.Message) bool {
	if msg.Text != "" || msg.Caption != "" {
		return false
	}

	if msg.Photo != nil || msg.Audio != nil || msg.Video != nil ||
		msg.Document != nil || msg.Voice != nil || msg.VideoNote != nil ||
		msg.Sticker != nil || msg.Animation != nil || msg.Contact != nil ||
		msg.Location != nil || msg.Venue != nil || msg.Poll != nil {
		return false
	}

	return true
}
