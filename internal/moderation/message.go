// Package moderation implements the per-chat moderation engine: an ordered
// message sequencer, a sliding-window spam detector with a mute ledger, an
// admin registry, and the delete-and-repost pipeline that ties them together.
//
// The package is platform-agnostic: all Telegram specifics live behind the
// Transport and Roster interfaces implemented by internal/telegram.
package moderation

import "strings"

// Kind tags the media payload of an inbound message.
type Kind string

const (
	KindText      Kind = "text"
	KindSticker   Kind = "sticker"
	KindPhoto     Kind = "photo"
	KindVideo     Kind = "video"
	KindVoice     Kind = "voice"
	KindVideoNote Kind = "video_note"
	KindDocument  Kind = "document"
	KindAudio     Kind = "audio"
	KindAnimation Kind = "animation"
	KindContact   Kind = "contact"
	KindLocation  Kind = "location"
	KindPoll      Kind = "poll"
	KindUnknown   Kind = "unknown"
)

// kindSpec describes how a media kind is reposted.
type kindSpec struct {
	supportsCaption bool
}

// kindTable maps every known kind to its resend shape. Kinds that cannot
// carry a caption are reposted as two messages: a name line, then the media.
var kindTable = map[Kind]kindSpec{
	KindText:      {supportsCaption: false},
	KindSticker:   {supportsCaption: false},
	KindPhoto:     {supportsCaption: true},
	KindVideo:     {supportsCaption: true},
	KindVoice:     {supportsCaption: true},
	KindVideoNote: {supportsCaption: false},
	KindDocument:  {supportsCaption: true},
	KindAudio:     {supportsCaption: true},
	KindAnimation: {supportsCaption: true},
	KindContact:   {supportsCaption: false},
	KindLocation:  {supportsCaption: false},
	KindPoll:      {supportsCaption: false},
}

// Known reports whether the pipeline knows how to repost this kind.
func (k Kind) Known() bool {
	_, ok := kindTable[k]
	return ok
}

// SupportsCaption reports whether the kind can carry an attribution caption.
func (k Kind) SupportsCaption() bool {
	return kindTable[k].supportsCaption
}

// Sender identifies the account that sent a message.
type Sender struct {
	ID        int64
	FirstName string
	LastName  string
}

// Contact is a shared contact card payload.
type Contact struct {
	PhoneNumber string
	FirstName   string
	LastName    string
}

// Location is a shared map point payload.
type Location struct {
	Latitude  float64
	Longitude float64
}

// Poll is a poll payload, rebuilt from scratch on repost (polls have no
// file ID to reference).
type Poll struct {
	Question  string
	Options   []string
	Anonymous bool
}

// Message is a platform message reduced to what the pipeline needs.
// Exactly one of Text, FileID, Contact, Location, Poll is meaningful,
// selected by Kind.
type Message struct {
	ChatID    int64
	MessageID int
	Sender    Sender
	ReplyTo   int // message ID the original replied to, 0 = none
	Kind      Kind
	Text      string
	FileID    string
	Contact   *Contact
	Location  *Location
	Poll      *Poll
}

// DisplayName builds the sender's human-readable name the way reposts
// attribute it: first name plus last name, with a generic fallback.
func (s Sender) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(s.FirstName) + " " + strings.TrimSpace(s.LastName))
	if name == "" {
		return "Member"
	}
	return name
}
