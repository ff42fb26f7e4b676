package database

import (
	"database/sql"
	"time"

	"github.com/edgard/slackchat/internal/slackts"
)

// Channel is a Slack channel whose events are recorded. Channels are
// provisioned out-of-band; events for unknown channels are ignored.
type Channel struct {
	ID        int64     `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	APIID string `db:"api_id"`
	Name  string `db:"name"`
}

// User is a Slack user seen as the author of a message or reply.
// Profile fields are filled by the profile sync task, never by event handling.
type User struct {
	ID        int64     `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	APIID           string       `db:"api_id"`
	FirstName       string       `db:"first_name"`
	LastName        string       `db:"last_name"`
	Title           string       `db:"title"`
	Image           string       `db:"image"`
	ProfileSyncedAt sql.NullTime `db:"profile_synced_at"`
}

// Message is a top-level channel message. Timestamp is unique across all channels.
type Message struct {
	ID        int64     `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	ChannelID int64             `db:"channel_id"`
	UserID    int64             `db:"user_id"`
	Timestamp slackts.Timestamp `db:"timestamp"`
	Text      string            `db:"text"`
}

// KeywordArgument is a "key: value" thread reply attached to a parent Message.
// It is unique on (message, user, timestamp).
type KeywordArgument struct {
	ID        int64     `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	MessageID int64             `db:"message_id"`
	UserID    int64             `db:"user_id"`
	Timestamp slackts.Timestamp `db:"timestamp"`
	Key       string            `db:"key"`
	Value     string            `db:"value"`
}

// EventReceipt records the outcome of a delivered Slack event id.
type EventReceipt struct {
	EventID    string `db:"event_id"`
	Outcome    string `db:"outcome"`
	ReceivedAt int64  `db:"received_at"`
}
