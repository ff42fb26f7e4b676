package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/edgard/slackchat/internal/database"
	errs "github.com/edgard/slackchat/internal/errors"
	"github.com/edgard/slackchat/internal/slackts"
)

// Classified is one of NewMessage, EditedMessage, RemovedMessage or RemovedReply.
type Classified interface {
	kind() string
}

// Posting is the content shared by new and edited messages.
type Posting struct {
	Channel   *database.Channel
	UserID    string
	Timestamp slackts.Timestamp
	Text      string

	// Threaded postings are replies; Anchor is the parent message timestamp.
	Threaded bool
	Anchor   slackts.Timestamp
}

// NewMessage is a message posted to a channel or thread.
type NewMessage struct {
	Posting
}

// EditedMessage is a message whose text was changed. Its actor and
// timestamp come from the message as it was before the edit.
type EditedMessage struct {
	Posting
}

// RemovedMessage is a deleted top-level message.
type RemovedMessage struct {
	Channel   *database.Channel
	UserID    string
	Timestamp slackts.Timestamp
}

// RemovedReply is a deleted thread reply, described by the message as it
// was before deletion.
type RemovedReply struct {
	Channel   *database.Channel
	UserID    string
	Timestamp slackts.Timestamp
	Text      string
	Anchor    slackts.Timestamp
}

func (NewMessage) kind() string     { return "new_message" }
func (EditedMessage) kind() string  { return "edited_message" }
func (RemovedMessage) kind() string { return "removed_message" }
func (RemovedReply) kind() string   { return "removed_reply" }

// Classifier reduces raw events to a Classified value.
type Classifier struct {
	ignored map[string]struct{}
}

// NewClassifier returns a Classifier that drops events with any of the
// ignored subtypes.
func NewClassifier(ignoredSubtypes []string) *Classifier {
	ignored := make(map[string]struct{}, len(ignoredSubtypes))
	for _, subtype := range ignoredSubtypes {
		ignored[subtype] = struct{}{}
	}
	return &Classifier{ignored: ignored}
}

// Classify returns nil, nil for events that are intentionally dropped:
// events for unprovisioned channels and events with an ignored subtype.
// The only store access is the channel lookup.
func (c *Classifier) Classify(ctx context.Context, q database.Queries, ev *Event) (Classified, error) {
	if ev == nil {
		return nil, errs.NewInvalidEventError("empty event", nil)
	}

	channel, err := q.GetChannel(ctx, ev.Channel)
	switch {
	case errors.Is(err, database.ErrNotFound):
		return nil, nil
	case err != nil:
		return nil, errs.NewDatabaseError("failed to look up channel", err)
	}

	if _, skip := c.ignored[ev.Subtype]; skip {
		return nil, nil
	}

	switch ev.Subtype {
	case SubtypeMessageDeleted:
		return classifyRemoval(channel, ev)
	case SubtypeMessageChanged:
		posting, err := newPosting(channel, ev,
			ev.PreviousMessage.user(), ev.PreviousMessage.ts(), ev.Message.text())
		if err != nil {
			return nil, err
		}
		return EditedMessage{posting}, nil
	default:
		posting, err := newPosting(channel, ev, ev.User, ev.TS, ev.Text)
		if err != nil {
			return nil, err
		}
		return NewMessage{posting}, nil
	}
}

func newPosting(channel *database.Channel, ev *Event, userID, ts, text string) (Posting, error) {
	if userID == "" {
		return Posting{}, errs.NewInvalidEventError(fmt.Sprintf("message %q has no user", ts), nil)
	}
	timestamp, err := parseTimestamp("ts", ts)
	if err != nil {
		return Posting{}, err
	}

	posting := Posting{
		Channel:   channel,
		UserID:    userID,
		Timestamp: timestamp,
		Text:      text,
	}

	if anchor, ok := isThreadedReply(ev); ok {
		posting.Anchor, err = parseTimestamp("thread_ts", anchor)
		if err != nil {
			return Posting{}, err
		}
		posting.Threaded = true
	}
	return posting, nil
}

func classifyRemoval(channel *database.Channel, ev *Event) (Classified, error) {
	prev := ev.PreviousMessage
	if prev.user() == "" {
		return nil, errs.NewInvalidEventError("removal has no previous message user", nil)
	}
	timestamp, err := parseTimestamp("previous_message.ts", prev.ts())
	if err != nil {
		return nil, err
	}

	anchor, threaded := isRemovedReply(prev)
	if !threaded {
		return RemovedMessage{Channel: channel, UserID: prev.User, Timestamp: timestamp}, nil
	}

	anchorTS, err := parseTimestamp("previous_message.thread_ts", anchor)
	if err != nil {
		return nil, err
	}
	return RemovedReply{
		Channel:   channel,
		UserID:    prev.User,
		Timestamp: timestamp,
		Text:      prev.Text,
		Anchor:    anchorTS,
	}, nil
}

func parseTimestamp(field, value string) (slackts.Timestamp, error) {
	ts, err := slackts.Parse(value)
	if err != nil {
		return slackts.Timestamp{}, errs.NewInvalidEventError(fmt.Sprintf("invalid %s", field), err)
	}
	return ts, nil
}
