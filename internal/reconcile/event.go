// Package reconcile turns Slack message events into stored Messages and
// threaded KeywordArguments.
//
// An event flows through three steps: the Classifier reduces the loosely
// typed payload to one of NewMessage, EditedMessage, RemovedMessage or
// RemovedReply; the thread helpers decide whether it addresses a top-level
// message or a "key: value" reply; the Reconciler applies the resulting
// create, update or delete inside a single store transaction.
package reconcile

import (
	"encoding/json"

	errs "github.com/edgard/slackchat/internal/errors"
)

// Message event subtypes with special handling.
const (
	SubtypeMessageChanged = "message_changed"
	SubtypeMessageDeleted = "message_deleted"
)

// Event is the part of a Slack message event payload used for reconciliation.
type Event struct {
	Type            string         `json:"type"`
	Subtype         string         `json:"subtype,omitempty"`
	Channel         string         `json:"channel"`
	User            string         `json:"user,omitempty"`
	Text            string         `json:"text,omitempty"`
	TS              string         `json:"ts,omitempty"`
	ThreadTS        string         `json:"thread_ts,omitempty"`
	ParentUserID    string         `json:"parent_user_id,omitempty"`
	Message         *NestedMessage `json:"message,omitempty"`
	PreviousMessage *NestedMessage `json:"previous_message,omitempty"`
}

// NestedMessage is the "message" or "previous_message" object carried by
// edit and delete events.
type NestedMessage struct {
	User         string `json:"user,omitempty"`
	Text         string `json:"text,omitempty"`
	TS           string `json:"ts,omitempty"`
	ThreadTS     string `json:"thread_ts,omitempty"`
	ParentUserID string `json:"parent_user_id,omitempty"`
}

// DecodeEvent decodes a raw inner event.
func DecodeEvent(raw []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, errs.NewInvalidEventError("malformed message event", err)
	}
	return &ev, nil
}

func (m *NestedMessage) user() string {
	if m == nil {
		return ""
	}
	return m.User
}

func (m *NestedMessage) text() string {
	if m == nil {
		return ""
	}
	return m.Text
}

func (m *NestedMessage) ts() string {
	if m == nil {
		return ""
	}
	return m.TS
}

func (m *NestedMessage) threadTS() string {
	if m == nil {
		return ""
	}
	return m.ThreadTS
}

func (m *NestedMessage) parentUserID() string {
	if m == nil {
		return ""
	}
	return m.ParentUserID
}
