package reconcile

import (
	"context"
	"testing"

	errs "github.com/edgard/slackchat/internal/errors"
	"github.com/edgard/slackchat/internal/slackts"
)

func TestClassify(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	classifier := NewClassifier([]string{"channel_join", "file_share"})

	tests := []struct {
		name     string
		raw      string
		wantNil  bool
		wantCode string
		check    func(t *testing.T, got Classified)
	}{
		{
			name:    "unprovisioned channel",
			raw:     `{"type":"message","channel":"CUNKNOWN","user":"U1","ts":"1.000001","text":"hi"}`,
			wantNil: true,
		},
		{
			name:    "ignored subtype",
			raw:     `{"type":"message","subtype":"channel_join","channel":"C024BE91L","user":"U1","ts":"1.000001","text":"joined"}`,
			wantNil: true,
		},
		{
			name: "plain message",
			raw:  `{"type":"message","channel":"C024BE91L","user":"U1","ts":"1512085950.000216","text":"hello"}`,
			check: func(t *testing.T, got Classified) {
				msg, ok := got.(NewMessage)
				if !ok {
					t.Fatalf("got %T, want NewMessage", got)
				}
				if msg.UserID != "U1" || msg.Text != "hello" || msg.Threaded {
					t.Errorf("got %+v", msg.Posting)
				}
				if !msg.Timestamp.Equal(slackts.MustParse("1512085950.000216").Time) {
					t.Errorf("Timestamp = %v", msg.Timestamp)
				}
			},
		},
		{
			name: "threaded reply",
			raw:  `{"type":"message","channel":"C024BE91L","user":"U2","ts":"2.000002","text":"k: v","thread_ts":"1.000001","parent_user_id":"U1"}`,
			check: func(t *testing.T, got Classified) {
				msg, ok := got.(NewMessage)
				if !ok {
					t.Fatalf("got %T, want NewMessage", got)
				}
				if !msg.Threaded || msg.Anchor.String() != "1.000001" {
					t.Errorf("got %+v, want threaded reply anchored at 1.000001", msg.Posting)
				}
			},
		},
		{
			name: "thread anchor without parent author",
			raw:  `{"type":"message","channel":"C024BE91L","user":"U1","ts":"1.000001","text":"root","thread_ts":"1.000001"}`,
			check: func(t *testing.T, got Classified) {
				if msg, ok := got.(NewMessage); !ok || msg.Threaded {
					t.Errorf("got %+v, want top-level NewMessage", got)
				}
			},
		},
		{
			name: "edit reads previous message",
			raw: `{"type":"message","subtype":"message_changed","channel":"C024BE91L","ts":"9.000009",
				"message":{"user":"U1","ts":"1.000001","text":"new text"},
				"previous_message":{"user":"U1","ts":"1.000001","text":"old text"}}`,
			check: func(t *testing.T, got Classified) {
				msg, ok := got.(EditedMessage)
				if !ok {
					t.Fatalf("got %T, want EditedMessage", got)
				}
				if msg.UserID != "U1" || msg.Text != "new text" || msg.Timestamp.String() != "1.000001" {
					t.Errorf("got %+v", msg.Posting)
				}
			},
		},
		{
			name: "edit without new message text",
			raw: `{"type":"message","subtype":"message_changed","channel":"C024BE91L",
				"previous_message":{"user":"U1","ts":"1.000001","text":"old text"}}`,
			check: func(t *testing.T, got Classified) {
				if msg, ok := got.(EditedMessage); !ok || msg.Text != "" {
					t.Errorf("got %+v, want EditedMessage with empty text", got)
				}
			},
		},
		{
			name: "edited reply is threaded through nested message",
			raw: `{"type":"message","subtype":"message_changed","channel":"C024BE91L",
				"message":{"user":"U2","ts":"2.000002","text":"k: v2","thread_ts":"1.000001","parent_user_id":"U1"},
				"previous_message":{"user":"U2","ts":"2.000002","text":"k: v1","thread_ts":"1.000001","parent_user_id":"U1"}}`,
			check: func(t *testing.T, got Classified) {
				if msg, ok := got.(EditedMessage); !ok || !msg.Threaded || msg.Text != "k: v2" {
					t.Errorf("got %+v, want threaded EditedMessage", got)
				}
			},
		},
		{
			name: "removed message",
			raw: `{"type":"message","subtype":"message_deleted","channel":"C024BE91L","deleted_ts":"1.000001",
				"previous_message":{"user":"U1","ts":"1.000001","text":"hello"}}`,
			check: func(t *testing.T, got Classified) {
				msg, ok := got.(RemovedMessage)
				if !ok {
					t.Fatalf("got %T, want RemovedMessage", got)
				}
				if msg.UserID != "U1" || msg.Timestamp.String() != "1.000001" {
					t.Errorf("got %+v", msg)
				}
			},
		},
		{
			name: "removed thread root",
			raw: `{"type":"message","subtype":"message_deleted","channel":"C024BE91L",
				"previous_message":{"user":"U1","ts":"1.000001","text":"root","thread_ts":"1.000001"}}`,
			check: func(t *testing.T, got Classified) {
				if _, ok := got.(RemovedMessage); !ok {
					t.Errorf("got %T, want RemovedMessage", got)
				}
			},
		},
		{
			name: "removed reply",
			raw: `{"type":"message","subtype":"message_deleted","channel":"C024BE91L","ts":"9.000009",
				"previous_message":{"user":"U2","ts":"2.000002","text":"k: v","thread_ts":"1.000001","parent_user_id":"U1"}}`,
			check: func(t *testing.T, got Classified) {
				reply, ok := got.(RemovedReply)
				if !ok {
					t.Fatalf("got %T, want RemovedReply", got)
				}
				if reply.Timestamp.String() != "2.000002" || reply.Anchor.String() != "1.000001" || reply.Text != "k: v" {
					t.Errorf("got %+v", reply)
				}
			},
		},
		{
			name:     "missing user",
			raw:      `{"type":"message","channel":"C024BE91L","ts":"1.000001","text":"hi"}`,
			wantCode: errs.CodeInvalidEvent,
		},
		{
			name:     "invalid timestamp",
			raw:      `{"type":"message","channel":"C024BE91L","user":"U1","ts":"yesterday","text":"hi"}`,
			wantCode: errs.CodeInvalidEvent,
		},
		{
			name:     "removal without previous message",
			raw:      `{"type":"message","subtype":"message_deleted","channel":"C024BE91L"}`,
			wantCode: errs.CodeInvalidEvent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := classifier.Classify(context.Background(), store, mustDecode(t, tt.raw))
			if tt.wantCode != "" {
				if code := errs.Code(err); code != tt.wantCode {
					t.Fatalf("Classify() error = %v (code %s), want code %s", err, code, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if tt.wantNil {
				if got != nil {
					t.Fatalf("Classify() = %+v, want nil", got)
				}
				return
			}
			tt.check(t, got)
		})
	}
}

func TestDecodeEventMalformed(t *testing.T) {
	t.Parallel()

	if _, err := DecodeEvent([]byte(`{"type":`)); errs.Code(err) != errs.CodeInvalidEvent {
		t.Errorf("DecodeEvent() error = %v, want INVALID_EVENT", err)
	}
}
