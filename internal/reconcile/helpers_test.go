package reconcile

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/edgard/slackchat/internal/database"
	"github.com/edgard/slackchat/internal/markup"
)

const testChannel = "C024BE91L"

// testMarker wraps text so tests can tell marked from raw text.
var testMarker = markup.MarkerFunc(func(raw string) string { return "<p>" + raw + "</p>" })

func newTestStore(t *testing.T) database.Store {
	t.Helper()

	db, err := database.NewDB(database.Options{
		Driver: database.DriverSQLite,
		DSN:    "file:" + filepath.Join(t.TempDir(), "reconcile.db"),
	})
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db) })

	store := database.NewStore(db, nil)
	if _, err := store.CreateChannel(context.Background(), testChannel, "general"); err != nil {
		t.Fatalf("CreateChannel() error = %v", err)
	}
	return store
}

func newTestReconciler(t *testing.T) (*Reconciler, database.Store, *recordingObserver) {
	t.Helper()
	store := newTestStore(t)
	observer := &recordingObserver{}
	return New(store, testMarker, []string{"channel_join", "file_share"}, observer, nil), store, observer
}

func mustDecode(t *testing.T, raw string) *Event {
	t.Helper()
	ev, err := DecodeEvent([]byte(raw))
	if err != nil {
		t.Fatalf("DecodeEvent() error = %v", err)
	}
	return ev
}

func mustApply(t *testing.T, r *Reconciler, raw string) Outcome {
	t.Helper()
	outcome, err := r.Apply(context.Background(), "Ev0", mustDecode(t, raw))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	return outcome
}

func channelMessages(t *testing.T, store database.Store) []database.Message {
	t.Helper()
	ctx := context.Background()
	channel, err := store.GetChannel(ctx, testChannel)
	if err != nil {
		t.Fatalf("GetChannel() error = %v", err)
	}
	messages, err := store.ListMessages(ctx, channel, 100)
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	return messages
}

func messageReplies(t *testing.T, store database.Store, msg *database.Message) []database.KeywordArgument {
	t.Helper()
	kwargs, err := store.ListKeywordArguments(context.Background(), msg)
	if err != nil {
		t.Fatalf("ListKeywordArguments() error = %v", err)
	}
	return kwargs
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *recordingObserver) ObserveEvent(outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}
