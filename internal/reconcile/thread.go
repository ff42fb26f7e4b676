package reconcile

import (
	"context"
	"errors"

	"github.com/edgard/slackchat/internal/database"
	errs "github.com/edgard/slackchat/internal/errors"
	"github.com/edgard/slackchat/internal/slackts"
)

// threadAnchor returns the timestamp of the message ev replies to, looking at
// the event itself, then the new message, then the previous message.
func threadAnchor(ev *Event) string {
	return firstNonEmpty(ev.ThreadTS, ev.Message.threadTS(), ev.PreviousMessage.threadTS())
}

// parentUser returns the author of the thread parent, looked up in the same
// order as threadAnchor.
func parentUser(ev *Event) string {
	return firstNonEmpty(ev.ParentUserID, ev.Message.parentUserID(), ev.PreviousMessage.parentUserID())
}

// isThreadedReply reports whether a posted or edited event is a reply in a
// thread. A thread anchor alone is not enough: thread roots carry their own
// timestamp as anchor but no parent author.
func isThreadedReply(ev *Event) (anchor string, ok bool) {
	anchor = threadAnchor(ev)
	if anchor == "" || parentUser(ev) == "" {
		return "", false
	}
	return anchor, true
}

// isRemovedReply reports whether a removal targets a threaded reply. The
// removed message is a reply when it carried a thread anchor other than its
// own timestamp.
func isRemovedReply(prev *NestedMessage) (anchor string, ok bool) {
	anchor = prev.threadTS()
	if anchor == "" || anchor == prev.ts() {
		return "", false
	}
	return anchor, true
}

// resolveParent loads the top-level message a reply is anchored to.
func resolveParent(ctx context.Context, q database.Queries, anchor slackts.Timestamp) (*database.Message, error) {
	parent, err := q.GetMessageByTimestamp(ctx, anchor)
	switch {
	case errors.Is(err, database.ErrNotFound):
		return nil, &errs.MessageNotFoundError{Timestamp: anchor.String()}
	case err != nil:
		return nil, errs.NewDatabaseError("failed to resolve thread parent", err)
	}
	return parent, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
