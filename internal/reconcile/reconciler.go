package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/edgard/slackchat/internal/database"
	errs "github.com/edgard/slackchat/internal/errors"
	"github.com/edgard/slackchat/internal/markup"
)

// Outcome names what applying an event did.
type Outcome string

// Possible outcomes of Apply.
const (
	OutcomeIgnored        Outcome = "ignored"
	OutcomeMessageCreated Outcome = "message_created"
	OutcomeMessageUpdated Outcome = "message_updated"
	OutcomeMessageDeleted Outcome = "message_deleted"
	OutcomeReplyCreated   Outcome = "reply_created"
	OutcomeReplyUpdated   Outcome = "reply_updated"
	OutcomeReplyDeleted   Outcome = "reply_deleted"
	OutcomeRejected       Outcome = "rejected"
	OutcomeFailed         Outcome = "failed"
)

// Observer receives one observation per applied event.
type Observer interface {
	ObserveEvent(outcome string, d time.Duration)
}

// Reconciler applies classified events to the record store. It keeps no
// state between events and is safe for concurrent use.
type Reconciler struct {
	store      database.Store
	classifier *Classifier
	marker     markup.Marker
	observer   Observer
	logger     *slog.Logger
}

// New creates a Reconciler. marker renders top-level message text; observer
// may be nil.
func New(store database.Store, marker markup.Marker, ignoredSubtypes []string, observer Observer, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if marker == nil {
		marker = markup.Passthrough
	}
	return &Reconciler{
		store:      store,
		classifier: NewClassifier(ignoredSubtypes),
		marker:     marker,
		observer:   observer,
		logger:     logger.With("component", "reconciler"),
	}
}

// Apply reconciles one event in a single transaction. Either the whole
// mutation commits or nothing does.
func (r *Reconciler) Apply(ctx context.Context, eventID string, ev *Event) (Outcome, error) {
	startTime := time.Now()

	outcome := OutcomeIgnored
	err := r.store.InTx(ctx, func(q database.Queries) error {
		classified, err := r.classifier.Classify(ctx, q, ev)
		if err != nil || classified == nil {
			return err
		}
		outcome, err = r.apply(ctx, q, classified)
		return err
	})

	duration := time.Since(startTime)
	log := r.logger.With("event_id", eventID, "duration", duration)
	switch {
	case err == nil:
		log.DebugContext(ctx, "Event reconciled", "outcome", outcome)
	case errs.IsEventError(err):
		outcome = OutcomeRejected
		log.WarnContext(ctx, "Event rejected", "code", errs.Code(err), "error", err)
	default:
		outcome = OutcomeFailed
		log.ErrorContext(ctx, "Event reconciliation failed", "error", err)
	}

	if r.observer != nil {
		r.observer.ObserveEvent(string(outcome), duration)
	}
	return outcome, err
}

func (r *Reconciler) apply(ctx context.Context, q database.Queries, classified Classified) (Outcome, error) {
	switch c := classified.(type) {
	case NewMessage:
		return r.applyPosting(ctx, q, c.Posting)
	case EditedMessage:
		return r.applyPosting(ctx, q, c.Posting)
	case RemovedMessage:
		return r.applyRemovedMessage(ctx, q, c)
	case RemovedReply:
		return r.applyRemovedReply(ctx, q, c)
	default:
		return OutcomeFailed, fmt.Errorf("unhandled event kind %s", classified.kind())
	}
}

func (r *Reconciler) applyPosting(ctx context.Context, q database.Queries, p Posting) (Outcome, error) {
	if p.Threaded {
		return r.applyReply(ctx, q, p)
	}

	user, _, err := q.GetOrCreateUser(ctx, p.UserID)
	if err != nil {
		return OutcomeFailed, errs.NewDatabaseError("failed to get or create user", err)
	}

	_, created, err := q.UpsertMessage(ctx, p.Channel, p.Timestamp, user, r.marker.Mark(p.Text))
	switch {
	case errors.Is(err, database.ErrConflict):
		return OutcomeRejected, &errs.TimestampConflictError{Timestamp: p.Timestamp.String(), ChannelID: p.Channel.APIID}
	case err != nil:
		return OutcomeFailed, errs.NewDatabaseError("failed to upsert message", err)
	}

	if created {
		return OutcomeMessageCreated, nil
	}
	return OutcomeMessageUpdated, nil
}

func (r *Reconciler) applyReply(ctx context.Context, q database.Queries, p Posting) (Outcome, error) {
	key, value, err := ParseReply(p.Text)
	if err != nil {
		return OutcomeRejected, err
	}

	parent, err := resolveParent(ctx, q, p.Anchor)
	if err != nil {
		return OutcomeRejected, err
	}

	user, _, err := q.GetOrCreateUser(ctx, p.UserID)
	if err != nil {
		return OutcomeFailed, errs.NewDatabaseError("failed to get or create user", err)
	}

	_, created, err := q.UpsertKeywordArgument(ctx, parent, p.Timestamp, user, key, value)
	if err != nil {
		return OutcomeFailed, errs.NewDatabaseError("failed to upsert keyword argument", err)
	}

	if created {
		return OutcomeReplyCreated, nil
	}
	return OutcomeReplyUpdated, nil
}

// applyRemovedMessage deletes a top-level message. A removal never creates
// users, so an unknown author means there is no such message.
func (r *Reconciler) applyRemovedMessage(ctx context.Context, q database.Queries, c RemovedMessage) (Outcome, error) {
	notFound := &errs.MessageNotFoundError{Timestamp: c.Timestamp.String()}

	user, err := q.GetUser(ctx, c.UserID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		return OutcomeRejected, notFound
	case err != nil:
		return OutcomeFailed, errs.NewDatabaseError("failed to get user", err)
	}

	err = q.DeleteMessage(ctx, c.Channel, c.Timestamp, user)
	switch {
	case errors.Is(err, database.ErrNotFound):
		return OutcomeRejected, notFound
	case err != nil:
		return OutcomeFailed, errs.NewDatabaseError("failed to delete message", err)
	}
	return OutcomeMessageDeleted, nil
}

// applyRemovedReply deletes the KeywordArgument identified by the removed
// message's parent, author and own timestamp.
func (r *Reconciler) applyRemovedReply(ctx context.Context, q database.Queries, c RemovedReply) (Outcome, error) {
	if _, _, err := ParseReply(c.Text); err != nil {
		return OutcomeRejected, err
	}

	parent, err := resolveParent(ctx, q, c.Anchor)
	if err != nil {
		return OutcomeRejected, err
	}

	user, err := q.GetUser(ctx, c.UserID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		return OutcomeRejected, &errs.UserNotFoundError{UserID: c.UserID}
	case err != nil:
		return OutcomeFailed, errs.NewDatabaseError("failed to get user", err)
	}

	kwarg, err := q.GetKeywordArgument(ctx, parent, c.Timestamp, user)
	switch {
	case errors.Is(err, database.ErrNotFound):
		return OutcomeRejected, &errs.KeywordArgumentNotFoundError{
			MessageTimestamp: c.Anchor.String(),
			Timestamp:        c.Timestamp.String(),
			UserID:           c.UserID,
		}
	case err != nil:
		return OutcomeFailed, errs.NewDatabaseError("failed to get keyword argument", err)
	}

	if err := q.DeleteKeywordArgument(ctx, kwarg); err != nil {
		return OutcomeFailed, errs.NewDatabaseError("failed to delete keyword argument", err)
	}
	return OutcomeReplyDeleted, nil
}
