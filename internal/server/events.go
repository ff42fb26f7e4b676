package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"

	errs "github.com/edgard/slackchat/internal/errors"
	"github.com/edgard/slackchat/internal/reconcile"
)

// Outcome recorded for redelivered events that were already processed.
const outcomeDuplicate = "duplicate"

// handleEvents receives Events API callbacks. Events that fail for reasons
// tied to their content are logged and acknowledged; infrastructure failures
// answer 500 so Slack delivers the event again.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := s.verifySignature(r.Header, body); err != nil {
		s.logger.WarnContext(ctx, "Rejected request with invalid signature", "code", errs.Code(err), "error", err)
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	envelope, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		fallback, ok := parseUnknownCallback(body)
		if !ok {
			s.logger.WarnContext(ctx, "Failed to parse event envelope", "error", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		s.logger.DebugContext(ctx, "Event type not known to the Slack client", "event_type", fallback.InnerEvent.Type, "error", err)
		envelope = fallback
	}

	if err := s.verifyToken(envelope.Token); err != nil {
		s.logger.WarnContext(ctx, "Rejected request with invalid verification token", "code", errs.Code(err))
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}

	switch slackevents.EventsAPIType(envelope.Type) {
	case slackevents.URLVerification:
		s.handleURLVerification(w, r, envelope, body)
	case slackevents.CallbackEvent:
		s.handleCallback(w, r, envelope)
	default:
		s.logger.DebugContext(ctx, "Ignoring envelope", "type", envelope.Type)
		w.WriteHeader(http.StatusOK)
	}
}

// callbackEnvelope is the subset of an event_callback needed to route it.
type callbackEnvelope struct {
	Token   string          `json:"token"`
	Type    string          `json:"type"`
	EventID string          `json:"event_id"`
	Event   json.RawMessage `json:"event"`
}

// parseUnknownCallback rebuilds an event_callback envelope whose inner type
// slackevents cannot map. The inner payload is left undecoded.
func parseUnknownCallback(body []byte) (slackevents.EventsAPIEvent, bool) {
	var outer callbackEnvelope
	if err := json.Unmarshal(body, &outer); err != nil || outer.Type != slackevents.CallbackEvent || len(outer.Event) == 0 {
		return slackevents.EventsAPIEvent{}, false
	}
	var inner struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(outer.Event, &inner); err != nil || inner.Type == "" {
		return slackevents.EventsAPIEvent{}, false
	}

	raw := outer.Event
	return slackevents.EventsAPIEvent{
		Token: outer.Token,
		Type:  outer.Type,
		Data: &slackevents.EventsAPICallbackEvent{
			Type:       outer.Type,
			Token:      outer.Token,
			EventID:    outer.EventID,
			InnerEvent: &raw,
		},
		InnerEvent: slackevents.EventsAPIInnerEvent{Type: inner.Type},
	}, true
}

// verifySignature checks the X-Slack-Signature header when a signing
// secret is configured.
func (s *Server) verifySignature(header http.Header, body []byte) error {
	if s.slack.SigningSecret == "" {
		return nil
	}

	verifier, err := slack.NewSecretsVerifier(header, s.slack.SigningSecret)
	if err != nil {
		return errs.NewUnauthorizedError("invalid request signature headers", err)
	}
	if _, err := verifier.Write(body); err != nil {
		return errs.NewUnauthorizedError("failed to hash request body", err)
	}
	if err := verifier.Ensure(); err != nil {
		return errs.NewUnauthorizedError("request signature mismatch", err)
	}
	return nil
}

// verifyToken compares the envelope token in constant time. Without a
// configured token, requests are authenticated by signature alone.
func (s *Server) verifyToken(token string) error {
	if s.slack.VerificationToken == "" {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.slack.VerificationToken)) != 1 {
		return errs.NewUnauthorizedError("verification token mismatch", nil)
	}
	return nil
}

func (s *Server) handleURLVerification(w http.ResponseWriter, r *http.Request, envelope slackevents.EventsAPIEvent, body []byte) {
	var challenge string
	if verification, ok := envelope.Data.(*slackevents.EventsAPIURLVerificationEvent); ok {
		challenge = verification.Challenge
	} else {
		var resp slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		challenge = resp.Challenge
	}

	s.logger.InfoContext(r.Context(), "Answering URL verification challenge")
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(challenge))
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request, envelope slackevents.EventsAPIEvent) {
	ctx := r.Context()

	callback, ok := envelope.Data.(*slackevents.EventsAPICallbackEvent)
	if !ok || callback.InnerEvent == nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	log := s.logger.With(
		"event_id", callback.EventID,
		"event_type", envelope.InnerEvent.Type,
		"retry_num", r.Header.Get("X-Slack-Retry-Num"),
	)

	switch slackevents.EventsAPIType(envelope.InnerEvent.Type) {
	case slackevents.Message:
	case slackevents.ReactionAdded, slackevents.ReactionRemoved:
		log.DebugContext(ctx, "Acknowledging reaction event")
		w.WriteHeader(http.StatusOK)
		return
	default:
		log.DebugContext(ctx, "Ignoring unsupported event type")
		w.WriteHeader(http.StatusOK)
		return
	}

	if callback.EventID != "" {
		seen, err := s.store.HasEventReceipt(ctx, callback.EventID)
		if err != nil {
			log.ErrorContext(ctx, "Failed to check event receipt", "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if seen {
			log.InfoContext(ctx, "Skipping already processed event")
			s.metrics.ObserveEvent(outcomeDuplicate, 0)
			w.WriteHeader(http.StatusOK)
			return
		}
	}

	ev, err := reconcile.DecodeEvent(*callback.InnerEvent)
	if err != nil {
		log.WarnContext(ctx, "Dropping undecodable message event", "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	outcome, err := s.applier.Apply(ctx, callback.EventID, ev)
	if err != nil && !errs.IsEventError(err) {
		log.ErrorContext(ctx, "Event processing failed, requesting redelivery", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if err != nil {
		log.WarnContext(ctx, "Event dropped", "code", errs.Code(err), "error", err)
	}

	if callback.EventID != "" {
		if err := s.store.SaveEventReceipt(ctx, callback.EventID, string(outcome)); err != nil {
			log.ErrorContext(ctx, "Failed to save event receipt", "error", err)
		}
	}
	w.WriteHeader(http.StatusOK)
}
