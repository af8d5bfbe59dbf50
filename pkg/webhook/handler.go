package webhook

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrymomot/magpie/pkg/apierror"
	"github.com/dmitrymomot/magpie/pkg/clientip"
	"github.com/dmitrymomot/magpie/pkg/logger"
)

// EventHandler processes a verified event. Returning an error makes the
// handler answer 500 so that the sender retries the delivery.
type EventHandler func(ctx context.Context, event *Event) error

type handler struct {
	secret string
	fn     EventHandler
	opts   *options
}

// NewHandler returns an http.Handler that verifies incoming webhooks and
// passes them to fn.
//
// Responses:
//   - 200 when fn succeeds or the event was already processed
//   - 400 for a missing signature header, an oversized body or a bad payload
//   - 401 for a wrong signature or a stale timestamp
//   - 403 for a sender outside WithAllowedSources
//   - 405 for anything but POST
//   - 500 when fn or the replay store fails; after a failed fn the event ID
//     is released so that the redelivery is processed
func NewHandler(secret string, fn EventHandler, opts ...Option) http.Handler {
	return &handler{secret: secret, fn: fn, opts: newOptions(opts)}
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	addr, _ := clientip.FromRequest(r, h.opts.trustProxy)
	log := h.opts.logger.With(logger.RemoteAddr(addr.String()))

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	if !h.opts.allowedSources.Allows(addr) {
		log.WarnContext(ctx, "webhook sender not allowed")
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.opts.maxPayloadSize))
	if err != nil {
		log.WarnContext(ctx, "webhook body rejected", logger.Error(err))
		http.Error(w, "payload too large", http.StatusBadRequest)
		return
	}

	ok, err := verifyHeaders(payload, r.Header, h.secret, h.opts)
	if err != nil {
		status := http.StatusUnauthorized
		if e, isAPI := apierror.As(err); isAPI && e.Code == CodeSignatureMissing {
			status = http.StatusBadRequest
		}
		log.WarnContext(ctx, "webhook verification failed", logger.Error(err))
		http.Error(w, http.StatusText(status), status)
		return
	}
	if !ok {
		log.WarnContext(ctx, "webhook signature mismatch")
		http.Error(w, "Invalid webhook signature", http.StatusUnauthorized)
		return
	}

	ev, err := parseEvent(payload)
	if err != nil {
		log.WarnContext(ctx, "webhook payload rejected", logger.Error(err))
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := checkReplay(ctx, ev, h.opts); err != nil {
		if errors.Is(err, ErrEventReplayed) {
			log.InfoContext(ctx, "webhook event replayed", logger.EventID(ev.ID))
			w.WriteHeader(http.StatusOK)
			return
		}
		log.ErrorContext(ctx, "webhook replay check failed", logger.EventID(ev.ID), logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := h.fn(ctx, ev); err != nil {
		log.ErrorContext(ctx, "webhook handler failed",
			logger.EventID(ev.ID),
			logger.EventType(string(ev.Type)),
			logger.Error(err),
		)
		// The sender retries on 500; the retry must not look like a replay.
		if g := h.opts.replayGuard; g != nil {
			if ferr := g.Forget(ctx, ev.ID); ferr != nil {
				log.ErrorContext(ctx, "webhook replay release failed", logger.EventID(ev.ID), logger.Error(ferr))
			}
		}
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	log.DebugContext(ctx, "webhook processed", logger.EventID(ev.ID), logger.EventType(string(ev.Type)))
	w.WriteHeader(http.StatusOK)
}
