package webhook

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrymomot/magpie/pkg/apierror"
)

// EventType identifies what happened to which object.
type EventType string

const (
	CustomerCreated EventType = "customer.created"
	CustomerUpdated EventType = "customer.updated"
	CustomerDeleted EventType = "customer.deleted"

	SourceCreated EventType = "source.created"
	SourceUpdated EventType = "source.updated"
	SourceDeleted EventType = "source.deleted"

	ChargeCreated   EventType = "charge.created"
	ChargeUpdated   EventType = "charge.updated"
	ChargeSucceeded EventType = "charge.succeeded"
	ChargeFailed    EventType = "charge.failed"
	ChargeCaptured  EventType = "charge.captured"
	ChargeDisputed  EventType = "charge.disputed"

	RefundCreated EventType = "refund.created"
	RefundUpdated EventType = "refund.updated"

	PaymentRequestCreated   EventType = "payment_request.created"
	PaymentRequestUpdated   EventType = "payment_request.updated"
	PaymentRequestSucceeded EventType = "payment_request.succeeded"
	PaymentRequestFailed    EventType = "payment_request.failed"

	CheckoutSessionCreated   EventType = "checkout_session.created"
	CheckoutSessionCompleted EventType = "checkout_session.completed"
	CheckoutSessionExpired   EventType = "checkout_session.expired"

	PaymentLinkCreated EventType = "payment_link.created"
	PaymentLinkUpdated EventType = "payment_link.updated"
)

var knownEventTypes = map[EventType]struct{}{
	CustomerCreated: {}, CustomerUpdated: {}, CustomerDeleted: {},
	SourceCreated: {}, SourceUpdated: {}, SourceDeleted: {},
	ChargeCreated: {}, ChargeUpdated: {}, ChargeSucceeded: {}, ChargeFailed: {}, ChargeCaptured: {}, ChargeDisputed: {},
	RefundCreated: {}, RefundUpdated: {},
	PaymentRequestCreated: {}, PaymentRequestUpdated: {}, PaymentRequestSucceeded: {}, PaymentRequestFailed: {},
	CheckoutSessionCreated: {}, CheckoutSessionCompleted: {}, CheckoutSessionExpired: {},
	PaymentLinkCreated: {}, PaymentLinkUpdated: {},
}

// Known reports whether t is one of the documented event types.
// Unknown types are still delivered so that new API events do not break consumers.
func (t EventType) Known() bool {
	_, ok := knownEventTypes[t]
	return ok
}

// Object returns the resource part of the type, e.g. "charge" for "charge.succeeded".
func (t EventType) Object() string {
	for i := 0; i < len(t); i++ {
		if t[i] == '.' {
			return string(t[:i])
		}
	}
	return string(t)
}

// Event is a verified webhook notification.
type Event struct {
	ID              string         `json:"id"`
	Type            EventType      `json:"type"`
	Data            map[string]any `json:"data"`
	Created         int64          `json:"created"`
	Livemode        bool           `json:"livemode"`
	APIVersion      string         `json:"api_version,omitempty"`
	PendingWebhooks *int           `json:"pending_webhooks,omitempty"`
	Request         map[string]any `json:"request,omitempty"`

	raw json.RawMessage
}

// Raw returns the payload the event was decoded from.
func (e *Event) Raw() json.RawMessage {
	return e.raw
}

// DataObject decodes the "object" member of Data (or Data itself when there is
// no such member) into v.
func (e *Event) DataObject(v any) error {
	src := any(e.Data)
	if obj, ok := e.Data["object"]; ok {
		src = obj
	}
	b, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("encode event data: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode event data: %w", err)
	}
	return nil
}

// ConstructEvent verifies the signature header and decodes payload into an Event.
// A failed verification is reported as a generic "Invalid webhook signature"
// error that does not say which check failed.
func ConstructEvent(payload []byte, header, secret string, opts ...Option) (*Event, error) {
	return ConstructEventContext(context.Background(), payload, header, secret, opts...)
}

// ConstructEventContext is ConstructEvent with a context for the replay guard.
func ConstructEventContext(ctx context.Context, payload []byte, header, secret string, opts ...Option) (*Event, error) {
	o := newOptions(opts)
	if !verify(payload, header, secret, o) {
		return nil, apierror.Webhook(CodeSignatureInvalid, "Invalid webhook signature", nil)
	}
	ev, err := parseEvent(payload)
	if err != nil {
		return nil, err
	}
	if err := checkReplay(ctx, ev, o); err != nil {
		return nil, err
	}
	return ev, nil
}

func parseEvent(payload []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, apierror.Webhook(CodeInvalidPayload, "Invalid JSON in webhook payload", err)
	}
	if ev.ID == "" || ev.Type == "" {
		return nil, apierror.Webhook(CodeInvalidPayload, "Invalid webhook payload: id and type are required", nil)
	}
	if ev.Data == nil {
		ev.Data = map[string]any{}
	}
	ev.raw = append(json.RawMessage(nil), payload...)
	return &ev, nil
}

func checkReplay(ctx context.Context, ev *Event, o *options) error {
	if o.replayGuard == nil {
		return nil
	}
	seen, err := o.replayGuard.Seen(ctx, ev.ID, o.replayWindow)
	if err != nil {
		return fmt.Errorf("replay guard: %w", err)
	}
	if seen {
		return apierror.Webhook(CodeEventReplayed, "Webhook event "+ev.ID+" was already processed", ErrEventReplayed)
	}
	return nil
}
