package payments

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Dosada05/padel-club/models"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

const (
	MetadataSplitPaymentID = "split_payment_id"
	MetadataPaymentID      = "payment_id"
)

// PaymentEvent is a provider callback reduced to what settlement needs.
type PaymentEvent struct {
	EventID           string
	Status            models.PaymentStatus
	SplitPaymentID    *int
	PaymentID         *int
	ProviderReference string
}

// WebhookParser verifies and decodes provider callbacks.
type WebhookParser interface {
	ParseWebhook(payload []byte, signatureHeader string) (*PaymentEvent, error)
}

func (p *StripeProvider) ParseWebhook(payload []byte, signatureHeader string) (*PaymentEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, p.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return MapEvent(event)
}

// MapEvent maps payment_intent events carrying split_payment_id or payment_id metadata.
func MapEvent(event stripe.Event) (*PaymentEvent, error) {
	var status models.PaymentStatus
	switch event.Type {
	case "payment_intent.succeeded":
		status = models.PaymentCompleted
	case "payment_intent.payment_failed":
		status = models.PaymentFailed
	case "payment_intent.processing":
		status = models.PaymentProcessing
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnhandledEvent, event.Type)
	}

	if event.Data == nil {
		return nil, fmt.Errorf("%w: event %s has no data", ErrMissingReference, event.ID)
	}
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, fmt.Errorf("failed to decode payment intent: %w", err)
	}

	out := &PaymentEvent{EventID: event.ID, Status: status, ProviderReference: intent.ID}
	if id, ok := metadataID(intent.Metadata, MetadataSplitPaymentID); ok {
		out.SplitPaymentID = &id
		return out, nil
	}
	if id, ok := metadataID(intent.Metadata, MetadataPaymentID); ok {
		out.PaymentID = &id
		return out, nil
	}
	return nil, fmt.Errorf("%w: payment intent %s", ErrMissingReference, intent.ID)
}

func metadataID(metadata map[string]string, key string) (int, bool) {
	raw, ok := metadata[key]
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
