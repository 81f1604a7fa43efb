package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/Dosada05/padel-club/payments"
	"github.com/Dosada05/padel-club/services"
)

const maxWebhookBytes = 65536

type WebhookHandler struct {
	parser         payments.WebhookParser
	bookingService services.BookingService
	logger         *slog.Logger
}

func NewWebhookHandler(parser payments.WebhookParser, bs services.BookingService, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{parser: parser, bookingService: bs, logger: logger}
}

// StripeHandler godoc
// @Summary Webhook платёжного провайдера
// @Tags webhooks
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Неверная подпись"
// @Router /webhooks/stripe [post]
func (h *WebhookHandler) StripeHandler(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		badRequestResponse(w, r, errors.New("unable to read webhook body"))
		return
	}

	event, err := h.parser.ParseWebhook(payload, r.Header.Get("Stripe-Signature"))
	switch {
	case errors.Is(err, payments.ErrInvalidSignature):
		h.logger.WarnContext(r.Context(), "Webhook signature rejected", slog.Any("error", err))
		badRequestResponse(w, r, errors.New("invalid signature"))
		return
	case errors.Is(err, payments.ErrUnhandledEvent), errors.Is(err, payments.ErrMissingReference):
		// Провайдеру нужен 2xx, иначе он будет повторять доставку.
		h.logger.DebugContext(r.Context(), "Webhook event ignored", slog.Any("reason", err))
		successResponse(w, r, http.StatusOK, jsonResponse{"ignored": true})
		return
	case err != nil:
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.bookingService.HandlePaymentEvent(r.Context(), *event)
	if err != nil {
		if errors.Is(err, services.ErrInvalidState) || errors.Is(err, services.ErrNotFound) {
			h.logger.InfoContext(r.Context(), "Webhook event not applied",
				slog.String("event_id", event.EventID),
				slog.Any("reason", err),
			)
			successResponse(w, r, http.StatusOK, jsonResponse{"ignored": true, "reason": err.Error()})
			return
		}
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, jsonResponse{"event_id": event.EventID, "settlement": result})
}
