package handlers

import (
	"net/http"

	"github.com/Dosada05/padel-club/services"
)

type BookingHandler struct {
	bookingService services.BookingService
}

func NewBookingHandler(bs services.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bs}
}

// CreateHandler godoc
// @Summary Создать бронирование корта
// @Tags bookings
// @Description Без participants создаётся один платёж; с participants сумма делится между участниками.
// @Accept json
// @Produce json
// @Param booking body services.CreateBookingInput true "Бронирование"
// @Success 201 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Security BearerAuth
// @Router /bookings [post]
func (h *BookingHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	var input services.CreateBookingInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.ClubID == 0 && session.ClubID != nil {
		input.ClubID = *session.ClubID
	}

	details, err := h.bookingService.CreateBooking(r.Context(), session, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusCreated, jsonResponse{
		"booking":        details.Booking,
		"payment":        details.Payment,
		"split_payments": details.SplitPayments,
	})
}

// SettlementHandler godoc
// @Summary Состояние оплаты бронирования
// @Tags bookings
// @Produce json
// @Param bookingID path int true "Booking ID"
// @Success 200 {object} services.SettlementStatus
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /bookings/{bookingID}/settlement [get]
func (h *BookingHandler) SettlementHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}
	bookingID, err := getIDFromURL(r, "bookingID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	status, err := h.bookingService.GetSettlementStatus(r.Context(), session, bookingID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	resultResponse(w, r, http.StatusOK, status)
}

// SplitPaymentResultHandler godoc
// @Summary Записать результат доли сплит-платежа
// @Tags bookings
// @Accept json
// @Produce json
// @Param splitPaymentID path int true "Split payment ID"
// @Param result body services.PaymentResultInput true "COMPLETED или FAILED"
// @Success 200 {object} services.SettlementResult
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{} "Доля уже в терминальном статусе"
// @Security BearerAuth
// @Router /split-payments/{splitPaymentID}/result [post]
func (h *BookingHandler) SplitPaymentResultHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}
	splitPaymentID, err := getIDFromURL(r, "splitPaymentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.PaymentResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.bookingService.RecordSplitPaymentResult(r.Context(), session, splitPaymentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	resultResponse(w, r, http.StatusOK, result)
}

// PaymentResultHandler обрабатывает POST /payments/{paymentID}/result
func (h *BookingHandler) PaymentResultHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}
	paymentID, err := getIDFromURL(r, "paymentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.PaymentResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.bookingService.RecordPaymentResult(r.Context(), session, paymentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	resultResponse(w, r, http.StatusOK, result)
}
