package handlers

import (
	"net/http"

	"github.com/Dosada05/padel-club/services"
)

type TransferHandler struct {
	transferService services.TransferService
}

func NewTransferHandler(ts services.TransferService) *TransferHandler {
	return &TransferHandler{transferService: ts}
}

// ProcessHandler godoc
// @Summary Перевести клубу все ожидающие выплаты
// @Tags transfers
// @Description Ошибка отдельного перевода попадает в failed и не прерывает пакет.
// @Produce json
// @Param clubID path int true "Club ID"
// @Success 200 {object} services.BatchResult
// @Failure 404 {object} map[string]interface{}
// @Failure 412 {object} map[string]interface{} "Клуб не завершил онбординг"
// @Security BearerAuth
// @Router /clubs/{clubID}/transfers/process [post]
func (h *TransferHandler) ProcessHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.transferService.ProcessPendingTransfers(r.Context(), session, clubID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	resultResponse(w, r, http.StatusOK, result)
}

// ListPayoutsHandler обрабатывает GET /clubs/{clubID}/payouts
func (h *TransferHandler) ListPayoutsHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	payouts, err := h.transferService.ListPendingPayouts(r.Context(), session, clubID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, jsonResponse{"payouts": payouts})
}

// SetPaymentAccountHandler обрабатывает PUT /clubs/{clubID}/payment-account
func (h *TransferHandler) SetPaymentAccountHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		AccountID string `json:"account_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	club, err := h.transferService.SetPaymentAccount(r.Context(), session, clubID, input.AccountID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, jsonResponse{"club": club})
}

// SyncOnboardingHandler обрабатывает POST /clubs/{clubID}/onboarding/sync
func (h *TransferHandler) SyncOnboardingHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	club, err := h.transferService.SyncOnboarding(r.Context(), session, clubID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, jsonResponse{"club": club})
}
