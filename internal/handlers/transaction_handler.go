package handlers

import (
	"encoding/json"
	"net/http"

	"lendbook/internal/middleware"
	"lendbook/internal/models"
	"lendbook/internal/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type TransactionHandler struct {
	transactions *services.TransactionService
	logger       zerolog.Logger
}

func NewTransactionHandler(transactions *services.TransactionService, logger zerolog.Logger) *TransactionHandler {
	return &TransactionHandler{
		transactions: transactions,
		logger:       logger,
	}
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	var req models.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	transaction, err := h.transactions.Create(r.Context(), userID, &req)
	if err != nil {
		h.logger.Error().Err(err).Str("sender_id", userID).Msg("Create transaction failed")
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, transaction)
}

func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	summary, err := h.transactions.ListForUser(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("List transactions failed")
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

func (h *TransactionHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	pending, err := h.transactions.ListPending(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("List pending transactions failed")
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"pending_count": len(pending),
		"transactions":  pending,
	})
}

func (h *TransactionHandler) ListBetween(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}
	otherID := mux.Vars(r)["userId"]

	transactions, err := h.transactions.ListBetween(r.Context(), userID, otherID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Str("other_id", otherID).Msg("List transactions between users failed")
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, transactions)
}

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}
	transactionID := mux.Vars(r)["id"]

	transaction, err := h.transactions.GetByID(r.Context(), transactionID, userID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, transaction)
}

func (h *TransactionHandler) Accept(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}
	transactionID := mux.Vars(r)["id"]

	transaction, err := h.transactions.Accept(r.Context(), transactionID, userID)
	if err != nil {
		h.logger.Warn().Err(err).Str("transaction_id", transactionID).Str("user_id", userID).Msg("Accept transaction failed")
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, transaction)
}

func (h *TransactionHandler) Reject(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}
	transactionID := mux.Vars(r)["id"]

	if err := h.transactions.Reject(r.Context(), transactionID, userID); err != nil {
		h.logger.Warn().Err(err).Str("transaction_id", transactionID).Str("user_id", userID).Msg("Reject transaction failed")
		respondWithServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TransactionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}
	transactionID := mux.Vars(r)["id"]

	var req models.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	transaction, err := h.transactions.UpdateStatus(r.Context(), transactionID, models.TransactionStatus(req.Status), userID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, transaction)
}

func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}
	transactionID := mux.Vars(r)["id"]

	if err := h.transactions.Delete(r.Context(), transactionID, userID); err != nil {
		respondWithServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TransactionHandler) Settle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}
	counterpartyID := mux.Vars(r)["counterpartyId"]

	var req models.SettleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	transaction, err := h.transactions.SettleWithFriend(r.Context(), userID, counterpartyID, req.Amount)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Str("counterparty_id", counterpartyID).Msg("Settlement failed")
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, transaction)
}
