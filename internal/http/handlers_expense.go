package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"sintesi/internal/core"
)

type expenseResponse struct {
	ID     int64  `json:"id"`
	UserID string `json:"userId"`
	Amount string `json:"amount"`
	Type   string `json:"type"`
	Note   string `json:"note,omitempty"`
	Date   string `json:"date"`
	Tier   string `json:"req"`
}

func expenseToDTO(tx core.Transaction) expenseResponse {
	return expenseResponse{
		ID:     tx.ID,
		UserID: tx.UserID,
		Amount: tx.Amount.String(),
		Type:   tx.Type,
		Note:   tx.Note,
		Date:   tx.Date.String(),
		Tier:   string(tx.Tier),
	}
}

// handleCreateExpense records a transaction and triggers a background
// summary refresh for its month.
func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var dto transactionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, err := dto.toCore("")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.expenses.CreateExpense(r.Context(), tx)
	if errors.Is(err, core.ErrValidation) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Expense creation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to add expense")
		return
	}

	tx.ID = id
	writeJSON(w, http.StatusCreated, expenseToDTO(tx))
}

// handleDeleteExpense removes a transaction by ID and triggers a refresh
// for the month it belonged to.
func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}

	deleted, err := s.expenses.DeleteExpense(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "Expense deletion failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete transaction")
		return
	}
	if deleted == nil {
		writeError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Transaction deleted successfully. AI update running in background.",
		"deletedId": id,
	})
}

// handleListExpenses returns one user's transactions for a calendar month,
// defaulting to the current one.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}
	year, month := parseYearMonth(r)

	txs, err := s.expenses.ListMonth(r.Context(), userID, year, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Expense listing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	out := make([]expenseResponse, len(txs))
	for i, tx := range txs {
		out[i] = expenseToDTO(tx)
	}
	writeJSON(w, http.StatusOK, out)
}
