package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"sintesi/internal/core"
	"sintesi/internal/services"
)

// transactionDTO is the wire form of a transaction. Amounts arrive as JSON
// numbers or numeric strings and are parsed to cents; "req" carries the
// necessity tier.
type transactionDTO struct {
	ID     int64       `json:"id,omitempty"`
	UserID string      `json:"userId,omitempty"`
	Amount json.Number `json:"amount"`
	Type   string      `json:"type"`
	Note   string      `json:"note,omitempty"`
	Date   string      `json:"date"`
	Tier   string      `json:"req,omitempty"`
}

type refreshSummaryRequest struct {
	Transactions []transactionDTO `json:"transactions"`
	Year         int              `json:"year"`
	Month        int              `json:"month"`
	UserID       string           `json:"userId"`
}

type totalsDTO struct {
	Spent    string `json:"spent"`
	Received string `json:"received"`
	Net      string `json:"net"`
}

type refreshSummaryResponse struct {
	Message        string    `json:"message"`
	MonthlySummary string    `json:"monthlySummary"`
	YearlySummary  string    `json:"yearlySummary,omitempty"`
	Totals         totalsDTO `json:"totals"`
	Degraded       bool      `json:"degraded,omitempty"`
}

type monthlySummaryResponse struct {
	UserID    string    `json:"userId"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Summary   string    `json:"summary"`
	Totals    totalsDTO `json:"totals"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type yearlySummaryResponse struct {
	UserID    string    `json:"userId"`
	Year      int       `json:"year"`
	Summary   string    `json:"summary"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func totalsToDTO(t core.Totals) totalsDTO {
	return totalsDTO{
		Spent:    t.Spent.String(),
		Received: t.Received.String(),
		Net:      t.Net.String(),
	}
}

func (dto transactionDTO) toCore(fallbackUserID string) (core.Transaction, error) {
	cents, err := core.ParseSignedDecimalToCents(dto.Amount.String())
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := core.ParseDate(dto.Date)
	if err != nil {
		return core.Transaction{}, err
	}

	userID := dto.UserID
	if userID == "" {
		userID = fallbackUserID
	}
	tier := core.Tier(dto.Tier)
	if tier == "" {
		tier = core.TierLow
	}

	return core.Transaction{
		ID:     dto.ID,
		UserID: userID,
		Amount: core.Money{Cents: cents},
		Type:   strings.TrimSpace(dto.Type),
		Note:   dto.Note,
		Date:   date,
		Tier:   tier,
	}, nil
}

// handleRefreshSummary runs the summary pipeline on the transactions in the
// request body.
func (s *Server) handleRefreshSummary(w http.ResponseWriter, r *http.Request) {
	var req refreshSummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	txs := make([]core.Transaction, 0, len(req.Transactions))
	for _, dto := range req.Transactions {
		tx, err := dto.toCore(req.UserID)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		txs = append(txs, tx)
	}

	result, err := s.summaries.Refresh(r.Context(), services.RefreshRequest{
		UserID:       req.UserID,
		Year:         req.Year,
		Month:        req.Month,
		Transactions: txs,
	})
	if errors.Is(err, core.ErrValidation) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Summary refresh failed", "error", err)
		writeError(w, http.StatusInternalServerError, "AI Summary generation failed")
		return
	}

	writeJSON(w, http.StatusOK, refreshSummaryResponse{
		Message:        result.Message,
		MonthlySummary: result.MonthlySummary,
		YearlySummary:  result.YearlySummary,
		Totals:         totalsToDTO(result.Totals),
		Degraded:       result.Degraded,
	})
}

// handleGetMonthlySummary returns the stored monthly summary for
// ?userId=&year=&month=.
func (s *Server) handleGetMonthlySummary(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	year := queryInt(r, "year")
	month := queryInt(r, "month")
	if userID == "" || year == 0 || month == 0 {
		writeError(w, http.StatusBadRequest, "Missing query parameters")
		return
	}

	summary, err := s.summaries.FindMonthly(r.Context(), userID, year, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Monthly summary lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch summary")
		return
	}
	if summary == nil {
		writeJSON(w, http.StatusOK, map[string]string{"message": "No Summary found"})
		return
	}

	writeJSON(w, http.StatusOK, monthlySummaryResponse{
		UserID:    summary.UserID,
		Year:      summary.Year,
		Month:     summary.Month,
		Summary:   summary.Summary,
		Totals:    totalsToDTO(summary.Totals),
		UpdatedAt: summary.UpdatedAt,
	})
}

// handleGetYearlySummary returns the stored yearly summary for
// ?userId=&year=.
func (s *Server) handleGetYearlySummary(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	year := queryInt(r, "year")
	if userID == "" || year == 0 {
		writeError(w, http.StatusBadRequest, "Missing query parameters")
		return
	}

	summary, err := s.summaries.FindYearly(r.Context(), userID, year)
	if err != nil {
		slog.ErrorContext(r.Context(), "Yearly summary lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch summary")
		return
	}
	if summary == nil {
		writeJSON(w, http.StatusOK, map[string]string{"message": "No Summary found"})
		return
	}

	writeJSON(w, http.StatusOK, yearlySummaryResponse{
		UserID:    summary.UserID,
		Year:      summary.Year,
		Summary:   summary.Summary,
		UpdatedAt: summary.UpdatedAt,
	})
}
