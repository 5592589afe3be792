package http

import (
	"log/slog"
	"net/http"
	"strings"
)

// handleChat forwards a free-form query straight to the language model.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.chat == nil {
		writeError(w, http.StatusServiceUnavailable, "AI temporarily unavailable")
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	reply, err := s.chat.Generate(r.Context(), query)
	if err != nil {
		slog.ErrorContext(r.Context(), "Chat generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Gemini request failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}
