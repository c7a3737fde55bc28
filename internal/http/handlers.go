package http

import (
	"log/slog"
	"net/http"
)

const transactionsPrefix = "/api/transactions/"

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTransactions(w, r)
	case http.MethodPost:
		s.createTransaction(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.URL.Path, transactionsPrefix)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getTransaction(w, r, id)
	case http.MethodPut:
		s.updateTransaction(w, r, id)
	case http.MethodDelete:
		s.deleteTransaction(w, r, id)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseYearMonth(r, 0, 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if (year == 0) != (month == 0) {
		writeError(w, http.StatusBadRequest, "year and month must be provided together")
		return
	}

	txs, err := s.txs.ListTransactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List transactions failed", "error", err)
		writeDomainError(w, err)
		return
	}

	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		if year != 0 && !tx.Date.InMonth(year, month) {
			continue
		}
		out = append(out, toTransactionResponse(tx))
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": out})
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var payload transactionPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	tx, err := payload.toTransaction()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	id, err := s.txs.CreateTransaction(r.Context(), tx)
	if err != nil {
		slog.ErrorContext(r.Context(), "Create transaction failed", "error", err)
		writeDomainError(w, err)
		return
	}

	s.invalidateReports()

	tx.ID = id
	writeJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request, id int64) {
	tx, err := s.txs.GetTransaction(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) updateTransaction(w http.ResponseWriter, r *http.Request, id int64) {
	var payload transactionPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	tx, err := payload.toTransaction()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	tx.ID = id

	if err := s.txs.UpdateTransaction(r.Context(), tx); err != nil {
		slog.ErrorContext(r.Context(), "Update transaction failed", "id", id, "error", err)
		writeDomainError(w, err)
		return
	}

	s.invalidateReports()
	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request, id int64) {
	if err := s.txs.DeleteTransaction(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	s.invalidateReports()
	w.WriteHeader(http.StatusNoContent)
}
