package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

const dateLayout = "2006-01-02"

// transactionPayload is the write-side JSON shape. Amount is a decimal
// string ("45.50") so clients never send floats for money.
type transactionPayload struct {
	Title    string `json:"title"`
	Amount   string `json:"amount"`
	Type     string `json:"type"`
	Category string `json:"category"`
	Date     string `json:"date"`
	Emotion  string `json:"emotion,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

type transactionResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	Date        string `json:"date"`
	Emotion     string `json:"emotion,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

func toTransactionResponse(tx core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		Title:       tx.Title,
		AmountCents: tx.Amount.Cents,
		Amount:      tx.Amount.Display(),
		Type:        string(tx.Type),
		Category:    tx.Category,
		Date:        tx.Date.Format(dateLayout),
		Emotion:     string(tx.Emotion),
		Notes:       tx.Notes,
	}
}

func (p transactionPayload) toTransaction() (core.Transaction, error) {
	cents, err := core.ParseDecimalToCents(p.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount %q: %w", p.Amount, err)
	}

	date, err := time.Parse(dateLayout, strings.TrimSpace(p.Date))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("date %q: %w", p.Date, core.ErrInvalidDate)
	}

	return core.Transaction{
		Title:    sanitizeInput(p.Title),
		Amount:   core.Money{Cents: cents},
		Type:     core.TransactionType(strings.TrimSpace(p.Type)),
		Category: sanitizeInput(p.Category),
		Date:     core.Date{Time: date},
		Emotion:  core.Emotion(strings.TrimSpace(p.Emotion)),
		Notes:    sanitizeInput(p.Notes),
	}, nil
}

// sanitizeInput trims whitespace and strips control characters except tab,
// newline, and carriage return.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps store and validation errors onto status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case isValidationError(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func isValidationError(err error) bool {
	for _, known := range []error{
		core.ErrInvalidDate,
		core.ErrInvalidAmount,
		core.ErrInvalidType,
		core.ErrInvalidEmotion,
		core.ErrEmptyTitle,
		core.ErrUnknownCategory,
	} {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// parseID extracts the numeric ID from a path like /api/transactions/42.
func parseID(path, prefix string) (int64, error) {
	raw := strings.TrimPrefix(path, prefix)
	raw = strings.Trim(raw, "/")
	if raw == "" || strings.Contains(raw, "/") {
		return 0, fmt.Errorf("invalid transaction id %q", raw)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid transaction id %q", raw)
	}
	return id, nil
}

// parseYearMonth reads optional year and month query parameters, falling
// back to the given defaults. Out-of-range months are rejected.
func parseYearMonth(r *http.Request, defaultYear, defaultMonth int) (int, int, error) {
	year, month := defaultYear, defaultMonth
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid year %q", v)
		}
		year = y
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return 0, 0, fmt.Errorf("invalid month %q", v)
		}
		month = m
	}
	return year, month, nil
}

var zeroAmount = regexp.MustCompile(`^0+([.,]0*)?$`)

// parseBudgetLimit parses a budget amount. Unlike transaction amounts a
// budget of zero is legal: it clears the month's limit back to unset.
func parseBudgetLimit(s string) (int64, error) {
	if zeroAmount.MatchString(strings.TrimSpace(s)) {
		return 0, nil
	}
	return core.ParseDecimalToCents(s)
}

// parseMonthKey validates a yyyy-MM budget month key.
func parseMonthKey(s string) (string, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid month %q: want yyyy-MM", s)
	}
	return store.MonthKey(t.Year(), int(t.Month())), nil
}
