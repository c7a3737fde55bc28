package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

type overviewDTO struct {
	IncomeCents  int64 `json:"income_cents"`
	ExpenseCents int64 `json:"expense_cents"`
	BalanceCents int64 `json:"balance_cents"`
}

type categoryTotalDTO struct {
	Category   string `json:"category"`
	TotalCents int64  `json:"total_cents"`
	Total      string `json:"total"`
}

type monthlyBucketDTO struct {
	Year         int    `json:"year"`
	Month        int    `json:"month"`
	Label        string `json:"label"`
	IncomeCents  int64  `json:"income_cents"`
	ExpenseCents int64  `json:"expense_cents"`
}

type budgetDTO struct {
	Month          string  `json:"month"`
	LimitCents     int64   `json:"limit_cents"`
	SpentCents     int64   `json:"spent_cents"`
	RemainingCents int64   `json:"remaining_cents"`
	Percentage     float64 `json:"percentage"`
	Tier           string  `json:"tier"`
}

type insightDTO struct {
	Kind     string `json:"kind"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

type reportDTO struct {
	Year           int                `json:"year"`
	Month          int                `json:"month"`
	Overview       overviewDTO        `json:"overview"`
	CategoryTotals []categoryTotalDTO `json:"category_totals"`
	MonthlySeries  []monthlyBucketDTO `json:"monthly_series"`
	Budget         budgetDTO          `json:"budget"`
	Insights       []insightDTO       `json:"insights"`
	Quote          string             `json:"quote"`
}

func toReportDTO(rep core.Report) reportDTO {
	dto := reportDTO{
		Year:  rep.Year,
		Month: rep.Month,
		Overview: overviewDTO{
			IncomeCents:  rep.Overview.Income.Cents,
			ExpenseCents: rep.Overview.Expense.Cents,
			BalanceCents: rep.Overview.Balance.Cents,
		},
		CategoryTotals: make([]categoryTotalDTO, 0, len(rep.CategoryTotals)),
		MonthlySeries:  make([]monthlyBucketDTO, 0, len(rep.MonthlySeries)),
		Budget:         toBudgetDTO(store.MonthKey(rep.Year, rep.Month), rep.Budget),
		Insights:       make([]insightDTO, 0, len(rep.Insights)),
		Quote:          rep.Quote,
	}
	for _, ct := range rep.CategoryTotals {
		dto.CategoryTotals = append(dto.CategoryTotals, categoryTotalDTO{
			Category:   ct.Category,
			TotalCents: ct.Total.Cents,
			Total:      ct.Total.Display(),
		})
	}
	for _, b := range rep.MonthlySeries {
		dto.MonthlySeries = append(dto.MonthlySeries, monthlyBucketDTO{
			Year:         b.Year,
			Month:        b.Month,
			Label:        b.Label,
			IncomeCents:  b.Income.Cents,
			ExpenseCents: b.Expense.Cents,
		})
	}
	for _, in := range rep.Insights {
		dto.Insights = append(dto.Insights, insightDTO{
			Kind:     string(in.Kind),
			Title:    in.Title,
			Message:  in.Message,
			Severity: string(in.Severity),
		})
	}
	return dto
}

func toBudgetDTO(month string, b core.BudgetStatus) budgetDTO {
	return budgetDTO{
		Month:          month,
		LimitCents:     b.Limit.Cents,
		SpentCents:     b.Spent.Cents,
		RemainingCents: b.Remaining.Cents,
		Percentage:     b.Percentage,
		Tier:           string(b.Tier),
	}
}

// handleDashboard serves the full derived report for one month. Defaults to
// the current month; past months accept explicit year and month parameters.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	now := s.now()
	year, month, err := parseYearMonth(r, now.Year(), int(now.Month()))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := store.MonthKey(year, month)
	if rep, ok := s.reportCache.Get(key); ok {
		slog.DebugContext(r.Context(), "Dashboard cache hit", "month", key)
		writeJSON(w, http.StatusOK, toReportDTO(rep))
		return
	}

	txs, err := s.txs.ListTransactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List transactions failed", "error", err)
		writeDomainError(w, err)
		return
	}

	limit, err := s.budgets.BudgetLimit(r.Context(), key)
	if err != nil {
		slog.ErrorContext(r.Context(), "Budget lookup failed", "month", key, "error", err)
		writeDomainError(w, err)
		return
	}

	prefs, err := s.prefs.Preferences(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Preferences lookup failed", "error", err)
		writeDomainError(w, err)
		return
	}

	rep := core.BuildReport(txs, reportTime(now, year, month), limit, prefs.Currency)
	s.reportCache.Set(key, rep)

	writeJSON(w, http.StatusOK, toReportDTO(rep))
}

// reportTime picks the reference time for a report. The current month uses
// the wall clock so the forecast tracks elapsed days; a past month is
// complete, so its last day is the reference.
func reportTime(now time.Time, year, month int) time.Time {
	if year == now.Year() && month == int(now.Month()) {
		return now
	}
	return time.Date(year, time.Month(month)+1, 0, 12, 0, 0, 0, now.Location())
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.getBudget(w, r)
	case http.MethodPut:
		s.setBudget(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut)
	}
}

func (s *Server) getBudget(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	key := store.MonthKey(now.Year(), int(now.Month()))
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		parsed, err := parseMonthKey(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		key = parsed
	}

	status, err := s.budgetStatus(r, key)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetDTO(key, status))
}

type budgetPayload struct {
	Month string `json:"month"`
	Limit string `json:"limit"`
}

func (s *Server) setBudget(w http.ResponseWriter, r *http.Request) {
	var payload budgetPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	key, err := parseMonthKey(payload.Month)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cents, err := parseBudgetLimit(payload.Limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := s.budgets.SetBudgetLimit(r.Context(), key, core.Money{Cents: cents}); err != nil {
		slog.ErrorContext(r.Context(), "Set budget failed", "month", key, "error", err)
		writeDomainError(w, err)
		return
	}

	s.invalidateReports()

	status, err := s.budgetStatus(r, key)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetDTO(key, status))
}

// budgetStatus recomputes usage for one month key.
func (s *Server) budgetStatus(r *http.Request, key string) (core.BudgetStatus, error) {
	limit, err := s.budgets.BudgetLimit(r.Context(), key)
	if err != nil {
		return core.BudgetStatus{}, err
	}
	txs, err := s.txs.ListTransactions(r.Context())
	if err != nil {
		return core.BudgetStatus{}, err
	}
	ref, err := time.Parse("2006-01", key)
	if err != nil {
		return core.BudgetStatus{}, err
	}
	return core.BudgetUsage(txs, ref, limit), nil
}

type preferencesPayload struct {
	Theme    string `json:"theme"`
	Currency string `json:"currency"`
}

func (s *Server) handlePreferences(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		prefs, err := s.prefs.Preferences(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, preferencesPayload{Theme: prefs.Theme, Currency: prefs.Currency})

	case http.MethodPut:
		var payload preferencesPayload
		if err := decodeJSON(r, &payload); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}

		theme := strings.TrimSpace(payload.Theme)
		if theme != "light" && theme != "dark" {
			writeError(w, http.StatusUnprocessableEntity, "theme must be light or dark")
			return
		}
		currency := strings.TrimSpace(payload.Currency)
		if currency == "" {
			writeError(w, http.StatusUnprocessableEntity, "currency cannot be empty")
			return
		}

		prefs := store.Preferences{Theme: theme, Currency: currency}
		if err := s.prefs.SavePreferences(r.Context(), prefs); err != nil {
			slog.ErrorContext(r.Context(), "Save preferences failed", "error", err)
			writeDomainError(w, err)
			return
		}

		// Insight text embeds the currency symbol.
		s.invalidateReports()
		writeJSON(w, http.StatusOK, preferencesPayload{Theme: prefs.Theme, Currency: prefs.Currency})

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut)
	}
}

// handleCategories returns the form vocabularies for both transaction types.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{
		"income":  core.IncomeCategories,
		"expense": core.ExpenseCategories,
	})
}
