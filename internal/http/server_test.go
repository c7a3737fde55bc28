package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"fintrack/internal/services"
	"fintrack/internal/store/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st := memory.New()
	svc := services.NewTransactionService(st, nil)
	s := NewServer(":0", svc, st, st)
	s.now = func() time.Time {
		return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	}
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func createTx(t *testing.T, s *Server, body string) transactionResponse {
	t.Helper()
	rec := doRequest(s, http.MethodPost, "/api/transactions", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rec.Code, rec.Body.String())
	}
	var out transactionResponse
	decodeBody(t, rec, &out)
	return out
}

const groceries = `{"title":"Groceries","amount":"45.50","type":"expense","category":"Food","date":"2024-03-10","emotion":"neutral"}`

func TestCreateTransaction(t *testing.T) {
	s := newTestServer(t)

	out := createTx(t, s, groceries)
	if out.ID == 0 {
		t.Error("created transaction has no ID")
	}
	if out.AmountCents != 4550 {
		t.Errorf("amount_cents=%d, want 4550", out.AmountCents)
	}
	if out.Type != "expense" || out.Category != "Food" || out.Date != "2024-03-10" {
		t.Errorf("unexpected response: %+v", out)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{not json`, http.StatusBadRequest},
		{"unknown field", `{"title":"a","amount":"1","bogus":true}`, http.StatusBadRequest},
		{"bad amount", `{"title":"a","amount":"-5","type":"expense","category":"Food","date":"2024-03-10"}`, http.StatusUnprocessableEntity},
		{"bad date", `{"title":"a","amount":"5","type":"expense","category":"Food","date":"10/03/2024"}`, http.StatusUnprocessableEntity},
		{"bad type", `{"title":"a","amount":"5","type":"transfer","category":"Food","date":"2024-03-10"}`, http.StatusUnprocessableEntity},
		{"unknown category", `{"title":"a","amount":"5","type":"expense","category":"Lottery","date":"2024-03-10"}`, http.StatusUnprocessableEntity},
		{"empty title", `{"title":"  ","amount":"5","type":"expense","category":"Food","date":"2024-03-10"}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(s, http.MethodPost, "/api/transactions", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status=%d, want %d (body=%s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestTransactionLifecycle(t *testing.T) {
	s := newTestServer(t)
	created := createTx(t, s, groceries)

	rec := doRequest(s, http.MethodGet, "/api/transactions/"+itoa(created.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status=%d", rec.Code)
	}

	updated := `{"title":"Groceries and snacks","amount":"52.00","type":"expense","category":"Food","date":"2024-03-11"}`
	rec = doRequest(s, http.MethodPut, "/api/transactions/"+itoa(created.ID), updated)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status=%d body=%s", rec.Code, rec.Body.String())
	}
	var got transactionResponse
	decodeBody(t, rec, &got)
	if got.AmountCents != 5200 || got.Title != "Groceries and snacks" {
		t.Errorf("update response: %+v", got)
	}

	rec = doRequest(s, http.MethodDelete, "/api/transactions/"+itoa(created.ID), "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", rec.Code)
	}
	rec = doRequest(s, http.MethodGet, "/api/transactions/"+itoa(created.ID), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status=%d, want 404", rec.Code)
	}
}

func TestTransactionByIDErrors(t *testing.T) {
	s := newTestServer(t)

	if rec := doRequest(s, http.MethodGet, "/api/transactions/abc", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("non-numeric id status=%d, want 400", rec.Code)
	}
	if rec := doRequest(s, http.MethodGet, "/api/transactions/999", ""); rec.Code != http.StatusNotFound {
		t.Errorf("missing id status=%d, want 404", rec.Code)
	}
	if rec := doRequest(s, http.MethodPatch, "/api/transactions/1", "{}"); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("PATCH status=%d, want 405", rec.Code)
	}
}

func TestListTransactions(t *testing.T) {
	s := newTestServer(t)
	createTx(t, s, groceries)
	createTx(t, s, `{"title":"Salary","amount":"3000","type":"income","category":"Salary","date":"2024-03-01"}`)

	rec := doRequest(s, http.MethodGet, "/api/transactions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status=%d", rec.Code)
	}
	var out struct {
		Transactions []transactionResponse `json:"transactions"`
	}
	decodeBody(t, rec, &out)
	if len(out.Transactions) != 2 {
		t.Fatalf("len=%d, want 2", len(out.Transactions))
	}
	// Newest date first.
	if out.Transactions[0].Title != "Groceries" {
		t.Errorf("first=%q, want Groceries", out.Transactions[0].Title)
	}
}

func TestListTransactionsMonthFilter(t *testing.T) {
	s := newTestServer(t)
	createTx(t, s, groceries)
	createTx(t, s, `{"title":"Old rent","amount":"500","type":"expense","category":"Rent","date":"2024-01-05"}`)

	rec := doRequest(s, http.MethodGet, "/api/transactions?year=2024&month=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("filtered list status=%d", rec.Code)
	}
	var out struct {
		Transactions []transactionResponse `json:"transactions"`
	}
	decodeBody(t, rec, &out)
	if len(out.Transactions) != 1 || out.Transactions[0].Title != "Old rent" {
		t.Errorf("filtered result=%+v", out.Transactions)
	}

	if rec := doRequest(s, http.MethodGet, "/api/transactions?year=2024", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("year without month status=%d, want 400", rec.Code)
	}
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t)
	createTx(t, s, `{"title":"Salary","amount":"3000","type":"income","category":"Salary","date":"2024-03-01"}`)
	createTx(t, s, groceries)
	createTx(t, s, `{"title":"Old rent","amount":"500","type":"expense","category":"Rent","date":"2024-01-05"}`)

	rec := doRequest(s, http.MethodPut, "/api/budget", `{"month":"2024-03","limit":"100.00"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("set budget status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = doRequest(s, http.MethodGet, "/api/dashboard", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard status=%d", rec.Code)
	}
	var rep reportDTO
	decodeBody(t, rec, &rep)

	if rep.Year != 2024 || rep.Month != 3 {
		t.Errorf("report month=%d-%d", rep.Year, rep.Month)
	}
	if rep.Overview.IncomeCents != 300000 || rep.Overview.ExpenseCents != 54550 {
		t.Errorf("overview=%+v", rep.Overview)
	}
	if rep.Overview.BalanceCents != 300000-54550 {
		t.Errorf("balance=%d", rep.Overview.BalanceCents)
	}
	if len(rep.MonthlySeries) != 6 {
		t.Fatalf("series len=%d, want 6", len(rep.MonthlySeries))
	}
	last := rep.MonthlySeries[5]
	if last.Year != 2024 || last.Month != 3 || last.Label != "Mar" {
		t.Errorf("last bucket=%+v", last)
	}
	// March spent 45.50 of a 100 budget.
	if rep.Budget.SpentCents != 4550 || rep.Budget.Tier != "ok" {
		t.Errorf("budget=%+v", rep.Budget)
	}
	if len(rep.CategoryTotals) != 2 {
		t.Errorf("category totals=%+v", rep.CategoryTotals)
	}
	if rep.Quote == "" {
		t.Error("quote missing")
	}
}

func TestDashboardCacheInvalidation(t *testing.T) {
	s := newTestServer(t)
	createTx(t, s, groceries)

	rec := doRequest(s, http.MethodGet, "/api/dashboard", "")
	var before reportDTO
	decodeBody(t, rec, &before)

	createTx(t, s, `{"title":"Taxi","amount":"10.00","type":"expense","category":"Transport","date":"2024-03-12"}`)

	rec = doRequest(s, http.MethodGet, "/api/dashboard", "")
	var after reportDTO
	decodeBody(t, rec, &after)

	if after.Overview.ExpenseCents != before.Overview.ExpenseCents+1000 {
		t.Errorf("write did not refresh the cached report: before=%d after=%d",
			before.Overview.ExpenseCents, after.Overview.ExpenseCents)
	}
}

func TestDashboardRejectsBadParams(t *testing.T) {
	s := newTestServer(t)
	if rec := doRequest(s, http.MethodGet, "/api/dashboard?month=13", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("month=13 status=%d, want 400", rec.Code)
	}
	if rec := doRequest(s, http.MethodGet, "/api/dashboard?year=abc", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("year=abc status=%d, want 400", rec.Code)
	}
}

func TestBudgetEndpoint(t *testing.T) {
	s := newTestServer(t)
	createTx(t, s, groceries)

	// Unset budget reads back as zero with tier ok.
	rec := doRequest(s, http.MethodGet, "/api/budget", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get budget status=%d", rec.Code)
	}
	var b budgetDTO
	decodeBody(t, rec, &b)
	if b.Month != "2024-03" || b.LimitCents != 0 || b.Tier != "ok" {
		t.Errorf("unset budget=%+v", b)
	}

	rec = doRequest(s, http.MethodPut, "/api/budget", `{"month":"2024-03","limit":"50.00"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("set budget status=%d", rec.Code)
	}
	decodeBody(t, rec, &b)
	// 45.50 of 50.00 is 91%, warning tier.
	if b.SpentCents != 4550 || b.Tier != "warning" {
		t.Errorf("budget after set=%+v", b)
	}

	if rec := doRequest(s, http.MethodPut, "/api/budget", `{"month":"March","limit":"50"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("bad month status=%d, want 400", rec.Code)
	}
	if rec := doRequest(s, http.MethodPut, "/api/budget", `{"month":"2024-03","limit":"-5"}`); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("negative limit status=%d, want 422", rec.Code)
	}

	// A zero limit clears the month back to unset.
	rec = doRequest(s, http.MethodPut, "/api/budget", `{"month":"2024-03","limit":"0"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("clear budget status=%d body=%s", rec.Code, rec.Body.String())
	}
	decodeBody(t, rec, &b)
	if b.LimitCents != 0 || b.Percentage != 0 || b.Tier != "ok" {
		t.Errorf("budget after clear=%+v", b)
	}
}

func TestPreferencesEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/preferences", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get preferences status=%d", rec.Code)
	}
	var p preferencesPayload
	decodeBody(t, rec, &p)
	if p.Theme != "light" || p.Currency != "₹" {
		t.Errorf("defaults=%+v", p)
	}

	rec = doRequest(s, http.MethodPut, "/api/preferences", `{"theme":"dark","currency":"$"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("put preferences status=%d", rec.Code)
	}
	decodeBody(t, rec, &p)
	if p.Theme != "dark" || p.Currency != "$" {
		t.Errorf("after put=%+v", p)
	}

	if rec := doRequest(s, http.MethodPut, "/api/preferences", `{"theme":"neon","currency":"$"}`); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad theme status=%d, want 422", rec.Code)
	}
	if rec := doRequest(s, http.MethodPut, "/api/preferences", `{"theme":"dark","currency":" "}`); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("empty currency status=%d, want 422", rec.Code)
	}
}

func TestCategoriesEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/categories", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("categories status=%d", rec.Code)
	}
	var out map[string][]string
	decodeBody(t, rec, &out)
	if len(out["income"]) != 6 || len(out["expense"]) != 10 {
		t.Errorf("vocabularies: income=%d expense=%d", len(out["income"]), len(out["expense"]))
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	if rec := doRequest(s, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz status=%d", rec.Code)
	}
	if rec := doRequest(s, http.MethodGet, "/readyz", ""); rec.Code != http.StatusOK {
		t.Errorf("readyz status=%d", rec.Code)
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/healthz", "")
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options=%q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options=%q", got)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
