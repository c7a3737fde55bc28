package core

import (
	"testing"
	"time"
)

func TestBuildReport(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	txs := []Transaction{
		income(300000, "Salary", NewDate(2024, 3, 1)),
		expense(4550, "Food", NewDate(2024, 3, 10)),
		expense(50000, "Rent", NewDate(2024, 1, 5)),
	}

	rep := BuildReport(txs, now, Money{Cents: 10000}, "₹")

	if rep.Year != 2024 || rep.Month != 3 {
		t.Errorf("report month = %d-%d, want 2024-3", rep.Year, rep.Month)
	}
	if rep.Overview.Income.Cents != 300000 || rep.Overview.Expense.Cents != 54550 {
		t.Errorf("overview = %+v", rep.Overview)
	}
	if len(rep.MonthlySeries) != 6 {
		t.Errorf("series length = %d, want 6", len(rep.MonthlySeries))
	}
	if len(rep.CategoryTotals) != 2 {
		t.Errorf("category totals = %+v", rep.CategoryTotals)
	}
	// Only the current month counts against the budget.
	if rep.Budget.Spent.Cents != 4550 || rep.Budget.Tier != TierOK {
		t.Errorf("budget = %+v", rep.Budget)
	}
	// Food is the only current-month expense category, so it dominates.
	if _, ok := findInsight(rep.Insights, InsightDominantCategory); !ok {
		t.Error("expected dominant-category insight")
	}
	if rep.Quote != DailyQuote(now) {
		t.Error("quote must match the day's pick")
	}
}

func TestBuildReportEmpty(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	rep := BuildReport(nil, now, Money{}, "₹")

	if rep.Overview.Income.Cents != 0 || rep.Overview.Expense.Cents != 0 {
		t.Errorf("overview = %+v", rep.Overview)
	}
	if len(rep.CategoryTotals) != 0 {
		t.Errorf("category totals = %+v", rep.CategoryTotals)
	}
	if len(rep.MonthlySeries) != 6 {
		t.Errorf("series length = %d, want 6", len(rep.MonthlySeries))
	}
	if rep.Budget.Percentage != 0 {
		t.Errorf("percentage = %v, want 0 with no limit", rep.Budget.Percentage)
	}
}

func TestDailyQuoteStableWithinDay(t *testing.T) {
	morning := time.Date(2024, 3, 15, 0, 0, 1, 0, time.UTC)
	evening := time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC)

	if DailyQuote(morning) != DailyQuote(evening) {
		t.Error("quote changed within a single day")
	}
}

func TestDailyQuoteCyclesOverDays(t *testing.T) {
	seen := map[string]bool{}
	day := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < len(quotes); i++ {
		seen[DailyQuote(day.AddDate(0, 0, i))] = true
	}
	if len(seen) != len(quotes) {
		t.Errorf("got %d distinct quotes over %d days, want %d", len(seen), len(quotes), len(quotes))
	}
}
