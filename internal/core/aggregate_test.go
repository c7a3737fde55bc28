package core

import (
	"testing"
	"time"
)

func expense(amount int64, category string, date Date) Transaction {
	return Transaction{
		Title:    category,
		Amount:   Money{Cents: amount},
		Type:     Expense,
		Category: category,
		Date:     date,
	}
}

func income(amount int64, category string, date Date) Transaction {
	return Transaction{
		Title:    category,
		Amount:   Money{Cents: amount},
		Type:     Income,
		Category: category,
		Date:     date,
	}
}

func TestCategoryTotals(t *testing.T) {
	txs := []Transaction{
		expense(10000, "Food", NewDate(2024, 1, 5)),
		expense(5000, "Food", NewDate(2024, 1, 10)),
		expense(5000, "Rent", NewDate(2024, 1, 15)),
		income(90000, "Salary", NewDate(2024, 1, 1)), // excluded
	}
	got := CategoryTotals(txs)
	if len(got) != 2 {
		t.Fatalf("len=%d, want 2", len(got))
	}
	if got[0].Category != "Food" || got[0].Total.Cents != 15000 {
		t.Fatalf("first bucket=%+v, want Food/15000", got[0])
	}
	if got[1].Category != "Rent" || got[1].Total.Cents != 5000 {
		t.Fatalf("second bucket=%+v, want Rent/5000", got[1])
	}
}

func TestCategoryTotalsFirstOccurrenceOrder(t *testing.T) {
	txs := []Transaction{
		expense(100, "Travel", NewDate(2024, 3, 1)),
		expense(900, "Food", NewDate(2024, 3, 2)),
		expense(500, "Travel", NewDate(2024, 3, 3)),
	}
	got := CategoryTotals(txs)
	if got[0].Category != "Travel" || got[1].Category != "Food" {
		t.Fatalf("order=%v/%v, want Travel then Food", got[0].Category, got[1].Category)
	}
}

func TestCategoryTotalsNoNormalization(t *testing.T) {
	txs := []Transaction{
		expense(100, "food", NewDate(2024, 3, 1)),
		expense(200, "Food", NewDate(2024, 3, 2)),
		expense(300, "Food ", NewDate(2024, 3, 3)),
	}
	if got := CategoryTotals(txs); len(got) != 3 {
		t.Fatalf("case and whitespace variants must stay distinct, got %d buckets", len(got))
	}
}

func TestCategoryTotalsEmpty(t *testing.T) {
	if got := CategoryTotals(nil); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
	onlyIncome := []Transaction{income(100, "Salary", NewDate(2024, 1, 1))}
	if got := CategoryTotals(onlyIncome); len(got) != 0 {
		t.Fatalf("expected empty result for income-only list, got %v", got)
	}
}

// The sum over all category totals must equal the sum over all expense
// transactions, whatever the input.
func TestCategoryTotalsConservation(t *testing.T) {
	txs := []Transaction{
		expense(137, "Food", NewDate(2024, 1, 1)),
		expense(263, "Rent", NewDate(2024, 2, 1)),
		expense(555, "Food", NewDate(2024, 5, 1)),
		expense(1, "Other", NewDate(2023, 12, 31)),
		income(999, "Gift", NewDate(2024, 1, 1)),
		{Title: "?", Amount: Money{Cents: 777}, Type: "transfer", Category: "Food", Date: NewDate(2024, 1, 2)},
	}
	var want int64
	for _, tx := range txs {
		if tx.Type == Expense {
			want += tx.Amount.Cents
		}
	}
	var got int64
	for _, ct := range CategoryTotals(txs) {
		got += ct.Total.Cents
	}
	if got != want {
		t.Fatalf("category totals sum=%d, expense sum=%d", got, want)
	}
}

func TestMonthlySeriesShape(t *testing.T) {
	now := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	got := MonthlySeries(nil, now)
	if len(got) != 6 {
		t.Fatalf("len=%d, want 6", len(got))
	}
	wantMonths := []struct {
		year, month int
		label       string
	}{
		{2023, 10, "Oct"}, {2023, 11, "Nov"}, {2023, 12, "Dec"},
		{2024, 1, "Jan"}, {2024, 2, "Feb"}, {2024, 3, "Mar"},
	}
	for i, w := range wantMonths {
		b := got[i]
		if b.Year != w.year || b.Month != w.month || b.Label != w.label {
			t.Fatalf("bucket %d = %d-%d %q, want %d-%d %q", i, b.Year, b.Month, b.Label, w.year, w.month, w.label)
		}
		if b.Income.Cents != 0 || b.Expense.Cents != 0 {
			t.Fatalf("bucket %d not zero for empty input: %+v", i, b)
		}
	}
}

func TestMonthlySeriesBucketing(t *testing.T) {
	now := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)
	txs := []Transaction{
		income(50000, "Salary", NewDate(2024, 6, 1)),
		expense(12000, "Food", NewDate(2024, 6, 5)),
		expense(8000, "Rent", NewDate(2024, 4, 30)),  // month boundary, last day
		expense(100, "Food", NewDate(2024, 1, 1)),    // oldest bucket, first day
		expense(9999, "Food", NewDate(2023, 12, 31)), // outside the window
		income(777, "Gift", NewDate(2024, 7, 1)),     // future, outside the window
	}
	got := MonthlySeries(txs, now)

	if got[5].Income.Cents != 50000 || got[5].Expense.Cents != 12000 {
		t.Fatalf("June bucket=%+v", got[5])
	}
	if got[3].Expense.Cents != 8000 {
		t.Fatalf("April bucket=%+v, want expense 8000", got[3])
	}
	if got[0].Expense.Cents != 100 {
		t.Fatalf("January bucket=%+v, want expense 100", got[0])
	}

	// Everything inside the window is accounted for, nothing else.
	var income6, expense6 int64
	for _, b := range got {
		income6 += b.Income.Cents
		expense6 += b.Expense.Cents
	}
	if income6 != 50000 || expense6 != 20100 {
		t.Fatalf("window sums income=%d expense=%d, want 50000/20100", income6, expense6)
	}
}

func TestBudgetUsage(t *testing.T) {
	now := time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC)
	txs := []Transaction{
		expense(120000, "Rent", NewDate(2024, 1, 3)),
		expense(5000, "Food", NewDate(2023, 12, 28)), // prior month, ignored
	}

	got := BudgetUsage(txs, now, Money{Cents: 100000})
	if got.Spent.Cents != 120000 {
		t.Fatalf("spent=%d, want 120000", got.Spent.Cents)
	}
	if got.Remaining.Cents != -20000 {
		t.Fatalf("remaining=%d, want -20000", got.Remaining.Cents)
	}
	if got.Percentage != 120 {
		t.Fatalf("percentage=%v, want 120", got.Percentage)
	}
	if got.Tier != TierExceeded {
		t.Fatalf("tier=%v, want exceeded", got.Tier)
	}
}

func TestBudgetUsageZeroLimit(t *testing.T) {
	now := time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC)
	txs := []Transaction{expense(5000, "Food", NewDate(2024, 1, 5))}

	got := BudgetUsage(txs, now, Money{})
	if got.Percentage != 0 {
		t.Fatalf("percentage=%v, want 0 when no budget is set", got.Percentage)
	}
	if got.Remaining.Cents != -5000 {
		t.Fatalf("remaining=%d, want -5000", got.Remaining.Cents)
	}
	if got.Tier != TierOK {
		t.Fatalf("tier=%v, want ok", got.Tier)
	}
}

func TestBudgetTierBoundaries(t *testing.T) {
	cases := []struct {
		percentage float64
		tier       BudgetTier
	}{
		{0, TierOK},
		{79.9, TierOK},
		{80, TierWarning}, // boundary belongs to the higher tier
		{99.9, TierWarning},
		{100, TierExceeded},
		{250, TierExceeded},
	}
	for _, tc := range cases {
		if got := tierFor(tc.percentage); got != tc.tier {
			t.Fatalf("tierFor(%v)=%v, want %v", tc.percentage, got, tc.tier)
		}
	}
}

func TestTotals(t *testing.T) {
	txs := []Transaction{
		income(300000, "Salary", NewDate(2024, 1, 1)),
		expense(120000, "Rent", NewDate(2024, 1, 3)),
		expense(30000, "Food", NewDate(2024, 1, 8)),
	}
	got := Totals(txs)
	if got.Income.Cents != 300000 || got.Expense.Cents != 150000 || got.Balance.Cents != 150000 {
		t.Fatalf("overview=%+v", got)
	}

	// Balance goes negative when spending outruns income.
	got = Totals(txs[1:])
	if got.Balance.Cents != -150000 {
		t.Fatalf("balance=%d, want -150000", got.Balance.Cents)
	}
}

func TestShiftMonth(t *testing.T) {
	cases := []struct {
		year, month, delta int
		wantY, wantM       int
	}{
		{2024, 3, -5, 2023, 10},
		{2024, 1, -1, 2023, 12},
		{2024, 12, 1, 2025, 1},
		{2024, 6, 0, 2024, 6},
	}
	for _, tc := range cases {
		y, m := shiftMonth(tc.year, tc.month, tc.delta)
		if y != tc.wantY || m != tc.wantM {
			t.Fatalf("shiftMonth(%d,%d,%d)=%d,%d want %d,%d", tc.year, tc.month, tc.delta, y, m, tc.wantY, tc.wantM)
		}
	}
}
