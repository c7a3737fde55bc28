package core

import "time"

// The aggregation functions in this file are pure: they take an immutable
// snapshot of the transaction list plus the current wall-clock time and
// return freshly computed results. Nothing here performs I/O, mutates its
// input, or keeps state between calls.

const trailingMonths = 6

type (
	// CategoryTotal is an amount aggregated by category name.
	CategoryTotal struct {
		Category string
		Total    Money
	}

	// MonthlyBucket is one month of the trailing income/expense series.
	// Months with no activity still appear with zero totals so the series
	// stays continuous for charting.
	MonthlyBucket struct {
		Year    int
		Month   int // 1-12
		Label   string
		Income  Money
		Expense Money
	}

	// Overview holds whole-history totals. Balance is signed.
	Overview struct {
		Income  Money
		Expense Money
		Balance Money
	}
)

type BudgetTier string

const (
	TierOK       BudgetTier = "ok"
	TierWarning  BudgetTier = "warning"
	TierExceeded BudgetTier = "exceeded"
)

// BudgetStatus describes usage of the current month's budget limit.
// Remaining may be negative (over budget). Percentage is the raw value,
// unbounded above 100; clamping for progress bars is a rendering concern.
type BudgetStatus struct {
	Limit      Money
	Spent      Money
	Remaining  Money
	Percentage float64
	Tier       BudgetTier
}

// CategoryTotals sums expense amounts by category. Categories appear in
// first-occurrence order of the input list; names are taken verbatim with
// no case or whitespace normalization. Non-expense entries are skipped.
func CategoryTotals(txs []Transaction) []CategoryTotal {
	var totals []CategoryTotal
	index := make(map[string]int)
	for _, t := range txs {
		if t.Type != Expense {
			continue
		}
		if i, ok := index[t.Category]; ok {
			totals[i].Total.Cents += t.Amount.Cents
			continue
		}
		index[t.Category] = len(totals)
		totals = append(totals, CategoryTotal{Category: t.Category, Total: t.Amount})
	}
	return totals
}

// MonthlySeries returns exactly six buckets covering the inclusive range
// [month(now)-5, month(now)], ordered oldest to newest.
func MonthlySeries(txs []Transaction, now time.Time) []MonthlyBucket {
	buckets := make([]MonthlyBucket, 0, trailingMonths)
	for i := trailingMonths - 1; i >= 0; i-- {
		year, month := shiftMonth(now.Year(), int(now.Month()), -i)
		b := MonthlyBucket{
			Year:  year,
			Month: month,
			Label: time.Month(month).String()[:3],
		}
		for _, t := range txs {
			if !t.Date.InMonth(year, month) {
				continue
			}
			switch t.Type {
			case Income:
				b.Income.Cents += t.Amount.Cents
			case Expense:
				b.Expense.Cents += t.Amount.Cents
			}
		}
		buckets = append(buckets, b)
	}
	return buckets
}

// MonthExpenseTotal sums expense amounts for one calendar month.
func MonthExpenseTotal(txs []Transaction, year, month int) Money {
	var total Money
	for _, t := range txs {
		if t.Type == Expense && t.Date.InMonth(year, month) {
			total.Cents += t.Amount.Cents
		}
	}
	return total
}

// BudgetUsage derives the current month's budget status from the stored
// limit (zero meaning unset) and the transaction list.
func BudgetUsage(txs []Transaction, now time.Time, limit Money) BudgetStatus {
	spent := MonthExpenseTotal(txs, now.Year(), int(now.Month()))

	status := BudgetStatus{
		Limit:     limit,
		Spent:     spent,
		Remaining: Money{Cents: limit.Cents - spent.Cents},
	}
	if limit.Cents > 0 {
		status.Percentage = float64(spent.Cents) / float64(limit.Cents) * 100
	}
	status.Tier = tierFor(status.Percentage)
	return status
}

// Totals sums income and expense over the whole list.
func Totals(txs []Transaction) Overview {
	var o Overview
	for _, t := range txs {
		switch t.Type {
		case Income:
			o.Income.Cents += t.Amount.Cents
		case Expense:
			o.Expense.Cents += t.Amount.Cents
		}
	}
	o.Balance.Cents = o.Income.Cents - o.Expense.Cents
	return o
}

// Boundary values belong to the higher-severity tier: 80.0 is warning,
// 100.0 is exceeded.
func tierFor(percentage float64) BudgetTier {
	switch {
	case percentage >= 100:
		return TierExceeded
	case percentage >= 80:
		return TierWarning
	default:
		return TierOK
	}
}

// shiftMonth moves a year/month pair by delta months.
func shiftMonth(year, month, delta int) (int, int) {
	t := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, delta, 0)
	return t.Year(), int(t.Month())
}
