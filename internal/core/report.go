package core

import "time"

// Report bundles every derived figure the dashboard renders. It is computed
// from scratch on each call; there is no cache or incremental update at
// this layer.
type Report struct {
	Year           int
	Month          int
	Overview       Overview
	CategoryTotals []CategoryTotal
	MonthlySeries  []MonthlyBucket
	Budget         BudgetStatus
	Insights       []Insight
	Quote          string
}

// BuildReport runs the full aggregation pass over one transaction snapshot.
// The limit is the stored budget for the current month, zero when unset; the
// currency symbol only influences insight message text.
func BuildReport(txs []Transaction, now time.Time, limit Money, currency string) Report {
	return Report{
		Year:           now.Year(),
		Month:          int(now.Month()),
		Overview:       Totals(txs),
		CategoryTotals: CategoryTotals(txs),
		MonthlySeries:  MonthlySeries(txs, now),
		Budget:         BudgetUsage(txs, now, limit),
		Insights:       BuildInsights(txs, now, currency),
		Quote:          DailyQuote(now),
	}
}

var quotes = []string{
	"A penny saved is a penny earned.",
	"It's not about how much money you make, but how much you keep.",
	"Financial freedom is available to those who learn about it and work for it.",
	"The best time to plant a tree was 20 years ago. The second best time is now.",
	"Don't save what is left after spending, spend what is left after saving.",
}

// DailyQuote picks the motivational quote for the given day. The pick is
// keyed on the day of year so the dashboard shows a stable quote all day
// and responses stay cacheable.
func DailyQuote(now time.Time) string {
	return quotes[now.YearDay()%len(quotes)]
}
