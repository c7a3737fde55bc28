package core

import (
	"fmt"
	"time"
)

const (
	InsightMonthOverMonth   InsightKind = "month_over_month"
	InsightDominantCategory InsightKind = "dominant_category"
	InsightRegret           InsightKind = "regretful_spending"
	InsightForecast         InsightKind = "forecast"
)

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityAlert   Severity = "alert"
)

// A projection this far above the month-to-date total flips the forecast
// from affirming to cautionary.
const forecastCautionFactor = 1.2

// Minimum share of the month's spending for a category to be called dominant.
const dominantSharePercent = 40

type (
	InsightKind string
	Severity    string

	// Insight is a human-readable observation derived from the transaction
	// history. Insights are ephemeral: recomputed on every pass, never stored.
	Insight struct {
		Kind     InsightKind
		Title    string
		Message  string
		Severity Severity
	}
)

// insightContext carries the aggregates the rules read. Computed once per
// evaluation so each rule stays a pure lookup over the same snapshot.
type insightContext struct {
	currency     string
	monthName    string
	currentTotal Money           // current-month expense total
	priorTotal   Money           // prior-month expense total
	byCategory   []CategoryTotal // current month only, first-occurrence order
	regretCount  int
	regretTotal  Money
	daysElapsed  int
	daysInMonth  int
}

type insightRule func(insightContext) (Insight, bool)

// Rules are independent and evaluated in this fixed order; each fires at
// most once and none depends on whether another fired.
var insightRules = []insightRule{
	monthOverMonthRule,
	dominantCategoryRule,
	regretRule,
	forecastRule,
}

// BuildInsights evaluates the rule set against the given snapshot. The
// currency symbol is supplied by the preference collaborator and is used
// only inside message text; all numeric outputs elsewhere stay raw.
func BuildInsights(txs []Transaction, now time.Time, currency string) []Insight {
	year, month := now.Year(), int(now.Month())
	priorYear, priorMonth := shiftMonth(year, month, -1)

	var currentMonth []Transaction
	for _, t := range txs {
		if t.Type == Expense && t.Date.InMonth(year, month) {
			currentMonth = append(currentMonth, t)
		}
	}

	ctx := insightContext{
		currency:     currency,
		monthName:    now.Month().String(),
		currentTotal: MonthExpenseTotal(txs, year, month),
		priorTotal:   MonthExpenseTotal(txs, priorYear, priorMonth),
		byCategory:   CategoryTotals(currentMonth),
		daysElapsed:  now.Day(),
		daysInMonth:  daysIn(year, month),
	}
	for _, t := range currentMonth {
		if t.Emotion == EmotionRegret {
			ctx.regretCount++
			ctx.regretTotal.Cents += t.Amount.Cents
		}
	}

	var insights []Insight
	for _, rule := range insightRules {
		if in, ok := rule(ctx); ok {
			insights = append(insights, in)
		}
	}
	return insights
}

// monthOverMonthRule compares this month's spending against last month's.
// It stays silent when the prior month had no expenses: there is no baseline
// to compute a percentage against, and an "infinite increase" message would
// mislead more than it informs.
func monthOverMonthRule(ctx insightContext) (Insight, bool) {
	if ctx.priorTotal.Cents <= 0 || ctx.currentTotal.Cents == ctx.priorTotal.Cents {
		return Insight{}, false
	}
	change := float64(ctx.currentTotal.Cents-ctx.priorTotal.Cents) / float64(ctx.priorTotal.Cents) * 100

	if change < 0 {
		return Insight{
			Kind:  InsightMonthOverMonth,
			Title: "Spending Decreased",
			Message: fmt.Sprintf(
				"Your %s expenses dropped by %.1f%% compared to last month. Excellent work! Keep up the good habits.",
				ctx.monthName, -change),
			Severity: SeverityInfo,
		}, true
	}
	return Insight{
		Kind:  InsightMonthOverMonth,
		Title: "Spending Increased",
		Message: fmt.Sprintf(
			"Your %s expenses increased by %.1f%% compared to last month. Consider reviewing your expenses to identify savings opportunities.",
			ctx.monthName, change),
		Severity: SeverityWarning,
	}, true
}

// dominantCategoryRule fires when the single highest-spending category
// accounts for at least 40%% of the month's expenses. Ties resolve to the
// category seen first in the input, matching CategoryTotals ordering.
func dominantCategoryRule(ctx insightContext) (Insight, bool) {
	if len(ctx.byCategory) == 0 || ctx.currentTotal.Cents <= 0 {
		return Insight{}, false
	}
	top := ctx.byCategory[0]
	for _, ct := range ctx.byCategory[1:] {
		if ct.Total.Cents > top.Total.Cents {
			top = ct
		}
	}
	// Integer comparison keeps the 40.0% boundary exact.
	if top.Total.Cents*100 < ctx.currentTotal.Cents*dominantSharePercent {
		return Insight{}, false
	}
	share := float64(top.Total.Cents) / float64(ctx.currentTotal.Cents) * 100
	return Insight{
		Kind:  InsightDominantCategory,
		Title: "Category Alert",
		Message: fmt.Sprintf(
			"You're spending %.0f%% of your money on %s this month (%s%s). Consider setting a category-specific budget or finding cheaper alternatives.",
			share, top.Category, ctx.currency, top.Total.Display()),
		Severity: SeverityWarning,
	}, true
}

func regretRule(ctx insightContext) (Insight, bool) {
	if ctx.regretCount == 0 {
		return Insight{}, false
	}
	plural := ""
	if ctx.regretCount > 1 {
		plural = "s"
	}
	var share float64
	if ctx.currentTotal.Cents > 0 {
		share = float64(ctx.regretTotal.Cents) / float64(ctx.currentTotal.Cents) * 100
	}
	return Insight{
		Kind:  InsightRegret,
		Title: "Regretful Spending",
		Message: fmt.Sprintf(
			"You tagged %d expense%s as \"regret\" this month (%s%s or %.1f%% of total). Before making similar purchases, try waiting 24 hours to see if you still want it.",
			ctx.regretCount, plural, ctx.currency, ctx.regretTotal.Display(), share),
		Severity: SeverityWarning,
	}, true
}

// forecastRule projects month-end spending from the average daily spend over
// the elapsed days.
func forecastRule(ctx insightContext) (Insight, bool) {
	if ctx.daysElapsed <= 0 {
		return Insight{}, false
	}
	avgDaily := float64(ctx.currentTotal.Cents) / float64(ctx.daysElapsed)
	projected := avgDaily * float64(ctx.daysInMonth)
	if projected <= 0 {
		return Insight{}, false
	}

	severity := SeverityInfo
	advice := "Keep up the consistent spending!"
	if projected > float64(ctx.currentTotal.Cents)*forecastCautionFactor {
		severity = SeverityAlert
		advice = "Try to reduce daily spending to stay on track."
	}
	return Insight{
		Kind:  InsightForecast,
		Title: "Spending Forecast",
		Message: fmt.Sprintf(
			"Based on your current spending pattern (%s%.2f/day), you're projected to spend %s%s by month end. %s",
			ctx.currency, avgDaily/100,
			ctx.currency, Money{Cents: int64(projected)}.Display(), advice),
		Severity: severity,
	}, true
}

func daysIn(year, month int) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
