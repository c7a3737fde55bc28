package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	EmotionNone    Emotion = ""
	EmotionHappy   Emotion = "happy"
	EmotionNeutral Emotion = "neutral"
	EmotionRegret  Emotion = "regret"
)

type (
	TransactionType string

	// Emotion is an optional self-reported feeling attached to a transaction.
	Emotion string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is a single income or expense record. Amount is always a
	// non-negative magnitude; direction is carried by Type, never by sign.
	Transaction struct {
		ID       int64
		Title    string
		Amount   Money
		Type     TransactionType
		Category string
		Date     Date
		Emotion  Emotion // optional
		Notes    string  // optional
	}
)

// Category vocabularies offered by the transaction form. The aggregation
// functions stay generic over arbitrary category strings; only the write
// path enforces membership.
var (
	IncomeCategories = []string{
		"Salary", "Freelance", "Business", "Investment", "Gift", "Other",
	}
	ExpenseCategories = []string{
		"Food", "Rent", "Transport", "Bills", "Shopping",
		"Entertainment", "Healthcare", "Education", "Travel", "Other",
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidEmotion  = errors.New("invalid emotion")
	ErrEmptyTitle      = errors.New("empty title")
	ErrUnknownCategory = errors.New("unknown category")
)

// CategoriesFor returns the form vocabulary for a transaction type.
func CategoriesFor(t TransactionType) []string {
	switch t {
	case Income:
		return IncomeCategories
	case Expense:
		return ExpenseCategories
	default:
		return nil
	}
}

func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

func (e Emotion) IsValid() bool {
	switch e {
	case EmotionNone, EmotionHappy, EmotionNeutral, EmotionRegret:
		return true
	default:
		return false
	}
}

// NewDate creates a new Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as 1-12.
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

// InMonth reports whether the date falls inside the given calendar month.
// Comparison is by calendar day, never by timestamp.
func (d Date) InMonth(year, month int) bool {
	return d.Year() == year && d.Month() == month
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Validate checks a transaction on the write path. Aggregation never calls
// this: records already stored are taken as-is, and unknown type or category
// strings are silently excluded from the relevant buckets.
func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(t.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if !t.Emotion.IsValid() {
		return ErrInvalidEmotion
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrUnknownCategory
	}
	for _, c := range CategoriesFor(t.Type) {
		if c == t.Category {
			return nil
		}
	}
	return ErrUnknownCategory
}
