package google

import (
	"testing"

	"fintrack/internal/core"
)

func TestMatchRow(t *testing.T) {
	column := [][]any{
		{"ID"}, // header
		{"12"},
		{},        // cleared row
		{float64(34)}, // numbers come back as float64 from the API
		{"not-a-number"},
		{"56"},
	}

	tests := []struct {
		name string
		id   int64
		want int
	}{
		{"first data row", 12, 2},
		{"numeric cell", 34, 4},
		{"last row", 56, 6},
		{"missing id", 99, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchRow(column, tt.id); got != tt.want {
				t.Errorf("matchRow(%d) = %d, want %d", tt.id, got, tt.want)
			}
		})
	}
}

func TestTransactionRow(t *testing.T) {
	tx := core.Transaction{
		ID:       7,
		Title:    "Groceries",
		Amount:   core.Money{Cents: 4550},
		Type:     core.Expense,
		Category: "Food",
		Date:     core.NewDate(2024, 3, 15),
		Emotion:  core.EmotionRegret,
		Notes:    "late night snacks",
	}

	row := transactionRow(tx)
	if len(row) != 8 {
		t.Fatalf("row has %d cells, want 8", len(row))
	}
	if row[0] != int64(7) {
		t.Errorf("ID cell = %v", row[0])
	}
	if row[1] != "2024-03-15" {
		t.Errorf("date cell = %v", row[1])
	}
	if row[3] != 45.5 {
		t.Errorf("amount cell = %v, want 45.5", row[3])
	}
	if row[4] != "expense" || row[6] != "regret" {
		t.Errorf("type/emotion cells = %v/%v", row[4], row[6])
	}
}
