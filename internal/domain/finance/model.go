package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is one spend entry. Independent of any visit; grouped only by
// calendar date for reporting.
type Expense struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	Date      time.Time       `db:"date" json:"date"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// SourceBreakdown is one income row of the daily report: how many visits a
// referral source brought in and what they billed.
type SourceBreakdown struct {
	Source string          `json:"source"`
	Count  int             `json:"count"`
	Income decimal.Decimal `json:"income"`
}

// DailyReport aggregates one calendar day: visit income grouped by patient
// source, the day's expenses, and the totals.
type DailyReport struct {
	Date          string            `json:"date"`
	Sources       []SourceBreakdown `json:"sources"`
	Expenses      []*Expense        `json:"expenses"`
	TotalIncome   decimal.Decimal   `json:"total_income"`
	TotalExpenses decimal.Decimal   `json:"total_expenses"`
	Net           decimal.Decimal   `json:"net"`
}
