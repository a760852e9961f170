package finance

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/labdesk/labdesk/internal/domain/patient"
)

// reportVisitLimit caps how many visits one daily report reads. A lab doing
// more encounters than this in a day has outgrown this report.
const reportVisitLimit = 5000

// UnspecifiedSource groups visits whose patient has no source recorded.
const UnspecifiedSource = "unspecified"

// VisitSource is the slice of the patient service the report aggregation
// reads. Satisfied by *patient.Service.
type VisitSource interface {
	ListVisits(ctx context.Context, f patient.VisitFilter, limit, offset int) ([]*patient.Visit, int, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

type Service struct {
	expenses ExpenseRepository
	visits   VisitSource
}

func NewService(expenses ExpenseRepository, visits VisitSource) *Service {
	return &Service{expenses: expenses, visits: visits}
}

// -- Expenses --

func (s *Service) CreateExpense(ctx context.Context, e *Expense) error {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return fmt.Errorf("name is required")
	}
	if e.Amount.IsNegative() {
		return fmt.Errorf("amount must not be negative")
	}
	if e.Date.IsZero() {
		e.Date = time.Now()
	}
	return s.expenses.Create(ctx, e)
}

func (s *Service) GetExpense(ctx context.Context, id uuid.UUID) (*Expense, error) {
	return s.expenses.GetByID(ctx, id)
}

func (s *Service) ListExpenses(ctx context.Context, date string, limit, offset int) ([]*Expense, int, error) {
	return s.expenses.List(ctx, date, limit, offset)
}

func (s *Service) UpdateExpense(ctx context.Context, e *Expense) error {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return fmt.Errorf("name is required")
	}
	if e.Amount.IsNegative() {
		return fmt.Errorf("amount must not be negative")
	}
	prev, err := s.expenses.GetByID(ctx, e.ID)
	if err != nil {
		return fmt.Errorf("expense not found")
	}
	if e.Date.IsZero() {
		e.Date = prev.Date
	}
	return s.expenses.Update(ctx, e)
}

func (s *Service) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	if _, err := s.expenses.GetByID(ctx, id); err != nil {
		return fmt.Errorf("expense not found")
	}
	return s.expenses.Delete(ctx, id)
}

// -- Daily report --

// Daily aggregates one calendar day (format 2006-01-02): visit income
// grouped by each patient's referral source, plus the day's expenses.
// Visits without a stored total contribute a zero amount but still count.
func (s *Service) Daily(ctx context.Context, date string) (*DailyReport, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("invalid date: %s", date)
	}

	visits, _, err := s.visits.ListVisits(ctx, patient.VisitFilter{Date: date}, reportVisitLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("list visits: %w", err)
	}

	type bucket struct {
		count  int
		income decimal.Decimal
	}
	buckets := make(map[string]*bucket)
	patientSources := make(map[uuid.UUID]string)
	totalIncome := decimal.Zero

	for _, v := range visits {
		source, ok := patientSources[v.PatientID]
		if !ok {
			source = UnspecifiedSource
			if p, err := s.visits.GetPatient(ctx, v.PatientID); err == nil && p.Source != nil && *p.Source != "" {
				source = *p.Source
			}
			patientSources[v.PatientID] = source
		}

		b := buckets[source]
		if b == nil {
			b = &bucket{income: decimal.Zero}
			buckets[source] = b
		}
		b.count++
		if v.TotalCost != nil {
			b.income = b.income.Add(*v.TotalCost)
			totalIncome = totalIncome.Add(*v.TotalCost)
		}
	}

	sources := make([]SourceBreakdown, 0, len(buckets))
	for name, b := range buckets {
		sources = append(sources, SourceBreakdown{Source: name, Count: b.count, Income: b.income})
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Source < sources[j].Source })

	expenses, _, err := s.expenses.List(ctx, date, reportVisitLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	totalExpenses := decimal.Zero
	for _, e := range expenses {
		totalExpenses = totalExpenses.Add(e.Amount)
	}

	return &DailyReport{
		Date:          date,
		Sources:       sources,
		Expenses:      expenses,
		TotalIncome:   totalIncome,
		TotalExpenses: totalExpenses,
		Net:           totalIncome.Sub(totalExpenses),
	}, nil
}
