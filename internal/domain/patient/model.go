package patient

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Patient maps to the patients table. Source records how the patient reached
// the lab (walk-in, referring clinic, ...) and drives the income breakdown on
// the daily financial report.
type Patient struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Age       *int      `db:"age" json:"age,omitempty"`
	Gender    *string   `db:"gender" json:"gender,omitempty"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Source    *string   `db:"source" json:"source,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Visit is one encounter: a date, the ordered tests, and the bill total.
// PatientName is a snapshot taken at creation so printed documents survive
// later renames. TotalCost is user-editable and never recomputed from test
// prices; SuggestedTotal offers the sum, nothing more.
type Visit struct {
	ID          uuid.UUID        `db:"id" json:"id"`
	PatientID   uuid.UUID        `db:"patient_id" json:"patient_id"`
	PatientName string           `db:"patient_name" json:"patient_name"`
	VisitDate   time.Time        `db:"visit_date" json:"visit_date"`
	TotalCost   *decimal.Decimal `db:"total_cost" json:"total_cost,omitempty"`
	TestIDs     []uuid.UUID      `db:"test_ids" json:"test_ids"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`
}

// VisitFilter narrows visit listings. Date matches the calendar day of
// visit_date (format 2006-01-02).
type VisitFilter struct {
	Date      string
	PatientID *uuid.UUID
}
