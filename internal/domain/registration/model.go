package registration

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/labdesk/labdesk/internal/domain/patient"
	"github.com/labdesk/labdesk/internal/domain/result"
)

// Input is one editable registration form: patient demographics, the visit,
// and the selected tests. PatientID and VisitID are nil until the first
// successful save; after that the server fills them in and every later save
// updates instead of creating.
type Input struct {
	PatientID *uuid.UUID `json:"patient_id,omitempty"`
	Name      string     `json:"name"`
	Age       *int       `json:"age,omitempty"`
	Gender    *string    `json:"gender,omitempty"`
	Phone     *string    `json:"phone,omitempty"`
	Source    *string    `json:"source,omitempty"`

	VisitID   *uuid.UUID       `json:"visit_id,omitempty"`
	VisitDate time.Time        `json:"visit_date,omitempty"`
	TotalCost *decimal.Decimal `json:"total_cost,omitempty"`
	TestIDs   []uuid.UUID      `json:"test_ids"`
}

// Clone returns a deep copy of the form: the test-id slice and every pointer
// field get their own backing storage, so a mutation of one copy can never
// reach the other.
func (in Input) Clone() Input {
	cp := in
	cp.PatientID = clonePtr(in.PatientID)
	cp.Age = clonePtr(in.Age)
	cp.Gender = clonePtr(in.Gender)
	cp.Phone = clonePtr(in.Phone)
	cp.Source = clonePtr(in.Source)
	cp.VisitID = clonePtr(in.VisitID)
	cp.TotalCost = clonePtr(in.TotalCost)
	cp.TestIDs = slices.Clone(in.TestIDs)
	return cp
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Registration is the durable outcome of a save: the patient, the visit and
// the full result set, plus the test-to-result mapping the editing surface
// needs so later field edits hit the existing rows.
type Registration struct {
	Patient   *patient.Patient        `json:"patient"`
	Visit     *patient.Visit          `json:"visit"`
	Results   []*result.TestResult    `json:"results"`
	ResultIDs map[uuid.UUID]uuid.UUID `json:"result_ids"`
}
