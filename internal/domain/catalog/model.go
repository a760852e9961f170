package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Test types. Urine tests carry the structured urine-analysis sub-form on
// their results.
const (
	TypeStandard = "standard"
	TypeUrine    = "urine"
)

// Test maps to the tests table: one orderable catalog entry. Unit and
// NormalRange are cached onto results at creation time and kept in sync
// when the catalog entry changes.
type Test struct {
	ID          uuid.UUID        `db:"id" json:"id"`
	Name        string           `db:"name" json:"name"`
	Unit        *string          `db:"unit" json:"unit,omitempty"`
	NormalRange *string          `db:"normal_range" json:"normal_range,omitempty"` // may be multi-line
	Price       *decimal.Decimal `db:"price" json:"price,omitempty"`
	TestType    string           `db:"test_type" json:"test_type"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`
}

// DefaultCatalog is the fixed seed catalog installed by the idempotent
// initializer. Matching is by normalized lowercase name, so re-running the
// initializer never duplicates rows.
func DefaultCatalog() []Test {
	return []Test{
		seedTest("CBC", "g/dL", "M: 13-17\nF: 12-16", "8", TypeStandard),
		seedTest("Fasting Blood Sugar", "mg/dL", "70-110", "3", TypeStandard),
		seedTest("Random Blood Sugar", "mg/dL", "70-140", "3", TypeStandard),
		seedTest("HbA1c", "%", "4.0-5.6", "10", TypeStandard),
		seedTest("Blood Urea", "mg/dL", "15-45", "4", TypeStandard),
		seedTest("Serum Creatinine", "mg/dL", "M: 0.7-1.3\nF: 0.6-1.1", "4", TypeStandard),
		seedTest("Uric Acid", "mg/dL", "M: 3.4-7.0\nF: 2.4-6.0", "4", TypeStandard),
		seedTest("ALT (GPT)", "U/L", "Up to 41", "5", TypeStandard),
		seedTest("AST (GOT)", "U/L", "Up to 40", "5", TypeStandard),
		seedTest("Total Cholesterol", "mg/dL", "Up to 200", "5", TypeStandard),
		seedTest("Triglycerides", "mg/dL", "Up to 150", "5", TypeStandard),
		seedTest("TSH", "mIU/L", "0.4-4.2", "9", TypeStandard),
		seedTest("CRP", "mg/L", "Up to 6", "6", TypeStandard),
		seedTest("ESR", "mm/hr", "M: up to 15\nF: up to 20", "3", TypeStandard),
		seedTest("Stool Examination", "", "", "5", TypeStandard),
	}
}

// UrineTestName is the catalog name of the structured urine analysis entry.
const UrineTestName = "General Urine Exam"

// UrineTest is the seed entry for the structured urine analysis.
func UrineTest() Test {
	return seedTest(UrineTestName, "", "", "5", TypeUrine)
}

func seedTest(name, unit, normalRange, price, testType string) Test {
	t := Test{Name: name, TestType: testType}
	if unit != "" {
		t.Unit = &unit
	}
	if normalRange != "" {
		t.NormalRange = &normalRange
	}
	if price != "" {
		p := decimal.RequireFromString(price)
		t.Price = &p
	}
	return t
}
