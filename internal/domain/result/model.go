package result

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UrineData is the fixed-shape urine-analysis sub-record attached to results
// of urine-type tests. All fields are free text; a fresh record starts from
// the clinical-normal placeholders in DefaultUrineData.
type UrineData struct {
	Colour          string `json:"colour"`
	Aspect          string `json:"aspect"`
	Reaction        string `json:"reaction"`
	SpecificGravity string `json:"specific_gravity"`
	Glucose         string `json:"glucose"`
	Protein         string `json:"protein"`
	Bilirubin       string `json:"bilirubin"`
	Ketones         string `json:"ketones"`
	Nitrite         string `json:"nitrite"`
	Leukocyte       string `json:"leukocyte"`
	Blood           string `json:"blood"`
	PusCells        string `json:"pus_cells"`
	RedCells        string `json:"red_cells"`
	EpithelialCell  string `json:"epithelial_cell"`
	Bacteria        string `json:"bacteria"`
	Crystals        string `json:"crystals"`
	Amorphous       string `json:"amorphous"`
	Mucus           string `json:"mucus"`
	Other           string `json:"other"`
}

// DefaultUrineData returns the placeholder values a urine result starts
// with, so the operator only edits what deviates.
func DefaultUrineData() *UrineData {
	return &UrineData{
		Colour:          "Yellow",
		Aspect:          "Clear",
		Reaction:        "Acidic",
		SpecificGravity: "1.015",
		Glucose:         "Nil",
		Protein:         "Nil",
		Bilirubin:       "Nil",
		Ketones:         "Nil",
		Nitrite:         "Negative",
		Leukocyte:       "Negative",
		Blood:           "Negative",
		PusCells:        "1-2",
		RedCells:        "Nil",
		EpithelialCell:  "Few",
		Bacteria:        "Nil",
		Crystals:        "Nil",
		Amorphous:       "Nil",
		Mucus:           "Nil",
		Other:           "Nil",
	}
}

// TestResult is the outcome of one catalog test within one visit. TestName,
// Unit, NormalRange and Price are snapshots taken from the catalog at
// creation; the result keeps rendering correctly even if the catalog entry
// is later edited or deleted. One row exists per (visit, test) pair.
type TestResult struct {
	ID          uuid.UUID        `db:"id" json:"id"`
	VisitID     uuid.UUID        `db:"visit_id" json:"visit_id"`
	TestID      uuid.UUID        `db:"test_id" json:"test_id"`
	TestName    string           `db:"test_name" json:"test_name"`
	Result      *string          `db:"result" json:"result,omitempty"`
	Unit        *string          `db:"unit" json:"unit,omitempty"`
	NormalRange *string          `db:"normal_range" json:"normal_range,omitempty"`
	Price       *decimal.Decimal `db:"price" json:"price,omitempty"`
	TestType    string           `db:"test_type" json:"test_type"`
	UrineData   *UrineData       `db:"urine_data" json:"urine_data,omitempty"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`
}
