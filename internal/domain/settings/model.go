package settings

import "time"

// Well-known setting keys.
const (
	KeyTheme         = "theme"
	KeyLabName       = "lab_name"
	KeyPrintSections = "custom_print_sections"
)

// DefaultLabName is used on printed documents until the lab sets its own.
const DefaultLabName = "Laboratory"

// Setting is one row of the generic key/value store.
type Setting struct {
	Key       string    `db:"key" json:"key"`
	Value     string    `db:"value" json:"value"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CustomPrintSection is user-authored boilerplate injected into printed
// result sheets. The whole array is serialized as JSON into one setting row
// under KeyPrintSections.
type CustomPrintSection struct {
	ID              string `json:"id"`
	Text            string `json:"text"`
	Position        string `json:"position"` // "top" or "bottom"
	Alignment       string `json:"alignment"`
	TextColor       string `json:"text_color"`
	BackgroundColor string `json:"background_color"`
	FontSize        int    `json:"font_size"`
}
