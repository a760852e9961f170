package dashboard

import (
	"time"

	"github.com/labdesk/labdesk/internal/platform/auth"
)

// Layout is one dashboard tile: its grid placement, label and color,
// keyed by the section it opens.
type Layout struct {
	SectionName string    `db:"section_name" json:"section_name"`
	DisplayName string    `db:"display_name" json:"display_name"`
	PositionX   int       `db:"position_x" json:"position_x"`
	PositionY   int       `db:"position_y" json:"position_y"`
	Width       int       `db:"width" json:"width"`
	Height      int       `db:"height" json:"height"`
	Color       string    `db:"color" json:"color"`
	Route       string    `db:"route" json:"route"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// sectionActions maps each section to the permission flag that makes its
// tile visible. Browsing sections gate on view; administrative ones on
// access.
var sectionActions = map[string]string{
	"tests":    auth.ActionAccess,
	"patients": auth.ActionView,
	"results":  auth.ActionView,
	"reports":  auth.ActionView,
	"settings": auth.ActionAccess,
	"accounts": auth.ActionAccess,
}

// DefaultLayouts is the deterministic tile set installed when no layouts
// exist yet: one tile per section, laid out on a 12-column grid.
func DefaultLayouts() []Layout {
	return []Layout{
		{SectionName: "patients", DisplayName: "Patients", Route: "/patients", Color: "#2563eb", PositionX: 0, PositionY: 0, Width: 4, Height: 3},
		{SectionName: "results", DisplayName: "Results", Route: "/results", Color: "#16a34a", PositionX: 4, PositionY: 0, Width: 4, Height: 3},
		{SectionName: "tests", DisplayName: "Tests", Route: "/tests", Color: "#9333ea", PositionX: 8, PositionY: 0, Width: 4, Height: 3},
		{SectionName: "reports", DisplayName: "Reports", Route: "/reports", Color: "#ea580c", PositionX: 0, PositionY: 3, Width: 4, Height: 3},
		{SectionName: "settings", DisplayName: "Settings", Route: "/settings", Color: "#64748b", PositionX: 4, PositionY: 3, Width: 4, Height: 3},
		{SectionName: "accounts", DisplayName: "Accounts", Route: "/accounts", Color: "#0f766e", PositionX: 8, PositionY: 3, Width: 4, Height: 3},
	}
}

// ValidSection reports whether the section has a known tile.
func ValidSection(name string) bool {
	_, ok := sectionActions[name]
	return ok
}
