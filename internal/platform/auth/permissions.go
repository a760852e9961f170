package auth

// Actions a section grant can carry.
const (
	ActionView   = "view"
	ActionEdit   = "edit"
	ActionPrint  = "print"
	ActionAccess = "access"
)

// SectionGrant holds the per-section permission flags carried on a user
// account (serialized as a JSON blob in the users table).
type SectionGrant struct {
	View   bool `json:"view"`
	Edit   bool `json:"edit"`
	Print  bool `json:"print"`
	Access bool `json:"access"`
}

// PermissionSet maps a dashboard section name (tests, patients, results,
// reports, settings, accounts) to its grants.
//
// A nil set marks a legacy account created before permissions existed and is
// treated as unrestricted (fail-open). A non-nil set is fail-closed: sections
// without an entry, or with the flag unset, are denied.
type PermissionSet map[string]SectionGrant

// Allows reports whether the set grants the named action ("view", "edit",
// "print" or "access") on the section.
func (p PermissionSet) Allows(section, action string) bool {
	if p == nil {
		return true
	}
	g, ok := p[section]
	if !ok {
		return false
	}
	switch action {
	case "view":
		return g.View
	case "edit":
		return g.Edit
	case "print":
		return g.Print
	case "access":
		return g.Access
	}
	return false
}
