package models

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Role is the closed set of staff positions that gate fund operations.
type Role string

const (
	RoleDirector   Role = "director"
	RoleAccountant Role = "accountant"
	RoleSecretary  Role = "secretary"
	RoleEmployee   Role = "employee"
	RoleNone       Role = "none"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleDirector, RoleAccountant, RoleSecretary, RoleEmployee, RoleNone:
		return true
	}
	return false
}

// legacyRoles maps the free-text position labels used by older records.
// Keys are lowercased with accents stripped.
var legacyRoles = map[string]Role{
	"directeur":  RoleDirector,
	"director":   RoleDirector,
	"comptable":  RoleAccountant,
	"accountant": RoleAccountant,
	"secretaire": RoleSecretary,
	"secretary":  RoleSecretary,
	"employe":    RoleEmployee,
	"employee":   RoleEmployee,
}

// ParseRole resolves a canonical role or a legacy position label.
// Unknown or empty input resolves to RoleNone.
func ParseRole(s string) Role {
	key := foldLabel(s)
	if r, ok := legacyRoles[key]; ok {
		return r
	}
	return RoleNone
}

func foldLabel(s string) string {
	// strip nonspacing marks so "Secrétaire" folds to "secretaire"
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// Principal is the authorization view of an acting staff member.
type Principal struct {
	ID          string `json:"id"`
	IsSuperuser bool   `json:"is_superuser"`
	Role        Role   `json:"role"`
}
