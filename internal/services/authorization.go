package services

import "finflow/internal/models"

// authority is the approval capacity a principal acts in.
type authority int

const (
	authorityNone authority = iota
	authorityDirector
	authorityAccountant
)

// resolveAuthority maps a principal to the capacity in which it may decide requests.
// Superusers act as directors.
func resolveAuthority(p models.Principal) authority {
	if p.IsSuperuser {
		return authorityDirector
	}
	switch p.Role {
	case models.RoleDirector:
		return authorityDirector
	case models.RoleAccountant:
		return authorityAccountant
	case models.RoleSecretary, models.RoleEmployee, models.RoleNone:
		return authorityNone
	}
	return authorityNone
}

// canDisburse reports whether p may hand out approved cash.
func canDisburse(p models.Principal) bool {
	if p.IsSuperuser {
		return true
	}
	switch p.Role {
	case models.RoleDirector, models.RoleAccountant, models.RoleSecretary:
		return true
	case models.RoleEmployee, models.RoleNone:
		return false
	}
	return false
}

// canReview reports whether p may validate or reject expense reports.
func canReview(p models.Principal) bool {
	return resolveAuthority(p) != authorityNone
}

// canManageFund reports whether p may deposit into the fund.
func canManageFund(p models.Principal) bool {
	return resolveAuthority(p) != authorityNone
}
