package services

import (
	"testing"

	"finflow/internal/models"
)

func TestResolveAuthority(t *testing.T) {
	tests := []struct {
		principal models.Principal
		want      authority
		disburse  bool
	}{
		{models.Principal{Role: models.RoleDirector}, authorityDirector, true},
		{models.Principal{Role: models.RoleAccountant}, authorityAccountant, true},
		{models.Principal{Role: models.RoleSecretary}, authorityNone, true},
		{models.Principal{Role: models.RoleEmployee}, authorityNone, false},
		{models.Principal{Role: models.RoleNone}, authorityNone, false},
		{models.Principal{Role: models.Role("Directeur")}, authorityNone, false},
		{models.Principal{Role: models.RoleEmployee, IsSuperuser: true}, authorityDirector, true},
	}
	for _, tt := range tests {
		if got := resolveAuthority(tt.principal); got != tt.want {
			t.Errorf("resolveAuthority(%+v) = %d, want %d", tt.principal, got, tt.want)
		}
		if got := canDisburse(tt.principal); got != tt.disburse {
			t.Errorf("canDisburse(%+v) = %v, want %v", tt.principal, got, tt.disburse)
		}
		if got := canReview(tt.principal); got != (tt.want != authorityNone) {
			t.Errorf("canReview(%+v) = %v", tt.principal, got)
		}
	}
}
