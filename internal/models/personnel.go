package models

import "time"

// Personnel is a company staff member and the authenticated principal of the API.
type Personnel struct {
	Base
	Username            string     `gorm:"uniqueIndex;not null" json:"username"`
	Email               string     `gorm:"not null" json:"email"`
	Password            string     `gorm:"not null" json:"-"`
	FirstName           string     `json:"first_name"`
	LastName            string     `json:"last_name"`
	Phone               string     `json:"phone,omitempty"`
	Role                Role       `gorm:"not null;default:'none'" json:"role"`
	IsSuperuser         bool       `gorm:"default:false" json:"is_superuser"`
	IsActive            bool       `gorm:"default:true" json:"is_active"`
	RefreshTokenHash    string     `gorm:"size:64" json:"-"`
	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	LockedUntil         *time.Time `json:"-"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
}

// TableName keeps the plural form stable regardless of inflection rules.
func (Personnel) TableName() string { return "personnel" }

// Principal returns the authorization view of this staff member.
func (p *Personnel) Principal() Principal {
	return Principal{ID: p.ID, IsSuperuser: p.IsSuperuser, Role: p.Role}
}

// FullName joins first and last name.
func (p *Personnel) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
