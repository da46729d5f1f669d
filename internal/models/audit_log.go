package models

// AuditLog records sensitive fund and approval operations.
type AuditLog struct {
	Base
	ActorID      string `gorm:"type:uuid;not null;index" json:"actor_id"`
	Action       string `gorm:"not null" json:"action"`
	ResourceType string `gorm:"not null" json:"resource_type"`
	ResourceID   string `gorm:"type:uuid" json:"resource_id"`
	IPAddress    string `json:"ip_address"`
	Changes      string `json:"changes,omitempty"`
}
