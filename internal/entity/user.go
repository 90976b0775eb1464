package entity

import "time"

// User roles
const (
	RoleAdmin    = "admin"
	RoleVendedor = "vendedor"
)

// User is a member of an organization. Proposal creators ("vendedores") are
// regular users; their name and email feed the template data map.
type User struct {
	ID             string    `json:"id" gorm:"primaryKey;size:36"`
	OrganizationID string    `json:"organization_id" gorm:"size:36;not null;index"`
	Nome           string    `json:"nome" gorm:"size:200;not null"`
	Email          string    `json:"email" gorm:"size:200;not null;uniqueIndex"`
	PasswordHash   string    `json:"-" gorm:"size:100;not null"`
	Role           string    `json:"role" gorm:"size:20;not null;default:vendedor"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Organization *Organization `json:"organization,omitempty" gorm:"foreignKey:OrganizationID"`
}

func (User) TableName() string {
	return "users"
}

// WhatsappStatus mirrors the connection state reported by the messaging
// gateway webhook. Updates are idempotent upserts keyed by user; the latest
// webhook always wins.
type WhatsappStatus struct {
	UserID    string    `json:"user_id" gorm:"primaryKey;size:36"`
	Estado    string    `json:"estado" gorm:"size:20;not null"` // connected/disconnected/qr_pending
	QRCode    string    `json:"qr_code" gorm:"type:text"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (WhatsappStatus) TableName() string {
	return "whatsapp_status"
}
