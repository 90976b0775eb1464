package entity

import "time"

// Template is an organization-uploaded .docx used as the rendering source
// for proposal documents. At most one template per organization is active at
// a time; activating one deactivates the others in the same transaction.
type Template struct {
	ID             string    `json:"id" gorm:"primaryKey;size:36"`
	OrganizationID string    `json:"organization_id" gorm:"size:36;not null;index"`
	Nome           string    `json:"nome" gorm:"size:200;not null"`
	StoragePath    string    `json:"storage_path" gorm:"size:512;not null"`
	Ativo          bool      `json:"ativo" gorm:"default:false;index"`
	UploadedBy     string    `json:"uploaded_by" gorm:"size:36;not null"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Template) TableName() string {
	return "templates"
}
