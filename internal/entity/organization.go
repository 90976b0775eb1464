package entity

import "time"

// Organization is the tenant boundary. Every proposal, template and catalog
// item belongs to exactly one organization.
type Organization struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Nome      string    `json:"nome" gorm:"size:200;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Organization) TableName() string {
	return "organizations"
}
