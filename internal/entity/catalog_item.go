package entity

import "time"

// CatalogItem is a reusable product/service entry. Proposals snapshot the
// name and price at creation time, so editing or deleting a catalog item
// never rewrites history.
type CatalogItem struct {
	ID             string     `json:"id" gorm:"primaryKey;size:36"`
	OrganizationID string     `json:"organization_id" gorm:"size:36;not null;index"`
	Nome           string     `json:"nome" gorm:"size:200;not null"`
	Descricao      string     `json:"descricao" gorm:"type:text"`
	PrecoUnitario  float64    `json:"preco_unitario" gorm:"type:decimal(12,2);not null"`
	DescontoMax    float64    `json:"desconto_max" gorm:"type:decimal(5,2);default:0"` // 0 = no limit
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty" gorm:"index"`
}

func (CatalogItem) TableName() string {
	return "catalog_items"
}
