package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Proposal lifecycle status
const (
	ProposalStatusDraft   = "draft"
	ProposalStatusSent    = "sent"
	ProposalStatusExpired = "expired"
)

// Proposal is a commercial quote. Numero is the display key, unique within
// the owning organization. ExpiresAt is always derived from
// CreatedAt + ValidadeDias and is recomputed whenever ValidadeDias changes.
type Proposal struct {
	ID             string `json:"id" gorm:"primaryKey;size:36"`
	OrganizationID string `json:"organization_id" gorm:"size:36;not null;index:idx_proposals_org_numero,unique"`
	VendorID       string `json:"vendor_id" gorm:"size:36;not null;index"`
	Numero         string `json:"numero" gorm:"size:20;not null;index:idx_proposals_org_numero,unique"`

	ClienteNome     string `json:"cliente_nome" gorm:"size:200;not null"`
	ClienteEmail    string `json:"cliente_email" gorm:"size:200"`
	ClienteWhatsapp string `json:"cliente_whatsapp" gorm:"size:30"`
	ClienteEmpresa  string `json:"cliente_empresa" gorm:"size:200"`
	ClienteEndereco string `json:"cliente_endereco" gorm:"size:500"`
	ClienteCpfCnpj  string `json:"cliente_cpf_cnpj" gorm:"size:20"`

	CondicoesPagamento string `json:"condicoes_pagamento" gorm:"type:text"`
	ValidadeDias       int    `json:"validade_dias" gorm:"default:30"`
	Status             string `json:"status" gorm:"size:10;not null;default:draft"`

	// DocumentPath holds the storage path of the last generated PDF.
	// Overwritten on every regeneration; there is no version history.
	DocumentPath string `json:"document_path" gorm:"size:512"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	SentAt    *time.Time `json:"sent_at"`
	ExpiresAt *time.Time `json:"expires_at"`

	Vendor *User          `json:"vendor,omitempty" gorm:"foreignKey:VendorID"`
	Items  []ProposalItem `json:"items,omitempty" gorm:"foreignKey:ProposalID"`
}

func (Proposal) TableName() string {
	return "proposals"
}

// Total sums the recomputed subtotal of every item.
func (p *Proposal) Total() float64 {
	total := decimal.Zero
	for i := range p.Items {
		total = total.Add(p.Items[i].SubtotalDecimal())
	}
	f, _ := total.Round(2).Float64()
	return f
}

// ProposalItem is one line of a proposal. Nome and PrecoUnitario are
// snapshots, not live references to the catalog. Subtotal is denormalized
// for display and reports but never trusted: it is recomputed from
// quantity, price and discount on every write.
type ProposalItem struct {
	ID            string  `json:"id" gorm:"primaryKey;size:36"`
	ProposalID    string  `json:"proposal_id" gorm:"size:36;not null;index"`
	CatalogItemID string  `json:"catalog_item_id" gorm:"size:36"` // optional back-reference, may dangle
	Nome          string  `json:"nome" gorm:"size:200;not null"`
	Descricao     string  `json:"descricao" gorm:"type:text"`
	PrecoUnitario float64 `json:"preco_unitario" gorm:"type:decimal(12,2);not null"`
	Quantidade    int     `json:"quantidade" gorm:"not null;default:1"`
	DescontoPct   float64 `json:"desconto_pct" gorm:"type:decimal(5,2);default:0"`
	Subtotal      float64 `json:"subtotal" gorm:"type:decimal(12,2);not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ProposalItem) TableName() string {
	return "proposal_items"
}

// SubtotalDecimal recomputes quantity × price × (1 − discount/100) with
// decimal arithmetic, rounded to cents.
func (i *ProposalItem) SubtotalDecimal() decimal.Decimal {
	price := decimal.NewFromFloat(i.PrecoUnitario)
	qty := decimal.NewFromInt(int64(i.Quantidade))
	factor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(i.DescontoPct).Div(decimal.NewFromInt(100)))
	return price.Mul(qty).Mul(factor).Round(2)
}

// RecalcSubtotal refreshes the denormalized Subtotal field.
func (i *ProposalItem) RecalcSubtotal() {
	f, _ := i.SubtotalDecimal().Float64()
	i.Subtotal = f
}
