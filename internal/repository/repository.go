package repository

import (
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

// Repositories groups every repository over one shared connection.
type Repositories struct {
	User         *UserRepository
	Organization *OrganizationRepository
	Catalog      *CatalogRepository
	Proposal     *ProposalRepository
	Template     *TemplateRepository
	Whatsapp     *WhatsappRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Organization: NewOrganizationRepository(db),
		Catalog:      NewCatalogRepository(db),
		Proposal:     NewProposalRepository(db),
		Template:     NewTemplateRepository(db),
		Whatsapp:     NewWhatsappRepository(db),
	}
}

// notFound translates gorm's sentinel so callers never import gorm for it.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
