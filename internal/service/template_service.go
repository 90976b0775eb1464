package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CocotaJobs/dealexpress-sub000/internal/entity"
	"github.com/CocotaJobs/dealexpress-sub000/internal/repository"
	"github.com/google/uuid"
)

// ErrInvalidTemplate is returned when an uploaded file is not a .docx
// archive.
var ErrInvalidTemplate = errors.New("arquivo inválido: envie um modelo .docx")

const maxTemplateSize = 10 << 20 // 10 MiB

// TemplateService manages the uploaded .docx templates an organization
// renders its proposals with.
type TemplateService struct {
	repo    *repository.TemplateRepository
	storage ObjectStorage
}

func NewTemplateService(repo *repository.TemplateRepository, storage ObjectStorage) *TemplateService {
	return &TemplateService{repo: repo, storage: storage}
}

func (s *TemplateService) List(ctx context.Context, orgID string) ([]entity.Template, error) {
	return s.repo.List(ctx, orgID)
}

// Upload stores a new template. The file must look like a zip archive (every
// .docx is one); anything else is rejected before touching storage. The new
// template starts inactive.
func (s *TemplateService) Upload(ctx context.Context, orgID, userID, nome string, content []byte) (*entity.Template, error) {
	if s.storage == nil {
		return nil, ErrStorageUnavailable
	}
	if len(content) == 0 || len(content) > maxTemplateSize {
		return nil, ErrInvalidTemplate
	}
	if !bytes.HasPrefix(content, []byte("PK")) {
		return nil, ErrInvalidTemplate
	}

	id := uuid.New().String()
	path := fmt.Sprintf("orgs/%s/templates/%s.docx", orgID, id)
	if err := s.storage.Upload(ctx, path, content, docxContentType); err != nil {
		return nil, fmt.Errorf("upload template: %w", err)
	}

	now := time.Now()
	tmpl := &entity.Template{
		ID:             id,
		OrganizationID: orgID,
		Nome:           nome,
		StoragePath:    path,
		Ativo:          false,
		UploadedBy:     userID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, tmpl); err != nil {
		// Best effort: do not leave an orphan object behind.
		s.storage.Delete(ctx, path)
		return nil, fmt.Errorf("create template: %w", err)
	}
	return tmpl, nil
}

// Activate marks one template active and every other template of the
// organization inactive, in a single transaction.
func (s *TemplateService) Activate(ctx context.Context, orgID, id string) error {
	return s.repo.Activate(ctx, orgID, id)
}

// Delete removes the template row and its stored file. A storage failure
// after the row is gone is logged by the storage layer and ignored; the
// template is no longer reachable either way.
func (s *TemplateService) Delete(ctx context.Context, orgID, id string) error {
	tmpl, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, orgID, id); err != nil {
		return err
	}
	if s.storage != nil {
		s.storage.Delete(ctx, tmpl.StoragePath)
	}
	return nil
}
