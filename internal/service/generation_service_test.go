package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/CocotaJobs/dealexpress-sub000/internal/docgen"
	"github.com/CocotaJobs/dealexpress-sub000/internal/entity"
	"github.com/CocotaJobs/dealexpress-sub000/internal/repository"
	"github.com/CocotaJobs/dealexpress-sub000/internal/testutil"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// memStorage is an in-memory ObjectStorage double.
type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{objects: make(map[string][]byte)}
}

func (m *memStorage) Download(ctx context.Context, path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[path]
	if !ok {
		return nil, fmt.Errorf("object %s not found", path)
	}
	return data, nil
}

func (m *memStorage) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = append([]byte(nil), data...)
	return nil
}

func (m *memStorage) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, path)
	return nil
}

func (m *memStorage) PresignedURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	return "https://storage.test/" + path + "?signed", nil
}

// fakeConverter returns a fixed PDF and records what it converted.
type fakeConverter struct {
	lastDocx     []byte
	lastFilename string
	err          error
}

func (f *fakeConverter) ConvertDocxToPDF(ctx context.Context, docxBytes []byte, filename string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastDocx = append([]byte(nil), docxBytes...)
	f.lastFilename = filename
	return []byte("%PDF-1.4 convertido"), nil
}

type genEnv struct {
	svc     *GenerationService
	repos   *repository.Repositories
	db      *gorm.DB
	storage *memStorage
	conv    *fakeConverter
}

func setupGeneration(t *testing.T) *genEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.SeedOrganization(t, db)
	testutil.SeedUser(t, db, testutil.UserID, testutil.OrgID, "Vendedor Teste", "vendedor@test.com", "senha123")

	repos := repository.NewRepositories(db)
	storage := newMemStorage()
	conv := &fakeConverter{}
	svc := NewGenerationService(repos, storage, conv, nil, zap.NewNop())
	return &genEnv{svc: svc, repos: repos, db: db, storage: storage, conv: conv}
}

func (e *genEnv) seedActiveTemplate(t *testing.T, body string) *entity.Template {
	t.Helper()
	ctx := context.Background()
	id := uuid.New().String()
	path := fmt.Sprintf("orgs/%s/templates/%s.docx", testutil.OrgID, id)
	e.storage.Upload(ctx, path, testutil.DocxBytes(t, body), docxContentType)

	tmpl := &entity.Template{
		ID:             id,
		OrganizationID: testutil.OrgID,
		Nome:           "Modelo Padrão",
		StoragePath:    path,
		Ativo:          true,
		UploadedBy:     testutil.UserID,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if err := e.repos.Template.Create(ctx, tmpl); err != nil {
		t.Fatalf("seed template: %v", err)
	}
	return tmpl
}

func TestGenerateRefusesWithoutTemplate(t *testing.T) {
	env := setupGeneration(t)
	p := testutil.SeedProposal(t, env.db, uuid.New().String(), testutil.OrgID, testutil.UserID, "PRP-0001")

	_, err := env.svc.Generate(context.Background(), testutil.OrgID, p.ID)
	if !errors.Is(err, ErrTemplateRequired) {
		t.Fatalf("got %v, want ErrTemplateRequired", err)
	}
}

func TestGenerateHappyPath(t *testing.T) {
	env := setupGeneration(t)
	ctx := context.Background()
	p := testutil.SeedProposal(t, env.db, uuid.New().String(), testutil.OrgID, testutil.UserID, "PRP-0001")
	env.seedActiveTemplate(t, testutil.Paragraph("Prezado {cliente_nome}, proposta {numero_proposta} no total de {valor_total}."))

	result, err := env.svc.Generate(ctx, testutil.OrgID, p.ID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if result.Filename != "Proposta-PRP-0001.pdf" {
		t.Errorf("filename = %q", result.Filename)
	}
	if result.TemplateUsed != "Modelo Padrão" {
		t.Errorf("template used = %q", result.TemplateUsed)
	}
	if !strings.Contains(result.PDFURL, "orgs/"+testutil.OrgID+"/propostas/PRP-0001.pdf") {
		t.Errorf("pdf url = %q", result.PDFURL)
	}
	if !strings.Contains(result.DocxURL, "orgs/"+testutil.OrgID+"/propostas/PRP-0001.docx") {
		t.Errorf("docx url = %q", result.DocxURL)
	}

	// The converted docx carries the substituted values.
	if env.conv.lastFilename != "Proposta-PRP-0001.pdf" {
		t.Errorf("converted filename = %q", env.conv.lastFilename)
	}
	if !bytes.Contains(env.conv.lastDocx, []byte("PK")) {
		t.Errorf("converter did not receive a zip archive")
	}

	// Both artifacts stored under deterministic paths.
	docxPath := fmt.Sprintf("orgs/%s/propostas/PRP-0001.docx", testutil.OrgID)
	pdfPath := fmt.Sprintf("orgs/%s/propostas/PRP-0001.pdf", testutil.OrgID)
	if _, err := env.storage.Download(ctx, docxPath); err != nil {
		t.Errorf("rendered docx not stored: %v", err)
	}
	if pdf, err := env.storage.Download(ctx, pdfPath); err != nil || !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Errorf("pdf not stored: %v", err)
	}

	// DocumentPath persisted on the proposal.
	stored, err := env.repos.Proposal.FindByID(ctx, testutil.OrgID, p.ID)
	if err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if stored.DocumentPath != pdfPath {
		t.Errorf("DocumentPath = %q, want %q", stored.DocumentPath, pdfPath)
	}
}

func TestGenerateRegenerationOverwrites(t *testing.T) {
	env := setupGeneration(t)
	ctx := context.Background()
	p := testutil.SeedProposal(t, env.db, uuid.New().String(), testutil.OrgID, testutil.UserID, "PRP-0001")
	env.seedActiveTemplate(t, testutil.Paragraph("{cliente_nome}"))

	if _, err := env.svc.Generate(ctx, testutil.OrgID, p.ID); err != nil {
		t.Fatalf("first generate: %v", err)
	}
	if _, err := env.svc.Generate(ctx, testutil.OrgID, p.ID); err != nil {
		t.Fatalf("second generate: %v", err)
	}

	// Same path both times, no version suffix.
	count := 0
	for path := range env.storage.objects {
		if strings.Contains(path, "/propostas/") && strings.HasSuffix(path, ".pdf") {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected a single stored pdf, found %d", count)
	}
}

func TestGenerateSurfacesTagErrors(t *testing.T) {
	env := setupGeneration(t)
	p := testutil.SeedProposal(t, env.db, uuid.New().String(), testutil.OrgID, testutil.UserID, "PRP-0001")
	env.seedActiveTemplate(t, testutil.Paragraph("{#items}sem fechamento"))

	_, err := env.svc.Generate(context.Background(), testutil.OrgID, p.ID)
	var genErr *docgen.Error
	if !errors.As(err, &genErr) {
		t.Fatalf("got %v, want *docgen.Error", err)
	}
	if !strings.Contains(genErr.Detalhes, "sem fechamento") {
		t.Errorf("error does not explain the tag problem: %+v", genErr)
	}
}

func TestGenerateConverterFailurePassesThrough(t *testing.T) {
	env := setupGeneration(t)
	p := testutil.SeedProposal(t, env.db, uuid.New().String(), testutil.OrgID, testutil.UserID, "PRP-0001")
	env.seedActiveTemplate(t, testutil.Paragraph("{cliente_nome}"))
	env.conv.err = errors.New("falha ao converter o documento")

	_, err := env.svc.Generate(context.Background(), testutil.OrgID, p.ID)
	if err == nil || err.Error() != "falha ao converter o documento" {
		t.Fatalf("got %v, want converter error passed through", err)
	}

	// No pdf stored, no DocumentPath update.
	stored, _ := env.repos.Proposal.FindByID(context.Background(), testutil.OrgID, p.ID)
	if stored.DocumentPath != "" {
		t.Errorf("DocumentPath set despite failure: %q", stored.DocumentPath)
	}
}

func TestGenerateUnavailableWithoutStorage(t *testing.T) {
	env := setupGeneration(t)
	svc := NewGenerationService(env.repos, nil, nil, nil, zap.NewNop())

	_, err := svc.Generate(context.Background(), testutil.OrgID, "any")
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("got %v, want ErrStorageUnavailable", err)
	}
}

func TestComposeFallbackWorksWithoutTemplate(t *testing.T) {
	env := setupGeneration(t)
	p := testutil.SeedProposal(t, env.db, uuid.New().String(), testutil.OrgID, testutil.UserID, "PRP-0042")

	pdf, filename, err := env.svc.ComposeFallback(context.Background(), testutil.OrgID, p.ID)
	if err != nil {
		t.Fatalf("compose fallback: %v", err)
	}
	if filename != "Proposta-PRP-0042.pdf" {
		t.Errorf("filename = %q", filename)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Errorf("fallback did not produce a PDF")
	}
}

func TestPreviewRendersSpecimenData(t *testing.T) {
	env := setupGeneration(t)
	tmpl := env.seedActiveTemplate(t, testutil.Paragraph("Proposta {numero_proposta} para {cliente_nome}"))

	url, err := env.svc.Preview(context.Background(), testutil.OrgID, tmpl.ID)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if !strings.Contains(url, "/previews/"+tmpl.ID+".pdf") {
		t.Errorf("preview url = %q", url)
	}
	if len(env.conv.lastDocx) == 0 {
		t.Errorf("preview did not run the conversion pipeline")
	}
}
