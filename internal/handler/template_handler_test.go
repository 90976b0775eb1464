package handler

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/CocotaJobs/dealexpress-sub000/internal/repository"
	"github.com/CocotaJobs/dealexpress-sub000/internal/service"
	"github.com/CocotaJobs/dealexpress-sub000/internal/testutil"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// stubStorage keeps uploads in memory so templates can round-trip
// without a bucket.
type stubStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newStubStorage() *stubStorage {
	return &stubStorage{objects: make(map[string][]byte)}
}

func (s *stubStorage) Download(_ context.Context, path string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[path]
	if !ok {
		return nil, fmt.Errorf("objeto não encontrado: %s", path)
	}
	return data, nil
}

func (s *stubStorage) Upload(_ context.Context, path string, data []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = data
	return nil
}

func (s *stubStorage) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, path)
	return nil
}

func (s *stubStorage) PresignedURL(_ context.Context, path string, _ time.Duration) (string, error) {
	return "https://storage.test/" + path + "?signed", nil
}

type stubConverter struct{}

func (stubConverter) ConvertDocxToPDF(_ context.Context, _ []byte, _ string) ([]byte, error) {
	return []byte("%PDF-1.4 convertido"), nil
}

func setupTemplateTest(t *testing.T) (*gin.Engine, *gorm.DB, *stubStorage) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.SeedOrganization(t, db)
	testutil.SeedUser(t, db, testutil.UserID, testutil.OrgID, "Vendedor Teste", "vendedor@test.com", "senha123")

	repos := repository.NewRepositories(db)
	storage := newStubStorage()
	gen := service.NewGenerationService(repos, storage, stubConverter{}, nil, zap.NewNop())
	h := NewTemplateHandler(service.NewTemplateService(repos.Template, storage), gen)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/templates", h.List)
	api.POST("/templates", h.Upload)
	api.POST("/templates/:id/activate", h.Activate)
	api.POST("/templates/:id/preview", h.Preview)
	api.DELETE("/templates/:id", h.Delete)
	return router, db, storage
}

func uploadTemplate(t *testing.T, router *gin.Engine, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest("POST", "/api/v1/templates", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+testutil.DefaultTestToken())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTemplateUpload(t *testing.T) {
	router, _, storage := setupTemplateTest(t)

	docx := testutil.DocxBytes(t, testutil.Paragraph("Olá {cliente_nome}"))
	w := uploadTemplate(t, router, "modelo-padrao.docx", docx)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	data, _ := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["nome"] != "modelo-padrao" {
		t.Errorf("nome = %v, want filename without extension", data["nome"])
	}
	if data["ativo"] != false {
		t.Errorf("new template should start inactive, got ativo = %v", data["ativo"])
	}

	storage.mu.Lock()
	stored := len(storage.objects)
	storage.mu.Unlock()
	if stored != 1 {
		t.Errorf("stored objects = %d, want 1", stored)
	}
}

func TestTemplateUploadRejectsNonDocx(t *testing.T) {
	router, _, _ := setupTemplateTest(t)

	w := uploadTemplate(t, router, "planilha.xls", []byte("not a docx"))
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("wrong extension status = %d, want 422", w.Code)
	}

	w = uploadTemplate(t, router, "falso.docx", []byte("MZ garbage"))
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("non-zip content status = %d, want 422", w.Code)
	}
}

func TestTemplateActivateSwitchesActive(t *testing.T) {
	router, _, _ := setupTemplateTest(t)
	docx := testutil.DocxBytes(t, testutil.Paragraph("v1"))

	w := uploadTemplate(t, router, "primeiro.docx", docx)
	first, _ := testutil.ParseResponse(w)["data"].(map[string]interface{})
	w = uploadTemplate(t, router, "segundo.docx", docx)
	second, _ := testutil.ParseResponse(w)["data"].(map[string]interface{})

	w = testutil.DoRequest(router, "POST", fmt.Sprintf("/api/v1/templates/%s/activate", second["id"]), nil, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("activate status = %d", w.Code)
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/templates", nil, testutil.DefaultTestToken())
	data, _ := testutil.ParseResponse(w)["data"].(map[string]interface{})
	items, _ := data["items"].([]interface{})
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	active := map[string]bool{}
	for _, it := range items {
		tmpl, _ := it.(map[string]interface{})
		active[tmpl["id"].(string)] = tmpl["ativo"] == true
	}
	if !active[second["id"].(string)] || active[first["id"].(string)] {
		t.Errorf("active flags = %v, want only %v active", active, second["id"])
	}
}

func TestTemplatePreview(t *testing.T) {
	router, _, _ := setupTemplateTest(t)
	docx := testutil.DocxBytes(t, testutil.Paragraph("Proposta {numero_proposta} para {cliente_nome}"))

	w := uploadTemplate(t, router, "modelo.docx", docx)
	tmpl, _ := testutil.ParseResponse(w)["data"].(map[string]interface{})

	w = testutil.DoRequest(router, "POST", fmt.Sprintf("/api/v1/templates/%s/preview", tmpl["id"]), nil, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("preview status = %d, body = %s", w.Code, w.Body.String())
	}
	data, _ := testutil.ParseResponse(w)["data"].(map[string]interface{})
	url, _ := data["pdf_url"].(string)
	if !strings.Contains(url, "/previews/") {
		t.Errorf("pdf_url = %q", url)
	}
}

func TestTemplateDelete(t *testing.T) {
	router, _, storage := setupTemplateTest(t)
	docx := testutil.DocxBytes(t, testutil.Paragraph("x"))

	w := uploadTemplate(t, router, "descartavel.docx", docx)
	tmpl, _ := testutil.ParseResponse(w)["data"].(map[string]interface{})

	w = testutil.DoRequest(router, "DELETE", fmt.Sprintf("/api/v1/templates/%s", tmpl["id"]), nil, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}

	storage.mu.Lock()
	stored := len(storage.objects)
	storage.mu.Unlock()
	if stored != 0 {
		t.Errorf("stored objects after delete = %d, want 0", stored)
	}

	w = testutil.DoRequest(router, "DELETE", "/api/v1/templates/inexistente", nil, testutil.DefaultTestToken())
	if w.Code != http.StatusNotFound {
		t.Errorf("delete missing status = %d, want 404", w.Code)
	}
}
