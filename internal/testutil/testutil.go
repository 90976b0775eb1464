package testutil

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/CocotaJobs/dealexpress-sub000/internal/entity"
	"github.com/CocotaJobs/dealexpress-sub000/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	JWTSecret = "test-secret"

	OrgID    = "org-test-001"
	UserID   = "user-test-001"
	OtherOrg = "org-test-002"
)

// TestEnv holds test environment resources.
type TestEnv struct {
	DB     *gorm.DB
	Router *gin.Engine
	T      *testing.T
}

// SetupTestDB opens an isolated in-memory database and migrates every table.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named memory database keeps tests isolated from each other while the
	// shared cache lets the pool see one schema.
	dsn := fmt.Sprintf("file:test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// One connection keeps the shared-cache memory database alive for the
	// whole test.
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&entity.Organization{},
		&entity.User{},
		&entity.WhatsappStatus{},
		&entity.CatalogItem{},
		&entity.Proposal{},
		&entity.ProposalItem{},
		&entity.Template{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

// SetupRouter creates a gin test router.
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// AuthGroup creates an API group with JWT auth middleware for testing.
func AuthGroup(r *gin.Engine, path string) *gin.RouterGroup {
	return r.Group(path, middleware.JWTAuth(JWTSecret))
}

// GenerateTestToken creates a valid JWT for the given identity.
func GenerateTestToken(userID, orgID, nome, email, role string) string {
	now := time.Now()
	claims := middleware.JWTClaims{
		UserID:         userID,
		OrganizationID: orgID,
		Nome:           nome,
		Email:          email,
		Role:           role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    "dealexpress-test",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
			ID:        fmt.Sprintf("test-jti-%d", now.UnixNano()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(JWTSecret))
	return tokenString
}

// DefaultTestToken returns a token for the default vendor test user.
func DefaultTestToken() string {
	return GenerateTestToken(UserID, OrgID, "Vendedor Teste", "vendedor@test.com", entity.RoleVendedor)
}

// DoRequest executes an HTTP request against the test router.
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON envelope into a map.
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// SeedOrganization creates the default test organization.
func SeedOrganization(t *testing.T, db *gorm.DB) *entity.Organization {
	t.Helper()
	org := &entity.Organization{
		ID:        OrgID,
		Nome:      "Empresa Teste",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := db.Create(org).Error; err != nil {
		t.Fatalf("Failed to seed organization: %v", err)
	}
	return org
}

// SeedUser creates a vendor user with the given password.
func SeedUser(t *testing.T, db *gorm.DB, id, orgID, nome, email, senha string) *entity.User {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte(senha), bcrypt.MinCost)
	user := &entity.User{
		ID:             id,
		OrganizationID: orgID,
		Nome:           nome,
		Email:          email,
		PasswordHash:   string(hash),
		Role:           entity.RoleVendedor,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	return user
}

// SeedProposal creates a draft proposal with two items.
func SeedProposal(t *testing.T, db *gorm.DB, id, orgID, vendorID, numero string) *entity.Proposal {
	t.Helper()
	now := time.Now()
	expires := now.AddDate(0, 0, 30)
	p := &entity.Proposal{
		ID:                 id,
		OrganizationID:     orgID,
		VendorID:           vendorID,
		Numero:             numero,
		ClienteNome:        "Ana Souza",
		ClienteEmail:       "ana@cliente.com.br",
		ClienteEmpresa:     "Cliente Ltda",
		CondicoesPagamento: "À vista",
		ValidadeDias:       30,
		Status:             entity.ProposalStatusDraft,
		CreatedAt:          now,
		UpdatedAt:          now,
		ExpiresAt:          &expires,
		Items: []entity.ProposalItem{
			{
				ID: id + "-item-1", ProposalID: id, Nome: "Consultoria",
				PrecoUnitario: 1000, Quantidade: 2, DescontoPct: 10, Subtotal: 1800,
				CreatedAt: now, UpdatedAt: now,
			},
			{
				ID: id + "-item-2", ProposalID: id, Nome: "Suporte mensal",
				PrecoUnitario: 500, Quantidade: 1, Subtotal: 500,
				CreatedAt: now, UpdatedAt: now,
			},
		},
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("Failed to seed proposal: %v", err)
	}
	return p
}

// DocxBytes builds a minimal .docx archive whose word/document.xml wraps the
// given body in a valid OOXML skeleton.
func DocxBytes(t *testing.T, body string) []byte {
	t.Helper()
	return DocxBytesWithParts(t, map[string]string{
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			body +
			`</w:body></w:document>`,
	})
}

// DocxBytesWithParts builds a .docx archive from explicit part contents.
func DocxBytesWithParts(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if _, ok := parts["[Content_Types].xml"]; !ok {
		parts["[Content_Types].xml"] = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="xml" ContentType="application/xml"/></Types>`
	}
	for name, content := range parts {
		f, err := zw.Create(name)
		if err != nil {
			t.Fatalf("Failed to create zip entry %s: %v", name, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("Failed to write zip entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
	return buf.Bytes()
}

// Paragraph wraps text in a single-run OOXML paragraph.
func Paragraph(text string) string {
	return `<w:p><w:r><w:t xml:space="preserve">` + text + `</w:t></w:r></w:p>`
}

// SplitParagraph fragments text across one run per rune group, imitating how
// word processors split tags while editing.
func SplitParagraph(chunks ...string) string {
	var sb bytes.Buffer
	sb.WriteString(`<w:p>`)
	for _, chunk := range chunks {
		sb.WriteString(`<w:r><w:t xml:space="preserve">`)
		sb.WriteString(chunk)
		sb.WriteString(`</w:t></w:r>`)
	}
	sb.WriteString(`</w:p>`)
	return sb.String()
}
