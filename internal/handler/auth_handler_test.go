package handler

import (
	"net/http"
	"testing"

	"github.com/CocotaJobs/dealexpress-sub000/internal/config"
	"github.com/CocotaJobs/dealexpress-sub000/internal/repository"
	"github.com/CocotaJobs/dealexpress-sub000/internal/service"
	"github.com/CocotaJobs/dealexpress-sub000/internal/testutil"
	"github.com/gin-gonic/gin"
)

func setupAuthTest(t *testing.T) *gin.Engine {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.SeedOrganization(t, db)
	testutil.SeedUser(t, db, testutil.UserID, testutil.OrgID, "Vendedor Teste", "vendedor@test.com", "senha123")

	cfg := &config.Config{}
	cfg.JWT.Secret = testutil.JWTSecret
	repos := repository.NewRepositories(db)
	h := NewAuthHandler(service.NewAuthService(repos.User, nil, cfg))

	router := testutil.SetupRouter()
	router.POST("/api/v1/auth/login", h.Login)
	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/auth/me", h.Me)
	return router
}

func TestLoginSuccess(t *testing.T) {
	router := setupAuthTest(t)

	w := testutil.DoRequest(router, "POST", "/api/v1/auth/login", map[string]string{
		"email": "vendedor@test.com",
		"senha": "senha123",
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data, _ := resp["data"].(map[string]interface{})
	if data["access_token"] == "" || data["access_token"] == nil {
		t.Error("no access token in response")
	}
	user, _ := data["user"].(map[string]interface{})
	if user["organization_id"] != testutil.OrgID {
		t.Errorf("user org = %v", user["organization_id"])
	}
}

func TestLoginWrongPassword(t *testing.T) {
	router := setupAuthTest(t)

	w := testutil.DoRequest(router, "POST", "/api/v1/auth/login", map[string]string{
		"email": "vendedor@test.com",
		"senha": "errada",
	}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	router := setupAuthTest(t)

	w := testutil.DoRequest(router, "POST", "/api/v1/auth/login", map[string]string{
		"email": "ninguem@test.com",
		"senha": "senha123",
	}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestMeRequiresToken(t *testing.T) {
	router := setupAuthTest(t)

	if w := testutil.DoRequest(router, "GET", "/api/v1/auth/me", nil, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("without token: status = %d, want 401", w.Code)
	}

	w := testutil.DoRequest(router, "GET", "/api/v1/auth/me", nil, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("with token: status = %d, body = %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data, _ := resp["data"].(map[string]interface{})
	if data["email"] != "vendedor@test.com" {
		t.Errorf("me returned %v", data["email"])
	}
}
