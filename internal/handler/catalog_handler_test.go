package handler

import (
	"net/http"
	"testing"

	"github.com/CocotaJobs/dealexpress-sub000/internal/repository"
	"github.com/CocotaJobs/dealexpress-sub000/internal/service"
	"github.com/CocotaJobs/dealexpress-sub000/internal/testutil"
	"github.com/gin-gonic/gin"
)

func setupCatalogTest(t *testing.T) *gin.Engine {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.SeedOrganization(t, db)
	testutil.SeedUser(t, db, testutil.UserID, testutil.OrgID, "Vendedor Teste", "vendedor@test.com", "senha123")

	repos := repository.NewRepositories(db)
	h := NewCatalogHandler(service.NewCatalogService(repos.Catalog))

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/catalog", h.List)
	api.POST("/catalog", h.Create)
	api.GET("/catalog/:id", h.Get)
	api.PUT("/catalog/:id", h.Update)
	api.DELETE("/catalog/:id", h.Delete)
	return router
}

func TestCatalogCRUD(t *testing.T) {
	router := setupCatalogTest(t)

	w := testutil.DoRequest(router, "POST", "/api/v1/catalog", map[string]interface{}{
		"nome":           "Consultoria",
		"descricao":      "Hora técnica",
		"preco_unitario": 250.0,
		"desconto_max":   15.0,
	}, testutil.DefaultTestToken())
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	item, _ := testutil.ParseResponse(w)["data"].(map[string]interface{})
	id, _ := item["id"].(string)
	if id == "" {
		t.Fatal("create returned no id")
	}

	w = testutil.DoRequest(router, "PUT", "/api/v1/catalog/"+id, map[string]interface{}{
		"nome":           "Consultoria Sênior",
		"preco_unitario": 300.0,
	}, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/catalog/"+id, nil, testutil.DefaultTestToken())
	item, _ = testutil.ParseResponse(w)["data"].(map[string]interface{})
	if item["nome"] != "Consultoria Sênior" {
		t.Errorf("nome = %v", item["nome"])
	}
	if item["preco_unitario"] != 300.0 {
		t.Errorf("preco_unitario = %v", item["preco_unitario"])
	}

	w = testutil.DoRequest(router, "DELETE", "/api/v1/catalog/"+id, nil, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	w = testutil.DoRequest(router, "GET", "/api/v1/catalog/"+id, nil, testutil.DefaultTestToken())
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", w.Code)
	}
}

func TestCatalogValidation(t *testing.T) {
	router := setupCatalogTest(t)

	// Binding failure: missing required fields.
	w := testutil.DoRequest(router, "POST", "/api/v1/catalog", map[string]interface{}{
		"descricao": "sem nome nem preço",
	}, testutil.DefaultTestToken())
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing fields status = %d, want 400", w.Code)
	}

	w = testutil.DoRequest(router, "POST", "/api/v1/catalog", map[string]interface{}{
		"nome":           "Desconto impossível",
		"preco_unitario": 100.0,
		"desconto_max":   120.0,
	}, testutil.DefaultTestToken())
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid desconto_max status = %d, want 422", w.Code)
	}
}

func TestCatalogTenantIsolation(t *testing.T) {
	router := setupCatalogTest(t)

	w := testutil.DoRequest(router, "POST", "/api/v1/catalog", map[string]interface{}{
		"nome":           "Suporte mensal",
		"preco_unitario": 500.0,
	}, testutil.DefaultTestToken())
	item, _ := testutil.ParseResponse(w)["data"].(map[string]interface{})

	other := testutil.GenerateTestToken("intruso", testutil.OtherOrg, "Intruso", "x@y.com", "vendedor")
	w = testutil.DoRequest(router, "GET", "/api/v1/catalog/"+item["id"].(string), nil, other)
	if w.Code != http.StatusNotFound {
		t.Errorf("cross-org get status = %d, want 404", w.Code)
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/catalog", nil, other)
	data, _ := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if items, _ := data["items"].([]interface{}); len(items) != 0 {
		t.Errorf("cross-org list returned %d items, want 0", len(items))
	}
}
