package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "finflow/internal/errors"
	"finflow/internal/models"
	"finflow/internal/pagination"
	"finflow/internal/services"
)

// --- mock category, supplier and monitoring services ---

type mockCategoryService struct {
	listActiveOnly *bool
}

func (m *mockCategoryService) CreateCategory(name string, kind models.ExpenseKind, color string, displayOrder int) (*models.ExpenseCategory, error) {
	if name == "Carburant" {
		return nil, apperrors.ErrDuplicateCategoryName
	}
	return &models.ExpenseCategory{Name: name, Kind: kind, Color: color, Active: true}, nil
}

func (m *mockCategoryService) ListCategories(activeOnly bool) ([]models.ExpenseCategory, error) {
	m.listActiveOnly = &activeOnly
	return []models.ExpenseCategory{}, nil
}

func (m *mockCategoryService) UpdateCategory(id string, name *string, color *string, active *bool, displayOrder *int) (*models.ExpenseCategory, error) {
	return &models.ExpenseCategory{Base: models.Base{ID: id}}, nil
}

type mockSupplierService struct {
	topLimit int
}

func (m *mockSupplierService) CreateSupplier(name, phone, email, specialty string) (*models.Supplier, error) {
	return &models.Supplier{Name: name}, nil
}

func (m *mockSupplierService) GetSupplier(id string) (*models.SupplierSummary, error) {
	return &models.SupplierSummary{Supplier: models.Supplier{Base: models.Base{ID: id}}}, nil
}

func (m *mockSupplierService) ListSuppliers(page pagination.PageRequest, search string) (*pagination.PageResponse[models.Supplier], error) {
	resp := pagination.NewPageResponse([]models.Supplier{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockSupplierService) TopSuppliers(limit int) ([]models.SupplierSummary, error) {
	m.topLimit = limit
	return []models.SupplierSummary{}, nil
}

type mockMonitoringService struct{}

func (m *mockMonitoringService) OverdueDisbursements() ([]models.DisbursementRequest, error) {
	return []models.DisbursementRequest{}, nil
}

func (m *mockMonitoringService) Alerts() ([]services.Alert, error) {
	return []services.Alert{{Kind: services.AlertLowFund, Severity: "warning"}}, nil
}

func (m *mockMonitoringService) LinkStats() (*services.LinkStats, error) {
	return &services.LinkStats{ValidatedTotal: 4, ValidatedLinked: 1, ValidatedUnlinked: 3, LinkRate: 25}, nil
}

// verify interface compliance
var (
	_ services.ExpenseCategoryServicer = (*mockCategoryService)(nil)
	_ services.SupplierServicer        = (*mockSupplierService)(nil)
	_ services.MonitoringServicer      = (*mockMonitoringService)(nil)
)

func TestExpenseCategoryHandler(t *testing.T) {
	svc := &mockCategoryService{}
	h := NewExpenseCategoryHandler(svc, &mockAuditService{})
	r := gin.New()
	auth := r.Group("", injectPrincipal(models.RoleDirector))
	auth.POST("/expense-categories", h.CreateCategory)
	auth.GET("/expense-categories", h.ListCategories)
	auth.PUT("/expense-categories/:id", h.UpdateCategory)

	t.Run("creates", func(t *testing.T) {
		rec := doRequest(r, "POST", "/expense-categories", `{"name":"Ciment","category":"materials","color":"#aabbcc"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("rejects bad color", func(t *testing.T) {
		rec := doRequest(r, "POST", "/expense-categories", `{"name":"Ciment","color":"blue"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("duplicate name", func(t *testing.T) {
		rec := doRequest(r, "POST", "/expense-categories", `{"name":"Carburant"}`)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})

	t.Run("active filter", func(t *testing.T) {
		rec := doRequest(r, "GET", "/expense-categories?active=true", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if svc.listActiveOnly == nil || !*svc.listActiveOnly {
			t.Error("expected active-only listing")
		}
	})

	t.Run("update", func(t *testing.T) {
		rec := doRequest(r, "PUT", "/expense-categories/"+testSiteID, `{"active":false}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})
}

func TestSupplierHandler(t *testing.T) {
	svc := &mockSupplierService{}
	h := NewSupplierHandler(svc)
	r := gin.New()
	auth := r.Group("", injectPrincipal(models.RoleSecretary))
	auth.POST("/suppliers", h.CreateSupplier)
	auth.GET("/suppliers/top", h.TopSuppliers)
	auth.GET("/suppliers/:id", h.GetSupplier)

	t.Run("creates", func(t *testing.T) {
		rec := doRequest(r, "POST", "/suppliers", `{"name":"Ciments du Sahel","email":"contact@sahel.sn"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("rejects bad email", func(t *testing.T) {
		rec := doRequest(r, "POST", "/suppliers", `{"name":"X","email":"not-an-email"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("top with limit", func(t *testing.T) {
		rec := doRequest(r, "GET", "/suppliers/top?limit=3", "")
		if rec.Code != http.StatusOK || svc.topLimit != 3 {
			t.Fatalf("expected 200 with limit 3, got %d / %d", rec.Code, svc.topLimit)
		}
	})

	t.Run("top with bad limit", func(t *testing.T) {
		rec := doRequest(r, "GET", "/suppliers/top?limit=zero", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("get with totals", func(t *testing.T) {
		rec := doRequest(r, "GET", "/suppliers/"+testSiteID, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		supplier := parseJSON(t, rec)["supplier"].(map[string]interface{})
		if _, ok := supplier["total_purchases"]; !ok {
			t.Error("expected total_purchases in the response")
		}
	})
}

func TestMonitoringHandler(t *testing.T) {
	h := NewMonitoringHandler(&mockMonitoringService{})
	r := gin.New()
	r.GET("/monitoring/alerts", h.Alerts)
	r.GET("/monitoring/link-stats", h.LinkStats)
	r.GET("/monitoring/overdue-disbursements", h.OverdueDisbursements)

	rec := doRequest(r, "GET", "/monitoring/alerts", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	alerts := parseJSON(t, rec)["alerts"].([]interface{})
	if len(alerts) != 1 {
		t.Errorf("expected 1 alert, got %d", len(alerts))
	}

	rec = doRequest(r, "GET", "/monitoring/link-stats", "")
	if parseJSON(t, rec)["link_rate"] != float64(25) {
		t.Errorf("expected link rate 25, got %s", rec.Body.String())
	}

	rec = doRequest(r, "GET", "/monitoring/overdue-disbursements", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
