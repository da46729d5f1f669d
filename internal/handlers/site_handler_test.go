package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "finflow/internal/errors"
	"finflow/internal/models"
	"finflow/internal/pagination"
	"finflow/internal/services"
)

// --- mock site and contract services ---

type mockSiteService struct {
	createSiteFn func(reference, name, city string, status models.SiteStatus, plannedEnd *time.Time) (*models.ConstructionSite, error)
}

func (m *mockSiteService) CreateSite(reference, name, city string, status models.SiteStatus, plannedEnd *time.Time) (*models.ConstructionSite, error) {
	if m.createSiteFn != nil {
		return m.createSiteFn(reference, name, city, status, plannedEnd)
	}
	return &models.ConstructionSite{Reference: reference, Name: name, Status: status}, nil
}

func (m *mockSiteService) GetSite(id string) (*models.ConstructionSite, error) {
	return nil, apperrors.ErrSiteNotFound
}

func (m *mockSiteService) ListSites(page pagination.PageRequest, status *models.SiteStatus) (*pagination.PageResponse[models.ConstructionSite], error) {
	resp := pagination.NewPageResponse([]models.ConstructionSite{}, 1, 20, 0)
	return &resp, nil
}

type mockContractService struct {
	recordPaymentFn func(id string, amount decimal.Decimal, paidOn time.Time) (*models.Contract, error)
}

func (m *mockContractService) CreateContract(siteID, reference string, total decimal.Decimal, installments int, signedAt *time.Time) (*models.Contract, error) {
	return &models.Contract{SiteID: siteID, Reference: reference, TotalAmount: total, InstallmentsLeft: installments, SignedAt: signedAt}, nil
}

func (m *mockContractService) GetContract(id string) (*models.Contract, error) {
	return &models.Contract{Base: models.Base{ID: id}}, nil
}

func (m *mockContractService) RecordPayment(id string, amount decimal.Decimal, paidOn time.Time) (*models.Contract, error) {
	if m.recordPaymentFn != nil {
		return m.recordPaymentFn(id, amount, paidOn)
	}
	return &models.Contract{Base: models.Base{ID: id}, AmountCollected: amount}, nil
}

// verify interface compliance
var (
	_ services.SiteServicer     = (*mockSiteService)(nil)
	_ services.ContractServicer = (*mockContractService)(nil)
)

func setupSiteRouter(handler *SiteHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectPrincipal(models.RoleDirector))
	auth.POST("/sites", handler.CreateSite)
	auth.GET("/sites", handler.ListSites)
	auth.GET("/sites/:id", handler.GetSite)
	auth.POST("/contracts", handler.CreateContract)
	auth.GET("/contracts/:id", handler.GetContract)
	auth.POST("/contracts/:id/payments", handler.RecordPayment)
	return r
}

func TestSiteHandler_CreateSite(t *testing.T) {
	t.Run("parses the planned end date", func(t *testing.T) {
		svc := &mockSiteService{
			createSiteFn: func(reference, name, city string, status models.SiteStatus, plannedEnd *time.Time) (*models.ConstructionSite, error) {
				if plannedEnd == nil || plannedEnd.Month() != time.June {
					t.Errorf("expected planned end in June, got %v", plannedEnd)
				}
				return &models.ConstructionSite{Reference: reference, Name: name, Status: status}, nil
			},
		}
		r := setupSiteRouter(NewSiteHandler(svc, &mockContractService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/sites", `{"reference":"CH-001","name":"Villa","status":"planning","planned_end":"2025-06-30"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		r := setupSiteRouter(NewSiteHandler(&mockSiteService{}, &mockContractService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/sites", `{"reference":"CH-001","name":"Villa","status":"done"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("unknown site is 404", func(t *testing.T) {
		r := setupSiteRouter(NewSiteHandler(&mockSiteService{}, &mockContractService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/sites/"+testSiteID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestSiteHandler_RecordPayment(t *testing.T) {
	t.Run("defaults the payment date", func(t *testing.T) {
		svc := &mockContractService{
			recordPaymentFn: func(id string, amount decimal.Decimal, paidOn time.Time) (*models.Contract, error) {
				if !paidOn.IsZero() {
					t.Errorf("expected zero date to be passed through, got %v", paidOn)
				}
				return &models.Contract{Base: models.Base{ID: id}, AmountCollected: amount}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupSiteRouter(NewSiteHandler(&mockSiteService{}, svc, audit))

		rec := doRequest(r, "POST", "/contracts/"+testSiteID+"/payments", `{"amount":"400"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if len(audit.calls) != 1 || audit.calls[0].action != "RECORD_PAYMENT" {
			t.Errorf("expected RECORD_PAYMENT audit, got %+v", audit.calls)
		}
	})

	t.Run("rejects a bad date", func(t *testing.T) {
		r := setupSiteRouter(NewSiteHandler(&mockSiteService{}, &mockContractService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/contracts/"+testSiteID+"/payments", `{"amount":"400","paid_on":"yesterday"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
