package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "finflow/internal/errors"
	"finflow/internal/models"
	"finflow/internal/pagination"
	"finflow/internal/services"
)

// --- mock fund service ---

type mockFundService struct {
	getFundFn  func() (*models.CashFund, error)
	addFundsFn func(contributor models.Principal, amount decimal.Decimal, kind models.DepositKind, notes string) (*models.FundingHistoryEntry, error)
}

func (m *mockFundService) EnsureFund() (*models.CashFund, error) {
	return &models.CashFund{}, nil
}

func (m *mockFundService) GetFund() (*models.CashFund, error) {
	if m.getFundFn != nil {
		return m.getFundFn()
	}
	return &models.CashFund{Code: "main"}, nil
}

func (m *mockFundService) AddFunds(contributor models.Principal, amount decimal.Decimal, kind models.DepositKind, notes string) (*models.FundingHistoryEntry, error) {
	if m.addFundsFn != nil {
		return m.addFundsFn(contributor, amount, kind, notes)
	}
	return &models.FundingHistoryEntry{Amount: amount, DepositKind: kind}, nil
}

func (m *mockFundService) ListFundingHistory(page pagination.PageRequest) (*pagination.PageResponse[models.FundingHistoryEntry], error) {
	resp := pagination.NewPageResponse([]models.FundingHistoryEntry{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockFundService) AdjustBalance(tx *gorm.DB, delta decimal.Decimal, extra map[string]interface{}) (*models.CashFund, error) {
	return &models.CashFund{}, nil
}

// verify interface compliance
var _ services.FundServicer = (*mockFundService)(nil)

func setupFundRouter(handler *FundHandler, role models.Role) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectPrincipal(role))
	auth.GET("/fund", handler.GetFund)
	auth.POST("/fund/deposits", handler.AddFunds)
	auth.GET("/fund/history", handler.ListFundingHistory)
	return r
}

func TestFundHandler_GetFund(t *testing.T) {
	t.Run("returns the balance as a string", func(t *testing.T) {
		svc := &mockFundService{getFundFn: func() (*models.CashFund, error) {
			return &models.CashFund{Code: "main", Balance: decimal.RequireFromString("62000.5")}, nil
		}}
		r := setupFundRouter(NewFundHandler(svc, &mockAuditService{}), models.RoleEmployee)

		rec := doRequest(r, "GET", "/fund", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		fund := parseJSON(t, rec)["fund"].(map[string]interface{})
		if fund["balance"] != "62000.5" {
			t.Errorf("expected balance 62000.5, got %v", fund["balance"])
		}
	})

	t.Run("returns 503 when not initialised", func(t *testing.T) {
		svc := &mockFundService{getFundFn: func() (*models.CashFund, error) { return nil, apperrors.ErrFundNotFound }}
		r := setupFundRouter(NewFundHandler(svc, &mockAuditService{}), models.RoleEmployee)

		rec := doRequest(r, "GET", "/fund", "")

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
	})
}

func TestFundHandler_AddFunds(t *testing.T) {
	t.Run("returns 201 and audits", func(t *testing.T) {
		audit := &mockAuditService{}
		r := setupFundRouter(NewFundHandler(&mockFundService{}, audit), models.RoleAccountant)

		rec := doRequest(r, "POST", "/fund/deposits", `{"amount":"50000","deposit_kind":"cheque","notes":"Banque"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if len(audit.calls) != 1 || audit.calls[0].action != "ADD_FUNDS" {
			t.Errorf("expected ADD_FUNDS audit, got %+v", audit.calls)
		}
	})

	t.Run("returns 400 on unknown deposit kind", func(t *testing.T) {
		r := setupFundRouter(NewFundHandler(&mockFundService{}, &mockAuditService{}), models.RoleAccountant)

		rec := doRequest(r, "POST", "/fund/deposits", `{"amount":"50000","deposit_kind":"bitcoin"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 403 from the service", func(t *testing.T) {
		svc := &mockFundService{addFundsFn: func(models.Principal, decimal.Decimal, models.DepositKind, string) (*models.FundingHistoryEntry, error) {
			return nil, apperrors.ErrForbidden
		}}
		r := setupFundRouter(NewFundHandler(svc, &mockAuditService{}), models.RoleEmployee)

		rec := doRequest(r, "POST", "/fund/deposits", `{"amount":"10","deposit_kind":"cash"}`)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})
}
