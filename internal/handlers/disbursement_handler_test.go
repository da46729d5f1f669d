package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "finflow/internal/errors"
	"finflow/internal/models"
	"finflow/internal/pagination"
	"finflow/internal/services"
)

// --- mock disbursement service ---

type mockDisbursementService struct {
	createRequestFn func(requester models.Principal, input services.CreateDisbursementInput) (*models.DisbursementRequest, error)
	approveFn       func(id string, actor models.Principal) (*models.DisbursementRequest, error)
	rejectFn        func(id string, actor models.Principal) (*models.DisbursementRequest, error)
	disburseFn      func(id string, operator models.Principal) (*models.DisbursementRequest, error)
	getRequestFn    func(id string) (*models.DisbursementRequest, error)
	listRequestsFn  func(page pagination.PageRequest, filter services.DisbursementFilter) (*pagination.PageResponse[models.DisbursementRequest], error)
}

func (m *mockDisbursementService) CreateRequest(requester models.Principal, input services.CreateDisbursementInput) (*models.DisbursementRequest, error) {
	if m.createRequestFn != nil {
		return m.createRequestFn(requester, input)
	}
	return &models.DisbursementRequest{}, nil
}

func (m *mockDisbursementService) Approve(id string, actor models.Principal) (*models.DisbursementRequest, error) {
	if m.approveFn != nil {
		return m.approveFn(id, actor)
	}
	return &models.DisbursementRequest{Base: models.Base{ID: id}}, nil
}

func (m *mockDisbursementService) Reject(id string, actor models.Principal) (*models.DisbursementRequest, error) {
	if m.rejectFn != nil {
		return m.rejectFn(id, actor)
	}
	return &models.DisbursementRequest{Base: models.Base{ID: id}}, nil
}

func (m *mockDisbursementService) Disburse(id string, operator models.Principal) (*models.DisbursementRequest, error) {
	if m.disburseFn != nil {
		return m.disburseFn(id, operator)
	}
	return &models.DisbursementRequest{Base: models.Base{ID: id}}, nil
}

func (m *mockDisbursementService) GetRequest(id string) (*models.DisbursementRequest, error) {
	if m.getRequestFn != nil {
		return m.getRequestFn(id)
	}
	return &models.DisbursementRequest{Base: models.Base{ID: id}}, nil
}

func (m *mockDisbursementService) ListRequests(page pagination.PageRequest, filter services.DisbursementFilter) (*pagination.PageResponse[models.DisbursementRequest], error) {
	if m.listRequestsFn != nil {
		return m.listRequestsFn(page, filter)
	}
	resp := pagination.NewPageResponse([]models.DisbursementRequest{}, 1, 20, 0)
	return &resp, nil
}

// verify interface compliance
var _ services.DisbursementServicer = (*mockDisbursementService)(nil)

func setupDisbursementRouter(handler *DisbursementHandler, role models.Role) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectPrincipal(role))
	auth.POST("/disbursements", handler.CreateRequest)
	auth.GET("/disbursements", handler.ListRequests)
	auth.GET("/disbursements/:id", handler.GetRequest)
	auth.POST("/disbursements/:id/approve", handler.Approve)
	auth.POST("/disbursements/:id/reject", handler.Reject)
	auth.POST("/disbursements/:id/disburse", handler.Disburse)
	return r
}

func TestDisbursementHandler_CreateRequest(t *testing.T) {
	t.Run("returns 201 with the request", func(t *testing.T) {
		svc := &mockDisbursementService{
			createRequestFn: func(requester models.Principal, input services.CreateDisbursementInput) (*models.DisbursementRequest, error) {
				if requester.ID != testUserID {
					t.Errorf("expected requester %s, got %s", testUserID, requester.ID)
				}
				if !input.Amount.Equal(decimal.RequireFromString("1500.50")) {
					t.Errorf("expected amount 1500.50, got %s", input.Amount)
				}
				return &models.DisbursementRequest{
					Base:        models.Base{ID: testRequestID},
					RequesterID: requester.ID,
					Amount:      input.Amount,
					Reason:      input.Reason,
					Status:      models.StatusPending,
				}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupDisbursementRouter(NewDisbursementHandler(svc, audit), models.RoleEmployee)

		rec := doRequest(r, "POST", "/disbursements", `{"amount":"1500.50","reason":"Ciment"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		req := parseJSON(t, rec)["request"].(map[string]interface{})
		if req["status"] != "pending" {
			t.Errorf("expected pending, got %v", req["status"])
		}
		if len(audit.calls) != 1 || audit.calls[0].resourceID != testRequestID {
			t.Errorf("expected audit for the new request, got %+v", audit.calls)
		}
	})

	t.Run("accepts numeric amounts", func(t *testing.T) {
		r := setupDisbursementRouter(NewDisbursementHandler(&mockDisbursementService{}, &mockAuditService{}), models.RoleEmployee)

		rec := doRequest(r, "POST", "/disbursements", `{"amount":250,"reason":"Transport"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns 400 when reason missing", func(t *testing.T) {
		r := setupDisbursementRouter(NewDisbursementHandler(&mockDisbursementService{}, &mockAuditService{}), models.RoleEmployee)

		rec := doRequest(r, "POST", "/disbursements", `{"amount":"100"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("passes service validation errors through", func(t *testing.T) {
		svc := &mockDisbursementService{
			createRequestFn: func(models.Principal, services.CreateDisbursementInput) (*models.DisbursementRequest, error) {
				return nil, apperrors.ErrInvalidAmount
			},
		}
		r := setupDisbursementRouter(NewDisbursementHandler(svc, &mockAuditService{}), models.RoleEmployee)

		rec := doRequest(r, "POST", "/disbursements", `{"amount":"-5","reason":"x"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_AMOUNT")
	})
}

func TestDisbursementHandler_Decisions(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		svc      *mockDisbursementService
		wantCode int
		wantErr  string
	}{
		{
			name: "approve succeeds",
			path: "/disbursements/" + testRequestID + "/approve",
			svc: &mockDisbursementService{approveFn: func(id string, actor models.Principal) (*models.DisbursementRequest, error) {
				return &models.DisbursementRequest{Base: models.Base{ID: id}, Status: models.StatusApprovedByDirector}, nil
			}},
			wantCode: http.StatusOK,
		},
		{
			name: "approve already decided",
			path: "/disbursements/" + testRequestID + "/approve",
			svc: &mockDisbursementService{approveFn: func(string, models.Principal) (*models.DisbursementRequest, error) {
				return nil, apperrors.ErrRequestAlreadyDecided
			}},
			wantCode: http.StatusConflict,
			wantErr:  "REQUEST_ALREADY_DECIDED",
		},
		{
			name: "reject forbidden",
			path: "/disbursements/" + testRequestID + "/reject",
			svc: &mockDisbursementService{rejectFn: func(string, models.Principal) (*models.DisbursementRequest, error) {
				return nil, apperrors.ErrForbidden
			}},
			wantCode: http.StatusForbidden,
			wantErr:  "FORBIDDEN",
		},
		{
			name: "disburse insufficient funds",
			path: "/disbursements/" + testRequestID + "/disburse",
			svc: &mockDisbursementService{disburseFn: func(string, models.Principal) (*models.DisbursementRequest, error) {
				return nil, apperrors.ErrInsufficientFunds
			}},
			wantCode: http.StatusConflict,
			wantErr:  "INSUFFICIENT_FUNDS",
		},
		{
			name:     "invalid id",
			path:     "/disbursements/42/disburse",
			svc:      &mockDisbursementService{},
			wantCode: http.StatusBadRequest,
			wantErr:  "INVALID_INPUT",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			audit := &mockAuditService{}
			r := setupDisbursementRouter(NewDisbursementHandler(tt.svc, audit), models.RoleDirector)

			rec := doRequest(r, "POST", tt.path, "")

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
			if tt.wantErr != "" {
				assertErrorCode(t, parseJSON(t, rec), tt.wantErr)
				if len(audit.calls) != 0 {
					t.Error("failed decisions must not be audited")
				}
				return
			}
			if len(audit.calls) != 1 {
				t.Errorf("expected one audit entry, got %d", len(audit.calls))
			}
		})
	}
}

func TestDisbursementHandler_ListRequests(t *testing.T) {
	t.Run("parses filters", func(t *testing.T) {
		svc := &mockDisbursementService{
			listRequestsFn: func(page pagination.PageRequest, filter services.DisbursementFilter) (*pagination.PageResponse[models.DisbursementRequest], error) {
				if filter.Status == nil || *filter.Status != models.StatusApprovedByAccountant {
					t.Error("expected status filter")
				}
				if filter.Disbursed == nil || *filter.Disbursed {
					t.Error("expected disbursed=false filter")
				}
				if filter.SiteID == nil || *filter.SiteID != testSiteID {
					t.Error("expected site filter")
				}
				if filter.FromDate == nil {
					t.Error("expected from_date filter")
				}
				if filter.Reason != "ciment" {
					t.Errorf("expected search text, got %q", filter.Reason)
				}
				resp := pagination.NewPageResponse([]models.DisbursementRequest{}, page.Page, page.PageSize, 0)
				return &resp, nil
			},
		}
		r := setupDisbursementRouter(NewDisbursementHandler(svc, &mockAuditService{}), models.RoleAccountant)

		rec := doRequest(r, "GET", "/disbursements?status=approved_by_accountant&disbursed=false&site_id="+testSiteID+"&from_date=2024-01-01&search=ciment&page=1&page_size=10", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		r := setupDisbursementRouter(NewDisbursementHandler(&mockDisbursementService{}, &mockAuditService{}), models.RoleAccountant)

		rec := doRequest(r, "GET", "/disbursements?status=rejected_by_comptable", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("rejects oversized page", func(t *testing.T) {
		r := setupDisbursementRouter(NewDisbursementHandler(&mockDisbursementService{}, &mockAuditService{}), models.RoleAccountant)

		rec := doRequest(r, "GET", "/disbursements?page_size=1000", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestDisbursementHandler_GetRequest(t *testing.T) {
	t.Run("returns 404 when missing", func(t *testing.T) {
		svc := &mockDisbursementService{
			getRequestFn: func(id string) (*models.DisbursementRequest, error) {
				return nil, apperrors.ErrDisbursementNotFound
			},
		}
		r := setupDisbursementRouter(NewDisbursementHandler(svc, &mockAuditService{}), models.RoleEmployee)

		rec := doRequest(r, "GET", "/disbursements/"+testRequestID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DISBURSEMENT_NOT_FOUND")
	})

	const otherUserID = "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a99"
	tests := []struct {
		name        string
		role        models.Role
		requesterID string
		wantStatus  int
	}{
		{"owner reads own request", models.RoleEmployee, testUserID, http.StatusOK},
		{"employee cannot read another's request", models.RoleEmployee, otherUserID, http.StatusNotFound},
		{"unassigned user cannot read another's request", models.RoleNone, otherUserID, http.StatusNotFound},
		{"secretary reads any request", models.RoleSecretary, otherUserID, http.StatusOK},
		{"accountant reads any request", models.RoleAccountant, otherUserID, http.StatusOK},
		{"director reads any request", models.RoleDirector, otherUserID, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockDisbursementService{
				getRequestFn: func(id string) (*models.DisbursementRequest, error) {
					return &models.DisbursementRequest{Base: models.Base{ID: id}, RequesterID: tt.requesterID}, nil
				},
			}
			r := setupDisbursementRouter(NewDisbursementHandler(svc, &mockAuditService{}), tt.role)

			rec := doRequest(r, "GET", "/disbursements/"+testRequestID, "")

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantStatus == http.StatusNotFound {
				assertErrorCode(t, parseJSON(t, rec), "DISBURSEMENT_NOT_FOUND")
			}
		})
	}
}
