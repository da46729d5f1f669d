package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"finflow/internal/config"
	"finflow/internal/logger"
	"finflow/internal/models"
	"finflow/internal/routes"
	"finflow/internal/services"
	"finflow/internal/testutil"
	"finflow/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	cfg.JWTSecret = "integration-secret"
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	notifier := services.NewLogNotifier("no-reply@test.local")
	fundService := services.NewFundService(db, testutil.TestFundCode)

	router := routes.Register(routes.Services{
		Personnel:       services.NewPersonnelService(db, notifier),
		Fund:            fundService,
		Disbursement:    services.NewDisbursementService(db, fundService, notifier),
		ExpenseReport:   services.NewExpenseReportService(db, 48*time.Hour),
		ExpenseCategory: services.NewExpenseCategoryService(db),
		Supplier:        services.NewSupplierService(db),
		Monitoring:      services.NewMonitoringService(db, fundService, decimal.NewFromInt(100000), 48*time.Hour),
		Site:            services.NewSiteService(db),
		Contract:        services.NewContractService(db, services.NewSiteStatusReaction()),
		Audit:           services.NewAuditService(db),
	}, routes.Options{})

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// object returns result[key] as a JSON object.
func object(t *testing.T, result map[string]interface{}, key string) map[string]interface{} {
	t.Helper()
	obj, ok := result[key].(map[string]interface{})
	if !ok {
		t.Fatalf("expected object under %q, got %v", key, result[key])
	}
	return obj
}

// expectStatus fails the test unless rec carries the wanted status code.
func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

// expectErrorCode fails the test unless the response carries the wanted error code.
func expectErrorCode(t *testing.T, rec *httptest.ResponseRecorder, code string) {
	t.Helper()
	errObj := object(t, parseJSON(t, rec), "error")
	if errObj["code"] != code {
		t.Errorf("expected error code %s, got %v", code, errObj["code"])
	}
}

// expectDecimal compares a decimal JSON value with want.
func expectDecimal(t *testing.T, got interface{}, want string) {
	t.Helper()
	d, err := decimal.NewFromString(fmt.Sprint(got))
	if err != nil {
		t.Fatalf("expected decimal, got %v", got)
	}
	if !d.Equal(decimal.RequireFromString(want)) {
		t.Errorf("expected %s, got %s", want, d.String())
	}
}

// staff creates a staff member with the given role and logs them in.
func (app *testApp) staff(t *testing.T, role models.Role) (*models.Personnel, string) {
	t.Helper()
	person := testutil.CreateTestPersonnel(t, app.DB, role)
	access, _ := app.login(t, person.Username, testutil.TestPassword)
	return person, access
}

// login returns the access and refresh tokens for the credentials.
func (app *testApp) login(t *testing.T, username, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"password":%q}`, username, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	expectStatus(t, rec, http.StatusOK)
	result := parseJSON(t, rec)
	return result["access_token"].(string), result["refresh_token"].(string)
}
