package handlers

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"finflow/internal/config"
	"finflow/internal/logger"
	"finflow/internal/models"
	"finflow/internal/validator"
)

const (
	testUserID    = "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b"
	testRequestID = "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a60"
	testReportID  = "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a61"
	testSiteID    = "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a62"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
	logger.Init("test")
	cfg, _ := config.Load()
	cfg.JWTSecret = "handler-test-secret"
}

// auditCall is one captured audit entry.
type auditCall struct {
	actorID      string
	action       string
	resourceType string
	resourceID   string
}

type mockAuditService struct {
	calls []auditCall
}

func (m *mockAuditService) Log(actorID, action, resourceType, resourceID, _ string, _ map[string]any) {
	m.calls = append(m.calls, auditCall{actorID: actorID, action: action, resourceType: resourceType, resourceID: resourceID})
}

// injectPrincipal stands in for the auth and principal middleware.
func injectPrincipal(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", testUserID)
		c.Set("principal", models.Principal{ID: testUserID, Role: role})
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

func fmtBody(format, extra string) string {
	return fmt.Sprintf(format, extra)
}
