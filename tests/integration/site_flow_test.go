package integration

import (
	"fmt"
	"net/http"
	"testing"

	"finflow/internal/models"
)

func TestSiteFlow_ContractPaymentsDriveSiteStatus(t *testing.T) {
	app := setupApp(t)
	_, director := app.staff(t, models.RoleDirector)

	// Step 1: Register a completed site
	rec := app.request("POST", "/api/v1/sites",
		`{"reference":"CH-2031","name":"Villa Almadies","city":"Dakar","status":"completed"}`, director)
	expectStatus(t, rec, http.StatusCreated)
	siteID := object(t, parseJSON(t, rec), "site")["id"].(string)

	// Step 2: Sign its contract
	body := fmt.Sprintf(`{"site_id":%q,"reference":"CT-2031","total_amount":"1000","installments":2}`, siteID)
	rec = app.request("POST", "/api/v1/contracts", body, director)
	expectStatus(t, rec, http.StatusCreated)
	contractID := object(t, parseJSON(t, rec), "contract")["id"].(string)

	// Step 3: First installment invoices the site
	rec = app.request("POST", fmt.Sprintf("/api/v1/contracts/%s/payments", contractID), `{"amount":"400"}`, director)
	expectStatus(t, rec, http.StatusOK)
	expectDecimal(t, object(t, parseJSON(t, rec), "contract")["amount_collected"], "400")

	rec = app.request("GET", "/api/v1/sites/"+siteID, "", director)
	if got := object(t, parseJSON(t, rec), "site")["status"]; got != string(models.SiteInvoiced) {
		t.Fatalf("expected invoiced, got %v", got)
	}

	// Step 4: The balance marks it paid
	rec = app.request("POST", fmt.Sprintf("/api/v1/contracts/%s/payments", contractID),
		`{"amount":"600","paid_on":"2026-03-01"}`, director)
	expectStatus(t, rec, http.StatusOK)

	rec = app.request("GET", "/api/v1/sites/"+siteID, "", director)
	if got := object(t, parseJSON(t, rec), "site")["status"]; got != string(models.SitePaid) {
		t.Errorf("expected paid, got %v", got)
	}

	// Step 5: A site carries one contract
	rec = app.request("POST", "/api/v1/contracts", body, director)
	expectStatus(t, rec, http.StatusConflict)
}
