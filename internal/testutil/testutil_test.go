package testutil_test

import (
	"testing"
	"time"

	"finflow/internal/errors"
	"finflow/internal/models"
	"finflow/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	var count int64
	for _, table := range []string{
		"personnel", "cash_funds", "funding_history", "disbursement_requests", "expense_reports",
		"expense_categories", "suppliers", "construction_sites", "contracts", "audit_logs",
	} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestSetupTestDB_isolated(t *testing.T) {
	first := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, first)
	second := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, second)

	testutil.CreateTestPersonnel(t, first, models.RoleEmployee)

	var count int64
	second.Model(&models.Personnel{}).Count(&count)
	if count != 0 {
		t.Errorf("expected a fresh database, found %d personnel", count)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	employee := testutil.CreateTestPersonnel(t, db, models.RoleEmployee)
	if employee.ID == "" {
		t.Fatal("personnel should have an ID")
	}

	fund := testutil.CreateTestFund(t, db, "5000")
	testutil.AssertDecimal(t, fund.Balance, "5000")

	request := testutil.CreateTestDisbursedRequest(t, db, employee.ID, "1200.50", time.Now())
	if !request.IsDisbursed || request.DisbursedAt == nil {
		t.Error("expected a disbursed request with a timestamp")
	}

	category := testutil.CreateTestExpenseCategory(t, db)
	report := testutil.CreateTestReport(t, db, employee.ID, category.ID, "150.25", 2, models.ReportDraft)
	testutil.AssertDecimal(t, report.ComputeTotal(), "300.50")

	site := testutil.CreateTestSite(t, db, models.SiteInProgress)
	contract := testutil.CreateTestContract(t, db, site.ID, "1000000", 4)
	if contract.SiteID != site.ID {
		t.Errorf("expected contract for site %s, got %s", site.ID, contract.SiteID)
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrDisbursementNotFound, "custom message")
	testutil.AssertAppError(t, err, "DISBURSEMENT_NOT_FOUND")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
