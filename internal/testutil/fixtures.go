package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"finflow/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// TestPassword is the clear-text password of every fixture personnel.
const TestPassword = "password123"

// TestFundCode is the fund code fixtures and services share in tests.
const TestFundCode = "main"

// Dec parses a decimal literal, panicking on malformed input.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// CreateTestPersonnel creates an active staff member with the given role and a unique username.
func CreateTestPersonnel(t *testing.T, db *gorm.DB, role models.Role) *models.Personnel {
	t.Helper()
	n := nextID()
	return CreateTestPersonnelWithUsername(t, db, fmt.Sprintf("user%d", n), role)
}

// CreateTestPersonnelWithUsername creates an active staff member with the given username.
func CreateTestPersonnelWithUsername(t *testing.T, db *gorm.DB, username string, role models.Role) *models.Personnel {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	person := &models.Personnel{
		Username:  username,
		Email:     username + "@test.com",
		Password:  string(hash),
		FirstName: "Test",
		LastName:  username,
		Role:      role,
		IsActive:  true,
	}
	if err := db.Create(person).Error; err != nil {
		t.Fatalf("failed to create test personnel: %v", err)
	}
	return person
}

// CreateTestSuperuser creates an active superuser with no role.
func CreateTestSuperuser(t *testing.T, db *gorm.DB) *models.Personnel {
	t.Helper()

	person := CreateTestPersonnel(t, db, models.RoleNone)
	if err := db.Model(person).Update("is_superuser", true).Error; err != nil {
		t.Fatalf("failed to promote test superuser: %v", err)
	}
	person.IsSuperuser = true
	return person
}

// CreateTestFund creates the TestFundCode fund with the given balance.
func CreateTestFund(t *testing.T, db *gorm.DB, balance string) *models.CashFund {
	t.Helper()

	fund := &models.CashFund{
		Code:        TestFundCode,
		Balance:     Dec(balance),
		DepositKind: models.DepositCash,
		LastUpdated: time.Now(),
	}
	if err := db.Create(fund).Error; err != nil {
		t.Fatalf("failed to create test fund: %v", err)
	}
	return fund
}

// CreateTestRequest creates a disbursement request in the given status.
func CreateTestRequest(t *testing.T, db *gorm.DB, requesterID string, amount string, status models.DisbursementStatus) *models.DisbursementRequest {
	t.Helper()

	request := &models.DisbursementRequest{
		RequesterID: requesterID,
		Amount:      Dec(amount),
		Reason:      fmt.Sprintf("Test request %d", nextID()),
		Status:      status,
	}
	if err := db.Create(request).Error; err != nil {
		t.Fatalf("failed to create test request: %v", err)
	}
	return request
}

// CreateTestDisbursedRequest creates an approved request that was disbursed at the given time.
func CreateTestDisbursedRequest(t *testing.T, db *gorm.DB, requesterID string, amount string, disbursedAt time.Time) *models.DisbursementRequest {
	t.Helper()

	request := &models.DisbursementRequest{
		RequesterID: requesterID,
		Amount:      Dec(amount),
		Reason:      fmt.Sprintf("Test disbursed request %d", nextID()),
		Status:      models.StatusApprovedByDirector,
		ApprovedAt:  &disbursedAt,
		DisbursedAt: &disbursedAt,
		IsDisbursed: true,
	}
	if err := db.Create(request).Error; err != nil {
		t.Fatalf("failed to create test disbursed request: %v", err)
	}
	return request
}

// CreateTestExpenseCategory creates an active expense category.
func CreateTestExpenseCategory(t *testing.T, db *gorm.DB) *models.ExpenseCategory {
	t.Helper()

	category := &models.ExpenseCategory{
		Name:   fmt.Sprintf("Test Category %d", nextID()),
		Kind:   models.KindMaterials,
		Color:  "#336699",
		Active: true,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test expense category: %v", err)
	}
	return category
}

// CreateTestSupplier creates a supplier.
func CreateTestSupplier(t *testing.T, db *gorm.DB) *models.Supplier {
	t.Helper()

	supplier := &models.Supplier{
		Name:      fmt.Sprintf("Test Supplier %d", nextID()),
		Specialty: "Cement",
	}
	if err := db.Create(supplier).Error; err != nil {
		t.Fatalf("failed to create test supplier: %v", err)
	}
	return supplier
}

// CreateTestReport creates an expense report in the given status.
func CreateTestReport(t *testing.T, db *gorm.DB, employeeID, categoryID string, unitPrice string, quantity int, status models.ReportStatus) *models.ExpenseReport {
	t.Helper()

	report := &models.ExpenseReport{
		EmployeeID:         employeeID,
		CategoryID:         categoryID,
		ArticleDescription: fmt.Sprintf("Test article %d", nextID()),
		UnitPrice:          Dec(unitPrice),
		Quantity:           quantity,
		ExpenseDate:        time.Now(),
		Status:             status,
	}
	if err := db.Create(report).Error; err != nil {
		t.Fatalf("failed to create test expense report: %v", err)
	}
	return report
}

// CreateTestSite creates a construction site in the given status.
func CreateTestSite(t *testing.T, db *gorm.DB, status models.SiteStatus) *models.ConstructionSite {
	t.Helper()

	n := nextID()
	site := &models.ConstructionSite{
		Reference: fmt.Sprintf("CH-%04d", n),
		Name:      fmt.Sprintf("Test Site %d", n),
		City:      "Dakar",
		Status:    status,
	}
	if err := db.Create(site).Error; err != nil {
		t.Fatalf("failed to create test site: %v", err)
	}
	return site
}

// CreateTestContract creates an unpaid contract for the site.
func CreateTestContract(t *testing.T, db *gorm.DB, siteID string, total string, installments int) *models.Contract {
	t.Helper()

	contract := &models.Contract{
		SiteID:           siteID,
		Reference:        fmt.Sprintf("CT-%04d", nextID()),
		TotalAmount:      Dec(total),
		AmountCollected:  decimal.Zero,
		InstallmentsLeft: installments,
	}
	if err := db.Create(contract).Error; err != nil {
		t.Fatalf("failed to create test contract: %v", err)
	}
	return contract
}
