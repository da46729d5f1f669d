package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"finflow/internal/models"
	"finflow/internal/pagination"
)

// CreatePersonnelInput holds the fields accepted when registering a staff member.
// An empty Username is generated from the name.
type CreatePersonnelInput struct {
	Username    string
	Email       string
	FirstName   string
	LastName    string
	Phone       string
	Role        models.Role
	IsSuperuser bool
}

// PersonnelServicer defines the contract for staff accounts and authentication.
type PersonnelServicer interface {
	CreatePersonnel(input CreatePersonnelInput) (*models.Personnel, error)
	CreateSuperuser(username, email, password string) (*models.Personnel, error)
	GetPersonnelByID(id string) (*models.Personnel, error)
	ListPersonnel(page pagination.PageRequest, role *models.Role) (*pagination.PageResponse[models.Personnel], error)
	GetPrincipal(id string) (models.Principal, error)
	AttemptLogin(username, password string) (*models.Personnel, error)
	StoreRefreshTokenHash(id string, tokenHash string) error
	GetRefreshTokenHash(id string) (string, error)
}

// FundServicer defines the contract for the cash fund ledger.
type FundServicer interface {
	EnsureFund() (*models.CashFund, error)
	GetFund() (*models.CashFund, error)
	AddFunds(contributor models.Principal, amount decimal.Decimal, kind models.DepositKind, notes string) (*models.FundingHistoryEntry, error)
	ListFundingHistory(page pagination.PageRequest) (*pagination.PageResponse[models.FundingHistoryEntry], error)
	AdjustBalance(tx *gorm.DB, delta decimal.Decimal, extra map[string]interface{}) (*models.CashFund, error)
}

// CreateDisbursementInput holds the fields of a new disbursement request.
type CreateDisbursementInput struct {
	Amount        decimal.Decimal
	SiteID        *string
	Reason        string
	ReferenceCode string
}

// DisbursementFilter holds optional filter parameters for listing requests.
type DisbursementFilter struct {
	Status      *models.DisbursementStatus
	RequesterID *string
	SiteID      *string
	Disbursed   *bool
	FromDate    *time.Time
	ToDate      *time.Time
	Reason      string
}

// DisbursementServicer defines the contract for the disbursement request lifecycle.
type DisbursementServicer interface {
	CreateRequest(requester models.Principal, input CreateDisbursementInput) (*models.DisbursementRequest, error)
	Approve(requestID string, actor models.Principal) (*models.DisbursementRequest, error)
	Reject(requestID string, actor models.Principal) (*models.DisbursementRequest, error)
	Disburse(requestID string, operator models.Principal) (*models.DisbursementRequest, error)
	GetRequest(id string) (*models.DisbursementRequest, error)
	ListRequests(page pagination.PageRequest, filter DisbursementFilter) (*pagination.PageResponse[models.DisbursementRequest], error)
}

// ExpenseReportInput holds the fields an employee fills in on a report.
type ExpenseReportInput struct {
	DisbursementRequestID *string
	CategoryID            string
	ArticleDescription    string
	UnitPrice             decimal.Decimal
	Quantity              int
	SupplierID            *string
	FreeTextSupplier      string
	InvoiceImage          string
	ExpenseDate           time.Time
	SiteID                *string
	Note                  string
}

// ReviewDecision is a validator's ruling on a submitted report.
type ReviewDecision string

const (
	DecisionValidate            ReviewDecision = "validate"
	DecisionReject              ReviewDecision = "reject"
	DecisionRequestModification ReviewDecision = "request_modification"
)

// ExpenseReportFilter holds optional filter parameters for listing reports.
type ExpenseReportFilter struct {
	Status     *models.ReportStatus
	EmployeeID *string
	CategoryID *string
	SupplierID *string
	Linked     *bool
}

// ExpenseReportServicer defines the contract for expense reporting.
type ExpenseReportServicer interface {
	SaveDraft(employee models.Principal, input ExpenseReportInput) (*models.ExpenseReport, error)
	Submit(employee models.Principal, input ExpenseReportInput) (*models.ExpenseReport, error)
	SubmitDraft(employee models.Principal, reportID string) (*models.ExpenseReport, error)
	Review(reportID string, reviewer models.Principal, decision ReviewDecision, comment string) (*models.ExpenseReport, error)
	ListLinkableRequests(employee models.Principal) ([]models.DisbursementRequest, error)
	AssignSupplier(reportID string, actor models.Principal, supplierID *string) (*models.ExpenseReport, error)
	GetReport(id string) (*models.ExpenseReport, error)
	ListReports(page pagination.PageRequest, filter ExpenseReportFilter) (*pagination.PageResponse[models.ExpenseReport], error)
}

// ExpenseCategoryServicer defines the contract for expense category reference data.
type ExpenseCategoryServicer interface {
	CreateCategory(name string, kind models.ExpenseKind, color string, displayOrder int) (*models.ExpenseCategory, error)
	ListCategories(activeOnly bool) ([]models.ExpenseCategory, error)
	UpdateCategory(id string, name *string, color *string, active *bool, displayOrder *int) (*models.ExpenseCategory, error)
}

// SupplierServicer defines the contract for suppliers and their purchase totals.
type SupplierServicer interface {
	CreateSupplier(name, phone, email, specialty string) (*models.Supplier, error)
	GetSupplier(id string) (*models.SupplierSummary, error)
	ListSuppliers(page pagination.PageRequest, search string) (*pagination.PageResponse[models.Supplier], error)
	TopSuppliers(limit int) ([]models.SupplierSummary, error)
}

// Alert is one condition the monitoring dashboard should surface.
type Alert struct {
	Kind       string `json:"kind"`
	Severity   string `json:"severity"`
	Message    string `json:"message"`
	ResourceID string `json:"resource_id,omitempty"`
}

// LinkStats summarises how many validated reports reconcile with a disbursement.
type LinkStats struct {
	ValidatedTotal    int64   `json:"validated_total"`
	ValidatedLinked   int64   `json:"validated_linked"`
	ValidatedUnlinked int64   `json:"validated_unlinked"`
	LinkRate          float64 `json:"link_rate"`
}

// MonitoringServicer defines the read-only checks behind the alerts dashboard.
type MonitoringServicer interface {
	OverdueDisbursements() ([]models.DisbursementRequest, error)
	Alerts() ([]Alert, error)
	LinkStats() (*LinkStats, error)
}

// SiteServicer defines the contract for construction sites.
type SiteServicer interface {
	CreateSite(reference, name, city string, status models.SiteStatus, plannedEnd *time.Time) (*models.ConstructionSite, error)
	GetSite(id string) (*models.ConstructionSite, error)
	ListSites(page pagination.PageRequest, status *models.SiteStatus) (*pagination.PageResponse[models.ConstructionSite], error)
}

// ContractServicer defines the contract for site contracts and their payments.
type ContractServicer interface {
	CreateContract(siteID, reference string, total decimal.Decimal, installments int, signedAt *time.Time) (*models.Contract, error)
	GetContract(id string) (*models.Contract, error)
	RecordPayment(contractID string, amount decimal.Decimal, paidOn time.Time) (*models.Contract, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(actorID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
