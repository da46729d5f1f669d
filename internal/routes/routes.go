// Package routes wires handlers and middleware into the API router.
package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"finflow/internal/handlers"
	"finflow/internal/middleware"
	"finflow/internal/models"
	"finflow/internal/services"

	_ "finflow/internal/docs" // Import swagger docs
)

// Services groups everything the router needs from the service layer.
type Services struct {
	Personnel       services.PersonnelServicer
	Fund            services.FundServicer
	Disbursement    services.DisbursementServicer
	ExpenseReport   services.ExpenseReportServicer
	ExpenseCategory services.ExpenseCategoryServicer
	Supplier        services.SupplierServicer
	Monitoring      services.MonitoringServicer
	Site            services.SiteServicer
	Contract        services.ContractServicer
	Audit           services.AuditServicer
}

// Options tunes the outer HTTP layer.
type Options struct {
	CORSOrigins    []string
	RequestLogging bool
}

// Register builds the router with every API route.
func Register(svc Services, opts Options) *gin.Engine {
	authHandler := handlers.NewAuthHandler(svc.Personnel, svc.Audit)
	personnelHandler := handlers.NewPersonnelHandler(svc.Personnel, svc.Audit)
	fundHandler := handlers.NewFundHandler(svc.Fund, svc.Audit)
	disbursementHandler := handlers.NewDisbursementHandler(svc.Disbursement, svc.Audit)
	reportHandler := handlers.NewExpenseReportHandler(svc.ExpenseReport, svc.Audit)
	categoryHandler := handlers.NewExpenseCategoryHandler(svc.ExpenseCategory, svc.Audit)
	supplierHandler := handlers.NewSupplierHandler(svc.Supplier)
	monitoringHandler := handlers.NewMonitoringHandler(svc.Monitoring)
	siteHandler := handlers.NewSiteHandler(svc.Site, svc.Contract, svc.Audit)

	router := gin.New()
	router.Use(gin.Recovery())
	if opts.RequestLogging {
		router.Use(middleware.RequestLogging())
	}
	router.Use(middleware.ErrorHandler())
	if len(opts.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  opts.CORSOrigins,
			AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Content-Type", "Authorization"},
			ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		}))
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(), middleware.ResolvePrincipal(svc.Personnel))

	managers := middleware.RequireRoles(models.RoleDirector, models.RoleAccountant)
	office := middleware.RequireRoles(models.RoleDirector, models.RoleAccountant, models.RoleSecretary)

	protected.GET("/profile", authHandler.GetProfile)

	personnel := protected.Group("/personnel")
	personnel.POST("", middleware.RequireRoles(models.RoleDirector), personnelHandler.CreatePersonnel)
	personnel.GET("", office, personnelHandler.ListPersonnel)

	fund := protected.Group("/fund")
	fund.GET("", fundHandler.GetFund)
	fund.POST("/deposits", managers, fundHandler.AddFunds)
	fund.GET("/history", office, fundHandler.ListFundingHistory)

	disbursements := protected.Group("/disbursements")
	disbursements.POST("", disbursementHandler.CreateRequest)
	disbursements.GET("", office, disbursementHandler.ListRequests)
	disbursements.GET("/:id", disbursementHandler.GetRequest)
	disbursements.POST("/:id/approve", managers, disbursementHandler.Approve)
	disbursements.POST("/:id/reject", managers, disbursementHandler.Reject)
	disbursements.POST("/:id/disburse", office, disbursementHandler.Disburse)

	reports := protected.Group("/expense-reports")
	reports.POST("", reportHandler.CreateReport)
	reports.GET("", managers, reportHandler.ListReports)
	reports.GET("/mine", reportHandler.ListMyReports)
	reports.GET("/linkable-requests", reportHandler.ListLinkableRequests)
	reports.GET("/:id", reportHandler.GetReport)
	reports.POST("/:id/submit", reportHandler.SubmitDraft)
	reports.POST("/:id/review", managers, reportHandler.Review)
	reports.PUT("/:id/supplier", reportHandler.AssignSupplier)

	categories := protected.Group("/expense-categories")
	categories.POST("", managers, categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.ListCategories)
	categories.PUT("/:id", managers, categoryHandler.UpdateCategory)

	suppliers := protected.Group("/suppliers")
	suppliers.POST("", supplierHandler.CreateSupplier)
	suppliers.GET("", supplierHandler.ListSuppliers)
	suppliers.GET("/top", managers, supplierHandler.TopSuppliers)
	suppliers.GET("/:id", supplierHandler.GetSupplier)

	monitoring := protected.Group("/monitoring", managers)
	monitoring.GET("/alerts", monitoringHandler.Alerts)
	monitoring.GET("/overdue-disbursements", monitoringHandler.OverdueDisbursements)
	monitoring.GET("/link-stats", monitoringHandler.LinkStats)

	sites := protected.Group("/sites")
	sites.POST("", office, siteHandler.CreateSite)
	sites.GET("", siteHandler.ListSites)
	sites.GET("/:id", siteHandler.GetSite)

	contracts := protected.Group("/contracts")
	contracts.POST("", managers, siteHandler.CreateContract)
	contracts.GET("/:id", siteHandler.GetContract)
	contracts.POST("/:id/payments", managers, siteHandler.RecordPayment)

	return router
}
