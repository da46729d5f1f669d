package main

import (
	"fmt"
	"os"

	"finflow/internal/config"
	"finflow/internal/database"
	"finflow/internal/logger"
	"finflow/internal/routes"
	"finflow/internal/services"
	"finflow/internal/validator"
)

// @title           FinFlow API
// @version         1.0
// @description     Cash fund, disbursement request and expense report management for a construction company.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.SetLevel(appConfig.LogLevel)

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("failed to close database: %v", err)
		}
	}()

	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	db := dbManager.DB()
	fundService := services.NewFundService(db, appConfig.FundCode)
	fund, err := fundService.EnsureFund()
	if err != nil {
		return fmt.Errorf("failed to initialise cash fund: %w", err)
	}
	log.Infow("cash fund ready", "code", fund.Code, "balance", fund.Balance.StringFixed(2))

	notifier := services.NewLogNotifier(appConfig.NotifyFrom)
	validator.Register()

	router := routes.Register(routes.Services{
		Personnel:       services.NewPersonnelService(db, notifier),
		Fund:            fundService,
		Disbursement:    services.NewDisbursementService(db, fundService, notifier),
		ExpenseReport:   services.NewExpenseReportService(db, appConfig.LinkWindow),
		ExpenseCategory: services.NewExpenseCategoryService(db),
		Supplier:        services.NewSupplierService(db),
		Monitoring:      services.NewMonitoringService(db, fundService, appConfig.LowFundThreshold, appConfig.LinkWindow),
		Site:            services.NewSiteService(db),
		Contract:        services.NewContractService(db, services.NewSiteStatusReaction()),
		Audit:           services.NewAuditService(db),
	}, routes.Options{
		CORSOrigins:    appConfig.CORSOrigins,
		RequestLogging: true,
	})

	log.Infof("Starting FinFlow server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
