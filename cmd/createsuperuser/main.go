package main

import (
	"flag"
	"fmt"
	"os"

	"finflow/internal/config"
	"finflow/internal/database"
	"finflow/internal/logger"
	"finflow/internal/services"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("createsuperuser: %v", err)
	}
}

func run() error {
	username := flag.String("username", os.Getenv("SUPERUSER_USERNAME"), "login name")
	email := flag.String("email", os.Getenv("SUPERUSER_EMAIL"), "contact email")
	password := flag.String("password", os.Getenv("SUPERUSER_PASSWORD"), "initial password")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	m, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			logger.Get().Warnf("database close error: %v", err)
		}
	}()
	if err := m.Migrate(); err != nil {
		return err
	}

	personnel := services.NewPersonnelService(m.DB(), services.NewLogNotifier(cfg.NotifyFrom))
	person, err := personnel.CreateSuperuser(*username, *email, *password)
	if err != nil {
		return err
	}
	logger.Get().Infow("superuser created", "id", person.ID, "username", person.Username)
	return nil
}
