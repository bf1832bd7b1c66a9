package main

import (
	api "mailvault/cmd/api"
	accountdomain "mailvault/internal/account/domain"
	accountRepo "mailvault/internal/account/repository"
	accountUsecase "mailvault/internal/account/usecase"
	backupdomain "mailvault/internal/backup/domain"
	backupRepo "mailvault/internal/backup/repository"
	"mailvault/internal/backup/scheduler"
	backupUsecase "mailvault/internal/backup/usecase"
	"mailvault/pkg/config"
	"mailvault/pkg/database"
	"mailvault/pkg/gmail"

	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&accountdomain.Account{},
		&backupdomain.SyncSession{},
		&backupdomain.Email{},
		&backupdomain.EmailAttachment{},
	); err != nil {
		log.WithError(err).Fatal("failed to migrate database")
	}

	// Initialize repositories (dependency injection)
	accountRepository := accountRepo.NewAccountRepository(db)
	emailRepository := backupRepo.NewEmailRepository(db)
	sessionRepository := backupRepo.NewSyncSessionRepository(db)

	// Initialize Gmail service
	gmailService := gmail.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret, log)

	// Initialize use cases (dependency injection)
	authUsecaseInstance := accountUsecase.NewAuthUsecase(accountRepository, gmailService, cfg)
	syncUsecaseInstance := backupUsecase.NewSyncUsecase(accountRepository, emailRepository, sessionRepository, gmailService, cfg, log)

	// Background loops: periodic scheduled syncs and proactive token refresh.
	syncScheduler := scheduler.NewScheduler(accountRepository, syncUsecaseInstance, cfg, log)
	syncScheduler.Start()
	defer syncScheduler.Stop()

	tokenRefresher := accountUsecase.NewTokenRefresher(accountRepository, gmailService, cfg, log)
	tokenRefresher.Start()
	defer tokenRefresher.Stop()

	// Initialize HTTP handler
	handler := api.NewHandler(authUsecaseInstance, syncUsecaseInstance)

	log.WithField("port", cfg.Port).Info("server starting")
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("failed to start server")
	}
}
