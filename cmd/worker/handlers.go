package main

import (
	"github.com/hibiken/asynq"

	productJob "grocery-backend/internal/domains/product/job"
	"grocery-backend/internal/infrastructure/backup"
	"grocery-backend/internal/infrastructure/email"
	emailJob "grocery-backend/internal/infrastructure/email/job"
	"grocery-backend/internal/infrastructure/storage"
	"grocery-backend/internal/shared"
)

func newTaskMux(mailer email.Mailer, store storage.AssetStore, backupSvc *backup.Service) *asynq.ServeMux {
	mux := asynq.NewServeMux()

	mux.Handle(shared.TypeEmailWelcome, emailJob.NewWelcomeEmailHandler(mailer))
	mux.Handle(shared.TypeAssetCleanup, productJob.NewCleanupAssetHandler(store))
	mux.Handle(shared.TypeDatabaseBackup, backup.NewHandler(backupSvc))

	return mux
}
