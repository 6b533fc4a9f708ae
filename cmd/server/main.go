package main

import (
	"fmt"
	"log"

	"templora/internal/config"
	"templora/internal/email/noop"
	"templora/internal/email/ses"
	"templora/internal/handler"
	"templora/internal/port"
	"templora/internal/repository/postgres"
	"templora/internal/router"
	"templora/internal/service"
	s3storage "templora/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	categoryRepo := postgres.NewCategoryRepo(db)
	assetRepo := postgres.NewAssetRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize email sender
	var emailSender port.EmailSender
	if cfg.Email.Provider == "ses" {
		emailSender, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName, cfg.Email.FrontendURL)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	} else {
		emailSender = noop.NewNoopSender(cfg.Email.FrontendURL)
	}

	// Initialize services
	authSvc := service.NewAuthService(userRepo, cfg.JWT)
	uploadSvc := service.NewUploadService(categoryRepo, s3Client, &cfg.S3, cfg.Upload)
	assetSvc := service.NewAssetService(assetRepo, categoryRepo, userRepo, s3Client, emailSender, &cfg.S3)
	categorySvc := service.NewCategoryService(categoryRepo)

	// Initialize handlers
	authH := handler.NewAuthHandler(authSvc)
	uploadH := handler.NewUploadHandler(uploadSvc)
	assetH := handler.NewAssetHandler(assetSvc)
	categoryH := handler.NewCategoryHandler(categorySvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg, authSvc, authH, uploadH, assetH, categoryH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
