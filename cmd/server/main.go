// Command server runs the shipment draft review backend.
//
// @title ShipDraft API
// @version 1.0
// @description Batch tracking, draft correction, and logistics forwarding for shipment drafts.
// @BasePath /api/v1
package main

import (
	"fmt"
	"log"

	"shipdraft/internal/config"
	"shipdraft/internal/email/noop"
	"shipdraft/internal/email/ses"
	"shipdraft/internal/gateway/draftsapi"
	"shipdraft/internal/gateway/dutyapi"
	"shipdraft/internal/gateway/pipelineapi"
	"shipdraft/internal/gateway/xindusapi"
	"shipdraft/internal/handler"
	"shipdraft/internal/port"
	"shipdraft/internal/router"
	"shipdraft/internal/service"
	s3storage "shipdraft/internal/storage/s3"
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

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize upstream gateways
	draftsClient := draftsapi.NewClient(&cfg.Drafts)
	pipelineClient := pipelineapi.NewClient(&cfg.Pipeline)
	dutyClient := dutyapi.NewClient(&cfg.Duty)
	xindusClient := xindusapi.NewClient(&cfg.Xindus)

	// Initialize notifier
	var notifier port.BatchNotifier
	if cfg.Email.Provider == "ses" {
		notifier, err = ses.NewSESNotifier(cfg.Email.Region, cfg.Email.FromAddress,
			cfg.Email.FromName, cfg.Email.ConsoleURL, cfg.Email.Recipients)
		if err != nil {
			return fmt.Errorf("failed to initialize SES notifier: %w", err)
		}
	} else {
		notifier = noop.NewNoopNotifier(cfg.Email.ConsoleURL)
	}

	// Initialize services
	batchSvc := service.NewBatchService(s3Client, pipelineClient, notifier, &cfg.S3, &cfg.Tracker)
	draftSvc := service.NewDraftService(draftsClient, dutyClient, xindusClient, &cfg.Bulk)
	fileSvc := service.NewDraftFileService(draftsClient, s3Client, &cfg.S3)

	// Initialize handlers
	batchH := handler.NewBatchHandler(batchSvc)
	draftH := handler.NewDraftHandler(draftSvc)
	fileH := handler.NewDraftFileHandler(fileSvc)
	healthH := handler.NewHealthHandler(pipelineClient)

	// Setup router
	r := router.Setup(batchH, draftH, fileH, healthH, cfg.CORS.AllowedOrigins)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
