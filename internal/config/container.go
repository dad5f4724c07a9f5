package config

import (
	"docforge/internal/docx"
	"docforge/internal/domain"
	"docforge/internal/infra/supabase"
	"docforge/internal/pdf"
	"docforge/internal/repository"
	"docforge/internal/service"
	"docforge/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config    domain.Config
	Logger    domain.Logger
	Assets    domain.AssetStore
	Generator domain.Generator
	Inspector domain.Inspector
	Rewriter  domain.Rewriter
	Batch     domain.BatchRunner
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	config := NewConfig()
	appLogger := logger.NewLogger(config.GetLogLevel())

	// Assets come from Supabase storage when configured, the local
	// template directory otherwise.
	var assets domain.AssetStore
	if config.GetSupabaseURL() != "" && config.GetSupabaseKey() != "" {
		client := supabase.NewClient(config, appLogger)
		if err := client.Initialize(); err != nil {
			appLogger.Warn("falling back to filesystem assets", "error", err.Error())
			assets = repository.NewFilesystemAssetStore(config.GetTemplatePath(), appLogger)
		} else {
			assets = repository.NewSupabaseAssetStore(client, config.GetAssetBucket(), appLogger)
		}
	} else {
		assets = repository.NewFilesystemAssetStore(config.GetTemplatePath(), appLogger)
	}

	backends := map[string]domain.Backend{
		domain.OutputDOCX: docx.NewBackend(),
		domain.OutputPDF:  pdf.NewBackend(),
	}

	rewriter := docx.NewRewriter()
	generator := service.NewGeneratorService(assets, backends, rewriter, appLogger)
	batch := service.NewBatchService(generator, config.GetMaxBatchWorkers(), appLogger)

	return &Container{
		Config:    config,
		Logger:    appLogger,
		Assets:    assets,
		Generator: generator,
		Inspector: docx.NewInspector(),
		Rewriter:  rewriter,
		Batch:     batch,
	}
}

// GetConfig returns the configuration instance
func (c *Container) GetConfig() domain.Config {
	return c.Config
}

// GetLogger returns the logger instance
func (c *Container) GetLogger() domain.Logger {
	return c.Logger
}
