package container

import (
	"fmt"

	"dummycoder/adapters/excel"
	"dummycoder/app"
	"dummycoder/internal"
	"dummycoder/internal/config"
	"dummycoder/ports"
	"dummycoder/ui"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config

	// Collaborators around the dummy coder
	Loader   ports.DatasetLoader
	Exporter ports.DatasetExporter

	EncodeService *app.EncodeService
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	internal.DefaultLogger.SetLevel(cfg.Log.Level)

	excelConfig := ExcelConfig(cfg)
	c := &Container{
		Config:   cfg,
		Loader:   excel.NewDataReader(excelConfig),
		Exporter: excel.NewDataWriter(excelConfig),
	}
	c.EncodeService = app.NewEncodeService(c.Loader, c.Exporter, cfg.Encoding.ConflictPolicy)

	return c, nil
}

// ExcelConfig derives the loader/exporter settings from application config
func ExcelConfig(cfg *config.Config) excel.ExcelConfig {
	excelConfig := excel.DefaultExcelConfig()
	excelConfig.SheetName = cfg.Upload.SheetName
	excelConfig.CSVDelimiter = cfg.Upload.CSVDelimiter
	return excelConfig
}

// NewServer builds the HTTP shell on top of the container's service
func (c *Container) NewServer() (*ui.Server, error) {
	return ui.NewServer(c.EncodeService, ui.ServerConfig{
		MaxUploadBytes:   c.Config.Upload.MaxUploadBytes(),
		DefaultSeparator: c.Config.Encoding.DefaultSeparator,
		DownloadName:     c.Config.Export.DownloadName,
	})
}
