// Package container wires the payrecon components from a configuration.
// Commands obtain every dependency through it.
package container

import (
	"context"
	"fmt"
	"time"

	"fjacquet/payrecon/internal/batch"
	"fjacquet/payrecon/internal/camtparser"
	"fjacquet/payrecon/internal/config"
	"fjacquet/payrecon/internal/csvparser"
	"fjacquet/payrecon/internal/ingest"
	"fjacquet/payrecon/internal/invoicing"
	"fjacquet/payrecon/internal/logging"
	"fjacquet/payrecon/internal/matching"
	"fjacquet/payrecon/internal/mt940parser"
	"fjacquet/payrecon/internal/parser"
	"fjacquet/payrecon/internal/reference"
	"fjacquet/payrecon/internal/report"
	"fjacquet/payrecon/internal/reviewer"
	"fjacquet/payrecon/internal/store"
	"fjacquet/payrecon/internal/store/sqlite"
	"fjacquet/payrecon/internal/suggest"
)

// Container holds the wired application. It is not modified after
// construction.
type Container struct {
	logger  logging.Logger
	config  *config.Config
	store   store.Store
	tenants *store.TenantDirectory
	parsers *parser.Registry

	ingest   *ingest.Service
	issuer   *invoicing.Issuer
	reviewer *reviewer.Reviewer
	batch    *batch.DirectoryImporter
	report   *report.Generator
	gemini   *suggest.GeminiModel
}

// NewContainer opens the SQLite database named in cfg and wires everything
// on top of it.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	c, err := NewContainerWithStore(cfg, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

// NewContainerWithStore wires the application over an already opened store.
// The container takes ownership of s.
func NewContainerWithStore(cfg *config.Config, s store.Store) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	logger := logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)

	tenants := store.NewTenantDirectory(cfg.Tenants.File, logger)
	if err := tenants.Load(); err != nil {
		return nil, fmt.Errorf("failed to load tenants: %w", err)
	}

	parsers := NewParserRegistry(cfg, logger)

	style, err := reference.ParseStyle(cfg.Reference.DefaultStyle)
	if err != nil {
		return nil, err
	}

	svc := ingest.NewService(s, matching.NewEngine(cfg.Matching.DateWindowDays), parsers, logger)

	var (
		advisor suggest.Advisor
		gemini  *suggest.GeminiModel
	)
	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		gemini, err = suggest.NewGeminiModel(context.Background(), cfg.AI.APIKey, cfg.AI.Model)
		if err != nil {
			return nil, err
		}
		advisor = suggest.NewGeminiAdvisor(gemini, time.Duration(cfg.AI.TimeoutSeconds)*time.Second, logger)
		logger.Info("AI review advice enabled", logging.F("model", cfg.AI.Model))
	} else {
		logger.Debug("AI review advice disabled")
	}

	c := &Container{
		logger:   logger,
		config:   cfg,
		store:    s,
		tenants:  tenants,
		parsers:  parsers,
		ingest:   svc,
		issuer:   invoicing.NewIssuer(s, tenants, style, logger),
		reviewer: reviewer.NewReviewer(s, advisor, cfg.Review.MaxReferenceDistance, logger),
		batch:    batch.NewDirectoryImporter(svc, logger),
		report:   report.NewGenerator(logger),
		gemini:   gemini,
	}

	logger.Debug("Container initialized",
		logging.F("formats", len(parsers.Formats())),
		logging.F("tenants", len(tenants.List())))
	return c, nil
}

// NewParserRegistry registers one parser per statement format. The camt
// format uses the strict ISO 20022 decoder when configured.
func NewParserRegistry(cfg *config.Config, logger logging.Logger) *parser.Registry {
	r := parser.NewRegistry()
	r.Register(parser.CSV, csvparser.NewParserWithDelimiter(logger, cfg.Delimiter()))
	r.Register(parser.MT940, mt940parser.NewParser(logger))
	if cfg.Parsers.CAMT.StrictValidation {
		r.Register(parser.CAMT, camtparser.NewISO20022Parser(logger))
	} else {
		r.Register(parser.CAMT, camtparser.NewParser(logger))
	}
	return r
}

func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

func (c *Container) GetConfig() *config.Config {
	return c.config
}

func (c *Container) GetStore() store.Store {
	return c.store
}

func (c *Container) GetTenants() *store.TenantDirectory {
	return c.tenants
}

func (c *Container) GetParsers() *parser.Registry {
	return c.parsers
}

func (c *Container) GetIngest() *ingest.Service {
	return c.ingest
}

func (c *Container) GetIssuer() *invoicing.Issuer {
	return c.issuer
}

func (c *Container) GetReviewer() *reviewer.Reviewer {
	return c.reviewer
}

func (c *Container) GetBatch() *batch.DirectoryImporter {
	return c.batch
}

func (c *Container) GetReport() *report.Generator {
	return c.report
}

// Close releases the store and the Gemini client.
func (c *Container) Close() error {
	if c.gemini != nil {
		if err := c.gemini.Close(); err != nil {
			c.logger.WithError(err).Warn("Failed to close Gemini client")
		}
	}
	return c.store.Close()
}
