package container

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"skuprice/adapters/catalog"
	"skuprice/adapters/excel"
	"skuprice/adapters/postgres"
	"skuprice/app"
	"skuprice/internal/config"
	"skuprice/internal/errors"
	"skuprice/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB *sqlx.DB

	// Catalog
	CatalogRepo *postgres.CatalogRepository
	Catalog     *catalog.Catalog

	// Pipeline
	Reader         ports.WorkbookReader
	PricingService *app.PricingService
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	return &Container{Config: cfg}, nil
}

// ConnectDatabase opens the catalog database when one is configured
func (c *Container) ConnectDatabase() error {
	if c.Config.Catalog.DatabaseURL == "" {
		return nil
	}
	db, err := sqlx.Connect("postgres", c.Config.Catalog.DatabaseURL)
	if err != nil {
		return errors.DatabaseError("failed to connect to catalog database", err)
	}
	repo, err := postgres.NewCatalogRepository(db, c.Config.Catalog.Table)
	if err != nil {
		db.Close()
		return err
	}
	c.DB = db
	c.CatalogRepo = repo
	return nil
}

// Init loads the reference catalog and wires the pricing pipeline
func (c *Container) Init(ctx context.Context) error {
	if err := c.initCatalog(ctx); err != nil {
		return err
	}
	c.Reader = excel.NewWorkbookReader(excel.DefaultReaderConfig())
	c.PricingService = app.NewPricingService(c.Reader, c.Catalog, app.ServiceConfigFrom(c.Config))
	return nil
}

func (c *Container) initCatalog(ctx context.Context) error {
	var source ports.CatalogSource
	switch {
	case c.CatalogRepo != nil:
		if err := c.CatalogRepo.EnsureSchema(ctx); err != nil {
			return err
		}
		source = c.CatalogRepo
	case c.Config.Catalog.Path != "":
		source = catalog.NewFileSource(c.Config.Catalog.Path)
	default:
		log.Printf("[Container] no reference catalog configured")
		c.Catalog = catalog.Empty()
		return nil
	}

	cat, err := catalog.Load(ctx, source)
	if err != nil {
		return errors.Wrap(err, "failed to load reference catalog")
	}
	c.Catalog = cat
	return nil
}

// Shutdown releases held resources
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
