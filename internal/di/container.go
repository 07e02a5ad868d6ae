package di

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/goliatone/go-sitebuilder/internal/assets"
	"github.com/goliatone/go-sitebuilder/internal/generator"
	"github.com/goliatone/go-sitebuilder/internal/logging"
	"github.com/goliatone/go-sitebuilder/internal/logging/gologger"
	"github.com/goliatone/go-sitebuilder/internal/placeholder"
	"github.com/goliatone/go-sitebuilder/internal/projects"
	"github.com/goliatone/go-sitebuilder/internal/publish"
	"github.com/goliatone/go-sitebuilder/internal/runtimeconfig"
	"github.com/goliatone/go-sitebuilder/internal/templates"
	"github.com/goliatone/go-sitebuilder/pkg/interfaces"
)

// Container wires the builder's dependencies: database, repositories, blob
// storage, logging, and the domain services built on top of them.
type Container struct {
	Config runtimeconfig.Config

	bunDB         *bun.DB
	ownsDB        bool
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	loggerProvider interfaces.LoggerProvider
	objectStorage  interfaces.ObjectStorage

	projectRepo projects.Repository
	assetRepo   assets.Repository

	projectSvc  projects.Service
	assetSvc    assets.Service
	substituter *placeholder.Engine
	gen         *generator.Generator
	urls        *publish.URLBuilder
	publisher   *publish.Manager
	seedFS      fs.FS
	catalog     *templates.Catalog
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB installs an externally managed database handle. The container
// will not close it.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the repository cache service and key serializer.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithObjectStorage overrides the default blob storage backend.
func WithObjectStorage(store interfaces.ObjectStorage) Option {
	return func(c *Container) {
		c.objectStorage = store
	}
}

// WithLoggerProvider overrides the configured logger provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithProjectRepository overrides the default project repository binding.
func WithProjectRepository(repo projects.Repository) Option {
	return func(c *Container) {
		c.projectRepo = repo
	}
}

// WithAssetRepository overrides the default asset repository binding.
func WithAssetRepository(repo assets.Repository) Option {
	return func(c *Container) {
		c.assetRepo = repo
	}
}

// WithProjectService overrides the default project service binding.
func WithProjectService(svc projects.Service) Option {
	return func(c *Container) {
		c.projectSvc = svc
	}
}

// WithAssetService overrides the default asset service binding.
func WithAssetService(svc assets.Service) Option {
	return func(c *Container) {
		c.assetSvc = svc
	}
}

// WithSeedFS overrides the filesystem seeds are loaded from, typically an
// embed.FS shipped with the host application.
func WithSeedFS(filesystem fs.FS) Option {
	return func(c *Container) {
		c.seedFS = filesystem
	}
}

// NewContainer validates the configuration and wires every dependency.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheTTL := cfg.Cache.DefaultTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	c := &Container{
		Config:      cfg,
		cacheTTL:    cacheTTL,
		projectRepo: projects.NewMemoryRepository(),
		assetRepo:   assets.NewMemoryRepository(),
		catalog:     templates.NewCatalog(),
		substituter: placeholder.New(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	if err := c.configureDatabase(); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	c.configureRepositories()
	if err := c.configureStorage(); err != nil {
		return nil, err
	}
	c.configureServices()
	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider != nil {
		return nil
	}
	if !c.Config.Features.Logger {
		c.loggerProvider = noopProvider{}
		return nil
	}
	provider, err := gologger.NewProvider(gologger.Config{
		Level:     c.Config.Logging.Level,
		Format:    c.Config.Logging.Format,
		AddSource: c.Config.Logging.AddSource,
		Focus:     c.Config.Logging.Focus,
	})
	if err != nil {
		return err
	}
	c.loggerProvider = provider
	return nil
}

func (c *Container) configureDatabase() error {
	if c.bunDB != nil {
		return nil
	}
	dsn := strings.TrimSpace(c.Config.Storage.DSN)
	if dsn == "" {
		return nil
	}

	switch strings.ToLower(strings.TrimSpace(c.Config.Storage.Driver)) {
	case "sqlite":
		sqlDB, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return fmt.Errorf("di: open sqlite: %w", err)
		}
		c.bunDB = bun.NewDB(sqlDB, sqlitedialect.New())
	case "postgres":
		sqlDB, err := sql.Open("postgres", dsn)
		if err != nil {
			return fmt.Errorf("di: open postgres: %w", err)
		}
		c.bunDB = bun.NewDB(sqlDB, pgdialect.New())
	default:
		return fmt.Errorf("%w: %s", runtimeconfig.ErrStorageDriverUnknown, c.Config.Storage.Driver)
	}
	c.ownsDB = true
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() {
	if c.bunDB == nil {
		return
	}
	c.projectRepo = projects.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	c.assetRepo = assets.NewBunRepository(c.bunDB)
}

func (c *Container) configureStorage() error {
	if c.objectStorage != nil {
		return nil
	}
	baseDir := strings.TrimSpace(c.Config.Assets.BaseDir)
	if baseDir == "" {
		c.objectStorage = assets.NewMemoryStorage("")
		return nil
	}
	store, err := assets.NewFSStorage(baseDir, "")
	if err != nil {
		return err
	}
	c.objectStorage = store
	return nil
}

func (c *Container) configureServices() {
	if c.projectSvc == nil {
		c.projectSvc = projects.NewService(
			c.projectRepo,
			projects.WithLogger(logging.ProjectsLogger(c.loggerProvider)),
		)
	}

	if c.assetSvc == nil {
		c.assetSvc = assets.NewService(
			c.assetRepo,
			c.objectStorage,
			assets.WithPolicy(assets.Policy{
				MaxSizeBytes: c.Config.Assets.MaxSizeBytes,
				AllowedTypes: c.Config.Assets.AllowedTypes,
			}),
			assets.WithLogger(logging.AssetsLogger(c.loggerProvider)),
		)
	}

	urls, err := publish.NewURLBuilder(
		c.Config.Publish.PlatformDomain,
		publish.WithScheme(c.Config.Publish.Scheme),
	)
	if err == nil {
		c.urls = urls
	}

	genOpts := []generator.Option{
		generator.WithFormEndpoint(c.Config.Publish.FormEndpoint),
		generator.WithLogger(logging.GeneratorLogger(c.loggerProvider)),
	}
	if c.urls != nil {
		genOpts = append(genOpts, generator.WithSiteURLResolver(c.urls.PublishedURL))
	}
	c.gen = generator.New(genOpts...)

	if c.urls != nil {
		manager, err := publish.NewManager(
			c.projectSvc,
			c.gen,
			c.urls,
			publish.WithLogger(logging.PublishLogger(c.loggerProvider)),
		)
		if err == nil {
			c.publisher = manager
		}
	}
}

// LoadSeeds fills the template catalog from the configured seed directory or
// the filesystem supplied through WithSeedFS.
func (c *Container) LoadSeeds() error {
	filesystem := c.seedFS
	root := "."
	if filesystem == nil {
		dir := strings.TrimSpace(c.Config.Seeds.Dir)
		if dir == "" {
			return nil
		}
		filesystem = os.DirFS(dir)
	}
	loader := templates.NewLoader(filesystem,
		templates.WithLogger(logging.ModuleLogger(c.loggerProvider, "sitebuilder.templates")),
	)
	return c.catalog.LoadInto(context.Background(), loader, root)
}

// Close releases resources the container created itself.
func (c *Container) Close() error {
	if c.ownsDB && c.bunDB != nil {
		return c.bunDB.Close()
	}
	return nil
}

// BunDB returns the wired database handle, nil when running on memory
// repositories.
func (c *Container) BunDB() *bun.DB { return c.bunDB }

// LoggerProvider returns the active logger provider.
func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

// ObjectStorage returns the active blob storage backend.
func (c *Container) ObjectStorage() interfaces.ObjectStorage { return c.objectStorage }

// ProjectRepository returns the wired project repository.
func (c *Container) ProjectRepository() projects.Repository { return c.projectRepo }

// AssetRepository returns the wired asset repository.
func (c *Container) AssetRepository() assets.Repository { return c.assetRepo }

// ProjectService returns the project service.
func (c *Container) ProjectService() projects.Service { return c.projectSvc }

// AssetService returns the asset service.
func (c *Container) AssetService() assets.Service { return c.assetSvc }

// Substituter returns the placeholder engine.
func (c *Container) Substituter() *placeholder.Engine { return c.substituter }

// Generator returns the static site generator.
func (c *Container) Generator() *generator.Generator { return c.gen }

// Publisher returns the publish lifecycle manager.
func (c *Container) Publisher() *publish.Manager { return c.publisher }

// URLBuilder returns the published-site URL builder.
func (c *Container) URLBuilder() *publish.URLBuilder { return c.urls }

// Catalog returns the seed template catalog.
func (c *Container) Catalog() *templates.Catalog { return c.catalog }

type noopProvider struct{}

func (noopProvider) GetLogger(string) interfaces.Logger { return logging.NoOp() }
