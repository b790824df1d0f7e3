package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	calendarApp "github.com/felixgeelhaar/taskbrief/internal/calendar/application"
	"github.com/felixgeelhaar/taskbrief/internal/calendar/infrastructure/caldav"
	"github.com/felixgeelhaar/taskbrief/internal/identity/application/auth"
	identityDomain "github.com/felixgeelhaar/taskbrief/internal/identity/domain"
	"github.com/felixgeelhaar/taskbrief/internal/identity/infrastructure/mail"
	identitySecurity "github.com/felixgeelhaar/taskbrief/internal/identity/infrastructure/security"
	"github.com/felixgeelhaar/taskbrief/internal/identity/infrastructure/session"
	sharedApplication "github.com/felixgeelhaar/taskbrief/internal/shared/application"
	"github.com/felixgeelhaar/taskbrief/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/taskbrief/internal/shared/infrastructure/database/mongodb"
	_ "github.com/felixgeelhaar/taskbrief/internal/shared/infrastructure/database/postgres" // Register Postgres driver
	_ "github.com/felixgeelhaar/taskbrief/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/felixgeelhaar/taskbrief/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/taskbrief/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/taskbrief/internal/shared/infrastructure/outbox"
	summaryApp "github.com/felixgeelhaar/taskbrief/internal/summary/application"
	summaryDomain "github.com/felixgeelhaar/taskbrief/internal/summary/domain"
	"github.com/felixgeelhaar/taskbrief/internal/summary/infrastructure/gemini"
	"github.com/felixgeelhaar/taskbrief/internal/tasks/application/commands"
	"github.com/felixgeelhaar/taskbrief/internal/tasks/application/queries"
	"github.com/felixgeelhaar/taskbrief/internal/tasks/domain/task"
	"github.com/felixgeelhaar/taskbrief/pkg/config"
	"github.com/felixgeelhaar/taskbrief/pkg/observability"
)

// ErrCalendarNotConfigured is returned by calendar operations when no
// CalDAV server is configured.
var ErrCalendarNotConfigured = errors.New("calendar export is not configured: set CALDAV_URL")

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *observability.InMemoryMetrics
	Health  *observability.HealthRegistry

	// Storage
	DBConn      database.Connection
	DBDriver    database.Driver
	TaskDriver  database.Driver
	MongoClient *mongo.Client
	RedisClient *redis.Client

	// Repositories
	TaskRepo   task.Repository
	UserRepo   identityDomain.UserRepository
	OutboxRepo outbox.Repository
	UnitOfWork sharedApplication.UnitOfWork
	Sessions   identityDomain.SessionStore

	// Summarizer
	Generator summaryDomain.Generator

	// Task handlers
	CreateTaskHandler *commands.CreateTaskHandler
	DeleteTaskHandler *commands.DeleteTaskHandler
	ListTasksHandler  *queries.ListTasksHandler

	// Summary pipeline
	SummarizeHandler *summaryApp.SummarizeHandler

	// Calendar export, nil when CALDAV_URL is unset
	ExportDeadlinesHandler *calendarApp.ExportDeadlinesHandler

	// Credentials
	AuthService *auth.Service

	closers []func() error
}

// NewContainer creates and wires all dependencies.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewInMemoryMetrics(),
		Health:  observability.NewHealthRegistry(),
	}

	if err := c.initDatabase(ctx); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initTaskStore(ctx); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initSessions(ctx); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initGenerator(ctx); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initHandlers(); err != nil {
		c.Close()
		return nil, err
	}

	logger.Info("container initialized",
		"database", c.DBDriver.String(),
		"task_store", c.TaskDriver.String(),
		"sessions", sessionBackend(c.RedisClient),
		"calendar", c.ExportDeadlinesHandler != nil,
	)
	return c, nil
}

func (c *Container) initDatabase(ctx context.Context) error {
	cfg := c.Config
	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     database.Driver(cfg.DatabaseDriver),
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
		MaxConns:   cfg.DatabaseMaxConns,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DBConn = conn
	c.DBDriver = conn.Driver()
	c.closers = append(c.closers, conn.Close)

	if err := runMigrations(ctx, conn, cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	c.Health.Register("database", observability.PingChecker(conn.Ping, observability.HealthStatusUnhealthy))
	c.Logger.Info("connected to database", "driver", c.DBDriver.String())
	return nil
}

type sqlHandle interface {
	DB() *sql.DB
}

func runMigrations(ctx context.Context, conn database.Connection, url string) error {
	switch conn.Driver() {
	case database.DriverSQLite:
		h, ok := conn.(sqlHandle)
		if !ok {
			return fmt.Errorf("expected SQLite connection with DB() method, got %T", conn)
		}
		return migrations.RunSQLite(ctx, h.DB())
	case database.DriverPostgres:
		return migrations.RunPostgres(ctx, url)
	default:
		return fmt.Errorf("no migrations for driver %s", conn.Driver())
	}
}

func (c *Container) initTaskStore(ctx context.Context) error {
	var tasksDB *mongo.Database
	if url := c.Config.TaskStoreURL; url != "" {
		if driver := database.DetectDriver(url); driver != database.DriverMongo {
			return fmt.Errorf("TASK_STORE_URL must be a mongodb:// URL, got driver %s", driver)
		}
		client, err := mongodb.Connect(ctx, url)
		if err != nil {
			return err
		}
		c.MongoClient = client
		c.closers = append(c.closers, func() error { return client.Disconnect(context.Background()) })
		c.Health.Register("task_store", observability.PingChecker(func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		}, observability.HealthStatusUnhealthy))
		tasksDB = mongodb.Database(client, c.Config.MongoDatabase)
	}

	factory := NewRepositoryFactory(c.DBConn, tasksDB)
	c.TaskDriver = factory.TaskDriver()

	var err error
	if c.TaskRepo, err = factory.TaskRepository(ctx); err != nil {
		return err
	}
	if c.UserRepo, err = factory.UserRepository(); err != nil {
		return err
	}
	if c.OutboxRepo, err = factory.OutboxRepository(); err != nil {
		return err
	}
	c.UnitOfWork = factory.UnitOfWork()
	return nil
}

func (c *Container) initSessions(ctx context.Context) error {
	if c.Config.RedisURL == "" {
		return c.useSQLSessions(ctx)
	}

	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		c.Logger.Warn("invalid Redis URL, sessions will use the database", "error", err)
		return c.useSQLSessions(ctx)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.Logger.Warn("Redis not available, sessions will use the database", "error", err)
		return c.useSQLSessions(ctx)
	}

	c.RedisClient = client
	c.closers = append(c.closers, client.Close)
	store := session.NewRedisStore(client)
	c.Sessions = store
	c.Health.Register("redis", observability.PingChecker(store.Ping, observability.HealthStatusDegraded))
	c.Logger.Info("connected to Redis")
	return nil
}

// useSQLSessions keeps session state in the SQL database so sign-out and
// password reset hold across separate CLI processes.
func (c *Container) useSQLSessions(ctx context.Context) error {
	store := session.NewSQLStore(c.DBConn)
	removed, err := store.DeleteExpired(ctx)
	if err != nil {
		return fmt.Errorf("failed to prune session state: %w", err)
	}
	if removed > 0 {
		c.Logger.Debug("pruned expired session state", "rows", removed)
	}
	c.Sessions = store
	return nil
}

func (c *Container) initGenerator(ctx context.Context) error {
	cfg := c.Config
	oauth := gemini.OAuthConfig{
		AccessToken:  cfg.GeminiAccessToken,
		ClientID:     cfg.OAuthClientID,
		ClientSecret: cfg.OAuthClientSecret,
		TokenURL:     cfg.OAuthTokenURL,
		Scopes:       cfg.OAuthScopes,
	}

	breaker := gemini.DefaultBreakerConfig()
	breaker.Enabled = cfg.GeminiCircuitBreaker

	client, err := gemini.NewClient(gemini.Config{
		BaseURL:     cfg.GeminiBaseURL,
		Model:       cfg.GeminiModel,
		APIKey:      cfg.GeminiAPIKey,
		TokenSource: oauth.TokenSource(ctx),
		Timeout:     cfg.GeminiTimeout,
		Breaker:     breaker,
	}, c.Logger)
	if errors.Is(err, gemini.ErrNoCredentials) {
		c.Logger.Warn("summarizer has no credentials, set GEMINI_API_KEY or OAuth client credentials")
		c.Generator = unconfiguredGenerator{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create summarizer client: %w", err)
	}
	c.Generator = client
	return nil
}

func (c *Container) initHandlers() error {
	cfg := c.Config

	c.CreateTaskHandler = commands.NewCreateTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork, c.Metrics)
	c.DeleteTaskHandler = commands.NewDeleteTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork, c.Metrics)
	c.ListTasksHandler = queries.NewListTasksHandler(c.TaskRepo)
	c.SummarizeHandler = summaryApp.NewSummarizeHandler(c.TaskRepo, c.Generator, c.OutboxRepo, c.Logger, c.Metrics)

	if cfg.CalDAVURL != "" {
		exporter := caldav.NewExporter(cfg.CalDAVURL, cfg.CalDAVUsername, cfg.CalDAVPassword, c.Logger).
			WithCalendarPath(cfg.CalDAVCalendar)
		c.ExportDeadlinesHandler = calendarApp.NewExportDeadlinesHandler(c.TaskRepo, exporter, c.Logger)
	}

	tokens, err := identitySecurity.NewJWTIssuer(cfg.JWTSecret, cfg.SessionTTL)
	if err != nil {
		return fmt.Errorf("failed to create token issuer: %w", err)
	}
	c.AuthService = auth.NewService(auth.Dependencies{
		Users:         c.UserRepo,
		Hasher:        identitySecurity.NewBcryptHasher(0),
		Tokens:        tokens,
		Sessions:      c.Sessions,
		Mailer:        mail.NewLogMailer(c.Logger),
		Outbox:        c.OutboxRepo,
		UoW:           c.UnitOfWork,
		Logger:        c.Logger,
		ResetTokenTTL: cfg.ResetTokenTTL,
	})
	return nil
}

// NewOutboxProcessor builds the relay that publishes outbox messages. The
// caller owns the returned publisher.
func (c *Container) NewOutboxProcessor() (*outbox.Processor, eventbus.Publisher, error) {
	cfg := c.Config

	var publisher eventbus.Publisher
	if cfg.RabbitMQURL == "" {
		c.Logger.Warn("RABBITMQ_URL not set, events will be logged only")
		publisher = eventbus.NewLogPublisher(c.Logger)
	} else {
		rabbit, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, c.Logger)
		if err != nil {
			if !cfg.IsDevelopment() {
				return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
			}
			c.Logger.Warn("RabbitMQ not available, using log publisher", "error", err)
			publisher = eventbus.NewLogPublisher(c.Logger)
		} else {
			c.Health.Register("rabbitmq", observability.PingChecker(rabbit.Ping, observability.HealthStatusDegraded))
			publisher = rabbit
		}
	}

	processorCfg := outbox.DefaultProcessorConfig()
	if cfg.OutboxPollInterval > 0 {
		processorCfg.PollInterval = cfg.OutboxPollInterval
	}
	if cfg.OutboxBatchSize > 0 {
		processorCfg.BatchSize = cfg.OutboxBatchSize
	}
	if cfg.OutboxMaxRetries > 0 {
		processorCfg.MaxRetries = cfg.OutboxMaxRetries
	}
	if cfg.OutboxRetentionDays > 0 {
		processorCfg.RetentionDays = cfg.OutboxRetentionDays
	}
	if cfg.OutboxCleanupInterval > 0 {
		processorCfg.CleanupInterval = cfg.OutboxCleanupInterval
	}

	return outbox.NewProcessor(c.OutboxRepo, publisher, processorCfg, c.Logger, c.Metrics), publisher, nil
}

// ExportDeadlines runs the calendar export, or fails when no server is configured.
func (c *Container) ExportDeadlines(ctx context.Context, cmd calendarApp.ExportDeadlinesCommand) (*calendarApp.ExportResult, error) {
	if c.ExportDeadlinesHandler == nil {
		return nil, ErrCalendarNotConfigured
	}
	return c.ExportDeadlinesHandler.Handle(ctx, cmd)
}

// Close releases every connection opened by the container, newest first.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

func sessionBackend(client *redis.Client) string {
	if client != nil {
		return "redis"
	}
	return "memory"
}

// unconfiguredGenerator stands in for the summarizer when no credentials exist.
type unconfiguredGenerator struct{}

func (unconfiguredGenerator) Generate(context.Context, string) (string, error) {
	return "", gemini.ErrNoCredentials
}
