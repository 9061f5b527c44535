package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/bitsbybeier/backend/config"
	"github.com/bitsbybeier/backend/googleauth"
	"github.com/bitsbybeier/backend/handlers"
	"github.com/bitsbybeier/backend/internal/observability"
	"github.com/bitsbybeier/backend/middleware"
	"github.com/bitsbybeier/backend/repositories"
	"github.com/bitsbybeier/backend/repositories/postgres"
	"github.com/bitsbybeier/backend/services"
	"github.com/bitsbybeier/backend/session"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repositories
	Users     repositories.UserRepository
	Contents  repositories.ContentRepository
	TxManager repositories.TransactionManager

	// Services
	Accounts *services.AccountService
	Content  *services.ContentService

	// Auth
	Verifier  *googleauth.Verifier
	Issuer    *session.Issuer
	Validator *session.Validator

	// Observability
	Registry *prometheus.Registry
	Metrics  *observability.Metrics

	// HTTP
	AuthMiddleware *middleware.AuthMiddleware
	AuthHandler    *handlers.AuthHandler
	ContentHandler *handlers.ContentHandler
	HealthHandler  *handlers.HealthHandler
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps.initObservability(cfg)

	if err := deps.initAuth(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	deps.initServices()
	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase opens the connection pool and ensures the schema exists
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	db, err := postgres.NewDB(cfg.Database, d.Logger)
	if err != nil {
		return err
	}

	if err := db.InitSchema(ctx); err != nil {
		return err
	}

	d.DB = db
	d.Users = postgres.NewUserRepository(db, d.Logger)
	d.Contents = postgres.NewContentRepository(db, d.Logger)
	d.TxManager = postgres.NewTransactionManager(db, d.Logger)
	return nil
}

func (d *Dependencies) initObservability(cfg *config.Config) {
	if !cfg.Observability.MetricsEnabled {
		return
	}
	d.Registry = prometheus.NewRegistry()
	d.Metrics = observability.NewMetrics(d.Registry)
}

// initAuth builds the identity assertion verifier and the session token
// issuer/validator pair from startup configuration
func (d *Dependencies) initAuth(cfg *config.Config) error {
	d.Verifier = googleauth.NewVerifier(googleauth.Config{
		ClientID: cfg.GoogleAuth.ClientID,
	})

	issuer, err := session.NewIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.Validity(), d.Logger)
	if err != nil {
		return err
	}
	d.Issuer = issuer

	validator, err := session.NewValidator(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience)
	if err != nil {
		return err
	}
	d.Validator = validator

	d.AuthMiddleware = middleware.NewAuthMiddleware(validator, d.Logger)
	return nil
}

func (d *Dependencies) initServices() {
	d.Accounts = services.NewAccountService(d.Users, d.Logger)
	d.Content = services.NewContentService(d.Contents, d.TxManager, d.Logger)
}

func (d *Dependencies) initHandlers() {
	d.AuthHandler = handlers.NewAuthHandler(d.Verifier, d.Accounts, d.Issuer, d.Metrics, d.Logger)
	d.ContentHandler = handlers.NewContentHandler(d.Content, d.Logger)
	d.HealthHandler = handlers.NewHealthHandler(d.DB, d.Logger)
}

// Close releases held resources
func (d *Dependencies) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
