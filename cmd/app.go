package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/expense-tracker-client/internal"
	"github.com/frahmantamala/expense-tracker-client/internal/aggregate"
	"github.com/frahmantamala/expense-tracker-client/internal/auth"
	"github.com/frahmantamala/expense-tracker-client/internal/category"
	"github.com/frahmantamala/expense-tracker-client/internal/contract"
	"github.com/frahmantamala/expense-tracker-client/internal/core/datamodel"
	"github.com/frahmantamala/expense-tracker-client/internal/dashboard"
	"github.com/frahmantamala/expense-tracker-client/internal/expense"
	"github.com/frahmantamala/expense-tracker-client/internal/gateway"
	"github.com/frahmantamala/expense-tracker-client/internal/salary"
	"github.com/frahmantamala/expense-tracker-client/internal/session"
	"github.com/frahmantamala/expense-tracker-client/internal/session/gormstore"
	"github.com/frahmantamala/expense-tracker-client/pkg/logger"
	"github.com/spf13/cobra"
)

// Dependencies is everything a command may need, built from the config.
type Dependencies struct {
	Config     *internal.Config
	Logger     *slog.Logger
	DB         *gormstore.Database
	Store      *session.Store
	Gateway    *gateway.Gateway
	Auth       *auth.Controller
	Expenses   *expense.Service
	Salaries   *salary.Service
	Categories *category.Service
}

func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	lg := logger.LoggerWrapper()

	loc, err := config.Display.Location()
	if err != nil {
		return nil, err
	}
	datamodel.SetLocation(loc)

	deps := &Dependencies{Config: config, Logger: lg}

	persister, err := deps.openPersister(ctx)
	if err != nil {
		return nil, err
	}

	var opts []session.Option
	if config.Session.EncryptionKey != "" {
		key, err := session.ParseKey(config.Session.EncryptionKey)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("invalid session encryption key: %w", err)
		}
		sealer, err := session.NewChaChaSealer(key)
		if err != nil {
			deps.Close()
			return nil, err
		}
		opts = append(opts, session.WithSealer(sealer))
	}
	deps.Store = session.NewStore(persister, lg.With("component", "session"), opts...)
	deps.Store.Restore(ctx)

	gwOpts, err := contractOptions(ctx, config, lg)
	if err != nil {
		deps.Close()
		return nil, err
	}
	deps.Gateway, err = gateway.New(gateway.Config{
		BaseURL: config.API.BaseURL,
		Timeout: config.API.Timeout,
	}, deps.Store, lg.With("component", "gateway"), gwOpts...)
	if err != nil {
		deps.Close()
		return nil, err
	}

	deps.Auth = auth.NewController(deps.Gateway, deps.Store, lg.With("component", "auth"))
	deps.Expenses = expense.NewService(deps.Gateway, lg.With("component", "expense"))
	deps.Salaries = salary.NewService(deps.Gateway, lg.With("component", "salary"))
	deps.Categories = category.NewService(deps.Gateway, lg.With("component", "category"))

	return deps, nil
}

func (d *Dependencies) openPersister(ctx context.Context) (session.Persister, error) {
	cfg := d.Config.Session
	if cfg.Driver == "memory" {
		d.Logger.Warn("session store is in memory, the login will not survive this command")
		return session.NewMemoryPersister(), nil
	}

	db, err := openSessionDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare session database: %w", err)
	}
	d.DB = db
	return gormstore.NewPersister(db.Gorm, cfg.Profile), nil
}

func openSessionDB(ctx context.Context, cfg internal.SessionConfig) (*gormstore.Database, error) {
	db, err := gormstore.Open(ctx, gormstore.Config{
		Driver:          cfg.Driver,
		DSN:             cfg.DSN,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session database: %w", err)
	}
	return db, nil
}

// contractOptions routes API traffic through the contract validator when
// api.validate_contract is set.
func contractOptions(ctx context.Context, config *internal.Config, lg *slog.Logger) ([]gateway.Option, error) {
	if !config.API.ValidateContract {
		return nil, nil
	}
	validator, err := contract.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load api contract: %w", err)
	}
	client := &http.Client{
		Timeout: config.API.Timeout,
		Transport: &contract.Transport{
			Base:      http.DefaultTransport,
			Validator: validator,
			Strict:    config.API.StrictContract,
			Logger:    lg.With("component", "contract"),
		},
	}
	return []gateway.Option{gateway.WithHTTPClient(client)}, nil
}

// newDashboard builds a dashboard that is reset whenever the session ends.
func (d *Dependencies) newDashboard(month aggregate.MonthSelector) *dashboard.Dashboard {
	board := dashboard.New(d.Expenses, d.Salaries, d.Categories, month, d.Logger.With("component", "dashboard"))
	board.Subscribe(d.Store.Events())
	return board
}

// requireSession fails early, before any request, when nobody is logged in.
func (d *Dependencies) requireSession() error {
	if !d.Store.Authenticated() {
		return internal.ErrUnauthenticated.WithDetails(internal.ValidationErrors{
			Errors: []internal.ValidationError{{Field: "session", Message: "Not logged in. Run `expense-tracker login` first."}},
		})
	}
	return nil
}

func (d *Dependencies) Close() {
	if d.DB == nil {
		return
	}
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("session database close error", "error", err)
	}
}

// withDependencies is the RunE body shared by every API command.
func withDependencies(run func(cmd *cobra.Command, deps *Dependencies, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		deps, err := initializeDependencies(cmd.Context())
		if err != nil {
			return err
		}
		defer deps.Close()
		return run(cmd, deps, args)
	}
}
