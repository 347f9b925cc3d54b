package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stewardbooks/church-finance/internal"
	"github.com/stewardbooks/church-finance/internal/account"
	accountpg "github.com/stewardbooks/church-finance/internal/account/postgres"
	"github.com/stewardbooks/church-finance/internal/auth"
	"github.com/stewardbooks/church-finance/internal/balance"
	balancepg "github.com/stewardbooks/church-finance/internal/balance/postgres"
	"github.com/stewardbooks/church-finance/internal/budget"
	budgetpg "github.com/stewardbooks/church-finance/internal/budget/postgres"
	"github.com/stewardbooks/church-finance/internal/fund"
	fundpg "github.com/stewardbooks/church-finance/internal/fund/postgres"
	"github.com/stewardbooks/church-finance/internal/notify"
	"github.com/stewardbooks/church-finance/internal/reporting"
	"github.com/stewardbooks/church-finance/internal/transaction"
	transactionpg "github.com/stewardbooks/church-finance/internal/transaction/postgres"
	"github.com/stewardbooks/church-finance/internal/transport/rest"
	"github.com/stewardbooks/church-finance/pkg/logger"
	"github.com/stewardbooks/church-finance/pkg/retryexec"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	GormDB *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func setupRoutes(deps *Dependencies) {
	cfg := deps.Config

	exec := retryexec.New(retryexec.Options{
		MaxRetries:   cfg.Retry.MaxRetries,
		InitialDelay: cfg.Retry.InitialDelay,
	}, deps.Logger)

	caps := auth.NewStaticChecker()
	authMW := auth.NewMiddleware(caps, deps.Logger)
	notifier := notify.NewLogNotifier(deps.Logger)

	accountRepo := accountpg.NewAccountRepository(deps.GormDB)
	accountService := account.NewService(accountRepo, deps.Logger)

	transactionRepo := transactionpg.NewTransactionRepository(deps.GormDB)
	transactionService := transaction.NewService(transactionRepo, caps, exec, deps.Logger)

	entryStore := balancepg.NewEntryStore(deps.GormDB)
	balanceService := balance.NewService(entryStore, accountRepo, deps.Logger)

	budgetRepo := budgetpg.NewBudgetRepository(deps.GormDB)
	budgetService := budget.NewService(budgetRepo, balanceService, exec, deps.Logger)

	fundRepo := fundpg.NewFundRepository(deps.GormDB)
	fundService := fund.NewService(fundRepo, deps.Logger)

	handlers := rest.Handlers{
		Account:     account.NewHandler(accountService),
		Transaction: transaction.NewHandler(transactionService, notifier),
		Balance:     balance.NewHandler(balanceService),
		Budget:      budget.NewHandler(budgetService),
		Fund:        fund.NewHandler(fundService),
	}

	// Report endpoints stay dark unless a reporting service is configured.
	if cfg.Reporting.BaseURL != "" {
		client := reporting.NewClient(reporting.Config{
			BaseURL: cfg.Reporting.BaseURL,
			APIKey:  cfg.Reporting.APIKey,
			Timeout: cfg.Reporting.Timeout,
		}, deps.Logger)
		handlers.Reporting = reporting.NewHandler(client)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, handlers, authMW, deps.Logger)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"), config.Observability.Logging.Level)

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	return &Dependencies{
		Config: config,
		Logger: logger.L(),
		DB:     db,
		GormDB: gormDB,
		Router: chi.NewRouter(),
	}, nil
}

func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
