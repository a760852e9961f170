package main

import (
	"context"
	crypto_rand "crypto/rand"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/labdesk/labdesk/internal/config"
	"github.com/labdesk/labdesk/internal/domain/account"
	"github.com/labdesk/labdesk/internal/domain/catalog"
	"github.com/labdesk/labdesk/internal/domain/dashboard"
	"github.com/labdesk/labdesk/internal/domain/dataops"
	"github.com/labdesk/labdesk/internal/domain/finance"
	"github.com/labdesk/labdesk/internal/domain/patient"
	"github.com/labdesk/labdesk/internal/domain/printing"
	"github.com/labdesk/labdesk/internal/domain/registration"
	"github.com/labdesk/labdesk/internal/domain/result"
	"github.com/labdesk/labdesk/internal/domain/settings"
	"github.com/labdesk/labdesk/internal/platform/auth"
	"github.com/labdesk/labdesk/internal/platform/db"
	"github.com/labdesk/labdesk/internal/platform/middleware"
	"github.com/labdesk/labdesk/internal/platform/store/sqlite"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "labdesk-server",
		Short: "Laboratory management API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(userCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations (postgres only)",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required to run migrations")
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s).\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required to check migrations")
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account with full access",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			displayName, _ := cmd.Flags().GetString("display-name")
			if username == "" || password == "" {
				return fmt.Errorf("--username and --password are required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			st, err := openStores(context.Background(), cfg)
			if err != nil {
				return err
			}
			defer st.close()

			svc := account.NewService(st.users)
			u := &account.User{Username: username, DisplayName: displayName}
			if err := svc.Create(context.Background(), u, password); err != nil {
				return err
			}
			fmt.Printf("Created account %q (%s).\n", u.Username, u.ID)
			return nil
		},
	}
	createCmd.Flags().String("username", "", "Login name")
	createCmd.Flags().String("password", "", "Password (min 8 characters)")
	createCmd.Flags().String("display-name", "", "Display name (defaults to the username)")
	cmd.AddCommand(createCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Install the default test catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			st, err := openStores(context.Background(), cfg)
			if err != nil {
				return err
			}
			defer st.close()

			count, err := catalog.NewService(st.tests).SeedDefaults(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("Seeded %d test(s).\n", count)
			return nil
		},
	}
}

// stores bundles the repository set from whichever driver is configured.
type stores struct {
	tests    catalog.Repository
	patients patient.PatientRepository
	visits   patient.VisitRepository
	results  result.Repository
	expenses finance.ExpenseRepository
	settings settings.Repository
	layouts  dashboard.Repository
	users    account.Repository

	// tx is nil for sqlite; the single-writer store serializes on its own.
	tx    func(ctx context.Context, fn func(ctx context.Context) error) error
	close func()
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.StoreDriver {
	case "postgres":
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		return &stores{
			tests:    catalog.NewRepoPG(pool),
			patients: patient.NewPatientRepoPG(pool),
			visits:   patient.NewVisitRepoPG(pool),
			results:  result.NewRepoPG(pool),
			expenses: finance.NewExpenseRepoPG(pool),
			settings: settings.NewRepoPG(pool),
			layouts:  dashboard.NewRepoPG(pool),
			users:    account.NewRepoPG(pool),
			tx: func(ctx context.Context, fn func(ctx context.Context) error) error {
				return db.WithTransaction(ctx, pool, fn)
			},
			close: pool.Close,
		}, nil

	case "sqlite":
		st, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return &stores{
			tests:    st.Tests(),
			patients: st.Patients(),
			visits:   st.Visits(),
			results:  st.Results(),
			expenses: st.Expenses(),
			settings: st.Settings(),
			layouts:  st.Dashboards(),
			users:    st.Users(),
			close:    func() { st.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func sessionSecret(cfg *config.Config, logger zerolog.Logger) ([]byte, error) {
	if cfg.SessionSecret != "" {
		return []byte(cfg.SessionSecret), nil
	}
	secret := make([]byte, 32)
	if _, err := crypto_rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate session secret: %w", err)
	}
	logger.Warn().Msg("SESSION_SECRET not set; sessions will not survive a restart")
	return secret, nil
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	st, err := openStores(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}
	defer st.close()
	logger.Info().Str("driver", cfg.StoreDriver).Msg("store opened")

	// Services. The catalog and result services cross-reference each other:
	// catalog edits push the new unit/range onto stored results, and result
	// edits write the corrected fields back onto the test.
	catalogSvc := catalog.NewService(st.tests)
	resultSvc := result.NewService(st.results)
	catalogSvc.SetResultSyncer(resultSvc)
	resultSvc.SetCatalogWriter(catalogSvc)

	patientSvc := patient.NewService(st.patients, st.visits, catalogSvc)
	registrationSvc := registration.NewService(patientSvc, resultSvc, catalogSvc, st.tx)
	settingsSvc := settings.NewService(st.settings)
	financeSvc := finance.NewService(st.expenses, patientSvc)
	dashboardSvc := dashboard.NewService(st.layouts)
	accountSvc := account.NewService(st.users)
	printingSvc := printing.NewService(patientSvc, resultSvc, settingsSvc)
	dataopsSvc := dataops.NewService(st.tests, st.patients, st.visits, st.results, st.expenses, st.settings, st.tx)

	secret, err := sessionSecret(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize sessions")
	}
	sessions := auth.NewSessionManager(secret, time.Duration(cfg.SessionTTLHours)*time.Hour)
	defer sessions.Close()

	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		created, err := accountSvc.Bootstrap(ctx, cfg.AdminUsername, cfg.AdminPassword)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to bootstrap admin account")
		}
		if created {
			logger.Info().Str("username", cfg.AdminUsername).Msg("bootstrapped admin account")
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:     []string{"Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	accountHandler := account.NewHandler(accountSvc, sessions)

	// Login is the only route reachable without a session.
	public := e.Group("/api/v1")
	accountHandler.RegisterPublicRoutes(public)

	api := e.Group("/api/v1", auth.RequireSession(sessions, accountSvc))
	accountHandler.RegisterRoutes(api)
	catalog.NewHandler(catalogSvc).RegisterRoutes(api)
	patient.NewHandler(patientSvc).RegisterRoutes(api)
	result.NewHandler(resultSvc).RegisterRoutes(api)
	registration.NewHandler(registrationSvc).RegisterRoutes(api)
	settings.NewHandler(settingsSvc).RegisterRoutes(api)
	finance.NewHandler(financeSvc, settingsSvc).RegisterRoutes(api)
	dashboard.NewHandler(dashboardSvc).RegisterRoutes(api)
	printing.NewHandler(printingSvc).RegisterRoutes(api)
	dataops.NewHandler(dataopsSvc).RegisterRoutes(api)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
