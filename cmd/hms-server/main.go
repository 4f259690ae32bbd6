package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/primehealth/hms/internal/config"
	"github.com/primehealth/hms/internal/domain/appointment"
	"github.com/primehealth/hms/internal/domain/dashboard"
	"github.com/primehealth/hms/internal/domain/hospital"
	"github.com/primehealth/hms/internal/domain/patient"
	"github.com/primehealth/hms/internal/domain/prescription"
	"github.com/primehealth/hms/internal/domain/staff"
	"github.com/primehealth/hms/internal/platform/apperr"
	"github.com/primehealth/hms/internal/platform/auth"
	"github.com/primehealth/hms/internal/platform/blobstore"
	"github.com/primehealth/hms/internal/platform/db"
	"github.com/primehealth/hms/internal/platform/middleware"
	"github.com/primehealth/hms/internal/platform/notification"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hms-server",
		Short: "Multi-tenant hospital management API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(tenantCmd())

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
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")
			dir, _ := cmd.Flags().GetString("dir")

			ctx := context.Background()
			pool, cfg, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()
			if dir == "" {
				dir = filepath.Join(cfg.MigrationsDir, "global")
			}

			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
			migrator := db.NewMigrator(pool, dir).WithLogger(logger)
			fmt.Printf("Running migrations on schema: %s\n", schema)

			count, err := migrator.Up(ctx, schema)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("schema", db.GlobalSchema, "Target schema for migrations")
	upCmd.Flags().String("dir", "", "Path to migrations directory (default <MIGRATIONS_DIR>/global)")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")
			dir, _ := cmd.Flags().GetString("dir")

			ctx := context.Background()
			pool, cfg, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()
			if dir == "" {
				dir = filepath.Join(cfg.MigrationsDir, "global")
			}

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx, schema)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("Migration status for schema: %s\n", schema)
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
	statusCmd.Flags().String("schema", db.GlobalSchema, "Target schema for migrations")
	statusCmd.Flags().String("dir", "", "Path to migrations directory (default <MIGRATIONS_DIR>/global)")
	cmd.AddCommand(statusCmd)

	return cmd
}

func tenantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Manage tenant schemas",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Provision a tenant schema and run its migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := cmd.Flags().GetString("id")
			if id == "" {
				return fmt.Errorf("--id is required")
			}

			ctx := context.Background()
			pool, cfg, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			fmt.Printf("Provisioning tenant: %s\n", id)
			if err := db.CreateTenantSchema(ctx, pool, id, filepath.Join(cfg.MigrationsDir, "tenant")); err != nil {
				return err
			}
			fmt.Println("Tenant schema created successfully.")
			return nil
		},
	}
	createCmd.Flags().String("id", "", "Tenant identifier (the hospital's tenant_id)")
	cmd.AddCommand(createCmd)

	return cmd
}

func openPool(ctx context.Context) (*pgxpool.Pool, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, nil, err
	}
	return pool, cfg, nil
}

// accountStoreAdapter exposes the staff service as the account backend of
// hospital registration, avoiding a hospital -> staff package dependency.
type accountStoreAdapter struct {
	svc *staff.Service
}

func (a *accountStoreAdapter) EmailExists(ctx context.Context, email string) (bool, error) {
	return a.svc.EmailExists(ctx, email)
}

func (a *accountStoreAdapter) CreateAdmin(ctx context.Context, acct hospital.AdminAccount) error {
	return a.svc.CreateAccount(ctx, &staff.User{
		FirstName: acct.FirstName,
		LastName:  acct.LastName,
		Email:     acct.Email,
		Password:  acct.HashedPassword,
		Role:      acct.Role,
		TenantID:  acct.TenantID,
		Status:    staff.StatusActive,
	})
}

// schemaProvisioner backs hospital registration with tenant schema
// provisioning on the shared pool.
type schemaProvisioner struct {
	pool *pgxpool.Pool
	dir  string
}

func (p *schemaProvisioner) Provision(ctx context.Context, tenantID string) error {
	return db.CreateTenantSchema(ctx, p.pool, tenantID, p.dir)
}

func (p *schemaProvisioner) Rollback(ctx context.Context, tenantID string) error {
	return db.DropTenantSchema(ctx, p.pool, tenantID)
}

// hospitalDirectoryAdapter surfaces hospital letterhead details to document
// rendering.
type hospitalDirectoryAdapter struct {
	svc *hospital.Service
}

func (a *hospitalDirectoryAdapter) HospitalInfo(ctx context.Context, tenantID string) (string, string, error) {
	h, err := a.svc.Get(ctx, tenantID)
	if err != nil {
		return "", "", err
	}
	return h.Name, h.Address, nil
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
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	registry := db.NewRegistry(cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	defer registry.Close()

	// Mail
	var sender notification.EmailSender
	if cfg.SMTPHost != "" {
		sender = notification.NewSMTPSender(notification.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPEmail,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPEmail,
			FromName: cfg.FromName,
		})
	} else {
		sender = &notification.LogSender{Logger: logger}
	}
	mailer := notification.NewMailer(sender, notification.NewTemplateEngine(), logger)

	images := blobstore.NewInMemoryImageStore()

	// Domain services
	staffSvc := staff.NewService(staff.NewRepoPG(pool), images, mailer,
		[]byte(cfg.JWTSecret), cfg.TokenTTL(), logger)

	hospitalSvc := hospital.NewService(
		hospital.NewRepoPG(pool),
		&accountStoreAdapter{svc: staffSvc},
		&schemaProvisioner{pool: pool, dir: filepath.Join(cfg.MigrationsDir, "tenant")},
		mailer, logger)

	patientSvc := patient.NewService(patient.NewRepoPG())

	appointmentRepo := appointment.NewRepoPG()
	appointmentSvc := appointment.NewService(appointmentRepo, patientSvc, staffSvc)

	prescriptionSvc := prescription.NewService(prescription.NewRepoPG(), patientSvc, staffSvc,
		&hospitalDirectoryAdapter{svc: hospitalSvc}, logger)

	dashboardSvc := dashboard.NewService(patient.NewRepoPG(), appointmentRepo, staffSvc, appointmentSvc, logger)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(logger, cfg.IsProduction())

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: strings.Split(cfg.CORSOrigins, ","),
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	api := e.Group("/api")
	protected := api.Group("", auth.Middleware([]byte(cfg.JWTSecret), staffSvc, registry))

	hospital.NewHandler(hospitalSvc).RegisterRoutes(api, protected)
	staff.NewHandler(staffSvc).RegisterRoutes(api, protected)
	patient.NewHandler(patientSvc).RegisterRoutes(protected)
	appointment.NewHandler(appointmentSvc).RegisterRoutes(protected)
	prescription.NewHandler(prescriptionSvc).RegisterRoutes(protected)
	dashboard.NewHandler(dashboardSvc).RegisterRoutes(protected)

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
