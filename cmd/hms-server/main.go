package main

import (
	"context"
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

	"github.com/hms/hms/internal/config"
	"github.com/hms/hms/internal/domain/directory"
	"github.com/hms/hms/internal/domain/identity"
	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/domain/scheduling"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/db"
	"github.com/hms/hms/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hms-server",
		Short: "Hospital Management API Server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HMS API server",
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
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "", "Path to migrations directory (defaults to MIGRATIONS_DIR)")
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
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
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
	statusCmd.Flags().String("dir", "", "Path to migrations directory (defaults to MIGRATIONS_DIR)")
	cmd.AddCommand(statusCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed default departments and the bootstrap admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			adminEmail, _ := cmd.Flags().GetString("admin-email")
			adminName, _ := cmd.Flags().GetString("admin-name")
			adminPassword, _ := cmd.Flags().GetString("admin-password")
			if adminPassword == "" {
				return fmt.Errorf("--admin-password is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			userRepo := identity.NewUserRepoPG(pool)
			identitySvc := identity.NewService(userRepo, []byte(cfg.JWTSecret), cfg.TokenTTL)
			dirSvc := directory.NewService(
				directory.NewDepartmentRepoPG(pool),
				directory.NewDoctorRepoPG(pool),
				userRepo, pool)

			n, err := dirSvc.SeedDepartments(ctx)
			if err != nil {
				return fmt.Errorf("seed departments: %w", err)
			}
			fmt.Printf("Seeded %d department(s).\n", n)

			created, err := identitySvc.SeedAdmin(ctx, adminName, adminEmail, adminPassword)
			if err != nil {
				return fmt.Errorf("seed admin: %w", err)
			}
			if created {
				fmt.Printf("Created admin account %s.\n", adminEmail)
			} else {
				fmt.Println("Admin account already exists, skipping.")
			}
			return nil
		},
	}
	cmd.Flags().String("admin-email", "admin@hms.local", "Bootstrap admin email")
	cmd.Flags().String("admin-name", "Hospital Admin", "Bootstrap admin display name")
	cmd.Flags().String("admin-password", "", "Bootstrap admin password")
	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Repositories
	userRepo := identity.NewUserRepoPG(pool)
	departmentRepo := directory.NewDepartmentRepoPG(pool)
	doctorRepo := directory.NewDoctorRepoPG(pool)
	patientRepo := patient.NewRepoPG(pool)
	availabilityRepo := scheduling.NewAvailabilityRepoPG(pool)
	appointmentRepo := scheduling.NewAppointmentRepoPG(pool)
	noteRepo := scheduling.NewTreatmentNoteRepoPG(pool)

	// Services
	identitySvc := identity.NewService(userRepo, []byte(cfg.JWTSecret), cfg.TokenTTL)
	dirSvc := directory.NewService(departmentRepo, doctorRepo, userRepo, pool)
	patientSvc := patient.NewService(patientRepo, userRepo, pool)
	schedSvc := scheduling.NewService(availabilityRepo, appointmentRepo, noteRepo, dirSvc, patientSvc, pool)

	// Deleting a doctor purges their scheduling data inside the same
	// transaction.
	dirSvc.SetPurger(schedSvc)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit(cfg.MaxBodySize))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// API groups
	api := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}

	// Anonymous traffic is limited per client IP; authenticated traffic
	// per user, so the limiter must run after the auth middleware.
	public := api.Group("", middleware.RateLimit(rateLimitCfg))
	authed := api.Group("")
	if cfg.IsDev() {
		authed.Use(auth.DevAuthMiddleware())
	} else {
		authed.Use(auth.JWTMiddleware([]byte(cfg.JWTSecret)))
	}
	authed.Use(middleware.RateLimit(rateLimitCfg))

	policy := auth.DefaultPolicy()

	// Routes
	identity.NewHandler(identitySvc).RegisterRoutes(public, authed)
	directory.NewHandler(dirSvc).RegisterRoutes(public, authed, policy)
	patient.NewHandler(patientSvc).RegisterRoutes(public, authed, policy)
	scheduling.NewHandler(schedSvc).RegisterRoutes(public, authed, policy)

	// Admin dashboard counters
	counts := dashboardCounts{
		doctors:           dirSvc.CountDoctors,
		patients:          patientSvc.CountPatients,
		appointments:      schedSvc.CountAppointments,
		appointmentsToday: schedSvc.CountAppointmentsToday,
	}
	authed.GET("/admin/dashboard", dashboardHandler(counts),
		auth.Require(policy, auth.OpDashboardView))

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

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

// dashboardCounts aggregates the admin dashboard counters from the
// domain services.
type dashboardCounts struct {
	doctors           func(context.Context) (int, error)
	patients          func(context.Context) (int, error)
	appointments      func(context.Context) (int, error)
	appointmentsToday func(context.Context) (int, error)
}

func dashboardHandler(counts dashboardCounts) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		doctors, err := counts.doctors(ctx)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		patients, err := counts.patients(ctx)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		appointments, err := counts.appointments(ctx)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		today, err := counts.appointmentsToday(ctx)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		return c.JSON(http.StatusOK, map[string]int{
			"doctors":            doctors,
			"patients":           patients,
			"appointments":       appointments,
			"appointments_today": today,
		})
	}
}
