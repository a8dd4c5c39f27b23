package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"widget-board/internal/common/config"
	"widget-board/internal/common/logging"
	"widget-board/internal/common/middleware"
	"widget-board/internal/widgets/handlers"
	"widget-board/internal/widgets/repository"
	"widget-board/internal/widgets/service"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const defaultWidgetsPort = "3002"

type serveFlags struct {
	port        string
	logLevel    string
	journalPath string
}

func serveCmd() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the widget board HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if os.Getenv("PORT") == "" {
				cfg.Port = defaultWidgetsPort
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = flags.port
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = flags.logLevel
			}
			if cmd.Flags().Changed("journal") {
				cfg.JournalDBPath = flags.journalPath
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&flags.port, "port", defaultWidgetsPort, "listen port (overrides PORT)")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "info", "debug, info, warn or error (overrides LOG_LEVEL)")
	cmd.Flags().StringVar(&flags.journalPath, "journal", "", "SQLite journal path, empty disables it (overrides JOURNAL_DB_PATH)")
	return cmd
}

// ============================================================
// Widget Service
// ============================================================

func serve(ctx context.Context, cfg *config.Config) error {
	logger := logging.New(os.Stderr, cfg.LogLevel, "widgets")

	svcOpts := []service.Option{service.WithLogger(logger)}
	handlerOpts := []handlers.Option{
		handlers.WithLogger(logger),
		handlers.WithMaxPageSize(cfg.MaxPageSize),
	}

	if cfg.JournalDBPath != "" {
		db, err := repository.OpenSQLite(cfg.JournalDBPath)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer db.Close()

		journal := repository.NewJournal(db)
		if err := journal.Init(ctx, cfg.JournalMigrations); err != nil {
			return fmt.Errorf("init journal: %w", err)
		}
		svcOpts = append(svcOpts, service.WithRecorder(journal))
		handlerOpts = append(handlerOpts, handlers.WithJournal(journal))
		logger.Info("journal enabled", "path", cfg.JournalDBPath)
	}

	svc := service.New(repository.NewStore(), svcOpts...)
	defer svc.Close()
	widgetHandler := handlers.NewWidgetHandler(svc, handlerOpts...)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Widget Service",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())

	// ============================================================
	// Health Check & Metrics Routes
	// ============================================================

	app.Get("/health/live", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})

	app.Get("/health/ready", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ready"})
	})

	app.Get("/metrics", middleware.Metrics())

	// ============================================================
	// Widget Routes
	// ============================================================

	widgetHandler.Routes(app)

	// ============================================================
	// Server Start
	// ============================================================

	return run(ctx, app, fmt.Sprintf(":%s", cfg.Port), cfg.Environment, logger)
}

// run слушает addr до SIGINT/SIGTERM или отмены ctx, затем мягко
// останавливает сервер.
func run(ctx context.Context, app *fiber.App, addr, env string, logger *log.Logger) error {
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		logger.Info("starting widget service", "addr", addr, "env", env)
		return app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(5 * time.Second)
	})

	if err := g.Wait(); err != nil && sigCtx.Err() == nil {
		return err
	}
	return nil
}
