package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cafeteria/internal/api"
	"cafeteria/internal/config"
	"cafeteria/internal/database"
	"cafeteria/internal/logger"
	"cafeteria/internal/messaging"
	"cafeteria/internal/models"
	"cafeteria/internal/services/kitchen"
	"cafeteria/internal/services/notification"
	"cafeteria/internal/services/session"
	"cafeteria/internal/services/shell"
	"cafeteria/migrations"
)

func main() {
	var (
		mode       = flag.String("mode", "shell", "Run mode (shell, menu, orders, notify, kitchen, migrate)")
		configPath = flag.String("config", "config.yaml", "Path to the YAML config file")
		week       = flag.String("week", "", "Any date of the week to open, YYYY-MM-DD (default: current week)")
		terminal   = flag.String("terminal", "", "Terminal id for the postgres session store (default: hostname)")
		prefetch   = flag.Int("prefetch", 10, "RabbitMQ prefetch count for notify and kitchen modes")
		debug      = flag.Bool("debug", false, "Log debug records to stderr")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *terminal != "" {
		cfg.Session.Terminal = *terminal
	}
	if cfg.Session.Terminal == "" {
		cfg.Session.Terminal, _ = os.Hostname()
	}

	level := slog.LevelWarn
	if *debug {
		level = slog.LevelDebug
	}
	log := logger.NewWithWriter(*mode, os.Stderr, level)
	requestID := logger.GenerateRequestID()

	var weekStart time.Time
	if *week != "" {
		d, err := models.ParseDate(*week)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: --week: %v\n", err)
			os.Exit(1)
		}
		weekStart = d.Time
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
		cancel()
	}()

	log.Info("service_started", fmt.Sprintf("Starting %s", *mode), requestID, map[string]interface{}{
		"mode":     *mode,
		"api":      cfg.API.BaseURL,
		"store":    cfg.Session.Store,
		"terminal": cfg.Session.Terminal,
	})

	switch *mode {
	case "shell", "menu", "orders":
		err = runShell(ctx, cfg, log, *mode, weekStart)
	case "notify":
		err = runNotify(ctx, cfg, log, *prefetch)
	case "kitchen":
		err = runKitchen(ctx, cfg, log, *prefetch)
	case "migrate":
		err = runMigrate(ctx, cfg, log, migrations.Files)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown mode %q\n", *mode)
		flag.Usage()
		os.Exit(1)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("service_failed", fmt.Sprintf("%s failed", *mode), requestID, err, nil)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log.Info("service_stopped", "Stopped", requestID, nil)
}

// loadConfig falls back to defaults plus environment when the file is absent
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config.FromEnv()
	}
	return cfg, err
}

// runShell serves the interactive shell, or runs a single command for the
// menu and orders modes
func runShell(ctx context.Context, cfg *config.Config, log *logger.Logger, mode string, weekStart time.Time) error {
	client, err := api.New(cfg.API.BaseURL, cfg.API.Timeout, log)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	publisher := openPublisher(cfg, log)
	defer publisher.Close()

	sh := shell.New(shell.Options{
		Backend:   client,
		Store:     store,
		Publisher: publisher,
		Logger:    log,
		Out:       os.Stdout,
		Terminal:  cfg.Session.Terminal,
		WeekStart: weekStart,
	})
	client.OnUnauthorized(sh.Expire)

	if err := sh.Restore(ctx); err != nil {
		return err
	}

	switch mode {
	case "menu":
		return sh.Execute(ctx, "menu")
	case "orders":
		return sh.Execute(ctx, "orders")
	}

	if !sh.Session().Valid() {
		fmt.Println("Not logged in. Start with: login <email>")
	}
	fmt.Println("Type help for commands.")

	// stdin reads do not observe ctx
	done := make(chan error, 1)
	go func() { done <- sh.Run(ctx, os.Stdin) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		fmt.Println()
		return nil
	}
}

func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (session.Store, func(), error) {
	if cfg.Session.Store != config.StorePostgres {
		return session.NewFileStore(cfg.Session.Path), func() {}, nil
	}

	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return session.NewPostgresStore(db, cfg.Session.Terminal, log), db.Close, nil
}

// openPublisher returns a no-op publisher when no broker is configured or
// reachable; events are informational and never block ordering
func openPublisher(cfg *config.Config, log *logger.Logger) messaging.EventPublisher {
	if !cfg.RabbitMQEnabled() {
		return messaging.NopPublisher{}
	}
	conn, err := messaging.New(cfg, log)
	if err != nil {
		log.Warn("rabbitmq_unavailable", "Publishing disabled: "+err.Error(), "startup", nil)
		return messaging.NopPublisher{}
	}
	return messaging.NewPublisher(conn, log)
}

func runNotify(ctx context.Context, cfg *config.Config, log *logger.Logger, prefetch int) error {
	if !cfg.RabbitMQEnabled() {
		return errors.New("notify mode requires rabbitmq.host")
	}
	conn, err := messaging.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}

	consumer := messaging.NewConsumer(conn, log, messaging.NotificationsQueue, "notify-"+cfg.Session.Terminal, prefetch)
	fmt.Printf("Listening for order updates on %s\n", messaging.NotificationsQueue)
	return notification.NewSubscriber(consumer, os.Stdout, log).Start(ctx)
}

func runKitchen(ctx context.Context, cfg *config.Config, log *logger.Logger, prefetch int) error {
	if !cfg.RabbitMQEnabled() {
		return errors.New("kitchen mode requires rabbitmq.host")
	}
	conn, err := messaging.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}

	consumer := messaging.NewConsumer(conn, log, messaging.OrderEventsQueue, "kitchen-"+cfg.Session.Terminal, prefetch)
	fmt.Printf("Listening for new orders on %s\n", messaging.OrderEventsQueue)
	return kitchen.NewBoard(consumer, os.Stdout, log).Start(ctx)
}

func runMigrate(ctx context.Context, cfg *config.Config, log *logger.Logger, files fs.FS) error {
	if !cfg.DatabaseEnabled() {
		return errors.New("migrate mode requires database.host")
	}
	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx, files); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	fmt.Println("Migrations applied")
	return nil
}
