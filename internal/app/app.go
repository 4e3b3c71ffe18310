package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"greeting-card-go/internal/config"
	"greeting-card-go/internal/db"
	"greeting-card-go/internal/greeting"
	"greeting-card-go/internal/handler"
	"greeting-card-go/internal/metrics"
	"greeting-card-go/internal/notifier"
	"greeting-card-go/internal/router"
	"greeting-card-go/internal/scheduler"
	"greeting-card-go/internal/store"
	"greeting-card-go/web"
)

// Run initializes and starts the application
func Run() error {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logrus.SetLevel(level)
	} else {
		logrus.Warnf("Unknown log level %q, using info", cfg.Log.Level)
	}

	logrus.Info("Starting Greeting Card Service")

	ctx := context.Background()

	st, err := newStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	n, err := newNotifier(ctx, cfg)
	if err != nil {
		_ = st.Close()
		return err
	}

	m := metrics.NewMetrics(prometheus.DefaultRegisterer)
	svc := greeting.NewService(st, n, m, cfg.Notifier.Timeout)

	var sched *scheduler.Scheduler
	var status handler.SchedulerStatus
	if cfg.Scheduler.Enabled {
		sched = scheduler.NewScheduler(&cfg.Scheduler, svc, m)
		if err := sched.RunOnce(); err != nil {
			logrus.WithError(err).Warn("Initial stats refresh failed")
		}
		if err := sched.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		status = sched
	}

	h := handler.NewHandlers(svc, status)
	engine, err := router.SetupRouter(h, web.Public())
	if err != nil {
		return fmt.Errorf("failed to set up router: %w", err)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.WithCORS(engine, cfg.Server.CORSAllowedOrigins),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logrus.Infof("Starting HTTP server on port %s", cfg.Server.Port)
		logrus.Infof("Open %s in your browser", cfg.Server.PublicURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if sched != nil {
		if err := sched.Stop(); err != nil {
			logrus.Errorf("Failed to stop scheduler: %v", err)
		}
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("HTTP server shutdown error: %v", err)
	}

	if err := n.Close(); err != nil {
		logrus.Errorf("Failed to close notifier: %v", err)
	}
	if err := st.Close(); err != nil {
		logrus.Errorf("Failed to close store: %v", err)
	}

	logrus.Info("Server stopped gracefully")
	return nil
}

func newStore(ctx context.Context, cfg config.StorageConfig) (store.Store, error) {
	switch cfg.Driver {
	case config.StorageJSON:
		st, err := store.NewJSONFileStore(cfg.JSONPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize greetings file: %w", err)
		}
		logrus.Infof("Using JSON file storage at %s", st.Path())
		return st, nil
	case config.StorageMySQL, config.StoragePostgres, config.StorageSQLite:
		conn, err := db.Init(cfg.Driver, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		logrus.Infof("Using %s storage", cfg.Driver)
		return store.NewSQLStore(conn), nil
	case config.StorageS3:
		st, err := store.NewS3Store(ctx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize object storage: %w", err)
		}
		logrus.Infof("Using S3 storage at s3://%s/%s", cfg.S3.Bucket, cfg.S3.Key)
		return st, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}

func newNotifier(ctx context.Context, cfg *config.Config) (notifier.Notifier, error) {
	composer := notifier.Composer{
		PublicURL: cfg.Server.PublicURL,
		From:      cfg.Notifier.From,
	}

	switch cfg.Notifier.Driver {
	case config.NotifierLog:
		logrus.Info("Using simulated email notifications")
		return notifier.NewLogNotifier(composer, logrus.StandardLogger()), nil
	case config.NotifierGmail:
		n, err := notifier.NewGmailNotifier(ctx, composer, cfg.Notifier.Gmail)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gmail notifier: %w", err)
		}
		logrus.Info("Using Gmail API for notifications")
		return n, nil
	case config.NotifierIMAP:
		logrus.Info("Using IMAP for notifications")
		return notifier.NewIMAPNotifier(composer, cfg.Notifier.IMAP), nil
	default:
		return nil, fmt.Errorf("unsupported notifier driver: %s", cfg.Notifier.Driver)
	}
}
