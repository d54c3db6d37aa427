package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	"github.com/arnold/goalforge-api/internal/config"
	"github.com/arnold/goalforge-api/internal/database"
	"github.com/arnold/goalforge-api/internal/handlers"
	"github.com/arnold/goalforge-api/internal/logger"
	"github.com/arnold/goalforge-api/internal/metrics"
	"github.com/arnold/goalforge-api/internal/middleware"
	"github.com/arnold/goalforge-api/internal/productivity"
	"github.com/arnold/goalforge-api/internal/routes"
	"github.com/arnold/goalforge-api/internal/services"
	"github.com/arnold/goalforge-api/internal/session"
	"github.com/arnold/goalforge-api/internal/store"
)

const deadlineJobTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "goalforge: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	if cfg.WeakJWTSecret() {
		log.Warn("JWT_SECRET is not set; tokens are signed with the development default")
	}

	var fbApp *firebase.App
	if cfg.UsesFirebase() {
		fbApp, err = database.NewFirebaseApp(ctx, cfg.FirebaseCredentials, cfg.FirebaseProjectID)
		if err != nil {
			return err
		}
		log.Info("firebase initialized", zap.String("project", cfg.FirebaseProjectID))
	}

	backend, err := openBackend(ctx, cfg, fbApp, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Warn("closing store", zap.Error(err))
		}
	}()

	verifier, issuer, err := newAuth(ctx, cfg, fbApp)
	if err != nil {
		return err
	}

	var msgClient *messaging.Client
	if fbApp != nil {
		msgClient, err = fbApp.Messaging(ctx)
		if err != nil {
			log.Warn("messaging unavailable, push disabled", zap.Error(err))
			msgClient = nil
		}
	}

	stats := metrics.New()
	clock := productivity.SystemClock
	norm := productivity.NewNormalizer(cfg.Location, log)
	push := services.NewPushService(msgClient, backend, log)
	notes := services.NewNotifications(backend, norm, push, clock, log).WithMetrics(stats)
	planner := services.NewPlanner(backend, norm, notes, clock, log)
	var tokenIssuer services.TokenIssuer
	if issuer != nil {
		tokenIssuer = issuer
	}
	accounts := services.NewAccounts(backend, backend, tokenIssuer, session.NewRoleAuthorizer(backend), notes, clock, log)
	deadlines := services.NewDeadlineNotifier(backend, backend, norm, notes, clock, log).WithMetrics(stats)

	if cfg.SeedAdminEmail != "" {
		if err := accounts.PromoteAdmin(ctx, cfg.SeedAdminEmail); err != nil {
			log.Warn("seed admin not promoted", zap.String("email", cfg.SeedAdminEmail), zap.Error(err))
		}
	}

	scheduler := services.NewScheduler(cfg.Location, log)
	if _, err := scheduler.ScheduleInterval(cfg.DeadlineCheckInterval, func() {
		jobCtx, cancel := context.WithTimeout(ctx, deadlineJobTimeout)
		defer cancel()
		deadlines.Run(jobCtx)
	}); err != nil {
		return fmt.Errorf("schedule deadline checks: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "goalforge-api",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(middleware.RequestLogger(log))
	app.Use(middleware.Instrument(stats))

	routes.Setup(app, handlers.New(handlers.Deps{
		Planner:       planner,
		Notifications: notes,
		Accounts:      accounts,
		Store:         backend,
		Normalizer:    norm,
		Verifier:      verifier,
		Metrics:       stats,
		Log:           log,
	}))

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening",
			zap.String("port", cfg.Port),
			zap.String("store", cfg.StoreBackend),
			zap.String("auth", cfg.AuthProvider),
			zap.Bool("push", push.Enabled()),
		)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("shutdown", zap.Error(err))
		}
	}
	log.Info("shutdown complete")
	return nil
}

func openBackend(ctx context.Context, cfg *config.Config, fbApp *firebase.App, log *zap.Logger) (store.Backend, error) {
	switch cfg.StoreBackend {
	case config.BackendFirestore:
		client, err := fbApp.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("firestore: %w", err)
		}
		return store.NewFirestoreStore(client, log), nil
	default:
		level := gormlogger.Warn
		if cfg.LogLevel == "debug" {
			level = gormlogger.Info
		}
		db, err := database.Connect(cfg.DatabaseURL, level)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db); err != nil {
			return nil, err
		}
		return store.NewGormStore(db, log), nil
	}
}

// newAuth returns the request verifier and, for local auth, the token issuer
// used by password sign-in.
func newAuth(ctx context.Context, cfg *config.Config, fbApp *firebase.App) (middleware.TokenVerifier, *middleware.JWTIssuer, error) {
	if cfg.AuthProvider == config.AuthFirebase {
		client, err := fbApp.Auth(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("firebase auth: %w", err)
		}
		return middleware.NewFirebaseVerifier(client), nil, nil
	}
	issuer := middleware.NewJWTIssuer(cfg.JWTSecret, cfg.JWTTTL)
	return issuer, issuer, nil
}
