package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	auth "github.com/goliatone/go-attend-auth"
	"github.com/goliatone/go-attend-auth/activitymap"
	"github.com/goliatone/go-attend-auth/config"
)

const shutdownTimeout = 10 * time.Second

const usage = `usage:
  attend-auth                      serve the auth API
  attend-auth promote EMAIL ROLE   change the role of a user (pending, member, admin)`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "attend-auth:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := newZap(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	provider := auth.NewZapLoggerProvider(logger)

	db, err := auth.OpenDB(auth.DBOptions{
		Driver: cfg.DBDriver,
		DSN:    cfg.DatabaseURL,
		Debug:  cfg.Debug,
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	repo := auth.NewRepositoryManager(db)
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := repo.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	switch {
	case len(args) == 0 || args[0] == "serve":
		return serve(ctx, cfg, repo, provider)
	case args[0] == "promote" && len(args) == 3:
		sink := activitymap.NewLogSink(provider.GetLogger("auth.activity"))
		return promote(ctx, repo.Users(), sink, provider.GetLogger("attend-auth"), args[1], args[2])
	default:
		return errors.New(usage)
	}
}

// promote moves a user to role through the role state machine
func promote(ctx context.Context, users auth.Users, sink auth.ActivitySink, log auth.Logger, email, role string) error {
	target, ok := auth.ParseRole(role)
	if !ok {
		return fmt.Errorf("unknown role %q", role)
	}

	user, err := users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("find %s: %w", email, err)
	}

	sm := auth.NewRoleStateMachine(users,
		auth.WithStateMachineActivitySink(sink),
		auth.WithStateMachineLogger(log),
	)

	from := user.Role
	updated, err := sm.Transition(ctx, auth.ActorRef{Type: "cli"}, user, target,
		auth.WithTransitionReason("promote command"),
	)
	if err != nil {
		return err
	}

	log.Info("role updated", "user_id", updated.ID.String(), "from", from, "to", updated.Role)
	return nil
}

func serve(ctx context.Context, cfg *config.Config, repo auth.RepositoryManager, provider auth.LoggerProvider) error {
	log := provider.GetLogger("attend-auth")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	metrics, err := auth.NewMetricsActivitySink(reg)
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		AppName:               "attend-auth",
		DisableStartupMessage: true,
		ErrorHandler:          auth.FiberErrorHandler(log),
	})
	app.Use(recover.New())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	sink := auth.MultiActivitySink{
		metrics,
		activitymap.NewLogSink(provider.GetLogger("auth.activity")),
	}

	if err := mountAuth(app.Group(cfg.APIPrefix), cfg, repo.Users(), provider, sink); err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.HTTPAddr, "prefix", cfg.APIPrefix, "driver", cfg.DBDriver)
		errc <- app.Listen(cfg.HTTPAddr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

func mountAuth(router fiber.Router, cfg *config.Config, store auth.IdentityStore, provider auth.LoggerProvider, sink auth.ActivitySink) error {
	tokens, err := auth.NewTokenServiceFromConfig(cfg, provider.GetLogger("auth.token_service"))
	if err != nil {
		return err
	}

	hasher := auth.NewBcryptHasher(cfg.BcryptCost)

	register := auth.NewRegisterUserHandler(store).
		WithLoggerProvider(provider).
		WithHasher(hasher).
		WithValidator(auth.RegistrationValidator{StrictPhoneCode: cfg.StrictPhoneCode}).
		WithHashid(cfg.UseHashid).
		WithActivitySink(sink)

	users := auth.NewUserProvider(store).
		WithLoggerProvider(provider).
		WithHasher(hasher)

	auther := auth.NewAuthenticator(users, tokens).
		WithLoggerProvider(provider).
		WithActivitySink(sink)

	validator, err := gateValidator(cfg, tokens, provider)
	if err != nil {
		return err
	}

	httpAuth, err := auth.NewHTTPAuthenticator(validator, cfg)
	if err != nil {
		return err
	}
	httpAuth.Logger = provider.GetLogger("auth.http")
	httpAuth.WithActivitySink(sink)

	auth.RegisterAuthRoutes(router,
		auth.WithControllerLogger(provider.GetLogger("auth.controller")),
		auth.WithControllerDebug(cfg.Debug),
		auth.WithRegisterHandler(register),
		auth.WithAuthenticator(auther),
		auth.WithGate(httpAuth.ProtectedRoute()),
		auth.WithContextKey(cfg.GetContextKey()),
	)
	return nil
}

// gateValidator accepts tokens from the current secret and, during a
// rotation, from the previous one
func gateValidator(cfg *config.Config, tokens *auth.TokenServiceImpl, provider auth.LoggerProvider) (auth.TokenValidator, error) {
	if cfg.TokenPreviousSecret == "" {
		return tokens, nil
	}

	previous, err := auth.NewTokenService([]byte(cfg.TokenPreviousSecret), cfg.TokenExpiration,
		auth.WithTokenIssuer(cfg.TokenIssuer),
		auth.WithTokenLogger(provider.GetLogger("auth.token_service.previous")),
	)
	if err != nil {
		return nil, err
	}

	return auth.NewMultiTokenValidator(tokens, previous), nil
}

func newZap(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
