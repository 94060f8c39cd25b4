package main

import (
	"context"
	"time"

	"wake-up-challenge/internal/api"
	"wake-up-challenge/internal/scheduler"
	"wake-up-challenge/internal/transport/http/middleware"
	"wake-up-challenge/internal/transport/http/server/handlers-fiber"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the wake-up scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()
	cfg, log := a.cfg, a.log

	serv := fiber.New(fiber.Config{
		Immutable:    true,
		ReadTimeout:  cfg.HTTP.RequestTimeout,
		WriteTimeout: cfg.HTTP.RequestTimeout,
	})
	serv.Use(recover.New())
	serv.Use(requestid.New())
	serv.Use(cors.New(cors.Config{AllowOrigins: cfg.HTTP.AllowOrigins}))
	serv.Use(middleware.RequestLogger(log))

	serv.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	h := handlers_fiber.NewHandler(log, a.uc)
	api.RegisterHandlers(serv, h, api.Middlewares{
		Auth:     middleware.Auth(middleware.AuthConfig{Secret: cfg.Auth.JWTSecret, Issuer: cfg.Auth.Issuer}),
		Internal: middleware.HookKey(cfg.Auth.HookKey),
	})

	var jobs []scheduler.Job
	if cfg.Notifications.Enabled {
		jobs = append(jobs, scheduler.Job{
			Name: "notify",
			Run: func(ctx context.Context, at time.Time) error {
				_, err := a.uc.NotifyWakeUps(ctx, at)
				return err
			},
		})
	}
	if cfg.Notifications.WeeklyRollover {
		jobs = append(jobs, scheduler.Job{
			Name: "weekly-rollover",
			Due:  scheduler.WeeklyAt(time.Monday, 0, 0),
			Run: func(ctx context.Context, _ time.Time) error {
				_, err := a.uc.WeeklyRollover(ctx)
				return err
			},
		})
	}

	var locker scheduler.Locker = scheduler.NopLocker{}
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = client.Close() }()
		locker = scheduler.NewRedisLocker(client, "wake-up-challenge:")
	}

	sched := scheduler.New(log, scheduler.Options{
		Location: cfg.Location(),
		Interval: cfg.Notifications.Interval,
		Locker:   locker,
	}, jobs...)
	schedDone := make(chan struct{})
	go func() {
		defer close(schedDone)
		_ = sched.Run(ctx)
	}()

	go func() {
		if err := serv.Listen(cfg.ServerAddr()); err != nil {
			log.Errorw("failed to start server", "error", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = serv.Shutdown()
		<-schedDone
		close(done)
	}()

	select {
	case <-done:
	case <-shutdownCtx.Done():
		log.Warnw("server shutdown timeout", "timeout", cfg.Server.ShutdownTimeout)
	}
	return nil
}
