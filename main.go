package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/utils"

	"k9medics_backend/internals/configs"
	database "k9medics_backend/internals/databases"
	"k9medics_backend/internals/features/donations/donations/scheduler"
	"k9medics_backend/internals/features/donations/donations/service"
	helper "k9medics_backend/internals/helpers"
	middlewares "k9medics_backend/internals/middlewares"
	routes "k9medics_backend/internals/route"
	"k9medics_backend/internals/seeds"
)

func main() {
	configs.LoadEnv()
	cfg := configs.Checkout

	app := fiber.New(fiber.Config{
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return helper.FromFiberError(c, err)
		},
	})

	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())

	// Request-ID + timing
	app.Use(func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = utils.UUID()
		}
		c.Set("X-Request-ID", id)
		c.Locals("reqid", id)
		start := time.Now()
		// provider calls get a little more room than the DB statement_timeout
		ctx, cancel := context.WithTimeout(c.Context(), 15*time.Second)
		defer cancel()
		c.SetUserContext(ctx)
		err := c.Next()
		log.Printf("[REQ] id=%s %s %s status=%d dur=%s", id, c.Method(), c.OriginalURL(), c.Response().StatusCode(), time.Since(start))
		return err
	})

	middlewares.SetupMiddlewares(app)

	database.ConnectDB()
	database.TunePool()
	database.WarmUpQueries()

	if configs.GetEnv("RUN_SEEDS") == "true" {
		seeds.RunAllSeeds(database.DB)
	}

	rdb, err := database.ConnectRedis(cfg)
	if err != nil {
		log.Printf("[WARN] %v", err)
	}

	provider, err := service.NewProvider(cfg)
	if err != nil {
		log.Fatalf("[ERROR] payment provider: %v", err)
	}
	log.Printf("[INFO] Payment provider: %s", provider.Name())

	repo := service.NewGormRepository(database.DB)
	sync := service.NewStatusSync(repo, service.NewNotifier(cfg))

	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	if _, err := scheduler.StartPendingExpiryScheduler(bgCtx, repo, cfg.PendingTTL, cfg.ExpiryCron); err != nil {
		log.Fatalf("[ERROR] %v", err)
	}

	routes.SetupRoutes(app, routes.Deps{
		DB:       database.DB,
		Redis:    rdb,
		Repo:     repo,
		Provider: provider,
		Sync:     sync,
		Checkout: cfg,
	})

	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	go func() {
		log.Printf("✅ Listening on :%s", port)
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	stopBackground()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
