package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/yfkiwi/growthPartnerAI/app/controllers"
	"github.com/yfkiwi/growthPartnerAI/app/repository"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/auth"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/billing"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/cache"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/config"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/constants"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/database"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/env"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/jobqueue"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/mail"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/notify"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/ratelimit"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/reportstore"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/router"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/statistics"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/submissions"
)

func main() {
	env.SetupEnvFile()
	cfg, err := config.Load(env.Environment())
	if err != nil {
		log.Fatalf("[Main] %v", err)
	}
	if cfg.IsDev() {
		log.SetLevel(log.LevelDebug)
	}

	app, manager := NewApplication(cfg)

	go func() {
		if err := app.Listen(cfg.ListenAddr()); err != nil {
			log.Fatalf("[Main] %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("[Main] Shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Errorf("[Main] HTTP shutdown: %v", err)
	}
	if manager != nil {
		manager.Stop()
	}
	if sqlDB, err := database.GetDB().DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// NewApplication wires the services and returns the fiber app together with
// the job queue manager, which is nil when Redis is unreachable.
func NewApplication(cfg *config.Config) (*fiber.App, *jobqueue.Manager) {
	database.SetupDatabase(cfg.Database)
	cacheClient := cache.SetupCache(cfg.Cache)
	redisReady := ping(cacheClient)

	repository.InitializeFactory(database.GetDB())
	repos := repository.GetGlobalRepositories()
	catalog := submissions.NewService(repos)

	notifier := notify.New(catalog, mail.New(cfg.Mail), cfg.AppURL)

	var manager *jobqueue.Manager
	var statsStore statistics.Store
	var limiterStorage fiber.Storage
	if redisReady {
		manager = jobqueue.NewManager(cacheClient, cfg.JobQueueWorkers)
		notifier.Attach(manager.GetQueue())
		jobqueue.SetManager(manager)
		manager.Start()

		statsStore = statistics.RedisStore()
		limiterStorage = ratelimit.NewStorage(cacheClient)
	} else {
		log.Warn("[Main] Redis unavailable: emails are not queued, rate limits are per process")
	}

	billingSvc := billing.NewService(repos, catalog, billing.Options{
		Gateway:  billing.NewStripeGateway(cfg.Stripe),
		Verifier: billing.NewVerifier(cfg.Stripe.WebhookSecret),
		AppURL:   cfg.AppURL,
	})

	var uploader reportstore.Uploader
	if cfg.ReportStore.Enabled() {
		client, err := reportstore.NewClient(context.Background(), cfg.ReportStore)
		if err != nil {
			log.Errorf("[Main] Report storage disabled: %v", err)
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := client.Ping(ctx); err != nil {
				log.Warnf("[Main] Report storage not reachable yet: %v", err)
			}
			cancel()
			uploader = client
		}
	}

	issuer := auth.NewIssuer(cfg.Admin.JWTSecret, cfg.Admin.PasswordHash, cfg.Admin.TokenTTL)
	if !issuer.Enabled() {
		log.Warn("[Main] ADMIN_JWT_SECRET or ADMIN_PASSWORD_HASH missing, admin API disabled")
	}

	controllers.InitializeControllers(controllers.Dependencies{
		Submissions: catalog,
		Billing:     billingSvc,
		Notifier:    notifier,
		Publisher:   reportstore.NewPublisher(catalog, uploader, cfg.ReportStore.PathPrefix),
		Statistics:  statistics.NewService(repos, statsStore),
		Issuer:      issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:                 "GrowthPartner AI",
		BodyLimit:               reportstore.MaxReportSize + 1<<20,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          cfg.TrustedProxies,
		ProxyHeader:             fiber.HeaderXForwardedFor,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// SWAGGER / OPENAPI
	if _, err := os.Stat(cfg.OpenAPIFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: constants.SwaggerPrefix,
			FilePath: cfg.OpenAPIFile,
			Path:     "v1",
			Title:    "GrowthPartner AI API",
		}))
	} else {
		log.Warnf("[Main] OpenAPI document %s not found, Swagger UI disabled", cfg.OpenAPIFile)
	}

	// ROUTER
	router.InstallRouter(app,
		router.NewHttpRouter(cfg.MonitorUser, cfg.MonitorPassword),
		router.NewApiRouter(issuer, cfg.RateLimit, limiterStorage),
	)

	return app, manager
}

func ping(client *redis.Client) bool {
	if client == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return client.Ping(ctx).Err() == nil
}
