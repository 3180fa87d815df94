package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/fracta-city/fracta/internal/auth"
	"github.com/fracta-city/fracta/internal/blockchain"
	"github.com/fracta-city/fracta/internal/config"
	"github.com/fracta-city/fracta/internal/fracta"
	"github.com/fracta-city/fracta/internal/http_api"
	"github.com/fracta-city/fracta/internal/metrics"
	"github.com/fracta-city/fracta/internal/models"
	"github.com/fracta-city/fracta/internal/notificator"
	"github.com/fracta-city/fracta/internal/repository"
	"github.com/fracta-city/fracta/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "fracta",
		Usage: "Fracta is a tokenized real-estate investment backend",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "postgres-user", Aliases: []string{"u"}, Usage: "Postgres user"},
			&cli.StringFlag{Name: "postgres-password", Aliases: []string{"p"}, Usage: "Postgres password"},
			&cli.StringFlag{Name: "postgres-host", Aliases: []string{"t"}, Usage: "Postgres host"},
			&cli.IntFlag{Name: "postgres-port", Aliases: []string{"P"}, Usage: "Postgres port"},
			&cli.StringFlag{Name: "postgres-db", Aliases: []string{"d"}, Usage: "Postgres database name"},
			&cli.BoolFlag{Name: "memory", Aliases: []string{"M"}, Usage: "Use the in-memory store instead of Postgres"},
			&cli.IntFlag{Name: "api-port", Aliases: []string{"a"}, Usage: "HTTP API port"},
			&cli.StringFlag{Name: "redis-url", Aliases: []string{"r"}, Usage: "Redis URL for login challenges and token revocation"},
			&cli.StringFlag{Name: "blockchain-service-url", Aliases: []string{"b"}, Usage: "Blockchain RPC URL"},
			&cli.StringFlag{Name: "property-token-address", Aliases: []string{"s"}, Usage: "Property token contract address"},
			&cli.BoolFlag{Name: "development", Aliases: []string{"D"}, Usage: "Development mode"},
		},
		Action: func(c *cli.Context) error {
			return run(c)
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("postgres-user") {
		cfg.PostgresUser = c.String("postgres-user")
	}
	if c.IsSet("postgres-password") {
		cfg.PostgresPassword = c.String("postgres-password")
	}
	if c.IsSet("postgres-host") {
		cfg.PostgresHost = c.String("postgres-host")
	}
	if c.IsSet("postgres-port") {
		cfg.PostgresPort = c.Int("postgres-port")
	}
	if c.IsSet("postgres-db") {
		cfg.PostgresDB = c.String("postgres-db")
	}
	if c.IsSet("memory") {
		cfg.MemoryStore = c.Bool("memory")
	}
	if c.IsSet("api-port") {
		cfg.APIPort = c.Int("api-port")
	}
	if c.IsSet("redis-url") {
		cfg.RedisURL = c.String("redis-url")
	}
	if c.IsSet("blockchain-service-url") {
		cfg.BlockchainServiceURL = c.String("blockchain-service-url")
	}
	if c.IsSet("property-token-address") {
		cfg.PropertyTokenAddress = c.String("property-token-address")
	}
	if c.IsSet("development") {
		cfg.Development = c.Bool("development")
	}
}

func run(c *cli.Context) error {
	// Load configuration from environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	// Override with flags if set
	applyFlags(c, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %v", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Development)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Initialize database
	var repo models.Repository
	if cfg.MemoryStore {
		log.Warn("Using the in-memory store, data is lost on exit")
		repo = repository.NewMemoryDB(log)
	} else {
		db, err := repository.NewPostgresDB(cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresHost, cfg.PostgresPort, log)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %v", err)
		}
		defer db.Close()
		repo = db
	}

	// Login challenges and revoked tokens
	var store auth.Store
	redisClient, err := auth.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		store = auth.NewRedisStore(redisClient)
	} else {
		log.Warn("REDIS_URL not set, login challenges are kept in process memory")
		store = auth.NewMemoryStore()
	}

	// Initialize chain reader; the mirror serves fallback data without one
	var reader models.ChainReader
	if cfg.ChainEnabled() {
		gocore := blockchain.NewGocore(cfg.BlockchainServiceURL, cfg.PropertyTokenAddress, cfg.NetworkID, log)
		if err := gocore.Run(); err != nil {
			log.Warn("Chain reader unavailable, serving fallback sale data", "error", err)
		} else {
			defer gocore.Close()
			reader = gocore
		}
	}
	mirror := blockchain.NewMirror(reader, cfg.ChainCacheTTL, cfg.PropertyTokenAddress, cfg.NetworkID, m, log)
	mirror.StartPeriodicUpdate(cfg.ChainCacheTTL)
	defer mirror.Stop()

	// Initialize notificator
	var telegram *notificator.TelegramNotificator
	if cfg.TelegramBotToken != "" {
		telegram, err = notificator.NewTelegramNotificator(log, cfg.TelegramBotToken)
		if err != nil {
			log.Warn("Telegram notifications disabled", "error", err)
			telegram = nil
		}
	}
	var email *notificator.EmailNotificator
	if cfg.SMTPHost != "" {
		email = notificator.NewEmailNotificator(log, cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPSender)
	}
	notifier := notificator.NewNotificator(log, m, cfg.TelegramAdminChatID, telegram, email)

	// Create Fracta instance
	fractaApp := fracta.NewFracta(
		repo,
		mirror,
		notifier,
		auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL),
		store,
		auth.CoreRecoverer{},
		m,
		log,
		cfg,
	)

	// Initialize API server
	apiServer := http_api.NewHTTPServer(fractaApp, m, cfg.APIPort, cfg.FrontendURL, log)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(apiServer.Start)
	if telegram != nil {
		eg.Go(func() error {
			telegram.Start(egCtx)
			return nil
		})
	}
	eg.Go(func() error {
		<-egCtx.Done()
		log.Info("Shutting down...")
		err := apiServer.Shutdown()
		fractaApp.Wait()
		return err
	})

	if err := eg.Wait(); err != nil && err != context.Canceled {
		return err
	}
	log.Info("Fracta stopped")
	return nil
}
