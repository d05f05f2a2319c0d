// cmd/api/main.go

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"brandpulse/internal/adapter/notify"
	"brandpulse/internal/adapter/platform"
	"brandpulse/internal/adapter/storage"
	"brandpulse/internal/config"
	"brandpulse/internal/server"
	"brandpulse/internal/service/listening"
	"brandpulse/internal/service/ratelimit"
)

func main() {
	// Load .env in development; a missing file is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Initialize dependencies
	db, err := initDatabase(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	mongoClient, err := initMongo(ctx, cfg.Mongo)
	if err != nil {
		log.Fatalf("Failed to initialize MongoDB: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())

	natsConn, err := initNATS(cfg.NATS)
	if err != nil {
		log.Printf("Event bus unavailable, continuing without it: %v", err)
		natsConn = nil
	} else {
		defer natsConn.Close()
	}

	// Initialize storage adapters
	sourceStore := storage.NewSourceStore(db)
	sink := storage.NewMongoSink(mongoClient.Database(cfg.Mongo.Database))

	backupStore, err := storage.NewFileBackupStore(cfg.Scan.BackupDir)
	if err != nil {
		log.Fatalf("Failed to initialize backup store: %v", err)
	}

	// Initialize platform feeds. Each upstream gets its own limiter.
	feeds := buildFeeds(cfg)
	platforms := make([]string, 0, len(feeds))
	for _, f := range feeds {
		platforms = append(platforms, f.Platform())
	}
	if len(feeds) == 0 {
		log.Println("Warning: no platform credentials configured, scans will fail")
	}

	// Initialize backup notifier
	var notifier listening.Notifier
	if cfg.Notify.BotToken != "" && cfg.Notify.ChatID != "" {
		notifier = notify.NewTelegramNotifier(cfg.Notify.BotToken, cfg.Notify.ChatID)
	}

	// Initialize the scan service
	discoverer := listening.NewDiscoverer(listening.DiscovererConfig{
		MinFrequency:  cfg.Discovery.MinFrequency,
		TopWords:      cfg.Discovery.TopWords,
		TopPhrases:    cfg.Discovery.TopPhrases,
		MinWordLength: cfg.Discovery.MinWordLength,
	})

	scorer := listening.NewScorer(listening.ScorerConfig{
		BrandTerms: cfg.Scoring.BrandTerms,
	})

	scanner := listening.NewService(
		feeds,
		sourceStore,
		backupStore,
		sink,
		discoverer,
		listening.NewRanker(scorer),
		natsConn,
		notifier,
		listening.ScannerConfig{
			HoursBack:        cfg.Scan.HoursBack,
			MinScore:         cfg.Scan.MinScore,
			MinContentLength: cfg.Scan.MinContentLength,
			ScanTimeout:      cfg.Scan.ScanTimeout,
			EventsTopic:      cfg.Scan.EventsTopic,
			Pacing: map[string]listening.PacingConfig{
				"telegram": {SourcePause: cfg.Scan.TelegramSourcePause},
				"vk":       {BatchSize: cfg.Scan.VKBatchSize, BatchPause: cfg.Scan.VKBatchPause},
				"twitter":  {SourcePause: cfg.Scan.TwitterSourcePause},
			},
			PriorityWeights: cfg.Scoring.PriorityWeights,
			CategoryWeights: cfg.Scoring.CategoryWeights,
			Engagement: map[string]listening.EngagementConfig{
				"telegram": {Divisor: cfg.Scoring.TelegramEngagementDivisor, Floor: cfg.Scoring.TelegramEngagementFloor},
				"vk":       {Divisor: cfg.Scoring.VKEngagementDivisor, Floor: cfg.Scoring.VKEngagementFloor},
				"twitter":  {Divisor: cfg.Scoring.TwitterEngagementDivisor, Floor: cfg.Scoring.TwitterEngagementFloor},
			},
		},
	)

	// Initialize HTTP server
	httpServer := server.NewServer(
		cfg.Server,
		db,
		natsConn,
		scanner,
		sourceStore,
		backupStore,
		cfg.Scan.EventsTopic,
		platforms,
	)

	// Start HTTP server
	go func() {
		log.Printf("Starting HTTP server on %s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	log.Println("Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	log.Println("Shutting down services...")

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
}

// buildFeeds wires a feed for every platform with credentials.
func buildFeeds(cfg config.Config) []listening.Feed {
	var feeds []listening.Feed

	if cfg.Telegram.GatewayURL != "" {
		limiter := ratelimit.NewLimiter(ratelimit.LimiterConfig{
			PerMinute:  cfg.RateLimit.PerMinute,
			MinSpacing: cfg.RateLimit.MinSpacing,
		})
		feeds = append(feeds, platform.NewTelegramFeed(platform.TelegramConfig{
			GatewayURL: cfg.Telegram.GatewayURL,
			APIKey:     cfg.Telegram.APIKey,
			PageLimit:  cfg.Telegram.PageLimit,
		}, limiter))
	}

	if cfg.VK.AccessToken != "" {
		limiter := ratelimit.NewLimiter(ratelimit.LimiterConfig{
			PerMinute:  cfg.RateLimit.PerMinute,
			MinSpacing: cfg.RateLimit.MinSpacing,
		})
		feeds = append(feeds, platform.NewVKFeed(platform.VKConfig{
			AccessToken: cfg.VK.AccessToken,
			APIVersion:  cfg.VK.APIVersion,
			PostCount:   cfg.VK.PostCount,
		}, limiter))
	}

	if cfg.Twitter.BearerToken != "" || cfg.Twitter.ConsumerKey != "" {
		limiter := ratelimit.NewLimiter(ratelimit.LimiterConfig{
			PerMinute:  cfg.RateLimit.PerMinute,
			MinSpacing: cfg.RateLimit.MinSpacing,
		})
		feeds = append(feeds, platform.NewTwitterFeed(platform.TwitterConfig{
			BearerToken:    cfg.Twitter.BearerToken,
			ConsumerKey:    cfg.Twitter.ConsumerKey,
			ConsumerSecret: cfg.Twitter.ConsumerSecret,
			AccessToken:    cfg.Twitter.AccessToken,
			AccessSecret:   cfg.Twitter.AccessSecret,
			MaxResults:     cfg.Twitter.MaxResults,
		}, limiter))
	}

	return feeds
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// Initialize MongoDB connection
func initMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("unable to connect to MongoDB: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("unable to ping MongoDB: %w", err)
	}

	return client, nil
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Printf("NATS disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("NATS reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Printf("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}
