package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/fortuna/sideline/internal/api/rest"
	"github.com/fortuna/sideline/internal/api/websocket"
	"github.com/fortuna/sideline/internal/cache"
	"github.com/fortuna/sideline/internal/links"
	"github.com/fortuna/sideline/internal/pipeline"
	"github.com/fortuna/sideline/internal/publisher"
	"github.com/fortuna/sideline/internal/report"
	"github.com/fortuna/sideline/internal/scheduler"
	"github.com/fortuna/sideline/internal/store"
)

const (
	serviceName    = "sideline"
	serviceVersion = "1.0.0"
)

func main() {
	log.Printf("Starting %s v%s - NBA Injury Report Service", serviceName, serviceVersion)

	// Load configuration from environment
	config := loadConfig()

	// Optional headless browser fallback for the link resolver
	var browser links.Renderer
	if config.EnableBrowser {
		b := links.NewBrowser()
		defer b.Close()
		browser = b
		log.Println("✓ Headless browser fallback enabled")
	}

	// Pipeline and cache
	runner := pipeline.New(config.PageURL, config.DataDir, browser)
	controller := cache.New(runner, runner.Resolver)
	controller.TTL = config.CacheTTL
	log.Printf("✓ Report pipeline ready (cache TTL: %v)", config.CacheTTL)

	// Optional PostgreSQL audit store
	var db *store.Database
	if config.DSN != "" {
		var err error
		db, err = store.NewDatabase(config.DSN)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("Failed to ensure database schema: %v", err)
		}
		log.Println("✓ Connected to audit database")
	}

	// Optional Redis mirror
	var redisPublisher *publisher.RedisPublisher
	if config.RedisURL != "" {
		var err error
		redisPublisher, err = publisher.NewRedisPublisher(config.RedisURL, 2*config.CacheTTL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisPublisher.Close()
		log.Println("✓ Redis publisher initialized")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// WebSocket server
	wsServer := websocket.NewServer(controller)
	go func() {
		if err := wsServer.Start(config.WSPort); err != nil {
			log.Printf("WebSocket server error: %v", err)
		}
	}()
	log.Printf("✓ WebSocket server listening on :%s", config.WSPort)

	// Background refresh scheduler
	if config.EnableScheduler {
		sched := scheduler.New(controller, config.CacheTTL)
		sched.OnPayload = func(payload report.Payload) {
			wsServer.BroadcastReport(payload)
			if redisPublisher != nil {
				if err := redisPublisher.PublishReport(ctx, payload); err != nil {
					log.Printf("  ⚠️  Failed to publish report to Redis: %v", err)
				}
			}
			if db != nil {
				if err := db.RecordRun(ctx, payload); err != nil {
					log.Printf("  ⚠️  Failed to record run: %v", err)
				}
			}
		}
		go sched.Run(ctx)
		log.Println("✓ Scheduler started")
	} else {
		log.Println("Scheduler disabled via ENABLE_SCHEDULER")
	}

	// REST API server
	var runStore rest.RunStore
	if db != nil {
		runStore = db
	}
	restServer := rest.NewServer(config.RESTPort, controller, runStore)
	go func() {
		if err := restServer.Start(); err != nil {
			log.Printf("REST server error: %v", err)
		}
	}()
	log.Printf("✓ REST API server listening on :%s", config.RESTPort)

	log.Printf("✓ %s v%s started successfully", serviceName, serviceVersion)
	log.Printf("  REST API: http://0.0.0.0:%s", config.RESTPort)
	log.Printf("  WebSocket: ws://0.0.0.0:%s", config.WSPort)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := restServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("REST API server shutdown error: %v", err)
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("WebSocket server shutdown error: %v", err)
	}

	log.Printf("%s stopped", serviceName)
}

type Config struct {
	PageURL         string
	DataDir         string
	CacheTTL        time.Duration
	RESTPort        string
	WSPort          string
	DSN             string
	RedisURL        string
	EnableBrowser   bool
	EnableScheduler bool
}

func loadConfig() Config {
	ttl := cache.DefaultTTL
	if raw := os.Getenv("CACHE_TTL_SECONDS"); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
			ttl = time.Duration(seconds) * time.Second
		}
	}
	return Config{
		PageURL:         getEnv("INJURY_REPORT_PAGE", links.OfficialPage),
		DataDir:         getEnv("PDF_STORAGE_DIR", "data"),
		CacheTTL:        ttl,
		RESTPort:        getEnv("REST_PORT", "8080"),
		WSPort:          getEnv("WS_PORT", "8081"),
		DSN:             getEnv("SIDELINE_DSN", ""),
		RedisURL:        getEnv("REDIS_URL", ""),
		EnableBrowser:   getEnv("ENABLE_BROWSER", "0") == "1",
		EnableScheduler: getEnv("ENABLE_SCHEDULER", "1") == "1",
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
