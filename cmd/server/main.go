package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/kyozo/waitlist/internal/api"
	"github.com/kyozo/waitlist/internal/auth"
	"github.com/kyozo/waitlist/internal/config"
	"github.com/kyozo/waitlist/internal/form"
	"github.com/kyozo/waitlist/internal/gate"
	"github.com/kyozo/waitlist/internal/identity"
	"github.com/kyozo/waitlist/internal/notify"
	"github.com/kyozo/waitlist/internal/pipeline"
	"github.com/kyozo/waitlist/internal/pkg/logger"
	"github.com/kyozo/waitlist/internal/store"
	"github.com/kyozo/waitlist/internal/waitlist"
)

// checkPortAvailable verifies the listen address is free before wiring
// anything that talks to the network.
func checkPortAvailable(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port unavailable (%s): %w", addr, err)
	}
	return ln.Close()
}

// extractHost returns the host part of a DSN for logging without credentials.
func extractHost(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	if at < 0 {
		return "(unknown)"
	}
	rest := dsn[at+1:]
	if slash := strings.Index(rest, "/"); slash >= 0 {
		rest = rest[:slash]
	}
	return rest
}

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config/config.yaml"
}

func main() {
	cfg, err := config.LoadFromEnv(configPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	logger.SetRedactPII(cfg.Logging.RedactionEnabled())

	if err := checkPortAvailable(cfg.Server.Addr()); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// AWS is loaded lazily; only dynamodb, ses and the export archive need it.
	var awsCfg *aws.Config
	loadAWS := func() aws.Config {
		if awsCfg == nil {
			c, err := cfg.AWS.LoadAWS(ctx)
			if err != nil {
				log.Fatalf("Failed to load AWS config: %v", err)
			}
			awsCfg = &c
		}
		return *awsCfg
	}

	// Submission store
	var repo store.Repository
	var db *sql.DB
	switch cfg.Store.Driver {
	case "dynamodb":
		repo = store.NewDynamoRepositoryFromConfig(loadAWS(), cfg.Store.DynamoTable)
		log.Printf("[store] DynamoDB table %s", cfg.Store.DynamoTable)
	case "postgres":
		db, err = sql.Open("postgres", cfg.Store.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
		pg := store.NewPostgresRepository(db)
		if err := pg.Migrate(ctx); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		repo = pg
		log.Printf("[store] Postgres at %s", extractHost(cfg.Store.DatabaseURL))
	case "firestore":
		repo = store.NewFirestoreRepository(ctx, cfg.Store.Firestore)
		log.Printf("[store] Firestore project %s, collection %s", cfg.Store.Firestore.ProjectID, cfg.Store.Firestore.Collection)
	default:
		repo = store.NewMemoryRepository()
		log.Println("[store] in-memory (submissions are lost on restart)")
	}

	// Form sessions
	var sessions form.Store
	var redisClient *redis.Client
	switch cfg.Sessions.Backend {
	case "redis":
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("Invalid REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Printf("Warning: Redis ping failed: %v (sessions will retry on use)", err)
		}
		pingCancel()
		sessions = form.NewRedisStore(redisClient, cfg.Sessions.TTL())
		log.Printf("[sessions] Redis, ttl %s", cfg.Sessions.TTL())
	default:
		mem := form.NewMemoryStore(cfg.Sessions.TTL())
		go mem.RunSweeper(ctx, time.Minute)
		sessions = mem
		log.Printf("[sessions] in-memory, ttl %s", cfg.Sessions.TTL())
	}

	// Identity provider
	var provider identity.Provider
	switch cfg.Identity.Provider {
	case "firebase":
		provider = identity.NewFirebaseClient(cfg.Identity)
	default:
		provider = identity.NewLocalProvider(cfg.Identity.Accounts)
		log.Printf("[identity] local provider with %d operator account(s)", len(cfg.Identity.Accounts))
	}

	// Mailer
	var mailer notify.Mailer
	switch cfg.Email.Provider {
	case "resend":
		mailer = notify.NewResendMailer(cfg.Email)
	case "ses":
		mailer = notify.NewSESMailerFromConfig(loadAWS())
	default:
		mailer = notify.LogMailer{}
		log.Println("[notify] log mailer: emails are written to the log only")
	}
	templates, err := notify.NewTemplates()
	if err != nil {
		log.Fatalf("Failed to parse email templates: %v", err)
	}
	notifier := notify.NewNotifier(mailer, templates, cfg.Email)

	notifications := pipeline.NewNotificationLog(500)
	pipe := pipeline.New(provider, repo, notifier,
		pipeline.WithNotifyTimeout(cfg.Email.Timeout()),
		pipeline.WithNotificationLog(notifications),
	)

	var opts []waitlist.Option
	var archive api.Pinger
	if cfg.Export.Bucket != "" {
		archiver := store.NewS3ArchiverFromConfig(loadAWS(), cfg.Export.Bucket, cfg.Export.Prefix)
		opts = append(opts, waitlist.WithArchiver(archiver))
		archive = archiver
		log.Printf("[export] archiving CSV exports to s3://%s/%s", cfg.Export.Bucket, cfg.Export.Prefix)
	}
	svc := waitlist.NewService(sessions, pipe, repo, notifier, opts...)

	adminGate := auth.NewGate(provider, cfg.Admin)
	adminGate.CleanupExpiredSessions(ctx, 5*time.Minute)

	var redisPing redis.Cmdable
	if redisClient != nil {
		redisPing = redisClient
	}
	router := api.SetupRoutes(api.Routes{
		Handlers:       api.NewHandlers(svc, notifications),
		Admin:          adminGate,
		Passcode:       gate.NewPasscode(cfg.Gate.Passcode),
		Health:         api.NewHealthChecker(repo, redisPing, archive),
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})
	server := api.NewServer(cfg.Server, router)

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	// Let in-flight notification emails finish before exiting.
	drained := make(chan struct{})
	go func() {
		pipe.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-shutdownCtx.Done():
		log.Println("Warning: notification emails still pending at exit")
	}

	cancel()
	if redisClient != nil {
		redisClient.Close()
	}
	if db != nil {
		db.Close()
	}
	log.Println("Server stopped")
}
