package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relaydesk/relaydesk/internal/api/handlers"
	"github.com/relaydesk/relaydesk/internal/api/middleware"
	"github.com/relaydesk/relaydesk/internal/classify"
	"github.com/relaydesk/relaydesk/internal/config"
	"github.com/relaydesk/relaydesk/internal/domain"
	"github.com/relaydesk/relaydesk/internal/jobs"
	"github.com/relaydesk/relaydesk/internal/kb"
	"github.com/relaydesk/relaydesk/internal/openai"
	"github.com/relaydesk/relaydesk/internal/repository"
	"github.com/relaydesk/relaydesk/internal/server"
	"github.com/relaydesk/relaydesk/internal/service"
	"github.com/relaydesk/relaydesk/internal/telemetry"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the query routing server",
		Long:  "Start the relaydesk API server on the specified port",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, version)
		},
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, version string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	// The general tier is required; the server is useless without it.
	store := kb.NewStore()
	general, err := kb.LoadFile(cfg.GeneralKBPath, domain.TierGeneral)
	if err != nil {
		return fmt.Errorf("failed to load general knowledge base: %w", err)
	}
	store.Set(domain.TierGeneral, general)
	log.Printf("general knowledge base loaded: %d entries from %s", general.Len(), cfg.GeneralKBPath)

	// The senior tier is optional; a load failure degrades to escalation.
	if cfg.HasSeniorKB() {
		senior, err := kb.LoadFile(cfg.SeniorKBPath, domain.TierSenior)
		if err != nil {
			log.Printf("senior knowledge base load failed (queries will defer to model): %v", err)
		} else {
			store.Set(domain.TierSenior, senior)
			log.Printf("senior knowledge base loaded: %d entries from %s", senior.Len(), cfg.SeniorKBPath)
		}
	}

	rules := classify.DefaultRules()
	if cfg.TopicsPath != "" {
		rules, err = classify.LoadRules(cfg.TopicsPath)
		if err != nil {
			return fmt.Errorf("failed to load topic rules: %w", err)
		}
	}
	classifier, err := classify.New(rules)
	if err != nil {
		return fmt.Errorf("failed to build classifier: %w", err)
	}

	router := service.NewRouter(store, classifier, map[domain.Tier]int{
		domain.TierGeneral: cfg.GeneralThreshold,
		domain.TierSenior:  cfg.SeniorThreshold,
	})

	var recorder handlers.DecisionRecorder
	if cfg.HasDatabase() {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("failed to ping database: %w", err)
		}
		log.Println("connected to database")

		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			if err := runMigrations(cfg.DatabaseURL); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
		}

		recorder = repository.NewDecisionLogRepository(pool)
	}

	var responder handlers.Responder
	if cfg.HasOpenAI() {
		responder = openai.NewClientWithConfig(openai.Config{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
		})
		log.Printf("model responder enabled (%s)", cfg.OpenAIModel)
	}

	var reloadWorker *jobs.Worker
	if cfg.ReloadInterval > 0 {
		sources := map[domain.Tier]string{domain.TierGeneral: cfg.GeneralKBPath}
		if cfg.HasSeniorKB() {
			sources[domain.TierSenior] = cfg.SeniorKBPath
		}
		reloader := jobs.NewKBReloader(store, sources)
		reloader.Prime()
		reloadWorker = jobs.NewWorker(reloader, cfg.ReloadInterval)
		go reloadWorker.Start(ctx)
		log.Printf("kb reload worker started (interval %v)", cfg.ReloadInterval)
	}

	var authValidator middleware.AuthValidator
	keyValidator := service.NewStaticKeyValidator(cfg.APIKeyList())
	if keyValidator.Enabled() {
		authValidator = keyValidator
	} else {
		log.Println("no API keys configured, serving unauthenticated")
	}

	routerCfg := server.RouterConfig{
		AuthValidator: authValidator,
		QueryHandler:  handlers.NewQueryHandler(router, responder, recorder),
		KBHandler:     handlers.NewKBHandler(store, router),
		TopicsHandler: handlers.NewTopicsHandler(classifier),
		HealthHandler: handlers.NewHealthHandler(store, version),
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.NewRouter(routerCfg),
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if reloadWorker != nil {
		reloadWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
