package main

import (
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/veato-app/veato-server/catalog"
	"github.com/veato-app/veato-server/cliparse"
	"github.com/veato-app/veato-server/db"
	"github.com/veato-app/veato-server/llm"
	"github.com/veato-app/veato-server/poll"
	"github.com/veato-app/veato-server/ranking"
	"github.com/veato-app/veato-server/router"
	"github.com/veato-app/veato-server/store"
)

func main() {
	var err error

	// Load .env if present; real env variables take precedence
	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded configuration from .env")
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Load the food catalog
	foods, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		slog.Error("catalog load failed", "path", cfg.CatalogPath, "error", err)
		os.Exit(1)
	}
	slog.Info("Food catalog loaded", "path", cfg.CatalogPath, "foods", humanize.Comma(int64(foods.Len())))

	// Connect to the database (sqlite by default, postgres via -t)
	driver := "sqlite"
	if cfg.DatabaseType == "postgres" {
		driver = "postgres"
	}
	dbConn, err := sql.Open(driver, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Verify connection
	if err := dbConn.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready")

	// Ranking backend: model-backed when a key is configured, otherwise
	// the deterministic fallback only
	var rankingService ranking.Service
	if cfg.OpenAIKey != "" {
		rankingService = llm.New(llm.Config{
			APIKey:  cfg.OpenAIKey,
			Model:   cfg.OpenAIModel,
			Timeout: time.Duration(cfg.LLMTimeoutSeconds) * time.Second,
		}, slog.Default())
		slog.Info("Model ranking enabled", "model", cfg.OpenAIModel)
	} else {
		slog.Info("No OpenAI key configured, using deterministic ranking")
	}

	svc := &poll.Service{
		Polls:    store.NewSQL(dbConn),
		Teams:    store.NewSQLTeams(dbConn),
		Profiles: store.NewSQLProfiles(dbConn),
		Catalog:  foods,
		Ranker:   &ranking.Ranker{Service: rankingService},
	}

	// Create router
	mux := router.NewRouter(svc)

	// Create server
	server := http.Server{
		Handler: mux,
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
