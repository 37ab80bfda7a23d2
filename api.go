package handler

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"sync"

	"crazygels/internal/api"
	"crazygels/internal/config"
	"crazygels/internal/database"
	"crazygels/internal/logger"

	_ "github.com/lib/pq"
	"github.com/rs/cors"
)

var (
	initOnce sync.Once
	initErr  error
	app      http.Handler
)

// initApp builds the full router once per lambda instance. Connections
// survive across warm invocations.
func initApp() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		initErr = fmt.Errorf("DATABASE_URL not set")
		return
	}

	// Fail fast with a plain connection check before gorm spins up.
	probe, err := sql.Open("postgres", databaseURL)
	if err != nil {
		initErr = fmt.Errorf("database open failed: %w", err)
		return
	}
	if err := probe.Ping(); err != nil {
		probe.Close()
		initErr = fmt.Errorf("database unreachable: %w", err)
		return
	}
	probe.Close()

	cfg, err := config.Load()
	if err != nil {
		initErr = fmt.Errorf("config load failed: %w", err)
		return
	}

	log := logger.New(cfg.LogLevel)

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		initErr = fmt.Errorf("database init failed: %w", err)
		return
	}

	server := api.New(cfg, log, db)

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins(),
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Shopify-Hmac-Sha256", "X-Shopify-Topic", "X-Shopify-Shop-Domain"},
	})

	app = c.Handler(server.GetRouter())
}

func allowedOrigins() []string {
	if origin := os.Getenv("CORS_ALLOWED_ORIGIN"); origin != "" {
		return []string{origin}
	}
	return []string{"*"}
}

// Handler is the Vercel entrypoint.
func Handler(w http.ResponseWriter, r *http.Request) {
	initOnce.Do(initApp)
	if initErr != nil {
		http.Error(w, fmt.Sprintf("Initialization failed: %v", initErr), http.StatusInternalServerError)
		return
	}
	app.ServeHTTP(w, r)
}
