package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-backend/api"
	"github.com/rpupo63/portfolio-backend/auth"
	"github.com/rpupo63/portfolio-backend/cache"
	"github.com/rpupo63/portfolio-backend/config"
	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rpupo63/portfolio-backend/services"
	"github.com/rpupo63/portfolio-backend/store"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Info().Msg("Initializing app...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("no .env file loaded")
	}
	c := config.New()

	var remote store.RemoteTable
	dbType := config.GetString(c, "DB_TYPE", "none")
	log.Info().Str("dbType", dbType).Msg("selecting projects table")
	switch dbType {
	case "supa":
		db, err := database.Open(database.ConnConfig{
			Host:        config.GetString(c, "SUPABASE_DB_HOST", ""),
			User:        config.GetString(c, "SUPABASE_DB_USER", ""),
			Password:    config.GetString(c, "SUPABASE_DB_PASSWORD", ""),
			Name:        config.GetString(c, "SUPABASE_DB_NAME", ""),
			Port:        config.GetString(c, "SUPABASE_DB_PORT", "5432"),
			ReplicaHost: config.GetString(c, "SUPABASE_DB_REPLICA_HOST", ""),
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Error connecting to database")
		}

		// If generating models, run generation and exit
		if config.GetBool(c, "GENERATE_MODELS", false) {
			if err := models.GenerateModels(db, "./generated"); err != nil {
				log.Fatal().Err(err).Msg("model generation failed")
			}
			return
		}

		// If generating column mismatch report, run report and exit
		if config.GetBool(c, "GENERATE_COLUMN_REPORT", false) {
			if _, err := models.GenerateColumnMismatchReport(db); err != nil {
				log.Fatal().Err(err).Msg("column report failed")
			}
			return
		}

		remote = database.New(db).ProjectRepo()
	case "none":
		log.Warn().Msg("running without a projects table; changes stay in the local cache")
	default:
		log.Fatal().Str("dbType", dbType).Msg("Unsupported DB_TYPE")
	}

	var localCache store.LocalCache
	if cachePath := config.GetString(c, "CACHE_PATH", "data/cache.db"); cachePath == "memory" {
		log.Warn().Msg("using in-memory cache; projects and admin state are lost on restart")
		localCache = cache.NewMemoryCache()
	} else {
		sqliteCache, err := cache.NewSQLiteCache(cachePath)
		if err != nil {
			log.Fatal().Err(err).Msg("Error opening local cache")
		}
		defer sqliteCache.Close()
		localCache = sqliteCache
	}

	gate := auth.NewGate(config.GetString(c, "ADMIN_PASSWORD_HASH", ""), localCache)
	gate.Restore()

	tokens := auth.NewTokenIssuer(jwtSecret(c), time.Duration(config.GetInt(c, "ADMIN_TOKEN_TTL_MINUTES", 12*60))*time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := []store.Option{
		store.WithContext(ctx),
		store.WithRemoteTimeout(config.GetSeconds(c, "REMOTE_TIMEOUT_SECONDS", 15)),
	}
	if config.GetBool(c, "SEED_DEMO_PROJECTS", false) {
		opts = append(opts, store.WithSeed(models.DemoProjects()))
	}
	projects := store.New(remote, localCache, opts...)
	go projects.Load(ctx)

	if interval := config.GetSeconds(c, "RECONCILE_INTERVAL_SECONDS", 0); interval > 0 && remote != nil {
		go projects.RunReconciler(ctx, interval)
	}

	deps := api.Dependencies{
		Projects: projects,
		Gate:     gate,
		Tokens:   tokens,
		Mailer:   services.NewMailer(c),
	}
	if images, err := services.NewImageStore(ctx, c); err != nil {
		log.Warn().Err(err).Msg("image uploads disabled")
	} else {
		deps.Images = images
	}

	errChannel := make(chan error, 2)

	server, err := api.NewServer(deps, c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)

	// Let pending remote writes finish before the cache closes.
	projects.Wait()
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}

// jwtSecret returns JWT_SECRET, or a random per-process secret when unset.
func jwtSecret(c map[string]string) string {
	if secret := strings.TrimSpace(config.GetString(c, "JWT_SECRET", "")); secret != "" {
		return secret
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatal().Err(err).Msg("generating JWT secret")
	}
	log.Warn().Msg("JWT_SECRET not set; admin tokens will not survive a restart")
	return hex.EncodeToString(buf)
}
