package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"mazzeh-api/config"
	"mazzeh-api/handlers"
	"mazzeh-api/httpserver"
	"mazzeh-api/logger"
	"mazzeh-api/media"
	"mazzeh-api/middleware"
	"mazzeh-api/routes"
	"mazzeh-api/scoring"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	log := logger.NewLogger(cfg.Log.Level, &logger.MainLogHook{})
	gin.SetMode(cfg.Server.Mode)

	db, err := config.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("failed connection to db: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}
	log.Infof("database ready (%s)", cfg.Database.Driver)

	scoreLog := logger.NewLogger(cfg.Log.Level, &scoring.ScoreLogHook{})
	var cache scoring.Cache = scoring.NopCache{}
	if cfg.Redis.URL != "" {
		rdb, err := config.InitRedis(ctx, cfg.Redis.URL)
		if err != nil {
			log.Warnf("score cache disabled: %v", err)
		} else {
			defer rdb.Close()
			cache = scoring.NewRedisCache(rdb, cfg.Redis.ScoreTTL)
			log.Info("score cache enabled")
		}
	}

	apiLog := logger.NewLogger(cfg.Log.Level, &handlers.APILogHook{})
	tokens := middleware.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	store := media.NewStore(cfg.Media.Root, cfg.Media.URLPrefix)

	h := handlers.New(db, tokens, scoring.NewScorer(db, cache, scoreLog), store, apiLog)
	router := routes.NewRouter(h, routes.Options{
		Tokens:      tokens,
		Media:       store,
		CORSOrigins: cfg.Server.CORSOrigins,
		Log:         apiLog,
	})

	server := new(httpserver.Server)

	go func() {
		log.Infof("server listening on :%s", cfg.Server.Port)
		if err := server.Run(cfg.Server.Port, router); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed running server: %v", err)
		}
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	oscall := <-interrupt
	log.Infof("Shutdown server, %s", oscall)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Error occured on server shutting down: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	return nil
}
