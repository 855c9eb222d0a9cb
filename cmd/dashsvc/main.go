package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"

	configs "github.com/chestergarett/twba/configs"
	"github.com/chestergarett/twba/internal/dashsvc/ai"
	"github.com/chestergarett/twba/internal/dashsvc/config"
	"github.com/chestergarett/twba/internal/dashsvc/db"
	"github.com/chestergarett/twba/internal/dashsvc/handlers"
	"github.com/chestergarett/twba/internal/dashsvc/query"
	"github.com/chestergarett/twba/internal/dashsvc/service"
	"github.com/chestergarett/twba/internal/dashsvc/store"
	"github.com/chestergarett/twba/internal/dashsvc/ws"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "dash"

func init() {
	configs.Logging(SERVICE_NAME + "_service")
	configs.LoadEnv(SERVICE_NAME)
}

func main() {
	instanceId := configs.CreateUniqueInstance(SERVICE_NAME)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// pg connection
	dbpool, err := db.Connect(cfg.DBConnString)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.ClosePool()
	log.Printf("pg connection established successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.RunMigrations(ctx, dbpool); err != nil {
		cancel()
		log.Fatalf("Failed to run migrations: %v", err)
	}
	cancel()

	layoutStore := store.NewLayoutStore(dbpool)
	layoutService := service.NewLayoutService(layoutStore)

	analyticsStore := store.NewAnalyticsStore(dbpool)
	analyticsService := service.NewAnalyticsService(analyticsStore)

	runner := query.NewRunner(dbpool)
	assistant := ai.New(cfg.OpenAIKey, runner)
	if !assistant.Enabled() {
		log.Warn("OPENAI_API_KEY not set, Ask AI endpoint is disabled")
	}

	hub := ws.NewHub()

	// Setup router
	r := chi.NewRouter()
	c := configs.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(configs.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	r.Use(httprate.LimitByIP(cfg.RateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(cfg, layoutService, analyticsService, runner, assistant, hub)
	h.InitAuth()
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service instance %s running at port %s", SERVICE_NAME, instanceId, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
