package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"photo-journal-backend/internal/classifier"
	"photo-journal-backend/internal/config"
	"photo-journal-backend/internal/handlers"
	"photo-journal-backend/internal/middleware"
	"photo-journal-backend/internal/notifications"
	"photo-journal-backend/internal/repository"
	"photo-journal-backend/internal/services"
	"photo-journal-backend/internal/storage"
	"photo-journal-backend/internal/uploader"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg.Log.Level)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Open persistence
	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer store.Close()
	log.Info().Str("driver", cfg.Storage.Driver).Msg("Storage opened")

	// Redis pub/sub rides on the storage connection when the redis driver
	// is active; otherwise events stay in-process.
	var rdb *redis.Client
	if redisStore, ok := store.(*storage.RedisStore); ok {
		rdb = redisStore.Client()
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(store)
	graphRepo := repository.NewGraphRepository(store)
	photoRepo := repository.NewPhotoRepository(store)

	// Object storage is optional; without it photos keep their local uri
	var uploads uploader.Uploader
	if cfg.Uploader.Driver != "" {
		uploads, err = uploader.New(cfg.Uploader)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create uploader")
		}
	}

	push, err := notifications.New(cfg.APNs)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create push notifier")
	}

	// Initialize services
	hub := services.NewEventHub(rdb)
	hub.StartRedisBridge(ctx)

	userService := services.NewUserService(userRepo, cfg.JWT.Secret)
	friendService := services.NewFriendService(graphRepo, userRepo, hub, push)
	photoService := services.NewPhotoService(photoRepo, graphRepo, uploads, hub)

	vision := classifier.New(cfg.Classifier.ToClient())
	enricher := services.NewEnricher(vision, photoService, cfg.Enricher.QueueSize)
	enricher.Start(ctx, cfg.Enricher.Workers)
	photoService.AttachEnricher(enricher)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	friendHandler := handlers.NewFriendHandler(friendService)
	photoHandler := handlers.NewPhotoHandler(photoService)
	wsHandler := handlers.NewWebSocketHandler(hub, userService)

	// Setup router
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/users", userHandler.Register)
		r.Post("/sessions", userHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(userService))

			r.Get("/users", userHandler.Search)
			r.Put("/users/me/device", userHandler.RegisterDevice)

			r.Post("/friends/requests", friendHandler.SendRequest)
			r.Post("/friends/requests/{sender_id}/accept", friendHandler.AcceptRequest)
			r.Post("/friends/requests/{sender_id}/decline", friendHandler.DeclineRequest)
			r.Delete("/friends/{friend_id}", friendHandler.RemoveFriend)
			r.Get("/friends", friendHandler.ListFriends)
			r.Get("/friends/requests", friendHandler.ListRequests)
			r.Get("/friends/status/{user_id}", friendHandler.Status)

			r.Post("/photos", photoHandler.Create)
			r.Post("/photos/upload", photoHandler.Upload)
			r.Get("/users/{user_id}/photos", photoHandler.List)
			r.Get("/users/{user_id}/photos/grouped", photoHandler.Grouped)
			r.Get("/users/{user_id}/photos/{photo_id}", photoHandler.Get)
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Drain in-flight enrichment jobs before closing the store
	enricher.Close()
	stop()

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
