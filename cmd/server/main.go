package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rmarchan/parchis-arena/server/internal/auth"
	"github.com/rmarchan/parchis-arena/server/internal/config"
	"github.com/rmarchan/parchis-arena/server/internal/handler"
	"github.com/rmarchan/parchis-arena/server/internal/logger"
	"github.com/rmarchan/parchis-arena/server/internal/middleware"
	"github.com/rmarchan/parchis-arena/server/internal/repository/memory"
	"github.com/rmarchan/parchis-arena/server/internal/repository/postgres"
	redisrepo "github.com/rmarchan/parchis-arena/server/internal/repository/redis"
	"github.com/rmarchan/parchis-arena/server/internal/service"
)

func main() {
	logger.Init()
	cfg := config.Load()
	log.Info().Str("databaseURL", cfg.DatabaseURL).Msg("Config loaded")

	// Database
	db, err := postgres.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Database connection failed")
	}
	defer db.Close()

	// Redis
	redisClient, err := redisrepo.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Redis connection failed")
	}
	defer redisClient.Close()

	// Repos
	userRepo := postgres.NewUserRepo(db)
	matchRepo := postgres.NewMatchRepo(db)
	roomStore := memory.NewRoomStore()

	// Auth
	jwtMgr := auth.NewJWTManager(cfg.JWTSecret)
	googleOAuth := auth.NewGoogleOAuth(
		os.Getenv("GOOGLE_CLIENT_ID"),
		os.Getenv("GOOGLE_CLIENT_SECRET"),
		os.Getenv("GOOGLE_REDIRECT_URL"),
	)

	// WebSocket hub
	wsHub := handler.NewHub()

	// Services
	clock := service.NewClock()
	sessionSvc := service.NewSessionService(matchRepo, redisClient, wsHub, clock)
	service.NewOrchestrator(sessionSvc, clock, service.OrchestratorConfig{
		TurnTimeout:   cfg.TurnTimeout,
		BotThinkDelay: cfg.BotThinkDelay,
		AutoMoveDelay: cfg.AutoMoveDelay,
		NoMoveDelay:   cfg.NoMoveDelay,
	})
	roomSvc := service.NewRoomService(roomStore, sessionSvc)

	// Handlers
	authHandler := handler.NewAuthHandler(googleOAuth, jwtMgr, userRepo)
	userHandler := handler.NewUserHandler(userRepo)
	roomHandler := handler.NewRoomHandler(roomSvc, userRepo)
	gameHandler := handler.NewGameHandler(sessionSvc)
	matchHandler := handler.NewMatchHandler(matchRepo)
	wsHandler := handler.NewWSHandler(wsHub, jwtMgr, sessionSvc)

	// Router
	mux := http.NewServeMux()
	authMw := auth.Middleware(jwtMgr)

	// Health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Auth (public)
	mux.HandleFunc("GET /auth/google/login", authHandler.GoogleLogin)
	mux.HandleFunc("GET /auth/google/callback", authHandler.GoogleCallback)
	mux.HandleFunc("POST /auth/refresh", authHandler.RefreshToken)
	mux.HandleFunc("POST /auth/guest", authHandler.GuestLogin)

	// Protected API routes
	api := http.NewServeMux()
	api.HandleFunc("GET /users/me", userHandler.GetMe)
	api.HandleFunc("PATCH /users/me", userHandler.UpdateMe)
	api.HandleFunc("GET /users/{id}", userHandler.GetUser)
	api.HandleFunc("POST /rooms", roomHandler.CreateRoom)
	api.HandleFunc("GET /rooms", roomHandler.ListRooms)
	api.HandleFunc("GET /rooms/{id}", roomHandler.GetRoom)
	api.HandleFunc("POST /rooms/{id}/join", roomHandler.JoinRoom)
	api.HandleFunc("POST /rooms/{id}/leave", roomHandler.LeaveRoom)
	api.HandleFunc("POST /rooms/{id}/bots", roomHandler.AddBot)
	api.HandleFunc("DELETE /rooms/{id}/bots/{botId}", roomHandler.RemoveBot)
	api.HandleFunc("POST /rooms/{id}/start", roomHandler.StartGame)
	api.HandleFunc("GET /rooms/{id}/game", gameHandler.GetState)
	api.HandleFunc("GET /rooms/{id}/game/moves", gameHandler.LegalMoves)
	api.HandleFunc("POST /rooms/{id}/game/roll", gameHandler.Roll)
	api.HandleFunc("POST /rooms/{id}/game/move", gameHandler.Move)
	api.HandleFunc("POST /rooms/{id}/game/surrender", gameHandler.Surrender)
	api.HandleFunc("GET /matches", matchHandler.ListMatches)

	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", authMw(api)))

	// WebSocket (auth via query param, not middleware)
	mux.HandleFunc("GET /api/v1/ws", wsHandler.ServeWS)

	// Apply global middleware
	root := middleware.Chain(mux, middleware.Logger, middleware.CORS("*"), middleware.JSON)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Server stopped")
}
