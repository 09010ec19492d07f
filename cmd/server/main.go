package main

import (
	stdctx "context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abhinash-ops/Mind-canvus/internal/config"
	"github.com/abhinash-ops/Mind-canvus/internal/database"
	"github.com/abhinash-ops/Mind-canvus/internal/engine"
	"github.com/abhinash-ops/Mind-canvus/internal/handlers"
	"github.com/abhinash-ops/Mind-canvus/internal/middleware"
	"github.com/abhinash-ops/Mind-canvus/internal/scheduler"
	"github.com/abhinash-ops/Mind-canvus/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	middleware.Configure(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)

	// MongoDB is optional; without it every actor runs in memory.
	var mongodb *database.MongoDB
	if cfg.Database.URI != "" {
		mongodb, err = database.NewMongoDB(cfg.Database.URI, cfg.Database.Name)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer func() {
			ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 10*time.Second)
			defer cancel()
			if err := mongodb.Close(ctx); err != nil {
				log.Printf("Error closing MongoDB connection: %v", err)
			}
		}()
		log.Printf("Connected to MongoDB database %s", cfg.Database.Name)
	} else {
		log.Printf("No MongoDB URI configured, running in-memory")
	}

	metrics := utils.NewMetricsCollector()
	system := actor.NewActorSystem()
	eng := engine.NewEngine(system, metrics, mongodb)

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.New(system, eng.GetPostActor(), metrics, cfg.Scheduler.Interval)
		sched.Start()
	} else {
		log.Printf("Scheduler disabled by configuration")
	}

	server := handlers.NewServer(system, eng, metrics, mongodb, cfg.Server.RequestTimeout)

	corsConfig := middleware.DefaultCORSConfig(cfg.AllowedOrigins)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)

	mux := http.NewServeMux()
	register := func(path string, handler http.HandlerFunc) {
		wrapped := middleware.ApplyJWTMiddleware(handler, path)
		wrapped = middleware.ApplyRateLimit(wrapped, rateLimiter)
		wrapped = middleware.ApplyCORS(wrapped, corsConfig)
		mux.HandleFunc(path, wrapped)
	}

	register("/health", server.HandleHealth())
	register("/user/register", server.HandleUserRegistration())
	register("/user/login", server.HandleUserLogin())
	register("/user/profile", server.HandleUserProfile())
	register("/user/friends", server.HandleFriends())
	register("/user/friends/request", server.HandleFriendRequests())
	register("/user/friends/accept", server.HandleAcceptFriendRequest())
	register("/user/friends/reject", server.HandleRejectFriendRequest())
	register("/post", server.HandlePost())
	register("/posts", server.HandleListPosts())
	register("/posts/get", server.HandleGetPost())
	register("/posts/like", server.HandleToggleLike())
	register("/posts/views", server.HandleIncrementViews())
	register("/posts/user", server.HandleUserPosts())
	register("/comments", server.HandleComment())
	register("/comments/post", server.HandlePostComments())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("Starting server on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Printf("Shutting down")
	if sched != nil {
		sched.Stop()
	}

	ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
}
