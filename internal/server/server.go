// Package server provides HTTP server initialization and lifecycle
// management for the graphchat API.
package server

import (
	"context"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/draylen/graphchat/internal/auth"
	"github.com/draylen/graphchat/internal/config"
	"github.com/draylen/graphchat/internal/users"
	"github.com/draylen/graphchat/web/handlers"
)

// Start initializes and starts the HTTP server.
// Returns the actual address being listened on (useful for testing with
// port 0) and the event hub for wiring chat turn broadcasts. The server
// shuts down when ctx is cancelled.
func Start(ctx context.Context, cfg *config.Config, userStore *users.Store, chatService handlers.ChatService) (string, *handlers.EventHub, error) {
	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	hub := handlers.NewEventHub(issuer)
	go hub.Run()

	// 10 req/sec sustained, bursts of 20.
	rateLimiter := handlers.NewRateLimiter(10.0, 20)

	authHandlers := handlers.NewAuthHandlers(userStore, issuer)
	chatHandlers := handlers.NewChatHandlers(chatService)

	// Authenticated routes.
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("POST /api/conversations", chatHandlers.StartConversation)
	apiMux.HandleFunc("GET /api/conversations", chatHandlers.ListConversations)
	apiMux.HandleFunc("POST /api/conversations/{id}/messages", chatHandlers.SendMessage)
	apiMux.HandleFunc("GET /api/conversations/{id}/messages", chatHandlers.GetHistory)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", authHandlers.Register)
	mux.HandleFunc("POST /api/auth/login", authHandlers.Login)

	// Health endpoint. No auth required, used by monitoring.
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})

	mux.Handle("/api/", handlers.RequireAuth(apiMux, issuer))

	// WebSocket endpoint. The hub verifies the token itself since browsers
	// cannot set headers on the upgrade request.
	mux.Handle("/ws", hub)

	handler := handlers.RateLimitMiddleware(mux, rateLimiter)
	handler = handlers.SecurityHeaders(handler)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return "", nil, err
	}

	actualAddr := listener.Addr().String()

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		hub.Stop()
	}()

	return actualAddr, hub, nil
}
