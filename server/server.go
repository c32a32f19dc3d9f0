package server

import (
	"context"
	"log"
	"math/rand"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"favefm/config"
	"favefm/core/auth"
	"favefm/core/discovery"
	"favefm/core/genius"
	"favefm/core/spotify"
	"favefm/db"
	"favefm/logger"
	"favefm/repository"

	"github.com/gorilla/mux"
)

// NewRouter wires the HTTP routes onto a mux router.
func NewRouter(h *APIHandler) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/signup", h.SignupPageHandler).Methods(http.MethodGet)
	router.HandleFunc("/signup", h.SignupHandler).Methods(http.MethodPost)
	router.HandleFunc("/login", h.LoginPageHandler).Methods(http.MethodGet)
	router.HandleFunc("/login", h.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/signout", h.SignoutHandler).Methods(http.MethodPost)

	router.HandleFunc("/", h.RootHandler).Methods(http.MethodGet)
	router.HandleFunc("/index", h.RequirePage(h.IndexHandler)).Methods(http.MethodGet)
	router.HandleFunc("/save", h.RequireUser(h.SaveArtistsHandler)).Methods(http.MethodPost)

	// Static assets (stylesheets, images).
	staticFileServer := http.FileServer(http.Dir(h.cfg.StaticDir))
	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", staticFileServer))

	return router
}

// Start initializes and starts the HTTP server.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	})

	// Connect to the database
	if err := db.ConnectDB(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.DB.Close()

	// Initialize database schema
	if err := db.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	userRepo := repository.NewMySQLUserRepository(db.DB)
	favoriteRepo := repository.NewMySQLFavoriteArtistRepository(db.DB)

	spotifyClient := spotify.NewClient(cfg.SpotifyClientID, cfg.SpotifyClientSecret, cfg.SpotifyMarket)
	geniusClient := genius.NewClient(cfg.GeniusAccessToken)
	sessions := auth.NewSessionManager(cfg.SessionSecret, time.Duration(cfg.SessionTTLHours)*time.Hour)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	discoverySvc := discovery.NewService(favoriteRepo, spotifyClient, geniusClient, rng)

	apiHandler, err := NewAPIHandler(userRepo, discoverySvc, sessions, cfg)
	if err != nil {
		log.Fatalf("Failed to create API handler: %v", err)
	}

	addr := net.JoinHostPort(cfg.BindHost, cfg.BindPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      NewRouter(apiHandler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s...", addr)
		log.Printf("Access the app at http://localhost:%s/", cfg.BindPort)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
