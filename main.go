package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/config"
	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/database"
	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/handlers"
	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/middleware"
	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/routes"
	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/scheduler"
	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/storage"
	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/websocket"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading it")
	}

	config.LoadConfig()

	// Database connection
	if err := database.Connect(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	handlers.InitCollections()

	store, err := storage.New(config.UploadDir, config.PublicBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize file store: %v", err)
	}
	handlers.InitFileStore(store)

	// Change broadcast hub
	websocket.Start()

	// Background report scheduler
	schedCtx, schedCancel := context.WithCancel(context.Background())
	defer schedCancel()
	runner := scheduler.New(
		database.Client.Database(config.DatabaseName),
		store,
		config.SchedulerInterval,
	)
	runner.Start(schedCtx)

	// Router setup
	router := mux.NewRouter()
	routes.RegisterRoutes(router)

	// Global middlewares (order matters!)
	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.RecoveryMiddleware)
	router.Use(middleware.CorsMiddleware)

	// HTTP server configuration
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("QualiControl API running on http://localhost:%s", config.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	<-quit
	log.Println("Shutting down server...")

	schedCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	database.Disconnect()
	log.Println("Server stopped gracefully")
}
