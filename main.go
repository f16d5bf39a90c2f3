package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"redditsync/database"
	"redditsync/handlers"
	"redditsync/routes"
	"redditsync/scheduler"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	log.Println("Starting Reddit manager API...")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment as-is")
	}

	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	// ===== CONNECT TO MONGODB WITH RETRY =====
	log.Println("Connecting to MongoDB...")

	var dbErr error
	for i := 1; i <= 3; i++ {
		if err := database.ConnectMongo(); err != nil {
			dbErr = err
			log.Printf("MongoDB connection attempt %d failed: %v", i, err)
			time.Sleep(2 * time.Second)
			continue
		}
		dbErr = nil
		break
	}

	if dbErr != nil {
		log.Fatal("Failed to connect to MongoDB:", dbErr)
	}
	defer func() {
		if err := database.DisconnectMongo(); err != nil {
			log.Printf("MongoDB disconnect error: %v", err)
		}
	}()

	// Redis backs the refresh-token blacklist; optional
	database.ConnectRedis()

	// ===== GIN MODE =====
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := routes.SetupRouter()

	// ===== SCHEDULER =====
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()

	interval := time.Minute
	if env := os.Getenv("SCHEDULER_INTERVAL"); env != "" {
		if parsed, err := time.ParseDuration(env); err == nil {
			interval = parsed
		}
	}
	sched := scheduler.New(interval, handlers.PublishDuePosts)
	go sched.Start(schedulerCtx)

	// ===== SERVER CONFIG =====
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server running on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error:", err)
		}
	}()

	// ===== GRACEFUL SHUTDOWN =====
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	stopScheduler()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("Forced shutdown:", err)
	}

	log.Println("Server stopped gracefully")
}
