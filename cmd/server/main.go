package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/email-insights/internal/api"
	"github.com/ignite/email-insights/internal/config"
	"github.com/ignite/email-insights/internal/emailsvc"
	"github.com/ignite/email-insights/internal/interactions"
	"github.com/redis/go-redis/v9"
)

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from a stale stub-api process occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

func main() {
	log.Println("Starting email-insights server...")

	// Load configuration
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("EMAILSVC_DOMAIN") != "" {
		log.Println("[config] EMAILSVC_DOMAIN env override active")
	}
	if emailsvc.IsFixtureDomain(cfg.EmailSvc.Domain) {
		log.Printf("[config] fixture domain %q configured, all reads serve fixture data", cfg.EmailSvc.Domain)
	}

	// Pre-flight check: verify the target port is available
	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if port == 0 {
		port = 8080
	}
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", port)

	// Profile cache: shared Redis when configured, in-process otherwise
	var profiles emailsvc.ProfileCache
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			log.Printf("[main] redis unreachable at %s, using in-process profile cache: %v", cfg.Redis.Addr, err)
			profiles = emailsvc.NewMemoryCache()
		} else {
			log.Printf("[main] profile cache backed by redis at %s", cfg.Redis.Addr)
			profiles = emailsvc.NewRedisCache(client, cfg.Redis.TTL())
		}
		pingCancel()
	} else {
		profiles = emailsvc.NewMemoryCache()
	}

	// Wire the upstream client, aggregator, and service
	client := emailsvc.NewClient(cfg.EmailSvc, profiles)
	aggregator := interactions.NewAggregator(client)
	svc := interactions.NewService(client, aggregator, cfg.EmailSvc.Domain, cfg.EmailSvc.EmailListLimit)

	server := api.NewServer(cfg.Server, svc, cfg.Dashboard)

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", host, port)
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
