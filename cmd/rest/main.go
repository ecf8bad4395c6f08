package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ai-mailroom-be/internal/bootstrap"
	"ai-mailroom-be/internal/config"
	"ai-mailroom-be/internal/server"
	"ai-mailroom-be/internal/tracer"
	"ai-mailroom-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	defer cancelConsumer()
	go func() {
		log.Println("Background: Starting Embed Consumer...")
		if err := container.ConsumerService.StartEmbedProductConsumer(consumerCtx); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server, flush stock on shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("Shutting down, persisting stock levels...")
		if err := container.CatalogService.PersistStock(context.Background()); err != nil {
			log.Printf("Failed to persist stock: %v", err)
		}
		if container.NatsPublisher != nil {
			container.NatsPublisher.Close()
		}
		_ = srv.Shutdown()
	}()

	if err := srv.Run(); err != nil {
		log.Fatal(err)
	}
}
