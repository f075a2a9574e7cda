// Command main runs the standalone caption proxy. It is the only process
// that holds the Gemini API key; the main API and browser clients call it
// over HTTP and never see the key.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meydan/internal/caption"
	"meydan/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadCaptionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	generator, err := caption.NewGeminiGenerator(context.Background(), cfg.GeminiAPIKey)
	if err != nil {
		log.Fatalf("Failed to create caption generator: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:   "Meydan Caption Proxy",
		BodyLimit: 20 * 1024 * 1024,
	})
	app.Use(recover.New())

	caption.NewHandler(generator, logger).Register(app)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down caption proxy...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(ctx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("Caption proxy starting on port %s...", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
