package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/pfrankov/vibe-scribe-sub000/internal/bootstrap"
)

// Development entry point. Serves the frontend from disk instead of the
// embedded assets so UI changes do not require a rebuild.
func main() {
	_ = godotenv.Load()

	app, err := bootstrap.New()
	if err != nil {
		log.Fatalf("bootstrap app: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Fatalf("run app: %v", err)
	}
}
