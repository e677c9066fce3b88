package main

import (
	"log"

	"github.com/aussiebroadwan/portal/internal/portal/app"
)

func main() {
	cfg := app.LoadConfig()

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize portal: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("portal error: %v", err)
	}
}
