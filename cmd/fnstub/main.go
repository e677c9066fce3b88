package main

import (
	"log"

	"github.com/aussiebroadwan/portal/internal/fnstub/app"
)

func main() {
	application, err := app.New(app.LoadConfig())
	if err != nil {
		log.Fatalf("failed to initialize function stub: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("function stub error: %v", err)
	}
}
