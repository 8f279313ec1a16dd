package main

import (
	"log"

	"github.com/MrSnakeDoc/bindery/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ bindery failed to initialize: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ bindery failed to start: %v", err)
	}
}
