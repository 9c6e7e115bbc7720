package main

import (
	"log"

	"yt2text/internal/bootstrap"
)

// Serves ./frontend from disk; handy while iterating on the UI.
func main() {
	app, err := bootstrap.New()
	if err != nil {
		log.Fatalf("bootstrap app: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Fatalf("run app: %v", err)
	}
}
