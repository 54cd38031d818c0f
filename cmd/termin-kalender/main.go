package main

import (
	"embed"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/klabast/wb-services/termin-kalender/internal/app"
	"github.com/klabast/wb-services/termin-kalender/internal/commands"
)

//go:embed static/*
var staticFiles embed.FS

//go:embed static/index.html
var indexHTML []byte

func main() {
	// Check for subcommands
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "hash-password":
			commands.HashPassword(os.Args[2:])
			return
		case "list":
			commands.ListEvents(os.Args[2:])
			return
		}
	}

	// Load config from .env / environment
	_ = godotenv.Load()
	var config app.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// Parse flags (override env)
	port := flag.Int("port", config.Port, "Port to listen on")
	flag.Parse()

	if config.DataFile != "" {
		app.EventsFile = config.DataFile
	}

	// Make embedded files available to app package
	app.IndexHTML = indexHTML

	// Load and validate auth credentials
	authFile, err := app.DefaultAuthPath(config.AuthFile)
	if err != nil {
		log.Fatalf("Failed to resolve auth file path: %v", err)
	}
	if err := app.LoadAuthCredentials(authFile); err != nil {
		log.Fatalf("Failed to load auth credentials: %v", err)
	}

	// Load events; a corrupt file is a warning, not a startup failure
	if err := app.LoadStore(); err != nil {
		log.Printf("Continuing with an empty event store")
	}

	// Setup routes
	http.HandleFunc("/", app.ServeIndex)
	http.HandleFunc("/api/config", app.GetConfig)
	http.HandleFunc("/api/month", app.HandleMonth)
	http.HandleFunc("/api/navigate", app.HandleNavigate)
	http.HandleFunc("/api/events", app.HandleEvents)
	http.HandleFunc("/api/download", app.HandleDownload)
	http.HandleFunc("/api/subscribe", app.HandleSubscribe)

	// Mutating routes (protected with Basic Auth when configured)
	http.HandleFunc("/api/events/add", app.RequireAuth(app.AddEvent))
	http.HandleFunc("/api/events/delete", app.RequireAuth(app.DeleteEvent))

	// Serve static files
	http.Handle("/static/", http.FileServer(http.FS(staticFiles)))

	log.Printf("Starting Terminkalender on http://localhost:%d", *port)
	log.Printf("Events file: %s", app.EventsFile)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", *port), nil); err != nil {
		log.Fatal(err)
	}
}
