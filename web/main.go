package main

import (
	"flag"
	"log"
	"os"

	"github.com/df07/go-pathtracer/web/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port to serve on")
	workers := flag.Int("workers", 0, "Render workers per request (0 = CPU count)")
	flag.Parse()

	// Create and start web server
	webServer := server.NewServer(*port, *workers)

	log.Printf("Path Tracer Web Server")
	log.Printf("Visit http://localhost:%d/api/scenes to list scenes", *port)

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
