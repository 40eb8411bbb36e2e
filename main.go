package main

import (
	"log"
	"net/http"
	"os"

	"github.com/TheYellowSparrow/astrocade-volleyball/config"
	"github.com/TheYellowSparrow/astrocade-volleyball/server"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "astrocade-volleyball",
	Short: "Authoritative realtime server for the Astrocade volleyball arcade game",
	Long: `Runs the lobby directory, room sessions and fixed-rate simulation for
the two-team volleyball game, serving the client over WebSockets on /ws
and the static bundle on /.`,
	Run: func(cmd *cobra.Command, args []string) {
		runServer()
	},
}

func runServer() {
	cfg := config.Load()

	// Core game server
	gs := server.NewGameServer()

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		// Allow all origins for development. RESTRICT THIS IN PRODUCTION!
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.HandleFunc("/ws", gs.HandleConnections)
	r.Handle("/*", server.StaticFileServer(cfg.StaticDir, "/index.html"))

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	log.Printf("Server started on %s", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("ListenAndServe:", err)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
