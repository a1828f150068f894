package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/magabrotheeeer/fitness-tracker/internal/client"
	"github.com/magabrotheeeer/fitness-tracker/internal/client/cli"
	"github.com/magabrotheeeer/fitness-tracker/internal/client/session"
)

func main() {
	serverAddr := flag.String("server", "http://localhost:8080", "fitness-tracker server address")
	sessionPath := flag.String("session", defaultSessionPath(), "path to the session file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	apiClient := client.New(*serverAddr)
	sess := session.New(apiClient, session.NewFileStore(*sessionPath))

	app := cli.NewApp(sess, apiClient, os.Stdin, os.Stdout)
	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "fitness-session.json"
	}
	return filepath.Join(home, ".fitness-tracker", "session.json")
}
