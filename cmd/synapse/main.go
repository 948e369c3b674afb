package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/KyleBrandon/synapse/pkg/server"
)

func main() {
	flag.Parse()
	err := server.InitializeServer()
	if err != nil {
		slog.Error("failed to initialize the server", "error", err)
		os.Exit(1)
	}
}
