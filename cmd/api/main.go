package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/bootstrap"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/logger"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/server"
)

// @title BookLog BPSU Library API
// @version 1.0
// @description Catalog, borrowing and administration API of the Bataan Peninsula State University library

// @contact.name BPSU Library
// @contact.email booklogbpsulibrary@gmail.com

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	configPath := flag.String("config", bootstrap.DefaultConfigPath, "path to the YAML config file")
	flag.Parse()

	srv, err := server.NewServer(*configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		stop()
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
