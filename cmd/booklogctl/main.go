// Command booklogctl runs operator tasks against the BookLog database:
// migrations, seeding, staff accounts, settings and session cleanup.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		logger.Error().Err(err).Msg("booklogctl failed")
		stop()
		os.Exit(1)
	}
}
