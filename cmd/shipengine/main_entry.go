//go:build !testcoverage

package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/shipengine/shipengine-go/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	streams := DefaultIO()
	if err := run(ctx, os.Args[1:], streams, logging.New("shipengine")); err != nil {
		stop()
		fatal(streams.Stderr, err)
	}
}
