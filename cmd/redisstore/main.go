// Command redisstore is a small operator tool over a JSON-valued store.
//
//	REDIS_HOST=127.0.0.1 redisstore set greeting '"hello"' --ttl 1m
//	redisstore scan 'user:*' --count 100
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(logger).ExecuteContext(ctx); err != nil {
		stop()
		_ = logger.Sync()
		os.Exit(1)
	}
}
