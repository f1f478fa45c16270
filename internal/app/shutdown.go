package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"nboe-meetings/internal/observability"
)

// GracefulShutdown возвращает context, который отменяется по SIGINT/SIGTERM.
func GracefulShutdown(parent context.Context, logger *observability.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	// Канал для сигналов ОС
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel() // Отменяем context при получении сигнала
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
