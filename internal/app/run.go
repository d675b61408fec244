package app

import (
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

// Run starts the application and blocks until shutdown.
func (a *App) Run() error {
	a.logger.Info("application-starting",
		zap.String("log-level", a.cfg.LogLevel),
		zap.String("rpc-url", a.cfg.RPCURL),
		zap.String("target-level", a.cfg.TargetLevel))

	a.startComponents()

	a.healthChecker.SetReady(true)

	a.logger.Info("application-ready",
		zap.String("http-addr", ":"+a.cfg.HTTPPort))

	return a.waitForShutdown()
}

func (a *App) startComponents() {
	// Score feed fan-out
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.hub.Run(a.feed)
	}()

	// HTTP server
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		err := a.httpServer.Start()
		if err != nil {
			a.logger.Error("http-server-error", zap.Error(err))
		}
	}()
}

func (a *App) waitForShutdown() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		a.logger.Info("shutdown-signal-received", zap.String("signal", sig.String()))
	case <-a.ctx.Done():
		a.logger.Info("context-cancelled")
	}

	return a.Shutdown()
}
