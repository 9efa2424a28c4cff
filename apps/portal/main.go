package main

import (
	"context"
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"

	dig_container "github.com/trezcool/masomo-feedback/apps/portal/di/dig"
	echoportal "github.com/trezcool/masomo-feedback/apps/portal/echo"
	"github.com/trezcool/masomo-feedback/core"
)

func main() {
	c := dig_container.New()

	must(c.Invoke(func(
		conf *core.Config,
		logger core.Logger,
		validate *validator.Validate,
		server *echoportal.Server,
	) {
		// =========================================================================
		// Initialize App

		logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
		defer logger.Info("Application stopped")

		if err := conf.Validate(validate); err != nil {
			logger.Fatal(err.Error(), err)
		}

		// =========================================================================
		// Start Portal

		go func() {
			logger.Info(fmt.Sprintf("Portal listening on %s", conf.Server.Address))
			server.Start()
		}()

		// =========================================================================
		// Shutdown

		select {
		case err := <-server.Errors():
			logger.Fatal(fmt.Sprintf("server error: %v", err), err)

		case sig := <-server.ShutdownSignal():
			logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

			// give outstanding requests a deadline for completion
			ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
			defer cancel()

			// asking listener to shut down and shed load
			if err := server.Shutdown(ctx); err != nil {
				logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

				if err = server.Close(); err != nil {
					logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
				}
			}
		}
	}))
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
