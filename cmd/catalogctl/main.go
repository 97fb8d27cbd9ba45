// Package main is the entry point for catalogctl, a command line client of
// the asset owner access service.
package main

import (
	"log/slog"
	"os"

	"github.com/odpi/egeria-sub150/cmd/catalogctl/app"
	"github.com/odpi/egeria-sub150/internal/logging"
)

func main() {
	slog.SetDefault(logging.New())

	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
