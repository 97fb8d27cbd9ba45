// Package main is the entry point for catalog-stub, an in-memory metadata
// server for developing against the catalog client.
package main

import (
	"log/slog"
	"os"

	"github.com/odpi/egeria-sub150/cmd/catalog-stub/app"
	"github.com/odpi/egeria-sub150/internal/logging"
)

func main() {
	slog.SetDefault(logging.New())

	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
