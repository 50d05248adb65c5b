// Package main is the entry point for the idconnect CLI.
package main

import (
	"os"

	"github.com/idconnect/idconnect/cmd/idc/app"
	"github.com/idconnect/idconnect/pkg/logger"
)

func main() {
	logger.Initialize()

	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
