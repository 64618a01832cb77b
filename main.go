// ABOUTME: Entry point for the changex console CLI
// ABOUTME: Command-line and terminal client for the changex admin API

package main

import (
	"fmt"
	"os"

	"github.com/changexio/changex-console/cmd"
	"github.com/changexio/changex-console/internal/logger"
)

func main() {
	logger.Init()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
