// ====================================
// File: cmd/goldd/main.go
// ====================================
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/goldium-io/gold-core/internal/daemon"
)

func main() {
	configPath := flag.String("config", "configs/goldd.yaml", "path to config file (empty: defaults + GOLD_* env)")
	flag.Parse()

	runner, err := daemon.NewRunner(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "goldd: %v\n", err)
		os.Exit(1)
	}

	if err := runner.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "goldd: %v\n", err)
		os.Exit(1)
	}
}
