package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"chartanalyst/internal/cli"
)

func main() {
	// A missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
