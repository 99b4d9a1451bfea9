package main

import (
	"github.com/joho/godotenv"

	"monodo/pkg/cli"
)

func main() {
	// Optional .env for server secrets and API tokens.
	_ = godotenv.Load()

	cli.Execute()
}
