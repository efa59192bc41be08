package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/mellihq/melli-ads/adsservice"
)

func main() {
	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	if err := adsservice.Run(); err != nil {
		os.Exit(1)
	}
}
