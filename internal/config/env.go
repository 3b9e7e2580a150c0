package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads the first readable .env file. Variables already present
// in the process environment are not overwritten.
func loadEnvFiles() {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			fmt.Fprintf(os.Stderr, "Note: could not load %s: %v\n", f, err)
			continue
		}
		fmt.Fprintf(os.Stderr, "Loaded environment variables from %s\n", f)
		return
	}
}
