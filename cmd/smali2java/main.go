package main

import (
	"os"

	"github.com/Iron-Ham/smali2java/internal/cmd"
	"github.com/joho/godotenv"
)

func main() {
	// A .env in the working directory may carry SMALI2JAVA_* settings
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
