package main

import (
	"context"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"

	"github.com/garrettladley/fitmetrics/internal/version"
)

func main() {
	_ = godotenv.Load()

	rootCmd := newRootCmd()
	rootCmd.Version = version.Get()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM)); err != nil {
		os.Exit(1)
	}
}
