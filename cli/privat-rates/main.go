package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/malusev998/privat-rates/cli/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := cmd.Execute(&cmd.Config{Ctx: ctx}, os.Args[1:]); err != nil {
		cancel()
		os.Exit(1)
	}
}
