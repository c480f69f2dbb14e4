package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/victorvcruz/netclip/internal/app"
)

var version = "dev"

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		cancel()
	}()

	code := app.New(version).Execute(ctx, os.Args[1:])
	cancel()
	os.Exit(code)
}
