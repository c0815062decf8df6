package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dbelyakov/invoicekeeper/internal/server"
	"github.com/dbelyakov/invoicekeeper/internal/server/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := server.NewApp(ctx, config.LoadConfig())
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
