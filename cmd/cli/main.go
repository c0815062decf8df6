package main

import (
	"context"
	"log"
	"os"

	"github.com/dbelyakov/invoicekeeper/internal/buildinfo"
	"github.com/dbelyakov/invoicekeeper/internal/client/cli"
	"github.com/dbelyakov/invoicekeeper/internal/client/config"
)

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context) error {
	buildinfo.PrintBuildData(os.Stdout)

	app, err := cli.NewApp(config.LoadConfig())
	if err != nil {
		return err
	}

	app.Run(ctx)
	return nil
}
