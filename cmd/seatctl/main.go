package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/seat-inventory/internal/cli"
	"github.com/iliyamo/seat-inventory/internal/config"
)

var version = "dev"

func main() {
	config.LoadDotEnv()
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Execute(ctx, os.Args[1:], cli.Dependencies{Version: version}, os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
