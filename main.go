package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fjacquet/payrecon/cmd/automatch"
	"fjacquet/payrecon/cmd/batch"
	"fjacquet/payrecon/cmd/export"
	"fjacquet/payrecon/cmd/ingest"
	"fjacquet/payrecon/cmd/invoice"
	"fjacquet/payrecon/cmd/match"
	"fjacquet/payrecon/cmd/reference"
	"fjacquet/payrecon/cmd/review"
	"fjacquet/payrecon/cmd/root"
	"fjacquet/payrecon/cmd/submit"
	"fjacquet/payrecon/cmd/tenant"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(tenant.Cmd)
	root.Cmd.AddCommand(invoice.Cmd)
	root.Cmd.AddCommand(reference.Cmd)
	root.Cmd.AddCommand(ingest.Cmd)
	root.Cmd.AddCommand(batch.Cmd)
	root.Cmd.AddCommand(submit.Cmd)
	root.Cmd.AddCommand(automatch.Cmd)
	root.Cmd.AddCommand(match.Cmd)
	root.Cmd.AddCommand(review.Cmd)
	root.Cmd.AddCommand(export.Cmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.Cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
