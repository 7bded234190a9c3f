// Package main runs a batch evaluation over client_<n> folders.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	evaluatecmd "onboard/internal/cmd/evaluate"
)

func main() {
	cfg, err := evaluatecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := evaluatecmd.Run(ctx, cfg, os.Stdout); err != nil {
		if errors.Is(err, evaluatecmd.ErrDisagreement) {
			log.Print(err)
			os.Exit(2)
		}
		log.Fatalf("evaluate: %v", err)
	}
}
