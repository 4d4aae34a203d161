// Command usi runs the koma engine as a USI engine on stdin/stdout so it can
// be loaded by shogi GUIs and by the arena.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"koma/pkg/shogi"
	"koma/pkg/usi"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.SetOutput(os.Stderr)

	configPath := flag.String("config", "", "path to config.json (default: search upward from cwd)")
	depth := flag.Int("depth", -1, "search depth (default from config)")
	strategy := flag.String("strategy", "", "alphabeta, random or heuristic (default from config)")
	verbose := flag.Bool("v", false, "log commands and errors to stderr")
	flag.Parse()

	cfg, err := shogi.ResolveConfig(*configPath)
	if err != nil {
		fatal(err)
	}
	if *depth >= 0 {
		cfg.Depth = *depth
	}
	if *strategy != "" {
		cfg.Strategy = *strategy
	}
	if _, err := cfg.NewStrategy(); err != nil {
		fatal(err)
	}

	server := usi.NewServer(cfg, os.Stdout)
	if *verbose || cfg.Logging {
		server.Logger = log.New(os.Stderr, "usi ", log.LstdFlags|log.Lshortfile)
	} else {
		log.SetOutput(io.Discard)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := server.Run(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
