package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"koma/internal/server"
	"koma/pkg/shogi"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	configPath := flag.String("config", "", "path to config.json (default: search upward from cwd)")
	addr := flag.String("addr", "", "listen address (default from config)")
	origins := flag.String("origins", "*", "allowed CORS origins")
	flag.Parse()

	cfg, err := shogi.ResolveConfig(*configPath)
	if err != nil {
		fatal(err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if _, err := cfg.NewStrategy(); err != nil {
		fatal(err)
	}

	app := server.New(server.Options{Config: cfg, AllowOrigins: *origins})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt)
		<-sig
		log.Println("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Println(err)
		}
	}()

	log.Printf("listening on %s (strategy %s, depth %d)", cfg.Addr, cfg.Strategy, cfg.Depth)
	if err := app.Listen(cfg.Addr); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
