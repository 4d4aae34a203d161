package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"koma/pkg/shogi"
)

type config struct {
	games    int
	parallel int
	playerA  string
	playerB  string
	depthA   int
	depthB   int
	seed     int64
	maxPlies int
	output   string
	kifDir   string
	shiftJIS bool
	verbose  bool
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	configPath := flag.String("config", "", "path to config.json (default: search upward from cwd)")
	var cfg config
	flag.IntVar(&cfg.games, "games", 10, "number of games to play")
	flag.IntVar(&cfg.parallel, "parallel", 2, "games played concurrently")
	flag.StringVar(&cfg.playerA, "a", "", "strategy of player A: alphabeta, random, heuristic or usi:<engine path>")
	flag.StringVar(&cfg.playerB, "b", "random", "strategy of player B")
	flag.IntVar(&cfg.depthA, "depth-a", -1, "search depth of player A (default from config)")
	flag.IntVar(&cfg.depthB, "depth-b", -1, "search depth of player B (default from config)")
	flag.Int64Var(&cfg.seed, "seed", 0, "random seed (default from config)")
	flag.IntVar(&cfg.maxPlies, "max-plies", 256, "abandon games longer than this")
	flag.StringVar(&cfg.output, "output", "arena.parquet", "output parquet file")
	flag.StringVar(&cfg.kifDir, "kif-dir", "", "write one KIF per game into this directory")
	flag.BoolVar(&cfg.shiftJIS, "sjis", false, "encode KIF files as Shift-JIS")
	flag.BoolVar(&cfg.verbose, "v", false, "log every move")
	flag.Parse()

	base, err := shogi.ResolveConfig(*configPath)
	if err != nil {
		fatal(err)
	}
	if cfg.playerA == "" {
		cfg.playerA = base.Strategy
	}
	if cfg.depthA < 0 {
		cfg.depthA = base.Depth
	}
	if cfg.depthB < 0 {
		cfg.depthB = base.Depth
	}
	if cfg.seed == 0 {
		cfg.seed = base.Seed
	}
	cfg.verbose = cfg.verbose || base.Logging
	if cfg.games <= 0 {
		fatal(fmt.Errorf("games must be > 0"))
	}
	if cfg.parallel <= 0 {
		cfg.parallel = 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, cfg); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
