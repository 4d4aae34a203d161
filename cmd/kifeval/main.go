// Command kifeval reads every KIF file under a directory, replays it through
// the rules engine and writes one parquet row per game with an evaluation
// of every position reached.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"koma/pkg/record"
	"koma/pkg/shogi"
	"koma/pkg/usi"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	configPath := flag.String("config", "", "path to config.json (default: search upward from cwd)")
	inputDir := flag.String("input", "kif", "input directory for KIF files")
	outputPath := flag.String("output", "output.parquet", "output parquet file")
	processNum := flag.Int("process-num", 1, "number of parallel workers")
	depth := flag.Int("depth", -1, "evaluation depth (default from config)")
	engine := flag.String("engine", "", "external USI engine used instead of the built-in search")
	flag.Parse()

	cfg, err := shogi.ResolveConfig(*configPath)
	if err != nil {
		fatal(err)
	}
	if *depth >= 0 {
		cfg.Depth = *depth
	}
	files, err := shogi.CollectKIF(*inputDir)
	if err != nil {
		fatal(err)
	}
	if len(files) == 0 {
		fatal(fmt.Errorf("no .kif files found in %s", *inputDir))
	}

	workers := *processNum
	if workers <= 0 {
		workers = 1
	}
	if workers > len(files) {
		workers = len(files)
	}
	if dir := filepath.Dir(*outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fatal(err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, files, *outputPath, workers, cfg.Depth, *engine); err != nil {
		fatal(err)
	}
}

func run(ctx context.Context, files []string, outputPath string, workers, depth int, engine string) error {
	g, ctx := errgroup.WithContext(ctx)
	jobs := make(chan string)
	results := make(chan record.GameRecord, workers)

	g.Go(func() error {
		return record.WriteParquet(outputPath, results, int64(workers))
	})

	g.Go(func() error {
		defer close(jobs)
		for _, path := range files {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case jobs <- path:
			}
		}
		return nil
	})

	workerGroup, workerCtx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		workerGroup.Go(func() error {
			eval, closeEval, err := newEvaluator(workerCtx, engine, depth)
			if err != nil {
				return err
			}
			defer closeEval()
			cache := make(map[shogi.Packed256]record.Eval)
			for path := range jobs {
				rec, err := record.FromKIF(workerCtx, path, eval, cache)
				if err != nil {
					if workerCtx.Err() != nil {
						return workerCtx.Err()
					}
					fmt.Fprintf(os.Stderr, "failed to process %s: %v\n", path, err)
					continue
				}
				select {
				case <-workerCtx.Done():
					return workerCtx.Err()
				case results <- rec:
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(results)
		return workerGroup.Wait()
	})

	return g.Wait()
}

func newEvaluator(ctx context.Context, engine string, depth int) (record.Evaluator, func(), error) {
	if engine == "" {
		return record.SearchEvaluator{Depth: depth}, func() {}, nil
	}
	if _, err := os.Stat(engine); err != nil {
		return nil, nil, fmt.Errorf("engine binary not found at %s: %w", engine, err)
	}
	session, err := usi.StartSession(ctx, engine)
	if err != nil {
		return nil, nil, err
	}
	hsCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if _, err := session.Handshake(hsCtx); err != nil {
		session.Close()
		return nil, nil, err
	}
	return record.USIEvaluator{Session: session, Depth: depth}, func() { session.Close() }, nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
