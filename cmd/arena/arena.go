package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"koma/pkg/record"
	"koma/pkg/shogi"
	"koma/pkg/usi"
)

type gameInfo struct {
	gameNumber int
	aIsSente   bool
}

type gameResult struct {
	info     gameInfo
	game     *shogi.Game
	record   record.GameRecord
	terminal string
}

func run(ctx context.Context, cfg config) error {
	log.Println("arena started")
	defer log.Println("arena finished")
	log.Println("NumCPU", runtime.NumCPU(),
		"GOMAXPROCS", runtime.GOMAXPROCS(0),
		"parallel", cfg.parallel)
	log.Printf("%+v\n", cfg)

	if cfg.kifDir != "" {
		if err := os.MkdirAll(cfg.kifDir, 0o755); err != nil {
			return err
		}
	}
	if dir := filepath.Dir(cfg.output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	gameInfos := make(chan gameInfo)
	gameResults := make(chan gameResult)
	records := make(chan record.GameRecord)

	g.Go(func() error {
		defer close(gameInfos)
		for i := 0; i < cfg.games; i++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case gameInfos <- gameInfo{gameNumber: i + 1, aIsSente: i%2 == 0}:
			}
		}
		return nil
	})

	g.Go(func() error {
		return record.WriteParquet(cfg.output, records, int64(cfg.parallel))
	})

	g.Go(func() error {
		defer close(records)
		return showResults(ctx, cfg, gameResults, records)
	})

	wg := &sync.WaitGroup{}
	for i := 0; i < cfg.parallel; i++ {
		worker := i
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			return playGames(ctx, cfg, worker, gameInfos, gameResults)
		})
	}

	g.Go(func() error {
		wg.Wait()
		close(gameResults)
		return nil
	})

	return g.Wait()
}

func playGames(
	ctx context.Context,
	cfg config,
	worker int,
	gameInfos <-chan gameInfo,
	gameResults chan<- gameResult,
) error {
	seed := cfg.seed + int64(worker)*7919
	playerA, closeA, err := newPlayer(ctx, cfg.playerA, cfg.depthA, seed)
	if err != nil {
		return err
	}
	defer closeA()
	playerB, closeB, err := newPlayer(ctx, cfg.playerB, cfg.depthB, seed+1)
	if err != nil {
		return err
	}
	defer closeB()

	for info := range gameInfos {
		res, err := playGame(ctx, cfg, playerA, playerB, info)
		if err != nil {
			return fmt.Errorf("game %d: %w", info.gameNumber, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case gameResults <- res:
		}
	}
	return nil
}

// newPlayer builds a strategy from its flag value. "usi:<path>" starts an
// external engine owned by the caller until the returned closer runs.
func newPlayer(ctx context.Context, player string, depth int, seed int64) (shogi.Strategy, func(), error) {
	path, ok := strings.CutPrefix(player, "usi:")
	if !ok {
		s, err := shogi.NewStrategy(player, depth, seed)
		return s, func() {}, err
	}
	session, err := usi.StartSession(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	hsCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	ids, err := session.Handshake(hsCtx)
	if err != nil {
		session.Close()
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Printf("engine %q ready: %s", path, ids["name"])
	if err := session.NewGame(); err != nil {
		session.Close()
		return nil, nil, err
	}
	closer := func() {
		if err := session.Close(); err != nil {
			log.Printf("engine %q: %v", path, err)
		}
	}
	return &usi.Player{Session: session, Depth: depth}, closer, nil
}

func playerName(player string, depth int) string {
	switch {
	case strings.HasPrefix(player, "usi:"):
		return fmt.Sprintf("%s(depth=%d)", filepath.Base(strings.TrimPrefix(player, "usi:")), depth)
	case player == "" || player == "alphabeta":
		return fmt.Sprintf("alphabeta(depth=%d)", depth)
	default:
		return player
	}
}

func showResults(
	ctx context.Context,
	cfg config,
	gameResults <-chan gameResult,
	records chan<- record.GameRecord,
) error {
	var winsA, winsB, draws, unfinished int
	for res := range gameResults {
		switch res.record.Result {
		case record.ResultSenteWin, record.ResultGoteWin:
			senteWon := res.record.Result == record.ResultSenteWin
			if senteWon == res.info.aIsSente {
				winsA++
			} else {
				winsB++
			}
		case record.ResultDraw:
			draws++
		default:
			unfinished++
		}
		log.Printf("game %d %s: %s %s in %d plies (A %d, B %d, draws %d, unfinished %d)",
			res.info.gameNumber, res.record.GameID, res.record.Result, res.record.WinReason,
			res.record.MoveCount, winsA, winsB, draws, unfinished)

		if cfg.kifDir != "" {
			if err := writeKIF(cfg, res); err != nil {
				return err
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case records <- res.record:
		}
	}
	fmt.Fprintf(os.Stderr, "A=%s B=%s: A wins %d, B wins %d, draws %d, unfinished %d\n",
		playerName(cfg.playerA, cfg.depthA), playerName(cfg.playerB, cfg.depthB),
		winsA, winsB, draws, unfinished)
	return nil
}

func writeKIF(cfg config, res gameResult) error {
	name := fmt.Sprintf("%04d-%s.kif", res.info.gameNumber, res.record.GameID[:8])
	f, err := os.Create(filepath.Join(cfg.kifDir, name))
	if err != nil {
		return err
	}
	defer f.Close()
	opts := shogi.KIFOptions{
		Sente:    res.record.SenteName,
		Gote:     res.record.GoteName,
		Started:  time.Now(),
		ShiftJIS: cfg.shiftJIS,
		Terminal: res.terminal,
	}
	if err := shogi.WriteKIF(f, res.game, opts); err != nil {
		return err
	}
	return f.Close()
}

func newGameID() string {
	return uuid.NewString()
}
