package main

import (
	"context"
	"path/filepath"
	"testing"

	"koma/pkg/record"
	"koma/pkg/shogi"
)

func TestRunWritesRecords(t *testing.T) {
	dir := t.TempDir()
	cfg := config{
		games:    3,
		parallel: 2,
		playerA:  "alphabeta",
		playerB:  "random",
		depthA:   1,
		seed:     11,
		maxPlies: 16,
		output:   filepath.Join(dir, "out", "arena.parquet"),
		kifDir:   filepath.Join(dir, "kif"),
	}
	if err := run(context.Background(), cfg); err != nil {
		t.Fatal(err)
	}

	records, err := record.ReadParquet(cfg.output, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != cfg.games {
		t.Fatalf("%d records", len(records))
	}
	for _, rec := range records {
		if rec.MoveCount == 0 || int(rec.MoveCount) > cfg.maxPlies || len(rec.MoveEvals) != int(rec.MoveCount) {
			t.Fatalf("record %s: %d plies, %d evals", rec.GameID, rec.MoveCount, len(rec.MoveEvals))
		}
		if rec.Result == record.ResultAbort && rec.WinReason != "max_plies" {
			t.Fatalf("aborted with reason %q", rec.WinReason)
		}
	}

	kifs, err := shogi.CollectKIF(cfg.kifDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(kifs) != cfg.games {
		t.Fatalf("%d kif files", len(kifs))
	}
	kif, err := shogi.LoadKIF(kifs[0])
	if err != nil {
		t.Fatal(err)
	}
	if _, err := kif.Game(); err != nil {
		t.Fatal(err)
	}
}

func TestPlayGameAlternatesColors(t *testing.T) {
	cfg := config{playerA: "alphabeta", playerB: "heuristic", depthA: 1, maxPlies: 4}
	a := shogi.NewAlphaBeta(1, 1)
	b := shogi.NewHeuristic(2)

	res, err := playGame(context.Background(), cfg, a, b, gameInfo{gameNumber: 2, aIsSente: false})
	if err != nil {
		t.Fatal(err)
	}
	if res.record.SenteName != "heuristic" || res.record.GoteName != "alphabeta(depth=1)" {
		t.Fatalf("names %s vs %s", res.record.SenteName, res.record.GoteName)
	}
	if res.record.MoveCount != 4 || res.terminal != "中断" {
		t.Fatalf("record = %+v", res.record)
	}
	evals := res.record.MoveEvals
	if evals[0].ScoreType != "" || evals[1].ScoreType != "cp" || evals[1].Nodes == 0 {
		t.Fatalf("evals = %+v", evals[:2])
	}
}

func TestLastEvalMate(t *testing.T) {
	ab := shogi.NewAlphaBeta(2, 1)
	ab.Last = shogi.SearchResult{Score: shogi.ValueMate, Nodes: 9}
	if e := lastEval(ab, shogi.Gote); e.Kind != "mate" || e.Value != -1 {
		t.Fatalf("gote mating: %+v", e)
	}
	ab.Last.Score = -120
	if e := lastEval(ab, shogi.Gote); e.Kind != "cp" || e.Value != 120 {
		t.Fatalf("gote down 120: %+v", e)
	}
	if e := lastEval(shogi.NewRandom(1), shogi.Sente); e.Kind != "" {
		t.Fatalf("random: %+v", e)
	}
}

func TestPlayerName(t *testing.T) {
	tests := map[string]string{
		"alphabeta":              "alphabeta(depth=3)",
		"":                       "alphabeta(depth=3)",
		"random":                 "random",
		"usi:/opt/engines/gikou": "gikou(depth=3)",
	}
	for name, want := range tests {
		if got := playerName(name, 3); got != want {
			t.Fatalf("%q: got %s want %s", name, got, want)
		}
	}
}
