package record_test

import (
	"context"
	"path/filepath"
	"testing"

	"koma/pkg/record"
	"koma/pkg/shogi"
)

var aigakariKIF = filepath.Join("..", "shogi", "testdata", "basic_aigakari.kif")

func TestOutcome(t *testing.T) {
	tests := []struct {
		status         shogi.GameStatus
		result, reason string
	}{
		{shogi.GameStatus{State: shogi.Checkmate, Winner: shogi.Sente}, record.ResultSenteWin, "checkmate"},
		{shogi.GameStatus{State: shogi.Checkmate, Winner: shogi.Gote}, record.ResultGoteWin, "checkmate"},
		{shogi.GameStatus{State: shogi.Checkmate, Winner: shogi.Gote, MissingKing: true}, record.ResultGoteWin, "king_captured"},
		{shogi.GameStatus{State: shogi.Stalemate}, record.ResultDraw, "stalemate"},
		{shogi.GameStatus{State: shogi.InProgress}, record.ResultAbort, "max_plies"},
	}
	for _, tt := range tests {
		result, reason := record.Outcome(tt.status, "max_plies")
		if result != tt.result || reason != tt.reason {
			t.Fatalf("%s: got %s %s", tt.status, result, reason)
		}
	}
}

func TestFromGame(t *testing.T) {
	pos, err := shogi.ParseSFEN("8k/9/7G1/9/9/R8/9/9/4K4 b - 1")
	if err != nil {
		t.Fatal(err)
	}
	g := shogi.NewGameFrom(pos)
	if _, err := g.PlayAI(shogi.NewAlphaBeta(2, 1)); err != nil {
		t.Fatal(err)
	}

	evals := []record.Eval{{Kind: "mate", Value: 1, Nodes: 10}}
	rec := record.FromGame("id-1", "a", "b", g, evals, "")
	if rec.Result != record.ResultSenteWin || rec.WinReason != "checkmate" || rec.MoveCount != 1 {
		t.Fatalf("record = %+v", rec)
	}
	if rec.StartSFEN != "8k/9/7G1/9/9/R8/9/9/4K4 b - 1" {
		t.Fatalf("start sfen = %s", rec.StartSFEN)
	}
	row := rec.MoveEvals[0]
	if row.Ply != 1 || row.USI != g.History[0].USI || row.ScoreType != "mate" || row.ScoreValue != 1 {
		t.Fatalf("row = %+v", row)
	}
	if row.SFEN != g.Position.SFEN(2) {
		t.Fatalf("row sfen = %s", row.SFEN)
	}
	if row.Packed != "" {
		t.Fatal("a position without all pieces should not be packed")
	}
	if row.Material <= 0 {
		t.Fatalf("material = %d", row.Material)
	}
}

type countingEvaluator struct {
	inner record.Evaluator
	calls int
}

func (c *countingEvaluator) Evaluate(ctx context.Context, pos *shogi.Position) (record.Eval, error) {
	c.calls++
	return c.inner.Evaluate(ctx, pos)
}

func TestFromKIF(t *testing.T) {
	eval := &countingEvaluator{inner: record.SearchEvaluator{Depth: 1}}
	cache := make(map[shogi.Packed256]record.Eval)

	rec, err := record.FromKIF(context.Background(), aigakariKIF, eval, cache)
	if err != nil {
		t.Fatal(err)
	}
	if rec.GameID != "basic_aigakari.kif" || rec.SenteName != "先手太郎" || rec.GoteName != "後手花子" {
		t.Fatalf("record = %+v", rec)
	}
	if rec.Result != record.ResultGoteWin || rec.WinReason != "投了" || rec.MoveCount != 12 {
		t.Fatalf("result = %s %s %d", rec.Result, rec.WinReason, rec.MoveCount)
	}
	if eval.calls != 12 || len(cache) != 12 {
		t.Fatalf("calls = %d cache = %d", eval.calls, len(cache))
	}
	for i, row := range rec.MoveEvals {
		if row.ScoreType != "cp" || row.Packed == "" || row.Nodes == 0 {
			t.Fatalf("ply %d: %+v", i+1, row)
		}
	}
	if got := rec.MoveEvals[10].Notation; got != "R2dx2b+" {
		t.Fatalf("ply 11 notation %s", got)
	}

	again, err := record.FromKIF(context.Background(), aigakariKIF, eval, cache)
	if err != nil {
		t.Fatal(err)
	}
	if eval.calls != 12 {
		t.Fatalf("cached replay evaluated %d more positions", eval.calls-12)
	}
	if again.MoveEvals[5] != rec.MoveEvals[5] {
		t.Fatal("cached evaluation differs")
	}
}

func TestSearchEvaluatorMated(t *testing.T) {
	pos, err := shogi.ParseSFEN("8k/7G1/7G1/9/9/9/9/9/4K4 w - 1")
	if err != nil {
		t.Fatal(err)
	}
	e, err := record.SearchEvaluator{Depth: 2}.Evaluate(context.Background(), pos)
	if err != nil {
		t.Fatal(err)
	}
	if e.Kind != "mate" || e.Value != 1 {
		t.Fatalf("eval = %+v", e)
	}
}
