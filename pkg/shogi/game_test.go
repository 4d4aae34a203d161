package shogi_test

import (
	"errors"
	"testing"

	"koma/pkg/shogi"
)

func TestGameRecordsMoves(t *testing.T) {
	g := shogi.NewGame()
	r, err := g.Move(sq(t, "7g"), sq(t, "7f"))
	if err != nil {
		t.Fatal(err)
	}
	if r.String() != "P7g-7f" || r.USI != "7g7f" || r.Owner != shogi.Sente {
		t.Fatalf("record = %s %s %s", r, r.USI, r.Owner)
	}
	if _, err := g.Move(sq(t, "3c"), sq(t, "3d")); err != nil {
		t.Fatal(err)
	}
	r, err = g.Move(sq(t, "8h"), sq(t, "2b"))
	if err != nil {
		t.Fatal(err)
	}
	if r.String() != "B8hx2b+" || r.USI != "8h2b+" || r.Captured != shogi.Bishop {
		t.Fatalf("record = %s %s", r, r.USI)
	}

	if g.Stats.TotalMoves != 3 || g.Stats.TotalCaptures != 1 {
		t.Fatalf("stats = %+v", g.Stats)
	}
	if g.Stats.PositionValue <= 0 {
		t.Fatalf("sente is a bishop up but position value is %d", g.Stats.PositionValue)
	}
	if g.Position.HandCount(shogi.Sente, shogi.Bishop) != 1 {
		t.Fatal("captured bishop not in hand")
	}
	if !g.Start().Equal(shogi.StartGame()) {
		t.Fatal("Start does not return the initial position")
	}
	if len(g.History) != 3 {
		t.Fatalf("history length %d", len(g.History))
	}
}

func TestGameRejectsWrongTurn(t *testing.T) {
	g := shogi.NewGame()
	_, err := g.Move(sq(t, "3c"), sq(t, "3d"))
	var ime *shogi.IllegalMoveError
	if !errors.As(err, &ime) || ime.Reason != shogi.ReasonNotYourTurn {
		t.Fatalf("expected not-your-turn error, got %v", err)
	}
	if !errors.Is(err, shogi.ErrIllegalMove) {
		t.Fatalf("error %v does not wrap ErrIllegalMove", err)
	}
	if len(g.History) != 0 || !g.Position.Equal(shogi.StartGame()) {
		t.Fatal("rejected move changed the game")
	}

	_, err = g.Play(shogi.NewDrop(shogi.Pawn, shogi.Gote, sq(t, "5e")))
	if !errors.Is(err, shogi.ErrIllegalDrop) {
		t.Fatalf("expected illegal drop, got %v", err)
	}
}

func TestGameOver(t *testing.T) {
	g := shogi.NewGameFrom(place(t, shogi.Sente, "1a:vK", "2c:G", "9f:R", "5i:K"))
	if _, err := g.Move(sq(t, "9f"), sq(t, "9a")); err != nil {
		t.Fatal(err)
	}
	status := g.Status()
	if status.State != shogi.Checkmate || status.Winner != shogi.Sente || status.MissingKing {
		t.Fatalf("status = %s", status)
	}
	if !g.History[0].Check {
		t.Fatal("mating move not marked as check")
	}
	if _, err := g.Move(sq(t, "1a"), sq(t, "1b")); !errors.Is(err, shogi.ErrGameOver) {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}
	if _, err := g.PlayAI(shogi.NewRandom(1)); !errors.Is(err, shogi.ErrGameOver) {
		t.Fatalf("expected ErrGameOver from PlayAI, got %v", err)
	}
}

func TestNewGameFromCopiesPosition(t *testing.T) {
	pos := shogi.StartGame()
	g := shogi.NewGameFrom(pos)
	if _, err := g.Move(sq(t, "7g"), sq(t, "7f")); err != nil {
		t.Fatal(err)
	}
	if !pos.Equal(shogi.StartGame()) {
		t.Fatalf("caller's position changed:\n%s", pos)
	}
	if !g.Start().Equal(pos) {
		t.Fatal("start position differs from the one passed in")
	}
}

func TestGameMissingKing(t *testing.T) {
	g := shogi.NewGameFrom(place(t, shogi.Sente, "5i:K", "5a:R"))
	status := g.Status()
	if status.State != shogi.Checkmate || status.Winner != shogi.Sente || !status.MissingKing {
		t.Fatalf("status = %s", status)
	}
}

func TestGamePlayAIStats(t *testing.T) {
	g := shogi.NewGame()
	ai := shogi.NewAlphaBeta(1, 1)
	r, err := g.PlayAI(ai)
	if err != nil {
		t.Fatal(err)
	}
	if r.Owner != shogi.Sente || len(g.History) != 1 {
		t.Fatalf("record = %s", r)
	}
	if g.Stats.NodesEvaluated == 0 || len(g.Stats.ThinkTimes) != 1 {
		t.Fatalf("stats = %+v", g.Stats)
	}
	if rate := g.Stats.PruningRate(); rate < 0 || rate > 1 {
		t.Fatalf("pruning rate %f", rate)
	}
}
