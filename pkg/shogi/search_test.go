package shogi_test

import (
	"errors"
	"testing"

	"koma/pkg/shogi"
)

func TestDepthZeroPicksALegalMove(t *testing.T) {
	pos := shogi.StartGame()
	legal := make(map[shogi.Move]bool)
	for _, m := range pos.LegalMoves(shogi.Sente) {
		legal[m] = true
	}
	for seed := int64(1); seed <= 20; seed++ {
		m, err := shogi.NewAlphaBeta(0, seed).ChooseMove(pos, shogi.Sente)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if !legal[m] {
			t.Fatalf("seed %d: %s is not legal", seed, m)
		}
	}
	m, err := shogi.RequestAIMove(pos, shogi.Sente, 0)
	if err != nil || !legal[m] {
		t.Fatalf("RequestAIMove depth 0 = %s, %v", m, err)
	}
}

func TestSearchCapturesHangingRook(t *testing.T) {
	for _, depth := range []int{1, 2} {
		pos := place(t, shogi.Sente, "5i:K", "5a:vK", "9e:R", "1e:vR")
		before := pos.Clone()
		result, err := shogi.Search(pos, shogi.Sente, depth, true)
		if err != nil {
			t.Fatalf("depth %d: %v", depth, err)
		}
		want := shogi.NewMove(sq(t, "9e"), sq(t, "1e"))
		if result.Move != want {
			t.Fatalf("depth %d: best move %s, want %s", depth, result.Move, want)
		}
		if result.Score <= 0 {
			t.Fatalf("depth %d: score %d should favour sente", depth, result.Score)
		}
		if !pos.Equal(before) {
			t.Fatalf("depth %d: search changed the position", depth)
		}
	}
}

func TestSearchFindsMateInOne(t *testing.T) {
	pos := place(t, shogi.Sente, "1a:vK", "2c:G", "9f:R", "5i:K")
	result, err := shogi.Search(pos, shogi.Sente, 2, true)
	if err != nil {
		t.Fatal(err)
	}
	if result.Score != shogi.ValueMate {
		t.Fatalf("score = %d, want mate", result.Score)
	}
	pos.Apply(result.Move)
	if !pos.IsCheckmate(shogi.Gote) {
		t.Fatalf("%s does not mate:\n%s", result.Move, pos)
	}
}

func TestSearchWithoutMoves(t *testing.T) {
	pos := place(t, shogi.Gote, "1a:vK", "9a:R", "2c:G", "5i:K")
	if _, err := shogi.Search(pos, shogi.Gote, 2, true); !errors.Is(err, shogi.ErrNoLegalMoves) {
		t.Fatalf("err = %v, want ErrNoLegalMoves", err)
	}
	if _, err := shogi.NewRandom(1).ChooseMove(pos, shogi.Gote); !errors.Is(err, shogi.ErrNoLegalMoves) {
		t.Fatalf("random: err = %v, want ErrNoLegalMoves", err)
	}
}

func TestStrategiesByName(t *testing.T) {
	for _, name := range []string{"", "alphabeta", "random", "heuristic"} {
		s, err := shogi.NewStrategy(name, 1, 3)
		if err != nil {
			t.Fatalf("%q: %v", name, err)
		}
		pos := shogi.StartGame()
		m, err := s.ChooseMove(pos, shogi.Sente)
		if err != nil {
			t.Fatalf("%q: %v", name, err)
		}
		if _, err := pos.ApplyPlayer(m); err != nil {
			t.Fatalf("%q chose an illegal move %s: %v", name, m, err)
		}
	}
	if _, err := shogi.NewStrategy("minimax", 1, 1); err == nil {
		t.Fatal("unknown strategy should fail")
	}
}

func TestHeuristicPrefersCaptureWhenAlone(t *testing.T) {
	pos := place(t, shogi.Sente, "5i:K", "5a:vK", "9e:R", "1e:vR")
	counts := map[bool]int{}
	s := shogi.NewHeuristic(5)
	for i := 0; i < 200; i++ {
		m, err := s.ChooseMove(pos, shogi.Sente)
		if err != nil {
			t.Fatal(err)
		}
		counts[m.To == sq(t, "1e")]++
	}
	if counts[true] == 0 {
		t.Fatal("heuristic never captured the rook in 200 tries")
	}
}
