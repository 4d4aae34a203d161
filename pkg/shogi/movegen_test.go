package shogi_test

import (
	"testing"

	"koma/pkg/shogi"
)

func TestPseudoMovesSlideToBoardEdge(t *testing.T) {
	tests := []struct {
		name  string
		piece string
		want  int
	}{
		{"rook", "5e:R", 16},
		{"dragon", "5e:+R", 20},
		{"bishop", "5e:B", 16},
		{"horse", "5e:+B", 20},
		{"lance", "9i:L", 8},
		{"tokin moves like gold", "5e:+P", 6},
		{"silver", "5e:S", 5},
		{"king", "5e:K", 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := place(t, shogi.Sente, tt.piece)
			got := pos.PseudoMoves(sq(t, tt.piece[:2]))
			if len(got) != tt.want {
				t.Fatalf("got %d destinations %v, want %d", len(got), got, tt.want)
			}
		})
	}
}

func TestPseudoMovesStopAtBlockers(t *testing.T) {
	pos := place(t, shogi.Sente, "5e:R", "5c:P", "5g:vP")
	got := squareSet(pos.PseudoMoves(sq(t, "5e")))
	if len(got) != 11 {
		t.Fatalf("got %d destinations, want 11", len(got))
	}
	if got[sq(t, "5c")] {
		t.Fatal("rook must not land on its own pawn")
	}
	if !got[sq(t, "5g")] {
		t.Fatal("rook should capture the gote pawn")
	}
	if got[sq(t, "5h")] {
		t.Fatal("rook must not slide past a capture")
	}
}

func TestKnightJumpsOverPieces(t *testing.T) {
	pos := place(t, shogi.Sente, "5e:N", "5d:P", "4d:P", "6d:P", "5a:vK", "5i:K")
	got := squareSet(pos.PseudoMoves(sq(t, "5e")))
	if len(got) != 2 || !got[sq(t, "4c")] || !got[sq(t, "6c")] {
		t.Fatalf("sente knight destinations: %v", got)
	}

	pos = place(t, shogi.Gote, "5e:vN")
	got = squareSet(pos.PseudoMoves(sq(t, "5e")))
	if len(got) != 2 || !got[sq(t, "4g")] || !got[sq(t, "6g")] {
		t.Fatalf("gote knight destinations: %v", got)
	}
}

func TestOpeningMovesAreSymmetric(t *testing.T) {
	pos := shogi.StartGame()
	sente := pos.LegalMoves(shogi.Sente)
	gote := pos.LegalMoves(shogi.Gote)
	if len(sente) != 30 || len(gote) != 30 {
		t.Fatalf("opening moves: sente %d, gote %d, want 30 each", len(sente), len(gote))
	}
	rotate := func(s shogi.Square) shogi.Square {
		return shogi.Square{Row: 8 - s.Row, Col: 8 - s.Col}
	}
	goteMoves := make(map[shogi.Move]bool, len(gote))
	for _, m := range gote {
		goteMoves[m] = true
	}
	for _, m := range sente {
		mirrored := shogi.NewMove(rotate(m.From), rotate(m.To))
		if !goteMoves[mirrored] {
			t.Fatalf("gote has no mirror of %s", m)
		}
	}
	if !pos.Equal(shogi.StartGame()) {
		t.Fatal("move generation changed the position")
	}
}

func TestSymmetricOpeningLeavesNoCheck(t *testing.T) {
	pos := shogi.StartGame()
	if _, err := pos.ApplyPlayerMove(sq(t, "7g"), sq(t, "7f")); err != nil {
		t.Fatal(err)
	}
	if _, err := pos.ApplyPlayerMove(sq(t, "3c"), sq(t, "3d")); err != nil {
		t.Fatal(err)
	}
	if pos.InCheck(shogi.Sente) || pos.InCheck(shogi.Gote) {
		t.Fatal("a king is in check after 7g7f 3c3d")
	}
	if pos.Turn() != shogi.Sente {
		t.Fatalf("turn = %s", pos.Turn())
	}
}
