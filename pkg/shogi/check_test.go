package shogi_test

import (
	"testing"

	"koma/pkg/shogi"
)

func TestUniqueEscape(t *testing.T) {
	pos := place(t, shogi.Gote, "1a:vK", "9a:R", "3c:S", "5i:K")
	if !pos.InCheck(shogi.Gote) {
		t.Fatal("gote king should be in check from the rook")
	}
	moves := pos.LegalMoves(shogi.Gote)
	if len(moves) != 1 {
		t.Fatalf("got %d legal moves %v, want exactly one", len(moves), moves)
	}
	if want := shogi.NewMove(sq(t, "1a"), sq(t, "1b")); moves[0] != want {
		t.Fatalf("escape = %s, want %s", moves[0], want)
	}
	if pos.IsCheckmate(shogi.Gote) {
		t.Fatal("a king with an escape is not mated")
	}
	if st := pos.Status(); st.Over() {
		t.Fatalf("status = %s, want in progress", st)
	}
}

func TestCheckmateStatus(t *testing.T) {
	pos := place(t, shogi.Gote, "1a:vK", "9a:R", "2c:G", "5i:K")
	if !pos.IsCheckmate(shogi.Gote) {
		t.Fatalf("expected checkmate:\n%s", pos)
	}
	st := pos.Status()
	if st.State != shogi.Checkmate || st.Winner != shogi.Sente || st.MissingKing {
		t.Fatalf("status = %+v", st)
	}
}

func TestStalemateStatus(t *testing.T) {
	pos := place(t, shogi.Gote, "1a:vK", "3b:S", "2c:G", "5i:K")
	if pos.InCheck(shogi.Gote) {
		t.Fatal("gote should not be in check")
	}
	if !pos.IsStalemate(shogi.Gote) {
		t.Fatalf("expected stalemate:\n%s", pos)
	}
	if st := pos.Status(); st.State != shogi.Stalemate {
		t.Fatalf("status = %s, want stalemate", st)
	}
}

func TestMissingKingLoses(t *testing.T) {
	pos := place(t, shogi.Gote, "5i:K", "5c:vP")
	if !pos.InCheck(shogi.Gote) {
		t.Fatal("a side without a king counts as checked")
	}
	st := pos.Status()
	if st.State != shogi.Checkmate || st.Winner != shogi.Sente || !st.MissingKing {
		t.Fatalf("status = %+v", st)
	}
}

func TestEvaluateStartIsBalanced(t *testing.T) {
	pos := shogi.StartGame()
	if v := shogi.Evaluate(pos, shogi.Sente); v != 0 {
		t.Fatalf("start evaluation = %d", v)
	}
	pos = mustSFEN(t, "lnsg3nl/1r2k1gs1/p1ppppp1p/9/1p7/9/PPPPPPP1P/1BG6/LNS1KGSNL b BPrp 13")
	want := shogi.HandValue(shogi.Bishop) + shogi.HandValue(shogi.Pawn) -
		shogi.HandValue(shogi.Rook) - shogi.HandValue(shogi.Pawn) -
		shogi.PieceValue(shogi.Piece{Type: shogi.Rook}) + shogi.PieceValue(shogi.Piece{Type: shogi.Bishop})
	if got := shogi.Evaluate(pos, shogi.Sente); got != want {
		t.Fatalf("evaluation = %d, want %d", got, want)
	}
	if got := shogi.Evaluate(pos, shogi.Gote); got != -want {
		t.Fatalf("gote evaluation = %d, want %d", got, -want)
	}
}
