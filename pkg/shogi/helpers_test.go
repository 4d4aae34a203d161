package shogi_test

import (
	"testing"

	"koma/pkg/shogi"
)

func sq(t *testing.T, name string) shogi.Square {
	t.Helper()
	s, err := shogi.ParseSquare(name)
	if err != nil {
		t.Fatalf("square %s: %v", name, err)
	}
	return s
}

func mustSFEN(t *testing.T, sfen string) *shogi.Position {
	t.Helper()
	pos, err := shogi.ParseSFEN(sfen)
	if err != nil {
		t.Fatalf("parse sfen %q: %v", sfen, err)
	}
	return pos
}

// place builds a position from "square:piece" pairs such as "1a:vK" (gote
// king) or "2c:G" (sente gold). A leading '+' marks a promoted piece.
func place(t *testing.T, turn shogi.Color, pieces ...string) *shogi.Position {
	t.Helper()
	pos := shogi.NewPosition()
	pos.SetTurn(turn)
	for _, entry := range pieces {
		if len(entry) < 4 || entry[2] != ':' {
			t.Fatalf("bad piece entry %q", entry)
		}
		square := sq(t, entry[:2])
		rest := entry[3:]
		piece := shogi.Piece{Owner: shogi.Sente}
		if rest[0] == 'v' {
			piece.Owner = shogi.Gote
			rest = rest[1:]
		}
		if rest[0] == '+' {
			piece.Promoted = true
			rest = rest[1:]
		}
		pt, err := shogi.ParsePieceType(rest)
		if err != nil {
			t.Fatalf("piece entry %q: %v", entry, err)
		}
		piece.Type = pt
		pos.SetPiece(square, piece)
	}
	return pos
}

func squareSet(squares []shogi.Square) map[shogi.Square]bool {
	set := make(map[shogi.Square]bool, len(squares))
	for _, s := range squares {
		set[s] = true
	}
	return set
}
