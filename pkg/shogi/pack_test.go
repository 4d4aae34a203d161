package shogi_test

import (
	"errors"
	"testing"

	"koma/pkg/shogi"
)

func TestPackRoundTrip(t *testing.T) {
	var positions []*shogi.Position
	for _, sfen := range aigakariSFENs {
		positions = append(positions, mustSFEN(t, sfen))
	}
	positions = append(positions,
		mustSFEN(t, "l+n1g1g2l/1r1sk2+S1/p1pppp1pp/6p2/9/2P3P2/PP1PPP1+pP/1B5R1/LNSGKG1NL b BNPs 1"),
		mustSFEN(t, "4k4/9/9/9/9/9/9/9/4K4 w 2R2B4G4S4N4L9P9p 1"),
	)

	seen := make(map[shogi.Packed256]int)
	for i, pos := range positions {
		packed, err := pos.Pack()
		if err != nil {
			t.Fatalf("position %d: %v", i, err)
		}
		if s := packed.String(); len(s) != 64 {
			t.Fatalf("position %d: hex length %d", i, len(s))
		}
		got, err := shogi.UnpackPosition(packed)
		if err != nil {
			t.Fatalf("position %d: %v", i, err)
		}
		if !got.Equal(pos) {
			t.Fatalf("position %d: unpacked\n%s\nwant\n%s", i, got, pos)
		}
		if j, ok := seen[packed]; ok {
			t.Fatalf("positions %d and %d pack identically", j, i)
		}
		seen[packed] = i
	}
}

func TestPackIgnoresHandOrder(t *testing.T) {
	a := mustSFEN(t, "4k4/9/9/9/9/9/9/9/4K4 b - 1")
	b := mustSFEN(t, "4k4/9/9/9/9/9/9/9/4K4 b - 1")
	rest := []shogi.PieceType{shogi.Rook, shogi.Bishop, shogi.Gold, shogi.Silver, shogi.Knight, shogi.Lance}
	counts := map[shogi.PieceType]int{
		shogi.Rook: 2, shogi.Bishop: 2, shogi.Gold: 4, shogi.Silver: 4,
		shogi.Knight: 4, shogi.Lance: 4, shogi.Pawn: 18,
	}
	for i := 0; i < counts[shogi.Pawn]; i++ {
		a.AddToHand(shogi.Sente, shogi.Pawn)
	}
	for _, pt := range rest {
		for i := 0; i < counts[pt]; i++ {
			a.AddToHand(shogi.Sente, pt)
		}
	}
	for i := len(rest) - 1; i >= 0; i-- {
		for n := 0; n < counts[rest[i]]; n++ {
			b.AddToHand(shogi.Sente, rest[i])
		}
	}
	for i := 0; i < counts[shogi.Pawn]; i++ {
		b.AddToHand(shogi.Sente, shogi.Pawn)
	}

	pa, err := a.Pack()
	if err != nil {
		t.Fatal(err)
	}
	pb, err := b.Pack()
	if err != nil {
		t.Fatal(err)
	}
	if pa != pb {
		t.Fatalf("hand order changed packing: %s vs %s", pa, pb)
	}
}

func TestPackErrors(t *testing.T) {
	noKing := mustSFEN(t, "lnsg1gsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL w - 1")
	_, err := noKing.Pack()
	var mk *shogi.MissingKingError
	if !errors.As(err, &mk) {
		t.Fatalf("expected MissingKingError, got %v", err)
	}
	if mk.Color != shogi.Gote {
		t.Fatalf("missing king reported for %s", mk.Color)
	}

	short := mustSFEN(t, "4k4/9/9/9/9/9/9/9/4K4 b R 1")
	if _, err := short.Pack(); err == nil {
		t.Fatal("expected error for a position without all 40 pieces")
	}

	// a bishop and a knight short
	missing := mustSFEN(t, "l+n1g1g2l/1r1sk2+S1/p1pppp1pp/6p2/9/2P3P2/PP1PPP1+pP/1B5R1/LNSGKG1NL b Ps 1")
	if _, err := missing.Pack(); err == nil {
		t.Fatal("expected error for a position with 38 pieces")
	}
}
