package shogi

import (
	"errors"
	"fmt"
)

// Packed256 is a position in 256 bits: side to move, both king squares,
// a Huffman code per remaining square and one per piece in hand. Only
// positions holding the full set of 40 pieces with both kings on the board
// can be packed.
type Packed256 struct {
	Words [4]uint64
}

type huffCode struct {
	bits uint64
	len  int
}

// Indexed by PieceType. King never appears in the stream.
var (
	boardHuff = [...]huffCode{
		Rook:   {0b111111, 6},
		Bishop: {0b011111, 6},
		Gold:   {0b01111, 5},
		Silver: {0b0111, 4},
		Knight: {0b1011, 4},
		Lance:  {0b0011, 4},
		Pawn:   {0b01, 2},
	}
	handHuff = [...]huffCode{
		Rook:   {0b11111, 5},
		Bishop: {0b01111, 5},
		Gold:   {0b0111, 4},
		Silver: {0b011, 3},
		Knight: {0b101, 3},
		Lance:  {0b001, 3},
		Pawn:   {0b0, 1},
	}
	emptyHuff = huffCode{0b0, 1}
)

var errPackedOverflow = errors.New("packed position exceeds 256 bits")

type bitstream struct {
	words [4]uint64
	pos   int
}

func (b *bitstream) put(value uint64, n int) error {
	for i := 0; i < n; i++ {
		if b.pos >= 256 {
			return errPackedOverflow
		}
		if (value>>i)&1 != 0 {
			b.words[b.pos/64] |= 1 << uint(b.pos%64)
		}
		b.pos++
	}
	return nil
}

func (b *bitstream) get(n int) (uint64, error) {
	var value uint64
	for i := 0; i < n; i++ {
		if b.pos >= 256 {
			return 0, errors.New("packed position truncated")
		}
		value |= ((b.words[b.pos/64] >> uint(b.pos%64)) & 1) << i
		b.pos++
	}
	return value, nil
}

func (b *bitstream) putCode(c huffCode) error {
	return b.put(c.bits, c.len)
}

// getCode reads bits until they form one of table's codes. empty is
// accepted when allowEmpty is set and reported by ok == false.
func (b *bitstream) getCode(table []huffCode, allowEmpty bool) (t PieceType, ok bool, err error) {
	var value uint64
	for n := 1; n <= 6; n++ {
		bit, err := b.get(1)
		if err != nil {
			return 0, false, err
		}
		value |= bit << (n - 1)
		if allowEmpty && n == emptyHuff.len && value == emptyHuff.bits {
			return 0, false, nil
		}
		for pt, c := range table {
			if pt != int(King) && c.len == n && c.bits == value {
				return PieceType(pt), true, nil
			}
		}
	}
	return 0, false, fmt.Errorf("invalid piece code %b", value)
}

func squareIndex(sq Square) uint64 {
	return uint64(sq.Row*9 + sq.Col)
}

func indexSquare(i uint64) Square {
	return Square{Row: int(i) / 9, Col: int(i) % 9}
}

func (b *bitstream) putOwner(c Color) error {
	return b.put(uint64(c), 1)
}

// Pack encodes the position. Hand pieces are written sente first, pawn to
// rook, so positions whose hands differ only in order pack identically.
func (p *Position) Pack() (Packed256, error) {
	var b bitstream
	senteKing, ok := p.KingSquare(Sente)
	if !ok {
		return Packed256{}, &MissingKingError{Color: Sente}
	}
	goteKing, ok := p.KingSquare(Gote)
	if !ok {
		return Packed256{}, &MissingKingError{Color: Gote}
	}
	if err := b.put(uint64(p.turn), 1); err != nil {
		return Packed256{}, err
	}
	if err := b.put(squareIndex(senteKing), 7); err != nil {
		return Packed256{}, err
	}
	if err := b.put(squareIndex(goteKing), 7); err != nil {
		return Packed256{}, err
	}

	for row := 0; row < 9; row++ {
		for col := 0; col < 9; col++ {
			sq := Square{Row: row, Col: col}
			if sq == senteKing || sq == goteKing {
				continue
			}
			piece := p.board[row][col]
			if piece == nil {
				if err := b.putCode(emptyHuff); err != nil {
					return Packed256{}, err
				}
				continue
			}
			if piece.Type == King {
				return Packed256{}, fmt.Errorf("extra king at %s", sq)
			}
			if err := b.putCode(boardHuff[piece.Type]); err != nil {
				return Packed256{}, err
			}
			if err := b.putOwner(piece.Owner); err != nil {
				return Packed256{}, err
			}
			if piece.Type.Promotable() {
				promo := uint64(0)
				if piece.Promoted {
					promo = 1
				}
				if err := b.put(promo, 1); err != nil {
					return Packed256{}, err
				}
			}
		}
	}

	for _, c := range []Color{Sente, Gote} {
		for i := len(HandTypes) - 1; i >= 0; i-- {
			t := HandTypes[i]
			for n := p.HandCount(c, t); n > 0; n-- {
				if err := b.putCode(handHuff[t]); err != nil {
					return Packed256{}, err
				}
				if err := b.putOwner(c); err != nil {
					return Packed256{}, err
				}
				if t.Promotable() {
					if err := b.put(0, 1); err != nil {
						return Packed256{}, err
					}
				}
			}
		}
	}

	if b.pos != 256 {
		return Packed256{}, fmt.Errorf("packed length is %d bits, expected 256", b.pos)
	}
	return Packed256{Words: b.words}, nil
}

// UnpackPosition decodes a position produced by Pack.
func UnpackPosition(packed Packed256) (*Position, error) {
	b := bitstream{words: packed.Words}
	turn, err := b.get(1)
	if err != nil {
		return nil, err
	}
	senteKing, err := b.get(7)
	if err != nil {
		return nil, err
	}
	goteKing, err := b.get(7)
	if err != nil {
		return nil, err
	}
	if senteKing == goteKing || senteKing > 80 || goteKing > 80 {
		return nil, fmt.Errorf("invalid king squares %d, %d", senteKing, goteKing)
	}

	pos := NewPosition()
	pos.turn = Color(turn)
	ks, kg := indexSquare(senteKing), indexSquare(goteKing)
	pos.board[ks.Row][ks.Col] = &Piece{Type: King, Owner: Sente}
	pos.board[kg.Row][kg.Col] = &Piece{Type: King, Owner: Gote}

	for i := uint64(0); i < 81; i++ {
		if i == senteKing || i == goteKing {
			continue
		}
		t, ok, err := b.getCode(boardHuff[:], true)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		owner, err := b.get(1)
		if err != nil {
			return nil, err
		}
		promoted := false
		if t.Promotable() {
			bit, err := b.get(1)
			if err != nil {
				return nil, err
			}
			promoted = bit == 1
		}
		sq := indexSquare(i)
		pos.board[sq.Row][sq.Col] = &Piece{Type: t, Owner: Color(owner), Promoted: promoted}
	}

	for b.pos < 256 {
		t, _, err := b.getCode(handHuff[:], false)
		if err != nil {
			return nil, err
		}
		owner, err := b.get(1)
		if err != nil {
			return nil, err
		}
		if t.Promotable() {
			bit, err := b.get(1)
			if err != nil {
				return nil, err
			}
			if bit != 0 {
				return nil, fmt.Errorf("promoted %s in hand", t)
			}
		}
		pos.hands[owner] = append(pos.hands[owner], t)
	}
	return pos, nil
}

// String is the 64-digit hex form used as a record key.
func (p Packed256) String() string {
	return fmt.Sprintf("%016x%016x%016x%016x", p.Words[0], p.Words[1], p.Words[2], p.Words[3])
}
