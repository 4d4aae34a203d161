package shogi

import "fmt"

type Color int

const (
	Sente Color = iota
	Gote
)

func (c Color) Opponent() Color {
	if c == Sente {
		return Gote
	}
	return Sente
}

// Forward is the row delta of one step toward the opponent.
func (c Color) Forward() int {
	if c == Sente {
		return -1
	}
	return 1
}

func (c Color) String() string {
	if c == Sente {
		return "sente"
	}
	return "gote"
}

func ParseColor(s string) (Color, error) {
	switch s {
	case "sente", "b", "black":
		return Sente, nil
	case "gote", "w", "white":
		return Gote, nil
	default:
		return Sente, fmt.Errorf("unknown color %q", s)
	}
}

type PieceType int

const (
	King PieceType = iota
	Rook
	Bishop
	Gold
	Silver
	Knight
	Lance
	Pawn
)

// HandTypes lists the droppable types in hand display order.
var HandTypes = []PieceType{Rook, Bishop, Gold, Silver, Knight, Lance, Pawn}

var pieceNames = [...]string{"king", "rook", "bishop", "gold", "silver", "knight", "lance", "pawn"}
var pieceLetters = [...]byte{'K', 'R', 'B', 'G', 'S', 'N', 'L', 'P'}

func (t PieceType) String() string {
	if t < King || t > Pawn {
		return fmt.Sprintf("PieceType(%d)", int(t))
	}
	return pieceNames[t]
}

// Letter is the SFEN/USI letter of the unpromoted type.
func (t PieceType) Letter() byte {
	return pieceLetters[t]
}

// Promotable reports whether the type has a promoted form.
func (t PieceType) Promotable() bool {
	return t != King && t != Gold
}

func ParsePieceType(s string) (PieceType, error) {
	for i, name := range pieceNames {
		if s == name {
			return PieceType(i), nil
		}
	}
	if len(s) == 1 {
		if t, ok := pieceTypeFromLetter(s[0]); ok {
			return t, nil
		}
	}
	return King, fmt.Errorf("unknown piece type %q", s)
}

func pieceTypeFromLetter(b byte) (PieceType, bool) {
	if b >= 'a' && b <= 'z' {
		b -= 'a' - 'A'
	}
	for i, l := range pieceLetters {
		if b == l {
			return PieceType(i), true
		}
	}
	return King, false
}

type Piece struct {
	Type     PieceType
	Owner    Color
	Promoted bool
}

func (p Piece) String() string {
	s := p.Owner.String() + " " + p.Type.String()
	if p.Promoted {
		s = "promoted " + s
	}
	return s
}

type Square struct {
	Row int
	Col int
}

func (s Square) OnBoard() bool {
	return s.Row >= 0 && s.Row < 9 && s.Col >= 0 && s.Col < 9
}

// File is the shogi file number, 9 at column 0.
func (s Square) File() int {
	return 9 - s.Col
}

// String returns the square as file digit and rank letter, e.g. "7g".
func (s Square) String() string {
	if !s.OnBoard() {
		return fmt.Sprintf("(%d,%d)", s.Row, s.Col)
	}
	return fmt.Sprintf("%d%c", s.File(), 'a'+s.Row)
}

func ParseSquare(text string) (Square, error) {
	if len(text) != 2 {
		return Square{}, fmt.Errorf("invalid square: %s", text)
	}
	file := int(text[0] - '0')
	if file < 1 || file > 9 {
		return Square{}, fmt.Errorf("invalid file: %s", text)
	}
	row := int(text[1] - 'a')
	if row < 0 || row > 8 {
		return Square{}, fmt.Errorf("invalid rank: %s", text)
	}
	return Square{Row: row, Col: 9 - file}, nil
}

// lastRanks reports whether row is within n ranks of owner's far edge.
func lastRanks(owner Color, row, n int) bool {
	if owner == Sente {
		return row < n
	}
	return row > 8-n
}

func inPromotionZone(owner Color, row int) bool {
	return lastRanks(owner, row, 3)
}
