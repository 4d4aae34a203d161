package shogi

import (
	"sort"
	"strings"
)

// Position is a board, both hands and the side to move. It is mutated in
// place by Apply and restored by Undo.
type Position struct {
	board [9][9]*Piece
	hands [2][]PieceType
	turn  Color
}

// NewPosition returns an empty board with empty hands, sente to move.
func NewPosition() *Position {
	return &Position{}
}

// StartGame returns the standard initial layout with sente to move.
func StartGame() *Position {
	p := NewPosition()
	back := [9]PieceType{Lance, Knight, Silver, Gold, King, Gold, Silver, Knight, Lance}
	for col := 0; col < 9; col++ {
		p.board[0][col] = &Piece{Type: back[col], Owner: Gote}
		p.board[2][col] = &Piece{Type: Pawn, Owner: Gote}
		p.board[6][col] = &Piece{Type: Pawn, Owner: Sente}
		p.board[8][col] = &Piece{Type: back[col], Owner: Sente}
	}
	p.board[1][1] = &Piece{Type: Rook, Owner: Gote}
	p.board[1][7] = &Piece{Type: Bishop, Owner: Gote}
	p.board[7][1] = &Piece{Type: Bishop, Owner: Sente}
	p.board[7][7] = &Piece{Type: Rook, Owner: Sente}
	return p
}

func (p *Position) Turn() Color {
	return p.turn
}

func (p *Position) SetTurn(c Color) {
	p.turn = c
}

// PieceAt returns a copy of the piece on sq.
func (p *Position) PieceAt(sq Square) (Piece, bool) {
	if !sq.OnBoard() || p.board[sq.Row][sq.Col] == nil {
		return Piece{}, false
	}
	return *p.board[sq.Row][sq.Col], true
}

func (p *Position) at(sq Square) *Piece {
	if !sq.OnBoard() {
		return nil
	}
	return p.board[sq.Row][sq.Col]
}

// SetPiece places a piece for position setup. King and gold are never
// stored promoted.
func (p *Position) SetPiece(sq Square, piece Piece) {
	if !sq.OnBoard() {
		return
	}
	if !piece.Type.Promotable() {
		piece.Promoted = false
	}
	p.board[sq.Row][sq.Col] = &piece
}

func (p *Position) Clear(sq Square) {
	if sq.OnBoard() {
		p.board[sq.Row][sq.Col] = nil
	}
}

// Hand returns a copy of c's hand in insertion order.
func (p *Position) Hand(c Color) []PieceType {
	return append([]PieceType(nil), p.hands[c]...)
}

func (p *Position) AddToHand(c Color, t PieceType) {
	p.hands[c] = append(p.hands[c], t)
}

func (p *Position) HandCount(c Color, t PieceType) int {
	n := 0
	for _, h := range p.hands[c] {
		if h == t {
			n++
		}
	}
	return n
}

// handTypes returns the distinct types in c's hand, first occurrence first.
func (p *Position) handTypes(c Color) []PieceType {
	var seen [8]bool
	var types []PieceType
	for _, t := range p.hands[c] {
		if !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}
	return types
}

// removeFromHand drops the last occurrence of t from c's hand.
func (p *Position) removeFromHand(c Color, t PieceType) bool {
	hand := p.hands[c]
	for i := len(hand) - 1; i >= 0; i-- {
		if hand[i] == t {
			p.hands[c] = append(hand[:i], hand[i+1:]...)
			return true
		}
	}
	return false
}

// KingSquare locates c's king.
func (p *Position) KingSquare(c Color) (Square, bool) {
	for row := 0; row < 9; row++ {
		for col := 0; col < 9; col++ {
			piece := p.board[row][col]
			if piece != nil && piece.Type == King && piece.Owner == c {
				return Square{Row: row, Col: col}, true
			}
		}
	}
	return Square{}, false
}

// PieceCount counts pieces on the board plus both hands.
func (p *Position) PieceCount() int {
	n := len(p.hands[Sente]) + len(p.hands[Gote])
	for row := 0; row < 9; row++ {
		for col := 0; col < 9; col++ {
			if p.board[row][col] != nil {
				n++
			}
		}
	}
	return n
}

func (p *Position) Clone() *Position {
	clone := &Position{turn: p.turn}
	for row := 0; row < 9; row++ {
		for col := 0; col < 9; col++ {
			if p.board[row][col] == nil {
				continue
			}
			piece := *p.board[row][col]
			clone.board[row][col] = &piece
		}
	}
	for c := range p.hands {
		clone.hands[c] = append([]PieceType(nil), p.hands[c]...)
	}
	return clone
}

// Equal compares board contents, promotion flags, side to move and both
// hands as multisets.
func (p *Position) Equal(o *Position) bool {
	if p.turn != o.turn {
		return false
	}
	for row := 0; row < 9; row++ {
		for col := 0; col < 9; col++ {
			a, b := p.board[row][col], o.board[row][col]
			if (a == nil) != (b == nil) {
				return false
			}
			if a != nil && *a != *b {
				return false
			}
		}
	}
	for c := range p.hands {
		if !sameMultiset(p.hands[c], o.hands[c]) {
			return false
		}
	}
	return true
}

func sameMultiset(a, b []PieceType) bool {
	if len(a) != len(b) {
		return false
	}
	x := append([]PieceType(nil), a...)
	y := append([]PieceType(nil), b...)
	sort.Slice(x, func(i, j int) bool { return x[i] < x[j] })
	sort.Slice(y, func(i, j int) bool { return y[i] < y[j] })
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

// String draws the board from sente's side, gote pieces in lower case.
func (p *Position) String() string {
	var b strings.Builder
	b.WriteString("  9 8 7 6 5 4 3 2 1\n")
	for row := 0; row < 9; row++ {
		b.WriteByte('a' + byte(row))
		for col := 0; col < 9; col++ {
			b.WriteByte(' ')
			piece := p.board[row][col]
			if piece == nil {
				b.WriteByte('.')
				continue
			}
			b.WriteString(pieceSFEN(*piece))
		}
		b.WriteByte('\n')
	}
	b.WriteString("hands: " + p.handsSFEN() + " turn: " + p.turn.String())
	return b.String()
}
