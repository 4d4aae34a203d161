package shogi

import (
	"fmt"
	"strings"
)

type MoveKind int

const (
	Relocation MoveKind = iota
	Drop
)

// Move is either a relocation of a board piece or a drop from hand.
// From is meaningless for drops; Piece and Owner are meaningless for
// relocations.
type Move struct {
	Kind  MoveKind
	From  Square
	To    Square
	Piece PieceType
	Owner Color
}

func NewMove(from, to Square) Move {
	return Move{Kind: Relocation, From: from, To: to}
}

func NewDrop(t PieceType, owner Color, to Square) Move {
	return Move{Kind: Drop, To: to, Piece: t, Owner: owner}
}

func (m Move) IsDrop() bool {
	return m.Kind == Drop
}

func (m Move) String() string {
	if m.IsDrop() {
		return fmt.Sprintf("%c*%s", m.Piece.Letter(), m.To)
	}
	return m.From.String() + m.To.String()
}

// USI formats the move in USI notation for the given position, which must
// be the position before the move. Promotion is marked when the move
// triggers it.
func (p *Position) USI(m Move) string {
	if m.IsDrop() {
		return m.String()
	}
	s := m.From.String() + m.To.String()
	if piece := p.at(m.From); piece != nil && CanPromote(*piece, m.From, m.To) {
		s += "+"
	}
	return s
}

// ParseUSIMove reads "7g7f", "8h2b+" or "P*5e". The owner of a drop is the
// side to move of the position it is played in, so it is filled by the caller.
func ParseUSIMove(move string, turn Color) (Move, error) {
	if strings.Contains(move, "*") {
		parts := strings.SplitN(move, "*", 2)
		if len(parts) != 2 || len(parts[0]) != 1 {
			return Move{}, fmt.Errorf("invalid drop move: %s", move)
		}
		t, ok := pieceTypeFromLetter(parts[0][0])
		if !ok || t == King {
			return Move{}, fmt.Errorf("invalid drop piece: %s", move)
		}
		to, err := ParseSquare(parts[1])
		if err != nil {
			return Move{}, err
		}
		return NewDrop(t, turn, to), nil
	}
	if len(move) < 4 {
		return Move{}, fmt.Errorf("invalid move: %s", move)
	}
	from, err := ParseSquare(move[0:2])
	if err != nil {
		return Move{}, err
	}
	to, err := ParseSquare(move[2:4])
	if err != nil {
		return Move{}, err
	}
	if len(move) > 4 && move[4:] != "+" {
		return Move{}, fmt.Errorf("invalid promotion marker: %s", move)
	}
	return NewMove(from, to), nil
}
