package shogi

import "strings"

// MoveRecord describes a played move with enough detail to render
// notation such as "P7g-7f", "Bx2b+" or "P*5e".
type MoveRecord struct {
	Move        Move
	Piece       PieceType
	Owner       Color
	Capture     bool
	Captured    PieceType
	WasPromoted bool
	Promoted    bool
	Check       bool
	USI         string
}

func (r MoveRecord) From() Square {
	return r.Move.From
}

func (r MoveRecord) To() Square {
	return r.Move.To
}

// String renders the move as piece letter, origin, capture flag,
// destination and promotion flag.
func (r MoveRecord) String() string {
	var b strings.Builder
	if r.WasPromoted {
		b.WriteByte('+')
	}
	b.WriteByte(r.Piece.Letter())
	if r.Move.IsDrop() {
		b.WriteByte('*')
		b.WriteString(r.Move.To.String())
		return b.String()
	}
	b.WriteString(r.Move.From.String())
	if r.Capture {
		b.WriteByte('x')
	} else {
		b.WriteByte('-')
	}
	b.WriteString(r.Move.To.String())
	if r.Promoted {
		b.WriteByte('+')
	}
	return b.String()
}

// describe builds the record for m before it is applied to p.
func (p *Position) describe(m Move) MoveRecord {
	r := MoveRecord{Move: m, USI: p.USI(m)}
	if m.IsDrop() {
		r.Piece = m.Piece
		r.Owner = m.Owner
		return r
	}
	piece := p.at(m.From)
	r.Piece = piece.Type
	r.Owner = piece.Owner
	r.WasPromoted = piece.Promoted
	r.Promoted = CanPromote(*piece, m.From, m.To)
	if victim := p.at(m.To); victim != nil {
		r.Capture = true
		r.Captured = victim.Type
	}
	return r
}
