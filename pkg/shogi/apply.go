package shogi

// Undo holds what Apply changed so Undo can restore it exactly.
type Undo struct {
	Move        Move
	WasPromoted bool
	Captured    *Piece
	Promoted    bool
	turn        Color
	noop        bool
}

// CanPromote reports whether a move from→to makes piece eligible to
// promote. Eligibility is entering, leaving or moving within the
// opponent's three ranks.
func CanPromote(piece Piece, from, to Square) bool {
	if piece.Promoted || !piece.Type.Promotable() {
		return false
	}
	return inPromotionZone(piece.Owner, to.Row) || inPromotionZone(piece.Owner, from.Row)
}

// Apply plays m without any legality check and returns the record needed to
// reverse it. Eligible pieces are always promoted. A relocation from an
// empty square, or a drop onto an occupied square or of a type missing from
// hand, leaves the board untouched apart from the side to move.
func (p *Position) Apply(m Move) Undo {
	u := Undo{Move: m, turn: p.turn}
	if m.IsDrop() {
		if m.To.OnBoard() && p.at(m.To) == nil && p.removeFromHand(m.Owner, m.Piece) {
			p.board[m.To.Row][m.To.Col] = &Piece{Type: m.Piece, Owner: m.Owner}
		} else {
			u.noop = true
		}
		p.turn = m.Owner.Opponent()
		return u
	}
	piece := p.at(m.From)
	if piece == nil || !m.To.OnBoard() {
		u.noop = true
		p.turn = p.turn.Opponent()
		return u
	}
	u.WasPromoted = piece.Promoted
	u.Captured = p.board[m.To.Row][m.To.Col]
	p.board[m.To.Row][m.To.Col] = piece
	p.board[m.From.Row][m.From.Col] = nil
	if u.Captured != nil {
		p.hands[piece.Owner] = append(p.hands[piece.Owner], u.Captured.Type)
	}
	if CanPromote(*piece, m.From, m.To) {
		piece.Promoted = true
		u.Promoted = true
	}
	p.turn = piece.Owner.Opponent()
	return u
}

// Undo reverses the Apply that produced u. Undo records must be replayed in
// reverse order of application.
func (p *Position) Undo(u Undo) {
	p.turn = u.turn
	if u.noop {
		return
	}
	m := u.Move
	switch m.Kind {
	case Drop:
		p.board[m.To.Row][m.To.Col] = nil
		p.hands[m.Owner] = append(p.hands[m.Owner], m.Piece)
	case Relocation:
		piece := p.board[m.To.Row][m.To.Col]
		piece.Promoted = u.WasPromoted
		p.board[m.From.Row][m.From.Col] = piece
		p.board[m.To.Row][m.To.Col] = u.Captured
		if u.Captured != nil {
			p.removeFromHand(piece.Owner, u.Captured.Type)
		}
	}
}
