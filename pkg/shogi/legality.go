package shogi

// IsLegalMove reports whether the piece on from may move to to.
func (p *Position) IsLegalMove(from, to Square) bool {
	return p.moveError(from, to) == nil
}

func (p *Position) moveError(from, to Square) error {
	if !from.OnBoard() || !to.OnBoard() {
		return &IllegalMoveError{From: from, To: to, Reason: ReasonOffBoard}
	}
	piece := p.at(from)
	if piece == nil {
		return &IllegalMoveError{From: from, To: to, Reason: ReasonNoPiece}
	}
	if !p.attacks(from, *piece, to) {
		return &IllegalMoveError{From: from, To: to, Reason: ReasonUnreachable}
	}
	if p.leavesKingInCheck(NewMove(from, to), piece.Owner) {
		return &IllegalMoveError{From: from, To: to, Reason: ReasonSelfCheck}
	}
	return nil
}

func (p *Position) leavesKingInCheck(m Move, mover Color) bool {
	u := p.Apply(m)
	inCheck := p.InCheck(mover)
	p.Undo(u)
	return inCheck
}

// LegalMovesFrom returns the legal destinations of the piece on sq.
func (p *Position) LegalMovesFrom(sq Square) []Square {
	piece := p.at(sq)
	if piece == nil {
		return nil
	}
	var legal []Square
	for _, to := range p.PseudoMoves(sq) {
		if !p.leavesKingInCheck(NewMove(sq, to), piece.Owner) {
			legal = append(legal, to)
		}
	}
	return legal
}

// IsLegalDrop reports whether owner may drop a t from hand onto to.
func (p *Position) IsLegalDrop(t PieceType, owner Color, to Square) bool {
	return p.DropError(t, owner, to) == nil
}

// CanDrop is IsLegalDrop under the name used for drop hints.
func (p *Position) CanDrop(t PieceType, owner Color, to Square) bool {
	return p.IsLegalDrop(t, owner, to)
}

// DropError returns an *IllegalDropError naming the first rule a drop
// violates, or nil when the drop is legal.
func (p *Position) DropError(t PieceType, owner Color, to Square) error {
	fail := func(reason string) error {
		return &IllegalDropError{Piece: t, Owner: owner, To: to, Reason: reason}
	}
	if !to.OnBoard() {
		return fail(ReasonOffBoard)
	}
	if t == King {
		return fail(ReasonKingDrop)
	}
	if p.HandCount(owner, t) == 0 {
		return fail(ReasonNotInHand)
	}
	if p.at(to) != nil {
		return fail(ReasonOccupied)
	}
	if t == Pawn && p.hasUnpromotedPawnOnFile(owner, to.Col) {
		return fail(ReasonNifu)
	}
	if (t == Pawn || t == Lance) && lastRanks(owner, to.Row, 1) {
		return fail(ReasonDeadPiece)
	}
	if t == Knight && lastRanks(owner, to.Row, 2) {
		return fail(ReasonDeadPiece)
	}

	u := p.Apply(NewDrop(t, owner, to))
	defer p.Undo(u)
	if t == Pawn && p.IsCheckmate(owner.Opponent()) {
		return fail(ReasonDropPawnMate)
	}
	if p.InCheck(owner) {
		return fail(ReasonSelfCheck)
	}
	return nil
}

func (p *Position) hasUnpromotedPawnOnFile(owner Color, col int) bool {
	for row := 0; row < 9; row++ {
		piece := p.board[row][col]
		if piece != nil && piece.Type == Pawn && piece.Owner == owner && !piece.Promoted {
			return true
		}
	}
	return false
}
