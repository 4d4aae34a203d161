package shogi

// InCheck reports whether c's king is attacked. A side without a king is
// treated as checked.
func (p *Position) InCheck(c Color) bool {
	king, ok := p.KingSquare(c)
	if !ok {
		return true
	}
	return p.isAttackedBy(king, c.Opponent())
}

func (p *Position) isAttackedBy(target Square, attacker Color) bool {
	for row := 0; row < 9; row++ {
		for col := 0; col < 9; col++ {
			piece := p.board[row][col]
			if piece == nil || piece.Owner != attacker {
				continue
			}
			if p.attacks(Square{Row: row, Col: col}, *piece, target) {
				return true
			}
		}
	}
	return false
}

// IsCheckmate reports whether c is in check with no legal move or drop.
func (p *Position) IsCheckmate(c Color) bool {
	return p.InCheck(c) && !p.HasLegalMove(c)
}

// IsStalemate reports whether c is not in check but cannot move.
func (p *Position) IsStalemate(c Color) bool {
	return !p.InCheck(c) && !p.HasLegalMove(c)
}

// HasLegalMove stops at the first legal relocation or drop for c.
func (p *Position) HasLegalMove(c Color) bool {
	found := false
	p.eachLegalMove(c, func(Move) bool {
		found = true
		return false
	})
	return found
}

// LegalMoves lists every legal relocation of c's pieces, board order, then
// every legal drop of each distinct hand type over all squares.
func (p *Position) LegalMoves(c Color) []Move {
	var moves []Move
	p.eachLegalMove(c, func(m Move) bool {
		moves = append(moves, m)
		return true
	})
	return moves
}

func (p *Position) eachLegalMove(c Color, fn func(Move) bool) {
	var buf [20]Square
	for row := 0; row < 9; row++ {
		for col := 0; col < 9; col++ {
			piece := p.board[row][col]
			if piece == nil || piece.Owner != c {
				continue
			}
			from := Square{Row: row, Col: col}
			for _, to := range p.appendPseudoMoves(buf[:0], from, *piece) {
				m := NewMove(from, to)
				if p.leavesKingInCheck(m, c) {
					continue
				}
				if !fn(m) {
					return
				}
			}
		}
	}
	for _, t := range p.handTypes(c) {
		for row := 0; row < 9; row++ {
			for col := 0; col < 9; col++ {
				to := Square{Row: row, Col: col}
				if p.board[row][col] != nil || !p.IsLegalDrop(t, c, to) {
					continue
				}
				if !fn(NewDrop(t, c, to)) {
					return
				}
			}
		}
	}
}
