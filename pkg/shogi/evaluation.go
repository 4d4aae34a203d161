package shogi

var pieceValues = [...]int{
	King:   20000,
	Rook:   1000,
	Bishop: 800,
	Gold:   550,
	Silver: 500,
	Knight: 320,
	Lance:  300,
	Pawn:   100,
}

var promotedValues = [...]int{
	King:   20000,
	Rook:   1200,
	Bishop: 1000,
	Gold:   550,
	Silver: 550,
	Knight: 450,
	Lance:  450,
	Pawn:   400,
}

// PieceValue is the material value of a piece on the board.
func PieceValue(piece Piece) int {
	if piece.Promoted {
		return promotedValues[piece.Type]
	}
	return pieceValues[piece.Type]
}

// HandValue is 1.1 times the board value of an unpromoted piece.
func HandValue(t PieceType) int {
	return pieceValues[t] * 11 / 10
}

// Evaluate returns the material balance from side's point of view.
func Evaluate(p *Position, side Color) int {
	score := 0
	for row := 0; row < 9; row++ {
		for col := 0; col < 9; col++ {
			piece := p.board[row][col]
			if piece == nil {
				continue
			}
			if piece.Owner == side {
				score += PieceValue(*piece)
			} else {
				score -= PieceValue(*piece)
			}
		}
	}
	for _, t := range p.hands[side] {
		score += HandValue(t)
	}
	for _, t := range p.hands[side.Opponent()] {
		score -= HandValue(t)
	}
	return score
}
