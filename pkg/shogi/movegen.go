package shogi

type offset struct {
	dr int
	dc int
}

// Step tables are written for a piece moving toward row 0 (sente) and
// mirrored on the row axis for gote.
var (
	kingSteps     = []offset{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
	goldSteps     = []offset{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, 0}}
	silverSteps   = []offset{{-1, -1}, {-1, 0}, {-1, 1}, {1, -1}, {1, 1}}
	knightSteps   = []offset{{-2, -1}, {-2, 1}}
	pawnSteps     = []offset{{-1, 0}}
	orthogonal    = []offset{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	diagonal      = []offset{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	lanceSlides   = []offset{{-1, 0}}
	noOffsets     = []offset(nil)
	dragonSteps   = diagonal
	horseSteps    = orthogonal
	goldLikeSteps = goldSteps
)

// geometry returns the single steps and the slide directions of a piece.
func geometry(piece Piece) (steps, slides []offset) {
	switch piece.Type {
	case King:
		return kingSteps, noOffsets
	case Rook:
		if piece.Promoted {
			return dragonSteps, orthogonal
		}
		return noOffsets, orthogonal
	case Bishop:
		if piece.Promoted {
			return horseSteps, diagonal
		}
		return noOffsets, diagonal
	case Gold:
		return goldSteps, noOffsets
	case Silver:
		if piece.Promoted {
			return goldLikeSteps, noOffsets
		}
		return silverSteps, noOffsets
	case Knight:
		if piece.Promoted {
			return goldLikeSteps, noOffsets
		}
		return knightSteps, noOffsets
	case Lance:
		if piece.Promoted {
			return goldLikeSteps, noOffsets
		}
		return noOffsets, lanceSlides
	case Pawn:
		if piece.Promoted {
			return goldLikeSteps, noOffsets
		}
		return pawnSteps, noOffsets
	default:
		return noOffsets, noOffsets
	}
}

// PseudoMoves returns the destinations the piece on sq can reach by its
// geometry, ignoring king safety. Squares holding the mover's own pieces
// are excluded; opponent pieces are capture targets.
func (p *Position) PseudoMoves(sq Square) []Square {
	piece := p.at(sq)
	if piece == nil {
		return nil
	}
	return p.appendPseudoMoves(nil, sq, *piece)
}

func (p *Position) appendPseudoMoves(dst []Square, from Square, piece Piece) []Square {
	steps, slides := geometry(piece)
	fwd := -piece.Owner.Forward()
	for _, o := range steps {
		to := Square{Row: from.Row + o.dr*fwd, Col: from.Col + o.dc}
		if p.canLand(to, piece.Owner) {
			dst = append(dst, to)
		}
	}
	for _, o := range slides {
		for i := 1; i < 9; i++ {
			to := Square{Row: from.Row + o.dr*fwd*i, Col: from.Col + o.dc*i}
			if !to.OnBoard() {
				break
			}
			occupant := p.board[to.Row][to.Col]
			if occupant == nil {
				dst = append(dst, to)
				continue
			}
			if occupant.Owner != piece.Owner {
				dst = append(dst, to)
			}
			break
		}
	}
	return dst
}

func (p *Position) canLand(to Square, owner Color) bool {
	if !to.OnBoard() {
		return false
	}
	occupant := p.board[to.Row][to.Col]
	return occupant == nil || occupant.Owner != owner
}

// attacks reports whether the piece on from reaches target by geometry.
func (p *Position) attacks(from Square, piece Piece, target Square) bool {
	var buf [20]Square
	for _, to := range p.appendPseudoMoves(buf[:0], from, piece) {
		if to == target {
			return true
		}
	}
	return false
}
