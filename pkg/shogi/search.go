package shogi

import "time"

const (
	valueInfinity = 1 << 30
	// ValueMate is the score of a position whose side to move is mated.
	ValueMate = 1 << 29
)

// SearchResult is the outcome of one root search.
type SearchResult struct {
	Move    Move
	Score   int
	Depth   int
	Nodes   int64
	Pruned  int64
	Elapsed time.Duration
}

// PruningRate is the share of pruned nodes in evaluated plus pruned nodes.
func (r SearchResult) PruningRate() float64 {
	total := r.Nodes + r.Pruned
	if total == 0 {
		return 0
	}
	return float64(r.Pruned) / float64(total)
}

type searcher struct {
	pos    *Position
	ai     Color
	prune  bool
	nodes  int64
	pruned int64
}

// Search runs a fixed-depth minimax for player with alpha-beta pruning
// unless prune is false. Depth must be at least 1.
func Search(p *Position, player Color, depth int, prune bool) (SearchResult, error) {
	start := time.Now()
	moves := p.LegalMoves(player)
	if len(moves) == 0 {
		return SearchResult{}, ErrNoLegalMoves
	}
	if depth < 1 {
		depth = 1
	}
	s := &searcher{pos: p, ai: player, prune: prune}
	best := -valueInfinity
	bestMove := moves[0]
	alpha := -valueInfinity
	for _, m := range moves {
		u := p.Apply(m)
		value := s.alphaBeta(depth-1, alpha, valueInfinity, false)
		p.Undo(u)
		if value > best {
			best = value
			bestMove = m
		}
		if prune && value > alpha {
			alpha = value
		}
	}
	return SearchResult{
		Move:    bestMove,
		Score:   best,
		Depth:   depth,
		Nodes:   s.nodes,
		Pruned:  s.pruned,
		Elapsed: time.Since(start),
	}, nil
}

func (s *searcher) alphaBeta(depth, alpha, beta int, maximizing bool) int {
	s.nodes++
	if depth == 0 {
		return Evaluate(s.pos, s.ai)
	}

	player := s.ai
	if !maximizing {
		player = s.ai.Opponent()
	}
	moves := s.pos.LegalMoves(player)
	if len(moves) == 0 {
		if !s.pos.InCheck(player) {
			return 0
		}
		if maximizing {
			return -ValueMate
		}
		return ValueMate
	}

	if maximizing {
		best := -valueInfinity
		for _, m := range moves {
			u := s.pos.Apply(m)
			value := s.alphaBeta(depth-1, alpha, beta, false)
			s.pos.Undo(u)
			best = max(best, value)
			if !s.prune {
				continue
			}
			alpha = max(alpha, value)
			if beta <= alpha {
				s.pruned++
				break
			}
		}
		return best
	}

	best := valueInfinity
	for _, m := range moves {
		u := s.pos.Apply(m)
		value := s.alphaBeta(depth-1, alpha, beta, true)
		s.pos.Undo(u)
		best = min(best, value)
		if !s.prune {
			continue
		}
		beta = min(beta, value)
		if beta <= alpha {
			s.pruned++
			break
		}
	}
	return best
}

// RequestAIMove picks a move for ai. Depth 0 selects a uniformly random
// legal move instead of searching.
func RequestAIMove(p *Position, ai Color, depth int) (Move, error) {
	if depth == 0 {
		return NewRandom(time.Now().UnixNano()).ChooseMove(p, ai)
	}
	result, err := Search(p, ai, depth, true)
	if err != nil {
		return Move{}, err
	}
	return result.Move, nil
}
