package shogi

import (
	"fmt"
	"math/rand"
)

// Strategy chooses a move for player. Implementations may mutate p while
// thinking but must restore it before returning.
type Strategy interface {
	ChooseMove(p *Position, player Color) (Move, error)
}

// AlphaBeta searches to a fixed depth. Depth 0 falls back to a random
// legal move.
type AlphaBeta struct {
	Depth          int
	DisablePruning bool
	Rand           *rand.Rand
	Last           SearchResult
}

func NewAlphaBeta(depth int, seed int64) *AlphaBeta {
	return &AlphaBeta{Depth: depth, Rand: rand.New(rand.NewSource(seed))}
}

func (s *AlphaBeta) ChooseMove(p *Position, player Color) (Move, error) {
	if s.Depth == 0 {
		rng := s.Rand
		if rng == nil {
			rng = rand.New(rand.NewSource(1))
		}
		m, err := (&Random{rng: rng}).ChooseMove(p, player)
		s.Last = SearchResult{Move: m}
		return m, err
	}
	result, err := Search(p, player, s.Depth, !s.DisablePruning)
	if err != nil {
		return Move{}, err
	}
	s.Last = result
	return result.Move, nil
}

func (s *AlphaBeta) String() string {
	return fmt.Sprintf("alphabeta(depth=%d)", s.Depth)
}

// Random plays a uniformly random legal move.
type Random struct {
	rng *rand.Rand
}

func NewRandom(seed int64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (s *Random) ChooseMove(p *Position, player Color) (Move, error) {
	moves := p.LegalMoves(player)
	if len(moves) == 0 {
		return Move{}, ErrNoLegalMoves
	}
	return moves[s.rng.Intn(len(moves))], nil
}

func (s *Random) String() string {
	return "random"
}

// Heuristic picks a random legal move weighted toward captures, checks and
// interpositions when in check.
type Heuristic struct {
	rng *rand.Rand
}

func NewHeuristic(seed int64) *Heuristic {
	return &Heuristic{rng: rand.New(rand.NewSource(seed))}
}

const (
	weightBase    = 1
	weightCapture = 4
	weightCheck   = 6
	weightBlock   = 3
)

func (s *Heuristic) ChooseMove(p *Position, player Color) (Move, error) {
	moves := p.LegalMoves(player)
	if len(moves) == 0 {
		return Move{}, ErrNoLegalMoves
	}
	inCheck := p.InCheck(player)
	weights := make([]int, len(moves))
	total := 0
	for i, m := range moves {
		weights[i] = moveWeight(p, player, m, inCheck)
		total += weights[i]
	}
	pick := s.rng.Intn(total)
	for i, w := range weights {
		if pick < w {
			return moves[i], nil
		}
		pick -= w
	}
	return moves[len(moves)-1], nil
}

func moveWeight(p *Position, player Color, m Move, inCheck bool) int {
	w := weightBase
	if !m.IsDrop() {
		if victim := p.at(m.To); victim != nil {
			w += weightCapture + PieceValue(*victim)/100
		}
	}
	if inCheck {
		if m.IsDrop() {
			w += weightBlock
		} else if piece := p.at(m.From); piece != nil && piece.Type != King {
			w += weightBlock
		}
	}
	u := p.Apply(m)
	if p.InCheck(player.Opponent()) {
		w += weightCheck
	}
	p.Undo(u)
	return w
}

func (s *Heuristic) String() string {
	return "heuristic"
}

// NewStrategy builds a strategy by name: "alphabeta", "random" or
// "heuristic".
func NewStrategy(name string, depth int, seed int64) (Strategy, error) {
	switch name {
	case "", "alphabeta":
		return NewAlphaBeta(depth, seed), nil
	case "random":
		return NewRandom(seed), nil
	case "heuristic":
		return NewHeuristic(seed), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}
