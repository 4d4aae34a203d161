package shogi

import (
	"fmt"
	"log"
	"time"
)

type GameState int

const (
	InProgress GameState = iota
	Checkmate
	Stalemate
)

func (s GameState) String() string {
	switch s {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	default:
		return "in progress"
	}
}

// GameStatus is the outcome of a position. Winner is set for Checkmate,
// which also covers a side that has lost its king (MissingKing).
type GameStatus struct {
	State       GameState
	Winner      Color
	MissingKing bool
}

func (s GameStatus) Over() bool {
	return s.State != InProgress
}

func (s GameStatus) String() string {
	switch s.State {
	case Checkmate:
		if s.MissingKing {
			return fmt.Sprintf("%s wins (king captured)", s.Winner)
		}
		return fmt.Sprintf("%s wins by checkmate", s.Winner)
	case Stalemate:
		return "draw by stalemate"
	default:
		return "in progress"
	}
}

// CheckKings returns a *MissingKingError for the side to move first, then
// its opponent, when a king is absent.
func (p *Position) CheckKings() error {
	for _, c := range []Color{p.turn, p.turn.Opponent()} {
		if _, ok := p.KingSquare(c); !ok {
			return &MissingKingError{Color: c}
		}
	}
	return nil
}

// Status reports whether the side to move is mated or stalemated.
func (p *Position) Status() GameStatus {
	if err, ok := p.CheckKings().(*MissingKingError); ok {
		return GameStatus{State: Checkmate, Winner: err.Color.Opponent(), MissingKing: true}
	}
	if p.HasLegalMove(p.turn) {
		return GameStatus{State: InProgress}
	}
	if p.InCheck(p.turn) {
		return GameStatus{State: Checkmate, Winner: p.turn.Opponent()}
	}
	return GameStatus{State: Stalemate}
}

// ApplyPlayerMove validates and permanently plays a relocation for the side
// to move. On error the position is unchanged.
func (p *Position) ApplyPlayerMove(from, to Square) (MoveRecord, error) {
	if piece := p.at(from); piece != nil && piece.Owner != p.turn {
		return MoveRecord{}, &IllegalMoveError{From: from, To: to, Reason: ReasonNotYourTurn}
	}
	if err := p.moveError(from, to); err != nil {
		return MoveRecord{}, err
	}
	return p.play(NewMove(from, to)), nil
}

// ApplyPlayerDrop validates and permanently plays a drop for owner, who
// must be the side to move. On error the position is unchanged.
func (p *Position) ApplyPlayerDrop(t PieceType, owner Color, to Square) (MoveRecord, error) {
	if owner != p.turn {
		return MoveRecord{}, &IllegalDropError{Piece: t, Owner: owner, To: to, Reason: ReasonNotYourTurn}
	}
	if err := p.DropError(t, owner, to); err != nil {
		return MoveRecord{}, err
	}
	return p.play(NewDrop(t, owner, to)), nil
}

// ApplyPlayer dispatches m to ApplyPlayerMove or ApplyPlayerDrop.
func (p *Position) ApplyPlayer(m Move) (MoveRecord, error) {
	if m.IsDrop() {
		return p.ApplyPlayerDrop(m.Piece, m.Owner, m.To)
	}
	return p.ApplyPlayerMove(m.From, m.To)
}

func (p *Position) play(m Move) MoveRecord {
	r := p.describe(m)
	p.Apply(m)
	r.Check = p.InCheck(p.turn)
	return r
}

// Stats accumulates per-game counters for display.
type Stats struct {
	TotalMoves     int
	TotalCaptures  int
	NodesEvaluated int64
	NodesPruned    int64
	ThinkTimes     []time.Duration
	BestScore      int
	// PositionValue is the material balance from sente's side after the
	// last move.
	PositionValue int
}

func (s Stats) PruningRate() float64 {
	return SearchResult{Nodes: s.NodesEvaluated, Pruned: s.NodesPruned}.PruningRate()
}

func (s Stats) AverageThinkTime() time.Duration {
	if len(s.ThinkTimes) == 0 {
		return 0
	}
	var total time.Duration
	for _, t := range s.ThinkTimes {
		total += t
	}
	return total / time.Duration(len(s.ThinkTimes))
}

// Game is one authoritative position with its move history. A Game is not
// safe for concurrent use.
type Game struct {
	Position *Position
	History  []MoveRecord
	Stats    Stats
	Logger   *log.Logger

	start *Position
}

func NewGame() *Game {
	return NewGameFrom(StartGame())
}

// NewGameFrom starts a game from a copy of p; the caller's position is
// left untouched.
func NewGameFrom(p *Position) *Game {
	return &Game{Position: p.Clone(), start: p.Clone()}
}

// Start returns a copy of the position the game began from.
func (g *Game) Start() *Position {
	if g.start == nil {
		return StartGame()
	}
	return g.start.Clone()
}

func (g *Game) logf(format string, args ...interface{}) {
	if g.Logger != nil {
		g.Logger.Printf(format, args...)
	}
}

func (g *Game) Status() GameStatus {
	return g.Position.Status()
}

// Move plays a relocation for the side to move.
func (g *Game) Move(from, to Square) (MoveRecord, error) {
	return g.Play(NewMove(from, to))
}

// Drop plays a drop for the side to move.
func (g *Game) Drop(t PieceType, to Square) (MoveRecord, error) {
	return g.Play(NewDrop(t, g.Position.turn, to))
}

// Play validates and applies m. Moves after the game has ended are rejected
// with ErrGameOver.
func (g *Game) Play(m Move) (MoveRecord, error) {
	if status := g.Position.Status(); status.Over() {
		return MoveRecord{}, fmt.Errorf("%w: %s", ErrGameOver, status)
	}
	r, err := g.Position.ApplyPlayer(m)
	if err != nil {
		g.logf("rejected %s: %v", m, err)
		return MoveRecord{}, err
	}
	g.History = append(g.History, r)
	g.Stats.TotalMoves++
	if r.Capture {
		g.Stats.TotalCaptures++
	}
	g.Stats.PositionValue = Evaluate(g.Position, Sente)
	g.logf("%s: %s", r.Owner, r)
	return r, nil
}

// PlayAI lets s choose a move for the side to move and plays it.
func (g *Game) PlayAI(s Strategy) (MoveRecord, error) {
	if status := g.Position.Status(); status.Over() {
		return MoveRecord{}, fmt.Errorf("%w: %s", ErrGameOver, status)
	}
	player := g.Position.turn
	start := time.Now()
	m, err := s.ChooseMove(g.Position, player)
	if err != nil {
		return MoveRecord{}, err
	}
	g.Stats.ThinkTimes = append(g.Stats.ThinkTimes, time.Since(start))
	if ab, ok := s.(*AlphaBeta); ok && ab.Depth > 0 {
		g.Stats.NodesEvaluated += ab.Last.Nodes
		g.Stats.NodesPruned += ab.Last.Pruned
		g.Stats.BestScore = ab.Last.Score
		g.logf("%s searched depth %d: %d nodes, %d pruned, score %d",
			player, ab.Last.Depth, ab.Last.Nodes, ab.Last.Pruned, ab.Last.Score)
	}
	return g.Play(m)
}
