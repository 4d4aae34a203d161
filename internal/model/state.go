package model

import (
	"koma/pkg/shogi"
)

type SquareView struct {
	Row  int    `json:"row"`
	Col  int    `json:"col"`
	Name string `json:"name"`
}

func NewSquareView(sq shogi.Square) SquareView {
	return SquareView{Row: sq.Row, Col: sq.Col, Name: sq.String()}
}

func (v SquareView) Square() shogi.Square {
	return shogi.Square{Row: v.Row, Col: v.Col}
}

type PieceView struct {
	Type     string `json:"type"`
	Owner    string `json:"owner"`
	Promoted bool   `json:"promoted"`
}

type MoveView struct {
	Ply      int         `json:"ply"`
	Owner    string      `json:"owner"`
	Notation string      `json:"notation"`
	USI      string      `json:"usi"`
	From     *SquareView `json:"from"` // nil for drops
	To       SquareView  `json:"to"`
	Capture  bool        `json:"capture"`
	Promoted bool        `json:"promoted"`
	Check    bool        `json:"check"`
}

type StatsView struct {
	TotalMoves     int     `json:"totalMoves"`
	TotalCaptures  int     `json:"totalCaptures"`
	NodesEvaluated int64   `json:"nodesEvaluated"`
	NodesPruned    int64   `json:"nodesPruned"`
	PruningRate    float64 `json:"pruningRate"`
	AvgThinkMillis int64   `json:"avgThinkMillis"`
	BestScore      int     `json:"bestScore"`
	PositionValue  int     `json:"positionValue"`
}

// GameState is the client view of a session after every change.
type GameState struct {
	ID          string              `json:"id"`
	Board       [9][9]*PieceView    `json:"board"`
	Hands       map[string][]string `json:"hands"`
	ToMove      string              `json:"toMove"`
	Human       string              `json:"human"`
	AI          string              `json:"ai"`
	SFEN        string              `json:"sfen"`
	InCheck     bool                `json:"inCheck"`
	Status      string              `json:"status"`
	Winner      *string             `json:"winner"`
	MoveHistory []MoveView          `json:"moveHistory"`
	LastMove    *MoveView           `json:"lastMove"`
	Stats       StatsView           `json:"stats"`
}

func newMoveView(ply int, r shogi.MoveRecord) MoveView {
	v := MoveView{
		Ply:      ply,
		Owner:    r.Owner.String(),
		Notation: r.String(),
		USI:      r.USI,
		To:       NewSquareView(r.To()),
		Capture:  r.Capture,
		Promoted: r.Promoted,
		Check:    r.Check,
	}
	if !r.Move.IsDrop() {
		from := NewSquareView(r.From())
		v.From = &from
	}
	return v
}

func buildState(id string, human HumanSide, ai string, g *shogi.Game) GameState {
	pos := g.Position
	st := GameState{
		ID:          id,
		Hands:       map[string][]string{},
		ToMove:      pos.Turn().String(),
		Human:       string(human),
		AI:          ai,
		SFEN:        pos.SFEN(len(g.History) + 1),
		InCheck:     pos.InCheck(pos.Turn()),
		MoveHistory: make([]MoveView, 0, len(g.History)),
	}
	for row := 0; row < 9; row++ {
		for col := 0; col < 9; col++ {
			if piece, ok := pos.PieceAt(shogi.Square{Row: row, Col: col}); ok {
				st.Board[row][col] = &PieceView{
					Type:     piece.Type.String(),
					Owner:    piece.Owner.String(),
					Promoted: piece.Promoted,
				}
			}
		}
	}
	for _, c := range []shogi.Color{shogi.Sente, shogi.Gote} {
		hand := []string{}
		for _, t := range shogi.HandTypes {
			for i := pos.HandCount(c, t); i > 0; i-- {
				hand = append(hand, t.String())
			}
		}
		st.Hands[c.String()] = hand
	}
	for i, r := range g.History {
		st.MoveHistory = append(st.MoveHistory, newMoveView(i+1, r))
	}
	if n := len(st.MoveHistory); n > 0 {
		last := st.MoveHistory[n-1]
		st.LastMove = &last
	}

	status := g.Status()
	switch status.State {
	case shogi.Checkmate:
		st.Status = "checkmate"
		if status.MissingKing {
			st.Status = "king_captured"
		}
		winner := status.Winner.String()
		st.Winner = &winner
	case shogi.Stalemate:
		st.Status = "stalemate"
	default:
		st.Status = "in_progress"
	}

	stats := g.Stats
	st.Stats = StatsView{
		TotalMoves:     stats.TotalMoves,
		TotalCaptures:  stats.TotalCaptures,
		NodesEvaluated: stats.NodesEvaluated,
		NodesPruned:    stats.NodesPruned,
		PruningRate:    stats.PruningRate(),
		AvgThinkMillis: stats.AverageThinkTime().Milliseconds(),
		BestScore:      stats.BestScore,
		PositionValue:  stats.PositionValue,
	}
	return st
}
