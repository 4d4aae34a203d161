package record

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"koma/pkg/shogi"
	"koma/pkg/usi"
)

// Eval is a position score from sente's side with the search effort spent
// on it.
type Eval struct {
	Kind   string
	Value  int
	Nodes  int64
	Pruned int64
}

// Evaluator scores a position.
type Evaluator interface {
	Evaluate(ctx context.Context, pos *shogi.Position) (Eval, error)
}

// SearchEvaluator scores positions with the built-in alpha-beta search.
type SearchEvaluator struct {
	Depth int
}

func (e SearchEvaluator) Evaluate(ctx context.Context, pos *shogi.Position) (Eval, error) {
	if err := ctx.Err(); err != nil {
		return Eval{}, err
	}
	turn := pos.Turn()
	sign := 1
	if turn == shogi.Gote {
		sign = -1
	}
	result, err := shogi.Search(pos, turn, e.Depth, true)
	if errors.Is(err, shogi.ErrNoLegalMoves) {
		if pos.InCheck(turn) {
			return Eval{Kind: "mate", Value: -sign}, nil
		}
		return Eval{Kind: "cp"}, nil
	}
	if err != nil {
		return Eval{}, err
	}
	ev := Eval{Kind: "cp", Value: sign * result.Score, Nodes: result.Nodes, Pruned: result.Pruned}
	switch {
	case result.Score >= shogi.ValueMate:
		ev.Kind, ev.Value = "mate", sign
	case result.Score <= -shogi.ValueMate:
		ev.Kind, ev.Value = "mate", -sign
	}
	return ev, nil
}

// USIEvaluator scores positions with an external engine.
type USIEvaluator struct {
	Session *usi.Session
	Depth   int
}

func (e USIEvaluator) Evaluate(ctx context.Context, pos *shogi.Position) (Eval, error) {
	result, err := e.Session.Go(ctx, pos.SFEN(1), e.Depth)
	if err != nil {
		return Eval{}, err
	}
	if !result.HasScore {
		return Eval{}, errors.New("no score in engine output")
	}
	return Eval{Kind: result.Score.Kind, Value: result.Score.Value, Nodes: result.Nodes}, nil
}

// NewMoveEval builds the row for r, which led to after.
func NewMoveEval(ply int, r shogi.MoveRecord, after *shogi.Position, e Eval) MoveEval {
	row := MoveEval{
		Ply:        int32(ply),
		Notation:   r.String(),
		USI:        r.USI,
		SFEN:       after.SFEN(ply + 1),
		Material:   int32(shogi.Evaluate(after, shogi.Sente)),
		ScoreType:  e.Kind,
		ScoreValue: int32(e.Value),
		Nodes:      e.Nodes,
		Pruned:     e.Pruned,
	}
	if packed, err := after.Pack(); err == nil {
		row.Packed = packed.String()
	}
	return row
}

// Outcome maps a final status to a result and reason. unfinished is the
// reason recorded for a game still in progress.
func Outcome(status shogi.GameStatus, unfinished string) (string, string) {
	switch status.State {
	case shogi.Checkmate:
		result := ResultSenteWin
		if status.Winner == shogi.Gote {
			result = ResultGoteWin
		}
		if status.MissingKing {
			return result, "king_captured"
		}
		return result, "checkmate"
	case shogi.Stalemate:
		return ResultDraw, "stalemate"
	default:
		return ResultAbort, unfinished
	}
}

// FromGame builds a record from a finished or abandoned game. evals holds
// one entry per ply and may be shorter than the history.
func FromGame(id, sente, gote string, g *shogi.Game, evals []Eval, unfinished string) GameRecord {
	result, reason := Outcome(g.Status(), unfinished)
	rec := GameRecord{
		GameID:    id,
		SenteName: sente,
		GoteName:  gote,
		StartSFEN: g.Start().SFEN(1),
		Result:    result,
		WinReason: reason,
		MoveCount: int32(len(g.History)),
	}
	pos := g.Start()
	for i, r := range g.History {
		pos.Apply(r.Move)
		var e Eval
		if i < len(evals) {
			e = evals[i]
		}
		rec.MoveEvals = append(rec.MoveEvals, NewMoveEval(i+1, r, pos, e))
	}
	return rec
}

// cachedPlies bounds the plies whose evaluation is shared between games.
const cachedPlies = 30

// FromKIF replays a KIF file through the rules engine and scores every
// position reached. cache is shared across files for opening positions.
func FromKIF(ctx context.Context, path string, eval Evaluator, cache map[shogi.Packed256]Eval) (GameRecord, error) {
	kif, err := shogi.LoadKIF(path)
	if err != nil {
		return GameRecord{}, err
	}
	if len(kif.Moves) == 0 {
		return GameRecord{}, fmt.Errorf("no moves found in %s", path)
	}
	g, err := kif.Game()
	if err != nil {
		return GameRecord{}, err
	}
	if cache == nil {
		cache = make(map[shogi.Packed256]Eval)
	}

	evals := make([]Eval, 0, len(g.History))
	pos := g.Start()
	for i, r := range g.History {
		if err := ctx.Err(); err != nil {
			return GameRecord{}, err
		}
		pos.Apply(r.Move)
		key, packErr := pos.Pack()
		if packErr == nil {
			if cached, ok := cache[key]; ok {
				evals = append(evals, cached)
				continue
			}
		}
		e, err := eval.Evaluate(ctx, pos)
		if err != nil {
			return GameRecord{}, fmt.Errorf("move %d: %w", i+1, err)
		}
		evals = append(evals, e)
		if packErr == nil && i < cachedPlies {
			cache[key] = e
		}
	}

	rec := FromGame(filepath.Base(path), kif.Players.SenteName, kif.Players.GoteName, g, evals, kif.WinReason)
	if kif.Result != ResultUnknown && rec.Result == ResultAbort {
		rec.Result = kif.Result
	}
	return rec, nil
}
