package main

import (
	"context"
	"errors"
	"log"
	"os"

	"koma/pkg/record"
	"koma/pkg/shogi"
	"koma/pkg/usi"
)

func playGame(ctx context.Context, cfg config, playerA, playerB shogi.Strategy, info gameInfo) (gameResult, error) {
	sente, gote := playerA, playerB
	senteName, goteName := playerName(cfg.playerA, cfg.depthA), playerName(cfg.playerB, cfg.depthB)
	if !info.aIsSente {
		sente, gote = gote, sente
		senteName, goteName = goteName, senteName
	}

	g := shogi.NewGame()
	if cfg.verbose {
		g.Logger = log.New(os.Stderr, "", log.LstdFlags|log.Lshortfile)
	}

	var evals []record.Eval
	var forfeit *shogi.Color
	var reason, terminal string
	for !g.Status().Over() {
		if len(g.History) >= cfg.maxPlies {
			reason, terminal = "max_plies", "中断"
			break
		}
		if err := ctx.Err(); err != nil {
			return gameResult{}, err
		}
		mover := g.Position.Turn()
		s := sente
		if mover == shogi.Gote {
			s = gote
		}
		_, err := g.PlayAI(s)
		switch {
		case errors.Is(err, usi.ErrResign):
			loser := mover
			forfeit, reason, terminal = &loser, "resign", "投了"
		case errors.Is(err, shogi.ErrIllegalMove), errors.Is(err, shogi.ErrIllegalDrop):
			loser := mover
			forfeit, reason, terminal = &loser, "illegal_move", "反則負け"
			log.Printf("game %d: %s forfeits: %v", info.gameNumber, mover, err)
		case err != nil:
			return gameResult{}, err
		}
		if forfeit != nil {
			break
		}
		evals = append(evals, lastEval(s, mover))
	}

	rec := record.FromGame(newGameID(), senteName, goteName, g, evals, reason)
	if forfeit != nil {
		rec.Result, rec.WinReason = record.ResultSenteWin, reason
		if *forfeit == shogi.Sente {
			rec.Result = record.ResultGoteWin
		}
	}
	return gameResult{info: info, game: g, record: rec, terminal: terminal}, nil
}

// lastEval reads the score behind the move s just chose for mover and turns
// it to sente's side. Strategies without a search report no score.
func lastEval(s shogi.Strategy, mover shogi.Color) record.Eval {
	sign := 1
	if mover == shogi.Gote {
		sign = -1
	}
	switch s := s.(type) {
	case *shogi.AlphaBeta:
		if s.Depth <= 0 {
			return record.Eval{}
		}
		e := record.Eval{Kind: "cp", Value: sign * s.Last.Score, Nodes: s.Last.Nodes, Pruned: s.Last.Pruned}
		switch {
		case s.Last.Score >= shogi.ValueMate:
			e.Kind, e.Value = "mate", sign
		case s.Last.Score <= -shogi.ValueMate:
			e.Kind, e.Value = "mate", -sign
		}
		return e
	case *usi.Player:
		if !s.Last.HasScore {
			return record.Eval{Nodes: s.Last.Nodes}
		}
		return record.Eval{Kind: s.Last.Score.Kind, Value: s.Last.Score.Value, Nodes: s.Last.Nodes}
	default:
		return record.Eval{}
	}
}
