package model

import (
	"errors"

	"koma/pkg/shogi"
)

// MoveRequest is a relocation sent by a client, either as squares or as a
// USI move string.
type MoveRequest struct {
	From *SquareView `json:"from"`
	To   *SquareView `json:"to"`
	USI  string      `json:"usi"`
}

type DropRequest struct {
	Piece string     `json:"piece"`
	To    SquareView `json:"to"`
}

// Apply plays the request on g. A USI drop such as "P*5e" is accepted too.
func (r MoveRequest) Apply(g *Game) (GameState, error) {
	if r.USI != "" {
		m, err := shogi.ParseUSIMove(r.USI, shogi.Sente)
		if err != nil {
			return GameState{}, err
		}
		if m.IsDrop() {
			return g.Drop(m.Piece, m.To)
		}
		return g.Move(m.From, m.To)
	}
	if r.From == nil || r.To == nil {
		return GameState{}, errors.New("move needs from and to squares or a usi move")
	}
	return g.Move(r.From.Square(), r.To.Square())
}

func (r DropRequest) Apply(g *Game) (GameState, error) {
	t, err := shogi.ParsePieceType(r.Piece)
	if err != nil {
		return GameState{}, err
	}
	return g.Drop(t, r.To.Square())
}
