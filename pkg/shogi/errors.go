package shogi

import (
	"errors"
	"fmt"
)

var (
	ErrIllegalMove  = errors.New("illegal move")
	ErrIllegalDrop  = errors.New("illegal drop")
	ErrMissingKing  = errors.New("missing king")
	ErrNoLegalMoves = errors.New("no legal moves")
	ErrGameOver     = errors.New("game over")
)

// Reasons reported by IllegalMoveError and IllegalDropError.
const (
	ReasonNoPiece      = "no piece on origin square"
	ReasonNotYourTurn  = "not the side to move"
	ReasonUnreachable  = "destination not reachable"
	ReasonSelfCheck    = "leaves king in check"
	ReasonNotInHand    = "piece not in hand"
	ReasonOccupied     = "destination occupied"
	ReasonNifu         = "two unpromoted pawns on one file"
	ReasonDeadPiece    = "piece could never move again"
	ReasonDropPawnMate = "pawn drop gives checkmate"
	ReasonOffBoard     = "square off the board"
	ReasonKingDrop     = "kings cannot be dropped"
)

type IllegalMoveError struct {
	From   Square
	To     Square
	Reason string
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move %s-%s: %s", e.From, e.To, e.Reason)
}

func (e *IllegalMoveError) Unwrap() error {
	return ErrIllegalMove
}

type IllegalDropError struct {
	Piece  PieceType
	Owner  Color
	To     Square
	Reason string
}

func (e *IllegalDropError) Error() string {
	return fmt.Sprintf("illegal drop of %s %s at %s: %s", e.Owner, e.Piece, e.To, e.Reason)
}

func (e *IllegalDropError) Unwrap() error {
	return ErrIllegalDrop
}

// MissingKingError marks a position in which Color has no king; that side
// has lost.
type MissingKingError struct {
	Color Color
}

func (e *MissingKingError) Error() string {
	return fmt.Sprintf("%s has no king", e.Color)
}

func (e *MissingKingError) Unwrap() error {
	return ErrMissingKing
}
