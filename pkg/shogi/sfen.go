package shogi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const StartSFEN = "lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1"

// ParseSFEN reads board, side to move and hands. The move number field is
// optional and ignored.
func ParseSFEN(sfen string) (*Position, error) {
	fields := strings.Fields(sfen)
	if len(fields) < 3 {
		return nil, fmt.Errorf("invalid sfen: %s", sfen)
	}
	pos := NewPosition()
	switch fields[1] {
	case "b":
		pos.turn = Sente
	case "w":
		pos.turn = Gote
	default:
		return nil, fmt.Errorf("invalid side to move: %s", fields[1])
	}
	if err := parseBoardSFEN(fields[0], pos); err != nil {
		return nil, err
	}
	if err := parseHandsSFEN(fields[2], pos); err != nil {
		return nil, err
	}
	return pos, nil
}

func parseBoardSFEN(board string, pos *Position) error {
	ranks := strings.Split(board, "/")
	if len(ranks) != 9 {
		return fmt.Errorf("invalid board ranks: %d", len(ranks))
	}
	for row, rankText := range ranks {
		col := 0
		for i := 0; i < len(rankText); i++ {
			r := rankText[i]
			if r >= '1' && r <= '9' {
				col += int(r - '0')
				continue
			}
			promoted := false
			if r == '+' {
				promoted = true
				i++
				if i >= len(rankText) {
					return errors.New("dangling promotion marker")
				}
				r = rankText[i]
			}
			owner := Sente
			if r >= 'a' && r <= 'z' {
				owner = Gote
			}
			t, ok := pieceTypeFromLetter(r)
			if !ok {
				return fmt.Errorf("unknown sfen piece %c", r)
			}
			if promoted && !t.Promotable() {
				return fmt.Errorf("%s cannot be promoted", t)
			}
			if col > 8 {
				return errors.New("too many files in rank")
			}
			pos.board[row][col] = &Piece{Type: t, Owner: owner, Promoted: promoted}
			col++
		}
		if col != 9 {
			return fmt.Errorf("rank %d does not have 9 files", row+1)
		}
	}
	return nil
}

func parseHandsSFEN(hand string, pos *Position) error {
	if hand == "-" {
		return nil
	}
	count := 0
	for i := 0; i < len(hand); i++ {
		r := hand[i]
		if r >= '0' && r <= '9' {
			count = count*10 + int(r-'0')
			continue
		}
		if count == 0 {
			count = 1
		}
		owner := Sente
		if r >= 'a' && r <= 'z' {
			owner = Gote
		}
		t, ok := pieceTypeFromLetter(r)
		if !ok || t == King {
			return fmt.Errorf("unknown hand piece %c", r)
		}
		for ; count > 0; count-- {
			pos.hands[owner] = append(pos.hands[owner], t)
		}
	}
	if count != 0 {
		return errors.New("trailing hand count")
	}
	return nil
}

// SFEN formats the position with the given move number.
func (p *Position) SFEN(moveNumber int) string {
	rows := make([]string, 0, 9)
	for row := 0; row < 9; row++ {
		rows = append(rows, p.rowSFEN(row))
	}
	turn := "b"
	if p.turn == Gote {
		turn = "w"
	}
	return fmt.Sprintf("%s %s %s %d", strings.Join(rows, "/"), turn, p.handsSFEN(), moveNumber)
}

func (p *Position) rowSFEN(row int) string {
	var b strings.Builder
	empty := 0
	for col := 0; col < 9; col++ {
		piece := p.board[row][col]
		if piece == nil {
			empty++
			continue
		}
		if empty > 0 {
			b.WriteString(strconv.Itoa(empty))
			empty = 0
		}
		b.WriteString(pieceSFEN(*piece))
	}
	if empty > 0 {
		b.WriteString(strconv.Itoa(empty))
	}
	return b.String()
}

func pieceSFEN(piece Piece) string {
	text := string(piece.Type.Letter())
	if piece.Owner == Gote {
		text = strings.ToLower(text)
	}
	if piece.Promoted {
		text = "+" + text
	}
	return text
}

// handsSFEN lists sente's hand then gote's, rook first, "-" when both are
// empty.
func (p *Position) handsSFEN() string {
	var b strings.Builder
	for _, c := range []Color{Sente, Gote} {
		for _, t := range HandTypes {
			n := p.HandCount(c, t)
			if n == 0 {
				continue
			}
			if n > 1 {
				b.WriteString(strconv.Itoa(n))
			}
			letter := string(t.Letter())
			if c == Gote {
				letter = strings.ToLower(letter)
			}
			b.WriteString(letter)
		}
	}
	if b.Len() == 0 {
		return "-"
	}
	return b.String()
}
