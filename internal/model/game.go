package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/gofiber/websocket/v2"

	"koma/internal/ws"
	"koma/pkg/shogi"
)

var (
	ErrNotYourTurn = errors.New("not the human side to move")
	ErrNotAITurn   = errors.New("not the computer side to move")
)

// HumanSide names which colors are played through the API. The computer
// plays the rest.
type HumanSide string

const (
	HumanSente HumanSide = "sente"
	HumanGote  HumanSide = "gote"
	HumanBoth  HumanSide = "both"
	HumanNone  HumanSide = "none"
)

func ParseHumanSide(s string) (HumanSide, error) {
	switch HumanSide(s) {
	case "":
		return HumanSente, nil
	case HumanSente, HumanGote, HumanBoth, HumanNone:
		return HumanSide(s), nil
	default:
		return "", fmt.Errorf("unknown human side %q", s)
	}
}

func (h HumanSide) Plays(c shogi.Color) bool {
	switch h {
	case HumanBoth:
		return true
	case HumanSente:
		return c == shogi.Sente
	case HumanGote:
		return c == shogi.Gote
	default:
		return false
	}
}

// Game is one server-side session. A human move and the computer's reply
// are played under a single hold of mu.
type Game struct {
	ID    string
	Human HumanSide

	mu     sync.Mutex
	game   *shogi.Game
	ai     shogi.Strategy
	aiName string

	connMu      sync.Mutex
	connections map[*websocket.Conn]struct{}
}

func NewGame(id string, human HumanSide, ai shogi.Strategy, logger *log.Logger) *Game {
	g := shogi.NewGame()
	g.Logger = logger
	return &Game{
		ID:          id,
		Human:       human,
		game:        g,
		ai:          ai,
		aiName:      fmt.Sprint(ai),
		connections: make(map[*websocket.Conn]struct{}),
	}
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state()
}

func (g *Game) state() GameState {
	return buildState(g.ID, g.Human, g.aiName, g.game)
}

// LegalMoves lists the legal destinations of the piece on sq.
func (g *Game) LegalMoves(sq shogi.Square) ([]SquareView, error) {
	if !sq.OnBoard() {
		return nil, &shogi.IllegalMoveError{From: sq, To: sq, Reason: shogi.ReasonOffBoard}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	views := []SquareView{}
	for _, to := range g.game.Position.LegalMovesFrom(sq) {
		views = append(views, NewSquareView(to))
	}
	return views, nil
}

// LegalDrops lists the squares where the side to move may drop t.
func (g *Game) LegalDrops(t shogi.PieceType) []SquareView {
	g.mu.Lock()
	defer g.mu.Unlock()
	pos := g.game.Position
	views := []SquareView{}
	for row := 0; row < 9; row++ {
		for col := 0; col < 9; col++ {
			sq := shogi.Square{Row: row, Col: col}
			if pos.IsLegalDrop(t, pos.Turn(), sq) {
				views = append(views, NewSquareView(sq))
			}
		}
	}
	return views
}

// CheckDrop reports why dropping t on sq is illegal for the side to move,
// or nil.
func (g *Game) CheckDrop(t shogi.PieceType, sq shogi.Square) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	pos := g.game.Position
	return pos.DropError(t, pos.Turn(), sq)
}

// Move plays a human relocation and lets the computer answer.
func (g *Game) Move(from, to shogi.Square) (GameState, error) {
	return g.playHuman(shogi.NewMove(from, to))
}

// Drop plays a human drop and lets the computer answer.
func (g *Game) Drop(t shogi.PieceType, to shogi.Square) (GameState, error) {
	return g.playHuman(shogi.NewDrop(t, shogi.Sente, to))
}

func (g *Game) playHuman(m shogi.Move) (GameState, error) {
	g.mu.Lock()
	if status := g.game.Status(); status.Over() {
		g.mu.Unlock()
		return GameState{}, fmt.Errorf("%w: %s", shogi.ErrGameOver, status)
	}
	turn := g.game.Position.Turn()
	if !g.Human.Plays(turn) {
		g.mu.Unlock()
		return GameState{}, ErrNotYourTurn
	}
	if m.IsDrop() {
		m.Owner = turn
	}
	if _, err := g.game.Play(m); err != nil {
		g.mu.Unlock()
		return GameState{}, err
	}
	var aiErr error
	if !g.game.Status().Over() && !g.Human.Plays(g.game.Position.Turn()) {
		_, aiErr = g.game.PlayAI(g.ai)
	}
	st := g.state()
	g.mu.Unlock()

	g.broadcastState(st)
	return st, aiErr
}

// PlayAI lets the computer move when it is its turn.
func (g *Game) PlayAI() (GameState, error) {
	g.mu.Lock()
	if g.Human.Plays(g.game.Position.Turn()) {
		g.mu.Unlock()
		return GameState{}, ErrNotAITurn
	}
	if _, err := g.game.PlayAI(g.ai); err != nil {
		g.mu.Unlock()
		return GameState{}, err
	}
	st := g.state()
	g.mu.Unlock()

	g.broadcastState(st)
	return st, nil
}

// WriteKIF exports the game so far.
func (g *Game) WriteKIF(w io.Writer, shiftJIS bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	sente, gote := "human", g.aiName
	switch g.Human {
	case HumanGote:
		sente, gote = g.aiName, "human"
	case HumanBoth:
		gote = "human"
	case HumanNone:
		sente = g.aiName
	}
	return shogi.WriteKIF(w, g.game, shogi.KIFOptions{Sente: sente, Gote: gote, ShiftJIS: shiftJIS})
}

func (g *Game) RegisterConnection(conn *websocket.Conn) {
	g.connMu.Lock()
	g.connections[conn] = struct{}{}
	g.connMu.Unlock()
	g.broadcastState(g.GetState())
}

func (g *Game) UnregisterConnection(conn *websocket.Conn) {
	g.connMu.Lock()
	defer g.connMu.Unlock()
	delete(g.connections, conn)
}

// Send writes one message to conn. Writes to a connection are serialized
// with broadcasts.
func (g *Game) Send(conn *websocket.Conn, msg ws.Message) error {
	g.connMu.Lock()
	defer g.connMu.Unlock()
	return conn.WriteJSON(msg)
}

func (g *Game) broadcastState(st GameState) {
	payload, err := json.Marshal(st)
	if err != nil {
		log.Printf("game %s: marshal state: %v", g.ID, err)
		return
	}
	msg := ws.Message{Type: ws.MessageTypeGameState, Payload: payload}

	g.connMu.Lock()
	defer g.connMu.Unlock()
	for conn := range g.connections {
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("game %s: send state: %v", g.ID, err)
			delete(g.connections, conn)
		}
	}
}
