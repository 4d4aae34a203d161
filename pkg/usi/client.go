package usi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"koma/pkg/shogi"
)

// ErrResign is returned when the engine answers "bestmove resign".
var ErrResign = errors.New("engine resigned")

// Engine is the write side of a USI engine: an external process or any
// pipe pair.
type Engine struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.Reader
	stderr io.Reader

	mu     sync.Mutex
	closed bool
}

// Start launches an external USI engine process.
func Start(ctx context.Context, path string, args ...string) (*Engine, error) {
	if path == "" {
		return nil, errors.New("engine path is required")
	}
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = filepath.Dir(path)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &Engine{cmd: cmd, stdin: stdin, stdout: stdout, stderr: stderr}, nil
}

// Connect wraps an engine reachable through w (its input) and r (its
// output), such as an in-process Server.
func Connect(w io.WriteCloser, r io.Reader) *Engine {
	return &Engine{stdin: w, stdout: r}
}

func (e *Engine) Stderr() io.Reader {
	return e.stderr
}

// Send writes a single command line.
func (e *Engine) Send(line string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return errors.New("engine is closed")
	}
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	_, err := io.WriteString(e.stdin, line)
	return err
}

// Close sends quit and waits for a process engine to exit.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()

	_ = e.Send("quit")
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	if e.cmd == nil {
		return e.stdin.Close()
	}
	done := make(chan error, 1)
	go func() { done <- e.cmd.Wait() }()
	select {
	case err := <-done:
		return err
	case <-time.After(3 * time.Second):
		_ = e.cmd.Process.Kill()
		return errors.New("engine did not exit in time")
	}
}

// Session pumps an engine's output into an event channel.
type Session struct {
	engine *Engine
	events chan Event
	errCh  chan error
}

// StartSession launches an external engine process.
func StartSession(ctx context.Context, path string, args ...string) (*Session, error) {
	engine, err := Start(ctx, path, args...)
	if err != nil {
		return nil, err
	}
	return NewSession(engine), nil
}

func NewSession(engine *Engine) *Session {
	events := make(chan Event, 64)
	errCh := make(chan error, 1)
	go func() {
		defer close(events)
		errCh <- readEvents(engine.stdout, events)
	}()
	return &Session{engine: engine, events: events, errCh: errCh}
}

func (s *Session) Close() error {
	if s == nil || s.engine == nil {
		return nil
	}
	return s.engine.Close()
}

// Handshake runs usi/usiok and isready/readyok and returns the id lines.
func (s *Session) Handshake(ctx context.Context) (map[string]string, error) {
	if err := s.engine.Send("usi"); err != nil {
		return nil, err
	}
	ids := map[string]string{}
	for {
		event, err := s.nextEvent(ctx)
		if err != nil {
			return nil, err
		}
		if event.Type == EventID {
			ids[event.Key] = event.Value
		}
		if event.Type == EventUSIOK {
			break
		}
	}
	if err := s.engine.Send("isready"); err != nil {
		return nil, err
	}
	_, err := s.waitForEvent(ctx, EventReadyOK)
	return ids, err
}

// SetOption sends "setoption name <name> value <value>".
func (s *Session) SetOption(name, value string) error {
	return s.engine.Send(fmt.Sprintf("setoption name %s value %s", name, value))
}

func (s *Session) NewGame() error {
	return s.engine.Send("usinewgame")
}

// Result is the engine's answer to one go command.
type Result struct {
	Move     string
	Score    Score
	HasScore bool
	Nodes    int64
}

// Go searches sfen to depth and returns the best move with the last
// reported score. The score is from sente's side.
func (s *Session) Go(ctx context.Context, sfen string, depth int) (Result, error) {
	if err := s.engine.Send("position sfen " + sfen); err != nil {
		return Result{}, err
	}
	if err := s.engine.Send(fmt.Sprintf("go depth %d", depth)); err != nil {
		return Result{}, err
	}
	gote := false
	if fields := strings.Fields(sfen); len(fields) >= 2 {
		gote = fields[1] == "w"
	}

	var result Result
	for {
		event, err := s.nextEvent(ctx)
		if err != nil {
			return Result{}, err
		}
		switch event.Type {
		case EventInfo:
			if event.Info.HasScore {
				result.Score = event.Info.Score
				result.HasScore = true
			}
			if event.Info.Nodes > 0 {
				result.Nodes = event.Info.Nodes
			}
		case EventBestMove:
			result.Move = event.Move
			if gote {
				result.Score.Value = -result.Score.Value
			}
			return result, nil
		}
	}
}

func (s *Session) waitForEvent(ctx context.Context, want EventType) (Event, error) {
	for {
		event, err := s.nextEvent(ctx)
		if err != nil {
			return Event{}, err
		}
		if event.Type == want {
			return event, nil
		}
	}
}

func (s *Session) nextEvent(ctx context.Context) (Event, error) {
	select {
	case <-ctx.Done():
		return Event{}, ctx.Err()
	case event, ok := <-s.events:
		if ok {
			return event, nil
		}
	}
	// events is closed only after the reader reported why it stopped.
	select {
	case err := <-s.errCh:
		if err != io.EOF {
			return Event{}, err
		}
	default:
	}
	return Event{}, errors.New("engine stdout closed")
}

// Player is a shogi.Strategy backed by a USI engine session.
type Player struct {
	Session *Session
	Depth   int
	Timeout time.Duration
	Last    Result
}

func (p *Player) ChooseMove(pos *shogi.Position, player shogi.Color) (shogi.Move, error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	probe := pos.Clone()
	probe.SetTurn(player)
	result, err := p.Session.Go(ctx, probe.SFEN(1), p.Depth)
	if err != nil {
		return shogi.Move{}, err
	}
	p.Last = result
	if result.Move == "resign" {
		return shogi.Move{}, ErrResign
	}
	m, err := shogi.ParseUSIMove(result.Move, player)
	if err != nil {
		return shogi.Move{}, fmt.Errorf("engine move %q: %w", result.Move, err)
	}
	return m, nil
}

func (p *Player) String() string {
	return fmt.Sprintf("usi(depth=%d)", p.Depth)
}
