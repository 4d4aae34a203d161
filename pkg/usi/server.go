package usi

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"

	"koma/pkg/shogi"
)

const maxDepth = 8

// Server answers USI commands on behalf of the koma engine.
type Server struct {
	Name   string
	Author string
	Logger *log.Logger

	cfg shogi.Config
	pos *shogi.Position

	out      io.Writer
	mu       sync.Mutex
	done     chan struct{}
	searches sync.WaitGroup
}

func NewServer(cfg shogi.Config, out io.Writer) *Server {
	done := make(chan struct{})
	close(done)
	return &Server{
		Name:   "koma",
		Author: "koma authors",
		cfg:    cfg,
		pos:    shogi.StartGame(),
		out:    out,
		done:   done,
	}
}

// Run reads commands from in until quit, EOF or ctx is done. A search in
// progress is allowed to finish.
func (s *Server) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()
	defer s.wait()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			quit, err := s.Handle(line)
			if err != nil {
				s.println("info string " + err.Error())
				s.logf("%q: %v", line, err)
			}
			if quit {
				return nil
			}
		}
	}
}

// wait blocks until the last bestmove has been written.
func (s *Server) wait() {
	s.searches.Wait()
}

func (s *Server) logf(format string, args ...interface{}) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}

func (s *Server) println(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, line)
}

// Handle processes one command line and reports whether it was quit.
func (s *Server) Handle(line string) (bool, error) {
	c, ok := splitCommand(line)
	if !ok {
		return false, nil
	}
	switch c.name {
	case "quit":
		s.wait()
		return true, nil
	case "stop":
		s.wait()
		return false, nil
	}

	select {
	case <-s.done:
	default:
		return false, errors.New("search still running")
	}

	switch c.name {
	case "usi":
		s.println("id name " + s.Name)
		s.println("id author " + s.Author)
		s.println(fmt.Sprintf("option name Depth type spin default %d min 0 max %d", s.cfg.Depth, maxDepth))
		s.println("option name Strategy type combo default " + s.cfg.Strategy + " var alphabeta var random var heuristic")
		s.println("usiok")
	case "isready":
		s.println("readyok")
	case "usinewgame":
		s.pos = shogi.StartGame()
	case "setoption":
		return false, s.setOption(c)
	case "position":
		pos, err := parsePosition(c.args)
		if err != nil {
			return false, err
		}
		s.pos = pos
	case "go":
		return false, s.goCommand(c)
	case "gameover":
	default:
		return false, fmt.Errorf("unknown command %q", c.name)
	}
	return false, nil
}

// setOption handles "setoption name <Name> value <Value>".
func (s *Server) setOption(c command) error {
	if len(c.args) < 4 || c.args[0] != "name" || c.args[2] != "value" {
		return errors.New("invalid setoption arguments")
	}
	name, value := c.args[1], c.rest(3)
	switch strings.ToLower(name) {
	case "depth":
		v, err := parseDepth(value)
		if err != nil {
			return err
		}
		s.cfg.Depth = v
	case "strategy":
		if _, err := shogi.NewStrategy(value, s.cfg.Depth, s.cfg.Seed); err != nil {
			return err
		}
		s.cfg.Strategy = value
	default:
		return fmt.Errorf("unhandled option %q", name)
	}
	return nil
}

// parseDepth accepts the same 0..8 range the Depth option advertises.
func parseDepth(value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > maxDepth {
		return 0, errors.New("argument out of range")
	}
	return v, nil
}

// parsePosition reads "startpos [moves ...]" or "sfen <board> <turn>
// <hands> [n] [moves ...]", validating every move.
func parsePosition(args []string) (*shogi.Position, error) {
	if len(args) == 0 {
		return nil, errors.New("missing position arguments")
	}
	movesIndex := len(args)
	for i, a := range args {
		if a == "moves" {
			movesIndex = i
			break
		}
	}
	var pos *shogi.Position
	switch args[0] {
	case "startpos":
		pos = shogi.StartGame()
	case "sfen":
		var err error
		pos, err = shogi.ParseSFEN(strings.Join(args[1:movesIndex], " "))
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown position command %q", args[0])
	}
	if movesIndex+1 >= len(args) {
		return pos, nil
	}
	for _, text := range args[movesIndex+1:] {
		m, err := shogi.ParseUSIMove(text, pos.Turn())
		if err != nil {
			return nil, err
		}
		if _, err := pos.ApplyPlayer(m); err != nil {
			return nil, fmt.Errorf("move %s: %w", text, err)
		}
	}
	return pos, nil
}

// goCommand searches in the background and prints bestmove when done.
func (s *Server) goCommand(c command) error {
	depth := s.cfg.Depth
	if raw, ok := c.value("depth"); ok {
		v, err := parseDepth(raw)
		if err != nil {
			return err
		}
		depth = v
	}
	strategy, err := shogi.NewStrategy(s.cfg.Strategy, depth, s.cfg.Seed)
	if err != nil {
		return err
	}
	pos := s.pos.Clone()
	done := make(chan struct{})
	s.done = done
	s.searches.Add(1)
	go func() {
		defer s.searches.Done()
		line := s.search(pos, strategy, depth)
		// The next command may arrive as soon as bestmove is read.
		close(done)
		s.println(line)
	}()
	return nil
}

func (s *Server) search(pos *shogi.Position, strategy shogi.Strategy, depth int) string {
	m, err := strategy.ChooseMove(pos, pos.Turn())
	if err != nil {
		s.logf("no move: %v", err)
		return "bestmove resign"
	}
	if ab, ok := strategy.(*shogi.AlphaBeta); ok && depth > 0 {
		r := ab.Last
		s.println(fmt.Sprintf("info depth %d nodes %d time %d score %s pv %s",
			r.Depth, r.Nodes, r.Elapsed.Milliseconds(), formatScore(r.Score), pos.USI(m)))
	}
	return "bestmove " + pos.USI(m)
}

func formatScore(score int) string {
	switch {
	case score >= shogi.ValueMate:
		return "mate +"
	case score <= -shogi.ValueMate:
		return "mate -"
	default:
		return fmt.Sprintf("cp %d", score)
	}
}
