package usi_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"koma/pkg/shogi"
	"koma/pkg/usi"
)

func TestServerScript(t *testing.T) {
	var out bytes.Buffer
	srv := usi.NewServer(shogi.DefaultConfig(), &out)
	script := strings.Join([]string{
		"usi",
		"isready",
		"setoption name Depth value 1",
		"usinewgame",
		"position startpos moves 7g7f 3c3d",
		"go",
		"quit",
	}, "\n")
	if err := srv.Run(context.Background(), strings.NewReader(script)); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	for _, want := range []string{"id name koma", "usiok", "readyok"} {
		if !contains(lines, want) {
			t.Fatalf("missing %q in output:\n%s", want, out.String())
		}
	}
	last := lines[len(lines)-1]
	if !strings.HasPrefix(last, "bestmove ") {
		t.Fatalf("last line %q", last)
	}
	pos := shogi.StartGame()
	for _, text := range []string{"7g7f", "3c3d", strings.TrimPrefix(last, "bestmove ")} {
		m, err := shogi.ParseUSIMove(text, pos.Turn())
		if err != nil {
			t.Fatal(err)
		}
		if _, err := pos.ApplyPlayer(m); err != nil {
			t.Fatalf("%s: %v", text, err)
		}
	}
}

func TestServerRejects(t *testing.T) {
	srv := usi.NewServer(shogi.DefaultConfig(), io.Discard)
	for _, line := range []string{
		"position startpos moves 7g7e",
		"position sfen bad b - 1",
		"position",
		"setoption name Depth value 12",
		"setoption name Strategy value minimax",
		"setoption name Hash value 16",
		"go depth -1",
		"go depth 9",
		"go depth deep",
		"frobnicate",
	} {
		if _, err := srv.Handle(line); err == nil {
			t.Fatalf("expected error for %q", line)
		}
	}
	quit, err := srv.Handle("quit")
	if err != nil || !quit {
		t.Fatalf("quit = %v %v", quit, err)
	}
}

func TestServerResignsWithoutMoves(t *testing.T) {
	var out bytes.Buffer
	srv := usi.NewServer(shogi.DefaultConfig(), &out)
	script := "position sfen 8k/7G1/7G1/9/9/9/9/9/4K4 w - 1\ngo depth 1\nquit\n"
	if err := srv.Run(context.Background(), strings.NewReader(script)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "bestmove resign") {
		t.Fatalf("output:\n%s", out.String())
	}
}

// connect runs a Server behind a pair of pipes and returns a client
// session talking to it.
func connect(t *testing.T) *usi.Session {
	t.Helper()
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	srv := usi.NewServer(shogi.DefaultConfig(), outW)
	go func() {
		err := srv.Run(context.Background(), inR)
		outW.CloseWithError(err)
	}()
	session := usi.NewSession(usi.Connect(inW, outR))
	t.Cleanup(func() { session.Close() })
	return session
}

func TestSessionAgainstServer(t *testing.T) {
	session := connect(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ids, err := session.Handshake(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ids["name"] != "koma" || ids["author"] == "" {
		t.Fatalf("ids = %v", ids)
	}
	if err := session.SetOption("Strategy", "alphabeta"); err != nil {
		t.Fatal(err)
	}
	if err := session.NewGame(); err != nil {
		t.Fatal(err)
	}

	result, err := session.Go(ctx, shogi.StartSFEN, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !result.HasScore || result.Score.Kind != "cp" || result.Nodes == 0 {
		t.Fatalf("result = %+v", result)
	}
	m, err := shogi.ParseUSIMove(result.Move, shogi.Sente)
	if err != nil {
		t.Fatal(err)
	}
	if !shogi.StartGame().IsLegalMove(m.From, m.To) {
		t.Fatalf("illegal best move %s", result.Move)
	}
}

func TestPlayerFindsMate(t *testing.T) {
	session := connect(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := session.Handshake(ctx); err != nil {
		t.Fatal(err)
	}

	pos, err := shogi.ParseSFEN("8k/9/7G1/9/9/R8/9/9/4K4 b - 1")
	if err != nil {
		t.Fatal(err)
	}
	player := &usi.Player{Session: session, Depth: 2}
	m, err := player.ChooseMove(pos, shogi.Sente)
	if err != nil {
		t.Fatal(err)
	}
	after := pos.Clone()
	if _, err := after.ApplyPlayer(m); err != nil {
		t.Fatal(err)
	}
	if !after.IsCheckmate(shogi.Gote) {
		t.Fatalf("%s does not mate", m)
	}
	if player.Last.Score.Kind != "mate" || player.Last.Score.Value <= 0 {
		t.Fatalf("score = %s", player.Last.Score)
	}

	mated, err := shogi.ParseSFEN("8k/7G1/7G1/9/9/9/9/9/4K4 w - 1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := player.ChooseMove(mated, shogi.Gote); !errors.Is(err, usi.ErrResign) {
		t.Fatalf("expected ErrResign, got %v", err)
	}
}

func contains(lines []string, want string) bool {
	for _, l := range lines {
		if l == want {
			return true
		}
	}
	return false
}
