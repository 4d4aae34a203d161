package record

import (
	"path/filepath"
	"testing"
)

func TestSchemaMatchesGameRecord(t *testing.T) {
	schema, err := Schema()
	if err != nil {
		t.Fatal(err)
	}
	if schema.Name == "" || len(schema.Fields) == 0 {
		t.Fatalf("schema = %+v", schema)
	}
	if err := validateSchema(schema, GameRecord{}); err != nil {
		t.Fatal(err)
	}

	schema.Fields = schema.Fields[1:]
	if err := validateSchema(schema, GameRecord{}); err == nil {
		t.Fatal("expected mismatch after dropping a field")
	}
}

func TestParquetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.parquet")
	want := []GameRecord{
		{
			GameID: "g1", SenteName: "alphabeta(depth=2)", GoteName: "random",
			StartSFEN: "lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1",
			Result:    ResultSenteWin, WinReason: "checkmate", MoveCount: 2,
			MoveEvals: []MoveEval{
				{Ply: 1, Notation: "P7g-7f", USI: "7g7f", Material: 0, ScoreType: "cp", ScoreValue: 35, Nodes: 812, Pruned: 400},
				{Ply: 2, Notation: "P3c-3d", USI: "3c3d", Material: 0, ScoreType: "mate", ScoreValue: 1, Nodes: 90},
			},
		},
		{
			GameID: "g2", SenteName: "random", GoteName: "alphabeta(depth=2)",
			Result: ResultAbort, WinReason: "max_plies", MoveCount: 1,
			MoveEvals: []MoveEval{{Ply: 1, Notation: "P2g-2f", USI: "2g2f"}},
		},
	}

	records := make(chan GameRecord)
	go func() {
		defer close(records)
		for _, r := range want {
			records <- r
		}
	}()
	if err := WriteParquet(path, records, 1); err != nil {
		t.Fatal(err)
	}

	got, err := ReadParquet(path, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(want) {
		t.Fatalf("read %d records, want %d", len(got), len(want))
	}
	for i := range want {
		g, w := got[i], want[i]
		if g.GameID != w.GameID || g.Result != w.Result || g.WinReason != w.WinReason || g.MoveCount != w.MoveCount {
			t.Fatalf("record %d: got %+v", i, g)
		}
		if len(g.MoveEvals) != len(w.MoveEvals) {
			t.Fatalf("record %d: %d evals, want %d", i, len(g.MoveEvals), len(w.MoveEvals))
		}
		for j := range w.MoveEvals {
			if g.MoveEvals[j] != w.MoveEvals[j] {
				t.Fatalf("record %d ply %d: got %+v want %+v", i, j+1, g.MoveEvals[j], w.MoveEvals[j])
			}
		}
	}
}

func TestReadParquetMissingFile(t *testing.T) {
	if _, err := ReadParquet(filepath.Join(t.TempDir(), "missing.parquet"), 1); err == nil {
		t.Fatal("expected error")
	}
}
