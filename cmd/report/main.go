package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"koma/pkg/record"
)

type matchup struct {
	sente string
	gote  string
}

type matchupStats struct {
	games     int
	senteWins int
	goteWins  int
	draws     int
	aborted   int
	plies     int
	nodes     int64
	pruned    int64
}

type stats struct {
	totalGames    int
	crossings     int
	wins          int
	excludedGames int
}

// main parses CLI flags and prints CSV summaries of a parquet game file.
func main() {
	inputPath := flag.String("input", "arena.parquet", "input parquet file")
	mode := flag.String("mode", "matchups", "matchups or thresholds")
	thresholdsArg := flag.String("thresholds", "300,1000", "comma-separated eval thresholds")
	source := flag.String("score", "eval", "score used for threshold crossings: eval or material")
	parallel := flag.Int64("parallel", 4, "parquet read parallelism")
	flag.Parse()

	records, err := record.ReadParquet(*inputPath, *parallel)
	if err != nil {
		fatal(err)
	}
	fmt.Fprintf(os.Stderr, "read %d games from %s\n", len(records), *inputPath)

	switch *mode {
	case "matchups":
		printMatchups(summarizeMatchups(records))
	case "thresholds":
		thresholds, err := parseIntList(*thresholdsArg)
		if err != nil {
			fatal(err)
		}
		if len(thresholds) == 0 {
			fatal(fmt.Errorf("thresholds must be non-empty"))
		}
		if *source != "eval" && *source != "material" {
			fatal(fmt.Errorf("unknown score source %q", *source))
		}
		printThresholds(thresholds, summarizeThresholds(records, thresholds, *source == "material"))
	default:
		fatal(fmt.Errorf("unknown mode %q", *mode))
	}
}

func summarizeMatchups(records []record.GameRecord) map[matchup]*matchupStats {
	results := map[matchup]*matchupStats{}
	for _, rec := range records {
		key := matchup{sente: rec.SenteName, gote: rec.GoteName}
		st, ok := results[key]
		if !ok {
			st = &matchupStats{}
			results[key] = st
		}
		st.games++
		st.plies += int(rec.MoveCount)
		switch rec.Result {
		case record.ResultSenteWin:
			st.senteWins++
		case record.ResultGoteWin:
			st.goteWins++
		case record.ResultDraw:
			st.draws++
		default:
			st.aborted++
		}
		for _, ev := range rec.MoveEvals {
			st.nodes += ev.Nodes
			st.pruned += ev.Pruned
		}
	}
	return results
}

func printMatchups(results map[matchup]*matchupStats) {
	keys := make([]matchup, 0, len(results))
	for key := range results {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].sente == keys[j].sente {
			return keys[i].gote < keys[j].gote
		}
		return keys[i].sente < keys[j].sente
	})
	fmt.Println("sente,gote,games,sente_wins,gote_wins,draws,aborted,avg_plies,nodes,pruning_rate")
	for _, key := range keys {
		st := results[key]
		avgPlies := 0.0
		if st.games > 0 {
			avgPlies = float64(st.plies) / float64(st.games)
		}
		pruningRate := 0.0
		if total := st.nodes + st.pruned; total > 0 {
			pruningRate = float64(st.pruned) / float64(total)
		}
		fmt.Printf("%s,%s,%d,%d,%d,%d,%d,%.2f,%d,%.6f\n",
			key.sente, key.gote,
			st.games, st.senteWins, st.goteWins, st.draws, st.aborted,
			avgPlies, st.nodes, pruningRate,
		)
	}
}

func summarizeThresholds(records []record.GameRecord, thresholds []int, material bool) map[int]*stats {
	results := make(map[int]*stats, len(thresholds))
	for _, threshold := range thresholds {
		results[threshold] = &stats{}
	}
	for _, rec := range records {
		resultSide := winnerSide(rec.Result)
		for _, threshold := range thresholds {
			st := results[threshold]
			st.totalGames++
			crossingSide := firstCrossingSide(rec.MoveEvals, threshold, material)
			if crossingSide == "none" || resultSide == "none" {
				st.excludedGames++
				continue
			}
			st.crossings++
			if crossingSide == resultSide {
				st.wins++
			}
		}
	}
	return results
}

func printThresholds(thresholds []int, results map[int]*stats) {
	fmt.Println("threshold,total_games,crossings,wins,win_rate,excluded")
	for _, threshold := range thresholds {
		st := results[threshold]
		winRate := 0.0
		if st.crossings > 0 {
			winRate = float64(st.wins) / float64(st.crossings)
		}
		fmt.Printf("%d,%d,%d,%d,%.6f,%d\n",
			threshold, st.totalGames, st.crossings, st.wins, winRate, st.excludedGames)
	}
}

// firstCrossingSide returns which side first crosses the threshold.
func firstCrossingSide(evals []record.MoveEval, threshold int, material bool) string {
	for _, eval := range evals {
		value := eval.ScoreValue
		if material {
			value = eval.Material
		} else if eval.ScoreType == "mate" {
			if eval.ScoreValue >= 0 {
				return "sente"
			}
			return "gote"
		} else if eval.ScoreType == "" {
			continue
		}
		if value >= int32(threshold) {
			return "sente"
		}
		if value <= -int32(threshold) {
			return "gote"
		}
	}
	return "none"
}

func winnerSide(result string) string {
	switch result {
	case record.ResultSenteWin:
		return "sente"
	case record.ResultGoteWin:
		return "gote"
	default:
		return "none"
	}
}

// parseIntList parses comma-separated integers with optional whitespace.
func parseIntList(raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	values := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		value, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
