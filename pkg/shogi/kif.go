package shogi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

type KIFPlayers struct {
	SenteName   string
	SenteRating int32
	GoteName    string
	GoteRating  int32
}

// KIF is a parsed kifu: the initial position, the moves in order and the
// recorded outcome.
type KIF struct {
	Players   KIFPlayers
	Initial   *Position
	Moves     []Move
	Result    string
	WinReason string
	// FoulEnd is set when the game ended with 反則勝ち or 反則負け. The last
	// move is then the illegal one.
	FoulEnd bool
}

var moveLineRe = regexp.MustCompile(`^\s*(\d+)\s+(.+?)\s+\(`)
var terminalLineRe = regexp.MustCompile(`^\s*(\d+)\s+(.+?)\s*$`)
var fromSquareRe = regexp.MustCompile(`\((\d)(\d)\)`)
var nameRatingRe = regexp.MustCompile(`^(.+?)\((\d+)\)$`)

var rankKanji = [...]rune{'一', '二', '三', '四', '五', '六', '七', '八', '九'}

var kifNames = [...]string{
	King:   "玉",
	Rook:   "飛",
	Bishop: "角",
	Gold:   "金",
	Silver: "銀",
	Knight: "桂",
	Lance:  "香",
	Pawn:   "歩",
}

var kifPromotedNames = [...]string{
	Rook:   "龍",
	Bishop: "馬",
	Silver: "成銀",
	Knight: "成桂",
	Lance:  "成香",
	Pawn:   "と",
}

// LoadKIF reads a UTF-8 or Shift-JIS KIF file.
func LoadKIF(path string) (*KIF, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseKIF(data)
}

func ReadKIF(r io.Reader) (*KIF, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseKIF(data)
}

func ParseKIF(data []byte) (*KIF, error) {
	text, err := decodeKIF(data)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], "\r")
	}
	initial, err := initialPositionFromKIF(lines)
	if err != nil {
		return nil, err
	}
	moves, err := parseKIFMoves(lines, initial.turn)
	if err != nil {
		return nil, err
	}
	result, reason := parseResult(lines)
	return &KIF{
		Players:   playersFromKIF(lines),
		Initial:   initial,
		Moves:     moves,
		Result:    result,
		WinReason: reason,
		FoulEnd:   reason == "反則勝ち" || reason == "反則負け",
	}, nil
}

func decodeKIF(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(data) {
		return string(data), nil
	}
	reader := transform.NewReader(bytes.NewReader(data), japanese.ShiftJIS.NewDecoder())
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(decoded) {
		return "", errors.New("failed to decode Shift-JIS KIF")
	}
	return string(decoded), nil
}

// Game replays the moves through the rules engine. A foul final move is
// left out.
func (k *KIF) Game() (*Game, error) {
	g := NewGameFrom(k.Initial)
	moves := k.Moves
	if k.FoulEnd && len(moves) > 0 {
		moves = moves[:len(moves)-1]
	}
	for i, m := range moves {
		if _, err := g.Play(m); err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}
	}
	return g, nil
}

// PositionAt returns the position after ply moves.
func (k *KIF) PositionAt(ply int) (*Position, error) {
	if ply < 0 || ply > len(k.Moves) {
		return nil, fmt.Errorf("move out of range: %d", ply)
	}
	pos := k.Initial.Clone()
	for i := 0; i < ply; i++ {
		if _, err := pos.ApplyPlayer(k.Moves[i]); err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}
	}
	return pos, nil
}

func parseKIFMoves(lines []string, turn Color) ([]Move, error) {
	var moves []Move
	var prev *Square
	for i, line := range lines {
		match := moveLineRe.FindStringSubmatch(line)
		if len(match) == 0 {
			continue
		}
		token := strings.TrimSpace(match[2])
		if token == "" {
			continue
		}
		if isTerminalMove(token) {
			break
		}
		m, err := parseKIFMoveToken(token, prev, turn)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		moves = append(moves, m)
		to := m.To
		prev = &to
		turn = turn.Opponent()
	}
	return moves, nil
}

// parseKIFMoveToken reads "７六歩(77)", "同　歩(23)", "２二角成(88)" or
// "５五角打". Promotion markers are accepted and dropped since promotion
// follows from the squares.
func parseKIFMoveToken(token string, prev *Square, turn Color) (Move, error) {
	work := strings.TrimSpace(token)
	var to Square
	if strings.HasPrefix(work, "同") {
		if prev == nil {
			return Move{}, errors.New("same-square move without previous destination")
		}
		to = *prev
		work = strings.TrimLeft(strings.TrimPrefix(work, "同"), " 　")
	} else {
		runes := []rune(work)
		if len(runes) < 2 {
			return Move{}, fmt.Errorf("invalid move token: %s", token)
		}
		file, ok := parseFileRune(runes[0])
		if !ok {
			return Move{}, fmt.Errorf("invalid destination file in %s", token)
		}
		rank, ok := parseRankRune(runes[1])
		if !ok {
			return Move{}, fmt.Errorf("invalid destination rank in %s", token)
		}
		to = Square{Row: rank - 1, Col: 9 - file}
		work = string(runes[2:])
	}

	from, hasFrom := parseFromSquare(work)
	work = fromSquareRe.ReplaceAllString(work, "")
	work = strings.Replace(work, "不成", "", 1)
	drop := strings.Contains(work, "打")

	t, promoted, err := parseKIFPiece(work)
	if err != nil {
		return Move{}, err
	}
	if drop {
		if promoted || t == King {
			return Move{}, fmt.Errorf("cannot drop %s", token)
		}
		return NewDrop(t, turn, to), nil
	}
	if !hasFrom {
		return Move{}, fmt.Errorf("missing source square in %s", token)
	}
	return NewMove(from, to), nil
}

func parseKIFPiece(text string) (PieceType, bool, error) {
	clean := strings.TrimSpace(text)
	for t, name := range kifPromotedNames {
		if name != "" && strings.HasPrefix(clean, name) {
			return PieceType(t), true, nil
		}
	}
	if strings.HasPrefix(clean, "竜") {
		return Rook, true, nil
	}
	if strings.HasPrefix(clean, "王") {
		return King, false, nil
	}
	for t, name := range kifNames {
		if strings.HasPrefix(clean, name) {
			return PieceType(t), false, nil
		}
	}
	return King, false, fmt.Errorf("unknown piece in %s", text)
}

func isTerminalMove(token string) bool {
	switch token {
	case "投了", "中断", "持将棋", "千日手", "詰み", "切れ負け", "反則勝ち", "反則負け", "入玉勝ち", "勝ち宣言":
		return true
	default:
		return false
	}
}

func parseFromSquare(text string) (Square, bool) {
	match := fromSquareRe.FindStringSubmatch(text)
	if len(match) != 3 {
		return Square{}, false
	}
	file := int(match[1][0] - '0')
	rank := int(match[2][0] - '0')
	if file < 1 || file > 9 || rank < 1 || rank > 9 {
		return Square{}, false
	}
	return Square{Row: rank - 1, Col: 9 - file}, true
}

func parseFileRune(r rune) (int, bool) {
	if r >= '1' && r <= '9' {
		return int(r - '0'), true
	}
	if r >= '１' && r <= '９' {
		return int(r-'１') + 1, true
	}
	return 0, false
}

func parseRankRune(r rune) (int, bool) {
	for i, k := range rankKanji {
		if r == k {
			return i + 1, true
		}
	}
	return 0, false
}

func playersFromKIF(lines []string) KIFPlayers {
	var p KIFPlayers
	p.SenteName, p.SenteRating = parseNameRating(headerValue(lines, "先手"))
	p.GoteName, p.GoteRating = parseNameRating(headerValue(lines, "後手"))
	return p
}

func headerValue(lines []string, key string) string {
	prefixes := []string{key + "：", key + ":"}
	for _, line := range lines {
		trim := strings.TrimSpace(line)
		for _, prefix := range prefixes {
			if strings.HasPrefix(trim, prefix) {
				return strings.TrimSpace(strings.TrimPrefix(trim, prefix))
			}
		}
	}
	return ""
}

func parseNameRating(raw string) (string, int32) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", 0
	}
	match := nameRatingRe.FindStringSubmatch(raw)
	if len(match) == 3 {
		var rating int32
		_, _ = fmt.Sscanf(match[2], "%d", &rating)
		return strings.TrimSpace(match[1]), rating
	}
	return raw, 0
}

func parseResult(lines []string) (string, string) {
	terminal, ply := findTerminalMove(lines)
	if terminal == "" {
		return "unknown", ""
	}
	switch terminal {
	case "中断":
		return "abort", terminal
	case "持将棋", "千日手":
		return "draw", terminal
	case "反則勝ち", "入玉勝ち", "勝ち宣言":
		return winnerFromPly(ply), terminal
	case "詰み", "投了", "切れ負け", "反則負け":
		return winnerFromPly(ply + 1), terminal
	default:
		return "unknown", terminal
	}
}

// findTerminalMove returns the terminal token and the ply it is recorded
// on. The side to move on that ply is the one the token refers to.
func findTerminalMove(lines []string) (string, int) {
	ply := 0
	for _, line := range lines {
		match := moveLineRe.FindStringSubmatch(line)
		if len(match) == 0 {
			match = terminalLineRe.FindStringSubmatch(line)
		}
		if len(match) == 0 {
			continue
		}
		token := strings.TrimSpace(match[2])
		if token == "" {
			continue
		}
		ply++
		if isTerminalMove(token) {
			return token, ply
		}
	}
	return "", 0
}

func winnerFromPly(ply int) string {
	if ply%2 == 1 {
		return "sente_win"
	}
	return "gote_win"
}

// CollectKIF lists the .kif files under root in lexical order.
func CollectKIF(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".kif") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func initialPositionFromKIF(lines []string) (*Position, error) {
	for _, line := range lines {
		trim := strings.TrimSpace(line)
		if strings.HasPrefix(trim, "手合割") && strings.Contains(trim, "平手") {
			return StartGame(), nil
		}
	}
	boardLines := collectBoardLines(lines)
	if len(boardLines) == 0 {
		// Files without a header or diagram start from the standard layout.
		return StartGame(), nil
	}
	if len(boardLines) != 9 {
		return nil, fmt.Errorf("board lines must be 9 rows, got %d", len(boardLines))
	}
	pos := NewPosition()
	for row, line := range boardLines {
		if err := parseBoardRow(line, row, pos); err != nil {
			return nil, fmt.Errorf("row %d: %w", row+1, err)
		}
	}
	pos.turn = parseTurn(lines)
	if err := parseHands(lines, pos); err != nil {
		return nil, err
	}
	return pos, nil
}

// collectBoardLines returns the cell text of diagram rows such as
// "|v香v桂 ・ ・|一".
func collectBoardLines(lines []string) []string {
	var board []string
	for _, line := range lines {
		trim := strings.TrimSpace(line)
		if !strings.HasPrefix(trim, "|") {
			continue
		}
		end := strings.LastIndex(trim, "|")
		if end <= 0 {
			continue
		}
		board = append(board, trim[1:end])
	}
	return board
}

func parseBoardRow(cells string, row int, pos *Position) error {
	runes := []rune(cells)
	col := 0
	for i := 0; i < len(runes); {
		r := runes[i]
		if r == ' ' || r == '\t' || r == '　' {
			i++
			continue
		}
		if col > 8 {
			return errors.New("more than 9 cells")
		}
		if r == '・' {
			col++
			i++
			continue
		}
		owner := Sente
		if r == 'v' {
			owner = Gote
			i++
			if i >= len(runes) {
				return errors.New("dangling gote marker")
			}
		}
		t, promoted, n, err := parseBoardPiece(runes[i:])
		if err != nil {
			return err
		}
		pos.board[row][col] = &Piece{Type: t, Owner: owner, Promoted: promoted}
		col++
		i += n
	}
	if col != 9 {
		return fmt.Errorf("expected 9 cells, got %d", col)
	}
	return nil
}

func parseBoardPiece(runes []rune) (PieceType, bool, int, error) {
	switch runes[0] {
	case 'と':
		return Pawn, true, 1, nil
	case '馬':
		return Bishop, true, 1, nil
	case '龍', '竜':
		return Rook, true, 1, nil
	case '全':
		return Silver, true, 1, nil
	case '圭':
		return Knight, true, 1, nil
	case '杏':
		return Lance, true, 1, nil
	case '成':
		if len(runes) < 2 {
			return King, false, 0, errors.New("missing promoted piece")
		}
		t, ok := basePiece(runes[1])
		if !ok || !t.Promotable() || t == Rook || t == Bishop {
			return King, false, 0, fmt.Errorf("unknown promoted piece %c", runes[1])
		}
		return t, true, 2, nil
	default:
		t, ok := basePiece(runes[0])
		if !ok {
			return King, false, 0, fmt.Errorf("unknown piece %c", runes[0])
		}
		return t, false, 1, nil
	}
}

func basePiece(r rune) (PieceType, bool) {
	if r == '王' {
		return King, true
	}
	for t, name := range kifNames {
		if string(r) == name {
			return PieceType(t), true
		}
	}
	return King, false
}

func parseTurn(lines []string) Color {
	for _, line := range lines {
		trim := strings.TrimSpace(line)
		if strings.HasPrefix(trim, "後手番") {
			return Gote
		}
		if strings.HasPrefix(trim, "手番") && strings.Contains(trim, "後手") {
			return Gote
		}
	}
	return Sente
}

func parseHands(lines []string, pos *Position) error {
	for _, line := range lines {
		trim := strings.TrimSpace(line)
		var owner Color
		switch {
		case strings.HasPrefix(trim, "先手の持駒"):
			owner = Sente
		case strings.HasPrefix(trim, "後手の持駒"):
			owner = Gote
		default:
			continue
		}
		if err := parseHandLine(trim, owner, pos); err != nil {
			return err
		}
	}
	return nil
}

// parseHandLine reads "先手の持駒：飛　角　歩十二".
func parseHandLine(line string, owner Color, pos *Position) error {
	parts := strings.SplitN(line, "：", 2)
	if len(parts) != 2 {
		parts = strings.SplitN(line, ":", 2)
	}
	if len(parts) != 2 {
		return fmt.Errorf("invalid hand line: %s", line)
	}
	text := strings.TrimSpace(parts[1])
	if text == "なし" || text == "" {
		return nil
	}
	for _, field := range strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == '　'
	}) {
		runes := []rune(field)
		t, ok := basePiece(runes[0])
		if !ok || t == King {
			return fmt.Errorf("unknown hand piece %c", runes[0])
		}
		count := 1
		if len(runes) > 1 {
			n, ok := parseKanjiCount(runes[1:])
			if !ok {
				return fmt.Errorf("invalid hand count %s", field)
			}
			count = n
		}
		for ; count > 0; count-- {
			pos.hands[owner] = append(pos.hands[owner], t)
		}
	}
	return nil
}

// parseKanjiCount reads counts from 一 up to 十八, or ASCII digits.
func parseKanjiCount(runes []rune) (int, bool) {
	if runes[0] >= '0' && runes[0] <= '9' {
		n := 0
		for _, r := range runes {
			if r < '0' || r > '9' {
				return 0, false
			}
			n = n*10 + int(r-'0')
		}
		return n, true
	}
	n := 0
	if runes[0] == '十' {
		n = 10
		runes = runes[1:]
	}
	switch len(runes) {
	case 0:
		return n, n > 0
	case 1:
		d, ok := parseRankRune(runes[0])
		return n + d, ok
	default:
		return 0, false
	}
}

func kanjiCount(n int) string {
	var b strings.Builder
	if n >= 10 {
		b.WriteRune('十')
		n -= 10
	}
	if n > 0 {
		b.WriteRune(rankKanji[n-1])
	}
	return b.String()
}

type KIFOptions struct {
	Sente    string
	Gote     string
	Started  time.Time
	ShiftJIS bool
	// Terminal is written after the last move, e.g. "投了" or "中断". When
	// empty a mated final position is recorded as 詰み.
	Terminal string
}

// WriteKIF writes g as a KIF record, encoded as Shift-JIS when requested.
func WriteKIF(w io.Writer, g *Game, opts KIFOptions) error {
	var b strings.Builder
	b.WriteString("# ---- koma kifu file ----\n")
	if !opts.Started.IsZero() {
		fmt.Fprintf(&b, "開始日時：%s\n", opts.Started.Format("2006/01/02 15:04:05"))
	}
	start := g.Start()
	if start.Equal(StartGame()) {
		b.WriteString("手合割：平手\n")
	} else {
		writeKIFDiagram(&b, start)
	}
	fmt.Fprintf(&b, "先手：%s\n", opts.Sente)
	fmt.Fprintf(&b, "後手：%s\n", opts.Gote)
	b.WriteString("手数----指手---------消費時間--\n")

	var prev *Square
	for i, r := range g.History {
		fmt.Fprintf(&b, "%4d %s   ( 0:00/00:00:00)\n", i+1, kifMoveText(r, prev))
		to := r.To()
		prev = &to
	}
	terminal := opts.Terminal
	if terminal == "" && g.Status().State == Checkmate {
		terminal = "詰み"
	}
	if terminal != "" {
		fmt.Fprintf(&b, "%4d %s\n", len(g.History)+1, terminal)
	}

	if !opts.ShiftJIS {
		_, err := io.WriteString(w, b.String())
		return err
	}
	enc := transform.NewWriter(w, japanese.ShiftJIS.NewEncoder())
	if _, err := io.WriteString(enc, b.String()); err != nil {
		return err
	}
	return enc.Close()
}

func kifMoveText(r MoveRecord, prev *Square) string {
	var b strings.Builder
	to := r.To()
	if prev != nil && *prev == to {
		b.WriteString("同　")
	} else {
		b.WriteRune('１' + rune(to.File()-1))
		b.WriteRune(rankKanji[to.Row])
	}
	if r.WasPromoted {
		b.WriteString(kifPromotedNames[r.Piece])
	} else {
		b.WriteString(kifNames[r.Piece])
	}
	if r.Move.IsDrop() {
		b.WriteString("打")
		return b.String()
	}
	if r.Promoted {
		b.WriteString("成")
	}
	from := r.From()
	fmt.Fprintf(&b, "(%d%d)", from.File(), from.Row+1)
	return b.String()
}

func writeKIFDiagram(b *strings.Builder, p *Position) {
	writeKIFHand(b, "後手の持駒", p, Gote)
	b.WriteString("  ９ ８ ７ ６ ５ ４ ３ ２ １\n")
	b.WriteString("+---------------------------+\n")
	for row := 0; row < 9; row++ {
		b.WriteByte('|')
		for col := 0; col < 9; col++ {
			piece := p.board[row][col]
			if piece == nil {
				b.WriteString(" ・")
				continue
			}
			if piece.Owner == Gote {
				b.WriteByte('v')
			} else {
				b.WriteByte(' ')
			}
			b.WriteString(kifBoardName(*piece))
		}
		b.WriteByte('|')
		b.WriteRune(rankKanji[row])
		b.WriteByte('\n')
	}
	b.WriteString("+---------------------------+\n")
	writeKIFHand(b, "先手の持駒", p, Sente)
	if p.turn == Gote {
		b.WriteString("後手番\n")
	}
}

// kifBoardName is the one-rune diagram name. Promoted silver, knight and
// lance use their single-rune forms 全, 圭 and 杏.
func kifBoardName(piece Piece) string {
	if !piece.Promoted {
		return kifNames[piece.Type]
	}
	switch piece.Type {
	case Silver:
		return "全"
	case Knight:
		return "圭"
	case Lance:
		return "杏"
	default:
		return kifPromotedNames[piece.Type]
	}
}

func writeKIFHand(b *strings.Builder, label string, p *Position, c Color) {
	var parts []string
	for _, t := range HandTypes {
		n := p.HandCount(c, t)
		if n == 0 {
			continue
		}
		part := kifNames[t]
		if n > 1 {
			part += kanjiCount(n)
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		fmt.Fprintf(b, "%s：なし\n", label)
		return
	}
	fmt.Fprintf(b, "%s：%s\n", label, strings.Join(parts, "　"))
}
