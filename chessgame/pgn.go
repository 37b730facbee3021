package chessgame

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"chess-core/chessmg"
)

// Seven Tag Roster, in the order the export format mandates.
var sevenTagRoster = []string{"Event", "Site", "Date", "Round", "White", "Black", "Result"}

const pgnLineWidth = 80

// EncodePGN renders the game in PGN export format. The tag section is
// emitted when any tag is set or when the game starts from a non-initial
// position (which always gets SetUp and FEN tags); missing roster tags get
// the standard placeholders. An explicit Result tag wins over the computed
// outcome. Movetext is wrapped at 80 columns and ends with the result marker.
func (g *Game) EncodePGN() string {
	var sb strings.Builder

	customStart := g.startFEN != chessmg.FENStartPos
	if len(g.tags) > 0 || customStart {
		emitted := make(map[string]bool)
		for _, name := range sevenTagRoster {
			value := g.tags[name]
			if value == "" {
				switch name {
				case "Result":
					value = g.resultMarker()
				case "Date":
					value = "????.??.??"
				default:
					value = "?"
				}
			}
			writeTagPair(&sb, name, value)
			emitted[name] = true
		}
		if customStart {
			writeTagPair(&sb, "SetUp", "1")
			writeTagPair(&sb, "FEN", g.startFEN)
			emitted["SetUp"], emitted["FEN"] = true, true
		}
		extra := maps.Keys(g.tags)
		slices.Sort(extra)
		for _, name := range extra {
			if !emitted[name] {
				writeTagPair(&sb, name, g.tags[name])
			}
		}
		sb.WriteByte('\n')
	}

	words := append(g.movetextWords(), g.resultMarker())
	col := 0
	for i, w := range words {
		if i > 0 {
			if col+1+len(w) > pgnLineWidth {
				sb.WriteByte('\n')
				col = 0
			} else {
				sb.WriteByte(' ')
				col++
			}
		}
		sb.WriteString(w)
		col += len(w)
	}
	sb.WriteByte('\n')
	return sb.String()
}

// resultMarker prefers an explicit Result tag so games carrying an agreed
// outcome re-encode with it, falling back to the outcome the position
// dictates.
func (g *Game) resultMarker() string {
	if r := g.tags["Result"]; r != "" {
		return r
	}
	return g.Result()
}

func writeTagPair(sb *strings.Builder, name, value string) {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `"`, `\"`)
	fmt.Fprintf(sb, "[%s \"%s\"]\n", name, value)
}

// movetextWords replays the history from the starting position and renders
// each move in SAN with its move-number prefix.
func (g *Game) movetextWords() []string {
	b, err := chessmg.ParseFEN(g.startFEN)
	if err != nil {
		panic("chessgame: stored start position rejected: " + err.Error())
	}
	words := make([]string, 0, len(g.history)*3/2+1)
	for i, e := range g.history {
		if b.SideToMove() == chessmg.White {
			words = append(words, fmt.Sprintf("%d.", b.FullmoveNumber()))
		} else if i == 0 {
			words = append(words, fmt.Sprintf("%d...", b.FullmoveNumber()))
		}
		words = append(words, b.SANMove(e.move))
		if ok, _ := b.MakeMove(e.move); !ok {
			panic("chessgame: recorded move no longer applies")
		}
	}
	return words
}

var (
	tagPairPattern    = regexp.MustCompile(`^\[\s*(\w+)\s+"((?:[^"\\]|\\.)*)"\s*\]$`)
	moveNumberPattern = regexp.MustCompile(`^(\d+\.*)(.*)$`)

	errVariations = errors.New("variations are not supported")
)

func isResultToken(tok string) bool {
	return tok == "1-0" || tok == "0-1" || tok == "1/2-1/2" || tok == "*"
}

// DecodePGN parses one PGN game: an optional tag-pair section followed by
// movetext. Brace comments, rest-of-line comments and NAG annotations are
// skipped; variation parentheses are rejected. Each move token is replayed
// through PlaySAN, and the first token the position does not admit fails
// with a *MovetextError carrying the 0-based halfmove index. A result token
// ends the movetext; anything after it is ignored.
func DecodePGN(src string) (*Game, error) {
	tags := make(map[string]string)
	rest := src
	for rest != "" {
		line, remainder, _ := strings.Cut(rest, "\n")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			rest = remainder
			continue
		}
		parts := tagPairPattern.FindStringSubmatch(trimmed)
		if parts == nil {
			break
		}
		value := strings.ReplaceAll(parts[2], `\"`, `"`)
		value = strings.ReplaceAll(value, `\\`, `\`)
		tags[parts[1]] = value
		rest = remainder
	}

	var g *Game
	if fen, ok := tags["FEN"]; ok {
		var err error
		if g, err = NewGameFromFEN(fen); err != nil {
			return nil, err
		}
	} else {
		g = NewGame()
	}
	for name, value := range tags {
		g.SetTag(name, value)
	}

	halfmove := 0
	fail := func(tok string, err error) (*Game, error) {
		return nil, &MovetextError{Index: halfmove, Token: tok, Err: err}
	}

	i := 0
	for i < len(rest) {
		c := rest[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '{':
			end := strings.IndexByte(rest[i:], '}')
			if end < 0 {
				return fail("{", errors.New("unterminated brace comment"))
			}
			i += end + 1
		case c == ';':
			end := strings.IndexByte(rest[i:], '\n')
			if end < 0 {
				i = len(rest)
			} else {
				i += end + 1
			}
		case c == '(' || c == ')':
			return fail(string(c), errVariations)
		case c == '$':
			j := i + 1
			for j < len(rest) && rest[j] >= '0' && rest[j] <= '9' {
				j++
			}
			i = j
		default:
			j := i
			for j < len(rest) && !strings.ContainsRune(" \t\n\r{};()", rune(rest[j])) {
				j++
			}
			tok := rest[i:j]
			i = j

			if isResultToken(tok) {
				return g, nil
			}
			// Move numbers may stand alone ("12.") or be glued to the
			// move ("12.e4", "3...Nf6").
			if parts := moveNumberPattern.FindStringSubmatch(tok); parts != nil {
				tok = parts[2]
				if tok == "" {
					continue
				}
			}
			if err := g.PlaySAN(tok); err != nil {
				return fail(tok, err)
			}
			halfmove++
		}
	}
	return g, nil
}
