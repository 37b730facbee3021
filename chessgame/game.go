package chessgame

import (
	"fmt"

	"chess-core/chessmg"
)

// Status is the game's termination state. Draw statuses are applied
// automatically as soon as the condition holds.
type Status int

const (
	InProgress Status = iota
	Checkmate
	Stalemate
	DrawByRepetition
	DrawByFiftyMove
	DrawByInsufficientMaterial
)

func (s Status) String() string {
	switch s {
	case InProgress:
		return "in progress"
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case DrawByRepetition:
		return "draw by threefold repetition"
	case DrawByFiftyMove:
		return "draw by fifty-move rule"
	case DrawByInsufficientMaterial:
		return "draw by insufficient material"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// IsTerminal reports whether the status ends the game.
func (s Status) IsTerminal() bool { return s != InProgress }

type historyEntry struct {
	move  chessmg.Move
	state chessmg.MoveState
	key   uint64 // position key after the move, for the repetition tally
}

// Game owns a position plus everything the position alone cannot answer:
// the move history, the repetition tally and the termination status. A Game
// is single-owner; it performs no internal locking.
type Game struct {
	board   *chessmg.Board
	history []historyEntry

	// Occurrence count per position key, the starting position included.
	// Keys cover placement, side, rights and en-passant file, so positions
	// that differ only in clocks repeat each other.
	repetitions map[uint64]int

	startFEN string
	status   Status
	tags     map[string]string
}

// NewGame starts a game from the standard initial position.
func NewGame() *Game {
	g, err := NewGameFromFEN(chessmg.FENStartPos)
	if err != nil {
		panic("chessgame: initial position rejected: " + err.Error())
	}
	return g
}

// NewGameFromFEN starts a game from an arbitrary position. The FEN is
// validated by chessmg.ParseFEN and its errors propagate unchanged.
func NewGameFromFEN(fen string) (*Game, error) {
	b, err := chessmg.ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	g := &Game{
		board:       b,
		repetitions: map[uint64]int{b.Hash(): 1},
		startFEN:    b.ToFEN(),
		tags:        make(map[string]string),
	}
	g.evaluateStatus()
	return g, nil
}

// Board returns a copy of the current position. Mutating the copy does not
// affect the game.
func (g *Game) Board() *chessmg.Board { return g.board.Copy() }

// Status returns the current termination state.
func (g *Game) Status() Status { return g.status }

// Ply returns the number of halfmoves played.
func (g *Game) Ply() int { return len(g.history) }

// Moves returns the moves played so far, in order.
func (g *Game) Moves() []chessmg.Move {
	out := make([]chessmg.Move, len(g.history))
	for i, e := range g.history {
		out[i] = e.move
	}
	return out
}

// FEN returns the current position in FEN.
func (g *Game) FEN() string { return g.board.ToFEN() }

// StartFEN returns the game's starting position in FEN.
func (g *Game) StartFEN() string { return g.startFEN }

// SetTag sets a PGN tag. Setting any tag makes EncodePGN emit the full
// Seven Tag Roster.
func (g *Game) SetTag(name, value string) { g.tags[name] = value }

// Tag returns a PGN tag value, or "" when unset.
func (g *Game) Tag(name string) string { return g.tags[name] }

// PlayMove plays a legal move. It fails with ErrGameOver once the game has
// ended and with chessmg.ErrIllegalMove for moves that are not legal in the
// current position; the game is unchanged on failure.
func (g *Game) PlayMove(m chessmg.Move) error {
	if g.status.IsTerminal() {
		return fmt.Errorf("%w (%s)", ErrGameOver, g.status)
	}
	st, err := g.board.Apply(m)
	if err != nil {
		return err
	}
	key := g.board.Hash()
	g.history = append(g.history, historyEntry{move: m, state: st, key: key})
	g.repetitions[key]++
	g.evaluateStatus()
	return nil
}

// PlaySAN plays a move given in standard algebraic notation.
func (g *Game) PlaySAN(token string) error {
	if g.status.IsTerminal() {
		return fmt.Errorf("%w (%s)", ErrGameOver, g.status)
	}
	m, err := g.board.ParseSAN(token)
	if err != nil {
		return err
	}
	return g.PlayMove(m)
}

// Undo takes back the last move. A finished game becomes in-progress again
// when the takeback removes the terminal condition. Fails with
// ErrNothingToUndo at the starting position.
func (g *Game) Undo() error {
	n := len(g.history)
	if n == 0 {
		return ErrNothingToUndo
	}
	e := g.history[n-1]
	g.history = g.history[:n-1]
	if g.repetitions[e.key]--; g.repetitions[e.key] == 0 {
		delete(g.repetitions, e.key)
	}
	g.board.UnmakeMove(e.move, e.state)
	g.evaluateStatus()
	return nil
}

// evaluateStatus recomputes the termination state. Mate and stalemate are
// checked first since a position with no legal moves ends the game whatever
// the clocks say; the draw conditions follow in fixed order.
func (g *Game) evaluateStatus() {
	b := g.board
	if !b.HasLegalMoves() {
		if b.InCheck(b.SideToMove()) {
			g.status = Checkmate
		} else {
			g.status = Stalemate
		}
		return
	}
	switch {
	case b.FiftyMoveRuleReached():
		g.status = DrawByFiftyMove
	case g.repetitions[b.Hash()] >= 3:
		g.status = DrawByRepetition
	case b.HasInsufficientMaterial():
		g.status = DrawByInsufficientMaterial
	default:
		g.status = InProgress
	}
}

// Result returns the PGN result marker for the game: "1-0", "0-1",
// "1/2-1/2" or "*" while in progress.
func (g *Game) Result() string {
	switch g.status {
	case Checkmate:
		// The side to move is the one mated.
		if g.board.SideToMove() == chessmg.White {
			return "0-1"
		}
		return "1-0"
	case Stalemate, DrawByRepetition, DrawByFiftyMove, DrawByInsufficientMaterial:
		return "1/2-1/2"
	}
	return "*"
}
