// Package chessgame tracks a full game on top of the chessmg position
// engine: move history with undo, termination detection (mate, stalemate,
// fifty-move rule, threefold repetition, insufficient material) and PGN
// encoding and decoding.
package chessgame

import (
	"errors"
	"fmt"
)

// ErrGameOver is returned when a move is played into a finished game. The
// game stays queryable and Undo reopens it.
var ErrGameOver = errors.New("game is over")

// ErrNothingToUndo is returned by Undo at the starting position.
var ErrNothingToUndo = errors.New("nothing to undo")

// MovetextError reports a movetext token that could not be replayed. Index
// is the 0-based halfmove index of the offending token.
type MovetextError struct {
	Index int
	Token string
	Err   error
}

func (e *MovetextError) Error() string {
	return fmt.Sprintf("movetext halfmove %d (%q): %v", e.Index, e.Token, e.Err)
}

func (e *MovetextError) Unwrap() error { return e.Err }
