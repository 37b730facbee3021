package chessmg

import "errors"

// Sentinel errors for the position engine. Callers match them with errors.Is.
var (
	// ErrMalformedFEN indicates a FEN string that is syntactically invalid.
	ErrMalformedFEN = errors.New("malformed FEN")

	// ErrInvalidPosition indicates a board that is semantically impossible,
	// e.g. a side with zero or two kings. Boards are rejected at construction;
	// if the move generator ever observes such a board it panics, since that
	// means an upstream bug corrupted the position.
	ErrInvalidPosition = errors.New("invalid position")

	// ErrIllegalMove indicates a move that is not legal for the board it was
	// applied to.
	ErrIllegalMove = errors.New("illegal move")

	// ErrAmbiguousNotation indicates an algebraic token matching more than one
	// legal move.
	ErrAmbiguousNotation = errors.New("ambiguous notation")

	// ErrUnknownNotation indicates an algebraic token matching no legal move.
	ErrUnknownNotation = errors.New("unknown notation")
)
