package chessmg

import (
	"fmt"
	"math/bits"
)

// MoveState holds the minimal state needed to undo a move.
type MoveState struct {
	move          Move
	captured      Piece
	prevCastling  CastlingRights
	prevEnPassant Square
	prevHalfmove  int
	prevFullmove  int
	prevZobrist   uint64
	rookFrom      Square // for castling undo
	rookTo        Square // for castling undo
}

// Move returns the move this state undoes.
func (st MoveState) Move() Move { return st.move }

// NullState stores the minimal information needed to undo a null move.
type NullState struct {
	prevEnPassant Square
	prevHalfmove  int
	prevFullmove  int
	prevZobrist   uint64
	prevSide      Color
}

// castleMaskBySquare maps a square to the castling rights that die when a
// piece moves from or to it. Covers king moves, rook moves, and rook captures
// on the home squares in one lookup.
var castleMaskBySquare = func() (m [64]CastlingRights) {
	m[0] = CastleWhiteQueenside
	m[7] = CastleWhiteKingside
	m[4] = CastleWhiteKingside | CastleWhiteQueenside
	m[56] = CastleBlackQueenside
	m[63] = CastleBlackKingside
	m[60] = CastleBlackKingside | CastleBlackQueenside
	return m
}()

// MakeMove applies a move to the board. It returns ok=false, restoring the
// original position, if the move would leave the mover's king in check; the
// side to move, clocks, rights and Zobrist key are updated otherwise. The
// move must have been produced for this position (by the generator or one of
// the notation parsers); MakeMove does not re-derive its fields.
func (b *Board) MakeMove(m Move) (ok bool, st MoveState) {
	st.move = m
	st.prevCastling = b.castlingRights
	st.prevEnPassant = b.enPassantSquare
	st.prevHalfmove = b.halfmoveClock
	st.prevFullmove = b.fullmoveNumber
	st.prevZobrist = b.zobristKey
	st.rookFrom, st.rookTo = NoSquare, NoSquare
	st.captured = NoPiece

	from := m.From()
	to := m.To()
	moved := m.MovedPiece()
	promo := m.PromotionPiece()
	flag := m.Flags()
	mover := b.sideToMove

	if b.enPassantSquare != NoSquare {
		b.zobristKey ^= zobristEnPassant[b.enPassantSquare.File()]
	}
	b.enPassantSquare = NoSquare

	// Capture first, then relocate the mover.
	if flag == FlagEnPassant {
		capSq := to - 8
		if mover == Black {
			capSq = to + 8
		}
		st.captured = b.removePiece(capSq)
	} else if m.CapturedPiece() != NoPiece {
		st.captured = b.removePiece(to)
	}

	b.removePiece(from)
	if promo != NoPiece {
		b.addPiece(to, promo)
	} else {
		b.addPiece(to, moved)
	}

	if flag == FlagCastle {
		st.rookFrom, st.rookTo = castleRookSquares(to)
		rook := b.removePiece(st.rookFrom)
		b.addPiece(st.rookTo, rook)
	}

	if mask := castleMaskBySquare[from] | castleMaskBySquare[to]; b.castlingRights&mask != 0 {
		newCR := b.castlingRights &^ mask
		b.zobristKey ^= zobristCastle[b.castlingRights]
		b.zobristKey ^= zobristCastle[newCR]
		b.castlingRights = newCR
	}

	if flag == FlagDoublePush {
		ep := (from + to) / 2
		b.enPassantSquare = ep
		b.zobristKey ^= zobristEnPassant[ep.File()]
	}

	// Side toggles before the legality check so Unmake can rely on it.
	b.sideToMove = mover.Other()
	b.zobristKey ^= zobristSide

	kingBB := b.kings[int(mover)]
	if kingBB == 0 {
		b.UnmakeMove(m, st)
		return false, st
	}
	ks := bits.TrailingZeros64(kingBB)
	if b.isSquareAttackedWithOcc(ks, mover.Other(), b.AllOccupancy()) {
		b.UnmakeMove(m, st)
		return false, st
	}

	if moved.Type() == PieceTypePawn || st.captured != NoPiece {
		b.halfmoveClock = 0
	} else {
		b.halfmoveClock++
	}
	if mover == Black {
		b.fullmoveNumber++
	}

	return true, st
}

// castleRookSquares returns the rook's origin and destination for a castle
// identified by the king's destination square.
func castleRookSquares(kingTo Square) (rookFrom, rookTo Square) {
	switch kingTo {
	case 6: // g1
		return 7, 5
	case 2: // c1
		return 0, 3
	case 62: // g8
		return 63, 61
	case 58: // c8
		return 56, 59
	}
	return NoSquare, NoSquare
}

// UnmakeMove undoes a previously made move, restoring board state exactly,
// including the Zobrist key.
func (b *Board) UnmakeMove(m Move, st MoveState) {
	b.sideToMove = b.sideToMove.Other()

	from := m.From()
	to := m.To()
	moved := m.MovedPiece()
	flag := m.Flags()

	if flag == FlagCastle && st.rookFrom != NoSquare {
		rook := b.removePiece(st.rookTo)
		b.addPiece(st.rookFrom, rook)
	}

	// Pull the mover (or the promoted piece) off 'to' and put the original
	// piece back on 'from'.
	b.removePiece(to)
	b.addPiece(from, moved)

	if st.captured != NoPiece {
		if flag == FlagEnPassant {
			capSq := to - 8
			if moved.Color() == Black {
				capSq = to + 8
			}
			b.addPiece(capSq, st.captured)
		} else {
			b.addPiece(to, st.captured)
		}
	}

	b.castlingRights = st.prevCastling
	b.enPassantSquare = st.prevEnPassant
	b.halfmoveClock = st.prevHalfmove
	b.fullmoveNumber = st.prevFullmove

	// The placement helpers restored the piece hashes; overwrite to make the
	// restoration exact regardless of the path taken.
	b.zobristKey = st.prevZobrist
}

// Apply is the validating form of MakeMove. It accepts only moves that are
// legal in the current position and fails with ErrIllegalMove otherwise,
// which also catches stale moves generated for a different position. The
// board is unchanged on failure.
func (b *Board) Apply(m Move) (MoveState, error) {
	var buf [64]Move
	legal := false
	for _, lm := range b.GenerateMovesInto(buf[:0]) {
		if lm == m {
			legal = true
			break
		}
	}
	if !legal {
		return MoveState{}, fmt.Errorf("%w: %s is not legal in this position", ErrIllegalMove, m)
	}
	ok, st := b.MakeMove(m)
	if !ok {
		// Unreachable after the membership check; kept as a hard guard.
		return MoveState{}, fmt.Errorf("%w: %s leaves the king in check", ErrIllegalMove, m)
	}
	return st, nil
}

// PushMove makes a move and appends its undo state to the caller's stack.
// Returns false, leaving both board and stack unchanged, if the move is
// rejected by MakeMove.
func (b *Board) PushMove(m Move, stack *[]MoveState) bool {
	ok, st := b.MakeMove(m)
	if !ok {
		return false
	}
	*stack = append(*stack, st)
	return true
}

// PopMove undoes the most recent pushed move. Returns false if the stack is
// empty.
func (b *Board) PopMove(stack *[]MoveState) bool {
	n := len(*stack)
	if n == 0 {
		return false
	}
	st := (*stack)[n-1]
	*stack = (*stack)[:n-1]
	b.UnmakeMove(st.move, st)
	return true
}

// MakeNullMove switches the side to move without moving a piece, clearing the
// en-passant square and advancing the clocks as a quiet halfmove. Used by
// search layers for null-move pruning.
func (b *Board) MakeNullMove() (st NullState) {
	st.prevEnPassant = b.enPassantSquare
	st.prevHalfmove = b.halfmoveClock
	st.prevFullmove = b.fullmoveNumber
	st.prevZobrist = b.zobristKey
	st.prevSide = b.sideToMove

	if b.enPassantSquare != NoSquare {
		b.zobristKey ^= zobristEnPassant[b.enPassantSquare.File()]
	}
	b.enPassantSquare = NoSquare
	b.halfmoveClock++
	b.sideToMove = b.sideToMove.Other()
	b.zobristKey ^= zobristSide
	if st.prevSide == Black {
		b.fullmoveNumber++
	}
	return st
}

// UnmakeNullMove restores the board to the state prior to MakeNullMove.
func (b *Board) UnmakeNullMove(st NullState) {
	b.enPassantSquare = st.prevEnPassant
	b.halfmoveClock = st.prevHalfmove
	b.fullmoveNumber = st.prevFullmove
	b.sideToMove = st.prevSide
	b.zobristKey = st.prevZobrist
}
