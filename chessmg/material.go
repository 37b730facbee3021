package chessmg

import "math/bits"

const darkSquares uint64 = 0xAA55AA55AA55AA55

// HasInsufficientMaterial reports whether neither side can possibly deliver
// checkmate: bare kings, a single minor piece against a bare king, or only
// bishops that all travel on the same square color. Any pawn, rook or queen
// on the board keeps mate possible.
func (b *Board) HasInsufficientMaterial() bool {
	if b.pawns[0]|b.pawns[1]|b.rooks[0]|b.rooks[1]|b.queens[0]|b.queens[1] != 0 {
		return false
	}

	knights := b.knights[0] | b.knights[1]
	bishops := b.bishops[0] | b.bishops[1]
	minors := bits.OnesCount64(knights | bishops)

	if minors <= 1 {
		return true
	}
	if knights != 0 {
		// Two knights cannot force mate but can mate a cooperating king, so
		// the draw is not automatic; any knight beside other minors stays
		// sufficient.
		return false
	}
	// Bishops only: a draw when they all stand on one square color.
	return bishops&darkSquares == 0 || bishops&^darkSquares == 0
}
