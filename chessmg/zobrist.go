package chessmg

import "math/rand"

// Zobrist key tables. The key covers placement, side to move, castling rights
// and the en-passant file, and deliberately excludes the move clocks, so equal
// keys identify positions that repeat for the threefold rule.
var zobristPiece [15][64]uint64
var zobristCastle [16]uint64
var zobristEnPassant [8]uint64
var zobristSide uint64

func init() {
	// Fixed seed keeps keys stable across runs, so hashes are reproducible
	// in tests.
	rnd := rand.New(rand.NewSource(0x5EED))
	for p := 0; p < 15; p++ {
		for sq := 0; sq < 64; sq++ {
			zobristPiece[p][sq] = rnd.Uint64()
		}
	}
	for cr := 0; cr < 16; cr++ {
		zobristCastle[cr] = rnd.Uint64()
	}
	for f := 0; f < 8; f++ {
		zobristEnPassant[f] = rnd.Uint64()
	}
	zobristSide = rnd.Uint64()
}

// computeZobrist derives the key from scratch. Move making maintains the key
// incrementally; this is the reference for Validate and construction.
func (b *Board) computeZobrist() uint64 {
	var key uint64
	for sq := 0; sq < 64; sq++ {
		if p := b.pieces[sq]; p != NoPiece {
			key ^= zobristPiece[p][sq]
		}
	}
	if b.sideToMove == Black {
		key ^= zobristSide
	}
	key ^= zobristCastle[int(b.castlingRights)]
	if b.enPassantSquare != NoSquare {
		key ^= zobristEnPassant[b.enPassantSquare.File()]
	}
	return key
}
