package chessmg

import "math/bits"

// Piece identifies a piece together with its owner.
type Piece uint8

const (
	NoPiece     Piece = 0
	WhitePawn   Piece = 1
	WhiteKnight Piece = 2
	WhiteBishop Piece = 3
	WhiteRook   Piece = 4
	WhiteQueen  Piece = 5
	WhiteKing   Piece = 6

	// Black pieces set bit 3, so that piece&7 is the type and piece&8 the side.
	BlackPawn   Piece = 1 | 8
	BlackKnight Piece = 2 | 8
	BlackBishop Piece = 3 | 8
	BlackRook   Piece = 4 | 8
	BlackQueen  Piece = 5 | 8
	BlackKing   Piece = 6 | 8
)

// PieceType is the colorless kind of a piece, used for table lookups.
type PieceType uint8

const (
	PieceTypeNone   PieceType = 0
	PieceTypePawn   PieceType = 1
	PieceTypeKnight PieceType = 2
	PieceTypeBishop PieceType = 3
	PieceTypeRook   PieceType = 4
	PieceTypeQueen  PieceType = 5
	PieceTypeKing   PieceType = 6
)

// Type returns the colorless kind of the piece.
func (p Piece) Type() PieceType { return PieceType(p & 7) }

// Color returns the side owning the piece. NoPiece reports White.
func (p Piece) Color() Color {
	if p&8 != 0 {
		return Black
	}
	return White
}

// PieceFromType combines a side and a colorless kind into a concrete Piece.
func PieceFromType(color Color, pt PieceType) Piece {
	if pt == PieceTypeNone {
		return NoPiece
	}
	p := Piece(pt)
	if color == Black {
		p |= 8
	}
	return p
}

// Color is the side of a piece or player.
type Color uint8

const (
	White Color = 0
	Black Color = 1
)

// Other returns the opposing side.
func (c Color) Other() Color { return 1 - c }

// CastlingRights is a bitmask of the four castling permissions. A right is
// cleared permanently once the relevant king or rook moves or is captured.
type CastlingRights uint8

const (
	CastleWhiteKingside CastlingRights = 1 << iota
	CastleWhiteQueenside
	CastleBlackKingside
	CastleBlackQueenside
)

// Square indexes a board cell, a1=0 .. h8=63. NoSquare is the off-board
// sentinel and never a valid Square.
type Square int

const NoSquare Square = -1

// File returns the square's file, 0 for the a-file.
func (sq Square) File() int { return int(sq) % 8 }

// Rank returns the square's rank, 0 for rank 1.
func (sq Square) Rank() int { return int(sq) / 8 }

// String renders the square in coordinate form ("e4"). NoSquare renders "-".
func (sq Square) String() string {
	if sq == NoSquare {
		return "-"
	}
	return string([]byte{'a' + byte(sq.File()), '1' + byte(sq.Rank())})
}

// SquareFromString parses a coordinate square ("e4"). Returns NoSquare for
// anything else.
func SquareFromString(s string) Square {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return NoSquare
	}
	return Square(int(s[0]-'a') + int(s[1]-'1')*8)
}

// Bitboards exposes the per-piece bitboards for one side.
type Bitboards struct {
	Pawns   uint64
	Knights uint64
	Bishops uint64
	Rooks   uint64
	Queens  uint64
	Kings   uint64
	All     uint64
}

// Board is the authoritative position state: piece placement, side to move,
// castling rights, en-passant target and the move clocks. It is a plain value
// with no hidden sharing; Copy gives an independent position for callers that
// explore branches in parallel.
type Board struct {
	// Per-type bitboards, indexed by color (0 White, 1 Black).
	pawns   [2]uint64
	knights [2]uint64
	bishops [2]uint64
	rooks   [2]uint64
	queens  [2]uint64
	kings   [2]uint64

	// Per-color occupancy; overall occupancy is the union of both.
	occupancy [2]uint64

	// Mailbox mirror of the bitboards for O(1) piece-at lookups.
	pieces [64]Piece

	sideToMove      Color
	castlingRights  CastlingRights
	enPassantSquare Square

	// Halfmoves since the last capture or pawn move (fifty-move rule).
	halfmoveClock int

	// Incremented after each Black move; starts at 1.
	fullmoveNumber int

	// Zobrist key over placement, side, rights and en-passant file. This is
	// the position identity used for repetition detection.
	zobristKey uint64
}

// NewBoard returns the standard initial position.
func NewBoard() *Board {
	b, err := ParseFEN(FENStartPos)
	if err != nil {
		panic("chessmg: initial position FEN failed to parse: " + err.Error())
	}
	return b
}

// Copy returns an independent copy of the board.
func (b *Board) Copy() *Board {
	nb := *b
	return &nb
}

// SideToMove reports which side is to play.
func (b *Board) SideToMove() Color { return b.sideToMove }

// CastlingRights returns the current castling permission mask.
func (b *Board) CastlingRights() CastlingRights { return b.castlingRights }

// EnPassantSquare returns the en-passant target square or NoSquare.
func (b *Board) EnPassantSquare() Square { return b.enPassantSquare }

// HalfmoveClock returns the fifty-move rule counter.
func (b *Board) HalfmoveClock() int { return b.halfmoveClock }

// FullmoveNumber returns the full move counter.
func (b *Board) FullmoveNumber() int { return b.fullmoveNumber }

// Hash returns the Zobrist key for the current position.
func (b *Board) Hash() uint64 { return b.zobristKey }

// PieceAt returns the piece on a square, or NoPiece.
func (b *Board) PieceAt(sq Square) Piece { return b.pieces[int(sq)] }

// AllOccupancy returns a bitboard of every occupied square.
func (b *Board) AllOccupancy() uint64 { return b.occupancy[0] | b.occupancy[1] }

// ColorOccupancy returns the occupancy bitboard for one side.
func (b *Board) ColorOccupancy(c Color) uint64 { return b.occupancy[int(c)] }

// Bitboards returns a copy of the per-piece bitboards for one side.
func (b *Board) Bitboards(c Color) Bitboards {
	i := int(c)
	return Bitboards{
		Pawns:   b.pawns[i],
		Knights: b.knights[i],
		Bishops: b.bishops[i],
		Rooks:   b.rooks[i],
		Queens:  b.queens[i],
		Kings:   b.kings[i],
		All:     b.occupancy[i],
	}
}

// KingSquare returns the square of the given side's king, or NoSquare if the
// board is malformed (construction rejects such boards).
func (b *Board) KingSquare(c Color) Square {
	kbb := b.kings[int(c)]
	if kbb == 0 {
		return NoSquare
	}
	return Square(bits.TrailingZeros64(kbb))
}

// HasLegalMoves reports whether the side to move has at least one legal move.
func (b *Board) HasLegalMoves() bool {
	var buf [64]Move
	return len(b.GenerateMovesInto(buf[:0])) > 0
}

// InCheckmate reports whether the side to move is checkmated.
func (b *Board) InCheckmate() bool {
	return b.InCheck(b.sideToMove) && !b.HasLegalMoves()
}

// InStalemate reports whether the side to move is stalemated.
func (b *Board) InStalemate() bool {
	return !b.InCheck(b.sideToMove) && !b.HasLegalMoves()
}

// FiftyMoveRuleReached reports whether the halfmove clock allows a fifty-move
// draw claim (the clock counts halfmoves, so the threshold is 100).
func (b *Board) FiftyMoveRuleReached() bool { return b.halfmoveClock >= 100 }

// ==========================
// Bitboard helpers
// ==========================

func bb(sq Square) uint64 { return 1 << uint64(sq) }

// popLSB removes and returns the least significant set bit index.
func popLSB(mask *uint64) int {
	idx := bits.TrailingZeros64(*mask)
	*mask &= *mask - 1
	return idx
}

// ==========================
// Placement mutation (internal; all external mutation goes through moves)
// ==========================

// addPiece places a piece on an empty square, keeping bitboards, occupancy and
// the Zobrist key in sync.
func (b *Board) addPiece(sq Square, p Piece) {
	if p == NoPiece {
		return
	}
	idx := int(sq)
	ci := int(p.Color())
	b.pieces[idx] = p
	b.occupancy[ci] |= bb(sq)
	b.typeBB(p.Type(), ci).set(sq)
	b.zobristKey ^= zobristPiece[p][idx]
}

// removePiece clears a square and returns what was there.
func (b *Board) removePiece(sq Square) Piece {
	idx := int(sq)
	p := b.pieces[idx]
	if p == NoPiece {
		return NoPiece
	}
	ci := int(p.Color())
	b.pieces[idx] = NoPiece
	b.occupancy[ci] &^= bb(sq)
	b.typeBB(p.Type(), ci).clear(sq)
	b.zobristKey ^= zobristPiece[p][idx]
	return p
}

type bbRef struct{ p *uint64 }

func (r bbRef) set(sq Square)   { *r.p |= bb(sq) }
func (r bbRef) clear(sq Square) { *r.p &^= bb(sq) }

// typeBB returns a reference to the bitboard for a piece type and color index.
func (b *Board) typeBB(pt PieceType, ci int) bbRef {
	switch pt {
	case PieceTypePawn:
		return bbRef{&b.pawns[ci]}
	case PieceTypeKnight:
		return bbRef{&b.knights[ci]}
	case PieceTypeBishop:
		return bbRef{&b.bishops[ci]}
	case PieceTypeRook:
		return bbRef{&b.rooks[ci]}
	case PieceTypeQueen:
		return bbRef{&b.queens[ci]}
	case PieceTypeKing:
		return bbRef{&b.kings[ci]}
	}
	panic("chessmg: typeBB on PieceTypeNone")
}

// Validate checks internal consistency between the mailbox, the per-type
// bitboards, the occupancy and the Zobrist key. Used by tests.
func (b *Board) Validate() bool {
	var occ, pawns, knights, bishops, rooks, queens, kings [2]uint64
	for sq := 0; sq < 64; sq++ {
		p := b.pieces[sq]
		if p == NoPiece {
			continue
		}
		ci := int(p.Color())
		bit := uint64(1) << uint(sq)
		occ[ci] |= bit
		switch p.Type() {
		case PieceTypePawn:
			pawns[ci] |= bit
		case PieceTypeKnight:
			knights[ci] |= bit
		case PieceTypeBishop:
			bishops[ci] |= bit
		case PieceTypeRook:
			rooks[ci] |= bit
		case PieceTypeQueen:
			queens[ci] |= bit
		case PieceTypeKing:
			kings[ci] |= bit
		}
	}
	if occ != b.occupancy {
		return false
	}
	if pawns != b.pawns || knights != b.knights || bishops != b.bishops ||
		rooks != b.rooks || queens != b.queens || kings != b.kings {
		return false
	}
	return b.zobristKey == b.computeZobrist()
}
