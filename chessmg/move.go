package chessmg

import "fmt"

// Move packs a chess move into 32 bits: origin, destination, the moved and
// captured pieces, an optional promotion piece, and a special-move flag. A
// Move is only meaningful for the board it was generated from.
type Move uint32

// Bitfield layout, LSB first.
const (
	moveFromShift    = 0  // 6 bits
	moveToShift      = 6  // 6 bits
	movePieceShift   = 12 // 4 bits
	moveCaptureShift = 16 // 4 bits
	movePromoteShift = 20 // 4 bits
	moveFlagShift    = 24 // 2 bits
)

// Special-move flags. Promotion is indicated by a non-zero promotion piece,
// captures by a non-zero captured piece.
const (
	FlagNone       = 0
	FlagCastle     = 1
	FlagEnPassant  = 2
	FlagDoublePush = 3
)

// NewMove assembles a Move from its components.
func NewMove(from, to Square, piece, captured, promotion Piece, flag uint8) Move {
	return Move(uint32(from&0x3F) |
		(uint32(to&0x3F) << moveToShift) |
		(uint32(piece&0xF) << movePieceShift) |
		(uint32(captured&0xF) << moveCaptureShift) |
		(uint32(promotion&0xF) << movePromoteShift) |
		(uint32(flag&0x3) << moveFlagShift))
}

// From returns the origin square.
func (m Move) From() Square { return Square((uint32(m) >> moveFromShift) & 0x3F) }

// To returns the destination square.
func (m Move) To() Square { return Square((uint32(m) >> moveToShift) & 0x3F) }

// MovedPiece returns the piece being moved.
func (m Move) MovedPiece() Piece { return Piece((uint32(m) >> movePieceShift) & 0xF) }

// CapturedPiece returns the captured piece, or NoPiece.
func (m Move) CapturedPiece() Piece { return Piece((uint32(m) >> moveCaptureShift) & 0xF) }

// PromotionPiece returns the promotion piece, or NoPiece.
func (m Move) PromotionPiece() Piece { return Piece((uint32(m) >> movePromoteShift) & 0xF) }

// Flags returns the special-move flag.
func (m Move) Flags() uint8 { return uint8((uint32(m) >> moveFlagShift) & 0x3) }

// IsCapture reports whether the move captures, including en passant.
func (m Move) IsCapture() bool { return m.CapturedPiece() != NoPiece }

// IsPromotion reports whether the move promotes a pawn.
func (m Move) IsPromotion() bool { return m.PromotionPiece() != NoPiece }

// IsKingsideCastle reports whether the move is a king-side castle.
func (m Move) IsKingsideCastle() bool {
	return m.Flags() == FlagCastle && m.To().File() == 6
}

// IsQueensideCastle reports whether the move is a queen-side castle.
func (m Move) IsQueensideCastle() bool {
	return m.Flags() == FlagCastle && m.To().File() == 2
}

// String renders the move in coordinate form ("e2e4", "e7e8q").
func (m Move) String() string {
	s := m.From().String() + m.To().String()
	if p := m.PromotionPiece(); p != NoPiece {
		s += string(promoLetter(p.Type()))
	}
	return s
}

func promoLetter(pt PieceType) byte {
	switch pt {
	case PieceTypeKnight:
		return 'n'
	case PieceTypeBishop:
		return 'b'
	case PieceTypeRook:
		return 'r'
	case PieceTypeQueen:
		return 'q'
	}
	return '?'
}

// ParseUCIMove resolves a coordinate-form move string ("e2e4", "e7e8q")
// against the board's legal moves, so the returned Move carries the full
// flag and capture information for this position. It fails with
// ErrUnknownNotation when no legal move matches.
func (b *Board) ParseUCIMove(s string) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return 0, fmt.Errorf("%w: bad move length in %q", ErrUnknownNotation, s)
	}
	from := SquareFromString(s[0:2])
	to := SquareFromString(s[2:4])
	if from == NoSquare || to == NoSquare {
		return 0, fmt.Errorf("%w: bad square in %q", ErrUnknownNotation, s)
	}
	promo := PieceTypeNone
	if len(s) == 5 {
		switch s[4] {
		case 'n':
			promo = PieceTypeKnight
		case 'b':
			promo = PieceTypeBishop
		case 'r':
			promo = PieceTypeRook
		case 'q':
			promo = PieceTypeQueen
		default:
			return 0, fmt.Errorf("%w: bad promotion in %q", ErrUnknownNotation, s)
		}
	}
	for _, m := range b.GenerateMoves() {
		if m.From() == from && m.To() == to && m.PromotionPiece().Type() == promo {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q is not legal here", ErrUnknownNotation, s)
}
