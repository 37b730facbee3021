package chessmg

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// FENStartPos is the FEN string for the standard initial position.
const FENStartPos = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

const fenPieceChars = "PNBRQKpnbrqk"

func pieceFromChar(ch rune) Piece {
	switch ch {
	case 'P':
		return WhitePawn
	case 'N':
		return WhiteKnight
	case 'B':
		return WhiteBishop
	case 'R':
		return WhiteRook
	case 'Q':
		return WhiteQueen
	case 'K':
		return WhiteKing
	case 'p':
		return BlackPawn
	case 'n':
		return BlackKnight
	case 'b':
		return BlackBishop
	case 'r':
		return BlackRook
	case 'q':
		return BlackQueen
	case 'k':
		return BlackKing
	}
	return NoPiece
}

func charFromPiece(p Piece) byte {
	if p.Type() == PieceTypeNone {
		return '?'
	}
	ch := fenPieceChars[int(p.Type())-1]
	if p.Color() == Black {
		ch = fenPieceChars[int(p.Type())+5]
	}
	return ch
}

// ParseFEN parses a six-field FEN string into a Board. Syntactic problems
// fail with ErrMalformedFEN; boards that parse but are semantically impossible
// (a side without exactly one king, pawns on the back ranks, an en-passant
// target no double push could have produced) fail with ErrInvalidPosition.
// The halfmove clock and fullmove number fields may be omitted and default
// to 0 and 1.
func ParseFEN(fen string) (*Board, error) {
	fields := strings.Fields(strings.TrimSpace(fen))
	if len(fields) < 4 {
		return nil, fmt.Errorf("%w: want at least 4 fields, got %d", ErrMalformedFEN, len(fields))
	}

	board := &Board{enPassantSquare: NoSquare, fullmoveNumber: 1}

	// Field 1: piece placement, rank 8 first.
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("%w: want 8 ranks, got %d", ErrMalformedFEN, len(ranks))
	}
	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for _, ch := range rankStr {
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			p := pieceFromChar(ch)
			if p == NoPiece {
				return nil, fmt.Errorf("%w: unrecognized piece letter %q", ErrMalformedFEN, ch)
			}
			if file >= 8 {
				return nil, fmt.Errorf("%w: rank %d overflows 8 files", ErrMalformedFEN, rank+1)
			}
			board.addPiece(Square(rank*8+file), p)
			file++
		}
		if file != 8 {
			return nil, fmt.Errorf("%w: rank %d covers %d files", ErrMalformedFEN, rank+1, file)
		}
	}

	// Field 2: side to move.
	switch fields[1] {
	case "w":
		board.sideToMove = White
	case "b":
		board.sideToMove = Black
	default:
		return nil, fmt.Errorf("%w: side to move %q", ErrMalformedFEN, fields[1])
	}

	// Field 3: castling availability.
	if fields[2] != "-" {
		for _, ch := range fields[2] {
			switch ch {
			case 'K':
				board.castlingRights |= CastleWhiteKingside
			case 'Q':
				board.castlingRights |= CastleWhiteQueenside
			case 'k':
				board.castlingRights |= CastleBlackKingside
			case 'q':
				board.castlingRights |= CastleBlackQueenside
			default:
				return nil, fmt.Errorf("%w: castling letter %q", ErrMalformedFEN, ch)
			}
		}
	}

	// Field 4: en-passant target.
	if fields[3] != "-" {
		sq := SquareFromString(fields[3])
		if sq == NoSquare {
			return nil, fmt.Errorf("%w: en-passant square %q", ErrMalformedFEN, fields[3])
		}
		board.enPassantSquare = sq
	}

	// Fields 5 and 6: move clocks.
	if len(fields) > 4 {
		n, err := strconv.Atoi(fields[4])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: halfmove clock %q", ErrMalformedFEN, fields[4])
		}
		board.halfmoveClock = n
	}
	if len(fields) > 5 {
		n, err := strconv.Atoi(fields[5])
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%w: fullmove number %q", ErrMalformedFEN, fields[5])
		}
		board.fullmoveNumber = n
	}

	if err := board.checkPosition(); err != nil {
		return nil, err
	}

	board.zobristKey = board.computeZobrist()
	return board, nil
}

// checkPosition rejects boards that no legal game can reach: each side must
// have exactly one king, pawns cannot stand on the first or last rank, and an
// en-passant target must sit behind an enemy pawn that could just have
// double-pushed.
func (b *Board) checkPosition() error {
	for c := White; c <= Black; c++ {
		if n := bits.OnesCount64(b.kings[int(c)]); n != 1 {
			return fmt.Errorf("%w: %d kings for one side", ErrInvalidPosition, n)
		}
	}
	const backRanks uint64 = 0xFF000000000000FF
	if (b.pawns[White]|b.pawns[Black])&backRanks != 0 {
		return fmt.Errorf("%w: pawn on a back rank", ErrInvalidPosition)
	}
	if ep := int(b.enPassantSquare); ep != int(NoSquare) {
		ok := false
		if b.sideToMove == White {
			ok = ep/8 == 5 && b.pawns[Black]&(uint64(1)<<uint(ep-8)) != 0
		} else {
			ok = ep/8 == 2 && b.pawns[White]&(uint64(1)<<uint(ep+8)) != 0
		}
		if !ok {
			return fmt.Errorf("%w: en-passant target %s without a preceding double push", ErrInvalidPosition, b.enPassantSquare)
		}
	}
	return nil
}

// ToFEN renders the six-field FEN string for the position. ParseFEN(b.ToFEN())
// reproduces b exactly.
func (b *Board) ToFEN() string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			p := b.pieces[rank*8+file]
			if p == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte('0' + byte(empty))
				empty = 0
			}
			sb.WriteByte(charFromPiece(p))
		}
		if empty > 0 {
			sb.WriteByte('0' + byte(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	if b.sideToMove == White {
		sb.WriteString(" w ")
	} else {
		sb.WriteString(" b ")
	}

	if b.castlingRights == 0 {
		sb.WriteByte('-')
	} else {
		if b.castlingRights&CastleWhiteKingside != 0 {
			sb.WriteByte('K')
		}
		if b.castlingRights&CastleWhiteQueenside != 0 {
			sb.WriteByte('Q')
		}
		if b.castlingRights&CastleBlackKingside != 0 {
			sb.WriteByte('k')
		}
		if b.castlingRights&CastleBlackQueenside != 0 {
			sb.WriteByte('q')
		}
	}

	sb.WriteByte(' ')
	sb.WriteString(b.enPassantSquare.String())
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(b.halfmoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(b.fullmoveNumber))
	return sb.String()
}
