package chessmg

import (
	"fmt"
	"regexp"
	"strings"
)

func pieceLetter(pt PieceType) string {
	switch pt {
	case PieceTypeKnight:
		return "N"
	case PieceTypeBishop:
		return "B"
	case PieceTypeRook:
		return "R"
	case PieceTypeQueen:
		return "Q"
	case PieceTypeKing:
		return "K"
	}
	return ""
}

// SANMove renders a legal move in standard algebraic notation for this
// position: castles as O-O/O-O-O, captures with "x" (pawn captures keep the
// origin file), promotions as "=Q", origin disambiguation kept minimal (file
// first, then rank, then both), and a "+" or "#" suffix when the move gives
// check or mate.
func (b *Board) SANMove(m Move) string {
	var sb strings.Builder

	switch {
	case m.IsKingsideCastle():
		sb.WriteString("O-O")
	case m.IsQueensideCastle():
		sb.WriteString("O-O-O")
	default:
		pt := m.MovedPiece().Type()
		if pt == PieceTypePawn {
			if m.IsCapture() {
				sb.WriteByte('a' + byte(m.From().File()))
			}
		} else {
			sb.WriteString(pieceLetter(pt))
			sb.WriteString(b.sanDisambiguation(m))
		}
		if m.IsCapture() {
			sb.WriteByte('x')
		}
		sb.WriteString(m.To().String())
		if p := m.PromotionPiece(); p != NoPiece {
			sb.WriteByte('=')
			sb.WriteString(pieceLetter(p.Type()))
		}
	}

	// Check and mate suffixes come from playing the move out.
	if ok, st := b.MakeMove(m); ok {
		if b.InCheck(b.sideToMove) {
			if b.HasLegalMoves() {
				sb.WriteByte('+')
			} else {
				sb.WriteByte('#')
			}
		}
		b.UnmakeMove(m, st)
	}
	return sb.String()
}

// sanDisambiguation returns the minimal origin qualifier for a non-pawn
// move: nothing when the piece and destination identify the move uniquely,
// otherwise the origin file unless another candidate shares it, then the
// rank, then both.
func (b *Board) sanDisambiguation(m Move) string {
	var required, sameFile, sameRank bool
	for _, other := range b.GenerateMoves() {
		if other == m || other.To() != m.To() ||
			other.MovedPiece() != m.MovedPiece() || other.From() == m.From() {
			continue
		}
		required = true
		if other.From().File() == m.From().File() {
			sameFile = true
		}
		if other.From().Rank() == m.From().Rank() {
			sameRank = true
		}
	}
	if !required {
		return ""
	}
	var sb strings.Builder
	if sameRank || !sameFile {
		sb.WriteByte('a' + byte(m.From().File()))
	}
	if sameFile {
		sb.WriteByte('1' + byte(m.From().Rank()))
	}
	return sb.String()
}

var sanPattern = regexp.MustCompile(`^([NBRQK]?)([a-h]?)([1-8]?)(x?)([a-h][1-8])(?:=?([NBRQ]))?$`)

// ParseSAN resolves a standard algebraic notation token against this
// position's legal moves. It tolerates "+"/"#" and annotation suffixes, an
// "e.p." marker, "0-0" style castles and promotions written without "=".
// It fails with ErrUnknownNotation when no legal move matches the token and
// with ErrAmbiguousNotation when the token fits more than one.
func (b *Board) ParseSAN(s string) (Move, error) {
	token := strings.TrimRight(s, "+#!?")
	token = strings.TrimSuffix(token, " e.p.")
	token = strings.TrimSuffix(token, "e.p.")
	if token == "" {
		return 0, fmt.Errorf("%w: empty move token", ErrUnknownNotation)
	}

	if c := strings.ReplaceAll(token, "0", "O"); c == "O-O" || c == "O-O-O" {
		kingside := c == "O-O"
		for _, m := range b.GenerateMoves() {
			if (kingside && m.IsKingsideCastle()) || (!kingside && m.IsQueensideCastle()) {
				return m, nil
			}
		}
		return 0, fmt.Errorf("%w: %s is not legal here", ErrUnknownNotation, c)
	}

	parts := sanPattern.FindStringSubmatch(token)
	if parts == nil {
		return 0, fmt.Errorf("%w: cannot read %q as a move", ErrUnknownNotation, s)
	}

	pt := PieceTypePawn
	if parts[1] != "" {
		pt = pieceTypeFromLetter(parts[1][0])
	}
	to := SquareFromString(parts[5])
	isCapture := parts[4] == "x"
	promo := PieceTypeNone
	if parts[6] != "" {
		promo = pieceTypeFromLetter(parts[6][0])
	}

	var found Move
	matches := 0
	for _, m := range b.GenerateMoves() {
		if m.MovedPiece().Type() != pt || m.To() != to {
			continue
		}
		if m.PromotionPiece().Type() != promo {
			continue
		}
		if isCapture && !m.IsCapture() {
			continue
		}
		if parts[2] != "" && m.From().File() != int(parts[2][0]-'a') {
			continue
		}
		if parts[3] != "" && m.From().Rank() != int(parts[3][0]-'1') {
			continue
		}
		found = m
		matches++
	}

	switch matches {
	case 0:
		return 0, fmt.Errorf("%w: %q is not legal here", ErrUnknownNotation, s)
	case 1:
		return found, nil
	default:
		return 0, fmt.Errorf("%w: %q matches %d moves", ErrAmbiguousNotation, s, matches)
	}
}

func pieceTypeFromLetter(c byte) PieceType {
	switch c {
	case 'N':
		return PieceTypeKnight
	case 'B':
		return PieceTypeBishop
	case 'R':
		return PieceTypeRook
	case 'Q':
		return PieceTypeQueen
	case 'K':
		return PieceTypeKing
	}
	return PieceTypeNone
}
