package chessmg

import (
	"fmt"
	"math/bits"
)

// Generation filters.
const (
	genAll = iota
	genCaptures
	genQuiets
)

// GenerateMoves returns every legal move for the side to move, exhaustive and
// duplicate-free. The ordering is unspecified; callers must not rely on it.
func (b *Board) GenerateMoves() []Move { return b.GenerateMovesInto(make([]Move, 0, 128)) }

// GenerateMovesInto appends every legal move into dst (reset to length zero)
// and returns it; reusing dst avoids allocations in hot paths.
func (b *Board) GenerateMovesInto(dst []Move) []Move {
	return b.generate(dst, genAll, false)
}

// GenerateCaptures returns all legal captures, including en passant and
// capture promotions.
func (b *Board) GenerateCaptures() []Move { return b.GenerateCapturesInto(make([]Move, 0, 64)) }

// GenerateCapturesInto appends all legal captures into dst and returns it.
func (b *Board) GenerateCapturesInto(dst []Move) []Move {
	return b.generate(dst, genCaptures, false)
}

// GenerateQuiets returns all legal non-capturing moves, including quiet
// promotions and castling.
func (b *Board) GenerateQuiets() []Move { return b.GenerateQuietsInto(make([]Move, 0, 64)) }

// GenerateQuietsInto appends all legal non-capturing moves into dst.
func (b *Board) GenerateQuietsInto(dst []Move) []Move {
	return b.generate(dst, genQuiets, false)
}

// GeneratePseudoMoves returns moves that obey piece movement rules without
// the king-safety filter: a pseudo-legal move may leave the mover's own king
// in check. Castling still requires the right and an empty path, but the
// transit squares are not checked for attacks.
func (b *Board) GeneratePseudoMoves() []Move {
	return b.GeneratePseudoMovesInto(make([]Move, 0, 128))
}

// GeneratePseudoMovesInto appends all pseudo-legal moves into dst.
func (b *Board) GeneratePseudoMovesInto(dst []Move) []Move {
	return b.generate(dst, genAll, true)
}

// generate is the single generation core. With pseudo=false the output is
// fully legal: check evasion, pins and castling-path safety are enforced via
// the check/pin masks, and en-passant and king moves are verified against a
// post-move occupancy. With pseudo=true those filters are skipped.
func (b *Board) generate(dst []Move, filter int, pseudo bool) []Move {
	moves := dst[:0]
	side := b.sideToMove
	us := int(side)
	them := 1 - us

	if b.kings[us] == 0 || b.kings[them] == 0 {
		// Construction rejects kingless boards, so reaching this means an
		// upstream bug corrupted the position. Not recoverable.
		panic(fmt.Errorf("%w: move generation on a board without both kings", ErrInvalidPosition))
	}

	ownOcc := b.occupancy[us]
	oppOcc := b.occupancy[them]
	allOcc := ownOcc | oppOcc
	ks := bits.TrailingZeros64(b.kings[us])

	var inCheck, doubleCheck bool
	var checkMask uint64
	var pinLine [64]uint64
	if !pseudo {
		inCheck, doubleCheck, checkMask, pinLine = b.computeCheckAndPins(side, allOcc)
	}

	// allowedTo reports whether a non-king move to toBB survives the check
	// and pin filters. pinMask is the mover's pin line (0 when unpinned).
	allowedTo := func(toBB, pinMask uint64) bool {
		if pseudo {
			return true
		}
		if doubleCheck {
			return false
		}
		if pinMask != 0 && toBB&pinMask == 0 {
			return false
		}
		if inCheck && toBB&checkMask == 0 {
			return false
		}
		return true
	}

	// Pawns. Push direction and special ranks depend on the color.
	up, startRank, promoRank := 8, 1, 7
	if side == Black {
		up, startRank, promoRank = -8, 6, 0
	}
	pawn := PieceFromType(side, PieceTypePawn)
	oppPawn := PieceFromType(side.Other(), PieceTypePawn)

	pawns := b.pawns[us]
	for pawns != 0 {
		from := popLSB(&pawns)
		fromSq := Square(from)
		pinMask := pinLine[from]

		// Pushes land only on empty squares.
		if one := from + up; (allOcc>>uint(one))&1 == 0 {
			oneBB := uint64(1) << uint(one)
			if filter != genCaptures && allowedTo(oneBB, pinMask) {
				if one/8 == promoRank {
					moves = appendPromotions(moves, fromSq, Square(one), pawn, NoPiece, side)
				} else {
					moves = append(moves, NewMove(fromSq, Square(one), pawn, NoPiece, NoPiece, FlagNone))
				}
			}
			if from/8 == startRank {
				two := from + 2*up
				if (allOcc>>uint(two))&1 == 0 {
					if filter != genCaptures && allowedTo(uint64(1)<<uint(two), pinMask) {
						moves = append(moves, NewMove(fromSq, Square(two), pawn, NoPiece, NoPiece, FlagDoublePush))
					}
				}
			}
		}

		// Diagonal captures land only on enemy pieces or the EP target.
		caps := pawnAttacks[side][from]
		for capTargets := caps & oppOcc; capTargets != 0; {
			to := popLSB(&capTargets)
			toBB := uint64(1) << uint(to)
			if filter == genQuiets || !allowedTo(toBB, pinMask) {
				continue
			}
			capPiece := b.pieces[to]
			if to/8 == promoRank {
				moves = appendPromotions(moves, fromSq, Square(to), pawn, capPiece, side)
			} else {
				moves = append(moves, NewMove(fromSq, Square(to), pawn, capPiece, NoPiece, FlagNone))
			}
		}

		// En passant. The captured pawn is not on the destination square, so
		// the check mask does not apply; legality is settled by simulating
		// the post-capture occupancy and testing the king.
		if b.enPassantSquare != NoSquare && filter != genQuiets {
			ep := int(b.enPassantSquare)
			if caps&(1<<uint(ep)) != 0 {
				toBB := uint64(1) << uint(ep)
				ok := pseudo
				if !ok && !doubleCheck && (pinMask == 0 || toBB&pinMask != 0) {
					occAfter := allOcc
					occAfter &^= uint64(1) << uint(from)
					occAfter &^= uint64(1) << uint(ep-up) // the captured pawn
					occAfter |= toBB
					ok = !b.isSquareAttackedWithOcc(ks, side.Other(), occAfter)
				}
				if ok {
					moves = append(moves, NewMove(fromSq, Square(ep), pawn, oppPawn, NoPiece, FlagEnPassant))
				}
			}
		}
	}

	// Leapers and sliders share the same target-mask treatment.
	if pseudo || !doubleCheck {
		moves = b.genPieceMoves(moves, b.knights[us], func(from int) uint64 {
			return knightAttackTable[from]
		}, filter, pseudo, ownOcc, oppOcc, &pinLine, inCheck, doubleCheck, checkMask)
		moves = b.genPieceMoves(moves, b.bishops[us], func(from int) uint64 {
			return bishopAttacks(from, allOcc)
		}, filter, pseudo, ownOcc, oppOcc, &pinLine, inCheck, doubleCheck, checkMask)
		moves = b.genPieceMoves(moves, b.rooks[us], func(from int) uint64 {
			return rookAttacks(from, allOcc)
		}, filter, pseudo, ownOcc, oppOcc, &pinLine, inCheck, doubleCheck, checkMask)
		moves = b.genPieceMoves(moves, b.queens[us], func(from int) uint64 {
			return rookAttacks(from, allOcc) | bishopAttacks(from, allOcc)
		}, filter, pseudo, ownOcc, oppOcc, &pinLine, inCheck, doubleCheck, checkMask)
	}

	// King moves: each destination must be safe under the occupancy with the
	// king moved (captures removed, origin vacated).
	king := PieceFromType(side, PieceTypeKing)
	for t := kingAttackTable[ks] &^ ownOcc; t != 0; {
		to := popLSB(&t)
		isCap := (oppOcc>>uint(to))&1 != 0
		if (filter == genCaptures && !isCap) || (filter == genQuiets && isCap) {
			continue
		}
		if !pseudo {
			occAfter := allOcc &^ (uint64(1) << uint(ks))
			occAfter |= uint64(1) << uint(to)
			if b.isSquareAttackedWithOcc(to, side.Other(), occAfter) {
				continue
			}
		}
		captured := NoPiece
		if isCap {
			captured = b.pieces[to]
		}
		moves = append(moves, NewMove(Square(ks), Square(to), king, captured, NoPiece, FlagNone))
	}

	if filter != genCaptures {
		moves = b.genCastles(moves, side, allOcc, pseudo, inCheck)
	}

	return moves
}

// appendPromotions emits the four mandatory promotion choices for a pawn
// reaching the last rank.
func appendPromotions(moves []Move, from, to Square, pawn, captured Piece, side Color) []Move {
	return append(moves,
		NewMove(from, to, pawn, captured, PieceFromType(side, PieceTypeQueen), FlagNone),
		NewMove(from, to, pawn, captured, PieceFromType(side, PieceTypeRook), FlagNone),
		NewMove(from, to, pawn, captured, PieceFromType(side, PieceTypeBishop), FlagNone),
		NewMove(from, to, pawn, captured, PieceFromType(side, PieceTypeKnight), FlagNone),
	)
}

// genPieceMoves emits moves for every piece in the fromBB set using the
// supplied attack function, applying the pin/check masks and the filter.
func (b *Board) genPieceMoves(moves []Move, fromBB uint64, attacks func(from int) uint64,
	filter int, pseudo bool, ownOcc, oppOcc uint64, pinLine *[64]uint64,
	inCheck, doubleCheck bool, checkMask uint64) []Move {

	for fromBB != 0 {
		from := popLSB(&fromBB)
		piece := b.pieces[from]

		targets := attacks(from) &^ ownOcc
		if !pseudo {
			if pin := pinLine[from]; pin != 0 {
				targets &= pin
			}
			if inCheck {
				targets &= checkMask
			}
		}
		if filter == genCaptures {
			targets &= oppOcc
		} else if filter == genQuiets {
			targets &^= oppOcc
		}

		for t := targets; t != 0; {
			to := popLSB(&t)
			captured := NoPiece
			if (oppOcc>>uint(to))&1 != 0 {
				captured = b.pieces[to]
			}
			moves = append(moves, NewMove(Square(from), Square(to), piece, captured, NoPiece, FlagNone))
		}
	}
	return moves
}

// genCastles emits castle moves. A castle requires the right to still be
// held, the path between king and rook to be empty, the rook on its home
// square, and (unless pseudo) the king's origin, transit and destination
// squares to be unattacked.
func (b *Board) genCastles(moves []Move, side Color, occ uint64, pseudo bool, inCheck bool) []Move {
	type castle struct {
		right      CastlingRights
		kingFrom   Square
		kingTo     Square
		rookHome   Square
		rook       Piece
		empty      []Square
		mustBeSafe []Square
	}
	var candidates []castle
	if side == White {
		candidates = []castle{
			{CastleWhiteKingside, 4, 6, 7, WhiteRook, []Square{5, 6}, []Square{5, 6}},
			{CastleWhiteQueenside, 4, 2, 0, WhiteRook, []Square{1, 2, 3}, []Square{3, 2}},
		}
	} else {
		candidates = []castle{
			{CastleBlackKingside, 60, 62, 63, BlackRook, []Square{61, 62}, []Square{61, 62}},
			{CastleBlackQueenside, 60, 58, 56, BlackRook, []Square{57, 58, 59}, []Square{59, 58}},
		}
	}

	king := PieceFromType(side, PieceTypeKing)
	for _, c := range candidates {
		if b.castlingRights&c.right == 0 || b.pieces[c.rookHome] != c.rook {
			continue
		}
		blocked := false
		for _, sq := range c.empty {
			if b.pieces[sq] != NoPiece {
				blocked = true
				break
			}
		}
		if blocked {
			continue
		}
		if !pseudo {
			if inCheck {
				continue
			}
			attacked := false
			for _, sq := range c.mustBeSafe {
				if b.isSquareAttackedWithOcc(int(sq), side.Other(), occ) {
					attacked = true
					break
				}
			}
			if attacked {
				continue
			}
		}
		moves = append(moves, NewMove(c.kingFrom, c.kingTo, king, NoPiece, NoPiece, FlagCastle))
	}
	return moves
}

// ==========================
// Check and pin analysis
// ==========================

// lineThrough returns the squares from 'from' toward 'to' (inclusive of 'to',
// exclusive of 'from') when the two squares share a rank, file or diagonal,
// and 0 otherwise.
func lineThrough(from, to int) uint64 {
	toBB := uint64(1) << uint(to)
	for d := 0; d < 4; d++ {
		if rookRays[from][d]&toBB != 0 {
			return rookRays[from][d] &^ rookRays[to][d]
		}
		if bishopRays[from][d]&toBB != 0 {
			return bishopRays[from][d] &^ bishopRays[to][d]
		}
	}
	return 0
}

// computeCheckAndPins analyzes the side's king: whether it is in check,
// whether two pieces give check at once, the mask of squares a non-king move
// may target while in single check (capture the checker or block its line),
// and for each pinned piece the line it is confined to.
func (b *Board) computeCheckAndPins(side Color, occ uint64) (inCheck, doubleCheck bool, checkMask uint64, pinLine [64]uint64) {
	us := int(side)
	them := 1 - us
	ksq := bits.TrailingZeros64(b.kings[us])

	var checkers uint64
	// The reverse pawn table: squares from which an enemy pawn would attack
	// the king are exactly the squares our own pawn would attack from it.
	checkers |= pawnAttacks[side][ksq] & b.pawns[them]
	checkers |= knightAttackTable[ksq] & b.knights[them]
	checkers |= bishopAttacks(ksq, occ) & (b.bishops[them] | b.queens[them])
	checkers |= rookAttacks(ksq, occ) & (b.rooks[them] | b.queens[them])

	inCheck = checkers != 0
	doubleCheck = inCheck && checkers&(checkers-1) != 0

	if inCheck && !doubleCheck {
		c := bits.TrailingZeros64(checkers)
		checkMask = uint64(1) << uint(c)
		if line := lineThrough(ksq, c); line != 0 {
			switch b.pieces[c].Type() {
			case PieceTypeBishop, PieceTypeRook, PieceTypeQueen:
				checkMask = line
			}
		}
	}

	// Pins need an own piece on a line through the king.
	if raysFrom[ksq]&b.occupancy[us] != 0 {
		b.findPins(side, ksq, occ, &rookRays, &rookDirIncreasing, PieceTypeRook, &pinLine)
		b.findPins(side, ksq, occ, &bishopRays, &bishopDirIncreasing, PieceTypeBishop, &pinLine)
	}
	return inCheck, doubleCheck, checkMask, pinLine
}

// findPins marks own pieces pinned along the given ray family: the first
// blocker from the king is ours and the next one is an enemy slider moving on
// that family (or a queen). A pinned piece may only move along its pin line.
func (b *Board) findPins(side Color, ksq int, occ uint64, rays *[64][4]uint64,
	increasing *[4]bool, slider PieceType, pinLine *[64]uint64) {

	us := int(side)
	for d := 0; d < 4; d++ {
		blockers := rays[ksq][d] & occ
		if blockers == 0 {
			continue
		}
		first := nearestBlocker(blockers, increasing[d])
		if (uint64(1)<<uint(first))&b.occupancy[us] == 0 {
			continue
		}
		beyond := rays[first][d] & occ
		if beyond == 0 {
			continue
		}
		next := nearestBlocker(beyond, increasing[d])
		p := b.pieces[next]
		if p.Color() != side && p != NoPiece &&
			(p.Type() == slider || p.Type() == PieceTypeQueen) {
			pinLine[first] = rays[ksq][d] &^ rays[next][d]
		}
	}
}

// nearestBlocker picks the blocker closest to the ray origin given the
// direction's scan orientation.
func nearestBlocker(blockers uint64, increasing bool) int {
	if increasing {
		return bits.TrailingZeros64(blockers)
	}
	return 63 - bits.LeadingZeros64(blockers)
}

// ==========================
// Attack queries
// ==========================

// IsSquareAttacked reports whether the given square is attacked by the given
// color. The answer is independent of whose move it is: it considers the
// attacking side's pawns (direction-asymmetric), knights, king adjacency and
// sliders under the current occupancy.
func (b *Board) IsSquareAttacked(sq Square, by Color) bool {
	return b.isSquareAttackedWithOcc(int(sq), by, b.AllOccupancy())
}

// isSquareAttackedWithOcc answers the attack query under a hypothetical
// occupancy. Every attacker bitboard is masked by occ so that pieces removed
// from the simulated occupancy (an en-passant victim, a captured piece on the
// king's destination) stop attacking too.
func (b *Board) isSquareAttackedWithOcc(s int, by Color, occ uint64) bool {
	bi := int(by)
	// Reverse pawn lookup: a pawn of 'by' attacks s iff a pawn of the other
	// color standing on s would attack it.
	if pawnAttacks[by.Other()][s]&b.pawns[bi]&occ != 0 {
		return true
	}
	if knightAttackTable[s]&b.knights[bi]&occ != 0 {
		return true
	}
	if kingAttackTable[s]&b.kings[bi]&occ != 0 {
		return true
	}
	if rookAttacks(s, occ)&(b.rooks[bi]|b.queens[bi])&occ != 0 {
		return true
	}
	if bishopAttacks(s, occ)&(b.bishops[bi]|b.queens[bi])&occ != 0 {
		return true
	}
	return false
}

// InCheck reports whether the given color's king is attacked.
func (b *Board) InCheck(color Color) bool {
	kbb := b.kings[int(color)]
	if kbb == 0 {
		return false
	}
	return b.IsSquareAttacked(Square(bits.TrailingZeros64(kbb)), color.Other())
}
