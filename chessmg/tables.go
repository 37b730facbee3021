package chessmg

import "math/bits"

// Precomputed attack masks for leapers.
var knightAttackTable [64]uint64
var kingAttackTable [64]uint64

// pawnAttacks[color][sq] is the set of squares a pawn of that color attacks
// from sq. Pawn attacks are directionally asymmetric between the colors.
var pawnAttacks [2][64]uint64

// Directional rays for sliders, excluding the origin square.
// Rook directions: 0=N 1=S 2=E 3=W. Bishop directions: 0=NE 1=NW 2=SE 3=SW.
var rookRays [64][4]uint64
var bishopRays [64][4]uint64

// Union of every slider ray from a square; lets the pin scan bail out when
// nothing stands on any line through the king.
var raysFrom [64]uint64

// Occupancy masks and subset-indexed attack tables for sliders (software
// pext in place of magics).
var rookMasks [64]uint64
var bishopMasks [64]uint64
var rookAttackTable [64][]uint64
var bishopAttackTable [64][]uint64

func init() {
	initLeaperTables()
	initRayTables()
	initSliderTables()
}

func initLeaperTables() {
	knightOffsets := [8][2]int{
		{2, 1}, {2, -1}, {-2, 1}, {-2, -1},
		{1, 2}, {1, -2}, {-1, 2}, {-1, -2},
	}
	kingOffsets := [8][2]int{
		{1, 0}, {-1, 0}, {0, 1}, {0, -1},
		{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
	}
	for sq := 0; sq < 64; sq++ {
		rank, file := sq/8, sq%8
		for _, off := range knightOffsets {
			if r, f := rank+off[0], file+off[1]; r >= 0 && r < 8 && f >= 0 && f < 8 {
				knightAttackTable[sq] |= uint64(1) << uint(r*8+f)
			}
		}
		for _, off := range kingOffsets {
			if r, f := rank+off[0], file+off[1]; r >= 0 && r < 8 && f >= 0 && f < 8 {
				kingAttackTable[sq] |= uint64(1) << uint(r*8+f)
			}
		}
		if rank < 7 {
			if file > 0 {
				pawnAttacks[White][sq] |= uint64(1) << uint((rank+1)*8+file-1)
			}
			if file < 7 {
				pawnAttacks[White][sq] |= uint64(1) << uint((rank+1)*8+file+1)
			}
		}
		if rank > 0 {
			if file > 0 {
				pawnAttacks[Black][sq] |= uint64(1) << uint((rank-1)*8+file-1)
			}
			if file < 7 {
				pawnAttacks[Black][sq] |= uint64(1) << uint((rank-1)*8+file+1)
			}
		}
	}
}

// ray accumulates the squares from (rank,file) stepping by (dr,df) until the
// board edge.
func ray(rank, file, dr, df int) uint64 {
	var mask uint64
	for r, f := rank+dr, file+df; r >= 0 && r < 8 && f >= 0 && f < 8; r, f = r+dr, f+df {
		mask |= uint64(1) << uint(r*8+f)
	}
	return mask
}

func initRayTables() {
	rookDirs := [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}   // N S E W
	bishopDirs := [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}} // NE NW SE SW
	for sq := 0; sq < 64; sq++ {
		rank, file := sq/8, sq%8
		for d, dir := range rookDirs {
			rookRays[sq][d] = ray(rank, file, dir[0], dir[1])
		}
		for d, dir := range bishopDirs {
			bishopRays[sq][d] = ray(rank, file, dir[0], dir[1])
		}
		raysFrom[sq] = rookRays[sq][0] | rookRays[sq][1] | rookRays[sq][2] | rookRays[sq][3] |
			bishopRays[sq][0] | bishopRays[sq][1] | bishopRays[sq][2] | bishopRays[sq][3]
	}
}

// interior trims a ray mask to exclude the edge square in each direction, the
// shape required for occupancy subset indexing.
func interior(rank, file, dr, df int) uint64 {
	var mask uint64
	for r, f := rank+dr, file+df; r+dr >= 0 && r+dr < 8 && f+df >= 0 && f+df < 8; r, f = r+dr, f+df {
		mask |= uint64(1) << uint(r*8+f)
	}
	return mask
}

func initSliderTables() {
	rookDirs := [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopDirs := [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	for sq := 0; sq < 64; sq++ {
		rank, file := sq/8, sq%8
		var rm, bm uint64
		for _, dir := range rookDirs {
			rm |= interior(rank, file, dir[0], dir[1])
		}
		for _, dir := range bishopDirs {
			bm |= interior(rank, file, dir[0], dir[1])
		}
		rookMasks[sq] = rm
		bishopMasks[sq] = bm

		rookAttackTable[sq] = make([]uint64, 1<<bits.OnesCount64(rm))
		for idx := range rookAttackTable[sq] {
			rookAttackTable[sq][idx] = rookAttacksSlow(sq, pdep(uint64(idx), rm))
		}
		bishopAttackTable[sq] = make([]uint64, 1<<bits.OnesCount64(bm))
		for idx := range bishopAttackTable[sq] {
			bishopAttackTable[sq][idx] = bishopAttacksSlow(sq, pdep(uint64(idx), bm))
		}
	}
}

// pext extracts the bits of x selected by mask, packed into the low bits.
func pext(x, mask uint64) uint64 {
	var res uint64
	var idx uint
	for m := mask; m != 0; m &= m - 1 {
		bit := uint(bits.TrailingZeros64(m))
		if (x>>bit)&1 != 0 {
			res |= 1 << idx
		}
		idx++
	}
	return res
}

// pdep deposits the low bits of x into the positions selected by mask.
func pdep(x, mask uint64) uint64 {
	var res uint64
	var idx uint
	for m := mask; m != 0; m &= m - 1 {
		bit := uint(bits.TrailingZeros64(m))
		if (x>>idx)&1 != 0 {
			res |= 1 << bit
		}
		idx++
	}
	return res
}

// rookAttacks returns rook attacks from sq under the given occupancy, via the
// precomputed subset tables.
func rookAttacks(sq int, occ uint64) uint64 {
	return rookAttackTable[sq][pext(occ, rookMasks[sq])]
}

// bishopAttacks returns bishop attacks from sq under the given occupancy.
func bishopAttacks(sq int, occ uint64) uint64 {
	return bishopAttackTable[sq][pext(occ, bishopMasks[sq])]
}

// Which direction slots scan toward higher square indices: rook N and E,
// bishop NE and NW. This decides which end of a blocker set ends a ray.
var rookDirIncreasing = [4]bool{true, false, true, false}
var bishopDirIncreasing = [4]bool{true, true, false, false}

// rookAttacksSlow walks the rays directly; used to seed the tables.
func rookAttacksSlow(sq int, occ uint64) uint64 {
	return slideAttacks(sq, occ, &rookRays, &rookDirIncreasing)
}

// bishopAttacksSlow walks the rays directly; used to seed the tables.
func bishopAttacksSlow(sq int, occ uint64) uint64 {
	return slideAttacks(sq, occ, &bishopRays, &bishopDirIncreasing)
}

// slideAttacks truncates each directional ray at the first blocker.
func slideAttacks(sq int, occ uint64, rays *[64][4]uint64, increasing *[4]bool) uint64 {
	var attacks uint64
	for d := 0; d < 4; d++ {
		r := rays[sq][d]
		if blockers := r & occ; blockers != 0 {
			var first int
			if increasing[d] {
				first = bits.TrailingZeros64(blockers)
			} else {
				first = 63 - bits.LeadingZeros64(blockers)
			}
			r &^= rays[first][d]
		}
		attacks |= r
	}
	return attacks
}
