package chessmg

// Perft counts the leaf nodes of the legal move tree to the given depth.
// Standard correctness oracle for the generator and the make/unmake pair.
func Perft(b *Board, depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	pc := perftCtx{bufs: make([][]Move, depth+1)}
	return perftRec(b, depth, &pc)
}

// perftCtx holds one reusable move buffer per depth so the walk allocates a
// bounded amount regardless of tree size.
type perftCtx struct {
	bufs [][]Move
}

func (pc *perftCtx) bufFor(depth int) []Move {
	if pc.bufs[depth] == nil {
		pc.bufs[depth] = make([]Move, 0, 256)
	}
	return pc.bufs[depth][:0]
}

func perftRec(b *Board, depth int, pc *perftCtx) uint64 {
	moves := b.GenerateMovesInto(pc.bufFor(depth))
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		if ok, st := b.MakeMove(m); ok {
			nodes += perftRec(b, depth-1, pc)
			b.UnmakeMove(m, st)
		}
	}
	return nodes
}

// PerftDivide returns the perft count below each root move, keyed by the
// move. The counts sum to Perft(b, depth).
func PerftDivide(b *Board, depth int) map[Move]uint64 {
	result := make(map[Move]uint64)
	if depth <= 0 {
		return result
	}
	for _, m := range b.GenerateMoves() {
		if ok, st := b.MakeMove(m); ok {
			result[m] = Perft(b, depth-1)
			b.UnmakeMove(m, st)
		}
	}
	return result
}
