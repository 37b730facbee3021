package chessmg_test

import (
	"sort"
	"testing"

	dt "github.com/dylhunn/dragontoothmg"

	"chess-core/chessmg"
	"chess-core/internal/testutil"
)

// Positions with known tactical content: checks, pins, en passant, castling,
// promotions. Used across the generator and make/unmake tests.
var testPositions = []string{
	chessmg.FENStartPos,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
	"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
	"rnbqkbnr/pp1ppppp/8/2p5/4P3/8/PPPP1PPP/RNBQKBNR w KQkq c6 0 2",
	"4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1",
	"8/8/3p4/1Pp4r/1K3p2/6k1/4P1P1/1R6 w - c6 0 3",
	"7k/8/8/1Pp5/1K6/8/8/8 w - c6 0 2",
}

func TestMoveGenerationInitial(t *testing.T) {
	board := chessmg.NewBoard()
	moves := board.GenerateMoves()
	if len(moves) != 20 {
		t.Errorf("initial position: expected 20 moves, got %d", len(moves))
	}
}

func TestPerftKnownValues(t *testing.T) {
	cases := []struct {
		fen    string
		counts []uint64 // counts[i] is perft(i+1)
	}{
		{chessmg.FENStartPos, []uint64{20, 400, 8902, 197281}},
		{"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", []uint64{48, 2039, 97862}},
		{"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", []uint64{14, 191, 2812, 43238, 674624}},
		{"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1", []uint64{6, 264, 9467}},
		{"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8", []uint64{44, 1486, 62379}},
		{"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10", []uint64{46, 2079, 89890}},
	}
	for _, tc := range cases {
		board, err := chessmg.ParseFEN(tc.fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", tc.fen, err)
		}
		for depth, want := range tc.counts {
			if got := chessmg.Perft(board, depth+1); got != want {
				t.Errorf("%s: perft(%d) = %d, want %d", tc.fen, depth+1, got, want)
			}
		}
	}
}

func TestPerftDivideSumsToPerft(t *testing.T) {
	board := chessmg.NewBoard()
	div := chessmg.PerftDivide(board, 3)
	var sum uint64
	for _, n := range div {
		sum += n
	}
	testutil.AssertEqual(t, sum, chessmg.Perft(board, 3))
	testutil.AssertEqual(t, len(div), 20)
}

// uciSet renders a move list as a sorted list of UCI strings, the common
// currency between this generator and the reference one.
func uciSet(moves []chessmg.Move) []string {
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.String()
	}
	sort.Strings(out)
	return out
}

func TestGenerateMovesMatchesReference(t *testing.T) {
	for _, fen := range testPositions {
		board, err := chessmg.ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		refBoard := dt.ParseFen(fen)
		refMoves := refBoard.GenerateLegalMoves()
		want := make([]string, len(refMoves))
		for i := range refMoves {
			want[i] = refMoves[i].String()
		}
		sort.Strings(want)
		testutil.AssertEqual(t, uciSet(board.GenerateMoves()), want, "legal moves for %q", fen)
	}
}

func TestPerftMatchesReference(t *testing.T) {
	for _, fen := range testPositions {
		board, err := chessmg.ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		refBoard := dt.ParseFen(fen)
		got := chessmg.Perft(board, 3)
		want := uint64(dt.Perft(&refBoard, 3))
		if got != want {
			t.Errorf("%s: perft(3) = %d, reference says %d", fen, got, want)
		}
	}
}

func TestGeneratedMovesAreLegal(t *testing.T) {
	for _, fen := range testPositions {
		board, err := chessmg.ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		mover := board.SideToMove()
		for _, m := range board.GenerateMoves() {
			ok, st := board.MakeMove(m)
			if !ok {
				t.Errorf("%s: generated move %s rejected by MakeMove", fen, m)
				continue
			}
			if board.InCheck(mover) {
				t.Errorf("%s: move %s leaves the mover in check", fen, m)
			}
			board.UnmakeMove(m, st)
		}
	}
}

func TestPseudoMovesContainLegalMoves(t *testing.T) {
	for _, fen := range testPositions {
		board, err := chessmg.ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		pseudo := make(map[chessmg.Move]bool)
		for _, m := range board.GeneratePseudoMoves() {
			pseudo[m] = true
		}
		for _, m := range board.GenerateMoves() {
			if !pseudo[m] {
				t.Errorf("%s: legal move %s missing from pseudo-legal set", fen, m)
			}
		}
	}
}

func TestCapturesAndQuietsPartitionMoves(t *testing.T) {
	for _, fen := range testPositions {
		board, err := chessmg.ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		captures := board.GenerateCaptures()
		quiets := board.GenerateQuiets()
		for _, m := range captures {
			if !m.IsCapture() {
				t.Errorf("%s: %s in capture list but captures nothing", fen, m)
			}
		}
		for _, m := range quiets {
			if m.IsCapture() {
				t.Errorf("%s: %s in quiet list but is a capture", fen, m)
			}
		}
		combined := append(append([]chessmg.Move{}, captures...), quiets...)
		testutil.AssertEqual(t, uciSet(combined), uciSet(board.GenerateMoves()), "partition for %q", fen)
	}
}

func TestCastlingGeneration(t *testing.T) {
	countCastles := func(fen string) (kingside, queenside int) {
		t.Helper()
		board, err := chessmg.ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		for _, m := range board.GenerateMoves() {
			if m.IsKingsideCastle() {
				kingside++
			}
			if m.IsQueensideCastle() {
				queenside++
			}
		}
		return kingside, queenside
	}

	// Open home rank with both rights.
	k, q := countCastles("4k3/8/8/8/8/8/8/R3K2R w KQ - 0 1")
	testutil.AssertEqual(t, []int{k, q}, []int{1, 1})

	// Rights gone: no castle even with the path clear.
	k, q = countCastles("4k3/8/8/8/8/8/8/R3K2R w - - 0 1")
	testutil.AssertEqual(t, []int{k, q}, []int{0, 0})

	// King in check: castling out of check is not allowed.
	k, q = countCastles("1k2r3/8/8/8/8/8/8/R3K2R w KQ - 0 1")
	testutil.AssertEqual(t, []int{k, q}, []int{0, 0})

	// f1 covered by the rook on f8: no kingside castle through the square.
	k, q = countCastles("4kr2/8/8/8/8/8/8/R3K2R w KQ - 0 1")
	testutil.AssertEqual(t, []int{k, q}, []int{0, 1})

	// Blocked queenside path.
	k, q = countCastles("4k3/8/8/8/8/8/8/RN2K2R w KQ - 0 1")
	testutil.AssertEqual(t, []int{k, q}, []int{1, 0})
}

func TestEnPassantPinnedCaptureExcluded(t *testing.T) {
	// Capturing d5xe6 en passant would clear the fifth rank and expose the
	// white king on b5 to the rook on h5.
	board, err := chessmg.ParseFEN("8/8/8/1K1Pp2r/8/8/8/5k2 w - e6 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	for _, m := range board.GenerateMoves() {
		if m.Flags() == chessmg.FlagEnPassant {
			t.Errorf("en passant %s generated despite the horizontal pin", m)
		}
	}
}

func TestEnPassantResolvesPawnCheck(t *testing.T) {
	// The c7-c5 double push just checked the king on b4. Capturing b5xc6
	// en passant removes the checker and must be offered alongside the
	// king moves.
	board, err := chessmg.ParseFEN("7k/8/8/1Pp5/1K6/8/8/8 w - c6 0 2")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	moves := board.GenerateMoves()
	found := false
	for _, m := range moves {
		if m.Flags() == chessmg.FlagEnPassant {
			testutil.AssertEqual(t, m.String(), "b5c6")
			found = true
		}
	}
	testutil.AssertTrue(t, found, "en passant check evasion missing from %v", uciSet(moves))
	testutil.AssertEqual(t, len(moves), 8)
}

func TestDoubleCheckForcesKingMoves(t *testing.T) {
	// Knight on f3 and rook on e8 both give check; only king moves escape.
	board, err := chessmg.ParseFEN("1k2r3/8/8/8/8/5n2/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	moves := board.GenerateMoves()
	for _, m := range moves {
		if m.MovedPiece() != chessmg.WhiteKing {
			t.Errorf("non-king move %s generated in double check", m)
		}
	}
	testutil.AssertTrue(t, len(moves) > 0, "the king has escape squares")
}
