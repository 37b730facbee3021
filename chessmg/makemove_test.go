package chessmg_test

import (
	"testing"

	"chess-core/chessmg"
	"chess-core/internal/testutil"
)

func mustParse(t *testing.T, fen string) *chessmg.Board {
	t.Helper()
	b, err := chessmg.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return b
}

func mustUCI(t *testing.T, b *chessmg.Board, uci string) chessmg.Move {
	t.Helper()
	m, err := b.ParseUCIMove(uci)
	if err != nil {
		t.Fatalf("ParseUCIMove(%q): %v", uci, err)
	}
	return m
}

func TestMakeUnmakeRestoresPosition(t *testing.T) {
	for _, fen := range testPositions {
		board := mustParse(t, fen)
		before := board.ToFEN()
		hash := board.Hash()
		for _, m := range board.GenerateMoves() {
			ok, st := board.MakeMove(m)
			if !ok {
				t.Errorf("%s: %s rejected", fen, m)
				continue
			}
			if !board.Validate() {
				t.Errorf("%s: inconsistent internals after %s", fen, m)
			}
			board.UnmakeMove(m, st)
			if got := board.ToFEN(); got != before {
				t.Fatalf("%s: unmake of %s gave %s", fen, m, got)
			}
			if board.Hash() != hash {
				t.Fatalf("%s: unmake of %s did not restore the hash", fen, m)
			}
		}
	}
}

func TestMakeMoveEnPassantBookkeeping(t *testing.T) {
	board := chessmg.NewBoard()

	// A double push opens the en-passant square behind the pawn.
	ok, _ := board.MakeMove(mustUCI(t, board, "e2e4"))
	testutil.AssertTrue(t, ok)
	testutil.AssertEqual(t, board.EnPassantSquare(), chessmg.SquareFromString("e3"))

	// Any reply clears it again.
	ok, _ = board.MakeMove(mustUCI(t, board, "g8f6"))
	testutil.AssertTrue(t, ok)
	testutil.AssertEqual(t, board.EnPassantSquare(), chessmg.NoSquare)
}

func TestMakeMoveEnPassantCapture(t *testing.T) {
	board := mustParse(t, "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1")
	m := mustUCI(t, board, "e5d6")
	testutil.AssertEqual(t, m.Flags(), uint8(chessmg.FlagEnPassant))
	ok, st := board.MakeMove(m)
	testutil.AssertTrue(t, ok)
	testutil.AssertEqual(t, board.PieceAt(chessmg.SquareFromString("d5")), chessmg.NoPiece, "captured pawn removed")
	testutil.AssertEqual(t, board.PieceAt(chessmg.SquareFromString("d6")), chessmg.WhitePawn)
	board.UnmakeMove(m, st)
	testutil.AssertEqual(t, board.PieceAt(chessmg.SquareFromString("d5")), chessmg.BlackPawn)
}

func TestMakeMoveCastlingRights(t *testing.T) {
	// Moving the king drops both rights, moving a rook its own side's one,
	// and capturing a rook on its home square the victim's.
	board := mustParse(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")

	ok, st := board.MakeMove(mustUCI(t, board, "e1f2"))
	testutil.AssertTrue(t, ok)
	testutil.AssertEqual(t, board.CastlingRights()&(chessmg.CastleWhiteKingside|chessmg.CastleWhiteQueenside), chessmg.CastlingRights(0))
	board.UnmakeMove(st.Move(), st)
	testutil.AssertEqual(t, board.CastlingRights(), chessmg.CastleWhiteKingside|chessmg.CastleWhiteQueenside|chessmg.CastleBlackKingside|chessmg.CastleBlackQueenside)

	ok, _ = board.MakeMove(mustUCI(t, board, "a1a8"))
	testutil.AssertTrue(t, ok)
	// Both the white queenside right (rook moved) and the black one (rook
	// captured at home) are gone.
	testutil.AssertEqual(t, board.CastlingRights(), chessmg.CastleWhiteKingside|chessmg.CastleBlackKingside)
}

func TestMakeMoveCastleMovesRook(t *testing.T) {
	board := mustParse(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	m := mustUCI(t, board, "e1g1")
	testutil.AssertTrue(t, m.IsKingsideCastle())
	ok, st := board.MakeMove(m)
	testutil.AssertTrue(t, ok)
	testutil.AssertEqual(t, board.PieceAt(chessmg.SquareFromString("g1")), chessmg.WhiteKing)
	testutil.AssertEqual(t, board.PieceAt(chessmg.SquareFromString("f1")), chessmg.WhiteRook)
	testutil.AssertEqual(t, board.PieceAt(chessmg.SquareFromString("h1")), chessmg.NoPiece)
	board.UnmakeMove(m, st)
	testutil.AssertEqual(t, board.PieceAt(chessmg.SquareFromString("h1")), chessmg.WhiteRook)
	testutil.AssertEqual(t, board.PieceAt(chessmg.SquareFromString("e1")), chessmg.WhiteKing)
}

func TestMakeMovePromotion(t *testing.T) {
	board := mustParse(t, "4k3/P7/8/8/8/8/8/4K3 w - - 0 1")
	m := mustUCI(t, board, "a7a8q")
	ok, st := board.MakeMove(m)
	testutil.AssertTrue(t, ok)
	testutil.AssertEqual(t, board.PieceAt(chessmg.SquareFromString("a8")), chessmg.WhiteQueen)
	board.UnmakeMove(m, st)
	testutil.AssertEqual(t, board.PieceAt(chessmg.SquareFromString("a7")), chessmg.WhitePawn)
	testutil.AssertEqual(t, board.PieceAt(chessmg.SquareFromString("a8")), chessmg.NoPiece)
}

func TestMakeMoveClocks(t *testing.T) {
	board := mustParse(t, "4k3/8/8/8/8/8/4P3/4K2R w - - 7 30")

	// Quiet rook move: halfmove clock advances.
	ok, st := board.MakeMove(mustUCI(t, board, "h1h2"))
	testutil.AssertTrue(t, ok)
	testutil.AssertEqual(t, board.HalfmoveClock(), 8)
	testutil.AssertEqual(t, board.FullmoveNumber(), 30, "fullmove bumps only after Black")
	board.UnmakeMove(st.Move(), st)

	// Pawn move: halfmove clock resets.
	ok, _ = board.MakeMove(mustUCI(t, board, "e2e4"))
	testutil.AssertTrue(t, ok)
	testutil.AssertEqual(t, board.HalfmoveClock(), 0)

	// Black's reply ends the move pair.
	ok, _ = board.MakeMove(mustUCI(t, board, "e8d7"))
	testutil.AssertTrue(t, ok)
	testutil.AssertEqual(t, board.FullmoveNumber(), 31)
}

func TestApplyRejectsIllegalMoves(t *testing.T) {
	board := chessmg.NewBoard()
	before := board.ToFEN()

	// A move generated for a different position is stale here.
	other := mustParse(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	stale := mustUCI(t, other, "e1g1")
	_, err := board.Apply(stale)
	testutil.AssertErrorIs(t, err, chessmg.ErrIllegalMove)
	testutil.AssertEqual(t, board.ToFEN(), before, "no mutation on failure")

	// Legal moves pass through.
	m := mustUCI(t, board, "e2e4")
	st, err := board.Apply(m)
	testutil.AssertNoError(t, err)
	board.UnmakeMove(m, st)
	testutil.AssertEqual(t, board.ToFEN(), before)
}

func TestMakeMoveRejectsSelfCheck(t *testing.T) {
	// The bishop on b4 pins the knight on d2; moving it exposes the king.
	board := mustParse(t, "4k3/8/8/8/1b6/8/3N4/4K3 w - - 0 1")
	pinned := chessmg.NewMove(
		chessmg.SquareFromString("d2"), chessmg.SquareFromString("b3"),
		chessmg.WhiteKnight, chessmg.NoPiece, chessmg.NoPiece, chessmg.FlagNone)
	before := board.ToFEN()
	ok, _ := board.MakeMove(pinned)
	testutil.AssertFalse(t, ok, "pinned knight move must be rejected")
	testutil.AssertEqual(t, board.ToFEN(), before, "board restored after rejection")
}

func TestNullMoveRoundTrip(t *testing.T) {
	board := mustParse(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	before := board.ToFEN()
	hash := board.Hash()

	st := board.MakeNullMove()
	testutil.AssertEqual(t, board.SideToMove(), chessmg.White)
	testutil.AssertEqual(t, board.EnPassantSquare(), chessmg.NoSquare)
	testutil.AssertTrue(t, board.Hash() != hash, "null move must change the key")

	board.UnmakeNullMove(st)
	testutil.AssertEqual(t, board.ToFEN(), before)
	testutil.AssertEqual(t, board.Hash(), hash)
}

func TestPushPopMoveStack(t *testing.T) {
	board := chessmg.NewBoard()
	start := board.ToFEN()
	var stack []chessmg.MoveState

	for _, uci := range []string{"e2e4", "e7e5", "g1f3", "b8c6"} {
		testutil.AssertTrue(t, board.PushMove(mustUCI(t, board, uci), &stack), "push %s", uci)
	}
	testutil.AssertEqual(t, len(stack), 4)

	for board.PopMove(&stack) {
	}
	testutil.AssertEqual(t, board.ToFEN(), start)
	testutil.AssertFalse(t, board.PopMove(&stack), "empty stack pops nothing")
}

func TestHashIgnoresClocks(t *testing.T) {
	a := mustParse(t, "4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	b := mustParse(t, "4k3/8/8/8/8/8/8/4K3 w - - 42 99")
	testutil.AssertEqual(t, a.Hash(), b.Hash(), "clocks are not part of the position identity")
}

func TestHashTransposes(t *testing.T) {
	// Two move orders into the same position must collide on purpose.
	a := chessmg.NewBoard()
	for _, uci := range []string{"g1f3", "g8f6", "b1c3", "b8c6"} {
		if ok, _ := a.MakeMove(mustUCI(t, a, uci)); !ok {
			t.Fatalf("move %s rejected", uci)
		}
	}
	b := chessmg.NewBoard()
	for _, uci := range []string{"b1c3", "b8c6", "g1f3", "g8f6"} {
		if ok, _ := b.MakeMove(mustUCI(t, b, uci)); !ok {
			t.Fatalf("move %s rejected", uci)
		}
	}
	testutil.AssertEqual(t, a.Hash(), b.Hash())
	testutil.AssertEqual(t, a.ToFEN(), b.ToFEN())
}
