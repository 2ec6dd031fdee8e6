package model

const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var backRank = [BoardSize]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// newBoard lays out the standard starting position. The layout is fixed,
// so a placement error is a programming bug.
func newBoard() *Board {
	board := NewBoard()
	for _, color := range Colors {
		home := color.homeRow()
		pawns := home + color.forward()
		for col := 0; col < BoardSize; col++ {
			mustPlace(board, home, col, NewPiece(color, backRank[col]))
			mustPlace(board, pawns, col, NewPiece(color, Pawn))
		}
	}
	return board
}

func mustPlace(board *Board, row, col int, piece *Piece) {
	if err := board.PlacePiece(row, col, piece); err != nil {
		panic(err)
	}
}
