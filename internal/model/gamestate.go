package model

type GameResult string

const (
	ResultNone        GameResult = ""
	ResultCheckmate   GameResult = "checkmate"
	ResultStalemate   GameResult = "stalemate"
	ResultResignation GameResult = "resignation"
)

// GameState derives the status of a game from its board on every call.
// Nothing is cached.
type GameState struct {
	board   *Board
	history *History
	players *Players
}

func NewGameState(board *Board, history *History, players *Players) GameState {
	return GameState{board: board, history: history, players: players}
}

// SideToMove is the opponent of whoever moved last. It differs from the
// players' turn only after a move ended the game and the turn was kept.
func (s GameState) SideToMove() Color {
	if last := s.history.LastMove(); last != nil {
		return last.Color.Opponent()
	}
	return s.players.Turn()
}

func (s GameState) IsCheck(color Color) bool {
	return s.board.IsCheck(color)
}

func (s GameState) IsCheckmate(color Color) bool {
	return s.board.IsCheckmate(color, s.history)
}

func (s GameState) IsStalemate(color Color) bool {
	return s.board.IsStalemate(color, s.history)
}

func (s GameState) IsEnded() bool {
	return s.Result() != ResultNone
}

func (s GameState) Result() GameResult {
	if s.players.Resigned() != "" {
		return ResultResignation
	}
	toMove := s.SideToMove()
	if s.board.HasLegalMoves(toMove, s.history) {
		return ResultNone
	}
	if s.board.IsCheck(toMove) {
		return ResultCheckmate
	}
	return ResultStalemate
}

// Winner is empty while the game runs and after a stalemate.
func (s GameState) Winner() Color {
	switch s.Result() {
	case ResultResignation:
		return s.players.Resigned().Opponent()
	case ResultCheckmate:
		return s.SideToMove().Opponent()
	}
	return ""
}
