package model

import (
	"fmt"
	"log"
	"sync"
)

// Game owns one board and applies updates to it one at a time.
type Game struct {
	ID          string
	mu          sync.Mutex
	board       *Board
	history     *History
	players     *Players
	connections *GameConnections
	listeners   []func(Update)
}

type GameSnapshot struct {
	ID       string      `json:"id"`
	Pieces   []PieceInfo `json:"pieces"`
	ToMove   Color       `json:"toMove"`
	IsCheck  bool        `json:"isCheck"`
	Result   GameResult  `json:"result"`
	Winner   Color       `json:"winner"`
	LastMove *LastMove   `json:"lastMove"`
	Players  struct {
		White ClientPlayer `json:"white"`
		Black ClientPlayer `json:"black"`
	} `json:"players"`
}

func NewGame(id string) *Game {
	return newGame(id, newBoard(), NewHistory(), White)
}

// NewGameFromFEN starts a game from an arbitrary position.
func NewGameFromFEN(id string, fen string) (*Game, error) {
	board, history, toMove, err := ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	return newGame(id, board, history, toMove), nil
}

func newGame(id string, board *Board, history *History, toMove Color) *Game {
	g := &Game{
		ID:          id,
		board:       board,
		history:     history,
		players:     NewPlayers(toMove),
		connections: NewGameConnections(),
	}
	g.listeners = append(g.listeners, g.relay)
	return g
}

// Events exposes the board's notification channels. Listeners run while
// the game lock is held and must not call back into the Game.
func (g *Game) Events() *Events {
	return g.board.Events()
}

// OnUpdate registers a listener for accepted updates. Same locking rule as
// Events.
func (g *Game) OnUpdate(fn func(Update)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, fn)
}

func (g *Game) state() GameState {
	return NewGameState(g.board, g.history, g.players)
}

// AddPlayer seats a player in the first free color.
func (g *Game) AddPlayer(playerID string) (Color, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if color, ok := g.players.ColorOf(playerID); ok {
		return color, nil
	}
	for _, color := range Colors {
		if g.players.ID(color) != "" {
			continue
		}
		if err := g.applyUpdate(Update{Type: UpdatePlayerAssign, Color: color, ID: playerID}); err != nil {
			return "", err
		}
		return color, nil
	}
	return "", ErrGameFull
}

func (g *Game) GetState() GameSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

func (g *Game) snapshot() GameSnapshot {
	state := g.state()
	toMove := state.SideToMove()
	snapshot := GameSnapshot{
		ID:       g.ID,
		Pieces:   g.board.Pieces(),
		ToMove:   toMove,
		IsCheck:  state.IsCheck(toMove),
		Result:   state.Result(),
		Winner:   state.Winner(),
		LastMove: g.history.LastMove(),
	}
	snapshot.Players.White = g.players.client(White)
	snapshot.Players.Black = g.players.client(Black)
	return snapshot
}

// IsEnded reports whether the game is over by checkmate, stalemate or
// resignation.
func (g *Game) IsEnded() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state().IsEnded()
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.isPlayerInGame(playerID)
}

func (g *Game) isPlayerInGame(playerID string) bool {
	_, ok := g.players.ColorOf(playerID)
	return ok
}

func (g *Game) CanSpectate() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.canSpectate()
}

func (g *Game) canSpectate() bool {
	return g.players.ID(White) == "" || g.players.ID(Black) == ""
}

// LegalMoves runs a legal-mode search for the piece on (row, col). Moves
// flagged SelfCheck are included.
func (g *Game) LegalMoves(row, col int) ([]Move, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	piece := g.board.PieceAt(row, col)
	if piece == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingPiece, Position{Row: row, Col: col})
	}
	return Search(g.board, piece, LegalOnly, g.history), nil
}

// ApplyUpdate validates and applies one update. A nil error means the
// update was accepted; any rejection leaves the game untouched.
func (g *Game) ApplyUpdate(update Update) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.applyUpdate(update)
}

// ApplyUpdateAs applies an update on behalf of a seated player, who must
// own the acting color.
func (g *Game) ApplyUpdateAs(playerID string, update Update) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := update.Validate(); err != nil {
		return err
	}
	if update.Type == UpdatePlayerAssign {
		return fmt.Errorf("%w: seats are assigned by joining", ErrInvalidTurn)
	}
	color, err := g.actingColor(update)
	if err != nil {
		return err
	}
	if g.players.ID(color) != playerID {
		return fmt.Errorf("%w: player %s does not play %s", ErrInvalidTurn, playerID, color)
	}
	return g.applyUpdate(update)
}

func (g *Game) applyUpdate(update Update) error {
	if err := update.Validate(); err != nil {
		log.Printf("game %s: rejected update: %v", g.ID, err)
		return err
	}
	switch update.Type {
	case UpdatePlayerAssign:
		if err := g.players.Set(update.Color, update.ID); err != nil {
			return err
		}
	case UpdateGiveUp:
		if !g.players.CanPlay(update.Color) || g.state().IsEnded() {
			return fmt.Errorf("%w: %s cannot give up now", ErrInvalidTurn, update.Color)
		}
		g.players.giveUp(update.Color)
	default:
		if err := g.applyMove(update); err != nil {
			return err
		}
	}
	for _, fn := range g.listeners {
		fn(update)
	}
	return nil
}

// actingColor is the color an update acts for.
func (g *Game) actingColor(update Update) (Color, error) {
	if !update.changesBoard() || update.Type == UpdateCastling {
		return update.Color, nil
	}
	piece := g.board.PieceAt(update.From.Row, update.From.Col)
	if piece == nil {
		return "", fmt.Errorf("%w: %s", ErrMissingPiece, *update.From)
	}
	return piece.Color(), nil
}

func (g *Game) applyMove(update Update) error {
	color, err := g.actingColor(update)
	if err != nil {
		return err
	}
	if !g.players.CanPlay(color) {
		return fmt.Errorf("%w: %s cannot move now", ErrInvalidTurn, color)
	}
	g.players.lock()

	piece, from, move, err := g.validateMove(color, update)
	if err != nil {
		g.players.unlock()
		return err
	}

	last, moved, err := g.executeMove(update, piece, from, move)
	if err != nil {
		// Validation covers every square touched here, so this is a bug in
		// the protocol rather than a bad update. The turn stays locked.
		log.Printf("game %s: update %s failed mid-application: %v", g.ID, update.Type, err)
		return err
	}
	g.history.record(last, moved...)

	g.board.announce(color.Opponent(), g.history)
	if !g.state().IsEnded() {
		g.players.advance()
	}
	return nil
}

// validateMove finds the legal-mode Move the update names.
func (g *Game) validateMove(color Color, update Update) (*Piece, Position, Move, error) {
	var piece *Piece
	var target Position
	if update.Type == UpdateCastling {
		piece = g.board.PieceByColorAndType(color, King)
		if piece == nil {
			return nil, Position{}, Move{}, fmt.Errorf("%w: no %s king", ErrMissingPiece, color)
		}
		side, _ := castlingSideFor(update.Length)
		target = Position{Row: color.homeRow(), Col: side.kingTo}
	} else {
		piece = g.board.PieceAt(update.From.Row, update.From.Col)
		target = *update.To
	}
	from, _ := g.board.PieceCoords(piece)
	kind := update.moveKind()

	for _, move := range Search(g.board, piece, LegalOnly, g.history) {
		if move.Target() != target || move.Kind != kind {
			continue
		}
		if move.SelfCheck {
			return nil, Position{}, Move{}, fmt.Errorf("%w: %s %s to %s leaves the king in check", ErrIllegalMove, piece.Type(), kind, target)
		}
		return piece, from, move, nil
	}
	return nil, Position{}, Move{}, fmt.Errorf("%w: %s %s from %s to %s", ErrIllegalMove, piece.Type(), kind, from, target)
}

// executeMove performs the board mutations for a validated update and
// returns what the history should record.
func (g *Game) executeMove(update Update, piece *Piece, from Position, move Move) (LastMove, []*Piece, error) {
	to := move.Target()
	last := LastMove{PieceID: piece.ID(), Color: piece.Color(), From: from, To: to, Kind: move.Kind}

	switch update.Type {
	case UpdateMove:
		return last, []*Piece{piece}, g.board.MovePiece(piece, to.Row, to.Col)

	case UpdateAttack:
		if err := g.capture(to); err != nil {
			return last, nil, err
		}
		return last, []*Piece{piece}, g.board.MovePiece(piece, to.Row, to.Col)

	case UpdateEnPassant:
		if err := g.capture(Position{Row: from.Row, Col: to.Col}); err != nil {
			return last, nil, err
		}
		return last, []*Piece{piece}, g.board.MovePiece(piece, to.Row, to.Col)

	case UpdatePromotion:
		if g.board.PieceAt(to.Row, to.Col) != nil {
			if err := g.capture(to); err != nil {
				return last, nil, err
			}
		}
		if err := g.board.RemovePiece(piece); err != nil {
			return last, nil, err
		}
		replacement := NewPiece(piece.Color(), update.Replacement)
		if err := g.board.PlacePiece(from.Row, from.Col, replacement); err != nil {
			return last, nil, err
		}
		last.PieceID = replacement.ID()
		return last, []*Piece{replacement}, g.board.MovePiece(replacement, to.Row, to.Col)

	case UpdateCastling:
		side, _ := castlingSideFor(update.Length)
		rook := g.board.PieceAt(from.Row, side.rookCol)
		if rook == nil {
			return last, nil, fmt.Errorf("%w: no rook for %s castling", ErrMissingPiece, side.length)
		}
		if err := g.board.MovePiece(rook, from.Row, side.rookTo); err != nil {
			return last, nil, err
		}
		return last, []*Piece{piece, rook}, g.board.MovePiece(piece, from.Row, side.kingTo)
	}
	return last, nil, fmt.Errorf("%w: unknown type %q", ErrMalformedUpdate, update.Type)
}

func (g *Game) capture(at Position) error {
	victim := g.board.PieceAt(at.Row, at.Col)
	if victim == nil {
		return fmt.Errorf("%w: nothing to capture at %s", ErrMissingPiece, at)
	}
	return g.board.RemovePiece(victim)
}
