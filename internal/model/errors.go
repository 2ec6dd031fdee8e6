package model

import "errors"

var (
	ErrInvalidTurn     = errors.New("not your turn")
	ErrIllegalMove     = errors.New("invalid move, not legal")
	ErrMissingPiece    = errors.New("no piece at square")
	ErrMalformedUpdate = errors.New("malformed update")
	ErrOccupiedCell    = errors.New("cell is occupied")
	ErrOutOfBounds     = errors.New("invalid move, out of bounds")
	ErrPieceOnBoard    = errors.New("piece already on board")
	ErrColorTaken      = errors.New("color already taken")
	ErrGameFull        = errors.New("game is full")
	ErrInvalidFEN      = errors.New("invalid fen")
	ErrGameClosed      = errors.New("game is closed")
)
