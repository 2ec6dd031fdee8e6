package model

import (
	"fmt"
)

const BoardSize = 8

type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) inBounds() bool {
	return p.Row >= 0 && p.Row < BoardSize && p.Col >= 0 && p.Col < BoardSize
}

func (p Position) offset(d offset) Position {
	return Position{Row: p.Row + d.dr, Col: p.Col + d.dc}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// PieceInfo is a registry entry: where a piece currently stands.
type PieceInfo struct {
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	Piece *Piece `json:"piece"`
}

// Board is the authoritative grid plus a registry keyed by piece id.
// It is a mechanism only: it never checks whether a mutation is legal chess.
type Board struct {
	field  [BoardSize][BoardSize]*Piece
	pieces map[string]*PieceInfo
	events Events
}

func NewBoard() *Board {
	return &Board{
		pieces: make(map[string]*PieceInfo),
	}
}

// Copy returns an independent board with the same placement and no
// listeners. Pieces are immutable, so they are shared with the original.
func (b *Board) Copy() *Board {
	c := NewBoard()
	for id, info := range b.pieces {
		c.field[info.Row][info.Col] = info.Piece
		c.pieces[id] = &PieceInfo{Row: info.Row, Col: info.Col, Piece: info.Piece}
	}
	return c
}

func (b *Board) Events() *Events {
	return &b.events
}

func (b *Board) PlacePiece(row, col int, piece *Piece) error {
	pos := Position{Row: row, Col: col}
	if !pos.inBounds() {
		return fmt.Errorf("place %s: %w", pos, ErrOutOfBounds)
	}
	if b.field[row][col] != nil {
		return fmt.Errorf("place %s: %w", pos, ErrOccupiedCell)
	}
	if _, exists := b.pieces[piece.ID()]; exists {
		return fmt.Errorf("place %s: %w", pos, ErrPieceOnBoard)
	}
	b.field[row][col] = piece
	b.pieces[piece.ID()] = &PieceInfo{Row: row, Col: col, Piece: piece}
	b.events.emitPlace(PlaceEvent{Row: row, Col: col, Piece: piece})
	return nil
}

// MovePiece relocates a registered piece. The target must be empty or
// already hold the piece; captures remove the victim first.
func (b *Board) MovePiece(piece *Piece, row, col int) error {
	to := Position{Row: row, Col: col}
	info, ok := b.pieces[piece.ID()]
	if !ok {
		return fmt.Errorf("move to %s: %w", to, ErrMissingPiece)
	}
	if !to.inBounds() {
		return fmt.Errorf("move to %s: %w", to, ErrOutOfBounds)
	}
	if occupant := b.field[row][col]; occupant != nil && occupant != piece {
		return fmt.Errorf("move to %s: %w", to, ErrOccupiedCell)
	}
	from := Position{Row: info.Row, Col: info.Col}
	b.field[from.Row][from.Col] = nil
	b.field[row][col] = piece
	b.events.emitRemove(RemoveEvent{Row: from.Row, Col: from.Col})
	info.Row = row
	info.Col = col
	b.events.emitPlace(PlaceEvent{Row: row, Col: col, Piece: piece})
	b.events.emitMove(MoveEvent{From: from, To: to, Piece: piece})
	return nil
}

func (b *Board) RemovePiece(piece *Piece) error {
	info, ok := b.pieces[piece.ID()]
	if !ok {
		return fmt.Errorf("remove %s: %w", piece.ID(), ErrMissingPiece)
	}
	b.field[info.Row][info.Col] = nil
	delete(b.pieces, piece.ID())
	b.events.emitRemove(RemoveEvent{Row: info.Row, Col: info.Col})
	return nil
}

// PieceAt returns nil for empty or out-of-range squares.
func (b *Board) PieceAt(row, col int) *Piece {
	if !(Position{Row: row, Col: col}).inBounds() {
		return nil
	}
	return b.field[row][col]
}

func (b *Board) PieceCoords(piece *Piece) (Position, bool) {
	info, ok := b.pieces[piece.ID()]
	if !ok {
		return Position{}, false
	}
	return Position{Row: info.Row, Col: info.Col}, true
}

// Pieces lists every piece in row-major order.
func (b *Board) Pieces() []PieceInfo {
	pieces := make([]PieceInfo, 0, len(b.pieces))
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			if piece := b.field[row][col]; piece != nil {
				pieces = append(pieces, PieceInfo{Row: row, Col: col, Piece: piece})
			}
		}
	}
	return pieces
}

func (b *Board) PiecesByColor(color Color) []PieceInfo {
	pieces := []PieceInfo{}
	for _, info := range b.Pieces() {
		if info.Piece.Color() == color {
			pieces = append(pieces, info)
		}
	}
	return pieces
}

// PieceByColorAndType returns the first match in row-major order, or nil.
func (b *Board) PieceByColorAndType(color Color, kind PieceType) *Piece {
	for _, info := range b.PiecesByColor(color) {
		if info.Piece.Type() == kind {
			return info.Piece
		}
	}
	return nil
}
