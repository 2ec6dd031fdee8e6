package model

import (
	"encoding/json"

	"github.com/google/uuid"
)

type PieceType string

const (
	King   PieceType = "king"
	Queen  PieceType = "queen"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Knight PieceType = "knight"
	Pawn   PieceType = "pawn"
)

func (t PieceType) valid() bool {
	switch t {
	case King, Queen, Rook, Bishop, Knight, Pawn:
		return true
	}
	return false
}

// promotable reports whether a pawn may be replaced by this type.
func (t PieceType) promotable() bool {
	switch t {
	case Queen, Rook, Bishop, Knight:
		return true
	}
	return false
}

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

var Colors = []Color{White, Black}

func (c Color) valid() bool {
	return c == White || c == Black
}

func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

// homeRow is the back rank the color starts on.
func (c Color) homeRow() int {
	if c == White {
		return BoardSize - 1
	}
	return 0
}

// forward is the row delta of a pawn advance.
func (c Color) forward() int {
	if c == White {
		return -1
	}
	return 1
}

// Piece is immutable once created. Promotion replaces a pawn with a new
// Piece rather than changing its type.
type Piece struct {
	id    string
	color Color
	kind  PieceType
}

func NewPiece(color Color, kind PieceType) *Piece {
	return &Piece{
		id:    uuid.NewString(),
		color: color,
		kind:  kind,
	}
}

func (p *Piece) ID() string {
	return p.id
}

func (p *Piece) Color() Color {
	return p.color
}

func (p *Piece) Type() PieceType {
	return p.kind
}

func (p *Piece) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID    string    `json:"id"`
		Type  PieceType `json:"type"`
		Color Color     `json:"color"`
	}{p.id, p.kind, p.color})
}
