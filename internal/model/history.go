package model

// LastMove is the most recent board-changing action.
type LastMove struct {
	PieceID string   `json:"pieceId"`
	Color   Color    `json:"color"`
	From    Position `json:"from"`
	To      Position `json:"to"`
	Kind    MoveKind `json:"kind"`
}

// History holds what the grid alone cannot answer: which pieces have moved
// (castling rights) and the previous move (en-passant eligibility). Only the
// update protocol and position loading write to it.
type History struct {
	moved map[string]bool
	last  *LastMove
}

func NewHistory() *History {
	return &History{moved: make(map[string]bool)}
}

// HasMoved is false on a nil History.
func (h *History) HasMoved(piece *Piece) bool {
	return h != nil && h.moved[piece.ID()]
}

func (h *History) LastMove() *LastMove {
	if h == nil || h.last == nil {
		return nil
	}
	last := *h.last
	return &last
}

func (h *History) markMoved(pieces ...*Piece) {
	for _, piece := range pieces {
		h.moved[piece.ID()] = true
	}
}

func (h *History) record(last LastMove, moved ...*Piece) {
	h.markMoved(moved...)
	h.last = &last
}

// enPassantTarget returns the square a pawn standing at from could capture
// onto en passant, if the previous move was an adjacent double advance.
func (h *History) enPassantTarget(b *Board, pawn *Piece, from Position) (Position, bool) {
	last := h.LastMove()
	if last == nil || last.Color == pawn.Color() {
		return Position{}, false
	}
	victim := b.PieceAt(last.To.Row, last.To.Col)
	if victim == nil || victim.ID() != last.PieceID || victim.Type() != Pawn {
		return Position{}, false
	}
	if abs(last.To.Row-last.From.Row) != 2 || last.To.Row != from.Row || abs(last.To.Col-from.Col) != 1 {
		return Position{}, false
	}
	target := Position{Row: from.Row + pawn.Color().forward(), Col: last.To.Col}
	if b.PieceAt(target.Row, target.Col) != nil {
		return Position{}, false
	}
	return target, true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
