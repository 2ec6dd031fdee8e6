package model

import (
	"errors"
	"slices"
	"testing"
)

func TestStartFENMatchesSetup(t *testing.T) {
	b, h, toMove := mustParseFEN(t, StartFEN)
	if toMove != White {
		t.Fatalf("toMove = %s", toMove)
	}
	if !slices.Equal(layout(b), layout(newBoard())) {
		t.Fatalf("StartFEN and newBoard disagree")
	}
	if h.LastMove() != nil {
		t.Fatalf("start position has no last move")
	}
	for _, info := range b.Pieces() {
		if h.HasMoved(info.Piece) {
			t.Fatalf("%s on %d,%d marked as moved", info.Piece.Type(), info.Row, info.Col)
		}
	}
}

func TestParseSquare(t *testing.T) {
	tests := map[string]Position{
		"a8": {Row: 0, Col: 0},
		"h1": {Row: 7, Col: 7},
		"e3": {Row: 5, Col: 4},
		"d6": {Row: 2, Col: 3},
	}
	for square, want := range tests {
		if got := sq(t, square); got != want {
			t.Errorf("%s: got %v, want %v", square, got, want)
		}
	}
	for _, bad := range []string{"", "i1", "a9", "a0", "e33"} {
		if _, err := parseSquare(bad); !errors.Is(err, ErrInvalidFEN) {
			t.Errorf("%q: expected ErrInvalidFEN, got %v", bad, err)
		}
	}
}

func TestCastlingRightsBecomeMovedFlags(t *testing.T) {
	tests := []struct {
		rights string
		moved  []Position
	}{
		{"KQkq", nil},
		{"Kkq", []Position{{7, 0}}},
		{"Qkq", []Position{{7, 7}}},
		{"kq", []Position{{7, 0}, {7, 4}, {7, 7}}},
		{"-", []Position{{0, 0}, {0, 4}, {0, 7}, {7, 0}, {7, 4}, {7, 7}}},
	}
	for _, tt := range tests {
		t.Run(tt.rights, func(t *testing.T) {
			b, h, _ := mustParseFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R w "+tt.rights+" - 0 1")
			for _, pos := range []Position{{0, 0}, {0, 4}, {0, 7}, {7, 0}, {7, 4}, {7, 7}} {
				want := slices.Contains(tt.moved, pos)
				if got := h.HasMoved(b.PieceAt(pos.Row, pos.Col)); got != want {
					t.Errorf("%s moved = %v, want %v", pos, got, want)
				}
			}
		})
	}
}

func TestEnPassantSquareBecomesLastMove(t *testing.T) {
	tests := []struct {
		name     string
		fen      string
		from, to Position
		color    Color
	}{
		{"white pushed", "4k3/8/8/8/4P3/8/8/4K3 b - e3 0 1", Position{6, 4}, Position{4, 4}, White},
		{"black pushed", "4k3/8/8/3p4/8/8/8/4K3 w - d6 0 2", Position{1, 3}, Position{3, 3}, Black},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, h, _ := mustParseFEN(t, tt.fen)
			last := h.LastMove()
			if last == nil {
				t.Fatalf("no last move recorded")
			}
			if last.From != tt.from || last.To != tt.to || last.Color != tt.color {
				t.Fatalf("last move = %+v", last)
			}
			if pawn := b.PieceAt(tt.to.Row, tt.to.Col); pawn == nil || pawn.ID() != last.PieceID {
				t.Fatalf("last move does not point at the pawn")
			}
		})
	}
}

func TestParseFENErrors(t *testing.T) {
	tests := map[string]string{
		"empty":             "",
		"placement only":    "8/8/8/8/8/8/8/8",
		"seven ranks":       "8/8/8/8/8/8/8 w - - 0 1",
		"short rank":        "7/8/8/8/8/8/8/8 w - - 0 1",
		"long rank":         "9/8/8/8/8/8/8/8 w - - 0 1",
		"unknown piece":     "4x3/8/8/8/8/8/8/8 w - - 0 1",
		"bad side":          "4k3/8/8/8/8/8/8/4K3 x - - 0 1",
		"bad en passant":    "4k3/8/8/8/8/8/8/4K3 w - z9 0 1",
		"no pawn behind ep": "4k3/8/8/8/8/8/8/4K3 w - d6 0 1",
	}
	for name, fen := range tests {
		t.Run(name, func(t *testing.T) {
			if _, _, _, err := ParseFEN(fen); !errors.Is(err, ErrInvalidFEN) {
				t.Fatalf("expected ErrInvalidFEN, got %v", err)
			}
		})
	}
}
