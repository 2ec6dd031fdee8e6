package model

import (
	"sort"
	"testing"
)

func mustParseFEN(t *testing.T, fen string) (*Board, *History, Color) {
	t.Helper()
	board, history, toMove, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q) failed: %v", fen, err)
	}
	return board, history, toMove
}

func mustGame(t *testing.T, fen string) *Game {
	t.Helper()
	game, err := NewGameFromFEN("test", fen)
	if err != nil {
		t.Fatalf("NewGameFromFEN(%q) failed: %v", fen, err)
	}
	return game
}

func sq(t *testing.T, square string) Position {
	t.Helper()
	p, err := parseSquare(square)
	if err != nil {
		t.Fatalf("bad square %q: %v", square, err)
	}
	return p
}

func moveUpdate(kind UpdateType, from, to Position) Update {
	return Update{Type: kind, From: &from, To: &to}
}

// updateFor builds the update that plays a generated move.
func updateFor(color Color, from Position, move Move) Update {
	to := move.Target()
	switch move.Kind {
	case KindAttack:
		return moveUpdate(UpdateAttack, from, to)
	case KindEnPassant:
		return moveUpdate(UpdateEnPassant, from, to)
	case KindPromotion:
		u := moveUpdate(UpdatePromotion, from, to)
		u.Replacement = Queen
		return u
	case KindLongCastling:
		return Update{Type: UpdateCastling, Color: color, Length: Long}
	case KindShortCastling:
		return Update{Type: UpdateCastling, Color: color, Length: Short}
	}
	return moveUpdate(UpdateMove, from, to)
}

func mustApply(t *testing.T, g *Game, updates ...Update) {
	t.Helper()
	for i, u := range updates {
		if err := g.ApplyUpdate(u); err != nil {
			t.Fatalf("update %d (%+v) rejected: %v", i, u, err)
		}
	}
}

// layout renders a board as sorted "row,col:color type" entries.
func layout(b *Board) []string {
	var out []string
	for _, info := range b.Pieces() {
		out = append(out, Position{Row: info.Row, Col: info.Col}.String()+":"+string(info.Piece.Color())+" "+string(info.Piece.Type()))
	}
	sort.Strings(out)
	return out
}

func findMove(moves []Move, row, col int) (Move, bool) {
	for _, m := range moves {
		if m.Row == row && m.Col == col {
			return m, true
		}
	}
	return Move{}, false
}
