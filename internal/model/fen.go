package model

import (
	"fmt"
	"strings"
)

var fenPieceTypes = map[rune]PieceType{
	'k': King,
	'q': Queen,
	'r': Rook,
	'b': Bishop,
	'n': Knight,
	'p': Pawn,
}

// ParseFEN loads a position. Castling rights become "has moved" flags on
// the rooks (and the king when both rights are gone), and an en-passant
// square becomes the double pawn advance that produced it. Move counters
// are ignored.
func ParseFEN(fen string) (*Board, *History, Color, error) {
	fields := strings.Fields(fen)
	if len(fields) < 2 {
		return nil, nil, "", fmt.Errorf("%w: need at least placement and side to move", ErrInvalidFEN)
	}

	board, err := parsePlacement(fields[0])
	if err != nil {
		return nil, nil, "", err
	}

	var toMove Color
	switch fields[1] {
	case "w":
		toMove = White
	case "b":
		toMove = Black
	default:
		return nil, nil, "", fmt.Errorf("%w: bad side to move %q", ErrInvalidFEN, fields[1])
	}

	history := NewHistory()
	rights := "-"
	if len(fields) > 2 {
		rights = fields[2]
	}
	applyCastlingRights(board, history, rights)

	if len(fields) > 3 && fields[3] != "-" {
		if err := applyEnPassant(board, history, toMove, fields[3]); err != nil {
			return nil, nil, "", err
		}
	}
	return board, history, toMove, nil
}

func parsePlacement(placement string) (*Board, error) {
	ranks := strings.Split(placement, "/")
	if len(ranks) != BoardSize {
		return nil, fmt.Errorf("%w: expected %d ranks, got %d", ErrInvalidFEN, BoardSize, len(ranks))
	}
	board := NewBoard()
	for row, rank := range ranks {
		col := 0
		for _, ch := range rank {
			if ch >= '1' && ch <= '8' {
				col += int(ch - '0')
				continue
			}
			lower := ch
			color := Black
			if ch >= 'A' && ch <= 'Z' {
				lower = ch + ('a' - 'A')
				color = White
			}
			kind, ok := fenPieceTypes[lower]
			if !ok {
				return nil, fmt.Errorf("%w: unknown piece %q", ErrInvalidFEN, ch)
			}
			if err := board.PlacePiece(row, col, NewPiece(color, kind)); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
			}
			col++
		}
		if col != BoardSize {
			return nil, fmt.Errorf("%w: rank %d has %d files", ErrInvalidFEN, row, col)
		}
	}
	return board, nil
}

func applyCastlingRights(board *Board, history *History, rights string) {
	for _, color := range Colors {
		long, short := 'Q', 'K'
		if color == Black {
			long, short = 'q', 'k'
		}
		row := color.homeRow()
		lost := 0
		for _, side := range castlingSides {
			right := short
			if side.length == Long {
				right = long
			}
			if strings.ContainsRune(rights, right) {
				continue
			}
			lost++
			if rook := board.PieceAt(row, side.rookCol); rook != nil {
				history.markMoved(rook)
			}
		}
		if king := board.PieceAt(row, kingHomeCol); king != nil && lost == len(castlingSides) {
			history.markMoved(king)
		}
	}
}

func applyEnPassant(board *Board, history *History, toMove Color, square string) error {
	target, err := parseSquare(square)
	if err != nil {
		return err
	}
	mover := toMove.Opponent()
	landed := Position{Row: target.Row + mover.forward(), Col: target.Col}
	pawn := board.PieceAt(landed.Row, landed.Col)
	if pawn == nil || pawn.Type() != Pawn || pawn.Color() != mover {
		return fmt.Errorf("%w: no pawn behind en-passant square %s", ErrInvalidFEN, square)
	}
	history.record(LastMove{
		PieceID: pawn.ID(),
		Color:   mover,
		From:    Position{Row: target.Row - mover.forward(), Col: target.Col},
		To:      landed,
		Kind:    KindMove,
	}, pawn)
	return nil
}

// parseSquare converts algebraic notation such as "e3" to a Position.
func parseSquare(square string) (Position, error) {
	if len(square) != 2 || square[0] < 'a' || square[0] > 'h' || square[1] < '1' || square[1] > '8' {
		return Position{}, fmt.Errorf("%w: bad square %q", ErrInvalidFEN, square)
	}
	return Position{Row: BoardSize - int(square[1]-'0'), Col: int(square[0] - 'a')}, nil
}
