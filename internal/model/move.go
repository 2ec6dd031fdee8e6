package model

type MoveKind string

const (
	KindMove          MoveKind = "move"
	KindAttack        MoveKind = "attack"
	KindEnPassant     MoveKind = "en-passant"
	KindPromotion     MoveKind = "promotion"
	KindLongCastling  MoveKind = "long-castling"
	KindShortCastling MoveKind = "short-castling"
	// KindCheck marks a move onto the opposing king's square. Only
	// attack-detection searches produce it.
	KindCheck MoveKind = "check"
)

// Move is one reachable square for a piece. SelfCheck moves are reported
// so callers can explain why a square is unavailable, but they are never
// playable.
type Move struct {
	Row       int      `json:"row"`
	Col       int      `json:"col"`
	Kind      MoveKind `json:"kind"`
	SelfCheck bool     `json:"selfCheck"`
}

func (m Move) Target() Position {
	return Position{Row: m.Row, Col: m.Col}
}

// Legal drops the moves that would leave the mover in check.
func Legal(moves []Move) []Move {
	legal := make([]Move, 0, len(moves))
	for _, move := range moves {
		if !move.SelfCheck {
			legal = append(legal, move)
		}
	}
	return legal
}

type CastlingLength string

const (
	Long  CastlingLength = "long"
	Short CastlingLength = "short"
)

// castlingSide describes one castling on the mover's home row.
type castlingSide struct {
	length  CastlingLength
	kind    MoveKind
	rookCol int
	rookTo  int
	kingTo  int
	between []int
}

const kingHomeCol = 4

var castlingSides = []castlingSide{
	{length: Long, kind: KindLongCastling, rookCol: 0, rookTo: 3, kingTo: 2, between: []int{1, 2, 3}},
	{length: Short, kind: KindShortCastling, rookCol: 7, rookTo: 5, kingTo: 6, between: []int{5, 6}},
}

func castlingSideFor(length CastlingLength) (castlingSide, bool) {
	for _, side := range castlingSides {
		if side.length == length {
			return side, true
		}
	}
	return castlingSide{}, false
}

func castlingSideForKind(kind MoveKind) (castlingSide, bool) {
	for _, side := range castlingSides {
		if side.kind == kind {
			return side, true
		}
	}
	return castlingSide{}, false
}
