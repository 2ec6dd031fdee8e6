package model

type SearchMode int

const (
	// LegalOnly flags every candidate that would leave the mover's king
	// attacked and generates castling.
	LegalOnly SearchMode = iota
	// AttackDetection reports raw candidates and tags moves onto the
	// opposing king as KindCheck. It never filters for self-check, which
	// is what keeps IsCheck and legality from recursing into each other.
	AttackDetection
)

type offset struct {
	dr, dc int
}

var (
	orthogonal = []offset{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	diagonal   = []offset{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	allAround  = append(append([]offset{}, orthogonal...), diagonal...)
	knightHops = []offset{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
)

// movementRule describes how a piece type moves: rays slide until blocked,
// jumps land on a single square.
type movementRule struct {
	rays    []offset
	jumps   []offset
	pawn    bool
	castles bool
}

var movementRules = map[PieceType]movementRule{
	King:   {jumps: allAround, castles: true},
	Queen:  {rays: allAround},
	Rook:   {rays: orthogonal},
	Bishop: {rays: diagonal},
	Knight: {jumps: knightHops},
	Pawn:   {pawn: true},
}

type moveSearch struct {
	board   *Board
	piece   *Piece
	from    Position
	mode    SearchMode
	history *History
	moves   []Move
}

// Search lists the squares piece can reach on board. history supplies
// castling rights and en-passant eligibility; nil disables both.
func Search(board *Board, piece *Piece, mode SearchMode, history *History) []Move {
	from, ok := board.PieceCoords(piece)
	if !ok {
		return nil
	}
	s := &moveSearch{
		board:   board,
		piece:   piece,
		from:    from,
		mode:    mode,
		history: history,
	}
	rule := movementRules[piece.Type()]
	for _, d := range rule.rays {
		s.slide(d)
	}
	for _, d := range rule.jumps {
		s.jump(d)
	}
	if rule.pawn {
		s.pawn()
	}
	if mode == LegalOnly {
		if rule.castles {
			s.castling()
		}
		s.flagSelfCheck()
	}
	return s.moves
}

func (s *moveSearch) add(to Position, kind MoveKind) {
	if s.mode == AttackDetection {
		target := s.board.PieceAt(to.Row, to.Col)
		if target != nil && target.Type() == King && target.Color() != s.piece.Color() {
			kind = KindCheck
		}
	}
	s.moves = append(s.moves, Move{Row: to.Row, Col: to.Col, Kind: kind})
}

func (s *moveSearch) slide(d offset) {
	for to := s.from.offset(d); to.inBounds(); to = to.offset(d) {
		target := s.board.PieceAt(to.Row, to.Col)
		if target == nil {
			s.add(to, KindMove)
			continue
		}
		if target.Color() != s.piece.Color() {
			s.add(to, KindAttack)
		}
		return
	}
}

func (s *moveSearch) jump(d offset) {
	to := s.from.offset(d)
	if !to.inBounds() {
		return
	}
	target := s.board.PieceAt(to.Row, to.Col)
	switch {
	case target == nil:
		s.add(to, KindMove)
	case target.Color() != s.piece.Color():
		s.add(to, KindAttack)
	}
}

func (s *moveSearch) pawn() {
	color := s.piece.Color()
	dir := color.forward()
	startRow := color.homeRow() + dir

	one := Position{Row: s.from.Row + dir, Col: s.from.Col}
	if one.inBounds() && s.board.PieceAt(one.Row, one.Col) == nil {
		s.add(one, s.promoting(one, KindMove))
		two := Position{Row: one.Row + dir, Col: one.Col}
		if s.from.Row == startRow && s.board.PieceAt(two.Row, two.Col) == nil {
			s.add(two, KindMove)
		}
	}

	for _, dc := range []int{-1, 1} {
		to := Position{Row: s.from.Row + dir, Col: s.from.Col + dc}
		if !to.inBounds() {
			continue
		}
		if target := s.board.PieceAt(to.Row, to.Col); target != nil {
			if target.Color() != color {
				s.add(to, s.promoting(to, KindAttack))
			}
			continue
		}
		if target, ok := s.history.enPassantTarget(s.board, s.piece, s.from); ok && target == to {
			s.add(to, KindEnPassant)
		}
	}
}

// promoting retags pawn moves that land on the far rank.
func (s *moveSearch) promoting(to Position, kind MoveKind) MoveKind {
	if to.Row == s.piece.Color().Opponent().homeRow() {
		return KindPromotion
	}
	return kind
}

func (s *moveSearch) castling() {
	color := s.piece.Color()
	row := color.homeRow()
	if s.history == nil || s.from != (Position{Row: row, Col: kingHomeCol}) || s.history.HasMoved(s.piece) {
		return
	}
	if s.board.IsCheck(color) {
		return
	}
	for _, side := range castlingSides {
		if s.canCastle(row, side) {
			s.moves = append(s.moves, Move{Row: row, Col: side.kingTo, Kind: side.kind})
		}
	}
}

func (s *moveSearch) canCastle(row int, side castlingSide) bool {
	rook := s.board.PieceAt(row, side.rookCol)
	if rook == nil || rook.Type() != Rook || rook.Color() != s.piece.Color() || s.history.HasMoved(rook) {
		return false
	}
	for _, col := range side.between {
		if s.board.PieceAt(row, col) != nil {
			return false
		}
	}
	// The king's start square was checked by the caller; it may not pass
	// through or land on an attacked square either.
	for _, col := range []int{side.rookTo, side.kingTo} {
		sim := s.board.Copy()
		if err := sim.MovePiece(s.piece, row, col); err != nil || sim.IsCheck(s.piece.Color()) {
			return false
		}
	}
	return true
}

func (s *moveSearch) flagSelfCheck() {
	for i := range s.moves {
		sim := s.board.Copy()
		if err := playOn(sim, s.piece, s.from, s.moves[i]); err != nil {
			s.moves[i].SelfCheck = true
			continue
		}
		s.moves[i].SelfCheck = sim.IsCheck(s.piece.Color())
	}
}

// playOn applies a generated move to a simulated board. The pawn keeps its
// type on promotion since that cannot change whether its own king is safe.
func playOn(b *Board, piece *Piece, from Position, move Move) error {
	switch move.Kind {
	case KindEnPassant:
		if victim := b.PieceAt(from.Row, move.Col); victim != nil {
			if err := b.RemovePiece(victim); err != nil {
				return err
			}
		}
	case KindLongCastling, KindShortCastling:
		side, _ := castlingSideForKind(move.Kind)
		rook := b.PieceAt(from.Row, side.rookCol)
		if rook == nil {
			return ErrMissingPiece
		}
		if err := b.MovePiece(rook, from.Row, side.rookTo); err != nil {
			return err
		}
	default:
		if victim := b.PieceAt(move.Row, move.Col); victim != nil {
			if err := b.RemovePiece(victim); err != nil {
				return err
			}
		}
	}
	return b.MovePiece(piece, move.Row, move.Col)
}
