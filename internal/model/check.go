package model

// IsCheck reports whether any opposing piece attacks color's king.
// It only runs attack-detection searches, so it never recurses into
// self-check filtering.
func (b *Board) IsCheck(color Color) bool {
	if b.PieceByColorAndType(color, King) == nil {
		return false
	}
	for _, info := range b.PiecesByColor(color.Opponent()) {
		for _, move := range Search(b, info.Piece, AttackDetection, nil) {
			if move.Kind == KindCheck {
				return true
			}
		}
	}
	return false
}

// HasLegalMoves reports whether any piece of color has a move that does not
// leave its own king attacked.
func (b *Board) HasLegalMoves(color Color, history *History) bool {
	for _, info := range b.PiecesByColor(color) {
		if len(Legal(Search(b, info.Piece, LegalOnly, history))) > 0 {
			return true
		}
	}
	return false
}

func (b *Board) IsCheckmate(color Color, history *History) bool {
	return b.IsCheck(color) && !b.HasLegalMoves(color, history)
}

func (b *Board) IsStalemate(color Color, history *History) bool {
	return !b.IsCheck(color) && !b.HasLegalMoves(color, history)
}

// announce emits check, checkmate and stalemate for color when they hold.
func (b *Board) announce(color Color, history *History) {
	if !b.events.watchesStatus() {
		return
	}
	check := b.IsCheck(color)
	if check {
		emitColor(b.events.check, color)
	}
	if b.HasLegalMoves(color, history) {
		return
	}
	if check {
		emitColor(b.events.checkmate, color)
	} else {
		emitColor(b.events.stalemate, color)
	}
}
