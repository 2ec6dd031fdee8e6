package model

import (
	"encoding/json"
	"fmt"
)

type UpdateType string

const (
	UpdateMove         UpdateType = "move"
	UpdateAttack       UpdateType = "attack"
	UpdateEnPassant    UpdateType = "en-passant"
	UpdatePromotion    UpdateType = "promotion"
	UpdateCastling     UpdateType = "castling"
	UpdateGiveUp       UpdateType = "give-up"
	UpdatePlayerAssign UpdateType = "player-assign"
)

// Update is the only action vocabulary that changes a game. It is what
// travels between participants, so it must stay plain JSON.
type Update struct {
	Type        UpdateType     `json:"type"`
	From        *Position      `json:"from,omitempty"`
	To          *Position      `json:"to,omitempty"`
	Replacement PieceType      `json:"replacement,omitempty"`
	Color       Color          `json:"color,omitempty"`
	Length      CastlingLength `json:"length,omitempty"`
	ID          string         `json:"id,omitempty"`
}

func ParseUpdate(data []byte) (Update, error) {
	var update Update
	if err := json.Unmarshal(data, &update); err != nil {
		return Update{}, fmt.Errorf("%w: %v", ErrMalformedUpdate, err)
	}
	if err := update.Validate(); err != nil {
		return Update{}, err
	}
	return update, nil
}

// Validate checks that the update carries the fields its type needs.
// It does not look at any board.
func (u Update) Validate() error {
	switch u.Type {
	case UpdateMove, UpdateAttack, UpdateEnPassant:
		return u.validateSquares()
	case UpdatePromotion:
		if err := u.validateSquares(); err != nil {
			return err
		}
		if !u.Replacement.promotable() {
			return fmt.Errorf("%w: cannot promote to %q", ErrMalformedUpdate, u.Replacement)
		}
	case UpdateCastling:
		if !u.Color.valid() {
			return fmt.Errorf("%w: bad color %q", ErrMalformedUpdate, u.Color)
		}
		if _, ok := castlingSideFor(u.Length); !ok {
			return fmt.Errorf("%w: bad castling length %q", ErrMalformedUpdate, u.Length)
		}
	case UpdateGiveUp:
		if !u.Color.valid() {
			return fmt.Errorf("%w: bad color %q", ErrMalformedUpdate, u.Color)
		}
	case UpdatePlayerAssign:
		if !u.Color.valid() {
			return fmt.Errorf("%w: bad color %q", ErrMalformedUpdate, u.Color)
		}
		if u.ID == "" {
			return fmt.Errorf("%w: player id is required", ErrMalformedUpdate)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrMalformedUpdate, u.Type)
	}
	return nil
}

func (u Update) validateSquares() error {
	if u.From == nil || u.To == nil {
		return fmt.Errorf("%w: %s needs from and to", ErrMalformedUpdate, u.Type)
	}
	if !u.From.inBounds() || !u.To.inBounds() {
		return fmt.Errorf("%w: %w", ErrMalformedUpdate, ErrOutOfBounds)
	}
	return nil
}

// changesBoard is true for the update types that go through MoveSearch.
func (u Update) changesBoard() bool {
	switch u.Type {
	case UpdateMove, UpdateAttack, UpdateEnPassant, UpdatePromotion, UpdateCastling:
		return true
	}
	return false
}

// moveKind is the MoveSearch kind the update must match.
func (u Update) moveKind() MoveKind {
	switch u.Type {
	case UpdateAttack:
		return KindAttack
	case UpdateEnPassant:
		return KindEnPassant
	case UpdatePromotion:
		return KindPromotion
	case UpdateCastling:
		side, _ := castlingSideFor(u.Length)
		return side.kind
	}
	return KindMove
}
