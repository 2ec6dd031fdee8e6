package model

import "fmt"

type Player struct {
	ID    string
	Color Color
}

type ClientPlayer struct {
	ID    string `json:"id"`
	Color Color  `json:"color"`
}

// Players tracks seats and turn ownership. The turn is locked while an
// update is validated and applied, and stays locked once the game is over.
type Players struct {
	seats    map[Color]string
	turn     Color
	locked   bool
	resigned Color
}

func NewPlayers(turn Color) *Players {
	return &Players{
		seats: make(map[Color]string),
		turn:  turn,
	}
}

func (p *Players) Turn() Color {
	return p.turn
}

func (p *Players) Resigned() Color {
	return p.resigned
}

func (p *Players) ID(color Color) string {
	return p.seats[color]
}

func (p *Players) ColorOf(playerID string) (Color, bool) {
	for _, color := range Colors {
		if playerID != "" && p.seats[color] == playerID {
			return color, true
		}
	}
	return "", false
}

// CanPlay reports whether color may act right now.
func (p *Players) CanPlay(color Color) bool {
	return !p.locked && p.resigned == "" && p.turn == color
}

// Set binds a player id to a color. Rebinding the same id is a no-op; an
// id already seated in the other color is refused.
func (p *Players) Set(color Color, playerID string) error {
	if current := p.seats[color]; current != "" && current != playerID {
		return fmt.Errorf("%s: %w", color, ErrColorTaken)
	}
	if other, ok := p.ColorOf(playerID); ok && other != color {
		return fmt.Errorf("%s already plays %s: %w", playerID, other, ErrColorTaken)
	}
	p.seats[color] = playerID
	return nil
}

func (p *Players) lock() {
	p.locked = true
}

func (p *Players) unlock() {
	p.locked = false
}

// advance hands the turn to the other color and releases the lock.
func (p *Players) advance() {
	p.turn = p.turn.Opponent()
	p.locked = false
}

func (p *Players) giveUp(color Color) {
	p.resigned = color
	p.locked = true
}

func (p *Players) client(color Color) ClientPlayer {
	return ClientPlayer{ID: p.seats[color], Color: color}
}
