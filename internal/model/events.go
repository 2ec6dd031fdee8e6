package model

type PlaceEvent struct {
	Row   int
	Col   int
	Piece *Piece
}

type MoveEvent struct {
	From  Position
	To    Position
	Piece *Piece
}

type RemoveEvent struct {
	Row int
	Col int
}

// Events is the board's notification channel. Each channel has a fixed
// payload type and its listeners run synchronously, in registration order,
// at the moment the mutation happens. Listeners must not mutate the board.
type Events struct {
	place     []func(PlaceEvent)
	move      []func(MoveEvent)
	remove    []func(RemoveEvent)
	check     []func(Color)
	checkmate []func(Color)
	stalemate []func(Color)
}

func (e *Events) OnPlace(fn func(PlaceEvent)) {
	e.place = append(e.place, fn)
}

func (e *Events) OnMove(fn func(MoveEvent)) {
	e.move = append(e.move, fn)
}

func (e *Events) OnRemove(fn func(RemoveEvent)) {
	e.remove = append(e.remove, fn)
}

func (e *Events) OnCheck(fn func(Color)) {
	e.check = append(e.check, fn)
}

func (e *Events) OnCheckmate(fn func(Color)) {
	e.checkmate = append(e.checkmate, fn)
}

func (e *Events) OnStalemate(fn func(Color)) {
	e.stalemate = append(e.stalemate, fn)
}

func (e *Events) emitPlace(ev PlaceEvent) {
	for _, fn := range e.place {
		fn(ev)
	}
}

func (e *Events) emitMove(ev MoveEvent) {
	for _, fn := range e.move {
		fn(ev)
	}
}

func (e *Events) emitRemove(ev RemoveEvent) {
	for _, fn := range e.remove {
		fn(ev)
	}
}

func emitColor(listeners []func(Color), color Color) {
	for _, fn := range listeners {
		fn(color)
	}
}

// watchesStatus reports whether anyone listens for check, checkmate or
// stalemate. Those are costly to compute and skipped otherwise.
func (e *Events) watchesStatus() bool {
	return len(e.check) > 0 || len(e.checkmate) > 0 || len(e.stalemate) > 0
}
