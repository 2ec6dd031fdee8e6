package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/benbeisheim/chess-backend/internal/ws"
)

type recordingSocket struct {
	messages chan ws.Message
	err      error
}

func newRecordingSocket() *recordingSocket {
	return &recordingSocket{messages: make(chan ws.Message, outboxSize)}
}

func (s *recordingSocket) WriteJSON(v interface{}) error {
	if s.err != nil {
		return s.err
	}
	s.messages <- v.(ws.Message)
	return nil
}

func (s *recordingSocket) next(t *testing.T) ws.Message {
	t.Helper()
	select {
	case msg := <-s.messages:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatalf("no message written")
	}
	return ws.Message{}
}

func watch(g *Game, playerID string, conn socket) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()
	g.connections.add(playerID, conn)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not reached")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRelaySendsUpdateThenState(t *testing.T) {
	g := NewGame("relay")
	white, black := newRecordingSocket(), newRecordingSocket()
	watch(g, "white", white)
	watch(g, "black", black)

	e2e4 := moveUpdate(UpdateMove, Position{Row: 6, Col: 4}, Position{Row: 4, Col: 4})
	mustApply(t, g, e2e4)

	for name, conn := range map[string]*recordingSocket{"white": white, "black": black} {
		first := conn.next(t)
		if first.Type != ws.MessageTypeUpdate {
			t.Fatalf("%s: first message is %s, want update", name, first.Type)
		}
		var update Update
		if err := json.Unmarshal(first.Payload, &update); err != nil {
			t.Fatalf("%s: bad update payload: %v", name, err)
		}
		if update.Type != UpdateMove || *update.To != *e2e4.To {
			t.Fatalf("%s: relayed %+v", name, update)
		}

		second := conn.next(t)
		if second.Type != ws.MessageTypeGameState {
			t.Fatalf("%s: second message is %s, want gameState", name, second.Type)
		}
		var state struct {
			ToMove   Color     `json:"toMove"`
			LastMove *LastMove `json:"lastMove"`
		}
		if err := json.Unmarshal(second.Payload, &state); err != nil {
			t.Fatalf("%s: bad state payload: %v", name, err)
		}
		if state.ToMove != Black || state.LastMove == nil || state.LastMove.To != *e2e4.To {
			t.Fatalf("%s: state after the update = %+v", name, state)
		}
	}
}

func TestRejectedUpdateIsNotRelayed(t *testing.T) {
	g := NewGame("quiet")
	conn := newRecordingSocket()
	watch(g, "white", conn)

	if err := g.ApplyUpdate(moveUpdate(UpdateMove, Position{Row: 6, Col: 4}, Position{Row: 3, Col: 4})); err == nil {
		t.Fatalf("illegal move accepted")
	}
	g.SendError("white", "nope")
	if msg := conn.next(t); msg.Type != ws.MessageTypeError {
		t.Fatalf("expected only the error message, got %s", msg.Type)
	}
}

func TestWriterStopsWithLastConnection(t *testing.T) {
	g := NewGame("writer")
	watch(g, "white", newRecordingSocket())
	if g.connections.outbox == nil {
		t.Fatalf("writer not started")
	}

	g.connections.mu.Lock()
	g.connections.drop("white")
	g.connections.mu.Unlock()
	if g.connections.outbox != nil {
		t.Fatalf("outbox still open without connections")
	}

	// A later watcher gets a fresh writer.
	conn := newRecordingSocket()
	watch(g, "black", conn)
	g.SendError("black", "hello")
	if msg := conn.next(t); msg.Type != ws.MessageTypeError {
		t.Fatalf("got %s", msg.Type)
	}
}

func TestFailingSocketIsDropped(t *testing.T) {
	g := NewGame("broken")
	watch(g, "white", &recordingSocket{err: errors.New("broken pipe")})

	g.SendError("white", "hello")
	waitFor(t, func() bool { return g.ConnectionCount() == 0 })

	g.connections.mu.RLock()
	defer g.connections.mu.RUnlock()
	if g.connections.outbox != nil {
		t.Fatalf("writer kept running after its only socket failed")
	}
}

func TestCloseRefusesNewConnections(t *testing.T) {
	g := NewGame("closed")
	watch(g, "white", newRecordingSocket())
	g.Close()

	if g.ConnectionCount() != 0 || g.connections.outbox != nil {
		t.Fatalf("close left connections or writer behind")
	}
	// Sending after close is a no-op.
	g.SendError("white", "late")

	if err := g.RegisterConnection("white", nil); !errors.Is(err, ErrGameClosed) {
		t.Fatalf("expected ErrGameClosed, got %v", err)
	}
}
