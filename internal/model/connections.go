package model

import (
	"fmt"
	"log"
	"sync"

	"github.com/benbeisheim/chess-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
)

const outboxSize = 64

// socket is what the writer needs from a connection.
type socket interface {
	WriteJSON(v interface{}) error
}

type outbound struct {
	playerID string // empty means every connection
	message  ws.Message
}

// GameConnections holds the sockets watching one game. All writes go
// through a single writer goroutine so messages leave in the order they
// were queued and no socket is written concurrently. The writer runs only
// while at least one socket is registered.
type GameConnections struct {
	connections map[string]socket // playerID -> connection
	mu          sync.RWMutex
	outbox      chan outbound // nil while nobody is connected
	closed      bool
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]socket),
	}
}

func (gc *GameConnections) count() int {
	gc.mu.RLock()
	defer gc.mu.RUnlock()
	return len(gc.connections)
}

// add registers a socket and starts the writer if it is the first one.
// Caller holds gc.mu.
func (gc *GameConnections) add(playerID string, conn socket) {
	gc.connections[playerID] = conn
	if gc.outbox == nil {
		gc.outbox = make(chan outbound, outboxSize)
		go gc.run(gc.outbox)
	}
}

// drop forgets a socket and stops the writer after the last one.
// Caller holds gc.mu.
func (gc *GameConnections) drop(playerID string) {
	delete(gc.connections, playerID)
	if len(gc.connections) == 0 && gc.outbox != nil {
		close(gc.outbox)
		gc.outbox = nil
	}
}

// close stops the writer for good; later registrations are refused.
func (gc *GameConnections) close() {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.closed = true
	for playerID := range gc.connections {
		gc.drop(playerID)
	}
	if gc.outbox != nil {
		close(gc.outbox)
		gc.outbox = nil
	}
}

func (gc *GameConnections) send(playerID string, message ws.Message) {
	gc.mu.RLock()
	defer gc.mu.RUnlock()
	if gc.outbox == nil {
		return
	}
	select {
	case gc.outbox <- outbound{playerID: playerID, message: message}:
	default:
		log.Printf("outbox full, dropping %s message", message.Type)
	}
}

func (gc *GameConnections) run(outbox <-chan outbound) {
	for out := range outbox {
		gc.mu.RLock()
		if gc.outbox != outbox {
			// A newer writer owns the sockets now.
			gc.mu.RUnlock()
			continue
		}
		targets := make(map[string]socket, len(gc.connections))
		for playerID, conn := range gc.connections {
			if out.playerID == "" || out.playerID == playerID {
				targets[playerID] = conn
			}
		}
		gc.mu.RUnlock()

		for playerID, conn := range targets {
			if err := conn.WriteJSON(out.message); err != nil {
				log.Printf("failed to send %s to player %s: %v", out.message.Type, playerID, err)
				gc.mu.Lock()
				if gc.connections[playerID] == conn {
					gc.drop(playerID)
				}
				gc.mu.Unlock()
			}
		}
	}
}

func (g *Game) RegisterConnection(playerID string, conn *websocket.Conn) error {
	g.mu.Lock()
	isAuthorized := g.isPlayerInGame(playerID) || g.canSpectate()
	g.mu.Unlock()

	if !isAuthorized {
		return fmt.Errorf("player %s is not authorized to join game %s", playerID, g.ID)
	}

	g.connections.mu.Lock()
	if g.connections.closed {
		g.connections.mu.Unlock()
		return fmt.Errorf("game %s: %w", g.ID, ErrGameClosed)
	}
	if _, exists := g.connections.connections[playerID]; exists {
		// If we already have a healthy connection, keep it and reject the new one
		g.connections.mu.Unlock()
		conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "Connection already exists"),
		)
		conn.Close()
		return nil
	}
	g.connections.add(playerID, conn)
	g.connections.mu.Unlock()
	log.Printf("registered connection %p for player %s in game %s", conn, playerID, g.ID)

	g.mu.Lock()
	snapshot := g.snapshot()
	g.mu.Unlock()
	if msg, err := ws.NewMessage(ws.MessageTypeGameState, snapshot); err == nil {
		g.connections.send(playerID, msg)
	}
	return nil
}

func (g *Game) UnregisterConnection(playerID string, conn *websocket.Conn) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	// Only unregister if this is still the current connection
	if current, exists := g.connections.connections[playerID]; exists && current == conn {
		log.Printf("unregistering connection %p for player %s in game %s", conn, playerID, g.ID)
		g.connections.drop(playerID)
	}
}

// ConnectionCount is the number of sockets watching the game.
func (g *Game) ConnectionCount() int {
	return g.connections.count()
}

// Close stops relaying the game. Sockets still open are no longer written.
func (g *Game) Close() {
	g.connections.close()
}

// SendError queues an error message for a single player.
func (g *Game) SendError(playerID string, errorMsg string) {
	g.connections.send(playerID, ws.NewError(errorMsg))
}

// relay forwards an accepted update and the resulting state to every
// connection. It runs inside ApplyUpdate, under the game lock.
func (g *Game) relay(update Update) {
	if g.connections.count() == 0 {
		return
	}
	if msg, err := ws.NewMessage(ws.MessageTypeUpdate, update); err == nil {
		g.connections.send("", msg)
	} else {
		log.Printf("failed to marshal update: %v", err)
	}
	if msg, err := ws.NewMessage(ws.MessageTypeGameState, g.snapshot()); err == nil {
		g.connections.send("", msg)
	} else {
		log.Printf("failed to marshal state: %v", err)
	}
}
