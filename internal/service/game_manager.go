// service/game_manager.go
package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
)

type GameManager struct {
	games            map[string]*model.Game
	queue            *model.Queue
	matchingChannels map[string]chan string
	mu               sync.RWMutex
	stop             chan struct{}
}

func NewGameManager(tick time.Duration) *GameManager {
	gm := &GameManager{
		games:            make(map[string]*model.Game),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan string),
		stop:             make(chan struct{}),
	}

	// Start matchmaking processor
	go gm.processMatchmaking(tick)

	return gm
}

// Close stops the matchmaking processor and every game's relay.
func (gm *GameManager) Close() {
	close(gm.stop)

	gm.mu.Lock()
	defer gm.mu.Unlock()
	for _, game := range gm.games {
		game.Close()
	}
}

// RemoveGame forgets a game and stops its relay.
func (gm *GameManager) RemoveGame(gameID string) {
	gm.mu.Lock()
	game, exists := gm.games[gameID]
	delete(gm.games, gameID)
	gm.mu.Unlock()

	if exists {
		game.Close()
	}
}

func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	// Replace any channel left over from an earlier connection
	if existingCh, exists := gm.matchingChannels[playerID]; exists {
		delete(gm.matchingChannels, playerID)
		close(existingCh)
	}

	gm.matchingChannels[playerID] = ch
	return nil
}

func (gm *GameManager) UnregisterMatchmakingChannel(playerID string, ch chan string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	// The owner of the channel closes it; only forget our reference here
	if current, exists := gm.matchingChannels[playerID]; exists && current == ch {
		delete(gm.matchingChannels, playerID)
	}
}

func (gm *GameManager) processMatchmaking(tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-gm.stop:
			return
		case <-ticker.C:
			gm.matchPlayers()
		}
	}
}

// matchPlayers pairs queued players into new games and notifies them.
func (gm *GameManager) matchPlayers() {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	for {
		player1, player2, ok := gm.queue.NextPair()
		if !ok {
			return
		}

		gameID := uuid.New().String()
		game := model.NewGame(gameID)

		p1Color, err := game.AddPlayer(player1.ID)
		if err != nil {
			log.Printf("error adding player %s to game %s: %v", player1.ID, gameID, err)
			continue
		}
		p2Color, err := game.AddPlayer(player2.ID)
		if err != nil {
			log.Printf("error adding player %s to game %s: %v", player2.ID, gameID, err)
			continue
		}
		gm.games[gameID] = game

		if !gm.notifyMatch(player1.ID, model.MatchFoundEvent{GameID: gameID, Color: p1Color}) ||
			!gm.notifyMatch(player2.ID, model.MatchFoundEvent{GameID: gameID, Color: p2Color}) {
			log.Printf("failed to notify all players of match %s", gameID)
		}
	}
}

// notifyMatch sends the event and retires the player's channel.
func (gm *GameManager) notifyMatch(playerID string, event model.MatchFoundEvent) bool {
	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		return false
	}
	select {
	case ch <- mustJSON(event):
		delete(gm.matchingChannels, playerID)
		close(ch)
		return true
	default:
		log.Printf("failed to send match event to player %s", playerID)
		return false
	}
}

// Helper function for JSON marshaling
func mustJSON(v interface{}) string {
	bytes, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(bytes)
}

func (gm *GameManager) CreateGame(gameID string, fen string) error {
	var game *model.Game
	if fen == "" {
		game = model.NewGame(gameID)
	} else {
		var err error
		if game, err = model.NewGameFromFEN(gameID, fen); err != nil {
			return err
		}
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return ErrGameExists
	}
	gm.games[gameID] = game
	return nil
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return game, nil
}

func (gm *GameManager) AddPlayerToGame(gameID string, playerID string) (model.Color, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return "", err
	}
	return game.AddPlayer(playerID)
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	return gm.queue.AddPlayer(model.Player{ID: playerID})
}

func (gm *GameManager) GetGameState(gameID string) (model.GameSnapshot, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.GameSnapshot{}, err
	}
	return game.GetState(), nil
}

func (gm *GameManager) LegalMoves(gameID string, row, col int) ([]model.Move, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	return game.LegalMoves(row, col)
}

func (gm *GameManager) ApplyUpdate(gameID string, playerID string, update model.Update) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.ApplyUpdateAs(playerID, update)
}

func (gm *GameManager) RegisterConnection(gameID string, playerID string, conn *websocket.Conn) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

func (gm *GameManager) UnregisterConnection(gameID string, playerID string, conn *websocket.Conn) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(playerID, conn)

	// A finished game is kept only while someone is still watching it.
	if game.IsEnded() && game.ConnectionCount() == 0 {
		log.Printf("removing finished game %s", gameID)
		gm.RemoveGame(gameID)
	}
}

func (gm *GameManager) SendError(gameID string, playerID string, msg string) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return
	}
	game.SendError(playerID, msg)
}
