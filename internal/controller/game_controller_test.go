package controller

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benbeisheim/chess-backend/internal/config"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/gofiber/fiber/v2"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	gm := service.NewGameManager(time.Hour)
	t.Cleanup(gm.Close)

	app := fiber.New()
	RegisterRoutes(app, service.NewGameService(gm), config.Default())
	return app
}

// do sends a request as playerID and decodes the JSON response into out.
func do(t *testing.T, app *fiber.App, method, target, playerID, body string, out any) int {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if playerID != "" {
		req.Header.Set("X-Player-ID", playerID)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, target, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: bad JSON: %v", method, target, err)
		}
	}
	return resp.StatusCode
}

func createGame(t *testing.T, app *fiber.App, body string) string {
	t.Helper()
	var created struct {
		GameID string `json:"game_id"`
	}
	if code := do(t, app, http.MethodPost, "/api/game/create", "alice", body, &created); code != fiber.StatusOK {
		t.Fatalf("create returned %d", code)
	}
	if created.GameID == "" {
		t.Fatalf("no game id returned")
	}
	return created.GameID
}

func TestPlayerIDRequired(t *testing.T) {
	app := newTestApp(t)
	if code := do(t, app, http.MethodPost, "/api/game/create", "", "", nil); code != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
	if code := do(t, app, http.MethodPost, "/api/game/create?playerId=alice", "", "", nil); code != fiber.StatusOK {
		t.Fatalf("query parameter id rejected: %d", code)
	}
}

func TestGameFlow(t *testing.T) {
	app := newTestApp(t)
	id := createGame(t, app, "")

	var joined struct {
		Color model.Color `json:"color"`
	}
	if code := do(t, app, http.MethodPost, "/api/game/join/"+id, "alice", "", &joined); code != fiber.StatusOK || joined.Color != model.White {
		t.Fatalf("alice join: %d %s", code, joined.Color)
	}
	if code := do(t, app, http.MethodPost, "/api/game/join/"+id, "bob", "", &joined); code != fiber.StatusOK || joined.Color != model.Black {
		t.Fatalf("bob join: %d %s", code, joined.Color)
	}
	if code := do(t, app, http.MethodPost, "/api/game/join/"+id, "carol", "", nil); code != fiber.StatusConflict {
		t.Fatalf("third player: expected 409, got %d", code)
	}

	e2e4 := `{"type":"move","from":{"row":6,"col":4},"to":{"row":4,"col":4}}`
	tests := []struct {
		name   string
		player string
		body   string
		want   int
	}{
		{"out of turn", "bob", e2e4, fiber.StatusForbidden},
		{"malformed", "alice", `{"type":"move"}`, fiber.StatusBadRequest},
		{"illegal", "alice", `{"type":"move","from":{"row":6,"col":4},"to":{"row":3,"col":4}}`, fiber.StatusBadRequest},
		{"empty square", "alice", `{"type":"move","from":{"row":4,"col":4},"to":{"row":3,"col":4}}`, fiber.StatusBadRequest},
		{"accepted", "alice", e2e4, fiber.StatusOK},
		{"same move twice", "alice", e2e4, fiber.StatusBadRequest},
		{"reply", "bob", `{"type":"move","from":{"row":1,"col":4},"to":{"row":3,"col":4}}`, fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := do(t, app, http.MethodPost, "/api/game/"+id+"/update", tt.player, tt.body, nil); code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, code)
			}
		})
	}

	var state model.GameSnapshot
	if code := do(t, app, http.MethodGet, "/api/game/"+id, "alice", "", &state); code != fiber.StatusOK {
		t.Fatalf("state returned %d", code)
	}
	if state.ToMove != model.White || state.LastMove == nil || state.LastMove.To != (model.Position{Row: 3, Col: 4}) {
		t.Fatalf("unexpected state: %+v", state)
	}
	if state.Players.White.ID != "alice" || state.Players.Black.ID != "bob" {
		t.Fatalf("unexpected players: %+v", state.Players)
	}
}

func TestSeatsSurviveLaterRequests(t *testing.T) {
	app := newTestApp(t)
	id := createGame(t, app, "")

	tests := []struct {
		player string
		code   int
	}{
		{"alice", fiber.StatusOK},
		{"bob", fiber.StatusOK},
		{"carol", fiber.StatusConflict},
		{"xavel", fiber.StatusConflict},
		{"dave", fiber.StatusConflict},
	}
	for _, tt := range tests {
		if code := do(t, app, http.MethodPost, "/api/game/join/"+id, tt.player, "", nil); code != tt.code {
			t.Fatalf("%s join: expected %d, got %d", tt.player, tt.code, code)
		}
	}

	var state model.GameSnapshot
	do(t, app, http.MethodGet, "/api/game/"+id+"?playerId=somebody-else", "", "", &state)
	if state.Players.White.ID != "alice" || state.Players.Black.ID != "bob" {
		t.Fatalf("seats changed after later requests: %+v", state.Players)
	}
}

func TestGetLegalMoves(t *testing.T) {
	app := newTestApp(t)
	id := createGame(t, app, `{"fen":"4k3/8/8/8/8/8/8/R3K3 w Q - 0 1"}`)

	var body struct {
		Moves []model.Move `json:"moves"`
	}
	if code := do(t, app, http.MethodGet, "/api/game/"+id+"/moves?row=7&col=4", "alice", "", &body); code != fiber.StatusOK {
		t.Fatalf("moves returned %d", code)
	}
	castles := 0
	for _, m := range body.Moves {
		if m.Kind == model.KindLongCastling {
			castles++
		}
	}
	if len(body.Moves) != 6 || castles != 1 {
		t.Fatalf("king moves = %+v", body.Moves)
	}

	codes := map[string]int{
		"/api/game/" + id + "/moves?row=4&col=4": fiber.StatusBadRequest,
		"/api/game/" + id + "/moves?row=9&col=0": fiber.StatusBadRequest,
		"/api/game/" + id + "/moves":             fiber.StatusBadRequest,
		"/api/game/missing/moves?row=0&col=0":    fiber.StatusNotFound,
	}
	for target, want := range codes {
		if code := do(t, app, http.MethodGet, target, "alice", "", nil); code != want {
			t.Errorf("%s: expected %d, got %d", target, want, code)
		}
	}
}

func TestCreateGameRejectsBadFEN(t *testing.T) {
	app := newTestApp(t)
	if code := do(t, app, http.MethodPost, "/api/game/create", "alice", `{"fen":"8/8 w"}`, nil); code != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	if code := do(t, app, http.MethodGet, "/api/game/missing", "alice", "", nil); code != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
}

func TestMatchmakingJoin(t *testing.T) {
	app := newTestApp(t)
	var body struct {
		Status string `json:"status"`
	}
	if code := do(t, app, http.MethodPost, "/api/game/matchmaking/join", "alice", "", &body); code != fiber.StatusOK || body.Status != "queued" {
		t.Fatalf("join: %d %q", code, body.Status)
	}
	if code := do(t, app, http.MethodPost, "/api/game/matchmaking/join", "alice", "", nil); code != fiber.StatusConflict {
		t.Fatalf("second join: expected 409, got %d", code)
	}
}

func TestWebSocketRoutesRequireUpgrade(t *testing.T) {
	app := newTestApp(t)
	if code := do(t, app, http.MethodGet, "/ws/game/abc", "", "", nil); code != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without a player id, got %d", code)
	}
	if code := do(t, app, http.MethodGet, "/ws/game/abc", "alice", "", nil); code != fiber.StatusUpgradeRequired {
		t.Fatalf("expected 426 for a plain request, got %d", code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.ErrGameNotFound, fiber.StatusNotFound},
		{model.ErrInvalidTurn, fiber.StatusForbidden},
		{model.ErrColorTaken, fiber.StatusConflict},
		{model.ErrGameFull, fiber.StatusConflict},
		{model.ErrIllegalMove, fiber.StatusBadRequest},
		{model.ErrMalformedUpdate, fiber.StatusBadRequest},
		{io.EOF, fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("%v: got %d, want %d", tt.err, got, tt.want)
		}
	}
}
