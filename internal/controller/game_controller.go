package controller

import (
	"errors"
	"log"

	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/gofiber/fiber/v2"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

type createGameRequest struct {
	FEN string `json:"fen"`
}

// statusFor maps domain errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, model.ErrInvalidTurn):
		return fiber.StatusForbidden
	case errors.Is(err, model.ErrColorTaken), errors.Is(err, model.ErrGameFull), errors.Is(err, service.ErrGameExists):
		return fiber.StatusConflict
	case errors.Is(err, model.ErrIllegalMove), errors.Is(err, model.ErrMalformedUpdate),
		errors.Is(err, model.ErrInvalidFEN), errors.Is(err, model.ErrMissingPiece):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func errorJSON(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	var req createGameRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
	}

	gameID, err := gc.gameService.CreateGame(req.FEN)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)

	color, err := gc.gameService.JoinGame(gameID, playerID)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game joined",
		"color":   color,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(gameState)
}

// GetLegalMoves lists the moves of the piece at ?row=&col=.
func (gc *GameController) GetLegalMoves(c *fiber.Ctx) error {
	row := c.QueryInt("row", -1)
	col := c.QueryInt("col", -1)
	if row < 0 || row >= model.BoardSize || col < 0 || col >= model.BoardSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "row and col must be between 0 and 7",
		})
	}

	moves, err := gc.gameService.LegalMoves(c.Params("gameId"), row, col)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{
		"moves": moves,
	})
}

// PostUpdate applies an update over plain HTTP, for clients without a socket.
func (gc *GameController) PostUpdate(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)

	update, err := model.ParseUpdate(c.Body())
	if err != nil {
		return errorJSON(c, err)
	}
	if err := gc.gameService.HandleUpdate(gameID, playerID, update); err != nil {
		if errors.Is(err, model.ErrMissingPiece) {
			log.Printf("game %s: update from %s references a missing piece: %v", gameID, playerID, err)
		}
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{
		"accepted": true,
	})
}

func (gc *GameController) JoinMatchmaking(c *fiber.Ctx) error {
	playerID := c.Locals("playerID").(string)

	if err := gc.gameService.JoinMatchmaking(playerID); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"status": "queued",
	})
}
