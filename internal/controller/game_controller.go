package controller

import (
	"bytes"

	"github.com/gofiber/fiber/v2"

	"koma/internal/model"
	"koma/internal/service"
	"koma/pkg/shogi"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	var req service.NewGameRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return sendError(c, err)
		}
	}
	game, err := gc.gameService.CreateGame(req)
	if err != nil {
		return sendError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(game.GetState())
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	game, err := gc.gameService.GetGame(c.Params("gameId"))
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(game.GetState())
}

func (gc *GameController) DeleteGame(c *fiber.Ctx) error {
	if err := gc.gameService.DeleteGame(c.Params("gameId")); err != nil {
		return sendError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LegalMoves answers GET /moves?row=&col= with the destinations of the
// piece on that square.
func (gc *GameController) LegalMoves(c *fiber.Ctx) error {
	game, err := gc.gameService.GetGame(c.Params("gameId"))
	if err != nil {
		return sendError(c, err)
	}
	sq := shogi.Square{Row: c.QueryInt("row", -1), Col: c.QueryInt("col", -1)}
	moves, err := game.LegalMoves(sq)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"from":  model.NewSquareView(sq),
		"moves": moves,
	})
}

// LegalDrops answers GET /drops?piece= with every legal drop square, or
// with a verdict for one square when row and col are given.
func (gc *GameController) LegalDrops(c *fiber.Ctx) error {
	game, err := gc.gameService.GetGame(c.Params("gameId"))
	if err != nil {
		return sendError(c, err)
	}
	t, err := shogi.ParsePieceType(c.Query("piece"))
	if err != nil {
		return sendError(c, err)
	}
	if c.Query("row") == "" && c.Query("col") == "" {
		return c.JSON(fiber.Map{
			"piece": t.String(),
			"drops": game.LegalDrops(t),
		})
	}
	sq := shogi.Square{Row: c.QueryInt("row", -1), Col: c.QueryInt("col", -1)}
	resp := fiber.Map{
		"piece": t.String(),
		"to":    model.NewSquareView(sq),
		"legal": true,
	}
	if err := game.CheckDrop(t, sq); err != nil {
		resp["legal"] = false
		resp["reason"] = err.Error()
	}
	return c.JSON(resp)
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	game, err := gc.gameService.GetGame(c.Params("gameId"))
	if err != nil {
		return sendError(c, err)
	}
	var req model.MoveRequest
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, err)
	}
	state, err := req.Apply(game)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) MakeDrop(c *fiber.Ctx) error {
	game, err := gc.gameService.GetGame(c.Params("gameId"))
	if err != nil {
		return sendError(c, err)
	}
	var req model.DropRequest
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, err)
	}
	state, err := req.Apply(game)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) PlayAI(c *fiber.Ctx) error {
	game, err := gc.gameService.GetGame(c.Params("gameId"))
	if err != nil {
		return sendError(c, err)
	}
	state, err := game.PlayAI()
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(state)
}

// ExportKIF returns the game as KIF text. ?sjis=true encodes it as
// Shift_JIS for older viewers.
func (gc *GameController) ExportKIF(c *fiber.Ctx) error {
	game, err := gc.gameService.GetGame(c.Params("gameId"))
	if err != nil {
		return sendError(c, err)
	}
	shiftJIS := c.QueryBool("sjis", false)
	var buf bytes.Buffer
	if err := game.WriteKIF(&buf, shiftJIS); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	charset := "utf-8"
	if shiftJIS {
		charset = "shift_jis"
	}
	c.Attachment(game.ID + ".kif")
	c.Set(fiber.HeaderContentType, "text/plain; charset="+charset)
	return c.Send(buf.Bytes())
}
