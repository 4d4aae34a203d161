package server

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"koma/internal/controller"
	"koma/internal/service"
	"koma/pkg/shogi"
)

type Options struct {
	Config       shogi.Config
	AllowOrigins string
}

// New builds the HTTP application: the REST play API under /api and the
// per-game websocket under /ws.
func New(opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "koma",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())

	allowOrigins := opts.AllowOrigins
	if allowOrigins == "" {
		allowOrigins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))

	var gameLogger *log.Logger
	if opts.Config.Logging {
		app.Use(logger.New())
		gameLogger = log.New(os.Stderr, "game ", log.LstdFlags|log.Lshortfile)
	}

	gameService := service.NewGameService(opts.Config, gameLogger)
	gameController := controller.NewGameController(gameService)
	wsController := controller.NewWebSocketController(gameService)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/games/:gameId", websocket.New(wsController.HandleConnection, websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}))

	api := app.Group("/api")
	games := api.Group("/games")
	games.Post("/", gameController.CreateGame)
	games.Get("/:gameId", gameController.GetGameState)
	games.Delete("/:gameId", gameController.DeleteGame)
	games.Get("/:gameId/moves", gameController.LegalMoves)
	games.Get("/:gameId/drops", gameController.LegalDrops)
	games.Post("/:gameId/move", gameController.MakeMove)
	games.Post("/:gameId/drop", gameController.MakeDrop)
	games.Post("/:gameId/ai", gameController.PlayAI)
	games.Get("/:gameId/kif", gameController.ExportKIF)

	return app
}
