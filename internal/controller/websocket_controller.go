package controller

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/gofiber/websocket/v2"

	"koma/internal/model"
	"koma/internal/service"
	"koma/internal/ws"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// HandleConnection serves one websocket client of a game until it
// disconnects. Every state change of the game is pushed to it.
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	game, err := wsc.gameService.GetGame(gameID)
	if err != nil {
		if msg, merr := ws.NewMessage(ws.MessageTypeError, ws.ErrorPayload{Error: err.Error()}); merr == nil {
			c.WriteJSON(msg)
		}
		c.Close()
		return
	}

	game.RegisterConnection(c)
	defer game.UnregisterConnection(c)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("game %s: read error: %v", gameID, err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			wsc.sendError(game, c, fmt.Errorf("parse error: %w", err))
			continue
		}
		if err := wsc.handleMessage(game, msg); err != nil {
			wsc.sendError(game, c, err)
		}
	}
}

// handleMessage applies one client message. The resulting state reaches
// the client through the game's broadcast.
func (wsc *WebSocketController) handleMessage(game *model.Game, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeMove:
		var req model.MoveRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return err
		}
		_, err := req.Apply(game)
		return err
	case ws.MessageTypeDrop:
		var req model.DropRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return err
		}
		_, err := req.Apply(game)
		return err
	case ws.MessageTypeAI:
		_, err := game.PlayAI()
		return err
	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

func (wsc *WebSocketController) sendError(game *model.Game, c *websocket.Conn, err error) {
	msg, merr := ws.NewMessage(ws.MessageTypeError, ws.ErrorPayload{Error: err.Error()})
	if merr != nil {
		return
	}
	if err := game.Send(c, msg); err != nil {
		log.Printf("game %s: send error: %v", game.ID, err)
	}
}
