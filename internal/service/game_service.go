package service

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"koma/internal/model"
	"koma/pkg/shogi"
)

var ErrGameNotFound = errors.New("game not found")

// NewGameRequest configures a session. Zero values fall back to the
// server configuration.
type NewGameRequest struct {
	Human    string `json:"human"`
	Strategy string `json:"strategy"`
	Depth    *int   `json:"depth"`
	Seed     int64  `json:"seed"`
}

type GameService struct {
	cfg    shogi.Config
	logger *log.Logger

	mu    sync.RWMutex
	games map[string]*model.Game
}

func NewGameService(cfg shogi.Config, logger *log.Logger) *GameService {
	return &GameService{
		cfg:    cfg,
		logger: logger,
		games:  make(map[string]*model.Game),
	}
}

func (gs *GameService) CreateGame(req NewGameRequest) (*model.Game, error) {
	human, err := model.ParseHumanSide(req.Human)
	if err != nil {
		return nil, err
	}
	name := req.Strategy
	if name == "" {
		name = gs.cfg.Strategy
	}
	depth := gs.cfg.Depth
	if req.Depth != nil {
		depth = *req.Depth
	}
	if depth < 0 || depth > 6 {
		return nil, fmt.Errorf("depth %d out of range 0..6", depth)
	}
	seed := req.Seed
	if seed == 0 {
		seed = gs.cfg.Seed
	}
	ai, err := shogi.NewStrategy(name, depth, seed)
	if err != nil {
		return nil, err
	}

	gameID := uuid.New().String()
	game := model.NewGame(gameID, human, ai, gs.logger)

	gs.mu.Lock()
	defer gs.mu.Unlock()
	if _, exists := gs.games[gameID]; exists {
		return nil, errors.New("game already exists")
	}
	gs.games[gameID] = game
	return game, nil
}

func (gs *GameService) GetGame(gameID string) (*model.Game, error) {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	game, exists := gs.games[gameID]
	if !exists {
		return nil, ErrGameNotFound
	}
	return game, nil
}

func (gs *GameService) DeleteGame(gameID string) error {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	if _, exists := gs.games[gameID]; !exists {
		return ErrGameNotFound
	}
	delete(gs.games, gameID)
	return nil
}
