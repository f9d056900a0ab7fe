// Package app wires the turn engine to a shared external store with a
// per-game mutual-exclusion discipline, so concurrent callers mutating the
// same game are serialized and every read-apply-write cycle is atomic per
// game.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rummikub/internal/domain"
	"rummikub/internal/engine"
	"rummikub/internal/ports"
)

const gameKeyPrefix = "rummikub:games:"

// Options tunes the lock discipline and persistence policy.
type Options struct {
	// LockTTL bounds how long a crashed holder can block a game.
	LockTTL time.Duration
	// LockRetryInterval is the fixed delay between acquisition attempts.
	LockRetryInterval time.Duration
	// LockMaxAttempts bounds the acquisition loop before surfacing a
	// transient lock_not_acquired failure.
	LockMaxAttempts int
	// CompletedGameTTL expires finished games from the store.
	CompletedGameTTL time.Duration
}

func (o Options) withDefaults() Options {
	if o.LockTTL <= 0 {
		o.LockTTL = 5 * time.Second
	}
	if o.LockRetryInterval <= 0 {
		o.LockRetryInterval = 100 * time.Millisecond
	}
	if o.LockMaxAttempts <= 0 {
		o.LockMaxAttempts = 50
	}
	if o.CompletedGameTTL <= 0 {
		o.CompletedGameTTL = 24 * time.Hour
	}
	return o
}

// Service is the caller-facing game service. All mutations of a game run
// under that game's advisory lock; the engine itself stays pure.
type Service struct {
	store  ports.Store
	engine *engine.Engine
	log    *zap.Logger
	opts   Options

	// sessionID namespaces this instance's lock holder tokens.
	sessionID string
}

// NewService constructs a Service. A nil engine gets a time-seeded default;
// a nil logger is replaced with a no-op logger.
func NewService(store ports.Store, eng *engine.Engine, logger *zap.Logger, opts Options) *Service {
	if eng == nil {
		eng = engine.New(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		engine:    eng,
		log:       logger,
		opts:      opts.withDefaults(),
		sessionID: uuid.NewString(),
	}
}

func gameKey(gameID string) string {
	return gameKeyPrefix + gameID
}

func lockKey(gameID string) string {
	return gameKey(gameID) + ":lock"
}

// CreateGame creates and persists a new game waiting for numPlayers players.
func (s *Service) CreateGame(ctx context.Context, numPlayers int) (domain.GameState, error) {
	state, err := s.engine.CreateGame(uuid.NewString(), numPlayers)
	if err != nil {
		return domain.GameState{}, err
	}
	if err := s.saveGameState(ctx, state); err != nil {
		return domain.GameState{}, err
	}
	s.log.Info("game created",
		zap.String("game_id", state.GameID),
		zap.String("name", state.Name),
		zap.Int("num_players", numPlayers))
	return state, nil
}

// JoinGame adds a player to a game by display name. Joining twice with the
// same name returns the current state instead of a second seat. Once the
// configured seat count is reached the game starts: 14 tiles are dealt to
// each player and the turn order is fixed. The returned state is curated for
// the joining player.
func (s *Service) JoinGame(ctx context.Context, gameID, playerName string) (domain.GameState, error) {
	var curated domain.GameState
	err := s.withGameLock(ctx, gameID, func(ctx context.Context) error {
		state, err := s.loadGameState(ctx, gameID)
		if err != nil {
			return err
		}

		if existing, ok := state.PlayerByName(playerName); ok {
			curated = curateFor(state, existing.ID)
			return nil
		}

		state, err = s.engine.AddPlayer(state, uuid.NewString(), playerName)
		if err != nil {
			return err
		}
		if len(state.Players) == state.NumPlayers {
			state, err = s.engine.StartGame(state)
			if err != nil {
				return err
			}
			s.log.Info("game started", zap.String("game_id", gameID), zap.Int("players", len(state.Players)))
		}

		if err := s.saveGameState(ctx, state); err != nil {
			return err
		}
		player, ok := state.PlayerByName(playerName)
		if !ok {
			return domain.NewError(domain.ErrGameState, fmt.Sprintf("player %s not found after joining", playerName))
		}
		curated = curateFor(state, player.ID)
		return nil
	})
	if err != nil {
		return domain.GameState{}, err
	}
	return curated, nil
}

// GetGame returns the game state curated for the named player: their own
// rack in full, every other rack reduced to a tile count. Reads run outside
// the lock and may trail an in-flight write by one update.
func (s *Service) GetGame(ctx context.Context, gameID, playerName string) (domain.GameState, error) {
	state, err := s.loadGameState(ctx, gameID)
	if err != nil {
		return domain.GameState{}, err
	}
	player, ok := state.PlayerByName(playerName)
	if !ok {
		return domain.GameState{}, domain.NewError(domain.ErrPlayerNotInGame, fmt.Sprintf("player %s not in game %s", playerName, gameID))
	}
	return curateFor(state, player.ID), nil
}

// GetGames lists all stored games, skipping entries that fail to decode.
func (s *Service) GetGames(ctx context.Context) ([]domain.GameState, error) {
	keys, err := s.store.Keys(ctx, gameKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	games := make([]domain.GameState, 0, len(keys))
	for _, key := range keys {
		if strings.HasSuffix(key, ":lock") {
			continue
		}
		data, err := s.store.Get(ctx, key)
		if err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				continue
			}
			return nil, err
		}
		state, err := decodeGameState(data)
		if err != nil {
			s.log.Warn("skipping corrupt game entry", zap.String("key", key), zap.Error(err))
			continue
		}
		games = append(games, state)
	}
	return games, nil
}

// ExecuteTurn applies one player action under the game's lock and persists
// the result. Engine failures persist nothing and surface unchanged; the
// returned state is curated for the acting player.
func (s *Service) ExecuteTurn(ctx context.Context, gameID, playerID string, action domain.Action) (domain.GameState, error) {
	var curated domain.GameState
	err := s.withGameLock(ctx, gameID, func(ctx context.Context) error {
		state, err := s.loadGameState(ctx, gameID)
		if err != nil {
			return err
		}
		next, err := s.engine.ApplyAction(state, playerID, action)
		if err != nil {
			return err
		}
		if err := s.saveGameState(ctx, next); err != nil {
			return err
		}
		if next.Status == domain.StatusCompleted {
			s.log.Info("game completed",
				zap.String("game_id", gameID),
				zap.String("winner", next.WinnerPlayerID))
		}
		curated = curateFor(next, playerID)
		return nil
	})
	if err != nil {
		return domain.GameState{}, err
	}
	return curated, nil
}

func (s *Service) loadGameState(ctx context.Context, gameID string) (domain.GameState, error) {
	data, err := s.store.Get(ctx, gameKey(gameID))
	if errors.Is(err, ports.ErrNotFound) {
		return domain.GameState{}, domain.NewError(domain.ErrGameNotFound, fmt.Sprintf("game %s not found", gameID))
	}
	if err != nil {
		return domain.GameState{}, fmt.Errorf("failed to load game %s: %w", gameID, err)
	}
	return decodeGameState(data)
}

func (s *Service) saveGameState(ctx context.Context, state domain.GameState) error {
	data, err := encodeGameState(state)
	if err != nil {
		return err
	}
	var ttl time.Duration
	if state.Status == domain.StatusCompleted {
		ttl = s.opts.CompletedGameTTL
	}
	if err := s.store.Set(ctx, gameKey(state.GameID), data, ttl); err != nil {
		return fmt.Errorf("failed to save game %s: %w", state.GameID, err)
	}
	return nil
}

// curateFor produces the view of a state one player is allowed to see: the
// requesting player's rack in full, every other rack withheld with only its
// tile count exposed.
func curateFor(state domain.GameState, playerID string) domain.GameState {
	out := state.Clone()
	for i := range out.Players {
		out.Players[i].RackCount = len(out.Players[i].Rack.TileIDs)
		if out.Players[i].ID != playerID {
			out.Players[i].Rack = domain.Rack{}
		}
	}
	return out
}
