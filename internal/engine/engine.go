// Package engine implements the rule-validated turn engine. It is a pure
// transition layer: every operation takes a game state and returns a new,
// fully validated state, never touching storage or locks.
package engine

import (
	"fmt"
	"math/rand"
	"time"

	"rummikub/internal/domain"
)

const (
	// MinPlayers and MaxPlayers bound the configured player count.
	MinPlayers = 2
	MaxPlayers = 4
	// InitialRackSize is the number of tiles dealt to each player.
	InitialRackSize = 14
	// InitialMeldMinimum is the point gate a first play must reach.
	InitialMeldMinimum = 30
)

// Engine applies player actions to game states. The injected rng drives
// shuffles and draws; draw outcomes carry no determinism guarantee beyond
// what a seeded rng provides in tests.
type Engine struct {
	rng *rand.Rand
}

// New constructs an Engine with the provided rng or a time-seeded default.
func New(rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{rng: rng}
}

// CreateGame initializes an empty game waiting for numPlayers players.
func (e *Engine) CreateGame(gameID string, numPlayers int) (domain.GameState, error) {
	if numPlayers < MinPlayers || numPlayers > MaxPlayers {
		return domain.GameState{}, domain.NewError(domain.ErrGameState, fmt.Sprintf("num players must be %d-%d, got %d", MinPlayers, MaxPlayers, numPlayers))
	}
	now := time.Now().UTC()
	return domain.GameState{
		GameID:     gameID,
		Name:       domain.GenerateGameName(e.rng),
		NumPlayers: numPlayers,
		Status:     domain.StatusWaitingForPlayers,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// AddPlayer adds a player to a waiting game. Starting the game once the
// configured seat count is reached is the caller's decision.
func (e *Engine) AddPlayer(state domain.GameState, playerID, playerName string) (domain.GameState, error) {
	if state.Status != domain.StatusWaitingForPlayers {
		return domain.GameState{}, domain.NewError(domain.ErrGameNotStarted, "players can only join games waiting for players")
	}
	if len(state.Players) >= state.NumPlayers {
		return domain.GameState{}, domain.NewError(domain.ErrGameFull, fmt.Sprintf("game already has %d players", state.NumPlayers))
	}
	if _, ok := state.PlayerByID(playerID); ok {
		return domain.GameState{}, domain.NewError(domain.ErrInvalidMove, fmt.Sprintf("player %s already in game", playerID))
	}

	next := state.Clone()
	if playerName == "" {
		playerName = playerID
	}
	next.Players = append(next.Players, domain.Player{ID: playerID, Name: playerName})
	next.UpdatedAt = time.Now().UTC()
	return next, nil
}

// StartGame deals 14 tiles to every player from a shuffled pool, fixes the
// turn order and moves the game to IN_PROGRESS.
func (e *Engine) StartGame(state domain.GameState) (domain.GameState, error) {
	if state.Status != domain.StatusWaitingForPlayers {
		return domain.GameState{}, domain.NewError(domain.ErrGameNotStarted, "game can only be started while waiting for players")
	}
	if len(state.Players) < MinPlayers {
		return domain.GameState{}, domain.NewError(domain.ErrGameState, fmt.Sprintf("need at least %d players to start", MinPlayers))
	}

	tiles := domain.FullTileSet()
	e.rng.Shuffle(len(tiles), func(i, j int) { tiles[i], tiles[j] = tiles[j], tiles[i] })

	next := state.Clone()
	dealt := 0
	for i := range next.Players {
		rack := append([]domain.TileID{}, tiles[dealt:dealt+InitialRackSize]...)
		dealt += InitialRackSize
		next.Players[i].Rack = domain.Rack{TileIDs: rack}
		next.Players[i].RackCount = len(rack)
	}
	next.Pool = domain.Pool{TileIDs: append([]domain.TileID{}, tiles[dealt:]...)}
	next.Status = domain.StatusInProgress
	next.CurrentPlayerIndex = 0
	next.UpdatedAt = time.Now().UTC()
	return next, nil
}

// ApplyAction routes a player action to the matching transition. Any
// violated pre-condition aborts the whole action with a typed error and zero
// mutation; the caller keeps the prior state.
func (e *Engine) ApplyAction(state domain.GameState, playerID string, action domain.Action) (domain.GameState, error) {
	switch a := action.(type) {
	case domain.PlayTilesAction:
		return e.ExecutePlay(state, playerID, a)
	case domain.DrawAction:
		return e.ExecuteDraw(state, playerID)
	default:
		return domain.GameState{}, domain.NewError(domain.ErrInvalidMove, fmt.Sprintf("unknown action type %T", action))
	}
}

// ExecuteDraw removes one random tile from the pool, adds it to the acting
// player's rack and advances the turn.
func (e *Engine) ExecuteDraw(state domain.GameState, playerID string) (domain.GameState, error) {
	if _, err := requireTurn(state, playerID); err != nil {
		return domain.GameState{}, err
	}
	if state.Pool.IsEmpty() {
		return domain.GameState{}, domain.NewError(domain.ErrPoolEmpty, "cannot draw from an empty pool")
	}

	next := state.Clone()
	pool := next.Pool.TileIDs
	pick := e.rng.Intn(len(pool))
	drawn := pool[pick]
	next.Pool = domain.Pool{TileIDs: append(pool[:pick:pick], pool[pick+1:]...)}

	idx := playerIndex(next, playerID)
	next.Players[idx].Rack.TileIDs = append(next.Players[idx].Rack.TileIDs, drawn)
	next.Players[idx].RackCount = len(next.Players[idx].Rack.TileIDs)

	advanceTurn(&next)
	next.UpdatedAt = time.Now().UTC()
	return next, nil
}

// ExecutePlay validates and applies a PlayTiles action carrying the complete
// proposed board.
func (e *Engine) ExecutePlay(state domain.GameState, playerID string, action domain.PlayTilesAction) (domain.GameState, error) {
	player, err := requireTurn(state, playerID)
	if err != nil {
		return domain.GameState{}, err
	}

	// Rebuild melds so identifiers are deterministic regardless of what the
	// caller supplied, and group order is canonical.
	proposed := make([]domain.Meld, len(action.Melds))
	for i, meld := range action.Melds {
		proposed[i] = domain.NewMeld(meld.Kind, meld.Tiles)
	}
	proposedBoard := domain.Board{Melds: proposed}

	newTiles, err := checkConservation(state, player, proposedBoard)
	if err != nil {
		return domain.GameState{}, err
	}
	if err := domain.ValidateBoard(proposedBoard); err != nil {
		return domain.GameState{}, err
	}

	if !player.InitialMeldMet {
		placed := domain.NewlyPlacedMelds(proposed, state.Board)
		total, err := domain.InitialMeldTotal(placed)
		if err != nil {
			return domain.GameState{}, err
		}
		if total < InitialMeldMinimum {
			return domain.GameState{}, domain.NewError(domain.ErrInitialMeldNotMet,
				fmt.Sprintf("initial meld totals %d points, need %d", total, InitialMeldMinimum))
		}
	}

	next := state.Clone()
	idx := playerIndex(next, playerID)
	next.Players[idx].Rack.TileIDs = removeTiles(next.Players[idx].Rack.TileIDs, newTiles)
	next.Players[idx].RackCount = len(next.Players[idx].Rack.TileIDs)
	next.Players[idx].InitialMeldMet = true
	next.Board = proposedBoard.Clone()

	if next.Players[idx].Rack.IsEmpty() {
		next.Status = domain.StatusCompleted
		next.WinnerPlayerID = playerID
	} else {
		advanceTurn(&next)
	}
	next.UpdatedAt = time.Now().UTC()
	return next, nil
}

// checkConservation enforces the tile-set rule for a proposed board: no tile
// duplicated or invented, every current board tile still present, and every
// new tile drawn from the acting player's rack. It returns the set of tiles
// moving from the rack onto the board.
func checkConservation(state domain.GameState, player domain.Player, proposed domain.Board) (map[domain.TileID]bool, error) {
	proposedTiles := map[domain.TileID]bool{}
	for _, id := range proposed.TileIDs() {
		if proposedTiles[id] {
			return nil, domain.NewError(domain.ErrInvalidMove, fmt.Sprintf("tile %s appears more than once on the proposed board", id)).WithTiles(id)
		}
		proposedTiles[id] = true
	}

	boardTiles := map[domain.TileID]bool{}
	for _, id := range state.Board.TileIDs() {
		boardTiles[id] = true
		if !proposedTiles[id] {
			return nil, domain.NewError(domain.ErrInvalidMove, fmt.Sprintf("tile %s was removed from the board", id)).WithTiles(id)
		}
	}

	rackTiles := map[domain.TileID]bool{}
	for _, id := range player.Rack.TileIDs {
		rackTiles[id] = true
	}

	newTiles := map[domain.TileID]bool{}
	for id := range proposedTiles {
		if boardTiles[id] {
			continue
		}
		if !rackTiles[id] {
			return nil, domain.NewError(domain.ErrTileNotOwned, fmt.Sprintf("player %s does not own tile %s", player.ID, id)).WithTiles(id)
		}
		newTiles[id] = true
	}
	if len(newTiles) == 0 {
		return nil, domain.NewError(domain.ErrInvalidMove, "cannot play without placing any new tiles")
	}
	return newTiles, nil
}

// requireTurn enforces the shared pre-conditions: game in progress, player in
// the game, and the player holding the turn.
func requireTurn(state domain.GameState, playerID string) (domain.Player, error) {
	switch state.Status {
	case domain.StatusWaitingForPlayers:
		return domain.Player{}, domain.NewError(domain.ErrGameNotStarted, "game is not in progress")
	case domain.StatusCompleted:
		return domain.Player{}, domain.NewError(domain.ErrGameFinished, "game is already finished")
	}
	player, ok := state.PlayerByID(playerID)
	if !ok {
		return domain.Player{}, domain.NewError(domain.ErrPlayerNotInGame, fmt.Sprintf("player %s not in game", playerID))
	}
	current, err := state.CurrentPlayer()
	if err != nil {
		return domain.Player{}, err
	}
	if current.ID != playerID {
		return domain.Player{}, domain.NewError(domain.ErrNotPlayersTurn, fmt.Sprintf("it is not %s's turn", playerID))
	}
	return player, nil
}

func playerIndex(state domain.GameState, playerID string) int {
	for i, player := range state.Players {
		if player.ID == playerID {
			return i
		}
	}
	return -1
}

func advanceTurn(state *domain.GameState) {
	state.CurrentPlayerIndex = (state.CurrentPlayerIndex + 1) % len(state.Players)
}

func removeTiles(rack []domain.TileID, remove map[domain.TileID]bool) []domain.TileID {
	out := make([]domain.TileID, 0, len(rack))
	for _, id := range rack {
		if remove[id] {
			continue
		}
		out = append(out, id)
	}
	return out
}
