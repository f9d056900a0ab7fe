package domain

import (
	"fmt"
	"time"
)

// GameStatus is the lifecycle stage of a game.
type GameStatus string

const (
	// StatusWaitingForPlayers is the pre-game state where players can join.
	StatusWaitingForPlayers GameStatus = "waiting_for_players"
	// StatusInProgress is the active state where turns are taken.
	StatusInProgress GameStatus = "in_progress"
	// StatusCompleted is the terminal state after a player wins.
	StatusCompleted GameStatus = "completed"
)

// Rack holds the tiles a player keeps hidden from the table.
type Rack struct {
	TileIDs []TileID `json:"tile_ids"`
}

// IsEmpty reports whether the rack has no tiles.
func (r Rack) IsEmpty() bool {
	return len(r.TileIDs) == 0
}

// Pool holds the face-down tiles still available to draw. It only ever
// shrinks during play.
type Pool struct {
	TileIDs []TileID `json:"tile_ids"`
}

// IsEmpty reports whether the pool has no tiles.
func (p Pool) IsEmpty() bool {
	return len(p.TileIDs) == 0
}

// Player is a participant in a game.
type Player struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	InitialMeldMet bool   `json:"initial_meld_met"`
	Rack           Rack   `json:"rack"`
	// RackCount mirrors len(Rack.TileIDs) in curated views where the rack
	// contents are withheld from other players.
	RackCount int `json:"rack_count"`
}

// GameState aggregates the full persisted state of one game. States are
// immutable by convention: transitions build a fresh state via Clone and
// never mutate a state already handed out.
type GameState struct {
	GameID             string     `json:"game_id"`
	Name               string     `json:"name"`
	NumPlayers         int        `json:"num_players"`
	Players            []Player   `json:"players"`
	CurrentPlayerIndex int        `json:"current_player_index"`
	Pool               Pool       `json:"pool"`
	Board              Board      `json:"board"`
	Status             GameStatus `json:"status"`
	WinnerPlayerID     string     `json:"winner_player_id,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Clone deep-copies the game state.
func (s GameState) Clone() GameState {
	out := s
	out.Players = make([]Player, len(s.Players))
	for i, player := range s.Players {
		player.Rack = Rack{TileIDs: append([]TileID{}, player.Rack.TileIDs...)}
		out.Players[i] = player
	}
	out.Pool = Pool{TileIDs: append([]TileID{}, s.Pool.TileIDs...)}
	out.Board = s.Board.Clone()
	return out
}

// PlayerByID finds a player in the game.
func (s GameState) PlayerByID(playerID string) (Player, bool) {
	for _, player := range s.Players {
		if player.ID == playerID {
			return player, true
		}
	}
	return Player{}, false
}

// PlayerByName finds a player by display name.
func (s GameState) PlayerByName(name string) (Player, bool) {
	for _, player := range s.Players {
		if player.Name == name {
			return player, true
		}
	}
	return Player{}, false
}

// CurrentPlayer returns the player whose turn it is.
func (s GameState) CurrentPlayer() (Player, error) {
	switch s.Status {
	case StatusWaitingForPlayers:
		return Player{}, NewError(ErrGameNotStarted, "game has not started yet")
	case StatusCompleted:
		return Player{}, NewError(ErrGameFinished, "game is already finished")
	}
	if s.CurrentPlayerIndex < 0 || s.CurrentPlayerIndex >= len(s.Players) {
		return Player{}, NewError(ErrGameState, fmt.Sprintf("current player index %d out of range", s.CurrentPlayerIndex))
	}
	return s.Players[s.CurrentPlayerIndex], nil
}

// ValidatePartition checks the tile-universe invariant: the racks, board and
// pool partition the fixed 106-tile universe with no overlaps and no strays.
func (s GameState) ValidatePartition() error {
	seen := map[TileID]string{}
	note := func(id TileID, where string) error {
		if prev, ok := seen[id]; ok {
			return NewError(ErrGameState, fmt.Sprintf("tile %s appears in both %s and %s", id, prev, where)).WithTiles(id)
		}
		seen[id] = where
		return nil
	}

	for _, player := range s.Players {
		for _, id := range player.Rack.TileIDs {
			if err := note(id, "rack of "+player.ID); err != nil {
				return err
			}
		}
	}
	for _, id := range s.Board.TileIDs() {
		if err := note(id, "board"); err != nil {
			return err
		}
	}
	for _, id := range s.Pool.TileIDs {
		if err := note(id, "pool"); err != nil {
			return err
		}
	}

	universe := FullTileSet()
	if len(seen) != len(universe) {
		return NewError(ErrGameState, fmt.Sprintf("tile universe has %d tiles, want %d", len(seen), len(universe)))
	}
	for _, id := range universe {
		if _, ok := seen[id]; !ok {
			return NewError(ErrGameState, fmt.Sprintf("tile %s missing from game", id)).WithTiles(id)
		}
	}
	return nil
}
