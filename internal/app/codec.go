package app

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"rummikub/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// encodeGameState serializes a game state for storage.
func encodeGameState(state domain.GameState) (string, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("failed to encode game state: %w", err)
	}
	return string(data), nil
}

// decodeGameState restores a game state from its stored form.
func decodeGameState(data string) (domain.GameState, error) {
	var state domain.GameState
	if err := json.UnmarshalFromString(data, &state); err != nil {
		return domain.GameState{}, fmt.Errorf("failed to decode game state: %w", err)
	}
	return state, nil
}
