package domain

import "errors"

// ErrorKind classifies a rule or lifecycle violation.
type ErrorKind string

const (
	ErrGameNotFound      ErrorKind = "game_not_found"
	ErrGameFull          ErrorKind = "game_full"
	ErrGameNotStarted    ErrorKind = "game_not_started"
	ErrGameFinished      ErrorKind = "game_finished"
	ErrNotPlayersTurn    ErrorKind = "not_players_turn"
	ErrPlayerNotInGame   ErrorKind = "player_not_in_game"
	ErrInvalidMeld       ErrorKind = "invalid_meld"
	ErrInvalidMove       ErrorKind = "invalid_move"
	ErrTileNotOwned      ErrorKind = "tile_not_owned"
	ErrPoolEmpty         ErrorKind = "pool_empty"
	ErrInitialMeldNotMet ErrorKind = "initial_meld_not_met"
	ErrInvalidBoardState ErrorKind = "invalid_board_state"
	ErrAmbiguousJoker    ErrorKind = "ambiguous_joker"
	ErrImpossibleJoker   ErrorKind = "impossible_joker"
	ErrLockNotAcquired   ErrorKind = "lock_not_acquired"
	ErrGameState         ErrorKind = "game_state"
)

// Error is a rule violation carrying enough structure for a client to
// highlight the offending tiles or melds without guessing intent.
type Error struct {
	Kind  ErrorKind
	Msg   string
	Tiles []TileID
	Melds []string
}

func (e *Error) Error() string {
	return e.Msg
}

// Is matches errors by kind, so sentinel-style checks work through wrapping.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// NewError builds an Error of the given kind.
func NewError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// WithTiles attaches the offending tile identifiers.
func (e *Error) WithTiles(tiles ...TileID) *Error {
	e.Tiles = append(e.Tiles, tiles...)
	return e
}

// WithMelds attaches the offending meld identifiers.
func (e *Error) WithMelds(meldIDs ...string) *Error {
	e.Melds = append(e.Melds, meldIDs...)
	return e
}

// KindOf extracts the kind from an error chain, or "" for non-domain errors.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether the error chain contains a domain error of the kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
