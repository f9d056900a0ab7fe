package domain

import "fmt"

// JokerAssignment maps each joker in a meld to the numbered tile value it
// stands in for, resolved from the meld's structure.
type JokerAssignment map[TileID]Tile

// AssignGroupJokers validates a group and resolves its jokers.
//
// A group holds 3-4 tiles of a single number in pairwise-distinct colors.
// A joker resolves only when exactly one color is missing from the group's
// number; with more than one candidate color the assignment is ambiguous and
// the meld is rejected outright. A group of jokers alone has no anchoring
// number and is likewise rejected.
func AssignGroupJokers(tiles []TileID) (JokerAssignment, error) {
	if len(tiles) < 3 || len(tiles) > 4 {
		return nil, NewError(ErrInvalidMeld, fmt.Sprintf("group must have 3-4 tiles, got %d", len(tiles))).WithTiles(tiles...)
	}

	var jokers []TileID
	var numbered []Tile
	for _, id := range tiles {
		tile, err := id.Parse()
		if err != nil {
			return nil, err
		}
		if tile.Joker {
			jokers = append(jokers, id)
		} else {
			numbered = append(numbered, tile)
		}
	}

	if len(numbered) == 0 {
		return nil, NewError(ErrAmbiguousJoker, "cannot determine group number with only jokers").WithTiles(tiles...)
	}

	groupNumber := numbered[0].Number
	seen := map[Color]bool{}
	for _, tile := range numbered {
		if tile.Number != groupNumber {
			return nil, NewError(ErrInvalidMeld, "all numbered tiles in a group must share one number").WithTiles(tiles...)
		}
		if seen[tile.Color] {
			return nil, NewError(ErrInvalidMeld, fmt.Sprintf("group has duplicate color %s", tile.Color)).WithTiles(tiles...)
		}
		seen[tile.Color] = true
	}

	var missing []Color
	for _, color := range Colors() {
		if !seen[color] {
			missing = append(missing, color)
		}
	}

	assignment := JokerAssignment{}
	if len(jokers) == 0 {
		return assignment, nil
	}
	if len(jokers) > len(missing) {
		return nil, NewError(ErrImpossibleJoker, fmt.Sprintf("%d jokers but only %d colors missing", len(jokers), len(missing))).WithTiles(jokers...)
	}
	if len(missing) > 1 {
		return nil, NewError(ErrAmbiguousJoker, fmt.Sprintf("joker color is ambiguous, %d colors missing", len(missing))).WithTiles(jokers...)
	}
	assignment[jokers[0]] = Tile{Number: groupNumber, Color: missing[0]}
	return assignment, nil
}

// AssignRunJokers validates a run and resolves its jokers.
//
// A run holds 3+ tiles of a single color at strictly consecutive numbers in
// declared order; the sequence may not extend below 1 or past 13. Jokers
// take the number their position implies, so at least one numbered tile must
// anchor the sequence or the assignment is ambiguous.
func AssignRunJokers(tiles []TileID) (JokerAssignment, error) {
	if len(tiles) < 3 {
		return nil, NewError(ErrInvalidMeld, fmt.Sprintf("run must have at least 3 tiles, got %d", len(tiles))).WithTiles(tiles...)
	}

	type positioned struct {
		pos  int
		tile Tile
	}
	var jokers []positioned
	var numbered []positioned
	for i, id := range tiles {
		tile, err := id.Parse()
		if err != nil {
			return nil, err
		}
		if tile.Joker {
			jokers = append(jokers, positioned{pos: i, tile: tile})
		} else {
			numbered = append(numbered, positioned{pos: i, tile: tile})
		}
	}

	if len(numbered) == 0 {
		return nil, NewError(ErrAmbiguousJoker, "cannot determine run sequence with only jokers").WithTiles(tiles...)
	}

	runColor := numbered[0].tile.Color
	for _, p := range numbered {
		if p.tile.Color != runColor {
			return nil, NewError(ErrInvalidMeld, "all tiles in a run must share one color").WithTiles(tiles...)
		}
	}

	// The first numbered tile pins the whole sequence; every other numbered
	// tile must land on the number its position implies.
	start := numbered[0].tile.Number - numbered[0].pos
	for _, p := range numbered {
		if p.tile.Number != start+p.pos {
			return nil, NewError(ErrInvalidMeld, "run numbers are not consecutive").WithTiles(tiles...)
		}
	}
	if start < 1 || start+len(tiles)-1 > 13 {
		return nil, NewError(ErrInvalidMeld, "run sequence out of range 1-13").WithTiles(tiles...)
	}

	assignment := JokerAssignment{}
	for _, p := range jokers {
		assignment[tiles[p.pos]] = Tile{Number: start + p.pos, Color: runColor}
	}
	return assignment, nil
}

// ValidateMeld checks a meld under its declared kind, resolving jokers.
func ValidateMeld(m Meld) error {
	var err error
	switch m.Kind {
	case MeldGroup:
		_, err = AssignGroupJokers(m.Tiles)
	case MeldRun:
		_, err = AssignRunJokers(m.Tiles)
	default:
		err = NewError(ErrInvalidMeld, fmt.Sprintf("unknown meld kind %q", m.Kind))
	}
	if err != nil {
		if de, ok := err.(*Error); ok && m.ID != "" {
			de.WithMelds(m.ID)
		}
		return err
	}
	return nil
}

// MeldValue sums the face values of a meld, counting each joker as the value
// it resolves to.
func MeldValue(m Meld) (int, error) {
	var assignment JokerAssignment
	var err error
	switch m.Kind {
	case MeldGroup:
		assignment, err = AssignGroupJokers(m.Tiles)
	case MeldRun:
		assignment, err = AssignRunJokers(m.Tiles)
	default:
		err = NewError(ErrInvalidMeld, fmt.Sprintf("unknown meld kind %q", m.Kind))
	}
	if err != nil {
		return 0, err
	}

	total := 0
	for _, id := range m.Tiles {
		if resolved, ok := assignment[id]; ok {
			total += resolved.Number
			continue
		}
		tile, err := id.Parse()
		if err != nil {
			return 0, err
		}
		total += tile.Number
	}
	return total, nil
}

// ValidateBoard checks that every meld on the board independently validates
// under its declared kind with a resolvable joker assignment.
func ValidateBoard(b Board) error {
	for _, meld := range b.Melds {
		if err := ValidateMeld(meld); err != nil {
			return err
		}
	}
	return nil
}

// NewlyPlacedMelds returns the proposed melds composed entirely of tiles
// that were not on the current board, i.e. melds the player is placing for
// the first time this turn. Melds that existed before the turn, or that were
// touched by rearrangement and still carry board tiles, are not counted.
func NewlyPlacedMelds(proposed []Meld, current Board) []Meld {
	onBoard := map[TileID]bool{}
	for _, id := range current.TileIDs() {
		onBoard[id] = true
	}
	var placed []Meld
	for _, meld := range proposed {
		fresh := true
		for _, id := range meld.Tiles {
			if onBoard[id] {
				fresh = false
				break
			}
		}
		if fresh {
			placed = append(placed, meld)
		}
	}
	return placed
}

// InitialMeldTotal sums the values of the melds a player is placing for the
// first time this turn, for the 30-point initial-meld gate.
func InitialMeldTotal(placed []Meld) (int, error) {
	total := 0
	for _, meld := range placed {
		value, err := MeldValue(meld)
		if err != nil {
			return 0, err
		}
		total += value
	}
	return total, nil
}
