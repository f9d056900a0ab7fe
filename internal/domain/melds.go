package domain

import (
	"sort"
	"strings"
)

// MeldKind distinguishes the two legal meld shapes.
type MeldKind string

const (
	// MeldGroup is 3-4 tiles of one number in distinct colors.
	MeldGroup MeldKind = "group"
	// MeldRun is 3+ tiles of one color with strictly consecutive numbers.
	MeldRun MeldKind = "run"
)

// Meld is a named grouping of tiles on the board. For runs the tile order is
// the declared sequence order; for groups order is canonicalized at
// construction so identical groups always serialize identically.
type Meld struct {
	ID    string   `json:"id"`
	Kind  MeldKind `json:"kind"`
	Tiles []TileID `json:"tiles"`
}

// NewMeld builds a meld with its deterministic identifier. Group tiles are
// sorted into canonical color order (black, red, blue, orange, jokers last);
// run tiles keep the declared order. The identifier is the member tiles
// joined with "-", so the same tiles always yield the same identifier across
// serialization round-trips.
func NewMeld(kind MeldKind, tiles []TileID) Meld {
	ordered := append([]TileID{}, tiles...)
	if kind == MeldGroup {
		sort.SliceStable(ordered, func(i, j int) bool {
			return groupOrderKey(ordered[i]) < groupOrderKey(ordered[j])
		})
	}
	return Meld{ID: MeldID(kind, ordered), Kind: kind, Tiles: ordered}
}

// MeldID derives the deterministic identifier for already-ordered tiles.
func MeldID(kind MeldKind, ordered []TileID) string {
	parts := make([]string, len(ordered))
	for i, id := range ordered {
		parts[i] = string(id)
	}
	return strings.Join(parts, "-")
}

// groupOrderKey sorts numbered tiles by canonical color order with jokers
// last; malformed identifiers sort after jokers so canonicalization never
// hides them from validation.
func groupOrderKey(id TileID) int {
	tile, err := id.Parse()
	if err != nil {
		return 1000
	}
	if tile.Joker {
		return 900 + int(tile.Copy)
	}
	return colorRank(tile.Color)*10 + int(tile.Copy-'a')
}

// Board is the public, ordered collection of melds.
type Board struct {
	Melds []Meld `json:"melds"`
}

// TileIDs returns every tile identifier on the board, in meld order.
func (b Board) TileIDs() []TileID {
	var ids []TileID
	for _, meld := range b.Melds {
		ids = append(ids, meld.Tiles...)
	}
	return ids
}

// Clone deep-copies the board.
func (b Board) Clone() Board {
	melds := make([]Meld, len(b.Melds))
	for i, meld := range b.Melds {
		melds[i] = Meld{ID: meld.ID, Kind: meld.Kind, Tiles: append([]TileID{}, meld.Tiles...)}
	}
	return Board{Melds: melds}
}
