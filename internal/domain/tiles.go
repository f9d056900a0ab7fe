package domain

import (
	"fmt"
	"strings"
)

// Color is one of the four tile colors.
type Color string

const (
	ColorBlack  Color = "black"
	ColorRed    Color = "red"
	ColorBlue   Color = "blue"
	ColorOrange Color = "orange"
)

// Colors lists all tile colors in canonical order: black, red, blue, orange.
// Group meld identifiers sort member tiles by this order.
func Colors() []Color {
	return []Color{ColorBlack, ColorRed, ColorBlue, ColorOrange}
}

var colorCodes = map[Color]byte{
	ColorBlack:  'k',
	ColorRed:    'r',
	ColorBlue:   'b',
	ColorOrange: 'o',
}

var codeColors = map[byte]Color{
	'k': ColorBlack,
	'r': ColorRed,
	'b': ColorBlue,
	'o': ColorOrange,
}

// colorRank gives the canonical sort position of a color.
func colorRank(c Color) int {
	for i, color := range Colors() {
		if color == c {
			return i
		}
	}
	return len(colorCodes)
}

// TileID is the wire identifier of a physical tile.
//
// Numbered tiles encode as "{number}{color_code}{copy}", e.g. "7ra" is the
// red 7, copy a. Jokers encode as "j{copy}". Color codes are k=black, r=red,
// b=blue, o=orange; copies are 'a' and 'b'. Two copies of every numbered
// tile and two jokers make up the 106-tile universe.
type TileID string

// Tile is the decoded form of a TileID.
type Tile struct {
	Joker  bool
	Number int
	Color  Color
	Copy   byte
}

// IsJoker reports whether the identifier names one of the two jokers.
func (id TileID) IsJoker() bool {
	return strings.HasPrefix(string(id), "j")
}

// Parse decodes a tile identifier, rejecting malformed input.
func (id TileID) Parse() (Tile, error) {
	s := string(id)
	if id.IsJoker() {
		if len(s) != 2 || (s[1] != 'a' && s[1] != 'b') {
			return Tile{}, NewError(ErrInvalidMove, fmt.Sprintf("malformed joker tile id %q", s)).WithTiles(id)
		}
		return Tile{Joker: true, Copy: s[1]}, nil
	}
	if len(s) < 3 || len(s) > 4 {
		return Tile{}, NewError(ErrInvalidMove, fmt.Sprintf("malformed tile id %q", s)).WithTiles(id)
	}
	copyID := s[len(s)-1]
	if copyID != 'a' && copyID != 'b' {
		return Tile{}, NewError(ErrInvalidMove, fmt.Sprintf("invalid copy in tile id %q", s)).WithTiles(id)
	}
	color, ok := codeColors[s[len(s)-2]]
	if !ok {
		return Tile{}, NewError(ErrInvalidMove, fmt.Sprintf("invalid color code in tile id %q", s)).WithTiles(id)
	}
	number := 0
	for _, r := range s[:len(s)-2] {
		if r < '0' || r > '9' {
			return Tile{}, NewError(ErrInvalidMove, fmt.Sprintf("invalid number in tile id %q", s)).WithTiles(id)
		}
		number = number*10 + int(r-'0')
	}
	if number < 1 || number > 13 {
		return Tile{}, NewError(ErrInvalidMove, fmt.Sprintf("tile number must be 1-13 in %q", s)).WithTiles(id)
	}
	return Tile{Number: number, Color: color, Copy: copyID}, nil
}

// NumberedTileID builds the identifier for a numbered tile.
func NumberedTileID(number int, color Color, copyID byte) TileID {
	return TileID(fmt.Sprintf("%d%c%c", number, colorCodes[color], copyID))
}

// JokerTileID builds the identifier for a joker copy.
func JokerTileID(copyID byte) TileID {
	return TileID(fmt.Sprintf("j%c", copyID))
}

// FullTileSet returns all 106 tile identifiers: two copies of 1-13 in each
// of the four colors, plus two jokers.
func FullTileSet() []TileID {
	ids := make([]TileID, 0, 106)
	for _, color := range Colors() {
		for number := 1; number <= 13; number++ {
			ids = append(ids, NumberedTileID(number, color, 'a'), NumberedTileID(number, color, 'b'))
		}
	}
	ids = append(ids, JokerTileID('a'), JokerTileID('b'))
	return ids
}

// FormatTile renders a tile identifier for human display, e.g. "Red 7".
func FormatTile(id TileID) string {
	tile, err := id.Parse()
	if err != nil {
		return string(id)
	}
	if tile.Joker {
		return "Joker"
	}
	name := string(tile.Color)
	return fmt.Sprintf("%s%s %d", strings.ToUpper(name[:1]), name[1:], tile.Number)
}
