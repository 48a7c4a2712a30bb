package world

import "strings"

// Direction is one of the four cardinal movement tokens.
type Direction string

const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
)

// deltas maps each direction to its fixed coordinate offset. North is +y.
var deltas = map[Direction][2]int{
	North: {0, 1},
	South: {0, -1},
	East:  {1, 0},
	West:  {-1, 0},
}

// directionAliases maps accepted input tokens, including single letters
// and Japanese compass words, to canonical directions.
var directionAliases = map[string]Direction{
	"north": North, "n": North, "北": North, "きた": North,
	"south": South, "s": South, "南": South, "みなみ": South,
	"east": East, "e": East, "東": East, "ひがし": East,
	"west": West, "w": West, "西": West, "にし": West,
}

// ParseDirection normalizes a raw token to a Direction. Reports false
// for anything outside the alias table.
func ParseDirection(token string) (Direction, bool) {
	d, ok := directionAliases[strings.ToLower(strings.TrimSpace(token))]
	return d, ok
}

// Delta returns the coordinate offset for the direction.
func (d Direction) Delta() (dx, dy int) {
	dd := deltas[d]
	return dd[0], dd[1]
}

// AllDirections lists the cardinal directions in display order.
func AllDirections() []Direction {
	return []Direction{North, South, East, West}
}
