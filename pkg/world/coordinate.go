// Package world owns the infinite 2D coordinate grid and the lazily
// generated locations, items and NPCs that populate it.
package world

import "fmt"

// Coordinate identifies one grid cell. The zero value is the origin,
// where every player starts.
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Key is the canonical string form, "x,y". It indexes the grid and is
// embedded in derived identifiers (location id, item id, npc id, image
// filename).
func (c Coordinate) Key() string {
	return fmt.Sprintf("%d,%d", c.X, c.Y)
}

// LocationID derives the stable location identifier for this cell.
func (c Coordinate) LocationID() string {
	return "loc_" + c.Key()
}

func (c Coordinate) String() string {
	return "(" + c.Key() + ")"
}

// Add returns the coordinate offset by (dx, dy).
func (c Coordinate) Add(dx, dy int) Coordinate {
	return Coordinate{X: c.X + dx, Y: c.Y + dy}
}
