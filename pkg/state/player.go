// Package state holds per-player session state. World content is shared
// across players; everything here is owned by exactly one player and is
// the only part of a session that gets persisted.
package state

import (
	"github.com/google/uuid"
)

// JLPT proficiency tiers, easiest first. The level calibrates the
// complexity of generated Japanese text.
const (
	LevelN5 = "N5"
	LevelN4 = "N4"
	LevelN3 = "N3"
	LevelN2 = "N2"
	LevelN1 = "N1"
)

// DefaultLevel is used for new players unless configured otherwise.
const DefaultLevel = LevelN5

// Player is the durable per-player record. It is saved as a single JSON
// document after every processed command.
type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	JLPTLevel string `json:"jlpt_level"`

	// Inventory holds item ids in pickup order, no duplicates.
	Inventory []string `json:"inventory"`

	// Proficiency maps vocabulary word id to a value in [0, 1].
	Proficiency map[string]float64 `json:"proficiency"`
}

// NewPlayer creates a player at the origin with the given display name.
func NewPlayer(name string, level string) *Player {
	if level == "" {
		level = DefaultLevel
	}
	return &Player{
		ID:          uuid.New().String(),
		Name:        name,
		JLPTLevel:   level,
		Inventory:   make([]string, 0),
		Proficiency: make(map[string]float64),
	}
}

// HasItem reports whether the item id is in the inventory.
func (p *Player) HasItem(itemID string) bool {
	for _, id := range p.Inventory {
		if id == itemID {
			return true
		}
	}
	return false
}

// AddItem appends the item id to the inventory. Duplicates are ignored.
func (p *Player) AddItem(itemID string) {
	if p.HasItem(itemID) {
		return
	}
	p.Inventory = append(p.Inventory, itemID)
}

// RemoveItem deletes the item id from the inventory, preserving order of
// the rest. Reports whether the item was present.
func (p *Player) RemoveItem(itemID string) bool {
	for i, id := range p.Inventory {
		if id == itemID {
			p.Inventory = append(p.Inventory[:i], p.Inventory[i+1:]...)
			return true
		}
	}
	return false
}

// BumpProficiency raises the proficiency for a word id by delta,
// clamped to [0, 1], and returns the new value.
func (p *Player) BumpProficiency(wordID string, delta float64) float64 {
	if p.Proficiency == nil {
		p.Proficiency = make(map[string]float64)
	}
	v := p.Proficiency[wordID] + delta
	if v > 1.0 {
		v = 1.0
	}
	if v < 0.0 {
		v = 0.0
	}
	p.Proficiency[wordID] = v
	return v
}
