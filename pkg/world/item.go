package world

import (
	"strings"

	"golang.org/x/text/width"
)

// Item is a generated object that lives in exactly one place at a time,
// either a location's item set or a player's inventory.
type Item struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`         // Japanese, kanji/kana
	NameEnglish string   `json:"name_english"` // gloss only, no romaji
	NameRomaji  string   `json:"name_romaji"`
	Description string   `json:"description"`
	CanBeTaken  bool     `json:"can_be_taken"`
	Vocabulary  []string `json:"vocabulary,omitempty"`
}

// Matches reports whether the query matches this item. Matching is a
// case-insensitive substring test over id, Japanese name, English gloss
// and romaji, width-folded so full-width input still matches.
func (i *Item) Matches(query string) bool {
	return matchesQuery(query, i.ID, i.Name, i.NameEnglish, i.NameRomaji)
}

// DisplayName is the player-facing label, "Japanese (English)".
func (i *Item) DisplayName() string {
	if i.NameEnglish == "" {
		return i.Name
	}
	return i.Name + " (" + i.NameEnglish + ")"
}

func normalizeQuery(s string) string {
	return strings.ToLower(width.Fold.String(strings.TrimSpace(s)))
}

func matchesQuery(query string, candidates ...string) bool {
	q := normalizeQuery(query)
	if q == "" {
		return false
	}
	for _, c := range candidates {
		if c != "" && strings.Contains(normalizeQuery(c), q) {
			return true
		}
	}
	return false
}
