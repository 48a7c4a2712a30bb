package world

// NPC is a generated character permanently tied to the coordinate it was
// generated for.
type NPC struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`         // Japanese, kanji/kana
	NameEnglish string   `json:"name_english"` // full English name
	Description string   `json:"short_description"`
	Role        string   `json:"role"`
	Personality string   `json:"personality"`
	Greeting    string   `json:"greeting"` // simple Japanese greeting
	Vocabulary  []string `json:"vocabulary,omitempty"`
}

// Matches applies the same width-folded substring matching as items.
func (n *NPC) Matches(query string) bool {
	return matchesQuery(query, n.ID, n.Name, n.NameEnglish, n.Role)
}

// DisplayName is the player-facing label, "Japanese (English)".
func (n *NPC) DisplayName() string {
	if n.NameEnglish == "" {
		return n.Name
	}
	return n.Name + " (" + n.NameEnglish + ")"
}
