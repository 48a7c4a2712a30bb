package world

import "strings"

// View is the player-facing projection of a location: resolved item and
// NPC records rather than ids, plus the available exit directions.
type View struct {
	Location *Location   `json:"location"`
	Items    []*Item     `json:"items"`
	NPCs     []*NPC      `json:"npcs"`
	Exits    []Direction `json:"exits"`
}

// Describe renders the view as the standard multi-line location text.
func (v *View) Describe() string {
	var sb strings.Builder
	sb.WriteString(v.Location.Name)
	if v.Location.JapaneseName != "" {
		sb.WriteString(" / " + v.Location.JapaneseName)
	}
	sb.WriteString("\n\n")
	sb.WriteString(v.Location.Description)

	if len(v.Items) > 0 {
		names := make([]string, len(v.Items))
		for i, it := range v.Items {
			names[i] = it.DisplayName()
		}
		sb.WriteString("\n\nYou see: " + strings.Join(names, ", "))
	}
	if len(v.NPCs) > 0 {
		names := make([]string, len(v.NPCs))
		for i, n := range v.NPCs {
			names[i] = n.DisplayName() + ", " + strings.ToLower(n.Role)
		}
		sb.WriteString("\nPeople here: " + strings.Join(names, "; "))
	}
	if len(v.Exits) > 0 {
		exits := make([]string, len(v.Exits))
		for i, d := range v.Exits {
			exits[i] = string(d)
		}
		sb.WriteString("\nExits: " + strings.Join(exits, ", "))
	}
	return sb.String()
}
