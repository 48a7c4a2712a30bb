package world

// Location is one generated grid cell. Created exactly once at first
// visit; after creation only its item set changes (take/drop), nothing
// else. Locations are never destroyed.
type Location struct {
	ID           string                   `json:"id"`
	Coord        Coordinate               `json:"coord"`
	Name         string                   `json:"name"`
	JapaneseName string                   `json:"japanese_name"`
	Description  string                   `json:"description"`
	Setting      string                   `json:"setting"`
	Exits        map[Direction]Coordinate `json:"exits"`
	ItemIDs      []string                 `json:"item_ids"`
	NPCIDs       []string                 `json:"npc_ids"`

	// ImagePrompt is fixed at creation so the image cache regenerates
	// the same picture for the same cell.
	ImagePrompt string `json:"image_prompt"`
}

func (l *Location) hasItem(itemID string) bool {
	for _, id := range l.ItemIDs {
		if id == itemID {
			return true
		}
	}
	return false
}

func (l *Location) removeItem(itemID string) bool {
	for i, id := range l.ItemIDs {
		if id == itemID {
			l.ItemIDs = append(l.ItemIDs[:i], l.ItemIDs[i+1:]...)
			return true
		}
	}
	return false
}
